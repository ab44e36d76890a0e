package parser

import "strings"

// Resolve 将字段序列映射到六个约束集合
//
// 5 个字段: 分 时 日 月 周，秒固定为 {0}
// 6 个字段: 秒 分 时 日 月 周
//
// 星期输入以 0 表示周日，内部转换为 0 = 周一 .. 6 = 周日。
func Resolve(fields []Field) (*CronSchedule, error) {
	return resolve(fields, "")
}

func resolve(fields []Field, input string) (*CronSchedule, error) {
	if input == "" {
		input = joinFields(fields)
	}

	var (
		s      CronSchedule
		places []*Set
		limits []bounds
	)
	switch len(fields) {
	case 5:
		s.Second = Set(0).with(0)
		places = []*Set{&s.Minute, &s.Hour, &s.Dom, &s.Month, &s.Dow}
		limits = []bounds{minutes, hours, dom, months, dow}
	case 6:
		places = []*Set{&s.Second, &s.Minute, &s.Hour, &s.Dom, &s.Month, &s.Dow}
		limits = []bounds{seconds, minutes, hours, dom, months, dow}
	default:
		return nil, &Error{Kind: KindFieldCount, Input: input, Count: len(fields)}
	}

	for i, f := range fields {
		set, err := resolveField(f, limits[i], input)
		if err != nil {
			return nil, err
		}
		*places[i] = set
	}

	s.Dow = normalizeDow(s.Dow)
	return &s, nil
}

// resolveField 将单个字段展开为集合，All 保持为空集合
func resolveField(f Field, b bounds, input string) (Set, error) {
	var set Set
	switch f.Kind {
	case All:
		return 0, nil
	case Number, Range:
		if f.Start > f.End {
			return 0, &Error{Kind: KindRange, Input: input, Field: b.name, Value: f.Start}
		}
		for _, v := range []uint32{f.Start, f.End} {
			if v < b.min || v > b.max {
				return 0, &Error{Kind: KindRange, Input: input, Field: b.name, Value: v}
			}
		}
		for v := f.Start; v <= f.End; v++ {
			set = set.with(v)
		}
	case List:
		for _, term := range f.Terms {
			if term.Kind != Number && term.Kind != Range {
				return 0, parseError(input)
			}
			ts, err := resolveField(term, b, input)
			if err != nil {
				return 0, err
			}
			set |= ts
		}
	default:
		return 0, parseError(input)
	}
	return set, nil
}

// normalizeDow 将用户输入的星期 (0 = 周日, 7 = 周日) 转换为内部表示 (0 = 周一)
func normalizeDow(in Set) Set {
	var out Set
	for _, v := range in.Values() {
		switch v {
		case 0, 7:
			out = out.with(6)
		default:
			out = out.with(uint32(v - 1))
		}
	}
	return out
}

func joinFields(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}
