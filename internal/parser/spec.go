package parser

import (
	"math/bits"
	"time"
)

// horizonYears 向前查找的年数上限，保证永远无法匹配的表达式也能结束
const horizonYears = 2

// Set 单个时间单位的约束集合，以位图存储。
// 空集合表示不受约束，即匹配该单位的任意值。
type Set uint64

// Contains 严格判断 v 是否在集合中
func (s Set) Contains(v int) bool {
	return v >= 0 && v < 64 && s&(1<<uint(v)) != 0
}

// Matches 判断 v 是否满足约束，空集合匹配一切
func (s Set) Matches(v int) bool {
	return s == 0 || s.Contains(v)
}

// Len 返回集合元素个数
func (s Set) Len() int { return bits.OnesCount64(uint64(s)) }

// Values 返回升序排列的集合元素
func (s Set) Values() []int {
	values := make([]int, 0, s.Len())
	for v := s; v != 0; v &= v - 1 {
		values = append(values, bits.TrailingZeros64(uint64(v)))
	}
	return values
}

func (s Set) with(v uint32) Set { return s | 1<<v }

// CronSchedule specifies a duty cycle (to the second granularity), based on a
// traditional crontab specification. It is computed once and never mutated,
// so a single value may be shared between goroutines.
//
// Dow uses 0 = Monday .. 6 = Sunday.
type CronSchedule struct {
	Second, Minute, Hour, Dom, Month, Dow Set
}

// bounds provides the range of acceptable user input for a field.
type bounds struct {
	name     string
	min, max uint32
}

// The bounds for each field, in 6-field order. Day-of-week input accepts 7
// as an alias for Sunday.
var (
	seconds = bounds{"second", 0, 59}
	minutes = bounds{"minute", 0, 59}
	hours   = bounds{"hour", 0, 23}
	dom     = bounds{"day-of-month", 1, 31}
	months  = bounds{"month", 1, 12}
	dow     = bounds{"day-of-week", 0, 7}
)

// Next returns the next UTC time this schedule is activated, strictly greater
// than after. A zero after means now. If no time within the lookahead horizon
// (two calendar years past now) satisfies the schedule, the zero time is
// returned.
func (s *CronSchedule) Next(after, now time.Time) time.Time {
	now = now.UTC()
	if after.IsZero() {
		after = now
	}

	// 从下一整秒开始，保证严格向前推进
	t := after.UTC().Truncate(time.Second).Add(time.Second)

WRAP:
	for {
		if t.Year()-now.Year() >= horizonYears {
			return time.Time{}
		}

		// 月份
		for !s.Month.Matches(int(t.Month())) {
			if t.Month() == time.December {
				t = time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
				continue WRAP
			}
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		}

		// 日期
		for !s.dayMatches(t) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
			if t.Day() == 1 {
				// 进入新月份，月份可能不再满足
				continue WRAP
			}
		}

		// 小时
		for !s.Hour.Matches(t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, time.UTC)
			if t.Hour() == 0 {
				continue WRAP
			}
		}

		// 分钟
		for !s.Minute.Matches(t.Minute()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()+1, 0, 0, time.UTC)
			if t.Minute() == 0 {
				continue WRAP
			}
		}

		// 秒
		for !s.Second.Matches(t.Second()) {
			t = t.Add(time.Second)
			if t.Second() == 0 {
				continue WRAP
			}
		}

		return t
	}
}

// dayMatches reports whether t satisfies the day constraint. When both
// day-of-month and day-of-week are restricted they combine with OR.
func (s *CronSchedule) dayMatches(t time.Time) bool {
	switch {
	case s.Dom == 0 && s.Dow == 0:
		return true
	case s.Dom == 0:
		return s.Dow.Contains(weekday(t))
	case s.Dow == 0:
		return s.Dom.Contains(t.Day())
	}
	return s.Dom.Contains(t.Day()) || s.Dow.Contains(weekday(t))
}

// weekday 返回以周一为 0 的星期序号
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
