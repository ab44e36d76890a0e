package schedule

import (
	"strings"
	"time"

	"github.com/darkit/schedule/internal/parser"
)

// Kind 调度类型
type Kind uint8

const (
	// Periodic 由 cron 表达式描述的周期调度
	Periodic Kind = iota + 1
	// Interval 固定间隔调度
	Interval
)

func (k Kind) String() string {
	switch k {
	case Periodic:
		return "periodic"
	case Interval:
		return "interval"
	}
	return "none"
}

// Schedule 调度描述，只有 Periodic 与 Interval 两种。
// 构造后不可变，可以在多个协程间只读共享；重新调度应替换整个值。
// 零值表示没有调度，永远不会触发。
type Schedule struct {
	kind     Kind
	expr     string
	cron     *parser.CronSchedule
	interval time.Duration
}

// Parse 解析调度表达式
//
// 支持:
//
//	秒 分 时 日 月 周      (6 个字段)
//	分 时 日 月 周         (5 个字段，秒为 0)
//	@hourly @daily ...     (描述符，见 RegisterDescriptor)
//	@every 90s             (固定间隔)
//
// 每个字段可以是 *、数字、闭区间 a-b 或它们以逗号组成的列表。
// 星期以 0 或 7 表示周日。所有字段都在 UTC 下计算。
func Parse(expr string) (Schedule, error) {
	spec := strings.TrimSpace(expr)
	if strings.HasPrefix(spec, "@") {
		return parseDescriptor(spec)
	}

	cs, err := parser.ParseSchedule(spec)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{
		kind: Periodic,
		expr: strings.Join(strings.Fields(spec), " "),
		cron: cs,
	}, nil
}

// MustParse 与 Parse 相同，出错时 panic，用于包级变量初始化
func MustParse(expr string) Schedule {
	s, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return s
}

// Every 返回固定间隔调度，d 必须为正
func Every(d time.Duration) (Schedule, error) {
	if d <= 0 {
		return Schedule{}, &Error{Kind: KindDuration, Duration: d}
	}
	return Schedule{kind: Interval, interval: d}, nil
}

// Kind 返回调度类型，零值返回 0
func (s Schedule) Kind() Kind { return s.kind }

// IsZero 判断是否为零值
func (s Schedule) IsZero() bool { return s.kind == 0 }

// Interval 返回固定间隔，Periodic 调度返回 0
func (s Schedule) Interval() time.Duration { return s.interval }

func (s Schedule) String() string {
	switch s.kind {
	case Periodic:
		return s.expr
	case Interval:
		return "@every " + s.interval.String()
	}
	return ""
}

// Next 返回严格晚于 after 的下一次触发时间，after 为零值时以当前时间为基准。
// 没有可用时间时返回 false。
func (s Schedule) Next(after time.Time) (time.Time, bool) {
	return s.NextAt(after, time.Now())
}

// NextAt 与 Next 相同，但由调用方提供当前时间
func (s Schedule) NextAt(after, now time.Time) (time.Time, bool) {
	switch s.kind {
	case Periodic:
		next := s.cron.Next(after, now)
		return next, !next.IsZero()
	case Interval:
		base := after
		if base.IsZero() {
			base = now
		}
		next := base.Add(s.interval)
		// time.Time 的加法在越界时会饱和，结果不再是 base + interval
		if !next.After(base) || next.Sub(base) != s.interval {
			return time.Time{}, false
		}
		return next, true
	}
	return time.Time{}, false
}

// Upcoming 返回从 after 开始的最多 n 个触发时间
func (s Schedule) Upcoming(after time.Time, n int) []time.Time {
	return s.UpcomingAt(after, time.Now(), n)
}

// UpcomingAt 与 Upcoming 相同，但由调用方提供当前时间
func (s Schedule) UpcomingAt(after, now time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	for len(out) < n {
		next, ok := s.NextAt(after, now)
		if !ok {
			break
		}
		out = append(out, next)
		after = next
	}
	return out
}

// MarshalText 实现 encoding.TextMarshaler
func (s Schedule) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (s *Schedule) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
