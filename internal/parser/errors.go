package parser

import (
	"errors"
	"fmt"
	"time"
)

// 预定义错误，便于调用方使用 errors.Is 判断错误类别
var (
	ErrParse      = errors.New("invalid cron expression")
	ErrFieldCount = errors.New("invalid number of cron fields")
	ErrDuration   = errors.New("invalid schedule duration")
	ErrValueRange = errors.New("cron value out of range")
)

// Kind 错误类别
type Kind uint8

const (
	KindParse      Kind = iota + 1 // 表达式语法错误
	KindFieldCount                 // 字段数量不是 5 或 6
	KindDuration                   // 时长无法转换为正向偏移
	KindRange                      // 取值超出字段范围
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindFieldCount:
		return "field count"
	case KindDuration:
		return "duration"
	case KindRange:
		return "range"
	}
	return "unknown"
}

// Error 构造调度时的错误，每个类别只携带最小上下文
type Error struct {
	Kind     Kind
	Input    string        // 原始输入
	Count    int           // KindFieldCount: 实际字段数
	Duration time.Duration // KindDuration: 无法使用的时长
	Field    string        // KindRange: 越界的字段名
	Value    uint32        // KindRange: 越界的值
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindParse:
		return fmt.Sprintf("%v: %q", ErrParse, e.Input)
	case KindFieldCount:
		return fmt.Sprintf("%v: expected 5 or 6, got %d", ErrFieldCount, e.Count)
	case KindDuration:
		if e.Input != "" {
			return fmt.Sprintf("%v: %q", ErrDuration, e.Input)
		}
		return fmt.Sprintf("%v: %s", ErrDuration, e.Duration)
	case KindRange:
		return fmt.Sprintf("%v: %s value %d in %q", ErrValueRange, e.Field, e.Value, e.Input)
	}
	return "schedule error"
}

// Is 让 errors.Is 可以用哨兵错误匹配类别
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindParse:
		return ErrParse
	case KindFieldCount:
		return ErrFieldCount
	case KindDuration:
		return ErrDuration
	case KindRange:
		return ErrValueRange
	}
	return nil
}

func parseError(input string) error {
	return &Error{Kind: KindParse, Input: input}
}
