package schedule

import (
	"errors"

	"github.com/darkit/schedule/internal/parser"
)

// Error 构造调度时的错误，Kind 区分类别
type Error = parser.Error

// ErrorKind 错误类别
type ErrorKind = parser.Kind

const (
	KindParse      = parser.KindParse      // 表达式语法错误
	KindFieldCount = parser.KindFieldCount // 字段数量不是 5 或 6
	KindDuration   = parser.KindDuration   // 时长不能作为间隔
	KindRange      = parser.KindRange      // 取值越界
)

// 调度构造错误，可配合 errors.Is 使用
var (
	ErrParse      = parser.ErrParse
	ErrFieldCount = parser.ErrFieldCount
	ErrDuration   = parser.ErrDuration
	ErrValueRange = parser.ErrValueRange
)

// Agenda 相关错误
var (
	ErrJobNotFound     = errors.New("job not found")
	ErrNilJob          = errors.New("job cannot be nil")
	ErrEmptySchedule   = errors.New("schedule is empty")
	ErrDuplicateName   = errors.New("job name already exists")
	ErrAlreadyRunning  = errors.New("agenda is already running")
	ErrJobPanicked     = errors.New("job panicked")
	ErrJobTimeout      = errors.New("job timed out")
	ErrInvalidDescName = errors.New("descriptor name must start with @")
	ErrDescriptorTaken = errors.New("descriptor already registered")
)
