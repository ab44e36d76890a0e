package schedule

import (
	"runtime"
)

// PanicHandler 定义panic处理器接口
type PanicHandler interface {
	HandlePanic(jobName string, panicValue interface{}, stack []byte)
}

// PanicHandlerFunc 函数形式的 PanicHandler
type PanicHandlerFunc func(jobName string, panicValue interface{}, stack []byte)

// HandlePanic 实现 PanicHandler
func (f PanicHandlerFunc) HandlePanic(jobName string, panicValue interface{}, stack []byte) {
	f(jobName, panicValue, stack)
}

// DefaultPanicHandler 默认的panic处理器
type DefaultPanicHandler struct {
	logger Logger
}

// NewDefaultPanicHandler 创建默认panic处理器
func NewDefaultPanicHandler(logger Logger) *DefaultPanicHandler {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &DefaultPanicHandler{logger: logger}
}

// HandlePanic 默认的panic处理实现
func (h *DefaultPanicHandler) HandlePanic(jobName string, panicValue interface{}, stack []byte) {
	if h.logger != nil {
		h.logger.Errorf("PANIC in job %s: %v\nStack trace:\n%s", jobName, panicValue, stack)
	}
}

// SafeCall 安全调用函数，捕获并处理panic
func SafeCall(jobName string, fn func(), handler PanicHandler) (recovered bool) {
	defer func() {
		if r := recover(); r != nil {
			recovered = true

			// 获取堆栈信息
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)

			if handler == nil {
				handler = NewDefaultPanicHandler(nil)
			}
			handler.HandlePanic(jobName, r, stack[:n])
		}
	}()

	fn()
	return false
}
