package schedule

import (
	"fmt"
	"log/slog"

	"go.uber.org/zap"
)

// Logger 定义日志接口
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger 默认日志实现，使用log/slog
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger 创建默认日志实现
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		logger: slog.Default(),
	}
}

// NewSlogLogger 使用指定的 slog.Logger 创建日志实现
func NewSlogLogger(logger *slog.Logger) *DefaultLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultLogger{logger: logger}
}

// Debugf 输出调试日志
func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(fmt.Sprintf(format, args...))
	}
}

// Infof 输出信息日志
func (l *DefaultLogger) Infof(format string, args ...any) {
	if l.logger != nil {
		l.logger.Info(fmt.Sprintf(format, args...))
	}
}

// Warnf 输出警告日志
func (l *DefaultLogger) Warnf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(fmt.Sprintf(format, args...))
	}
}

// Errorf 输出错误日志
func (l *DefaultLogger) Errorf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Error(fmt.Sprintf(format, args...))
	}
}

// ZapLogger 基于 zap 的日志实现
type ZapLogger struct {
	logger *zap.SugaredLogger
}

// NewZapLogger 包装 zap.Logger，nil 时使用 zap.NewNop
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger.Sugar()}
}

func (l *ZapLogger) Debugf(format string, args ...any) { l.logger.Debugf(format, args...) }

func (l *ZapLogger) Infof(format string, args ...any) { l.logger.Infof(format, args...) }

func (l *ZapLogger) Warnf(format string, args ...any) { l.logger.Warnf(format, args...) }

func (l *ZapLogger) Errorf(format string, args ...any) { l.logger.Errorf(format, args...) }

// NoOpLogger 空日志实现，不输出任何内容
type NoOpLogger struct{}

// Debugf 空实现
func (l *NoOpLogger) Debugf(format string, args ...any) {}

// Infof 空实现
func (l *NoOpLogger) Infof(format string, args ...any) {}

// Warnf 空实现
func (l *NoOpLogger) Warnf(format string, args ...any) {}

// Errorf 空实现
func (l *NoOpLogger) Errorf(format string, args ...any) {}
