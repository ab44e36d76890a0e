package schedule

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// Option 定义了 Agenda 的配置选项
type Option func(*Agenda)

// WithLogger 设置自定义日志接口，nil 表示不输出日志
func WithLogger(logger Logger) Option {
	return func(a *Agenda) {
		if logger == nil {
			logger = &NoOpLogger{}
		}
		a.logger = logger
	}
}

// WithClock 设置时间来源，测试中通常传入 clockwork.NewFakeClockAt
func WithClock(c clockwork.Clock) Option {
	return func(a *Agenda) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithPanicHandler 设置 panic 处理器
// 参数：
//   - handler: 实现了 PanicHandler 接口的处理器
//
// 返回：
//   - Option: 返回配置选项函数
func WithPanicHandler(handler PanicHandler) Option {
	return func(a *Agenda) {
		a.panicHandler = handler
	}
}

// WithMetrics 将任务指标注册到 reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(a *Agenda) {
		a.registerer = reg
	}
}

// WithPollInterval 设置 Run 检查到期任务的周期，非正数时保持默认值
func WithPollInterval(d time.Duration) Option {
	return func(a *Agenda) {
		if d > 0 {
			a.pollInterval = d
		}
	}
}

// jobConfig 添加任务时的配置
type jobConfig struct {
	name    string
	timeout time.Duration
	paused  bool
}

// JobOption 定义任务选项
type JobOption func(*jobConfig)

// WithName 设置任务名称，名称在 Agenda 内唯一。
// 未设置时自动生成 UUID。
func WithName(name string) JobOption {
	return func(c *jobConfig) {
		c.name = name
	}
}

// WithTimeout 设置任务的超时时间
// 参数：
//   - timeout: 超时时间，如果为 0 则表示不设置超时
//
// 返回：
//   - JobOption: 返回一个任务选项函数
func WithTimeout(timeout time.Duration) JobOption {
	return func(c *jobConfig) {
		c.timeout = timeout
	}
}

// WithPaused 以暂停状态添加任务，直到调用 Resume
func WithPaused() JobOption {
	return func(c *jobConfig) {
		c.paused = true
	}
}
