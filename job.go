package schedule

import (
	"context"
	"fmt"
	"time"
)

// Job 定义任务接口
type Job interface {
	Run(ctx context.Context) error // 执行任务，ctx 在超时或 Agenda 停止时取消
}

// JobFunc 函数形式的 Job
type JobFunc func(ctx context.Context) error

// Run 实现 Job
func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

// Handle 任务句柄。
// 任务被移除后槽位会被复用，旧句柄的代数不再匹配，操作返回 ErrJobNotFound。
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero 判断是否为零值句柄，零值句柄不指向任何任务
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("job#%d.%d", h.index, h.gen)
}

// JobInfo 任务快照
type JobInfo struct {
	Handle   Handle    `json:"-"`
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Kind     string    `json:"kind"`
	NextRun  time.Time `json:"next_run"`
	Paused   bool      `json:"paused"`
	Running  bool      `json:"running"`
}

// jobEntry 槽位中保存的任务
type jobEntry struct {
	name      string
	job       Job
	schedule  Schedule
	next      time.Time // 零值表示没有后续触发
	timeout   time.Duration
	paused    bool
	running   bool
	createdAt time.Time
}

// due 判断任务在 now 是否到期
func (e *jobEntry) due(now time.Time) bool {
	return !e.paused && !e.running && !e.next.IsZero() && !e.next.After(now)
}

func (e *jobEntry) info(h Handle) JobInfo {
	return JobInfo{
		Handle:   h,
		Name:     e.name,
		Schedule: e.schedule.String(),
		Kind:     e.schedule.Kind().String(),
		NextRun:  e.next,
		Paused:   e.paused,
		Running:  e.running,
	}
}

// slot 任务槽位，gen 在任务移除时递增
type slot struct {
	gen   uint32
	entry *jobEntry
}
