package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

// Agenda 保存任务及其调度，并在到期时执行。
// 任务存放在可复用的槽位中，通过 Handle 访问。
type Agenda struct {
	mu    sync.RWMutex
	slots []slot
	free  []uint32
	names map[string]Handle

	logger       Logger
	clock        clockwork.Clock
	panicHandler PanicHandler
	monitor      *Monitor
	registerer   prometheus.Registerer
	pollInterval time.Duration

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New 创建一个新的 Agenda
func New(opts ...Option) *Agenda {
	a := &Agenda{
		names:        make(map[string]Handle),
		logger:       NewDefaultLogger(),
		clock:        clockwork.NewRealClock(),
		pollInterval: DefaultPollInterval,
	}

	// 应用选项
	for _, opt := range opts {
		opt(a)
	}

	if a.panicHandler == nil {
		a.panicHandler = NewDefaultPanicHandler(a.logger)
	}

	a.monitor = newMonitor()
	if a.registerer != nil {
		if err := a.monitor.register(a.registerer); err != nil {
			a.logger.Warnf("Failed to register metrics: %v", err)
		}
	}

	return a
}

// Add 添加任务，返回任务句柄
func (a *Agenda) Add(job Job, s Schedule, opts ...JobOption) (Handle, error) {
	if job == nil {
		return Handle{}, ErrNilJob
	}
	if s.IsZero() {
		return Handle{}, ErrEmptySchedule
	}

	cfg := jobConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = uuid.NewString()
	}

	now := a.clock.Now()
	entry := &jobEntry{
		name:      cfg.name,
		job:       job,
		schedule:  s,
		timeout:   cfg.timeout,
		paused:    cfg.paused,
		createdAt: now,
	}
	if next, ok := s.NextAt(now, now); ok {
		entry.next = next
	} else {
		a.logger.Warnf("Job %s has no upcoming run for %s", cfg.name, s)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.names[cfg.name]; exists {
		return Handle{}, fmt.Errorf("%w: %s", ErrDuplicateName, cfg.name)
	}

	var h Handle
	if n := len(a.free); n > 0 {
		h.index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		h.index = uint32(len(a.slots))
		a.slots = append(a.slots, slot{gen: 1})
	}
	h.gen = a.slots[h.index].gen
	a.slots[h.index].entry = entry
	a.names[cfg.name] = h

	a.monitor.addJob(cfg.name, s.String(), now, entry.next)
	a.logger.Debugf("Job %s added with schedule %s", cfg.name, s)

	return h, nil
}

// AddFunc 以函数形式添加任务
func (a *Agenda) AddFunc(fn JobFunc, s Schedule, opts ...JobOption) (Handle, error) {
	if fn == nil {
		return Handle{}, ErrNilJob
	}
	return a.Add(fn, s, opts...)
}

// lookup 返回句柄对应的任务，调用方必须持有锁
func (a *Agenda) lookup(h Handle) *jobEntry {
	if h.gen == 0 || int(h.index) >= len(a.slots) {
		return nil
	}
	sl := a.slots[h.index]
	if sl.gen != h.gen {
		return nil
	}
	return sl.entry
}

// Get 按名称查找任务句柄
func (a *Agenda) Get(name string) (Handle, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	h, ok := a.names[name]
	return h, ok
}

// Len 返回任务数量
func (a *Agenda) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.names)
}

// IsEmpty 判断是否没有任务
func (a *Agenda) IsEmpty() bool { return a.Len() == 0 }

// Remove 移除任务，正在执行的任务会执行完毕但不再调度
func (a *Agenda) Remove(h Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.removeLocked(h)
}

func (a *Agenda) removeLocked(h Handle) error {
	entry := a.lookup(h)
	if entry == nil {
		return ErrJobNotFound
	}

	a.slots[h.index].entry = nil
	a.slots[h.index].gen++
	a.free = append(a.free, h.index)
	delete(a.names, entry.name)
	a.monitor.removeJob(entry.name)
	a.logger.Debugf("Job %s removed", entry.name)
	return nil
}

// Clear 移除所有任务，已发出的句柄全部失效
func (a *Agenda) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, h := range a.names {
		_ = a.removeLocked(h)
	}
}

// List 按添加位置返回所有任务的快照
func (a *Agenda) List() []JobInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()

	infos := make([]JobInfo, 0, len(a.names))
	for i, sl := range a.slots {
		if sl.entry == nil {
			continue
		}
		infos = append(infos, sl.entry.info(Handle{index: uint32(i), gen: sl.gen}))
	}
	return infos
}

// Info 返回单个任务的快照
func (a *Agenda) Info(h Handle) (JobInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entry := a.lookup(h)
	if entry == nil {
		return JobInfo{}, ErrJobNotFound
	}
	return entry.info(h), nil
}

// Reschedule 替换任务的调度，下次运行时间从当前时间重新计算
func (a *Agenda) Reschedule(h Handle, s Schedule) error {
	if s.IsZero() {
		return ErrEmptySchedule
	}

	now := a.clock.Now()
	next, _ := s.NextAt(now, now)

	a.mu.Lock()
	defer a.mu.Unlock()

	entry := a.lookup(h)
	if entry == nil {
		return ErrJobNotFound
	}
	entry.schedule = s
	entry.next = next
	a.monitor.updateSchedule(entry.name, s.String(), next)
	a.logger.Infof("Job %s rescheduled to %s", entry.name, s)
	return nil
}

// RescheduleExpr 解析 expr 并替换任务的调度，解析失败时保留原调度
func (a *Agenda) RescheduleExpr(h Handle, expr string) error {
	s, err := Parse(expr)
	if err != nil {
		return err
	}
	return a.Reschedule(h, s)
}

// Pause 暂停任务，暂停期间不会被执行
func (a *Agenda) Pause(h Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry := a.lookup(h)
	if entry == nil {
		return ErrJobNotFound
	}
	entry.paused = true
	return nil
}

// Resume 恢复任务，下次运行时间从当前时间重新计算，暂停期间错过的触发不会补跑
func (a *Agenda) Resume(h Handle) error {
	now := a.clock.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	entry := a.lookup(h)
	if entry == nil {
		return ErrJobNotFound
	}
	if !entry.paused {
		return nil
	}
	entry.paused = false
	entry.next, _ = entry.schedule.NextAt(now, now)
	a.monitor.setNextRun(entry.name, entry.next)
	return nil
}

// NextRun 返回任务的下次运行时间，任务暂停或没有后续触发时返回 false
func (a *Agenda) NextRun(h Handle) (time.Time, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entry := a.lookup(h)
	if entry == nil || entry.paused || entry.next.IsZero() {
		return time.Time{}, false
	}
	return entry.next, true
}

// IsPending 判断当前是否有到期的任务
func (a *Agenda) IsPending() bool {
	now := a.clock.Now()

	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, sl := range a.slots {
		if sl.entry != nil && sl.entry.due(now) {
			return true
		}
	}
	return false
}

// Monitor 返回任务监控器
func (a *Agenda) Monitor() *Monitor { return a.monitor }

type dueJob struct {
	handle Handle
	entry  *jobEntry
}

// RunPending 依次执行所有到期任务并返回执行的数量。
// 任务在锁外执行，执行完成后以开始时间为基准计算下次运行时间。
func (a *Agenda) RunPending(ctx context.Context) int {
	now := a.clock.Now()

	a.mu.Lock()
	var due []dueJob
	for i, sl := range a.slots {
		if sl.entry != nil && sl.entry.due(now) {
			sl.entry.running = true
			due = append(due, dueJob{handle: Handle{index: uint32(i), gen: sl.gen}, entry: sl.entry})
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].entry.next.Before(due[j].entry.next)
	})
	a.mu.Unlock()

	count := 0
	for i, d := range due {
		if ctx.Err() != nil {
			a.release(due[i:])
			break
		}
		a.execute(ctx, d)
		count++
	}
	return count
}

// release 清除未执行任务的运行标记
func (a *Agenda) release(jobs []dueJob) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, d := range jobs {
		d.entry.running = false
	}
}

// execute 执行单个任务并更新下次运行时间
func (a *Agenda) execute(ctx context.Context, d dueJob) {
	name := d.entry.name
	job := d.entry.job
	timeout := d.entry.timeout

	start := a.clock.Now()
	a.monitor.setRunning(name, true)

	pending, err := a.invoke(ctx, name, job, timeout)

	duration := a.clock.Now().Sub(start)
	a.monitor.recordExecution(name, start, duration, err == nil)

	if err != nil {
		a.logger.Errorf("Job %s failed: %v", name, err)
	} else {
		a.logger.Debugf("Job %s finished in %s", name, duration)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if pending == nil {
		d.entry.running = false
		a.monitor.setRunning(name, false)
	} else {
		// 超时或取消后任务仍在执行，返回前不会再次触发
		go a.releaseWhenDone(d, pending)
	}

	// 执行期间任务可能已被移除
	if a.lookup(d.handle) != d.entry {
		return
	}
	next, ok := d.entry.schedule.NextAt(start, a.clock.Now())
	if !ok {
		a.logger.Warnf("Job %s has no upcoming run", name)
	}
	d.entry.next = next
	a.monitor.setNextRun(name, next)
}

// releaseWhenDone 等待仍在执行的任务返回后清除运行标记
func (a *Agenda) releaseWhenDone(d dueJob, pending <-chan error) {
	if err := <-pending; err != nil {
		a.logger.Debugf("Job %s returned late: %v", d.entry.name, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	d.entry.running = false
	if a.lookup(d.handle) == d.entry {
		a.monitor.setRunning(d.entry.name, false)
	}
}

// invoke 在独立协程中执行任务，捕获 panic 并处理超时。
// 任务在超时或 ctx 取消后仍未返回时，pending 在任务返回时收到其结果，否则为 nil。
func (a *Agenda) invoke(ctx context.Context, name string, job Job, timeout time.Duration) (<-chan error, error) {
	execCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		var err error
		if recovered := SafeCall(name, func() {
			err = job.Run(execCtx)
		}, a.panicHandler); recovered {
			err = fmt.Errorf("%w: %s", ErrJobPanicked, name)
		}
		done <- err
	}()

	select {
	case err := <-done:
		return nil, err
	case <-execCtx.Done():
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return done, fmt.Errorf("%w: %s after %s", ErrJobTimeout, name, timeout)
		}
		return done, execCtx.Err()
	}
}
