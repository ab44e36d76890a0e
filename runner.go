package schedule

import (
	"context"
	"time"
)

// DefaultPollInterval Run 检查到期任务的默认周期
const DefaultPollInterval = 500 * time.Millisecond

// Run 阻塞运行 Agenda，周期性执行到期任务，直到 ctx 取消或调用 Stop。
// 已在运行时返回 ErrAlreadyRunning。
func (a *Agenda) Run(ctx context.Context) error {
	runCtx, err := a.markRunning(ctx)
	if err != nil {
		return err
	}
	defer a.markStopped()

	a.loop(runCtx)
	return nil
}

// Start 在后台协程中运行 Agenda
func (a *Agenda) Start(ctx context.Context) error {
	runCtx, err := a.markRunning(ctx)
	if err != nil {
		return err
	}

	go func() {
		defer a.markStopped()
		a.loop(runCtx)
	}()
	return nil
}

// Stop 停止运行并等待正在执行的任务返回。
// 不能在任务内部调用。
func (a *Agenda) Stop() {
	a.runMu.Lock()
	if !a.running {
		a.runMu.Unlock()
		return
	}
	cancel, done := a.cancel, a.done
	a.runMu.Unlock()

	cancel()
	<-done
}

// IsRunning 检查 Agenda 是否正在运行
func (a *Agenda) IsRunning() bool {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	return a.running
}

func (a *Agenda) markRunning(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.running {
		return nil, ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.running = true
	a.cancel = cancel
	a.done = make(chan struct{})
	return runCtx, nil
}

func (a *Agenda) markStopped() {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	a.cancel()
	a.running = false
	close(a.done)
}

// loop 轮询循环
func (a *Agenda) loop(ctx context.Context) {
	ticker := a.clock.NewTicker(a.pollInterval)
	defer ticker.Stop()

	a.logger.Infof("Agenda started with %d jobs", a.Len())
	a.RunPending(ctx)

	for {
		select {
		case <-ctx.Done():
			a.logger.Infof("Agenda stopped")
			return
		case <-ticker.Chan():
			a.RunPending(ctx)
		}
	}
}
