package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// TestRunLoop 测试轮询循环在时钟前进时执行任务
func TestRunLoop(t *testing.T) {
	a, fc := newTestAgenda(t, WithPollInterval(time.Second))

	var counter int64
	_, err := a.AddFunc(counterJob(&counter), MustParse("@every 1s"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	// 等待 ticker 注册
	blockCtx, blockCancel := context.WithTimeout(context.Background(), waitFor)
	defer blockCancel()
	require.NoError(t, fc.BlockUntilContext(blockCtx, 1))
	assert.True(t, a.IsRunning())

	for i := 1; i <= 3; i++ {
		fc.Advance(time.Second)
		want := int64(i)
		require.Eventually(t, func() bool { return atomic.LoadInt64(&counter) == want }, waitFor, tick)
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, a.IsRunning())
	// ticker 已停止
	assert.NoError(t, fc.BlockUntilContext(blockCtx, 0))
}

// TestRunExecutesPendingImmediately 启动时立即执行已到期的任务
func TestRunExecutesPendingImmediately(t *testing.T) {
	a, fc := newTestAgenda(t)

	var counter int64
	_, err := a.AddFunc(counterJob(&counter), MustParse("@every 1s"))
	require.NoError(t, err)
	fc.Advance(time.Second)

	require.NoError(t, a.Start(context.Background()))
	defer a.Stop()

	require.Eventually(t, func() bool { return atomic.LoadInt64(&counter) == 1 }, waitFor, tick)
}

func TestStartStop(t *testing.T) {
	a, _ := newTestAgenda(t)

	require.NoError(t, a.Start(context.Background()))
	assert.True(t, a.IsRunning())
	assert.ErrorIs(t, a.Start(context.Background()), ErrAlreadyRunning)
	assert.ErrorIs(t, a.Run(context.Background()), ErrAlreadyRunning)

	a.Stop()
	assert.False(t, a.IsRunning())

	// 重复停止无副作用
	a.Stop()

	// 停止后可以重新启动
	require.NoError(t, a.Start(context.Background()))
	assert.True(t, a.IsRunning())
	a.Stop()
	assert.False(t, a.IsRunning())
}

// TestStartParentContextCanceled 父上下文取消时停止运行
func TestStartParentContextCanceled(t *testing.T) {
	a, _ := newTestAgenda(t)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Start(ctx))
	require.True(t, a.IsRunning())

	cancel()
	require.Eventually(t, func() bool { return !a.IsRunning() }, waitFor, tick)
}

// TestStopCancelsRunningJob 停止时向正在执行的任务发送取消信号
func TestStopCancelsRunningJob(t *testing.T) {
	a, fc := newTestAgenda(t)

	started := make(chan struct{})
	var canceled int64
	_, err := a.AddFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		atomic.StoreInt64(&canceled, 1)
		return ctx.Err()
	}, MustParse("@every 1s"), WithName("waiting"))
	require.NoError(t, err)
	fc.Advance(time.Second)

	require.NoError(t, a.Start(context.Background()))
	<-started

	a.Stop()
	assert.False(t, a.IsRunning())
	require.Eventually(t, func() bool { return atomic.LoadInt64(&canceled) == 1 }, waitFor, tick)

	stats, ok := a.Monitor().GetStats("waiting")
	require.True(t, ok)
	assert.Equal(t, int64(1), stats.FailureCount)
}

func TestWithPollIntervalIgnoresNonPositive(t *testing.T) {
	a, _ := newTestAgenda(t, WithPollInterval(0), WithPollInterval(-time.Second))
	assert.Equal(t, DefaultPollInterval, a.pollInterval)

	a, _ = newTestAgenda(t, WithPollInterval(time.Minute))
	assert.Equal(t, time.Minute, a.pollInterval)
}
