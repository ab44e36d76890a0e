package schedule

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingPanicHandler struct {
	jobName    string
	panicValue interface{}
	stack      []byte
	calls      int
}

func (h *recordingPanicHandler) HandlePanic(jobName string, panicValue interface{}, stack []byte) {
	h.jobName = jobName
	h.panicValue = panicValue
	h.stack = stack
	h.calls++
}

func TestSafeCallRecovers(t *testing.T) {
	handler := &recordingPanicHandler{}

	recovered := SafeCall("risky", func() {
		panic("something went wrong")
	}, handler)

	assert.True(t, recovered)
	assert.Equal(t, 1, handler.calls)
	assert.Equal(t, "risky", handler.jobName)
	assert.Equal(t, "something went wrong", handler.panicValue)
	assert.NotEmpty(t, handler.stack)
}

func TestSafeCallWithoutPanic(t *testing.T) {
	handler := &recordingPanicHandler{}
	ran := false

	recovered := SafeCall("calm", func() { ran = true }, handler)

	assert.False(t, recovered)
	assert.True(t, ran)
	assert.Equal(t, 0, handler.calls)
}

func TestSafeCallNilHandler(t *testing.T) {
	assert.NotPanics(t, func() {
		recovered := SafeCall("nil-handler", func() { panic(42) }, nil)
		assert.True(t, recovered)
	})
}

func TestPanicHandlerFunc(t *testing.T) {
	var got string
	SafeCall("func-handler", func() { panic("x") }, PanicHandlerFunc(func(jobName string, _ interface{}, _ []byte) {
		got = jobName
	}))
	assert.Equal(t, "func-handler", got)
}

func TestDefaultPanicHandlerLogs(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := NewDefaultPanicHandler(NewZapLogger(zap.New(core)))

	handler.HandlePanic("job-1", "bad things", []byte("goroutine 1 [running]"))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.True(t, strings.HasPrefix(entries[0].Message, "PANIC in job job-1: bad things"))
		assert.Contains(t, entries[0].Message, "goroutine 1 [running]")
	}
}
