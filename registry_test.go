package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegisterDescriptor(t *testing.T) {
	require.NoError(t, RegisterDescriptor("@workdays", "0  0 9 * *   1-5"))

	assert.Equal(t, "0 0 9 * * 1-5", Descriptors()["@workdays"])

	s, err := Parse("@workdays")
	require.NoError(t, err)
	assert.Equal(t, "@workdays", s.String())

	// 2026-10-16 是周五
	next, ok := s.NextAt(testNow, testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), next)
}

func TestRegisterDescriptorErrors(t *testing.T) {
	tests := []struct {
		name string
		desc string
		expr string
		want error
	}{
		{"missing at", "nightly", "0 0 0 * * *", ErrInvalidDescName},
		{"bare at", "@", "0 0 0 * * *", ErrInvalidDescName},
		{"contains space", "@my job", "0 0 0 * * *", ErrInvalidDescName},
		{"reserved every", "@every", "0 0 0 * * *", ErrInvalidDescName},
		{"builtin taken", "@daily", "0 0 1 * * *", ErrDescriptorTaken},
		{"invalid expr", "@broken", "0 0 0 *", ErrFieldCount},
		{"out of range", "@late", "0 0 24 * * *", ErrValueRange},
		{"nested descriptor", "@alias", "@daily", ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RegisterDescriptor(tt.desc, tt.expr)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, exists := Descriptors()["@broken"]
	assert.False(t, exists)
}

func TestSafeRegisterDescriptorLogs(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	SetRegistryLogger(NewZapLogger(zap.New(core)))
	t.Cleanup(func() { SetRegistryLogger(NewDefaultLogger()) })

	assert.NotPanics(t, func() { SafeRegisterDescriptor("no-at", "* * * * *") })
	assert.Equal(t, 1, logs.Len())

	SafeRegisterDescriptor("@safe-ok", "0 0 12 * * *")
	assert.Equal(t, 1, logs.Len())
	_, exists := Descriptors()["@safe-ok"]
	assert.True(t, exists)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"90s", 90 * time.Second, false},
		{"1h30m", 90 * time.Minute, false},
		{"5m", 5 * time.Minute, false},
		{"2d", 48 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"106751d", 106751 * 24 * time.Hour, false},
		{"106752d", 0, true},
		{"213504d", 0, true},
		{"5124096h", 0, true},
		{"307445734562m", 0, true},
		{"99999999999999999999s", 0, true},
		{"3x", 0, true},
		{"d", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
