package schedule

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 16, 12, 30, 45, 0, time.UTC)

func TestParseFiveFieldExpression(t *testing.T) {
	s, err := Parse("1 2 3 4 *")
	require.NoError(t, err)
	assert.Equal(t, Periodic, s.Kind())

	next, ok := s.NextAt(time.Time{}, testNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2027, 4, 3, 2, 1, 0, 0, time.UTC), next)
	assert.Equal(t, 1, next.Minute())
	assert.Equal(t, 2, next.Hour())
	assert.Equal(t, 3, next.Day())
	assert.Equal(t, time.April, next.Month())
	assert.Equal(t, 0, next.Second())
}

func TestParseNormalizesWhitespace(t *testing.T) {
	s, err := Parse("  0  30\t9 * *  1-5 ")
	require.NoError(t, err)
	assert.Equal(t, "0 30 9 * * 1-5", s.String())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		kind     ErrorKind
		sentinel error
	}{
		{"four fields", "* * * *", KindFieldCount, ErrFieldCount},
		{"seven fields", "* * * * * * *", KindFieldCount, ErrFieldCount},
		{"letters", "a * * * *", KindParse, ErrParse},
		{"trailing garbage", "* * * * *x", KindParse, ErrParse},
		{"empty", "", KindParse, ErrParse},
		{"hour out of range", "0 0 24 * * *", KindRange, ErrValueRange},
		{"reversed range", "0 10-5 * * *", KindRange, ErrValueRange},
		{"unknown descriptor", "@fortnightly", KindParse, ErrParse},
		{"bad every", "@every soon", KindDuration, ErrDuration},
		{"negative every", "@every -5s", KindDuration, ErrDuration},
		{"every days overflow", "@every 213504d", KindDuration, ErrDuration},
		{"every hours overflow", "@every 5124096h", KindDuration, ErrDuration},
		{"every minutes overflow", "@every 307445734562m", KindDuration, ErrDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.expr)
			require.Error(t, err)
			assert.True(t, s.IsZero())
			assert.ErrorIs(t, err, tt.sentinel)

			var serr *Error
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tt.kind, serr.Kind)
		})
	}
}

func TestFieldCountErrorCarriesCount(t *testing.T) {
	_, err := Parse("* * * *")
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 4, serr.Count)
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("not a schedule") })
	assert.NotPanics(t, func() { MustParse("@hourly") })
}

func TestEvery(t *testing.T) {
	s, err := Every(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, Interval, s.Kind())
	assert.Equal(t, 2*time.Second, s.Interval())
	assert.Equal(t, "@every 2s", s.String())

	for _, d := range []time.Duration{0, -time.Second} {
		_, err := Every(d)
		var serr *Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, KindDuration, serr.Kind)
		assert.Equal(t, d, serr.Duration)
	}
}

func TestIntervalHasNoDrift(t *testing.T) {
	const n = 1000
	s, err := Every(2 * time.Second)
	require.NoError(t, err)

	origin := testNow
	cur := origin
	for i := 0; i < n; i++ {
		next, ok := s.Next(cur)
		require.True(t, ok)
		assert.Equal(t, cur.Add(2*time.Second), next)
		cur = next
	}
	assert.Equal(t, origin.Add(n*2*time.Second), cur)
}

func TestIntervalZeroAfterUsesNow(t *testing.T) {
	s, err := Every(time.Minute)
	require.NoError(t, err)

	next, ok := s.NextAt(time.Time{}, testNow)
	require.True(t, ok)
	assert.Equal(t, testNow.Add(time.Minute), next)
}

func TestIntervalOverflow(t *testing.T) {
	s, err := Every(time.Hour)
	require.NoError(t, err)

	// 接近 time.Time 可表示的最大值
	far := time.Unix(math.MaxInt64-62135596800, 0)
	next, ok := s.Next(far)
	assert.False(t, ok)
	assert.True(t, next.IsZero())
}

func TestZeroScheduleNeverFires(t *testing.T) {
	var s Schedule
	assert.True(t, s.IsZero())
	assert.Equal(t, "", s.String())

	_, ok := s.NextAt(testNow, testNow)
	assert.False(t, ok)
	assert.Empty(t, s.UpcomingAt(testNow, testNow, 3))
}

func TestNextIsStrictlyLater(t *testing.T) {
	exprs := []string{"* * * * * *", "0 * * * * *", "@hourly", "@every 1s", "0 0 0 1 * 1"}
	for _, expr := range exprs {
		s := MustParse(expr)
		ref := testNow
		for i := 0; i < 50; i++ {
			next, ok := s.NextAt(ref, testNow)
			require.True(t, ok, expr)
			require.True(t, next.After(ref), "%s: %s not after %s", expr, next, ref)
			ref = next
		}
	}
}

func TestDescriptors(t *testing.T) {
	tests := []struct {
		expr string
		want time.Time
	}{
		{"@yearly", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"@annually", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"@monthly", time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)},
		// 2026-10-16 是周五，下一个周日是 10-18
		{"@weekly", time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)},
		{"@daily", time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)},
		{"@midnight", time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)},
		{"@hourly", time.Date(2026, 10, 16, 13, 0, 0, 0, time.UTC)},
		{"@every 90s", testNow.Add(90 * time.Second)},
		{"@every 2d", testNow.Add(48 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			s, err := Parse(tt.expr)
			require.NoError(t, err)
			next, ok := s.NextAt(testNow, testNow)
			require.True(t, ok)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestDescriptorKeepsName(t *testing.T) {
	assert.Equal(t, "@daily", MustParse("@daily").String())
	assert.Equal(t, "@every 1m30s", MustParse("@every 90s").String())
}

func TestUpcoming(t *testing.T) {
	s := MustParse("0 0 9 * * 1-5")
	got := s.UpcomingAt(testNow, testNow, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []time.Time{
		time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 21, 9, 0, 0, 0, time.UTC),
	}, got)

	assert.Nil(t, s.UpcomingAt(testNow, testNow, 0))
}

func TestUpcomingStopsAtHorizon(t *testing.T) {
	// 2 月 31 日不存在
	s := MustParse("0 0 0 31 2 *")
	assert.Empty(t, s.UpcomingAt(testNow, testNow, 5))
}

func TestTextMarshaling(t *testing.T) {
	s := MustParse("0 15 10 * * 1-5")
	text, err := s.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0 15 10 * * 1-5", string(text))

	var decoded Schedule
	require.NoError(t, decoded.UnmarshalText([]byte("@every 5m")))
	assert.Equal(t, Interval, decoded.Kind())
	assert.Equal(t, 5*time.Minute, decoded.Interval())

	err = decoded.UnmarshalText([]byte("* *"))
	assert.ErrorIs(t, err, ErrFieldCount)
	// 解析失败时保留原值
	assert.Equal(t, 5*time.Minute, decoded.Interval())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "periodic", Periodic.String())
	assert.Equal(t, "interval", Interval.String())
	assert.Equal(t, "none", Kind(0).String())
}
