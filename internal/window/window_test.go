package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceDate(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"midweek thursday", time.Date(2026, 10, 15, 14, 30, 0, 0, loc), time.Date(2026, 10, 18, 0, 0, 0, 0, loc)},
		{"sunday itself", time.Date(2026, 10, 18, 9, 0, 0, 0, loc), time.Date(2026, 10, 25, 0, 0, 0, 0, loc)},
		{"saturday night", time.Date(2026, 10, 17, 23, 59, 0, 0, loc), time.Date(2026, 10, 18, 0, 0, 0, 0, loc)},
		{"across year end", time.Date(2026, 12, 30, 8, 0, 0, 0, loc), time.Date(2027, 1, 3, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ServiceDate(tt.now))
		})
	}
}

func TestResolve(t *testing.T) {
	w, err := Resolve(time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC), DefaultTrailingDays)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), w.ServiceDate)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2026, 10, 18, 23, 59, 59, 999999999, time.UTC), w.End)
	assert.Equal(t, 7, w.Days())
	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.End.Add(time.Nanosecond)))
}

func TestNext(t *testing.T) {
	w, err := Resolve(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), 7)
	require.NoError(t, err)

	next := w.Next()
	assert.Equal(t, time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC), next.ServiceDate)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), next.Start)
	assert.Equal(t, w.Days(), next.Days())
	// original stays untouched
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), w.ServiceDate)
}

func TestNew_RejectsEmptyWindow(t *testing.T) {
	_, err := New(time.Now(), 0)
	require.Error(t, err)
}

func TestResolve_KeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// DST ends on 2026-11-01 in New York.
	w, err := Resolve(time.Date(2026, 10, 29, 12, 0, 0, 0, loc), 7)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, loc), w.ServiceDate)
	assert.Equal(t, loc, w.Start.Location())
	assert.Equal(t, 0, w.Start.Hour())
}
