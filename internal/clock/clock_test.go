package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemaining(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		started  time.Time
		duration time.Duration
		want     time.Duration
	}{
		{"just started", now, 30 * time.Minute, 30 * time.Minute},
		{"halfway", now.Add(-15 * time.Minute), 30 * time.Minute, 15 * time.Minute},
		{"exactly elapsed", now.Add(-30 * time.Minute), 30 * time.Minute, 0},
		{"overdue floors at zero", now.Add(-40 * time.Minute), 30 * time.Minute, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Remaining(tt.started, tt.duration, now))
		})
	}
}

func TestRemainingSeconds(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	started := now.Add(-29*time.Minute - 30*time.Second - 400*time.Millisecond)

	// Truncates, never rounds up.
	assert.Equal(t, int64(29), RemainingSeconds(started, 30*time.Minute, now))
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.False(t, IsExpired(now.Add(-29*time.Minute), 30*time.Minute, now))
	assert.True(t, IsExpired(now.Add(-30*time.Minute), 30*time.Minute, now))
	assert.True(t, IsExpired(now.Add(-40*time.Minute), 30*time.Minute, now))
}

func TestWarn(t *testing.T) {
	tests := []struct {
		remaining time.Duration
		want      WarnLevel
	}{
		{0, WarnCritical},
		{45 * time.Second, WarnCritical},
		{60 * time.Second, WarnCritical},
		{61 * time.Second, WarnWarning},
		{300 * time.Second, WarnWarning},
		{301 * time.Second, WarnInfo},
		{600 * time.Second, WarnInfo},
		{601 * time.Second, WarnNone},
		{2 * time.Hour, WarnNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Warn(tt.remaining), "remaining=%s", tt.remaining)
	}
}
