package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateThrottle(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 600 * time.Second

	tests := []struct {
		name         string
		cooldownAt   time.Time
		snoozedUntil time.Time
		wantCooldown bool
		wantSnooze   bool
	}{
		{
			name: "nothing recorded",
		},
		{
			name:         "cooldown active",
			cooldownAt:   now.Add(-time.Minute),
			wantCooldown: true,
		},
		{
			name:       "cooldown just expired",
			cooldownAt: now.Add(-window),
		},
		{
			name:         "cooldown at boundary still active",
			cooldownAt:   now.Add(-window + time.Second),
			wantCooldown: true,
		},
		{
			name:         "snooze active",
			snoozedUntil: now.Add(30 * time.Second),
			wantSnooze:   true,
		},
		{
			name:         "snooze expired",
			snoozedUntil: now.Add(-time.Second),
		},
		{
			name:         "snooze deadline exactly now is not blocked",
			snoozedUntil: now,
		},
		{
			name:         "both throttles active independently",
			cooldownAt:   now.Add(-time.Minute),
			snoozedUntil: now.Add(time.Hour),
			wantCooldown: true,
			wantSnooze:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateThrottle(now, tt.cooldownAt, window, tt.snoozedUntil)
			assert.Equal(t, tt.wantCooldown, got.BlockedByCooldown)
			assert.Equal(t, tt.wantSnooze, got.BlockedBySnooze)
			assert.Equal(t, tt.wantCooldown || tt.wantSnooze, got.Blocked())
		})
	}
}
