package watcher

import "time"

// Throttle reports which of the two independent throttles currently
// suppress signal handling. Cooldown protects against repeated prompts
// across unrelated expirations; snooze defers only the current signal.
type Throttle struct {
	BlockedByCooldown bool
	BlockedBySnooze   bool
}

// Blocked reports whether any throttle is active.
func (t Throttle) Blocked() bool {
	return t.BlockedByCooldown || t.BlockedBySnooze
}

// EvaluateThrottle is a pure function over the store contents and the
// clock. cooldownAt and snoozedUntil use the zero time for "absent".
func EvaluateThrottle(now, cooldownAt time.Time, window time.Duration, snoozedUntil time.Time) Throttle {
	var t Throttle
	if !cooldownAt.IsZero() && now.Sub(cooldownAt) < window {
		t.BlockedByCooldown = true
	}
	if !snoozedUntil.IsZero() && now.Before(snoozedUntil) {
		t.BlockedBySnooze = true
	}
	return t
}
