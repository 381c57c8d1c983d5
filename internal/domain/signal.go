package domain

import "time"

// Signal is the on-disk record indicating that SSO credentials are invalid
// and an interactive renewal is requested. It is written by the expiration
// detector (or a manual trigger) and consumed by the watcher.
//
// At most one signal exists at a time; its presence is the sole trigger
// condition for the watcher.
type Signal struct {
	ID        string `json:"id,omitempty"`
	Profile   string `json:"profile"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"timestamp,omitempty"`
	Source    string `json:"source,omitempty"`

	// NextAttemptAfter defers processing of this signal until the given
	// epoch second. Written by the watcher on snooze and on failed login
	// attempts. Zero means no deferral.
	NextAttemptAfter float64 `json:"nextAttemptAfter,omitempty"`
}

// SnoozedUntil returns the snooze deadline, or the zero time when the signal
// carries none.
func (s *Signal) SnoozedUntil() time.Time {
	if s == nil || s.NextAttemptAfter <= 0 {
		return time.Time{}
	}
	sec := int64(s.NextAttemptAfter)
	nsec := int64((s.NextAttemptAfter - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// Snooze sets the deferral deadline to now+d.
func (s *Signal) Snooze(now time.Time, d time.Duration) {
	s.NextAttemptAfter = float64(now.Add(d).Unix())
}
