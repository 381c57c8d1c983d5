package domain

import "time"

// OutcomeKind is the user's decision from one notification prompt.
type OutcomeKind string

const (
	// OutcomeRefresh means the user wants to log in now.
	OutcomeRefresh OutcomeKind = "refresh"
	// OutcomeSnooze defers the current signal for Outcome.SnoozeFor.
	OutcomeSnooze OutcomeKind = "snooze"
	// OutcomeSuppress clears the signal and disables reminders until a
	// new signal arrives.
	OutcomeSuppress OutcomeKind = "suppress"
	// OutcomeDismiss covers explicit close, cancel and dialog timeout.
	OutcomeDismiss OutcomeKind = "dismiss"
)

// Outcome is the transient result of one notification prompt. It is never
// persisted; it only drives the signal/cooldown mutation that follows.
type Outcome struct {
	Kind      OutcomeKind
	SnoozeFor time.Duration // set only for OutcomeSnooze
}

// LoginStatus classifies one invocation of the external login command.
type LoginStatus string

const (
	LoginSuccess LoginStatus = "success"
	LoginFailure LoginStatus = "failure"
	// LoginTimeout means the bound was exceeded and the subprocess was
	// killed. Treated identically to failure for state transitions.
	LoginTimeout LoginStatus = "timeout"
)

// LoginResult carries the classification plus diagnostics for logging.
type LoginResult struct {
	Status   LoginStatus
	ExitCode int
	Output   string
}

// Failed reports whether the attempt should follow the failure path.
func (r LoginResult) Failed() bool { return r.Status != LoginSuccess }
