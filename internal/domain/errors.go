package domain

import "errors"

// ErrLockHeld is returned when the login lock is already held by another
// process. Normal contention outcome, not a failure.
var ErrLockHeld = errors.New("login lock already held")

// ErrNoSignal is returned when no renewal signal is present.
var ErrNoSignal = errors.New("no renewal signal")
