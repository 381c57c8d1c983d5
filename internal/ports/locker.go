package ports

import "context"

// UnlockFunc releases a held login lock. It must be safe to call even after
// a failed handling path; errors are advisory only.
type UnlockFunc func(ctx context.Context) error

// Locker grants the single-flight token for "a login attempt is in
// progress". The acquire must be a single atomic create-if-absent operation
// because the contenders (a second daemon instance, a manual login command)
// run as separate processes.
type Locker interface {
	// TryLock attempts to acquire the lock without blocking. It returns
	// domain.ErrLockHeld when another holder exists. The returned
	// UnlockFunc MUST be called when handling completes, success or not.
	TryLock(ctx context.Context) (UnlockFunc, error)
}
