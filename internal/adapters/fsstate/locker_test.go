package fsstate_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/adapters/fsstate"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/ports"
)

var _ ports.Locker = (*fsstate.Locker)(nil)

func TestLocker_AcquireRelease(t *testing.T) {
	locker := fsstate.NewLocker(t.TempDir())
	ctx := context.Background()

	unlock, err := locker.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, locker.Held())

	// Second acquire must fail while held.
	_, err = locker.TryLock(ctx)
	assert.ErrorIs(t, err, domain.ErrLockHeld)

	require.NoError(t, unlock(ctx))
	assert.False(t, locker.Held())

	// Releasing again is harmless.
	require.NoError(t, unlock(ctx))

	// And the lock is acquirable again.
	unlock2, err := locker.TryLock(ctx)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

// TestLocker_MutualExclusion races many acquirers against one lock path;
// exactly one may win.
func TestLocker_MutualExclusion(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	const contenders = 32
	var (
		wins  atomic.Int32
		start = make(chan struct{})
		wg    sync.WaitGroup
	)

	for range contenders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Separate Locker per goroutine, like separate processes.
			locker := fsstate.NewLocker(dir)
			<-start
			if _, err := locker.TryLock(ctx); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one contender may hold the lock")
}

func TestLocker_ForceUnlock(t *testing.T) {
	locker := fsstate.NewLocker(t.TempDir())
	ctx := context.Background()

	// Force-unlocking an unheld lock is fine.
	require.NoError(t, locker.ForceUnlock())

	_, err := locker.TryLock(ctx)
	require.NoError(t, err)

	require.NoError(t, locker.ForceUnlock())
	assert.False(t, locker.Held())

	unlock, err := locker.TryLock(ctx)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}
