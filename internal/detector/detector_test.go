package detector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/adapters/memstate"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/detector"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/domain"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/logging"
)

type fakeChecker struct {
	valid  bool
	reason string
	checks int
}

func (f *fakeChecker) Check(ctx context.Context) (bool, string) {
	f.checks++
	return f.valid, f.reason
}

func TestCheckOnce_WritesSignalOnInvalidTransition(t *testing.T) {
	ctx := context.Background()
	store := memstate.New()
	chk := &fakeChecker{valid: false, reason: "sso token expired"}
	d := detector.New(store, chk, detector.Options{Profile: "staging"}, logging.NewNop())

	require.NoError(t, d.CheckOnce(ctx))

	sig, err := store.LoadSignal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "staging", sig.Profile)
	assert.Equal(t, "sso token expired", sig.Reason)
	assert.Equal(t, "sso-monitor", sig.Source)
	assert.NotEmpty(t, sig.ID)
	assert.NotEmpty(t, sig.CreatedAt)
}

func TestCheckOnce_SteadyInvalidDoesNotChurnSignal(t *testing.T) {
	ctx := context.Background()
	store := memstate.New()
	chk := &fakeChecker{valid: false, reason: "expired"}
	d := detector.New(store, chk, detector.Options{}, logging.NewNop())

	require.NoError(t, d.CheckOnce(ctx))
	first, err := store.LoadSignal(ctx)
	require.NoError(t, err)

	require.NoError(t, d.CheckOnce(ctx))
	require.NoError(t, d.CheckOnce(ctx))

	again, err := store.LoadSignal(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestCheckOnce_ClearsSignalOnValidTransition(t *testing.T) {
	ctx := context.Background()
	store := memstate.New()
	chk := &fakeChecker{valid: false, reason: "expired"}
	d := detector.New(store, chk, detector.Options{}, logging.NewNop())

	require.NoError(t, d.CheckOnce(ctx))
	_, err := store.LoadSignal(ctx)
	require.NoError(t, err)

	chk.valid = true
	require.NoError(t, d.CheckOnce(ctx))

	_, err = store.LoadSignal(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSignal)
}

func TestCheckOnce_FirstCheckValidClearsStaleSignal(t *testing.T) {
	ctx := context.Background()
	store := memstate.New()
	require.NoError(t, store.SaveSignal(ctx, &domain.Signal{ID: "stale"}))

	d := detector.New(store, &fakeChecker{valid: true}, detector.Options{}, logging.NewNop())
	require.NoError(t, d.CheckOnce(ctx))

	_, err := store.LoadSignal(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSignal)
}

func TestCheckOnce_SteadyValidIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := memstate.New()
	chk := &fakeChecker{valid: true}
	d := detector.New(store, chk, detector.Options{}, logging.NewNop())

	require.NoError(t, d.CheckOnce(ctx))

	// A signal planted by another process stays put while the state is steady.
	require.NoError(t, store.SaveSignal(ctx, &domain.Signal{ID: "manual"}))
	require.NoError(t, d.CheckOnce(ctx))

	sig, err := store.LoadSignal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "manual", sig.ID)
}
