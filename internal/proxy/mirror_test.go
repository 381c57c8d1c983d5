package proxy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/logging"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/proxy"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/proxy/accesslog"
)

func openLog(t *testing.T) *accesslog.Store {
	t.Helper()
	store, err := accesslog.Open(context.Background(), filepath.Join(t.TempDir(), "access.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestWarmOnce_FetchesMissingPopularArtifacts(t *testing.T) {
	ctx := context.Background()
	log := openLog(t)
	now := time.Now()

	require.NoError(t, log.Record(ctx, "popular.jar", now))
	require.NoError(t, log.Record(ctx, "popular.jar", now))
	require.NoError(t, log.Record(ctx, "already-cached.jar", now))
	require.NoError(t, log.Record(ctx, "gone-upstream.jar", now))

	fetcher := &fakeFetcher{objects: map[string][]byte{
		"popular.jar": []byte("bytes"),
	}}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "already-cached.jar"), []byte("x"), 0o644))

	m := &proxy.Mirror{
		Fetcher:  fetcher,
		Log:      log,
		CacheDir: dir,
		TopN:     10,
		Logger:   logging.NewNop(),
	}

	n, err := m.WarmOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(dir, "popular.jar"))
}

func TestWarmOnce_EmptyLogIsNoOp(t *testing.T) {
	m := &proxy.Mirror{
		Fetcher:  &fakeFetcher{},
		Log:      openLog(t),
		CacheDir: t.TempDir(),
		TopN:     10,
		Logger:   logging.NewNop(),
	}

	n, err := m.WarmOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
