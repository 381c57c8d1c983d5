package proxy

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/proxy/accesslog"
)

// Mirror re-fetches the most requested artifacts that have fallen out of the
// cache, so popular dependencies are already local when the next build asks.
type Mirror struct {
	Fetcher  Fetcher
	Log      *accesslog.Store
	CacheDir string
	Interval time.Duration
	TopN     int
	Logger   *slog.Logger
}

// Run mirrors until the context is canceled.
func (m *Mirror) Run(ctx context.Context) error {
	interval := m.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("mirror task started", "interval", interval, "top_n", m.TopN)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("mirror task stopped")
			return ctx.Err()
		case <-ticker.C:
			if n, err := m.WarmOnce(ctx); err != nil {
				logger.Error("mirror pass failed", "err", err)
			} else if n > 0 {
				logger.Info("mirror pass complete", "fetched", n)
			}
		}
	}
}

// WarmOnce performs one mirror pass and returns how many artifacts it
// brought back into the cache.
func (m *Mirror) WarmOnce(ctx context.Context) (int, error) {
	keys, err := m.Log.Top(ctx, m.TopN)
	if err != nil {
		return 0, err
	}

	fetched := 0
	for _, key := range keys {
		dest := filepath.Join(m.CacheDir, filepath.FromSlash(key))
		if _, err := os.Stat(dest); err == nil {
			continue
		}
		if err := m.Fetcher.Fetch(ctx, key, dest); err != nil {
			if errors.Is(err, ErrObjectNotFound) {
				continue // deleted upstream, nothing to warm
			}
			return fetched, err
		}
		fetched++
	}
	return fetched, nil
}
