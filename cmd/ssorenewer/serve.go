package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/proxy"
	"github.com/rp-arielrodriguez/bazel-aws-maven-proxy/internal/proxy/accesslog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the caching Maven artifact proxy",
	Long: `Serves Maven artifacts from the local cache directory, fetching misses
from the configured S3 bucket through the aws CLI. Exposes /healthz and
Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if cfg.Bucket == "" {
			fmt.Fprintln(os.Stderr, "no bucket configured (set S3_BUCKET_NAME or bucket: in the config file)")
			os.Exit(1)
		}
		if port, _ := cmd.Flags().GetInt("port"); cmd.Flags().Changed("port") {
			cfg.ProxyPort = port
		}

		access, err := accesslog.Open(cmd.Context(), filepath.Join(cfg.CacheDir, ".accesslog", "access.db"))
		if err != nil {
			// The proxy works without the access log; only mirroring is lost.
			logger.Warn("access log unavailable, mirroring disabled", "err", err)
			access = nil
		} else {
			defer access.Close()
		}

		fetcher := proxy.NewCLIFetcher(cfg.Bucket, cfg.Profile, cfg.Region, logger)
		server := proxy.NewServer(cfg.CacheDir, fetcher, access, prometheus.DefaultRegisterer, logger)

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.ProxyPort),
			Handler: server.Handler(),
		}

		ctx, cancel := signalContext()
		defer cancel()

		if access != nil {
			mirror := &proxy.Mirror{
				Fetcher:  fetcher,
				Log:      access,
				CacheDir: cfg.CacheDir,
				Interval: cfg.MirrorInterval,
				TopN:     cfg.MirrorTopN,
				Logger:   logger,
			}
			go mirror.Run(ctx)
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("artifact proxy listening",
				"addr", srv.Addr, "bucket", cfg.Bucket, "cache_dir", cfg.CacheDir)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		case <-ctx.Done():
			logger.Info("shutting down artifact proxy")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete, closing", "err", err)
				srv.Close()
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 9000, "Port to listen on")
}
