package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"resourcecatalog/internal/adapters/resources"
	"resourcecatalog/internal/config"
	"resourcecatalog/internal/core"
	"resourcecatalog/internal/infra/persistence/memory"
	"resourcecatalog/pkg/domain"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr, setupIdentity string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Restore the catalog and serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			if setupIdentity != "" {
				cfg.Setup.Identity = setupIdentity
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&setupIdentity, "setup-identity", "", "identity granted admin on first-time setup")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	zl, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := core.NewZapLogger(zl)

	snapshots, err := core.OpenSnapshotStore(ctx, cfg.StorageConfig())
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer func() { _ = snapshots.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := core.NewPrometheusMetricsRecorder(reg)
	if err != nil {
		return err
	}
	store := memory.NewStore()
	if err := core.RegisterStoreGauge(reg, store.Len); err != nil {
		return err
	}

	svc := core.NewService(store,
		core.WithLogger(logger),
		core.WithMetricsRecorder(metrics),
		core.WithSnapshotStore(snapshots),
	)
	if err := svc.Bootstrap(ctx, domain.Identity(cfg.Setup.Identity)); err != nil {
		zl.Error("catalog bootstrap failed", zap.Error(err))
		return fmt.Errorf("bootstrap: %w", err)
	}

	router := resources.NewHandler(svc, logger).Routes()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	stopLoop := startSnapshotLoop(ctx, svc, cfg.Storage.SnapshotInterval)
	defer stopLoop()

	errCh := make(chan error, 1)
	go func() {
		zl.Info("catalog listening", zap.String("addr", cfg.HTTP.Addr), zap.String("storage", cfg.Storage.Driver))
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		if errors.Is(serveErr, http.ErrServerClosed) {
			serveErr = nil
		}
	}
	stopLoop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("http shutdown", zap.Error(err))
	}
	if err := svc.Save(shutdownCtx); err != nil {
		return errors.Join(serveErr, fmt.Errorf("final snapshot: %w", err))
	}
	return serveErr
}

// startSnapshotLoop runs periodic saves in the background. The returned stop
// cancels the loop and blocks until any in-flight save has returned, so no
// periodic save can land after the final shutdown save. stop is safe to call
// more than once.
func startSnapshotLoop(ctx context.Context, svc *core.Service, interval time.Duration) (stop func()) {
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.RunSnapshotLoop(loopCtx, interval)
	}()
	return func() {
		cancel()
		<-done
	}
}
