// Package server ties the process lifecycle together: HTTP serving, the
// optional stream consumer, the optional ingestion scheduler, and shutdown.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkghttp "github.com/pbtrad/balancing-market/pkg/http"
	pkgkafka "github.com/pbtrad/balancing-market/pkg/kafka"
	applogger "github.com/pbtrad/balancing-market/pkg/logger"
)

// IngestFunc runs one scheduled ingestion pass.
type IngestFunc func(ctx context.Context) error

// App owns the long-running pieces of the process.
type App struct {
	http            *pkghttp.Server
	consumer        *pkgkafka.Consumer // nil when the stream is disabled
	ingest          IngestFunc         // nil when scheduling is external
	ingestInterval  time.Duration
	ingestTimeout   time.Duration
	shutdownTimeout time.Duration
	logger          *applogger.Logger

	cancel context.CancelFunc
}

// AppOption configures App.
type AppOption func(*App)

// WithConsumer attaches the stream consumer.
func WithConsumer(c *pkgkafka.Consumer) AppOption {
	return func(a *App) { a.consumer = c }
}

// WithIngestSchedule runs fn every interval with the given per-run timeout.
func WithIngestSchedule(fn IngestFunc, interval, timeout time.Duration) AppOption {
	return func(a *App) {
		a.ingest = fn
		a.ingestInterval = interval
		a.ingestTimeout = timeout
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) AppOption {
	return func(a *App) { a.shutdownTimeout = d }
}

// NewApp creates the application around an HTTP server.
func NewApp(http *pkghttp.Server, logger *applogger.Logger, opts ...AppOption) *App {
	a := &App{
		http:            http,
		shutdownTimeout: 10 * time.Second,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts everything and blocks until SIGINT/SIGTERM, then shuts down.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	defer cancel()

	if err := a.http.Start(); err != nil {
		return err
	}

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.logger.Error("consumer stopped", applogger.Error(err))
			}
		}()
	}

	if a.ingest != nil && a.ingestInterval > 0 {
		go a.ingestLoop(ctx)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		a.logger.Info("shutdown signal received", applogger.String("signal", sig.String()))
	case <-ctx.Done():
	}

	return a.stop()
}

func (a *App) ingestLoop(ctx context.Context) {
	ticker := time.NewTicker(a.ingestInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx := ctx
			var cancel context.CancelFunc
			if a.ingestTimeout > 0 {
				runCtx, cancel = context.WithTimeout(ctx, a.ingestTimeout)
			}
			if err := a.ingest(runCtx); err != nil {
				a.logger.Error("scheduled ingestion failed", applogger.Error(err))
			}
			if cancel != nil {
				cancel()
			}
		}
	}
}

// Shutdown stops the app from outside Run.
func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	var firstErr error
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.logger.Error("consumer stop error", applogger.Error(err))
			firstErr = err
		}
	}
	if err := a.http.Stop(ctx); err != nil {
		a.logger.Error("http stop error", applogger.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	a.logger.Info("application stopped")
	return firstErr
}
