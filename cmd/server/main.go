package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpapi "bioclock/internal/http"
	"bioclock/internal/platform/config"
	"bioclock/internal/platform/httpserver"
	"bioclock/internal/platform/logger"
	"bioclock/internal/platform/metrics"
	"bioclock/internal/platform/otel"
)

var version = "dev"

// main wires dependencies, serves the router and drains background work on
// shutdown. Business logic lives in the internal domain packages.
func main() {
	// .env file is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.WorkStartFallback() {
		log.Warn("malformed work start time, using default",
			"value", cfg.Biometric.WorkStartTime,
			"default", config.DefaultWorkStart.String(),
		)
	}

	shutdownTracing, err := otel.Setup(ctx, cfg.Tracing, "bioclock", version)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("failed to flush spans", "error", err)
		}
	}()

	infra, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close(log)

	svc, err := buildServices(cfg, infra, log)
	if err != nil {
		if infra.kafka != nil {
			_ = infra.kafka.Close()
		}
		return err
	}
	defer func() {
		if err := svc.publisher.Close(); err != nil {
			log.Warn("failed to close attendance publisher", "error", err)
		}
	}()

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       log,
		Validator:    svc.validator,
		Metrics:      metrics.New(),
		Enrollment:   svc.enrollment,
		Verification: svc.verification,
		Attendance:   svc.attendance,
		HealthChecks: infra.HealthChecks(),
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting bioclock", "addr", cfg.Server.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
