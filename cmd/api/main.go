package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clinic360/platform/cmd/mainconfig"
	"github.com/clinic360/platform/internal/api/router"
	"github.com/clinic360/platform/internal/appointments"
	"github.com/clinic360/platform/internal/availability"
	"github.com/clinic360/platform/internal/booking"
	appconfig "github.com/clinic360/platform/internal/config"
	"github.com/clinic360/platform/internal/http/handlers"
	"github.com/clinic360/platform/internal/identity"
	"github.com/clinic360/platform/internal/notify"
	"github.com/clinic360/platform/internal/observability/metrics"
	notifworker "github.com/clinic360/platform/internal/worker/notifications"
	"github.com/clinic360/platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic360 scheduling API",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		logger.Error("SESSION_SECRET is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	schedMetrics := metrics.NewSchedulingMetrics(registry)
	notifMetrics := metrics.NewNotificationMetrics(registry)

	queue, err := mainconfig.BuildQueue(ctx, cfg)
	if err != nil {
		logger.Error("failed to build notification queue", "error", err)
		os.Exit(1)
	}
	publisher := notify.NewPublisher(queue, logger).WithMetrics(notifMetrics)

	usersRepo := identity.NewRepository(pool)
	slotsRepo := availability.NewRepository(pool)
	apptsRepo := appointments.NewRepository(pool)

	bookingSvc := booking.NewService(apptsRepo, slotsRepo, usersRepo, publisher, logger).
		WithMetrics(schedMetrics)

	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: handlers.NewAppointmentsHandler(bookingSvc, apptsRepo, logger),
		ScheduleHandler:     handlers.NewScheduleHandler(slotsRepo, logger),
		DoctorsHandler:      handlers.NewDoctorsHandler(usersRepo, logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		SessionSecret:       cfg.SessionSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  float64(cfg.RateLimitPerSecond),
		RateLimitBurst:      cfg.RateLimitBurst,
	})

	// The dispatcher runs in-process unless a dedicated notify-worker
	// deployment drains the queue instead.
	var dispatcher *notifworker.Dispatcher
	if cfg.WorkerCount > 0 {
		sender, err := mainconfig.BuildEmailSender(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to build email sender", "error", err)
			os.Exit(1)
		}
		dispatcher = notifworker.NewDispatcher(queue, sender, logger).
			WithWorkerCount(cfg.WorkerCount).
			WithMaxAttempts(cfg.NotifyMaxAttempts).
			WithBaseDelay(cfg.NotifyBaseDelay).
			WithSendTimeout(cfg.NotifySendTimeout).
			WithMetrics(notifMetrics)
		dispatcher.Start(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Stop the dispatcher after the HTTP surface so in-flight bookings can
	// still enqueue.
	cancel()
	if dispatcher != nil {
		dispatcher.Wait()
	}

	logger.Info("server stopped")
}
