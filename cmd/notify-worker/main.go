// notify-worker drains the email notification queue in a standalone process,
// for deployments that keep the API and the dispatcher separate.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clinic360/platform/cmd/mainconfig"
	appconfig "github.com/clinic360/platform/internal/config"
	"github.com/clinic360/platform/internal/observability/metrics"
	notifworker "github.com/clinic360/platform/internal/worker/notifications"
	"github.com/clinic360/platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if !cfg.QueueConfigured() {
		logger.Error("notification queue is not configured",
			"provider", cfg.NotifyQueueProvider,
		)
		os.Exit(1)
	}
	if cfg.Env == "production" && !cfg.MailConfigured() {
		logger.Error("no mail relay configured (set SENDGRID_API_KEY or SES_ENABLED with EMAIL_FROM)")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue, err := mainconfig.BuildQueue(ctx, cfg)
	if err != nil {
		logger.Error("failed to build notification queue", "error", err)
		os.Exit(1)
	}
	sender, err := mainconfig.BuildEmailSender(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build email sender", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	notifMetrics := metrics.NewNotificationMetrics(registry)

	dispatcher := notifworker.NewDispatcher(queue, sender, logger).
		WithWorkerCount(cfg.WorkerCount).
		WithMaxAttempts(cfg.NotifyMaxAttempts).
		WithBaseDelay(cfg.NotifyBaseDelay).
		WithSendTimeout(cfg.NotifySendTimeout).
		WithMetrics(notifMetrics)

	logger.Info("starting notification worker",
		"provider", cfg.NotifyQueueProvider,
		"queue", cfg.NotifyQueueName,
		"workers", cfg.WorkerCount,
	)
	dispatcher.Start(ctx)

	// Metrics endpoint for the worker deployment.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down notification worker...")
	cancel()
	dispatcher.Wait()
	_ = srv.Close()
	logger.Info("notification worker stopped")
}
