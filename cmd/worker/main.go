package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/synergy-shm/synergy/internal/app"
	jobmetrics "github.com/synergy-shm/synergy/internal/jobs"
	"github.com/synergy-shm/synergy/internal/platform/db"
	"github.com/synergy-shm/synergy/internal/users"
	"github.com/synergy-shm/synergy/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	var directory jobs.UserLister = users.NewMemoryRepository(users.Fixtures()...)
	if cfg.DataSource == app.DataSourcePostgres {
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			logger.Error("connect database", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		directory = users.NewPGRepository(pool)
	}

	mailer, err := newMailer(cfg, logger)
	if err != nil {
		logger.Error("init mailer", slog.Any("error", err))
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	metricsServer := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("worker metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	invitationJob := jobs.NewInvitationJob(mailer, cfg.AppBaseURL, logger, metrics)
	lineageJob := jobs.NewLineageAuditJob(directory, logger, metrics)

	lineageTask, err := jobs.NewLineageAuditTask("cron")
	if err != nil {
		logger.Error("build lineage audit task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskInvitationMail, Handler: invitationJob.Handle},
			{Type: jobs.TaskLineageAudit, Handler: lineageJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.LineageCron, Task: lineageTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

func newMailer(cfg *app.Config, logger *slog.Logger) (jobs.Mailer, error) {
	if cfg.SMTPAddr == "" {
		logger.Info("smtp not configured, invitation mails are logged")
		return jobs.LogMailer{Logger: logger}, nil
	}
	return jobs.NewSMTPMailer(jobs.SMTPConfig{
		Addr:     cfg.SMTPAddr,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})
}
