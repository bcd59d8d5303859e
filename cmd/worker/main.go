package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"jobbooster-backend/internal/bootstrap"
	"jobbooster-backend/internal/retention"
	"jobbooster-backend/internal/shared/config"
	"jobbooster-backend/internal/shared/telemetry"
)

const cronAdminUser = "cron"

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer func() {
		if app.DB != nil {
			_ = app.DB.Close()
		}
	}()

	if !cfg.RetentionEnabled {
		log.Print("data retention disabled; worker has nothing to schedule")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := cron.New()
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) (retention.JobReport, error)
	}{
		{"daily", cfg.RetentionDailyCron, func(ctx context.Context) (retention.JobReport, error) {
			return app.RetentionScheduler.RunDailyRetentionCheck(ctx, cronAdminUser)
		}},
		{"notification", cfg.RetentionNotifyCron, func(ctx context.Context) (retention.JobReport, error) {
			return app.RetentionScheduler.RunNotificationCheck(ctx, cronAdminUser)
		}},
		{"weekly", cfg.RetentionWeeklyCron, func(ctx context.Context) (retention.JobReport, error) {
			return app.RetentionScheduler.RunWeeklyCleanup(ctx, cronAdminUser)
		}},
	}

	for _, job := range jobs {
		if err := scheduleJob(ctx, runner, job.name, job.spec, job.run); err != nil {
			log.Fatalf("schedule %s job: %v", job.name, err)
		}
	}

	runner.Start()
	telemetry.Info("worker.started", map[string]any{
		"dailyCron":        cfg.RetentionDailyCron,
		"notificationCron": cfg.RetentionNotifyCron,
		"weeklyCron":       cfg.RetentionWeeklyCron,
	})

	<-ctx.Done()
	log.Print("shutting down worker")

	stopCtx := runner.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		log.Print("timed out waiting for running jobs")
	}
}

func scheduleJob(ctx context.Context, runner *cron.Cron, name, spec string, run func(context.Context) (retention.JobReport, error)) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	_, err := runner.AddFunc(spec, func() {
		runScheduledJob(ctx, name, run)
	})
	return err
}

// runScheduledJob executes one job and logs the outcome. Run counters and
// durations are recorded by the scheduler itself, once per run.
func runScheduledJob(ctx context.Context, name string, run func(context.Context) (retention.JobReport, error)) {
	report, err := run(ctx)
	switch {
	case errors.Is(err, retention.ErrJobRunning):
		telemetry.Warn("worker.job.skipped", map[string]any{
			"job":    name,
			"reason": "already running",
		})
		return
	case errors.Is(err, retention.ErrDisabled):
		telemetry.Info("worker.job.skipped", map[string]any{
			"job":    name,
			"reason": "retention disabled",
		})
		return
	case err != nil:
		telemetry.Error("worker.job.failed", map[string]any{
			"job":   name,
			"error": err.Error(),
		})
		return
	}

	telemetry.Info("worker.job.completed", map[string]any{
		"job":        name,
		"processed":  report.TotalRecordsProcessed,
		"deleted":    report.TotalRecordsDeleted,
		"failed":     report.TotalRecordsFailed,
		"success":    report.Success,
		"durationMs": report.ProcessingTimeMs,
	})
}
