package main

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"jobbooster-backend/internal/retention"
	"jobbooster-backend/internal/shared/metrics"
)

func retentionRunsTotal(t *testing.T) uint64 {
	t.Helper()
	const name = "retention_runs_total"
	for _, line := range strings.Split(metrics.Render(), "\n") {
		if strings.HasPrefix(line, name+" ") {
			v, err := strconv.ParseUint(strings.TrimPrefix(line, name+" "), 10, 64)
			if err != nil {
				t.Fatalf("parse %s: %v", name, err)
			}
			return v
		}
	}
	t.Fatalf("counter %s not rendered", name)
	return 0
}

func TestRunScheduledJobCountsRunOnce(t *testing.T) {
	store := retention.NewMemoryStore()
	svc := retention.NewDeletionService(store, retention.DefaultDeletionConfig())
	sched := retention.NewScheduler(svc, retention.NewMemorySettingsRepo(), retention.NewMemoryLockRepo(), nil, retention.SchedulerConfig{
		LockTTL: time.Minute,
	})

	before := retentionRunsTotal(t)
	runScheduledJob(context.Background(), "daily", func(ctx context.Context) (retention.JobReport, error) {
		return sched.RunDailyRetentionCheck(ctx, cronAdminUser)
	})
	if got := retentionRunsTotal(t) - before; got != 1 {
		t.Fatalf("expected exactly 1 counted run, got %d", got)
	}
}
