package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobbooster-backend/internal/shared/metrics"
	"jobbooster-backend/internal/shared/telemetry"
)

// Job type identifiers used in job IDs and the cron API.
const (
	JobDaily        = "daily_retention_check"
	JobNotification = "notification_check"
	JobWeekly       = "weekly_cleanup"
)

var (
	// ErrDisabled reports that the retention scheduler toggle is off.
	ErrDisabled = errors.New("data retention is disabled")
	// ErrJobRunning reports that another sweep of the same job type holds the lock.
	ErrJobRunning = errors.New("retention job already running")
)

// SchedulerConfig carries the sweep tunables.
type SchedulerConfig struct {
	BatchSize       int
	WeeklyBatchSize int
	LockTTL         time.Duration
}

// Scheduler orchestrates retention jobs across all data types. Toggle state
// lives in the settings repo and is read per call; overlapping sweeps of the
// same job type are excluded by a store-level lock with a TTL.
type Scheduler struct {
	deletion *DeletionService
	calc     *Calculator
	settings SettingsRepo
	locks    LockRepo
	notifier Notifier
	cfg      SchedulerConfig
	now      func() time.Time
}

// NewScheduler wires a Scheduler. notifier may be nil, in which case the
// notification check only reports counts.
func NewScheduler(deletion *DeletionService, settings SettingsRepo, locks LockRepo, notifier Notifier, cfg SchedulerConfig) *Scheduler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.WeeklyBatchSize <= 0 {
		cfg.WeeklyBatchSize = 5 * cfg.BatchSize
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Minute
	}
	return &Scheduler{
		deletion: deletion,
		calc:     deletion.Calculator(),
		settings: settings,
		locks:    locks,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Deletion exposes the wrapped deletion service for read-only callers.
func (s *Scheduler) Deletion() *DeletionService {
	return s.deletion
}

// Status returns the current persisted toggle state.
func (s *Scheduler) Status(ctx context.Context) (Settings, error) {
	return s.settings.Get(ctx)
}

// UpdateSettings flips the persisted enabled/dry-run toggles. Nil fields are
// left unchanged.
func (s *Scheduler) UpdateSettings(ctx context.Context, enabled, dryRun *bool) (Settings, error) {
	return s.settings.Update(ctx, func(settings *Settings) {
		if enabled != nil {
			settings.Enabled = *enabled
		}
		if dryRun != nil {
			settings.DryRun = *dryRun
		}
	})
}

// RunDailyRetentionCheck sweeps every data type with the standard batch size.
func (s *Scheduler) RunDailyRetentionCheck(ctx context.Context, adminUserID string) (JobReport, error) {
	return s.runSweep(ctx, JobDaily, adminUserID, s.cfg.BatchSize, nil)
}

// RunWeeklyCleanup sweeps every data type with the larger weekly batch size.
func (s *Scheduler) RunWeeklyCleanup(ctx context.Context, adminUserID string) (JobReport, error) {
	return s.runSweep(ctx, JobWeekly, adminUserID, s.cfg.WeeklyBatchSize, nil)
}

// RunDailyWithDryRun is RunDailyRetentionCheck with an explicit dry-run
// override, used by the HTTP entry points.
func (s *Scheduler) RunDailyWithDryRun(ctx context.Context, adminUserID string, dryRun *bool) (JobReport, error) {
	return s.runSweep(ctx, JobDaily, adminUserID, s.cfg.BatchSize, dryRun)
}

// RunWeeklyWithDryRun is RunWeeklyCleanup with an explicit dry-run override.
func (s *Scheduler) RunWeeklyWithDryRun(ctx context.Context, adminUserID string, dryRun *bool) (JobReport, error) {
	return s.runSweep(ctx, JobWeekly, adminUserID, s.cfg.WeeklyBatchSize, dryRun)
}

// RunNotificationCheck reports records entering the pre-deletion window for
// data types whose policy notifies, and enqueues notification messages when a
// notifier is configured. It never mutates records.
func (s *Scheduler) RunNotificationCheck(ctx context.Context, adminUserID string) (JobReport, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return JobReport{}, err
	}
	if !settings.Enabled {
		return JobReport{}, ErrDisabled
	}

	holder := uuid.NewString()
	acquired, err := s.locks.Acquire(ctx, JobNotification, holder, s.cfg.LockTTL)
	if err != nil {
		return JobReport{}, err
	}
	if !acquired {
		return JobReport{}, ErrJobRunning
	}
	defer s.release(JobNotification, holder)

	start := s.now().UTC()
	report := JobReport{
		JobID:     jobID(JobNotification, start),
		JobType:   JobNotification,
		StartTime: start,
		DryRun:    true,
		Errors:    []string{},
	}

	for _, dt := range AllDataTypes() {
		policy := PolicyFor(dt)
		if !policy.NotifyBeforeDeletion {
			continue
		}

		records, err := s.calc.NotificationWindow(ctx, dt, s.cfg.BatchSize)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", dt, err))
			continue
		}

		report.DataTypesProcessed = append(report.DataTypesProcessed, dt)
		report.TotalRecordsProcessed += len(records)

		if s.notifier != nil && len(records) > 0 {
			if err := s.notifier.NotifyUpcomingDeletion(ctx, dt, records); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: notify: %v", dt, err))
			}
		}
	}

	s.finishReport(&report, adminUserID)

	metrics.IncRetentionRun()
	if !report.Success {
		metrics.IncRetentionRunFailed()
	}
	metrics.ObserveRetentionRunDurationMs(float64(report.ProcessingTimeMs))

	return report, nil
}

// ProcessDataType runs an ad hoc single-type batch. A nil dryRun defers to the
// persisted setting; force-delete callers pass an explicit false.
func (s *Scheduler) ProcessDataType(ctx context.Context, dt DataType, adminUserID string, dryRun *bool) (BatchResult, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	if !settings.Enabled {
		return BatchResult{}, ErrDisabled
	}

	effectiveDryRun := settings.DryRun
	if dryRun != nil {
		effectiveDryRun = *dryRun
	}

	lockKey := "manual_" + string(dt)
	holder := uuid.NewString()
	acquired, err := s.locks.Acquire(ctx, lockKey, holder, s.cfg.LockTTL)
	if err != nil {
		return BatchResult{}, err
	}
	if !acquired {
		return BatchResult{}, ErrJobRunning
	}
	defer s.release(lockKey, holder)

	start := s.now().UTC()
	result, err := s.deletion.processWith(ctx, dt, adminUserID, DeletionConfig{
		DryRun:          effectiveDryRun,
		ContinueOnError: true,
		BatchSize:       s.cfg.BatchSize,
	})
	if err != nil {
		return result, err
	}

	telemetry.Info("retention.job.complete", map[string]any{
		"job_id":        fmt.Sprintf("manual_%s_%d", dt, start.Unix()),
		"job_type":      "manual",
		"data_type":     string(dt),
		"dry_run":       effectiveDryRun,
		"successful":    result.Successful,
		"failed":        result.Failed,
		"admin_user_id": adminUserID,
	})
	return result, nil
}

func (s *Scheduler) runSweep(ctx context.Context, jobType, adminUserID string, batchSize int, dryRunOverride *bool) (JobReport, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return JobReport{}, err
	}
	if !settings.Enabled {
		return JobReport{}, ErrDisabled
	}

	dryRun := settings.DryRun
	if dryRunOverride != nil {
		dryRun = *dryRunOverride
	}

	holder := uuid.NewString()
	acquired, err := s.locks.Acquire(ctx, jobType, holder, s.cfg.LockTTL)
	if err != nil {
		return JobReport{}, err
	}
	if !acquired {
		return JobReport{}, ErrJobRunning
	}
	defer s.release(jobType, holder)

	start := s.now().UTC()
	report := JobReport{
		JobID:     jobID(jobType, start),
		JobType:   jobType,
		StartTime: start,
		DryRun:    dryRun,
		Errors:    []string{},
	}

	for _, dt := range AllDataTypes() {
		result, err := s.deletion.processWith(ctx, dt, adminUserID, DeletionConfig{
			DryRun:          dryRun,
			ContinueOnError: true,
			BatchSize:       batchSize,
		})
		report.DataTypesProcessed = append(report.DataTypesProcessed, dt)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", dt, err))
			continue
		}

		report.TotalRecordsProcessed += result.TotalProcessed
		report.TotalRecordsDeleted += result.SoftDeleted + result.HardDeleted
		report.TotalRecordsAnonymized += result.Anonymized
		report.TotalRecordsFailed += result.Failed
		for _, recErr := range result.Errors {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s: %s", dt, recErr.RecordID, recErr.Message))
		}
	}

	s.finishReport(&report, adminUserID)

	metrics.IncRetentionRun()
	if !report.Success {
		metrics.IncRetentionRunFailed()
	}
	if !dryRun {
		metrics.AddRecordsDeleted(uint64(report.TotalRecordsDeleted))
		metrics.AddRecordsAnonymized(uint64(report.TotalRecordsAnonymized))
	}
	metrics.ObserveRetentionRunDurationMs(float64(report.ProcessingTimeMs))

	return report, nil
}

func (s *Scheduler) finishReport(report *JobReport, adminUserID string) {
	report.EndTime = s.now().UTC()
	report.ProcessingTimeMs = report.EndTime.Sub(report.StartTime).Milliseconds()
	report.Success = report.TotalRecordsFailed == 0 && len(report.Errors) == 0

	telemetry.Info("retention.job.complete", map[string]any{
		"job_id":          report.JobID,
		"job_type":        report.JobType,
		"success":         report.Success,
		"dry_run":         report.DryRun,
		"total_processed": report.TotalRecordsProcessed,
		"total_deleted":   report.TotalRecordsDeleted,
		"anonymized":      report.TotalRecordsAnonymized,
		"failed":          report.TotalRecordsFailed,
		"errors":          len(report.Errors),
		"duration_ms":     report.ProcessingTimeMs,
		"admin_user_id":   adminUserID,
	})
}

func (s *Scheduler) release(jobType, holder string) {
	// Release uses a fresh context so a canceled request still frees the lock.
	if err := s.locks.Release(context.Background(), jobType, holder); err != nil {
		telemetry.Warn("retention.lock.release_failed", map[string]any{
			"job_type": jobType,
			"err":      err.Error(),
		})
	}
}

func jobID(jobType string, start time.Time) string {
	return fmt.Sprintf("%s_%d_%s", jobType, start.Unix(), uuid.NewString()[:8])
}
