package retention

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"jobbooster-backend/internal/shared/telemetry"
)

// ErrBatchAborted is returned when ContinueOnError is off and a record fails;
// the remaining batch is not attempted.
var ErrBatchAborted = errors.New("retention batch aborted")

// DeletionConfig controls batch behavior. The zero value is not useful;
// use DefaultDeletionConfig as a starting point.
type DeletionConfig struct {
	DryRun          bool
	ContinueOnError bool
	BatchSize       int
}

// DefaultDeletionConfig mirrors the documented defaults: mutating runs that
// keep going past individual record failures.
func DefaultDeletionConfig() DeletionConfig {
	return DeletionConfig{
		DryRun:          false,
		ContinueOnError: true,
		BatchSize:       100,
	}
}

// DeletionService applies a data type's retention action to its eligible
// records and accumulates per-type statistics across calls.
type DeletionService struct {
	store Store
	calc  *Calculator
	cfg   DeletionConfig

	mu    sync.Mutex
	stats map[DataType]BatchResult
}

// NewDeletionService constructs a DeletionService over the given store.
func NewDeletionService(store Store, cfg DeletionConfig) *DeletionService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultDeletionConfig().BatchSize
	}
	return &DeletionService{
		store: store,
		calc:  &Calculator{Store: store},
		cfg:   cfg,
		stats: make(map[DataType]BatchResult),
	}
}

// Calculator exposes the eligibility calculator bound to this service's store.
func (s *DeletionService) Calculator() *Calculator {
	return s.calc
}

// ProcessDataRetention fetches eligible records for the data type and applies
// the policy's deletion action to each, using the construction-time config.
func (s *DeletionService) ProcessDataRetention(ctx context.Context, dt DataType, adminUserID string) (BatchResult, error) {
	return s.processWith(ctx, dt, adminUserID, s.cfg)
}

// EligibleRecords is a read-only passthrough used by preview and force-delete
// callers; it never mutates store state.
func (s *DeletionService) EligibleRecords(ctx context.Context, dt DataType, limit int) ([]EligibleRecord, error) {
	return s.calc.EligibleRecords(ctx, dt, limit)
}

// DeletionStatistics returns cumulative per-type counters for this process.
func (s *DeletionService) DeletionStatistics() map[DataType]BatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[DataType]BatchResult, len(s.stats))
	for dt, res := range s.stats {
		res.Errors = append([]RecordError(nil), res.Errors...)
		out[dt] = res
	}
	return out
}

// processWith runs one batch with an explicit config. The scheduler uses this
// to resolve dry-run state per run instead of sharing mutable service state.
func (s *DeletionService) processWith(ctx context.Context, dt DataType, adminUserID string, cfg DeletionConfig) (BatchResult, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = s.cfg.BatchSize
	}

	start := time.Now()
	policy := PolicyFor(dt)

	records, err := s.calc.EligibleRecords(ctx, dt, cfg.BatchSize)
	if err != nil {
		return BatchResult{DataType: dt, DryRun: cfg.DryRun}, err
	}

	result := BatchResult{DataType: dt, DryRun: cfg.DryRun}
	var abort error

	for _, rec := range records {
		result.TotalProcessed++

		if cfg.DryRun {
			result.Successful++
			continue
		}

		if err := s.applyAction(ctx, dt, policy.DeletionMode, rec.ID, &result); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RecordError{RecordID: rec.ID, Message: err.Error()})
			if !cfg.ContinueOnError {
				abort = fmt.Errorf("%w: record %s: %v", ErrBatchAborted, rec.ID, err)
				break
			}
			continue
		}
		result.Successful++
	}

	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	s.accumulate(result)

	telemetry.Info("retention.batch.complete", map[string]any{
		"data_type":       string(dt),
		"dry_run":         cfg.DryRun,
		"total_processed": result.TotalProcessed,
		"successful":      result.Successful,
		"failed":          result.Failed,
		"duration_ms":     result.ProcessingTimeMs,
		"admin_user_id":   adminUserID,
	})

	return result, abort
}

func (s *DeletionService) applyAction(ctx context.Context, dt DataType, mode DeletionMode, id string, result *BatchResult) error {
	switch mode {
	case ModeAnonymize:
		if err := s.store.Anonymize(ctx, dt, id); err != nil {
			return err
		}
		result.Anonymized++
	case ModeSoftDelete:
		if err := s.store.SoftDelete(ctx, dt, id); err != nil {
			return err
		}
		result.SoftDeleted++
	case ModeHardDelete:
		if err := s.store.HardDelete(ctx, dt, id); err != nil {
			return err
		}
		result.HardDeleted++
	default:
		return fmt.Errorf("unsupported deletion mode %q for %s", mode, dt)
	}
	return nil
}

func (s *DeletionService) accumulate(res BatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.stats[res.DataType]
	agg.DataType = res.DataType
	agg.TotalProcessed += res.TotalProcessed
	agg.Successful += res.Successful
	agg.Failed += res.Failed
	agg.Anonymized += res.Anonymized
	agg.SoftDeleted += res.SoftDeleted
	agg.HardDeleted += res.HardDeleted
	agg.ProcessingTimeMs += res.ProcessingTimeMs
	agg.Errors = append(agg.Errors, res.Errors...)
	s.stats[res.DataType] = agg
}
