package retention

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// failingStore wraps a MemoryStore and fails mutations for chosen record IDs.
type failingStore struct {
	*MemoryStore
	failIDs map[string]bool
}

func (f *failingStore) SoftDelete(ctx context.Context, dt DataType, id string) error {
	if f.failIDs[id] {
		return errors.New("injected failure")
	}
	return f.MemoryStore.SoftDelete(ctx, dt, id)
}

func (f *failingStore) HardDelete(ctx context.Context, dt DataType, id string) error {
	if f.failIDs[id] {
		return errors.New("injected failure")
	}
	return f.MemoryStore.HardDelete(ctx, dt, id)
}

func (f *failingStore) Anonymize(ctx context.Context, dt DataType, id string) error {
	if f.failIDs[id] {
		return errors.New("injected failure")
	}
	return f.MemoryStore.Anonymize(ctx, dt, id)
}

func seedEligible(store *MemoryStore, dt DataType, n int) {
	policy := PolicyFor(dt)
	base := time.Now().UTC().AddDate(0, 0, -(policy.RetentionDays + 30))
	for i := 0; i < n; i++ {
		store.Add(dt, MemoryRecord{
			ID:        fmt.Sprintf("rec-%02d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
}

func TestProcessDataRetentionAppliesPolicyMode(t *testing.T) {
	store := NewMemoryStore()
	seedEligible(store, DataTypeSessions, 3)
	seedEligible(store, DataTypeActivityLogs, 2)
	seedEligible(store, DataTypeCVDocuments, 2)

	svc := NewDeletionService(store, DefaultDeletionConfig())

	cases := []struct {
		dt   DataType
		want func(BatchResult) bool
		desc string
	}{
		{DataTypeSessions, func(r BatchResult) bool { return r.HardDeleted == 3 }, "3 hard deletes"},
		{DataTypeActivityLogs, func(r BatchResult) bool { return r.Anonymized == 2 }, "2 anonymizations"},
		{DataTypeCVDocuments, func(r BatchResult) bool { return r.SoftDeleted == 2 }, "2 soft deletes"},
	}
	for _, tc := range cases {
		result, err := svc.ProcessDataRetention(context.Background(), tc.dt, "admin-1")
		if err != nil {
			t.Fatalf("%s: ProcessDataRetention: %v", tc.dt, err)
		}
		if result.Failed != 0 {
			t.Fatalf("%s: unexpected failures: %+v", tc.dt, result.Errors)
		}
		if !tc.want(result) {
			t.Fatalf("%s: expected %s, got %+v", tc.dt, tc.desc, result)
		}
		if result.Successful+result.Failed != result.TotalProcessed {
			t.Fatalf("%s: invariant violated: %+v", tc.dt, result)
		}
	}

	// Sessions are removed outright; documents and logs remain as rows.
	if got := len(store.Snapshot(DataTypeSessions)); got != 0 {
		t.Fatalf("expected sessions removed, %d remain", got)
	}
	if got := len(store.Snapshot(DataTypeActivityLogs)); got != 2 {
		t.Fatalf("expected anonymized log rows kept, got %d", got)
	}
}

func TestProcessDataRetentionDryRunDoesNotMutate(t *testing.T) {
	store := NewMemoryStore()
	seedEligible(store, DataTypeSessions, 4)

	svc := NewDeletionService(store, DeletionConfig{DryRun: true, ContinueOnError: true})

	before := store.Snapshot(DataTypeSessions)
	result, err := svc.ProcessDataRetention(context.Background(), DataTypeSessions, "admin-1")
	if err != nil {
		t.Fatalf("ProcessDataRetention: %v", err)
	}
	after := store.Snapshot(DataTypeSessions)

	if len(before) != len(after) {
		t.Fatalf("dry run mutated store: before %d after %d", len(before), len(after))
	}
	if result.TotalProcessed != 4 || result.Successful != 4 {
		t.Fatalf("dry run should count records as successful: %+v", result)
	}
	if result.Anonymized+result.SoftDeleted+result.HardDeleted != 0 {
		t.Fatalf("dry run must not report applied actions: %+v", result)
	}
	if !result.DryRun {
		t.Fatalf("result should be flagged as dry run: %+v", result)
	}
}

func TestProcessDataRetentionCountInvariantWithFailures(t *testing.T) {
	mem := NewMemoryStore()
	seedEligible(mem, DataTypeSessions, 5)
	store := &failingStore{MemoryStore: mem, failIDs: map[string]bool{"rec-01": true, "rec-03": true}}

	svc := NewDeletionService(store, DefaultDeletionConfig())
	result, err := svc.ProcessDataRetention(context.Background(), DataTypeSessions, "admin-1")
	if err != nil {
		t.Fatalf("ProcessDataRetention: %v", err)
	}

	if result.TotalProcessed != 5 {
		t.Fatalf("continueOnError should attempt every record: %+v", result)
	}
	if result.Failed != 2 || result.Successful != 3 {
		t.Fatalf("expected 3 successes and 2 failures: %+v", result)
	}
	if result.Successful+result.Failed != result.TotalProcessed {
		t.Fatalf("invariant violated: %+v", result)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 recorded errors, got %+v", result.Errors)
	}
}

func TestProcessDataRetentionStopOnFirstError(t *testing.T) {
	mem := NewMemoryStore()
	seedEligible(mem, DataTypeSessions, 5)
	// rec-01 is the second-oldest record, so the batch should stop there.
	store := &failingStore{MemoryStore: mem, failIDs: map[string]bool{"rec-01": true}}

	svc := NewDeletionService(store, DeletionConfig{ContinueOnError: false})
	result, err := svc.ProcessDataRetention(context.Background(), DataTypeSessions, "admin-1")
	if !errors.Is(err, ErrBatchAborted) {
		t.Fatalf("expected ErrBatchAborted, got %v", err)
	}

	if result.TotalProcessed > 2 {
		t.Fatalf("expected early stop at record 2, processed %d", result.TotalProcessed)
	}
	if len(result.Errors) == 0 {
		t.Fatalf("expected recorded error, got none")
	}
	if result.Successful+result.Failed != result.TotalProcessed {
		t.Fatalf("invariant violated: %+v", result)
	}
}

func TestDeletionStatisticsAccumulate(t *testing.T) {
	store := NewMemoryStore()
	seedEligible(store, DataTypeSessions, 2)

	svc := NewDeletionService(store, DefaultDeletionConfig())
	if _, err := svc.ProcessDataRetention(context.Background(), DataTypeSessions, "admin-1"); err != nil {
		t.Fatalf("first run: %v", err)
	}

	seedEligible(store, DataTypeSessions, 3)
	if _, err := svc.ProcessDataRetention(context.Background(), DataTypeSessions, "admin-1"); err != nil {
		t.Fatalf("second run: %v", err)
	}

	stats := svc.DeletionStatistics()
	agg, ok := stats[DataTypeSessions]
	if !ok {
		t.Fatal("expected sessions entry in statistics")
	}
	if agg.TotalProcessed != 5 || agg.HardDeleted != 5 {
		t.Fatalf("expected cumulative counters across runs: %+v", agg)
	}
}
