package retention

import (
	"context"
	"time"
)

// Calculator derives eligibility windows and statistics from the store.
// All results are computed per call against the current clock; nothing is cached.
type Calculator struct {
	Store Store
	Now   func() time.Time
}

func (c *Calculator) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

// Stats returns aggregate retention statistics for a data type.
func (c *Calculator) Stats(ctx context.Context, dt DataType) (Stats, error) {
	policy := PolicyFor(dt)
	now := c.now()

	total, err := c.Store.CountAll(ctx, dt)
	if err != nil {
		return Stats{}, err
	}

	deletionCutoff := now.AddDate(0, 0, -policy.RetentionDays)
	eligible, err := c.Store.CountOlderThan(ctx, dt, deletionCutoff)
	if err != nil {
		return Stats{}, err
	}

	notification := 0
	if policy.NotifyBeforeDeletion && policy.NotificationDays > 0 {
		windowCutoff := now.AddDate(0, 0, -(policy.RetentionDays - policy.NotificationDays))
		inWindow, err := c.Store.CountOlderThan(ctx, dt, windowCutoff)
		if err != nil {
			return Stats{}, err
		}
		notification = inWindow - eligible
		if notification < 0 {
			notification = 0
		}
	}

	oldestAgeDays := 0
	oldest, err := c.Store.OldestRecordTime(ctx, dt)
	if err != nil {
		return Stats{}, err
	}
	if oldest != nil {
		oldestAgeDays = int(now.Sub(*oldest).Hours() / 24)
		if oldestAgeDays < 0 {
			oldestAgeDays = 0
		}
	}

	return Stats{
		DataType:            dt,
		TotalCount:          total,
		EligibleCount:       eligible,
		NotificationCount:   notification,
		OldestRecordAgeDays: oldestAgeDays,
	}, nil
}

// EligibleRecords returns up to limit records past the deletion threshold,
// oldest first, with per-record deletion and notification dates filled in.
func (c *Calculator) EligibleRecords(ctx context.Context, dt DataType, limit int) ([]EligibleRecord, error) {
	policy := PolicyFor(dt)
	cutoff := c.now().AddDate(0, 0, -policy.RetentionDays)

	refs, err := c.Store.ListOlderThan(ctx, dt, cutoff, limit)
	if err != nil {
		return nil, err
	}
	return annotate(refs, policy), nil
}

// NotificationWindow returns records whose age has entered the pre-deletion
// notification window but has not yet crossed the deletion threshold.
func (c *Calculator) NotificationWindow(ctx context.Context, dt DataType, limit int) ([]EligibleRecord, error) {
	policy := PolicyFor(dt)
	if !policy.NotifyBeforeDeletion || policy.NotificationDays <= 0 {
		return nil, nil
	}

	now := c.now()
	windowCutoff := now.AddDate(0, 0, -(policy.RetentionDays - policy.NotificationDays))
	deletionCutoff := now.AddDate(0, 0, -policy.RetentionDays)

	// Bound on both ends so a deletion-eligible backlog, which sorts
	// oldest-first, cannot crowd the in-window records out of a limited page.
	refs, err := c.Store.ListBetween(ctx, dt, deletionCutoff, windowCutoff, limit)
	if err != nil {
		return nil, err
	}
	return annotate(refs, policy), nil
}

func annotate(refs []RecordRef, policy Policy) []EligibleRecord {
	out := make([]EligibleRecord, 0, len(refs))
	for _, ref := range refs {
		deletionDate := ref.AgeBasis().AddDate(0, 0, policy.RetentionDays)
		out = append(out, EligibleRecord{
			ID:               ref.ID,
			CreatedAt:        ref.CreatedAt,
			LastAccessedAt:   ref.LastAccessedAt,
			DeletionDate:     deletionDate,
			NotificationDate: deletionDate.AddDate(0, 0, -policy.NotificationDays),
		})
	}
	return out
}
