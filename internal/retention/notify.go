package retention

import (
	"context"
	"fmt"
	"time"

	"jobbooster-backend/internal/queue"
)

// Notifier receives records entering the pre-deletion notification window.
// Actual delivery (email etc.) is handled downstream of the queue.
type Notifier interface {
	NotifyUpcomingDeletion(ctx context.Context, dt DataType, records []EligibleRecord) error
}

// QueueNotifier enqueues one notification message per record.
type QueueNotifier struct {
	Queue queue.Client
}

// NotifyUpcomingDeletion sends a message per record; the first send error
// aborts the remainder so a broken queue surfaces once per data type.
func (n *QueueNotifier) NotifyUpcomingDeletion(ctx context.Context, dt DataType, records []EligibleRecord) error {
	if n.Queue == nil {
		return nil
	}
	for _, rec := range records {
		msg := queue.Message{
			DataType:     string(dt),
			RecordID:     rec.ID,
			DeletionDate: rec.DeletionDate.Format(time.RFC3339),
			EnqueuedAt:   time.Now().UTC().Format(time.RFC3339),
			Version:      1,
		}
		if err := n.Queue.Send(ctx, msg); err != nil {
			return fmt.Errorf("enqueue notification for %s/%s: %w", dt, rec.ID, err)
		}
	}
	return nil
}

var _ Notifier = (*QueueNotifier)(nil)
