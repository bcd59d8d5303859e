package activitylogs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jobbooster-backend/internal/shared/telemetry"
)

// Service records and lists user activity.
type Service struct {
	Repo Repo
}

// Record appends an activity entry. Failures are logged rather than
// propagated so request handling never fails on audit writes.
func (s *Service) Record(ctx context.Context, userID, action, clientIP string, metadata map[string]any) {
	if s == nil || s.Repo == nil || action == "" {
		return
	}
	entry := Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Metadata:  metadata,
		ClientIP:  clientIP,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Append(ctx, entry); err != nil {
		telemetry.Warn("activitylogs.append.failed", map[string]any{
			"action": action,
			"error":  err.Error(),
		})
	}
}

// List returns the user's activity entries, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Entry, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}
