package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jobbooster-backend/internal/shared/telemetry"
)

// Service contains business logic for sessions.
type Service struct {
	Repo Repo
}

// Start records a new session for the user, typically after login.
func (s *Service) Start(ctx context.Context, userID, userAgent, clientIP string) (Session, error) {
	if userID == "" {
		return Session{}, ErrInvalidInput
	}
	session := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserAgent: userAgent,
		ClientIP:  clientIP,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Touch refreshes a session's last seen time. Failures are logged rather
// than propagated so authenticated requests never fail on the bookkeeping.
func (s *Service) Touch(ctx context.Context, sessionID string) {
	if s == nil || s.Repo == nil || sessionID == "" {
		return
	}
	if err := s.Repo.Touch(ctx, sessionID); err != nil {
		telemetry.Warn("sessions.touch.failed", map[string]any{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}
}

// List returns the user's sessions, most recently seen first.
func (s *Service) List(ctx context.Context, userID string) ([]Session, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID)
}

// Revoke invalidates one of the user's sessions.
func (s *Service) Revoke(ctx context.Context, userID, sessionID string) error {
	if userID == "" || sessionID == "" {
		return ErrInvalidInput
	}
	return s.Repo.Revoke(ctx, userID, sessionID)
}
