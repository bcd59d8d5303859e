package generated

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"jobbooster-backend/internal/documents"
	"jobbooster-backend/internal/shared/telemetry"
)

// CreateInput carries the fields for a new piece of generated content.
type CreateInput struct {
	DocumentID string
	Kind       string
	Title      string
	Content    string
}

// Service contains business logic for generated content.
type Service struct {
	Repo    Repo
	DocRepo documents.Repo
}

// Create stores a new piece of content for the user. When DocumentID is set
// it must refer to one of the user's own documents.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Content, error) {
	if s == nil || s.Repo == nil {
		return Content{}, errors.New("generated service not configured")
	}
	if userID == "" || in.Content == "" || !ValidKind(in.Kind) {
		return Content{}, ErrInvalidInput
	}
	if in.DocumentID != "" {
		if s.DocRepo == nil {
			return Content{}, errors.New("generated service not configured")
		}
		if _, err := s.DocRepo.GetByID(ctx, userID, in.DocumentID); err != nil {
			if errors.Is(err, documents.ErrNotFound) {
				return Content{}, ErrInvalidInput
			}
			return Content{}, err
		}
	}

	content := Content{
		ID:         uuid.NewString(),
		UserID:     userID,
		DocumentID: in.DocumentID,
		Kind:       in.Kind,
		Title:      in.Title,
		Content:    in.Content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, content); err != nil {
		return Content{}, err
	}
	return content, nil
}

// Get returns content by ID and records the access.
func (s *Service) Get(ctx context.Context, userID, contentID string) (Content, error) {
	if userID == "" || contentID == "" {
		return Content{}, ErrInvalidInput
	}
	content, err := s.Repo.GetByID(ctx, userID, contentID)
	if err != nil {
		return Content{}, err
	}
	if err := s.Repo.TouchAccess(ctx, content.ID); err != nil {
		telemetry.Warn("generated.touch_access.failed", map[string]any{
			"contentId": content.ID,
			"error":     err.Error(),
		})
	}
	return content, nil
}

// List returns the user's content ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Content, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Delete soft-deletes a piece of content for the user.
func (s *Service) Delete(ctx context.Context, userID, contentID string) error {
	if userID == "" || contentID == "" {
		return ErrInvalidInput
	}
	return s.Repo.SoftDelete(ctx, userID, contentID)
}
