package gdpr

import (
	"context"
	"errors"
	"time"

	"jobbooster-backend/internal/activitylogs"
	"jobbooster-backend/internal/documents"
	"jobbooster-backend/internal/generated"
	"jobbooster-backend/internal/sessions"
	"jobbooster-backend/internal/shared/telemetry"
	"jobbooster-backend/internal/users"
)

const exportPageSize = 100

// Export is the subject-access bundle returned to the user as JSON.
type Export struct {
	GeneratedAt time.Time            `json:"generatedAt"`
	User        users.User           `json:"user"`
	Documents   []documents.Document `json:"documents"`
	Generated   []generated.Content  `json:"generatedContent"`
	Activity    []activitylogs.Entry `json:"activity"`
	Sessions    []sessions.Session   `json:"sessions"`
	Consents    []Consent            `json:"consents"`
}

// Service implements consent tracking, data export, and account deletion.
type Service struct {
	Consents  ConsentRepo
	Users     *users.Service
	Documents *documents.Service
	Generated *generated.Service
	Activity  activitylogs.Repo
	Sessions  sessions.Repo
}

// SetConsent records the user's decision for one purpose.
func (s *Service) SetConsent(ctx context.Context, userID, purpose string, granted bool) (Consent, error) {
	if userID == "" || !ValidPurpose(purpose) {
		return Consent{}, ErrInvalidInput
	}
	consent := Consent{
		UserID:    userID,
		Purpose:   purpose,
		Granted:   granted,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.Consents.Upsert(ctx, consent); err != nil {
		return Consent{}, err
	}
	return consent, nil
}

// ListConsents returns the user's consent decisions.
func (s *Service) ListConsents(ctx context.Context, userID string) ([]Consent, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Consents.ListByUser(ctx, userID)
}

// ExportData assembles everything stored about the user into one bundle.
func (s *Service) ExportData(ctx context.Context, userID string) (Export, error) {
	if userID == "" {
		return Export{}, ErrInvalidInput
	}

	export := Export{GeneratedAt: time.Now().UTC()}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		return Export{}, err
	}
	export.User = user

	for offset := 0; ; offset += exportPageSize {
		page, err := s.Documents.List(ctx, userID, exportPageSize, offset)
		if err != nil {
			return Export{}, err
		}
		export.Documents = append(export.Documents, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	for offset := 0; ; offset += exportPageSize {
		page, err := s.Generated.List(ctx, userID, exportPageSize, offset)
		if err != nil {
			return Export{}, err
		}
		export.Generated = append(export.Generated, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	for offset := 0; ; offset += exportPageSize {
		page, err := s.Activity.ListByUser(ctx, userID, exportPageSize, offset)
		if err != nil {
			return Export{}, err
		}
		export.Activity = append(export.Activity, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	sessionList, err := s.Sessions.ListByUser(ctx, userID)
	if err != nil {
		return Export{}, err
	}
	export.Sessions = sessionList

	consents, err := s.Consents.ListByUser(ctx, userID)
	if err != nil {
		return Export{}, err
	}
	export.Consents = consents

	return export, nil
}

// DeleteAccount removes the user's data: documents and generated content are
// soft-deleted, sessions revoked, consents dropped, and the profile redacted.
// Activity logs are left for the retention sweeps to anonymize on schedule.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidInput
	}

	for {
		page, err := s.Documents.List(ctx, userID, exportPageSize, 0)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}
		for _, doc := range page {
			if err := s.Documents.Delete(ctx, userID, doc.ID); err != nil {
				return err
			}
		}
	}

	for {
		page, err := s.Generated.List(ctx, userID, exportPageSize, 0)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}
		for _, content := range page {
			if err := s.Generated.Delete(ctx, userID, content.ID); err != nil {
				return err
			}
		}
	}

	sessionList, err := s.Sessions.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, session := range sessionList {
		if !session.Active() {
			continue
		}
		if err := s.Sessions.Revoke(ctx, userID, session.ID); err != nil && !errors.Is(err, sessions.ErrNotFound) {
			return err
		}
	}

	if err := s.Consents.DeleteByUser(ctx, userID); err != nil {
		return err
	}

	if err := s.Users.Erase(ctx, userID); err != nil && !errors.Is(err, users.ErrNotFound) {
		return err
	}

	telemetry.Info("gdpr.account.deleted", map[string]any{"userId": userID})
	return nil
}
