package documents

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"jobbooster-backend/internal/extract"
	"jobbooster-backend/internal/shared/storage/object"
	"jobbooster-backend/internal/shared/telemetry"
)

// Service contains business logic for documents.
type Service struct {
	Store           object.ObjectStore
	Repo            Repo
	StorageProvider string
}

// Upload saves the file to object storage, records the document, and kicks a
// best-effort text extraction so downstream features can read the CV.
func (s *Service) Upload(ctx context.Context, userID, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userID,
		FileName:         fileName,
		OriginalFilename: fileName,
		MimeType:         mimeType,
		SizeBytes:        size,
		StorageProvider:  s.StorageProvider,
		StorageKey:       storageKey,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	// Extraction failure leaves the document usable; retried on demand later.
	if _, err := extract.Text(ctx, s.Store, storageKey, mimeType, fileName); err != nil {
		telemetry.Warn("documents.extract.failed", map[string]any{
			"document_id": doc.ID,
			"err":         err.Error(),
		})
		return doc, nil
	}
	extractedKey := storageKey + ".extracted.txt"
	extractedAt := time.Now().UTC()
	if err := s.Repo.UpdateExtraction(ctx, userID, doc.ID, extractedKey, extractedAt); err != nil {
		return doc, nil
	}
	doc.ExtractedTextKey = extractedKey
	doc.ExtractedAt = &extractedAt
	return doc, nil
}

// Get fetches a document and touches its access time.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if userID == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	doc, err := s.Repo.GetByID(ctx, userID, documentID)
	if err != nil {
		return Document{}, err
	}
	s.touch(ctx, userID, documentID)
	return doc, nil
}

// Current returns the newest document for a user and touches its access time.
func (s *Service) Current(ctx context.Context, userID string) (Document, error) {
	if userID == "" {
		return Document{}, errors.New("user id required")
	}
	doc, err := s.Repo.GetCurrentByUser(ctx, userID)
	if err != nil {
		return Document{}, err
	}
	s.touch(ctx, userID, doc.ID)
	return doc, nil
}

// List returns the user's documents, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Open streams the stored file and touches access time.
func (s *Service) Open(ctx context.Context, userID, documentID string) (Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return Document{}, nil, err
	}
	body, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, body, nil
}

// Delete soft-deletes the record and removes the stored objects. The row is
// kept so the deletion is reversible until retention hard-removes it.
func (s *Service) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := s.Repo.GetByID(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, userID, documentID); err != nil {
		return err
	}

	if doc.StorageKey != "" {
		if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
			telemetry.Warn("documents.object.delete_failed", map[string]any{
				"document_id": documentID,
				"err":         err.Error(),
			})
		}
	}
	if doc.ExtractedTextKey != "" {
		if err := s.Store.Delete(ctx, doc.ExtractedTextKey); err != nil {
			telemetry.Warn("documents.object.delete_failed", map[string]any{
				"document_id": documentID,
				"err":         err.Error(),
			})
		}
	}
	return nil
}

// touch is best-effort; a failed access-time update never fails the read.
func (s *Service) touch(ctx context.Context, userID, documentID string) {
	if err := s.Repo.TouchAccess(ctx, userID, documentID); err != nil && !errors.Is(err, ErrNotFound) {
		telemetry.Warn("documents.touch.failed", map[string]any{
			"document_id": documentID,
			"err":         err.Error(),
		})
	}
}
