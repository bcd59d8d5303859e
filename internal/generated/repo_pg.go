package generated

import (
	"context"
	"database/sql"
	"errors"
)

const contentColumns = `id, user_id, document_id, kind, title, content, created_at, last_accessed_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a generated content row.
func (r *PGRepo) Create(ctx context.Context, content Content) error {
	const query = `
INSERT INTO generated_content (id, user_id, document_id, kind, title, content, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		content.ID,
		content.UserID,
		nullable(content.DocumentID),
		content.Kind,
		nullable(content.Title),
		content.Content,
		content.CreatedAt,
	)
	return err
}

// GetByID returns a content row by ID scoped to the owning user.
func (r *PGRepo) GetByID(ctx context.Context, userID, contentID string) (Content, error) {
	const query = `
SELECT ` + contentColumns + `
FROM generated_content
WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
LIMIT 1`
	return scanContent(r.DB.QueryRowContext(ctx, query, contentID, userID))
}

// ListByUser lists content newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Content, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + contentColumns + `
FROM generated_content
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, content)
	}
	return out, rows.Err()
}

// TouchAccess records a read against the content's retention clock.
func (r *PGRepo) TouchAccess(ctx context.Context, contentID string) error {
	const query = `
UPDATE generated_content SET last_accessed_at = now()
WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.DB.ExecContext(ctx, query, contentID)
	return err
}

// SoftDelete marks a content row deleted without removing it.
func (r *PGRepo) SoftDelete(ctx context.Context, userID, contentID string) error {
	const query = `
UPDATE generated_content SET deleted_at = now()
WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, contentID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (Content, error) {
	var (
		content      Content
		documentID   sql.NullString
		title        sql.NullString
		body         sql.NullString
		lastAccessed sql.NullTime
	)
	err := row.Scan(
		&content.ID,
		&content.UserID,
		&documentID,
		&content.Kind,
		&title,
		&body,
		&content.CreatedAt,
		&lastAccessed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Content{}, ErrNotFound
		}
		return Content{}, err
	}
	content.DocumentID = documentID.String
	content.Title = title.String
	content.Content = body.String
	if lastAccessed.Valid {
		t := lastAccessed.Time
		content.LastAccessedAt = &t
	}
	return content, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
