package gdpr

import (
	"context"
	"database/sql"
)

// PGConsentRepo implements ConsentRepo using Postgres.
type PGConsentRepo struct {
	DB *sql.DB
}

// Upsert inserts or updates a consent decision.
func (r *PGConsentRepo) Upsert(ctx context.Context, consent Consent) error {
	const query = `
INSERT INTO consents (user_id, purpose, granted, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (user_id, purpose)
DO UPDATE SET granted = EXCLUDED.granted, updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query, consent.UserID, consent.Purpose, consent.Granted)
	return err
}

// ListByUser returns all consent decisions for a user.
func (r *PGConsentRepo) ListByUser(ctx context.Context, userID string) ([]Consent, error) {
	const query = `
SELECT user_id, purpose, granted, updated_at
FROM consents
WHERE user_id = $1
ORDER BY purpose`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Consent
	for rows.Next() {
		var consent Consent
		if err := rows.Scan(&consent.UserID, &consent.Purpose, &consent.Granted, &consent.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, consent)
	}
	return out, rows.Err()
}

// DeleteByUser removes all consent rows for a user.
func (r *PGConsentRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM consents WHERE user_id = $1`, userID)
	return err
}

var _ ConsentRepo = (*PGConsentRepo)(nil)
