package sessions

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a session row.
func (r *PGRepo) Create(ctx context.Context, session Session) error {
	const query = `
INSERT INTO sessions (id, user_id, user_agent, client_ip, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		nullable(session.UserAgent),
		nullable(session.ClientIP),
		session.CreatedAt,
	)
	return err
}

// ListByUser lists a user's sessions, most recently seen first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	const query = `
SELECT id, user_id, user_agent, client_ip, created_at, last_seen_at, revoked_at
FROM sessions
WHERE user_id = $1
ORDER BY COALESCE(last_seen_at, created_at) DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			session   Session
			userAgent sql.NullString
			clientIP  sql.NullString
			lastSeen  sql.NullTime
			revoked   sql.NullTime
		)
		if err := rows.Scan(&session.ID, &session.UserID, &userAgent, &clientIP, &session.CreatedAt, &lastSeen, &revoked); err != nil {
			return nil, err
		}
		session.UserAgent = userAgent.String
		session.ClientIP = clientIP.String
		if lastSeen.Valid {
			t := lastSeen.Time
			session.LastSeenAt = &t
		}
		if revoked.Valid {
			t := revoked.Time
			session.RevokedAt = &t
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

// Touch bumps the session's last_seen_at to now.
func (r *PGRepo) Touch(ctx context.Context, sessionID string) error {
	const query = `
UPDATE sessions SET last_seen_at = now()
WHERE id = $1 AND revoked_at IS NULL`
	_, err := r.DB.ExecContext(ctx, query, sessionID)
	return err
}

// Revoke marks a session revoked for the owning user.
func (r *PGRepo) Revoke(ctx context.Context, userID, sessionID string) error {
	const query = `
UPDATE sessions SET revoked_at = now()
WHERE id = $1 AND user_id = $2 AND revoked_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, sessionID, userID)
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

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
