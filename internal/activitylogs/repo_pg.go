package activitylogs

import (
	"context"
	"database/sql"
	"encoding/json"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Append inserts an activity log entry.
func (r *PGRepo) Append(ctx context.Context, entry Entry) error {
	const query = `
INSERT INTO activity_logs (id, user_id, action, metadata, client_ip, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	var metadata any
	if entry.Metadata != nil {
		payload, err := json.Marshal(entry.Metadata)
		if err != nil {
			return err
		}
		metadata = payload
	}

	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		nullableString(entry.UserID),
		entry.Action,
		metadata,
		nullableString(entry.ClientIP),
		entry.CreatedAt,
	)
	return err
}

// ListByUser lists non-anonymized entries for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, action, metadata, client_ip, created_at, anonymized_at
FROM activity_logs
WHERE user_id = $1 AND anonymized_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			entry      Entry
			uid        sql.NullString
			metadata   []byte
			clientIP   sql.NullString
			anonymized sql.NullTime
		)
		if err := rows.Scan(&entry.ID, &uid, &entry.Action, &metadata, &clientIP, &entry.CreatedAt, &anonymized); err != nil {
			return nil, err
		}
		entry.UserID = uid.String
		entry.ClientIP = clientIP.String
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, err
			}
		}
		if anonymized.Valid {
			t := anonymized.Time
			entry.AnonymizedAt = &t
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
