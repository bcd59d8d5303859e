package retention

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// tableSpec maps a data type onto its backing table. ageExpr is the
// timestamp the retention clock runs against; liveWhere excludes records a
// previous sweep already handled.
type tableSpec struct {
	table     string
	ageExpr   string
	liveWhere string
}

func specFor(dt DataType) (tableSpec, error) {
	switch dt {
	case DataTypeCVDocuments:
		return tableSpec{
			table:     "documents",
			ageExpr:   "COALESCE(last_accessed_at, created_at)",
			liveWhere: "deleted_at IS NULL",
		}, nil
	case DataTypeGeneratedContent:
		return tableSpec{
			table:     "generated_content",
			ageExpr:   "COALESCE(last_accessed_at, created_at)",
			liveWhere: "deleted_at IS NULL",
		}, nil
	case DataTypeActivityLogs:
		return tableSpec{
			table:     "activity_logs",
			ageExpr:   "created_at",
			liveWhere: "anonymized_at IS NULL",
		}, nil
	case DataTypeSessions:
		return tableSpec{
			table:     "sessions",
			ageExpr:   "COALESCE(last_seen_at, created_at)",
			liveWhere: "TRUE",
		}, nil
	default:
		return tableSpec{}, fmt.Errorf("no table mapping for data type %q", dt)
	}
}

// PGStore implements Store over PostgreSQL.
type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) CountAll(ctx context.Context, dt DataType) (int, error) {
	spec, err := specFor(dt)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, spec.table, spec.liveWhere)
	var count int
	if err := s.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", dt, err)
	}
	return count, nil
}

func (s *PGStore) CountOlderThan(ctx context.Context, dt DataType, cutoff time.Time) (int, error) {
	spec, err := specFor(dt)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s AND %s < $1`,
		spec.table, spec.liveWhere, spec.ageExpr)
	var count int
	if err := s.DB.QueryRowContext(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s older than cutoff: %w", dt, err)
	}
	return count, nil
}

func (s *PGStore) OldestRecordTime(ctx context.Context, dt DataType) (*time.Time, error) {
	spec, err := specFor(dt)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT MIN(created_at) FROM %s WHERE %s`, spec.table, spec.liveWhere)
	var oldest sql.NullTime
	if err := s.DB.QueryRowContext(ctx, query).Scan(&oldest); err != nil {
		return nil, fmt.Errorf("oldest %s record: %w", dt, err)
	}
	if !oldest.Valid {
		return nil, nil
	}
	t := oldest.Time
	return &t, nil
}

func lastAccessExprFor(dt DataType) string {
	switch dt {
	case DataTypeCVDocuments, DataTypeGeneratedContent:
		return "last_accessed_at"
	case DataTypeSessions:
		return "last_seen_at"
	}
	return "NULL::timestamptz"
}

func (s *PGStore) ListOlderThan(ctx context.Context, dt DataType, cutoff time.Time, limit int) ([]RecordRef, error) {
	spec, err := specFor(dt)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT id, created_at, %s
FROM %s
WHERE %s AND %s < $1
ORDER BY %s ASC, id ASC
LIMIT $2`,
		lastAccessExprFor(dt), spec.table, spec.liveWhere, spec.ageExpr, spec.ageExpr)

	rows, err := s.DB.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s older than cutoff: %w", dt, err)
	}
	defer rows.Close()
	return scanRecordRefs(rows, dt)
}

func (s *PGStore) ListBetween(ctx context.Context, dt DataType, notBefore, before time.Time, limit int) ([]RecordRef, error) {
	spec, err := specFor(dt)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
SELECT id, created_at, %s
FROM %s
WHERE %s AND %s >= $1 AND %s < $2
ORDER BY %s ASC, id ASC
LIMIT $3`,
		lastAccessExprFor(dt), spec.table, spec.liveWhere, spec.ageExpr, spec.ageExpr, spec.ageExpr)

	rows, err := s.DB.QueryContext(ctx, query, notBefore, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s between cutoffs: %w", dt, err)
	}
	defer rows.Close()
	return scanRecordRefs(rows, dt)
}

func scanRecordRefs(rows *sql.Rows, dt DataType) ([]RecordRef, error) {
	var refs []RecordRef
	for rows.Next() {
		var ref RecordRef
		var lastAccessed sql.NullTime
		if err := rows.Scan(&ref.ID, &ref.CreatedAt, &lastAccessed); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", dt, err)
		}
		if lastAccessed.Valid {
			t := lastAccessed.Time
			ref.LastAccessedAt = &t
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s records: %w", dt, err)
	}
	return refs, nil
}

func (s *PGStore) Anonymize(ctx context.Context, dt DataType, id string) error {
	if dt != DataTypeActivityLogs {
		return fmt.Errorf("anonymize is not supported for %s", dt)
	}
	const query = `
UPDATE activity_logs
SET user_id = NULL, client_ip = NULL, metadata = NULL, anonymized_at = now()
WHERE id = $1 AND anonymized_at IS NULL`
	return s.exec(ctx, query, id, "anonymize", dt)
}

func (s *PGStore) SoftDelete(ctx context.Context, dt DataType, id string) error {
	spec, err := specFor(dt)
	if err != nil {
		return err
	}
	switch dt {
	case DataTypeCVDocuments, DataTypeGeneratedContent:
	default:
		return fmt.Errorf("soft delete is not supported for %s", dt)
	}
	query := fmt.Sprintf(`UPDATE %s SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, spec.table)
	return s.exec(ctx, query, id, "soft delete", dt)
}

func (s *PGStore) HardDelete(ctx context.Context, dt DataType, id string) error {
	spec, err := specFor(dt)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, spec.table)
	return s.exec(ctx, query, id, "hard delete", dt)
}

func (s *PGStore) exec(ctx context.Context, query, id, action string, dt DataType) error {
	res, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s %s %s: %w", action, dt, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s %s: rows affected: %w", action, dt, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*PGStore)(nil)

// PGSettingsRepo stores the retention settings singleton row.
type PGSettingsRepo struct {
	DB *sql.DB
}

func (r *PGSettingsRepo) Get(ctx context.Context) (Settings, error) {
	const query = `
SELECT enabled, dry_run, version, updated_at
FROM retention_settings
WHERE id = 1`
	var s Settings
	err := r.DB.QueryRowContext(ctx, query).Scan(&s.Enabled, &s.DryRun, &s.Version, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, fmt.Errorf("retention settings row is missing")
		}
		return Settings{}, fmt.Errorf("load retention settings: %w", err)
	}
	return s, nil
}

// Update re-reads, mutates and writes the settings row with an optimistic
// version check, retrying on concurrent writers.
func (r *PGSettingsRepo) Update(ctx context.Context, mutate func(*Settings)) (Settings, error) {
	const maxAttempts = 3
	const query = `
UPDATE retention_settings
SET enabled = $1, dry_run = $2, version = version + 1, updated_at = now()
WHERE id = 1 AND version = $3
RETURNING enabled, dry_run, version, updated_at`

	for attempt := 0; attempt < maxAttempts; attempt++ {
		current, err := r.Get(ctx)
		if err != nil {
			return Settings{}, err
		}
		next := current
		mutate(&next)

		var updated Settings
		err = r.DB.QueryRowContext(ctx, query, next.Enabled, next.DryRun, current.Version).
			Scan(&updated.Enabled, &updated.DryRun, &updated.Version, &updated.UpdatedAt)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Settings{}, fmt.Errorf("update retention settings: %w", err)
		}
		// Version moved under us; retry against the new row.
	}
	return Settings{}, fmt.Errorf("update retention settings: too many concurrent writers")
}

var _ SettingsRepo = (*PGSettingsRepo)(nil)

// PGLockRepo implements job locks as rows with an expiry.
type PGLockRepo struct {
	DB *sql.DB
}

// Acquire takes or refreshes the lock. An expired lock can be taken over by
// any holder; a live lock only by its current holder.
func (r *PGLockRepo) Acquire(ctx context.Context, jobType, holder string, ttl time.Duration) (bool, error) {
	const query = `
INSERT INTO retention_job_locks (job_type, holder, locked_at, expires_at)
VALUES ($1, $2, now(), now() + $3 * INTERVAL '1 second')
ON CONFLICT (job_type) DO UPDATE SET
  holder = EXCLUDED.holder,
  locked_at = EXCLUDED.locked_at,
  expires_at = EXCLUDED.expires_at
WHERE retention_job_locks.expires_at < now() OR retention_job_locks.holder = EXCLUDED.holder`
	res, err := r.DB.ExecContext(ctx, query, jobType, holder, int64(ttl.Seconds()))
	if err != nil {
		return false, fmt.Errorf("acquire %s lock: %w", jobType, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquire %s lock: rows affected: %w", jobType, err)
	}
	return affected > 0, nil
}

// Release drops the lock if this holder still owns it.
func (r *PGLockRepo) Release(ctx context.Context, jobType, holder string) error {
	const query = `DELETE FROM retention_job_locks WHERE job_type = $1 AND holder = $2`
	if _, err := r.DB.ExecContext(ctx, query, jobType, holder); err != nil {
		return fmt.Errorf("release %s lock: %w", jobType, err)
	}
	return nil
}

var _ LockRepo = (*PGLockRepo)(nil)
