package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreCountOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cutoff := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM documents WHERE deleted_at IS NULL`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	store := &PGStore{DB: db}
	count, err := store.CountOlderThan(context.Background(), DataTypeCVDocuments, cutoff)
	if err != nil {
		t.Fatalf("CountOlderThan: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreListOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	accessed := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "created_at", "last_seen_at"}).
		AddRow("session-1", created, accessed).
		AddRow("session-2", created, nil)
	mock.ExpectQuery(`SELECT id, created_at, last_seen_at\s+FROM sessions`).
		WithArgs(cutoff, 10).
		WillReturnRows(rows)

	store := &PGStore{DB: db}
	refs, err := store.ListOlderThan(context.Background(), DataTypeSessions, cutoff, 10)
	if err != nil {
		t.Fatalf("ListOlderThan: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0].LastAccessedAt == nil || !refs[0].LastAccessedAt.Equal(accessed) {
		t.Fatalf("expected last access carried through, got %+v", refs[0])
	}
	if refs[1].LastAccessedAt != nil {
		t.Fatalf("expected nil last access for session-2, got %+v", refs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreListBetween(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	notBefore := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "created_at", "last_accessed_at"}).
		AddRow("doc-1", created, nil)
	mock.ExpectQuery(`SELECT id, created_at, last_accessed_at\s+FROM documents`).
		WithArgs(notBefore, before, 5).
		WillReturnRows(rows)

	store := &PGStore{DB: db}
	refs, err := store.ListBetween(context.Background(), DataTypeCVDocuments, notBefore, before, 5)
	if err != nil {
		t.Fatalf("ListBetween: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "doc-1" {
		t.Fatalf("expected doc-1, got %+v", refs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreSoftDeleteMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(`UPDATE documents SET deleted_at = now\(\)`).
		WithArgs("doc-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := &PGStore{DB: db}
	err = store.SoftDelete(context.Background(), DataTypeCVDocuments, "doc-gone")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreAnonymizeOnlyActivityLogs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := &PGStore{DB: db}
	if err := store.Anonymize(context.Background(), DataTypeSessions, "session-1"); err == nil {
		t.Fatal("expected error anonymizing sessions")
	}

	mock.ExpectExec(`UPDATE activity_logs`).
		WithArgs("log-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.Anonymize(context.Background(), DataTypeActivityLogs, "log-1"); err != nil {
		t.Fatalf("Anonymize: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreSoftDeleteUnsupportedForSessions(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := &PGStore{DB: db}
	if err := store.SoftDelete(context.Background(), DataTypeSessions, "session-1"); err == nil {
		t.Fatal("expected error soft-deleting sessions")
	}
}

func TestPGSettingsRepoUpdateRetriesOnVersionBump(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	settingsRows := func(enabled, dryRun bool, version int64) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"enabled", "dry_run", "version", "updated_at"}).
			AddRow(enabled, dryRun, version, now)
	}

	// First attempt reads version 3 but another writer bumped it to 4.
	mock.ExpectQuery(`SELECT enabled, dry_run, version, updated_at`).
		WillReturnRows(settingsRows(true, false, 3))
	mock.ExpectQuery(`UPDATE retention_settings`).
		WithArgs(true, true, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"enabled", "dry_run", "version", "updated_at"}))

	// Second attempt succeeds against version 4.
	mock.ExpectQuery(`SELECT enabled, dry_run, version, updated_at`).
		WillReturnRows(settingsRows(true, false, 4))
	mock.ExpectQuery(`UPDATE retention_settings`).
		WithArgs(true, true, int64(4)).
		WillReturnRows(settingsRows(true, true, 5))

	repo := &PGSettingsRepo{DB: db}
	updated, err := repo.Update(context.Background(), func(s *Settings) { s.DryRun = true })
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.DryRun || updated.Version != 5 {
		t.Fatalf("unexpected settings after retry: %+v", updated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGLockRepoAcquire(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(`INSERT INTO retention_job_locks`).
		WithArgs(JobDaily, "holder-1", int64(1800)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO retention_job_locks`).
		WithArgs(JobDaily, "holder-2", int64(1800)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGLockRepo{DB: db}
	acquired, err := repo.Acquire(context.Background(), JobDaily, "holder-1", 30*time.Minute)
	if err != nil || !acquired {
		t.Fatalf("first acquire: acquired=%v err=%v", acquired, err)
	}
	acquired, err = repo.Acquire(context.Background(), JobDaily, "holder-2", 30*time.Minute)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if acquired {
		t.Fatal("expected second acquire to be refused")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
