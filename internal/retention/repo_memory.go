package retention

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRecord is the in-memory representation of a retained record.
type MemoryRecord struct {
	ID             string
	CreatedAt      time.Time
	LastAccessedAt *time.Time
	SoftDeleted    bool
	Anonymized     bool
}

func (r MemoryRecord) ageBasis() time.Time {
	if r.LastAccessedAt != nil {
		return *r.LastAccessedAt
	}
	return r.CreatedAt
}

// MemoryStore is an in-memory Store used in dev mode and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[DataType]map[string]MemoryRecord
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	data := make(map[DataType]map[string]MemoryRecord)
	for _, dt := range AllDataTypes() {
		data[dt] = make(map[string]MemoryRecord)
	}
	return &MemoryStore{data: data}
}

// Add inserts a record for a data type.
func (m *MemoryStore) Add(dt DataType, rec MemoryRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[dt][rec.ID] = rec
}

// Record returns a record and whether it still exists.
func (m *MemoryStore) Record(dt DataType, id string) (MemoryRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.data[dt][id]
	return rec, ok
}

// Snapshot returns a copy of all live records for a data type, any order.
func (m *MemoryStore) Snapshot(dt DataType) []MemoryRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MemoryRecord, 0, len(m.data[dt]))
	for _, rec := range m.data[dt] {
		out = append(out, rec)
	}
	return out
}

func (m *MemoryStore) live(dt DataType) []MemoryRecord {
	var out []MemoryRecord
	for _, rec := range m.data[dt] {
		if rec.SoftDeleted || rec.Anonymized {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// CountAll counts live records for a data type.
func (m *MemoryStore) CountAll(ctx context.Context, dt DataType) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live(dt)), nil
}

// CountOlderThan counts live records whose age basis is before cutoff.
func (m *MemoryStore) CountOlderThan(ctx context.Context, dt DataType, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, rec := range m.live(dt) {
		if rec.ageBasis().Before(cutoff) {
			count++
		}
	}
	return count, nil
}

// OldestRecordTime returns the earliest creation time among live records.
func (m *MemoryStore) OldestRecordTime(ctx context.Context, dt DataType) (*time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var oldest *time.Time
	for _, rec := range m.live(dt) {
		created := rec.CreatedAt
		if oldest == nil || created.Before(*oldest) {
			oldest = &created
		}
	}
	return oldest, nil
}

// ListOlderThan returns live records older than cutoff, oldest first with ID
// as the tie-break, capped at limit.
func (m *MemoryStore) ListOlderThan(ctx context.Context, dt DataType, cutoff time.Time, limit int) ([]RecordRef, error) {
	return m.listWhere(ctx, dt, limit, func(basis time.Time) bool {
		return basis.Before(cutoff)
	})
}

// ListBetween returns live records with notBefore <= age basis < before,
// oldest first with ID as the tie-break, capped at limit.
func (m *MemoryStore) ListBetween(ctx context.Context, dt DataType, notBefore, before time.Time, limit int) ([]RecordRef, error) {
	return m.listWhere(ctx, dt, limit, func(basis time.Time) bool {
		return !basis.Before(notBefore) && basis.Before(before)
	})
}

func (m *MemoryStore) listWhere(ctx context.Context, dt DataType, limit int, match func(time.Time) bool) ([]RecordRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	var matches []MemoryRecord
	for _, rec := range m.live(dt) {
		if match(rec.ageBasis()) {
			matches = append(matches, rec)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		bi, bj := matches[i].ageBasis(), matches[j].ageBasis()
		if bi.Equal(bj) {
			return matches[i].ID < matches[j].ID
		}
		return bi.Before(bj)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	refs := make([]RecordRef, 0, len(matches))
	for _, rec := range matches {
		refs = append(refs, RecordRef{
			ID:             rec.ID,
			CreatedAt:      rec.CreatedAt,
			LastAccessedAt: rec.LastAccessedAt,
		})
	}
	return refs, nil
}

// Anonymize marks a record anonymized without removing it.
func (m *MemoryStore) Anonymize(ctx context.Context, dt DataType, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.data[dt][id]
	if !ok || rec.Anonymized {
		return ErrNotFound
	}
	rec.Anonymized = true
	m.data[dt][id] = rec
	return nil
}

// SoftDelete flags a record deleted without removing it.
func (m *MemoryStore) SoftDelete(ctx context.Context, dt DataType, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.data[dt][id]
	if !ok || rec.SoftDeleted {
		return ErrNotFound
	}
	rec.SoftDeleted = true
	m.data[dt][id] = rec
	return nil
}

// HardDelete removes a record entirely.
func (m *MemoryStore) HardDelete(ctx context.Context, dt DataType, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[dt][id]; !ok {
		return ErrNotFound
	}
	delete(m.data[dt], id)
	return nil
}

var _ Store = (*MemoryStore)(nil)

// MemorySettingsRepo keeps the settings row in memory.
type MemorySettingsRepo struct {
	mu       sync.Mutex
	settings Settings
}

// NewMemorySettingsRepo starts enabled with dry-run off.
func NewMemorySettingsRepo() *MemorySettingsRepo {
	return &MemorySettingsRepo{settings: Settings{Enabled: true}}
}

// Get returns the current settings.
func (r *MemorySettingsRepo) Get(ctx context.Context) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings, nil
}

// Update applies mutate under the lock and bumps the version.
func (r *MemorySettingsRepo) Update(ctx context.Context, mutate func(*Settings)) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	mutate(&r.settings)
	r.settings.Version++
	r.settings.UpdatedAt = time.Now().UTC()
	return r.settings, nil
}

var _ SettingsRepo = (*MemorySettingsRepo)(nil)

type memoryLock struct {
	holder    string
	expiresAt time.Time
}

// MemoryLockRepo keeps job locks in memory.
type MemoryLockRepo struct {
	mu    sync.Mutex
	locks map[string]memoryLock
	now   func() time.Time
}

// NewMemoryLockRepo constructs an empty lock table.
func NewMemoryLockRepo() *MemoryLockRepo {
	return &MemoryLockRepo{
		locks: make(map[string]memoryLock),
		now:   time.Now,
	}
}

// Acquire takes the lock unless a live lock by another holder exists.
func (r *MemoryLockRepo) Acquire(ctx context.Context, jobType, holder string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if existing, ok := r.locks[jobType]; ok && existing.expiresAt.After(now) && existing.holder != holder {
		return false, nil
	}
	r.locks[jobType] = memoryLock{holder: holder, expiresAt: now.Add(ttl)}
	return true, nil
}

// Release frees the lock if still held by holder.
func (r *MemoryLockRepo) Release(ctx context.Context, jobType, holder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.locks[jobType]; ok && existing.holder == holder {
		delete(r.locks, jobType)
	}
	return nil
}

var _ LockRepo = (*MemoryLockRepo)(nil)
