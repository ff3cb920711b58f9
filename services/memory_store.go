package services

import (
	"context"
	"sort"
	"sync"

	"platewise_server/models"
)

// MemoryStore keeps everything in process. Used in tests and for local runs
// with STORE_BACKEND=memory.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
	history  map[string][]models.MealHistoryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]models.UserProfile),
		history:  make(map[string][]models.MealHistoryRecord),
	}
}

func (m *MemoryStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("get profile", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	clone := profile.Clone()
	return &clone, nil
}

func (m *MemoryStore) PutProfile(ctx context.Context, profile models.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return storeErr("put profile", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.UserID] = profile.Clone()
	return nil
}

func (m *MemoryStore) AppendHistory(ctx context.Context, record models.MealHistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return storeErr("append history", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[record.UserID] = append(m.history[record.UserID], record)
	return nil
}

func (m *MemoryStore) SaveAnalysis(ctx context.Context, profile models.UserProfile, record models.MealHistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return storeErr("save analysis", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.UserID] = profile.Clone()
	m.history[record.UserID] = append(m.history[record.UserID], record)
	return nil
}

func (m *MemoryStore) ListHistory(ctx context.Context, userID string, limit int) ([]models.MealHistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("list history", err)
	}
	m.mu.RLock()
	records := append([]models.MealHistoryRecord{}, m.history[userID]...)
	m.mu.RUnlock()

	// Stable so equal timestamps keep reverse insertion order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *MemoryStore) CountHistory(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, storeErr("count history", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.history[userID]), nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return storeErr("delete user", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[userID]; !ok {
		return ErrNotFound
	}
	delete(m.profiles, userID)
	delete(m.history, userID)
	return nil
}
