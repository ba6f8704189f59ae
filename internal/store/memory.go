package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a map-backed Store with the same dedup and checkpoint
// semantics as the SQLite backend. It serves tests and targets without a
// filesystem (the browser boundary swaps it in behind the Store contract).
type MemoryStore struct {
	mu          sync.Mutex
	nextID      int64
	byKey       map[Key]int64
	results     map[int64]SearchResult
	checkpoints map[string]int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byKey:       make(map[Key]int64),
		results:     make(map[int64]SearchResult),
		checkpoints: make(map[string]int),
	}
}

// Put inserts a result, returning the existing row's id when the dedup key
// is already present.
func (m *MemoryStore) Put(_ context.Context, result SearchResult) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byKey[result.Key()]; ok {
		return id, nil
	}
	m.nextID++
	result.ID = m.nextID
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	m.byKey[result.Key()] = result.ID
	m.results[result.ID] = result
	return result.ID, nil
}

// Query returns matching results, best scores first, ties on lower encoding.
func (m *MemoryStore) Query(_ context.Context, f Filter) ([]SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var results []SearchResult
	for _, r := range m.results {
		if r.Score < f.MinScore {
			continue
		}
		if f.KindTag != 0 && uint8(r.Rule>>56) != f.KindTag {
			continue
		}
		results = append(results, r)
	}
	sortResults(results)
	if f.Limit > 0 && len(results) > f.Limit {
		results = results[:f.Limit]
	}
	return results, nil
}

// Checkpoint records the last incorporated generation for a run.
func (m *MemoryStore) Checkpoint(_ context.Context, runID, _ string, _ int64, generation int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[runID] = generation
	return nil
}

// LastCheckpoint returns the recorded generation for a run, if any.
func (m *MemoryStore) LastCheckpoint(_ context.Context, runID string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gen, ok := m.checkpoints[runID]
	return gen, ok, nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryStore) Close() error { return nil }

// Len reports the number of stored results.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}

func sortResults(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Rule < results[j].Rule
	})
}
