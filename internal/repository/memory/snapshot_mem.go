// internal/repository/memory/snapshot_mem.go
package memory

import (
	"context"
	"sync"

	"finflow-ledger/internal/domain"
	"finflow-ledger/internal/repository"
)

// SnapshotRepository keeps the last saved snapshot in process memory.
// It is the default store for tests and for the standalone demo.
type SnapshotRepository struct {
	mu    sync.RWMutex
	state domain.LedgerState
	saves int
}

// NewSnapshotRepository creates an empty in-memory store.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{}
}

var _ repository.SnapshotStore = (*SnapshotRepository)(nil)

// Load returns a copy of the last saved state.
func (r *SnapshotRepository) Load(_ context.Context) (domain.LedgerState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return domain.LedgerState{}, nil
	}
	return r.state.Clone(), nil
}

// Save stores a copy of state.
func (r *SnapshotRepository) Save(_ context.Context, state domain.LedgerState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state.Clone()
	r.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (r *SnapshotRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
