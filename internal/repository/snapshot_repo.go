// internal/repository/snapshot_repo.go
package repository

import (
	"context"

	"finflow-ledger/internal/domain"
)

// SnapshotStore persists whole-ledger snapshots.
// Load returns an empty state, not an error, when nothing has been saved yet.
type SnapshotStore interface {
	// Load reads the most recently saved snapshot.
	Load(ctx context.Context) (domain.LedgerState, error)
	// Save replaces the stored snapshot with state.
	Save(ctx context.Context, state domain.LedgerState) error
}
