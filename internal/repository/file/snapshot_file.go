// internal/repository/file/snapshot_file.go
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"finflow-ledger/internal/domain"
	"finflow-ledger/internal/repository"
)

// SnapshotRepository stores the ledger as a JSON document on local disk.
// Writes go to a temporary file that is renamed over the target, so a
// crash mid-write leaves the previous snapshot intact.
type SnapshotRepository struct {
	mu   sync.Mutex
	path string
}

// NewSnapshotRepository creates a store writing to path.
func NewSnapshotRepository(path string) *SnapshotRepository {
	return &SnapshotRepository{path: path}
}

var _ repository.SnapshotStore = (*SnapshotRepository)(nil)

// Load reads the snapshot file. A missing file is an empty ledger.
func (r *SnapshotRepository) Load(_ context.Context) (domain.LedgerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.LedgerState{}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", r.path, err)
	}

	state := domain.LedgerState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", r.path, err)
	}
	if state == nil {
		state = domain.LedgerState{}
	}
	return state, nil
}

// Save atomically replaces the snapshot file.
func (r *SnapshotRepository) Save(_ context.Context, state domain.LedgerState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to replace snapshot %s: %w", r.path, err)
	}
	return nil
}
