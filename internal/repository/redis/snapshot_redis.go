// internal/repository/redis/snapshot_redis.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"finflow-ledger/internal/domain"
	"finflow-ledger/internal/repository"
)

// DefaultSnapshotKey is the key the ledger snapshot is stored under.
const DefaultSnapshotKey = "ledger:snapshot"

// SnapshotRepository implements repository.SnapshotStore on a Redis string key.
type SnapshotRepository struct {
	client goredis.UniversalClient
	key    string
}

// NewSnapshotRepository creates a store writing to key (DefaultSnapshotKey if empty).
func NewSnapshotRepository(client goredis.UniversalClient, key string) *SnapshotRepository {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotRepository{client: client, key: key}
}

var _ repository.SnapshotStore = (*SnapshotRepository)(nil)

// Load reads the snapshot. A missing key is an empty ledger.
func (r *SnapshotRepository) Load(ctx context.Context) (domain.LedgerState, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.LedgerState{}, nil
		}
		return nil, fmt.Errorf("failed to load snapshot %s: %w", r.key, err)
	}

	state := domain.LedgerState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", r.key, err)
	}
	if state == nil {
		state = domain.LedgerState{}
	}
	return state, nil
}

// Save overwrites the snapshot key with no expiry.
func (r *SnapshotRepository) Save(ctx context.Context, state domain.LedgerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", r.key, err)
	}
	return nil
}
