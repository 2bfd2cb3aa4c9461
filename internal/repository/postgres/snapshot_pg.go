// internal/repository/postgres/snapshot_pg.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"finflow-ledger/internal/domain"
	"finflow-ledger/internal/repository"
	"finflow-ledger/pkg/db"
)

// DefaultSnapshotName is the row key used when none is configured.
const DefaultSnapshotName = "default"

// snapshotLockKey serializes concurrent snapshot writers across processes.
const snapshotLockKey int64 = 0x6c6564676572

const schema = `CREATE TABLE IF NOT EXISTS ledger_snapshots (
	name       TEXT PRIMARY KEY,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// SnapshotRepository implements repository.SnapshotStore for PostgreSQL.
// The whole ledger is stored as one JSONB document per snapshot name.
type SnapshotRepository struct {
	dbBeginner db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	name       string
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewSnapshotRepository creates a new SnapshotRepository backed by database.
func NewSnapshotRepository(database *sqlx.DB, name string) *SnapshotRepository {
	if name == "" {
		name = DefaultSnapshotName
	}
	return &SnapshotRepository{
		dbBeginner: database,
		dbExecutor: database,
		name:       name,
		beginTx:    db.BeginTx,
		commitTx:   db.CommitTx,
		rollbackTx: db.RollbackTx,
	}
}

var _ repository.SnapshotStore = (*SnapshotRepository)(nil)

// EnsureSchema creates the snapshot table if it does not exist.
func (r *SnapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.dbExecutor.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create ledger_snapshots table: %w", err)
	}
	return nil
}

// Load reads the snapshot row. A missing row is an empty ledger.
func (r *SnapshotRepository) Load(ctx context.Context) (domain.LedgerState, error) {
	var payload []byte
	query := `SELECT state FROM ledger_snapshots WHERE name = $1`
	if err := r.dbExecutor.GetContext(ctx, &payload, query, r.name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.LedgerState{}, nil
		}
		return nil, fmt.Errorf("failed to load snapshot %q: %w", r.name, err)
	}

	state := domain.LedgerState{}
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %q: %w", r.name, err)
	}
	if state == nil {
		state = domain.LedgerState{}
	}
	return state, nil
}

// Save upserts the snapshot row inside a transaction holding an advisory lock.
func (r *SnapshotRepository) Save(ctx context.Context, state domain.LedgerState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("save snapshot: failed to encode state: %w", err)
	}

	txController, err := r.beginTx(ctx, r.dbBeginner)
	if err != nil {
		return fmt.Errorf("save snapshot: failed to begin transaction: %w", err)
	}
	defer r.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("save snapshot: transaction controller does not implement DBExecutor")
	}

	if _, err := txExecutor.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, snapshotLockKey); err != nil {
		return fmt.Errorf("save snapshot: failed to acquire lock: %w", err)
	}

	// lib/pq sends []byte as bytea, so the JSON goes over the wire as text.
	query := `INSERT INTO ledger_snapshots (name, state, updated_at)
              VALUES ($1, $2, $3)
              ON CONFLICT (name) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`
	if _, err := txExecutor.ExecContext(ctx, query, r.name, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("save snapshot: failed to upsert %q: %w", r.name, err)
	}

	if err := r.commitTx(txController); err != nil {
		return fmt.Errorf("save snapshot: failed to commit transaction: %w", err)
	}
	return nil
}
