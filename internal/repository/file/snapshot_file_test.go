// internal/repository/file/snapshot_file_test.go
package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finflow-ledger/internal/domain"
)

func TestSnapshotRepository_LoadMissingFile(t *testing.T) {
	repo := NewSnapshotRepository(filepath.Join(t.TempDir(), "nope", "ledger.json"))

	state, err := repo.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, state)
	assert.Empty(t, state)
}

func TestSnapshotRepository_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "ledger.json")
	repo := NewSnapshotRepository(path)

	state := domain.LedgerState{
		"client@client.com": {
			Accounts: domain.AccountBalances{Checking: 14920.5, Savings: 8750.25, Credit: -2340.75},
			Transactions: []domain.Transaction{{
				ID: "t1-out", CorrelationID: "t1", Timestamp: "2024-05-01T12:00:00Z",
				Direction: domain.DirectionOut, CounterpartyEmail: "amit@client.com", Amount: 500, BalanceAfter: 14920.5,
			}},
		},
	}
	require.NoError(t, repo.Save(ctx, state))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, loaded)

	// Overwrite leaves no temporary files behind.
	require.NoError(t, repo.Save(ctx, domain.LedgerState{}))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "ledger.json", entries[0].Name())
}

func TestSnapshotRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := NewSnapshotRepository(path).Load(context.Background())

	assert.ErrorContains(t, err, "failed to decode snapshot")
}
