// internal/service/snapshotter_test.go
package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finflow-ledger/internal/domain"
	"finflow-ledger/internal/ledger"
	"finflow-ledger/internal/repository/memory"
)

// MockSnapshotStore is a mock implementation of repository.SnapshotStore.
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Load(ctx context.Context) (domain.LedgerState, error) {
	args := m.Called(ctx)
	state, _ := args.Get(0).(domain.LedgerState)
	return state, args.Error(1)
}

func (m *MockSnapshotStore) Save(ctx context.Context, state domain.LedgerState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func TestSnapshotter_SavesAfterTransfer(t *testing.T) {
	l := ledger.New(ledger.WithState(ledger.DemoState()))
	store := memory.NewSnapshotRepository()
	snap := NewSnapshotter(l, store, nil)
	defer snap.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		snap.Run(ctx)
	}()

	_, _, err := l.ApplyTransfer(ledger.DemoClient, ledger.DemoAmit, 500, time.Now())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		state, _ := store.Load(context.Background())
		return state[ledger.DemoClient].Accounts.Checking == 14920.50
	}, time.Second, 5*time.Millisecond)

	cancel()
	wg.Wait()
}

func TestSnapshotter_FlushesPendingOnShutdown(t *testing.T) {
	l := ledger.New(ledger.WithState(ledger.DemoState()))
	store := memory.NewSnapshotRepository()
	snap := NewSnapshotter(l, store, nil)
	defer snap.Close()

	_, _, err := l.ApplyTransfer(ledger.DemoAmit, ledger.DemoClient, 1, time.Now())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap.Run(ctx) // returns immediately, after flushing

	assert.Equal(t, 1, store.Saves())
}

func TestSnapshotter_SaveErrorDoesNotFailTransfer(t *testing.T) {
	l := ledger.New(ledger.WithState(ledger.DemoState()))
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("store offline"))
	snap := NewSnapshotter(l, store, nil)
	defer snap.Close()

	_, _, err := l.ApplyTransfer(ledger.DemoClient, ledger.DemoAmit, 10, time.Now())
	require.NoError(t, err)

	assert.EqualError(t, snap.SaveNow(context.Background()), "store offline")
	assert.Equal(t, 15410.50, l.GetBalances(ledger.DemoClient).Checking)
	store.AssertExpectations(t)
}

func TestSnapshotter_CloseStopsNotifications(t *testing.T) {
	l := ledger.New(ledger.WithState(ledger.DemoState()))
	store := memory.NewSnapshotRepository()
	snap := NewSnapshotter(l, store, nil)
	snap.Close()

	_, _, err := l.ApplyTransfer(ledger.DemoClient, ledger.DemoAmit, 10, time.Now())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap.Run(ctx)

	assert.Zero(t, store.Saves())
}
