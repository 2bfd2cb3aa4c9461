// internal/service/snapshotter.go
package service

import (
	"context"
	"log/slog"
	"time"

	"finflow-ledger/internal/domain"
	"finflow-ledger/internal/ledger"
	"finflow-ledger/internal/repository"
)

// defaultSnapshotTimeout bounds a single Save call.
const defaultSnapshotTimeout = 10 * time.Second

// StateSource is the part of the ledger the snapshotter reads.
type StateSource interface {
	State() domain.LedgerState
	Subscribe(listener ledger.Listener) (unsubscribe func())
}

// Snapshotter persists the ledger after every committed change.
// Notifications only set a pending flag; the write happens on the Run
// goroutine, so a burst of transfers results in few saves and a slow store
// never blocks a transfer.
type Snapshotter struct {
	source      StateSource
	store       repository.SnapshotStore
	pending     chan struct{}
	unsubscribe func()
	timeout     time.Duration
	logger      *slog.Logger
}

// NewSnapshotter subscribes to source immediately. Call Run to start writing.
func NewSnapshotter(source StateSource, store repository.SnapshotStore, logger *slog.Logger) *Snapshotter {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Snapshotter{
		source:  source,
		store:   store,
		pending: make(chan struct{}, 1),
		timeout: defaultSnapshotTimeout,
		logger:  logger,
	}
	s.unsubscribe = source.Subscribe(s.notify)
	return s
}

func (s *Snapshotter) notify(ledger.Event) {
	select {
	case s.pending <- struct{}{}:
	default: // a save is already queued and will see this change
	}
}

// Run writes snapshots until ctx is cancelled, then flushes any pending change.
// Cancellation never interrupts a write already in progress.
func (s *Snapshotter) Run(ctx context.Context) {
	saveCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-s.pending:
			_ = s.SaveNow(saveCtx)
		case <-ctx.Done():
			select {
			case <-s.pending:
				_ = s.SaveNow(saveCtx)
			default:
			}
			return
		}
	}
}

// SaveNow writes the current ledger state. Errors are logged and returned.
func (s *Snapshotter) SaveNow(ctx context.Context) error {
	saveCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	state := s.source.State()
	if err := s.store.Save(saveCtx, state); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save ledger snapshot", "users", len(state), "error", err)
		return err
	}
	s.logger.DebugContext(ctx, "Ledger snapshot saved", "users", len(state))
	return nil
}

// Close stops listening for ledger changes.
func (s *Snapshotter) Close() {
	s.unsubscribe()
}
