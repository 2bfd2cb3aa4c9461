// internal/ledger/ledger.go

// Package ledger owns per-user balances and transaction logs.
//
// The Ledger is the only place balances change. All mutations go through
// ApplyTransfer, which runs under a single write lock so that the sender's
// balance check and debit cannot interleave with another transfer.
package ledger

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"finflow-ledger/internal/amount"
	"finflow-ledger/internal/domain"
	"finflow-ledger/internal/util"
)

// DefaultStartingBalance is credited to checking when an unseen user is first referenced.
const DefaultStartingBalance = 100000.00

// Ledger is the in-process store of balances and transaction logs.
type Ledger struct {
	mu              sync.RWMutex
	users           map[string]*domain.UserEntry
	startingBalance float64
	newID           func() string
	bus             *Bus
	logger          *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithStartingBalance sets the checking balance given to lazily created users.
func WithStartingBalance(balance float64) Option {
	return func(l *Ledger) { l.startingBalance = amount.ToAmount(balance, DefaultStartingBalance) }
}

// WithState preloads the ledger, e.g. from a snapshot.
func WithState(state domain.LedgerState) Option {
	return func(l *Ledger) { l.load(state) }
}

// WithIDGenerator overrides how correlation ids are generated.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) { l.newID = gen }
}

// WithLogger sets the logger used by the ledger and its bus.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		users:           make(map[string]*domain.UserEntry),
		startingBalance: DefaultStartingBalance,
		newID:           uuid.NewString,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.bus = NewBus(l.logger)
	return l
}

// getOrInit must be called with the write lock held.
func (l *Ledger) getOrInit(userID string) *domain.UserEntry {
	entry, ok := l.users[userID]
	if !ok {
		entry = &domain.UserEntry{
			Accounts:     domain.AccountBalances{Checking: l.startingBalance},
			Transactions: []domain.Transaction{},
		}
		l.users[userID] = entry
		l.logger.Debug("Materialized ledger entry", "user", userID, "checking", l.startingBalance)
	}
	return entry
}

// GetBalances returns a normalized copy of the user's balances,
// creating a default entry if the user has not been seen before.
func (l *Ledger) GetBalances(userID string) domain.AccountBalances {
	l.mu.RLock()
	entry, ok := l.users[userID]
	if ok {
		balances := entry.Accounts
		l.mu.RUnlock()
		return amount.Normalize(balances)
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	return amount.Normalize(l.getOrInit(userID).Accounts)
}

// PeekBalances returns what GetBalances would, without materializing an unseen user.
func (l *Ledger) PeekBalances(userID string) domain.AccountBalances {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if entry, ok := l.users[userID]; ok {
		return amount.Normalize(entry.Accounts)
	}
	return domain.AccountBalances{Checking: l.startingBalance}
}

// GetTransactions returns the user's log, newest first.
// Unseen users get an empty slice and are not materialized.
func (l *Ledger) GetTransactions(userID string) []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.users[userID]
	if !ok {
		return []domain.Transaction{}
	}
	out := make([]domain.Transaction, len(entry.Transactions))
	for i, tx := range entry.Transactions {
		tx.Amount = amount.Amount(tx.Amount)
		tx.BalanceAfter = amount.Amount(tx.BalanceAfter)
		out[i] = tx
	}
	return out
}

// Exists reports whether the ledger has an entry for userID.
func (l *Ledger) Exists(userID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.users[userID]
	return ok
}

// Users returns every known identifier, sorted.
func (l *Ledger) Users() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.users))
	for id := range l.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ApplyTransfer moves amount from the sender's checking balance to the
// recipient's and prepends one record to each party's log. Business-rule
// validation belongs to the caller; the funds check is repeated here because
// it must happen under the same lock as the debit.
// On success a transfer event is published after the lock is released.
func (l *Ledger) ApplyTransfer(senderID, recipientID string, amt float64, at time.Time) (domain.Transaction, domain.Transaction, error) {
	senderTx, recipientTx, err := l.applyTransfer(senderID, recipientID, amt, at)
	if err != nil {
		return domain.Transaction{}, domain.Transaction{}, err
	}

	l.bus.Publish(Event{
		Kind:          EventTransfer,
		CorrelationID: senderTx.CorrelationID,
		SenderID:      senderID,
		RecipientID:   recipientID,
		Amount:        amt,
		At:            at,
	})
	return senderTx, recipientTx, nil
}

func (l *Ledger) applyTransfer(senderID, recipientID string, amt float64, at time.Time) (domain.Transaction, domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if senderID == recipientID {
		return domain.Transaction{}, domain.Transaction{}, util.NewTransferError(util.KindStateCorruption,
			fmt.Sprintf("ledger: refusing transfer from %q to itself", senderID))
	}
	if amount.ToAmount(amt, -1) <= 0 {
		return domain.Transaction{}, domain.Transaction{}, util.NewTransferError(util.KindStateCorruption,
			fmt.Sprintf("ledger: refusing non-positive amount %v", amt))
	}

	sender, ok := l.users[senderID]
	if !ok {
		return domain.Transaction{}, domain.Transaction{}, util.NewTransferError(util.KindStateCorruption,
			fmt.Sprintf("ledger: no account entry for sender %q", senderID))
	}
	if !sender.Accounts.Finite() {
		return domain.Transaction{}, domain.Transaction{}, util.NewTransferError(util.KindStateCorruption,
			fmt.Sprintf("ledger: balances of %q are not numeric", senderID))
	}
	if existing, ok := l.users[recipientID]; ok && !existing.Accounts.Finite() {
		return domain.Transaction{}, domain.Transaction{}, util.NewTransferError(util.KindStateCorruption,
			fmt.Sprintf("ledger: balances of %q are not numeric", recipientID))
	}
	if sender.Accounts.Checking < amt {
		return domain.Transaction{}, domain.Transaction{}, util.NewTransferError(util.KindInsufficientFunds, "")
	}

	// Nothing below can fail, so materializing the recipient is safe.
	recipient := l.getOrInit(recipientID)

	senderChecking := amount.Sub(sender.Accounts.Checking, amt)
	recipientChecking := amount.Add(recipient.Accounts.Checking, amt)

	senderTx, recipientTx := domain.NewTransferLegs(
		l.newID(), senderID, recipientID, amt, senderChecking, recipientChecking, at,
	)

	sender.Accounts.Checking = senderChecking
	recipient.Accounts.Checking = recipientChecking
	sender.Transactions = slices.Insert(sender.Transactions, 0, senderTx)
	recipient.Transactions = slices.Insert(recipient.Transactions, 0, recipientTx)

	return senderTx, recipientTx, nil
}

// Subscribe registers a listener for committed mutations.
func (l *Ledger) Subscribe(listener Listener) (unsubscribe func()) {
	return l.bus.Subscribe(listener)
}

// State returns a deep copy of the ledger suitable for snapshotting.
func (l *Ledger) State() domain.LedgerState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	state := make(domain.LedgerState, len(l.users))
	for id, entry := range l.users {
		state[id] = entry.Clone()
	}
	return state
}

// Restore replaces the ledger contents with state and notifies listeners.
func (l *Ledger) Restore(state domain.LedgerState) {
	l.mu.Lock()
	l.load(state)
	l.mu.Unlock()
	l.bus.Publish(Event{Kind: EventRestore, At: time.Now().UTC()})
}

// load must be called with the write lock held (or before the ledger is shared).
func (l *Ledger) load(state domain.LedgerState) {
	l.users = make(map[string]*domain.UserEntry, len(state))
	for id, entry := range state {
		e := entry.Clone()
		e.Accounts = amount.Normalize(e.Accounts)
		l.users[id] = &e
	}
}
