// internal/ledger/ledger_test.go
package ledger

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finflow-ledger/internal/domain"
	"finflow-ledger/internal/util"
)

func newDemoLedger(t *testing.T) *Ledger {
	t.Helper()
	seq := 0
	return New(
		WithState(DemoState()),
		WithIDGenerator(func() string {
			seq++
			return "corr-" + string(rune('0'+seq))
		}),
	)
}

func TestGetBalances_MaterializesUnseenUser(t *testing.T) {
	l := New(WithStartingBalance(250))

	assert.False(t, l.Exists("new@client.com"))
	got := l.GetBalances("new@client.com")

	assert.Equal(t, domain.AccountBalances{Checking: 250}, got)
	assert.True(t, l.Exists("new@client.com"))
}

func TestGetBalances_DefaultStartingBalance(t *testing.T) {
	l := New()
	assert.Equal(t, DefaultStartingBalance, l.GetBalances("someone@x.com").Checking)
}

func TestGetBalances_ReturnsCopy(t *testing.T) {
	l := newDemoLedger(t)
	b := l.GetBalances(DemoClient)
	b.Checking = 0

	assert.Equal(t, 15420.50, l.GetBalances(DemoClient).Checking)
}

func TestGetTransactions_UnseenUserIsNotMaterialized(t *testing.T) {
	l := New()

	txs := l.GetTransactions("ghost@client.com")

	assert.NotNil(t, txs)
	assert.Empty(t, txs)
	assert.False(t, l.Exists("ghost@client.com"))
}

func TestApplyTransfer_ScenarioFromDemoBalances(t *testing.T) {
	l := newDemoLedger(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	recipientBefore := l.GetBalances(DemoAmit)

	senderTx, recipientTx, err := l.ApplyTransfer(DemoClient, DemoAmit, 500, at)
	require.NoError(t, err)

	sender := l.GetBalances(DemoClient)
	recipient := l.GetBalances(DemoAmit)
	assert.Equal(t, 14920.50, sender.Checking)
	assert.Equal(t, 8750.25, sender.Savings)
	assert.Equal(t, -2340.75, sender.Credit)
	assert.Equal(t, recipientBefore.Checking+500, recipient.Checking)
	assert.Equal(t, recipientBefore.Savings, recipient.Savings)
	assert.Equal(t, recipientBefore.Credit, recipient.Credit)

	assert.Equal(t, domain.DirectionOut, senderTx.Direction)
	assert.Equal(t, domain.DirectionIn, recipientTx.Direction)
	assert.Equal(t, senderTx.CorrelationID, recipientTx.CorrelationID)
	assert.Equal(t, DemoAmit, senderTx.CounterpartyEmail)
	assert.Equal(t, DemoClient, recipientTx.CounterpartyEmail)
	assert.Equal(t, 14920.50, senderTx.BalanceAfter)
	assert.Equal(t, "2024-05-01T12:00:00Z", senderTx.Timestamp)

	assert.Equal(t, []domain.Transaction{senderTx}, l.GetTransactions(DemoClient))
	assert.Equal(t, []domain.Transaction{recipientTx}, l.GetTransactions(DemoAmit))
}

func TestApplyTransfer_LogsAreNewestFirst(t *testing.T) {
	l := newDemoLedger(t)
	now := time.Now()

	first, _, err := l.ApplyTransfer(DemoClient, DemoAmit, 10, now)
	require.NoError(t, err)
	second, _, err := l.ApplyTransfer(DemoClient, DemoAmit, 20, now.Add(time.Second))
	require.NoError(t, err)

	txs := l.GetTransactions(DemoClient)
	require.Len(t, txs, 2)
	assert.Equal(t, second.ID, txs[0].ID)
	assert.Equal(t, first.ID, txs[1].ID)
}

func TestApplyTransfer_MaterializesRecipient(t *testing.T) {
	l := New(WithState(DemoState()), WithStartingBalance(100))

	_, _, err := l.ApplyTransfer(DemoClient, "fresh@client.com", 1, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 101.0, l.GetBalances("fresh@client.com").Checking)
}

func TestApplyTransfer_MissingSenderIsStateCorruption(t *testing.T) {
	l := New()

	_, _, err := l.ApplyTransfer("missing@client.com", DemoAmit, 5, time.Now())

	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrStateCorruption))
	assert.False(t, l.Exists(DemoAmit), "no partial state on failure")
}

func TestApplyTransfer_RecheckFundsUnderLock(t *testing.T) {
	l := newDemoLedger(t)
	before := l.State()

	_, _, err := l.ApplyTransfer(DemoClient, DemoAmit, 20000, time.Now())

	assert.True(t, errors.Is(err, util.ErrInsufficientFunds))
	assert.Equal(t, before, l.State())
}

func TestApplyTransfer_PublishesAfterCommit(t *testing.T) {
	l := newDemoLedger(t)
	var seen []Event
	var checkingDuringEvent float64
	l.Subscribe(func(evt Event) {
		seen = append(seen, evt)
		// The lock is released before listeners run, so reads must not deadlock.
		checkingDuringEvent = l.GetBalances(DemoClient).Checking
	})

	senderTx, _, err := l.ApplyTransfer(DemoClient, DemoAmit, 100, time.Now())
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, EventTransfer, seen[0].Kind)
	assert.Equal(t, senderTx.CorrelationID, seen[0].CorrelationID)
	assert.Equal(t, 100.0, seen[0].Amount)
	assert.Equal(t, 15320.50, checkingDuringEvent)
}

func TestApplyTransfer_FailureDoesNotNotify(t *testing.T) {
	l := newDemoLedger(t)
	calls := 0
	l.Subscribe(func(Event) { calls++ })

	_, _, _ = l.ApplyTransfer(DemoClient, DemoAmit, 1e9, time.Now())

	assert.Zero(t, calls)
}

func TestApplyTransfer_ConcurrentTransfersNeverOverdraw(t *testing.T) {
	l := New(WithState(domain.LedgerState{
		"a@x.com": {Accounts: domain.AccountBalances{Checking: 1000}},
		"b@x.com": {Accounts: domain.AccountBalances{}},
	}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := l.ApplyTransfer("a@x.com", "b@x.com", 100, time.Now()); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0.0, l.GetBalances("a@x.com").Checking)
	assert.Equal(t, 1000.0, l.GetBalances("b@x.com").Checking)
	assert.Len(t, l.GetTransactions("a@x.com"), 10)
}

func TestStateAndRestore(t *testing.T) {
	l := newDemoLedger(t)
	_, _, err := l.ApplyTransfer(DemoClient, DemoAmit, 500, time.Now())
	require.NoError(t, err)

	state := l.State()
	restored := New()
	events := 0
	restored.Subscribe(func(evt Event) {
		assert.Equal(t, EventRestore, evt.Kind)
		events++
	})
	restored.Restore(state)

	assert.Equal(t, state, restored.State())
	assert.Equal(t, 1, events)
	assert.Equal(t, []string{DemoAdmin, DemoAmit, DemoClient}, restored.Users())

	// Mutating the snapshot must not leak into the ledger.
	entry := state[DemoClient]
	entry.Accounts.Checking = 0
	state[DemoClient] = entry
	assert.Equal(t, 14920.50, restored.GetBalances(DemoClient).Checking)
}

func TestPeekBalances_DoesNotMaterialize(t *testing.T) {
	l := New(WithState(DemoState()), WithStartingBalance(250))

	assert.Equal(t, 15420.50, l.PeekBalances(DemoClient).Checking)
	assert.Equal(t, domain.AccountBalances{Checking: 250}, l.PeekBalances("unseen@client.com"))
	assert.False(t, l.Exists("unseen@client.com"))
}

// Balances move by exactly the transferred amount in decimal terms. Plain
// float64 subtraction would not hold here (0.3-0.1 != 0.2 in binary).
func TestApplyTransfer_ConservationIsExactInDecimal(t *testing.T) {
	pairs := []struct{ before, amt float64 }{
		{0.3, 0.1},
		{1.1, 0.2},
		{15420.50, 500},
		{100.07, 33.33},
	}
	for _, p := range pairs {
		l := New(WithState(domain.LedgerState{
			"s@x.com": {Accounts: domain.AccountBalances{Checking: p.before, Savings: 7, Credit: -3}},
			"r@x.com": {Accounts: domain.AccountBalances{Checking: p.before}},
		}))

		_, _, err := l.ApplyTransfer("s@x.com", "r@x.com", p.amt, time.Now())
		require.NoError(t, err)

		before, amt := decimal.NewFromFloat(p.before), decimal.NewFromFloat(p.amt)
		sender, recipient := l.GetBalances("s@x.com"), l.GetBalances("r@x.com")
		assert.True(t, before.Sub(amt).Equal(decimal.NewFromFloat(sender.Checking)), "sender %v - %v", p.before, p.amt)
		assert.True(t, before.Add(amt).Equal(decimal.NewFromFloat(recipient.Checking)), "recipient %v + %v", p.before, p.amt)
		assert.Equal(t, 7.0, sender.Savings)
		assert.Equal(t, -3.0, sender.Credit)
	}
}
