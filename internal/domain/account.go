// internal/domain/account.go
package domain

import (
	"maps"
	"math"
	"slices"
)

// AccountBalances holds one user's three balances.
// Credit may be negative (outstanding debt).
type AccountBalances struct {
	Checking float64 `json:"checking"`
	Savings  float64 `json:"savings"`
	Credit   float64 `json:"credit"`
}

// Total is the sum of all three balances.
func (a AccountBalances) Total() float64 {
	return a.Checking + a.Savings + a.Credit
}

// Finite reports whether every balance is a usable number.
func (a AccountBalances) Finite() bool {
	for _, v := range []float64{a.Checking, a.Savings, a.Credit} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// UserEntry is everything the ledger knows about one user.
type UserEntry struct {
	Accounts     AccountBalances `json:"accounts"`
	Transactions []Transaction   `json:"transactions"` // Newest first
}

// Clone returns a copy that shares no memory with e.
func (e UserEntry) Clone() UserEntry {
	txs := make([]Transaction, len(e.Transactions))
	copy(txs, e.Transactions)
	return UserEntry{Accounts: e.Accounts, Transactions: txs}
}

// LedgerState maps a user identifier to its entry. It is also the snapshot layout.
type LedgerState map[string]UserEntry

// Clone deep-copies the state.
func (s LedgerState) Clone() LedgerState {
	out := make(LedgerState, len(s))
	for id, entry := range s {
		out[id] = entry.Clone()
	}
	return out
}

// UserIDs returns the known identifiers in sorted order.
func (s LedgerState) UserIDs() []string {
	return slices.Sorted(maps.Keys(s))
}
