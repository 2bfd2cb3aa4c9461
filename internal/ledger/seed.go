// internal/ledger/seed.go
package ledger

import "finflow-ledger/internal/domain"

// Demo identities preloaded for the standalone dashboard.
const (
	DemoClient = "client@client.com"
	DemoAmit   = "amit@client.com"
	DemoAdmin  = "admin@bank.com"
)

// DemoState returns the balances the demo dashboard starts with.
func DemoState() domain.LedgerState {
	return domain.LedgerState{
		DemoClient: {
			Accounts:     domain.AccountBalances{Checking: 15420.50, Savings: 8750.25, Credit: -2340.75},
			Transactions: []domain.Transaction{},
		},
		DemoAmit: {
			Accounts:     domain.AccountBalances{Checking: 25000.00, Savings: 5000.00, Credit: 0},
			Transactions: []domain.Transaction{},
		},
		DemoAdmin: {
			Accounts:     domain.AccountBalances{Checking: 1000000.00, Savings: 500000.00, Credit: 0},
			Transactions: []domain.Transaction{},
		},
	}
}

// DemoIdentities lists the demo users in a stable order.
func DemoIdentities() []string {
	return []string{DemoClient, DemoAmit, DemoAdmin}
}
