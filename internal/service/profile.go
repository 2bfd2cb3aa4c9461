// internal/service/profile.go
package service

import (
	"finflow-ledger/internal/amount"
	"finflow-ledger/internal/domain"
	"finflow-ledger/internal/feed"
)

// DefaultRecentTransactions is how many feed entries a profile shows.
const DefaultRecentTransactions = 10

// ProfileReader is the read side of the ledger used to build a profile.
type ProfileReader interface {
	GetBalances(userID string) domain.AccountBalances
	GetTransactions(userID string) []domain.Transaction
}

// Profile is the dashboard summary for one user.
type Profile struct {
	Me             string                    `json:"me"`
	Username       string                    `json:"username"`
	Accounts       domain.AccountBalances    `json:"accounts"`
	TotalBalance   float64                   `json:"total_balance"`
	TotalFormatted string                    `json:"total_formatted"`
	Transactions   []feed.DisplayTransaction `json:"transactions"`
}

// ProfileService assembles Profiles from the ledger.
type ProfileService struct {
	ledger ProfileReader
}

// NewProfileService creates a ProfileService.
func NewProfileService(ledger ProfileReader) *ProfileService {
	return &ProfileService{ledger: ledger}
}

// Profile builds userID's summary with at most limit recent transactions.
// limit <= 0 uses DefaultRecentTransactions.
func (p *ProfileService) Profile(userID string, limit int) Profile {
	if limit <= 0 {
		limit = DefaultRecentTransactions
	}
	balances := p.ledger.GetBalances(userID)
	total := amount.Add(amount.Add(balances.Checking, balances.Savings), balances.Credit)

	return Profile{
		Me:             userID,
		Username:       feed.DisplayName(userID),
		Accounts:       balances,
		TotalBalance:   total,
		TotalFormatted: amount.FormatAmount(total),
		Transactions:   feed.FromLedgerLog(userID, p.ledger.GetTransactions(userID), limit),
	}
}
