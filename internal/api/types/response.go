// internal/api/types/response.go
package types

import "finflow-ledger/internal/domain"

// ListResponse wraps a limited list of transactions.
// T is either a ledger record or a display record.
type ListResponse[T any] struct {
	Transactions []T `json:"transactions"`
	Count        int `json:"count"`
	Limit        int `json:"limit,omitempty"`
}

// NewListResponse builds a ListResponse, never encoding a null list.
func NewListResponse[T any](items []T, limit int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Transactions: items, Count: len(items), Limit: limit}
}

// AccountsResponse is returned by the accounts endpoint.
type AccountsResponse struct {
	Accounts domain.AccountBalances `json:"accounts"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"` // Transfer error kind, when applicable
}
