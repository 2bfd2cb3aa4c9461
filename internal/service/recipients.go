// internal/service/recipients.go
package service

import "finflow-ledger/internal/domain"

// RecipientValidator decides whether an identifier may receive transfers.
// *ledger.Ledger satisfies it directly (existence in the ledger).
type RecipientValidator interface {
	Exists(id string) bool
}

// AllowList accepts a fixed set of identities, compared case-insensitively.
type AllowList map[string]struct{}

// NewAllowList builds an AllowList from ids.
func NewAllowList(ids ...string) AllowList {
	list := make(AllowList, len(ids))
	for _, id := range ids {
		list[domain.CanonicalID(id)] = struct{}{}
	}
	return list
}

// Exists implements RecipientValidator.
func (a AllowList) Exists(id string) bool {
	_, ok := a[domain.CanonicalID(id)]
	return ok
}

// RecipientValidatorFunc adapts a function to RecipientValidator.
type RecipientValidatorFunc func(id string) bool

// Exists implements RecipientValidator.
func (f RecipientValidatorFunc) Exists(id string) bool {
	return f(id)
}
