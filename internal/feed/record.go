// internal/feed/record.go
package feed

import (
	"fmt"

	"finflow-ledger/internal/amount"
	"finflow-ledger/internal/domain"
)

// RawRecord is the union of every transaction shape the dashboard has
// produced. Producers disagree on field names, so all of them are accepted
// here and reconciled by Normalize; nothing outside this package sees them.
type RawRecord struct {
	ID             string `json:"id,omitempty"`
	LegacyID       string `json:"_id,omitempty"`
	Dir            string `json:"dir,omitempty"`
	Direction      string `json:"direction,omitempty"`
	Type           string `json:"type,omitempty"`
	To             string `json:"to,omitempty"`
	From           string `json:"from,omitempty"`
	RecipientEmail string `json:"recipientEmail,omitempty"`
	SenderEmail    string `json:"senderEmail,omitempty"`
	Peer           string `json:"peer,omitempty"`
	Amount         any    `json:"amount,omitempty"`
	Date           string `json:"date,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
	When           string `json:"when,omitempty"`
	Description    string `json:"description,omitempty"`
}

// FromLedger converts a ledger record into the ingestion shape.
func FromLedger(tx domain.Transaction) RawRecord {
	typ := "transfer_in"
	description := "Transfer from " + tx.CounterpartyEmail
	if tx.Direction == domain.DirectionOut {
		typ = "transfer_out"
		description = "Transfer to " + tx.CounterpartyEmail
	}
	return RawRecord{
		ID:          tx.ID,
		Direction:   string(tx.Direction),
		Type:        typ,
		Peer:        tx.CounterpartyEmail,
		Amount:      tx.Amount,
		Timestamp:   tx.Timestamp,
		Description: description,
	}
}

// FromMap reads a RawRecord out of a loosely typed map, such as one decoded
// from JSON into map[string]any. Unknown keys are ignored.
func FromMap(m map[string]any) RawRecord {
	str := func(key string) string {
		v, ok := m[key]
		if !ok || v == nil {
			return ""
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return RawRecord{
		ID:             str("id"),
		LegacyID:       str("_id"),
		Dir:            str("dir"),
		Direction:      str("direction"),
		Type:           str("type"),
		To:             str("to"),
		From:           str("from"),
		RecipientEmail: str("recipientEmail"),
		SenderEmail:    str("senderEmail"),
		Peer:           str("peer"),
		Amount:         m["amount"],
		Date:           str("date"),
		Timestamp:      str("timestamp"),
		When:           firstNonEmpty(str("when"), str("ts")),
		Description:    str("description"),
	}
}

func (r RawRecord) identifier() string {
	return firstNonEmpty(r.ID, r.LegacyID)
}

func (r RawRecord) date() string {
	return firstNonEmpty(r.Date, r.Timestamp, r.When)
}

// toSide and fromSide merge the two naming conventions for the parties.
func (r RawRecord) toSide() string {
	return firstNonEmpty(r.To, r.RecipientEmail)
}

func (r RawRecord) fromSide() string {
	return firstNonEmpty(r.From, r.SenderEmail)
}

func (r RawRecord) signedAmount() float64 {
	return amount.Amount(r.Amount)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
