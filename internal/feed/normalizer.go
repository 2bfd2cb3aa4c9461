// internal/feed/normalizer.go

// Package feed turns heterogeneous transaction records into one display model.
package feed

import (
	"math"
	"strings"

	"finflow-ledger/internal/domain"
)

// Labels shown next to the counterparty.
const (
	LabelReceived = "Received from"
	LabelSent     = "Sent to"
)

// UnknownCounterparty is used when no party can be resolved.
const UnknownCounterparty = "Unknown"

// DisplayTransaction is the canonical record the UI renders.
type DisplayTransaction struct {
	ID           string  `json:"id"`
	Incoming     bool    `json:"incoming"`
	Counterparty string  `json:"counterparty"`
	DisplayName  string  `json:"display_name"`
	Amount       float64 `json:"amount"` // Absolute value
	SignedAmount float64 `json:"signed_amount"`
	Sign         string  `json:"sign"`  // "+" or "-"
	Class        string  `json:"class"` // "pos" or "neg"
	Label        string  `json:"label"`
	Date         string  `json:"date"`
	Description  string  `json:"description,omitempty"`
}

var incomingTypes = map[string]bool{
	"transfer_in":       true,
	"transfer_received": true,
	"deposit":           true,
	"transfer_out":      false,
	"transfer_sent":     false,
	"withdrawal":        false,
}

// Normalize maps rec onto a DisplayTransaction from the viewer's point of view.
// It never fails; ambiguous fields fall back to defaults.
//
// Direction is taken from the first rule that applies:
//  1. an explicit dir/direction field
//  2. the to/from parties compared with viewer
//  3. the type field
//  4. the sign of the amount
func Normalize(viewer string, rec RawRecord) DisplayTransaction {
	signed := rec.signedAmount()
	incoming := resolveIncoming(viewer, rec, signed)

	counterparty := rec.Peer
	if counterparty == "" {
		if incoming {
			counterparty = rec.fromSide()
		} else {
			counterparty = rec.toSide()
		}
	}
	if counterparty == "" {
		counterparty = UnknownCounterparty
	}

	abs := math.Abs(signed)
	out := DisplayTransaction{
		ID:           rec.identifier(),
		Incoming:     incoming,
		Counterparty: counterparty,
		DisplayName:  DisplayName(counterparty),
		Amount:       abs,
		Date:         rec.date(),
		Description:  rec.Description,
	}
	if incoming {
		out.SignedAmount, out.Sign, out.Class, out.Label = abs, "+", "pos", LabelReceived
	} else {
		out.SignedAmount, out.Sign, out.Class, out.Label = -abs, "-", "neg", LabelSent
	}
	return out
}

func resolveIncoming(viewer string, rec RawRecord, signed float64) bool {
	for _, d := range []string{rec.Dir, rec.Direction} {
		switch domain.Direction(strings.ToLower(strings.TrimSpace(d))) {
		case domain.DirectionIn:
			return true
		case domain.DirectionOut:
			return false
		}
	}

	if viewer != "" {
		if to := rec.toSide(); to != "" {
			return strings.EqualFold(to, viewer)
		}
		if from := rec.fromSide(); from != "" {
			return !strings.EqualFold(from, viewer)
		}
	}

	if in, ok := incomingTypes[strings.ToLower(strings.TrimSpace(rec.Type))]; ok {
		return in
	}

	// Lossy: records that store the amount unsigned always look incoming.
	return signed >= 0
}

// BuildRecent normalizes records in order, keeping at most limit of them.
// A limit of zero or less keeps everything.
func BuildRecent(viewer string, records []RawRecord, limit int) []DisplayTransaction {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	out := make([]DisplayTransaction, 0, len(records))
	for _, rec := range records {
		out = append(out, Normalize(viewer, rec))
	}
	return out
}

// FromLedgerLog converts a user's ledger log into display records.
func FromLedgerLog(viewer string, txs []domain.Transaction, limit int) []DisplayTransaction {
	records := make([]RawRecord, len(txs))
	for i, tx := range txs {
		records[i] = FromLedger(tx)
	}
	return BuildRecent(viewer, records, limit)
}
