// internal/domain/transaction.go
package domain

import "time"

// Direction tells whether a transaction moved money into or out of the owner's account.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Inverse returns the opposite direction.
func (d Direction) Inverse() Direction {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}

// TimestampLayout is the layout used for Transaction.Timestamp.
const TimestampLayout = time.RFC3339Nano

// Transaction is one leg of a transfer, owned by exactly one user's log.
// A transfer produces two of these sharing a CorrelationID.
type Transaction struct {
	ID                string    `json:"id"`
	CorrelationID     string    `json:"correlation_id"`
	Timestamp         string    `json:"timestamp"`          // ISO-8601, UTC
	Direction         Direction `json:"direction"`          // in or out, relative to the owner
	CounterpartyEmail string    `json:"counterparty_email"` // The other party of the transfer
	Amount            float64   `json:"amount"`             // Always positive; sign implied by Direction
	BalanceAfter      float64   `json:"balance_after"`      // Owner's checking balance after this leg
}

// NewTransferLegs creates the debit and credit legs of a single transfer.
func NewTransferLegs(
	correlationID string,
	senderID, recipientID string,
	amount float64,
	senderBalanceAfter, recipientBalanceAfter float64,
	at time.Time,
) (Transaction, Transaction) {
	ts := at.UTC().Format(TimestampLayout)
	debit := Transaction{
		ID:                correlationID + "-out",
		CorrelationID:     correlationID,
		Timestamp:         ts,
		Direction:         DirectionOut,
		CounterpartyEmail: recipientID,
		Amount:            amount,
		BalanceAfter:      senderBalanceAfter,
	}
	credit := Transaction{
		ID:                correlationID + "-in",
		CorrelationID:     correlationID,
		Timestamp:         ts,
		Direction:         DirectionIn,
		CounterpartyEmail: senderID,
		Amount:            amount,
		BalanceAfter:      recipientBalanceAfter,
	}
	return debit, credit
}
