// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrInvalidInput = errors.New("invalid input provided")
	ErrUnauthorized = errors.New("user identity is required")

	// Transfer rule violations. Each TransferError wraps exactly one of these.
	ErrInvalidAmount     = errors.New("amount must be a positive number")
	ErrSelfTransfer      = errors.New("cannot transfer to yourself")
	ErrUnknownRecipient  = errors.New("recipient not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStateCorruption   = errors.New("ledger state is corrupted")
)

// TransferErrorKind classifies why a transfer was rejected.
type TransferErrorKind string

const (
	KindInvalidAmount     TransferErrorKind = "InvalidAmount"
	KindSelfTransfer      TransferErrorKind = "SelfTransfer"
	KindUnknownRecipient  TransferErrorKind = "UnknownRecipient"
	KindInsufficientFunds TransferErrorKind = "InsufficientFunds"
	KindStateCorruption   TransferErrorKind = "StateCorruption"
)

var kindSentinels = map[TransferErrorKind]error{
	KindInvalidAmount:     ErrInvalidAmount,
	KindSelfTransfer:      ErrSelfTransfer,
	KindUnknownRecipient:  ErrUnknownRecipient,
	KindInsufficientFunds: ErrInsufficientFunds,
	KindStateCorruption:   ErrStateCorruption,
}

// TransferError is returned by the transfer engine and the ledger.
// Message is meant to be shown to the user unchanged.
type TransferError struct {
	Kind    TransferErrorKind
	Message string
	cause   error
}

// NewTransferError builds a TransferError of the given kind. An empty message
// falls back to the kind's default text.
func NewTransferError(kind TransferErrorKind, message string) *TransferError {
	sentinel := kindSentinels[kind]
	if message == "" && sentinel != nil {
		message = sentinel.Error()
	}
	return &TransferError{Kind: kind, Message: message, cause: sentinel}
}

func (e *TransferError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match the kind's sentinel.
func (e *TransferError) Unwrap() error {
	return e.cause
}

// Fatal reports whether the error indicates a broken ledger invariant.
func (e *TransferError) Fatal() bool {
	return e.Kind == KindStateCorruption
}

// TransferErrorKindOf extracts the kind from err, if it is a TransferError.
func TransferErrorKindOf(err error) (TransferErrorKind, bool) {
	var te *TransferError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}

// IsError reports whether err matches target anywhere in its chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
