// internal/service/transfer_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finflow-ledger/internal/amount"
	"finflow-ledger/internal/domain"
	"finflow-ledger/internal/util"
)

// TransferSuccessMessage is returned with every successful transfer.
const TransferSuccessMessage = "Transfer completed successfully"

// LedgerStore is the part of the ledger the transfer engine depends on.
// *ledger.Ledger implements it.
type LedgerStore interface {
	// PeekBalances reads balances without creating an entry for an unseen user.
	PeekBalances(userID string) domain.AccountBalances
	GetBalances(userID string) domain.AccountBalances
	ApplyTransfer(senderID, recipientID string, amount float64, at time.Time) (domain.Transaction, domain.Transaction, error)
}

// TransferResult is what a successful transfer reports back to the caller.
type TransferResult struct {
	Success              bool               `json:"success"`
	Message              string             `json:"message"`
	TransactionID        string             `json:"transaction_id"` // Correlation id shared by both legs
	SenderTransaction    domain.Transaction `json:"sender_transaction"`
	RecipientTransaction domain.Transaction `json:"recipient_transaction"`
}

// TransferService defines the transfer engine.
type TransferService interface {
	// Transfer validates and executes a move of rawAmount from the sender's
	// checking balance to the recipient's. Failures are *util.TransferError.
	Transfer(ctx context.Context, senderID, recipientID string, rawAmount any) (*TransferResult, error)
	// RecentLogs returns the latest audit entries, newest first.
	RecentLogs(limit int) []TransferLogEntry
}

// transferService implements the TransferService interface.
type transferService struct {
	ledger     LedgerStore
	recipients RecipientValidator
	audit      *TransferLog
	now        func() time.Time
	logger     *slog.Logger
}

// TransferOption customizes a TransferService.
type TransferOption func(*transferService)

// WithClock overrides the time source used to stamp transfers.
func WithClock(now func() time.Time) TransferOption {
	return func(s *transferService) { s.now = now }
}

// WithTransferLog sets the audit trail the service records into.
func WithTransferLog(log *TransferLog) TransferOption {
	return func(s *transferService) { s.audit = log }
}

// NewTransferService creates a new instance of TransferService.
func NewTransferService(
	ledger LedgerStore,
	recipients RecipientValidator,
	logger *slog.Logger,
	opts ...TransferOption,
) TransferService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &transferService{
		ledger:     ledger,
		recipients: recipients,
		audit:      NewTransferLog(DefaultTransferLogSize),
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transfer checks, in order: amount format, self-transfer, recipient
// existence, then funds. Nothing is mutated until every check has passed.
// Identifiers are compared and stored in their canonical form.
func (s *transferService) Transfer(ctx context.Context, senderID, recipientID string, rawAmount any) (*TransferResult, error) {
	senderID, recipientID = domain.CanonicalID(senderID), domain.CanonicalID(recipientID)
	amt := amount.Amount(rawAmount)
	s.record(ActionInitiated, senderID, recipientID, amt, "", fmt.Sprintf("Transfer of %s to %s initiated", amount.FormatAmount(amt), recipientID))

	if amt <= 0 {
		return nil, s.reject(ctx, util.NewTransferError(util.KindInvalidAmount, ""), senderID, recipientID, amt)
	}
	if senderID == recipientID {
		return nil, s.reject(ctx, util.NewTransferError(util.KindSelfTransfer, ""), senderID, recipientID, amt)
	}
	if recipientID == "" || s.recipients == nil || !s.recipients.Exists(recipientID) {
		return nil, s.reject(ctx, util.NewTransferError(util.KindUnknownRecipient,
			fmt.Sprintf("recipient not found: %s", recipientID)), senderID, recipientID, amt)
	}

	balances := s.ledger.PeekBalances(senderID)
	if balances.Checking < amt {
		return nil, s.reject(ctx, util.NewTransferError(util.KindInsufficientFunds, ""), senderID, recipientID, amt)
	}
	// A first-time sender gets its entry only once the transfer goes ahead.
	s.ledger.GetBalances(senderID)

	senderTx, recipientTx, err := s.ledger.ApplyTransfer(senderID, recipientID, amt, s.now())
	if err != nil {
		if _, ok := util.TransferErrorKindOf(err); !ok {
			err = util.NewTransferError(util.KindStateCorruption, fmt.Sprintf("transfer: ledger rejected mutation: %v", err))
		}
		return nil, s.reject(ctx, err, senderID, recipientID, amt)
	}

	s.logger.InfoContext(ctx, "Transfer completed",
		"transaction_id", senderTx.CorrelationID,
		"sender", senderID,
		"recipient", recipientID,
		"amount", amt,
		"sender_balance_after", senderTx.BalanceAfter,
	)
	s.record(ActionSuccess, senderID, recipientID, amt, "", fmt.Sprintf("Transferred %s to %s", amount.FormatAmount(amt), recipientID))

	return &TransferResult{
		Success:              true,
		Message:              TransferSuccessMessage,
		TransactionID:        senderTx.CorrelationID,
		SenderTransaction:    senderTx,
		RecipientTransaction: recipientTx,
	}, nil
}

// reject logs and audits a failed transfer and returns err unchanged.
func (s *transferService) reject(ctx context.Context, err error, senderID, recipientID string, amt float64) error {
	kind, _ := util.TransferErrorKindOf(err)
	action := ActionValidationError
	level := slog.LevelWarn
	switch kind {
	case util.KindInsufficientFunds:
		action = ActionFailed
	case util.KindStateCorruption:
		action = ActionFailed
		level = slog.LevelError
	}

	s.logger.Log(ctx, level, "Transfer rejected",
		"kind", string(kind),
		"sender", senderID,
		"recipient", recipientID,
		"amount", amt,
		"error", err,
	)
	s.record(action, senderID, recipientID, amt, err.Error(), fmt.Sprintf("Transfer rejected: %s", kind))
	return err
}

func (s *transferService) record(action TransferAction, senderID, recipientID string, amt float64, errMsg, details string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(TransferLogEntry{
		Timestamp:      s.now(),
		Action:         action,
		SenderEmail:    senderID,
		RecipientEmail: recipientID,
		Amount:         amt,
		ErrorMessage:   errMsg,
		Details:        details,
	})
}

// RecentLogs implements TransferService.
func (s *transferService) RecentLogs(limit int) []TransferLogEntry {
	if s.audit == nil {
		return nil
	}
	return s.audit.Recent(limit)
}
