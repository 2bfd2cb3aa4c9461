// internal/api/handler/banking.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"finflow-ledger/internal/api/types"
	"finflow-ledger/internal/domain"
	"finflow-ledger/internal/service"
	"finflow-ledger/internal/util" // For custom errors
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

// UserHeader carries the caller identity set by the upstream auth layer.
const UserHeader = "X-User-Email"

// Default page sizes.
const (
	DefaultFeedLimit = 10
	DefaultLogsLimit = 20
	maxLimit         = 500
)

type userKey struct{}

// LedgerReader is the read side of the ledger exposed over HTTP.
type LedgerReader interface {
	GetBalances(userID string) domain.AccountBalances
	GetTransactions(userID string) []domain.Transaction
}

// BankingHandler handles HTTP requests for the dashboard.
type BankingHandler struct {
	ledger    LedgerReader
	transfers service.TransferService
	profiles  *service.ProfileService
	logger    *slog.Logger
}

// NewBankingHandler creates a new BankingHandler.
func NewBankingHandler(ledger LedgerReader, transfers service.TransferService, profiles *service.ProfileService, logger *slog.Logger) *BankingHandler {
	return &BankingHandler{
		ledger:    ledger,
		transfers: transfers,
		profiles:  profiles,
		logger:    logger,
	}
}

// RequireUser rejects requests without a caller identity and stores it in the context.
func (h *BankingHandler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := domain.CanonicalID(r.Header.Get(UserHeader))
		if user == "" {
			h.respondWithError(w, util.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

func userFrom(r *http.Request) string {
	user, _ := r.Context().Value(userKey{}).(string)
	return user
}

// Helper function to send JSON responses.
func (h *BankingHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func (h *BankingHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"
	kind, _ := util.TransferErrorKindOf(err)

	var te *util.TransferError
	switch {
	case errors.As(err, &te) && te.Fatal():
		h.logger.Error("Ledger state corruption", "error", err)
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = err.Error()
	case util.IsError(err, util.ErrInvalidInput),
		util.IsError(err, util.ErrInvalidAmount),
		util.IsError(err, util.ErrSelfTransfer):
		statusCode = http.StatusBadRequest
		message = err.Error() // Use the error message directly for invalid input
	case util.IsError(err, util.ErrUnknownRecipient):
		statusCode = http.StatusNotFound
		message = err.Error()
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = err.Error()
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message, Kind: string(kind)})
}

// parseLimit reads ?limit=, falling back to def when absent.
func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, util.ErrInvalidInput
	}
	return min(limit, maxLimit), nil
}

// GetAccounts returns the caller's balances.
// GET /api/banking/accounts
func (h *BankingHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, types.AccountsResponse{Accounts: h.ledger.GetBalances(userFrom(r))})
}

// GetTransactions returns the caller's ledger log, newest first.
// GET /api/banking/transactions
func (h *BankingHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 0)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	txs := h.ledger.GetTransactions(userFrom(r))
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	h.respondWithJSON(w, http.StatusOK, types.NewListResponse(txs, limit))
}

// GetFeed returns the caller's recent activity in display form.
// GET /api/banking/feed?limit=
func (h *BankingHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, DefaultFeedLimit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	profile := h.profiles.Profile(userFrom(r), limit)
	h.respondWithJSON(w, http.StatusOK, types.NewListResponse(profile.Transactions, limit))
}

// GetProfile returns the dashboard summary.
// GET /api/banking/profile
func (h *BankingHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, service.DefaultRecentTransactions)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, h.profiles.Profile(userFrom(r), limit))
}

// TransferRequest represents the request body for transfer.
// Amount may be a JSON number or a formatted string such as "₪1,000".
type TransferRequest struct {
	RecipientEmail string `json:"recipientEmail"`
	Amount         any    `json:"amount"`
}

// Transfer handles the transfer money request.
// POST /api/banking/transfer
func (h *BankingHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	result, err := h.transfers.Transfer(r.Context(), userFrom(r), req.RecipientEmail, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, result)
}

// GetTransferLogs returns the latest audit entries.
// GET /api/banking/transfer-logs?limit=
func (h *BankingHandler) GetTransferLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, DefaultLogsLimit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	logs := h.transfers.RecentLogs(limit)
	if logs == nil {
		logs = []service.TransferLogEntry{}
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}
