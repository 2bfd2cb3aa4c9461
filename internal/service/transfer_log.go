// internal/service/transfer_log.go
package service

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TransferAction is the stage a TransferLogEntry records.
type TransferAction string

const (
	ActionInitiated       TransferAction = "transfer_initiated"
	ActionSuccess         TransferAction = "transfer_success"
	ActionFailed          TransferAction = "transfer_failed"
	ActionValidationError TransferAction = "validation_error"
)

// DefaultTransferLogSize bounds the in-memory audit trail.
const DefaultTransferLogSize = 50

// TransferLogEntry is one line of the transfer audit trail.
type TransferLogEntry struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	Action         TransferAction `json:"action"`
	SenderEmail    string         `json:"sender_email,omitempty"`
	RecipientEmail string         `json:"recipient_email,omitempty"`
	Amount         float64        `json:"amount,omitempty"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	Details        string         `json:"details"`
}

// TransferLog keeps the most recent transfer attempts, newest first.
type TransferLog struct {
	mu      sync.Mutex
	entries []TransferLogEntry
	size    int
}

// NewTransferLog creates a log holding at most size entries.
func NewTransferLog(size int) *TransferLog {
	if size <= 0 {
		size = DefaultTransferLogSize
	}
	return &TransferLog{size: size}
}

// Record stores entry, filling in ID and Timestamp when missing.
func (l *TransferLog) Record(entry TransferLogEntry) TransferLogEntry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = slices.Insert(l.entries, 0, entry)
	if len(l.entries) > l.size {
		l.entries = l.entries[:l.size]
	}
	return entry
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (l *TransferLog) Recent(limit int) []TransferLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]TransferLogEntry, n)
	copy(out, l.entries[:n])
	return out
}
