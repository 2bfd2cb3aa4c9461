// internal/publisher/publisher.go

// Package publisher forwards committed ledger events to a message broker.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"finflow-ledger/internal/ledger"
)

// DefaultBufferSize is the number of events held while the broker catches up.
const DefaultBufferSize = 256

// Message is the broker payload for one ledger event.
type Message struct {
	Kind          ledger.EventKind `json:"kind"`
	CorrelationID string           `json:"correlation_id,omitempty"`
	SenderID      string           `json:"sender_id,omitempty"`
	RecipientID   string           `json:"recipient_id,omitempty"`
	Amount        float64          `json:"amount,omitempty"`
	At            time.Time        `json:"at"`
}

// Key is the partition/routing key of the message.
func (m Message) Key() string {
	if m.CorrelationID != "" {
		return m.CorrelationID
	}
	return string(m.Kind)
}

// NewMessage converts a ledger event into its broker payload.
func NewMessage(evt ledger.Event) Message {
	return Message{
		Kind:          evt.Kind,
		CorrelationID: evt.CorrelationID,
		SenderID:      evt.SenderID,
		RecipientID:   evt.RecipientID,
		Amount:        evt.Amount,
		At:            evt.At.UTC(),
	}
}

// Sink delivers encoded messages to a broker.
type Sink interface {
	Send(ctx context.Context, msg Message, payload []byte) error
	Close() error
}

// Publisher queues ledger events and sends them from its own goroutine.
// Enqueueing never blocks; when the buffer is full the event is dropped.
type Publisher struct {
	sink    Sink
	queue   chan Message
	dropped atomic.Int64
	logger  *slog.Logger
}

// New creates a Publisher with a buffer of size events (DefaultBufferSize if <= 0).
func New(sink Sink, size int, logger *slog.Logger) *Publisher {
	if size <= 0 {
		size = DefaultBufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		sink:   sink,
		queue:  make(chan Message, size),
		logger: logger,
	}
}

// Listener returns the ledger listener that feeds this publisher.
func (p *Publisher) Listener() ledger.Listener {
	return func(evt ledger.Event) {
		msg := NewMessage(evt)
		select {
		case p.queue <- msg:
		default:
			p.dropped.Add(1)
			p.logger.Warn("Event buffer full, dropping ledger event",
				"kind", msg.Kind, "correlation_id", msg.CorrelationID)
		}
	}
}

// Dropped reports how many events were discarded because the buffer was full.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Run sends queued events until ctx is cancelled, then drains what is left.
func (p *Publisher) Run(ctx context.Context) {
	sendCtx := context.WithoutCancel(ctx)
	for {
		select {
		case msg := <-p.queue:
			p.send(sendCtx, msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-p.queue:
					p.send(sendCtx, msg)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) send(ctx context.Context, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("Failed to marshal ledger event", "correlation_id", msg.CorrelationID, "error", err)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.sink.Send(sendCtx, msg, payload); err != nil {
		p.logger.Error("Failed to publish ledger event", "kind", msg.Kind, "correlation_id", msg.CorrelationID, "error", err)
		return
	}
	p.logger.Debug("Ledger event published", "kind", msg.Kind, "correlation_id", msg.CorrelationID)
}

// Close releases the sink.
func (p *Publisher) Close() error {
	if err := p.sink.Close(); err != nil {
		return fmt.Errorf("failed to close event sink: %w", err)
	}
	return nil
}
