// internal/ledger/bus.go
package ledger

import (
	"log/slog"
	"sync"
	"time"
)

// EventKind names the mutation that produced an Event.
type EventKind string

const (
	EventTransfer EventKind = "transfer"
	EventRestore  EventKind = "restore"
)

// Event describes a committed ledger mutation.
type Event struct {
	Kind          EventKind `json:"kind"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	SenderID      string    `json:"sender_id,omitempty"`
	RecipientID   string    `json:"recipient_id,omitempty"`
	Amount        float64   `json:"amount,omitempty"`
	At            time.Time `json:"at"`
}

// Listener is invoked synchronously after each committed mutation.
type Listener func(Event)

type subscription struct {
	id       uint64
	listener Listener
}

// Bus is a minimal synchronous publish/subscribe mechanism.
// Listeners run in registration order; a panicking listener is recovered
// and does not prevent later listeners from running.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
	logger *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers l and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (b *Bus) Subscribe(l Listener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, listener: l})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish delivers evt to every listener registered at the time of the call.
func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		b.deliver(s, evt)
	}
}

func (b *Bus) deliver(s subscription, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Ledger listener panicked", "listener_id", s.id, "event", evt.Kind, "panic", r)
		}
	}()
	s.listener(evt)
}
