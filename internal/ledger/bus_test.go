// internal/ledger/bus_test.go
package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus(nil)
	var calls []string
	bus.Subscribe(func(Event) { calls = append(calls, "first") })
	bus.Subscribe(func(Event) { calls = append(calls, "second") })
	bus.Subscribe(func(Event) { calls = append(calls, "third") })

	bus.Publish(Event{Kind: EventTransfer})

	assert.Equal(t, []string{"first", "second", "third"}, calls)
}

func TestBus_UnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus(nil)
	count := 0
	unsubscribe := bus.Subscribe(func(Event) { count++ })
	keep := 0
	bus.Subscribe(func(Event) { keep++ })

	unsubscribe()
	unsubscribe()
	bus.Publish(Event{Kind: EventTransfer})

	assert.Equal(t, 0, count)
	assert.Equal(t, 1, keep)
	assert.Equal(t, 1, bus.Len())
}

func TestBus_PanickingListenerIsIsolated(t *testing.T) {
	bus := NewBus(nil)
	reached := false
	bus.Subscribe(func(Event) { panic("boom") })
	bus.Subscribe(func(Event) { reached = true })

	assert.NotPanics(t, func() { bus.Publish(Event{Kind: EventTransfer}) })
	assert.True(t, reached)
}

func TestBus_ListenerMayUnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus(nil)
	var unsubscribe func()
	calls := 0
	unsubscribe = bus.Subscribe(func(Event) {
		calls++
		unsubscribe()
	})

	bus.Publish(Event{Kind: EventTransfer})
	bus.Publish(Event{Kind: EventTransfer})

	assert.Equal(t, 1, calls)
}
