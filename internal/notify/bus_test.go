package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetup/internal/log"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus(log.Discard())

	var got []string
	bus.Subscribe(func(e CurrencyChanged) { got = append(got, "a:"+string(e.NewCurrency)) })
	bus.Subscribe(func(e CurrencyChanged) { got = append(got, "b:"+string(e.OldCurrency)) })

	bus.Publish(CurrencyChanged{OldCurrency: "USD", NewCurrency: "GHS"})

	assert.Equal(t, []string{"a:GHS", "b:USD"}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(log.Discard())

	calls := 0
	unsubscribe := bus.Subscribe(func(CurrencyChanged) { calls++ })
	other := bus.Subscribe(func(CurrencyChanged) {})
	require.Equal(t, 2, bus.Len())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 1, bus.Len())

	bus.Publish(CurrencyChanged{OldCurrency: "USD", NewCurrency: "EUR"})
	assert.Equal(t, 0, calls)

	other()
	assert.Equal(t, 0, bus.Len())
}

func TestBus_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus(log.Discard())

	delivered := false
	bus.Subscribe(func(CurrencyChanged) { panic("boom") })
	bus.Subscribe(func(CurrencyChanged) { delivered = true })

	assert.NotPanics(t, func() {
		bus.Publish(CurrencyChanged{OldCurrency: "USD", NewCurrency: "NGN"})
	})
	assert.True(t, delivered)
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus(log.Discard())

	var unsubscribe func()
	calls := 0
	unsubscribe = bus.Subscribe(func(CurrencyChanged) {
		calls++
		unsubscribe()
	})

	bus.Publish(CurrencyChanged{})
	bus.Publish(CurrencyChanged{})
	assert.Equal(t, 1, calls)
}

func TestBus_IndependentInstances(t *testing.T) {
	a := NewBus(nil)
	b := NewBus(nil)
	a.Subscribe(func(CurrencyChanged) {})

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, b.Len())
}
