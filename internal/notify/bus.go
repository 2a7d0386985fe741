// Package notify broadcasts active-currency changes to independent listeners.
package notify

import (
	"sync"

	"budgetup/internal/core"
	"budgetup/internal/log"
)

// CurrencyChanged is published after every successful set of the active
// display currency, including one that keeps the same code.
type CurrencyChanged struct {
	OldCurrency core.Code `json:"oldCurrency"`
	NewCurrency core.Code `json:"newCurrency"`
}

// Handler receives published events.
type Handler func(CurrencyChanged)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a synchronous publish/subscribe hub. Handlers run on the publishing
// goroutine in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
	logger *log.Logger
}

func NewBus(logger *log.Logger) *Bus {
	return &Bus{logger: log.OrDefault(logger).WithComponent(log.ComponentNotify)}
}

// Subscribe registers h and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: h})
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

// Publish delivers evt to every current subscriber. A panicking handler is
// logged and does not stop delivery to the rest.
func (b *Bus) Publish(evt CurrencyChanged) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	b.logger.Debug("Publishing currency change",
		log.FieldOldCurr, string(evt.OldCurrency),
		log.FieldNewCurr, string(evt.NewCurrency),
		log.FieldCount, len(subs))

	for _, s := range subs {
		b.deliver(s, evt)
	}
}

func (b *Bus) deliver(s subscription, evt CurrencyChanged) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Currency change handler panicked",
				"subscription", s.id,
				"panic", r)
		}
	}()
	s.handler(evt)
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
