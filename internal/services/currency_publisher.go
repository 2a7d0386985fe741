package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"budgetup/internal/amqp"
	"budgetup/internal/log"
	"budgetup/internal/notify"
)

// Publisher delivers currency change messages outside the process.
type Publisher interface {
	PublishCurrencyChanged(ctx context.Context, msg *amqp.CurrencyChangedMessage) error
}

var _ Publisher = (*amqp.Client)(nil)

// CurrencyPublisher forwards in-process currency change events to a
// Publisher. Delivery failures are logged and never reach the code that
// changed the currency; the preference is already saved locally.
type CurrencyPublisher struct {
	publisher Publisher
	logger    *log.Logger
	timeout   time.Duration

	mu          sync.Mutex
	unsubscribe func()

	published atomic.Int64
	failed    atomic.Int64
}

// NewCurrencyPublisher creates a publisher. A nil Publisher is allowed and
// turns every event into a logged no-op.
func NewCurrencyPublisher(publisher Publisher, logger *log.Logger) *CurrencyPublisher {
	return &CurrencyPublisher{
		publisher: publisher,
		logger:    log.OrDefault(logger).WithComponent(log.ComponentNotify),
		timeout:   10 * time.Second,
	}
}

// Attach subscribes to bus. Calling Attach again moves the subscription.
func (p *CurrencyPublisher) Attach(bus *notify.Bus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	p.unsubscribe = bus.Subscribe(p.Handle)
}

// Handle publishes evt.
func (p *CurrencyPublisher) Handle(evt notify.CurrencyChanged) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if p.publisher == nil {
		p.logger.WarnContext(ctx, "AMQP client not available, skipping currency change message",
			log.FieldNewCurr, evt.NewCurrency)
		return
	}

	if err := p.publisher.PublishCurrencyChanged(ctx, amqp.NewCurrencyChangedMessage(evt)); err != nil {
		p.failed.Add(1)
		p.logger.ErrorContext(ctx, "Failed to publish currency change message",
			log.FieldOldCurr, evt.OldCurrency,
			log.FieldNewCurr, evt.NewCurrency,
			log.FieldError, err)
		return
	}
	p.published.Add(1)
}

// Stats returns the number of delivered and failed messages.
func (p *CurrencyPublisher) Stats() (published, failed int64) {
	return p.published.Load(), p.failed.Load()
}

// Close detaches from the bus and closes the publisher when it can be closed.
func (p *CurrencyPublisher) Close() error {
	p.mu.Lock()
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
	p.mu.Unlock()

	if c, ok := p.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
