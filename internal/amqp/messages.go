package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"budgetup/internal/core"
	"budgetup/internal/notify"
)

var ErrMalformedMessage = errors.New("malformed currency change message")

// CurrencyChangedMessage announces that the user's display currency changed.
// The worker reloads the store itself, so the message carries only the pair.
type CurrencyChangedMessage struct {
	OldCurrency core.Code `json:"oldCurrency"`
	NewCurrency core.Code `json:"newCurrency"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewCurrencyChangedMessage builds a message from a bus event.
func NewCurrencyChangedMessage(evt notify.CurrencyChanged) *CurrencyChangedMessage {
	return &CurrencyChangedMessage{
		OldCurrency: evt.OldCurrency,
		NewCurrency: evt.NewCurrency,
		Timestamp:   time.Now(),
	}
}

// Event converts the message back to the in-process event.
func (m *CurrencyChangedMessage) Event() notify.CurrencyChanged {
	return notify.CurrencyChanged{OldCurrency: m.OldCurrency, NewCurrency: m.NewCurrency}
}

// ToJSON converts the message to JSON bytes
func (m *CurrencyChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CurrencyChangedMessageFromJSON decodes a message. A body without a new
// currency is rejected.
func CurrencyChangedMessageFromJSON(data []byte) (*CurrencyChangedMessage, error) {
	var msg CurrencyChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.NewCurrency == "" {
		return nil, ErrMalformedMessage
	}
	return &msg, nil
}
