package publishers

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventTypeMessageSent marks events emitted after a successful send.
const EventTypeMessageSent = "message.sent"

// Event represents the payload published downstream.
type Event struct {
	Type       string          `json:"type"`
	MessageIDs []string        `json:"messages_id"`
	Recipients []string        `json:"recipients"`
	Sender     string          `json:"sender,omitempty"`
	Test       bool            `json:"test"`
	Parts      int             `json:"parts"`
	Price      decimal.Decimal `json:"price"`
	Balance    decimal.Decimal `json:"balance"`
	SentAt     time.Time       `json:"sent_at"`
}

// NewSentEvent constructs a message.sent Event.
func NewSentEvent(ids, recipients []string, sender string, test bool, parts int, price, balance decimal.Decimal) Event {
	return Event{
		Type:       EventTypeMessageSent,
		MessageIDs: ids,
		Recipients: recipients,
		Sender:     sender,
		Test:       test,
		Parts:      parts,
		Price:      price,
		Balance:    balance,
		SentAt:     time.Now().UTC(),
	}
}

// attributes returns the routing attributes attached by queue publishers.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{"event_type": e.Type}
	if e.Sender != "" {
		attrs["sender"] = e.Sender
	}
	return attrs
}
