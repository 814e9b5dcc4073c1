package domain

import "time"

// SentMessage is one message id returned by a successful send.
type SentMessage struct {
	ID         string    `json:"id"`
	Recipients []string  `json:"recipients"`
	Sender     string    `json:"sender,omitempty"`
	Test       bool      `json:"test"`
	SentAt     time.Time `json:"sent_at"`
}
