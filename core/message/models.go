package message

import (
	"time"

	"github.com/pkg/errors"
)

var ErrMessageNotFound = errors.New("message not found")

// Message is one parent/guardian notice kept in the school's outbox.
// Delivered records whether it was handed to the mail backend; a message that
// could not be handed off stays in the outbox with Delivered=false.
type Message struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"school_id"`
	To        []string  `json:"to" validate:"required,min=1,dive,email"`
	Subject   string    `json:"subject" validate:"required"`
	Body      string    `json:"body" validate:"required"`
	SentAt    time.Time `json:"sent_at"`
	Delivered bool      `json:"delivered"`
}

// NewMessage contains information needed to compose a Message.
type NewMessage struct {
	To      []string `json:"to" validate:"required,min=1,dive,email"`
	Subject string   `json:"subject" validate:"required"`
	Body    string   `json:"body" validate:"required"`
}
