package message

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campus/core"
)

// Message types
const (
	TypeAnnounce = "announce"
	TypeDirect   = "direct"
)

// Boxes
const (
	BoxInbox = "inbox"
	BoxSent  = "sent"
)

type Message struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	SenderID   string    `json:"senderId"`
	Recipients []string  `json:"recipients"`
	CreatedAt  time.Time `json:"createdAt"`
	ReadBy     []string  `json:"readBy"`
	Type       string    `json:"type"`
}

func (m Message) IsReadBy(userID string) bool {
	return core.ContainsString(m.ReadBy, userID)
}

func (m Message) Involves(userID string) bool {
	return m.SenderID == userID || core.ContainsString(m.Recipients, userID)
}

type QueryFilter struct {
	Box string `query:"type"`
}

// SendRequest is the payload of a new Message.
type SendRequest struct {
	Title      string   `json:"title" validate:"required,notblank"`
	Body       string   `json:"body" validate:"required,notblank"`
	Recipients []string `json:"recipients" validate:"required,min=1,dive,required,notblank"`
	Type       string   `json:"type"`
}

func (sr *SendRequest) Validate(validate *validator.Validate) error {
	sr.Title = core.CleanString(sr.Title)
	sr.Body = core.CleanString(sr.Body)
	sr.Type = core.CleanString(sr.Type, true /* lower */)
	if sr.Type == "" {
		sr.Type = TypeDirect
	}

	// dedup recipients, keeping order
	recipients := make([]string, 0, len(sr.Recipients))
	for _, r := range sr.Recipients {
		r = core.CleanString(r)
		if !core.ContainsString(recipients, r) {
			recipients = append(recipients, r)
		}
	}
	sr.Recipients = recipients

	return validate.Struct(sr)
}
