package model

import (
	"time"

	"github.com/google/uuid"
)

// Delivery is a flash message queued for a session from outside a request,
// e.g. by the CLI.
type Delivery struct {
	ID          uuid.UUID `json:"id"`
	SessionID   string    `json:"session_id"`
	Category    Category  `json:"category"`
	CSSOverride string    `json:"css_override,omitempty"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDelivery creates a Delivery addressed to sessionID.
func NewDelivery(sessionID string, category Category, content string) Delivery {
	return Delivery{
		ID:        uuid.New(),
		SessionID: sessionID,
		Category:  category,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
