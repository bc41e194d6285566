package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification maps to the notification table. Immutable once written except
// for the read-state fields, and created only by the Dispatcher.
type Notification struct {
	ID            uuid.UUID              `db:"id" json:"id"`
	RecipientID   string                 `db:"recipient_id" json:"recipient_id"`
	RecipientRole string                 `db:"recipient_role" json:"recipient_role"`
	Title         string                 `db:"title" json:"title"`
	Message       string                 `db:"message" json:"message"`
	Metadata      map[string]interface{} `db:"metadata" json:"metadata,omitempty"`
	IsRead        bool                   `db:"is_read" json:"is_read"`
	ReadAt        *time.Time             `db:"read_at" json:"read_at,omitempty"`
	CreatedAt     time.Time              `db:"created_at" json:"created_at"`
}
