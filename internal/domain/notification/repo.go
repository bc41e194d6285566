package notification

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]*Notification, int, error)
	// MarkRead flips the read flag for a notification owned by recipientID.
	// A notification belonging to someone else is reported as not found.
	MarkRead(ctx context.Context, id uuid.UUID, recipientID string) (*Notification, error)
}
