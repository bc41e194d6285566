package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/prescripto/prescripto/internal/platform/auth"
)

// Service exposes the recipient-facing read APIs. Creation goes through the
// Dispatcher only.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the actor's own notifications, newest first.
func (s *Service) List(ctx context.Context, actor auth.Actor, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByRecipient(ctx, auth.NormalizeID(actor.ID), unreadOnly, limit, offset)
}

// MarkRead marks one of the actor's notifications as read. The recipient
// scoping happens in the repository so another actor's notification behaves
// as if it did not exist.
func (s *Service) MarkRead(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Notification, error) {
	return s.repo.MarkRead(ctx, id, auth.NormalizeID(actor.ID))
}
