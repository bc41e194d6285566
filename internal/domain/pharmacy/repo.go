package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists pharmacy accounts. Update is version-checked and
// returns apperr.Conflict when the row changed underneath the caller.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	Create(ctx context.Context, p *Pharmacy) error
	Update(ctx context.Context, p *Pharmacy) error
	List(ctx context.Context, approved *bool, limit, offset int) ([]*Pharmacy, int, error)
}
