package order

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// Create exists for the seed flow; checkout lives outside this subsystem.
	Create(ctx context.Context, o *Order) error
	// UpdateWithHistory persists the order row and appends the history entry
	// in a single transaction, guarded by version_id. The pair is atomic: a
	// status change without its history row never becomes visible. A lost
	// version race surfaces as apperr.Conflict.
	UpdateWithHistory(ctx context.Context, o *Order, entry HistoryEntry) error
	ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, status string, limit, offset int) ([]*Order, int, error)
	History(ctx context.Context, orderID uuid.UUID) ([]HistoryEntry, error)
}
