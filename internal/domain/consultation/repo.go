package consultation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// Create exists for the seed flow; booking itself lives outside this
	// subsystem.
	Create(ctx context.Context, a *Appointment) error
	// Update persists the appointment only when its version_id still matches
	// the loaded row. A lost race surfaces as apperr.Conflict and the caller
	// re-reads and retries.
	Update(ctx context.Context, a *Appointment) error
}
