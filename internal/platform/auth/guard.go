package auth

import (
	"fmt"

	"github.com/prescripto/prescripto/internal/platform/apperr"
)

// The guard functions below are the single authorization point for resource
// ownership. They never mutate state; a denial guarantees zero side effects
// because services call them before touching the entity.

// RequireOwner allows the actor only when it holds the given role and its id
// matches the resource owner's id. Admin is not implicitly granted here;
// admin-scoped endpoints use RequireRole at the route and skip the ownership
// check explicitly.
func RequireOwner(actor Actor, role Role, ownerID string) error {
	if !actor.Is(role) {
		return apperr.Unauthorized(fmt.Sprintf("%s role required", role))
	}
	if !SameID(actor.ID, ownerID) {
		return apperr.Unauthorized("not the owner of this resource")
	}
	return nil
}

// RequireParticipant allows the actor when its id matches any of the listed
// participant ids, regardless of role. Used for read paths where both sides
// of a consultation may see the record.
func RequireParticipant(actor Actor, participantIDs ...string) error {
	for _, id := range participantIDs {
		if SameID(actor.ID, id) {
			return nil
		}
	}
	return apperr.Unauthorized("not a participant of this resource")
}

// RequireOwnerOrAdmin allows the owning actor or any admin. Admin passing
// here still goes through the same downstream validation as the owner; the
// bypass covers ownership only.
func RequireOwnerOrAdmin(actor Actor, role Role, ownerID string) error {
	if actor.Is(RoleAdmin) {
		return nil
	}
	return RequireOwner(actor, role, ownerID)
}
