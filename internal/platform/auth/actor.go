package auth

import "strings"

// Role is the closed set of identities the platform recognizes.
type Role string

const (
	RolePatient    Role = "patient"
	RoleDoctor     Role = "doctor"
	RolePharmacist Role = "pharmacist"
	RoleAdmin      Role = "admin"
)

// ParseRole returns the Role for a claim value, false if unrecognized.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient, true
	case RoleDoctor:
		return RoleDoctor, true
	case RolePharmacist:
		return RolePharmacist, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	Role Role
	ID   string
}

func (a Actor) Is(role Role) bool { return a.Role == role }

// NormalizeID canonicalizes an identifier for comparison. Ids arrive from
// tokens, path params, and stored rows in varying representations; ownership
// checks must compare canonical forms, never raw values.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// SameID reports whether two identifiers refer to the same identity.
func SameID(a, b string) bool {
	na, nb := NormalizeID(a), NormalizeID(b)
	return na != "" && na == nb
}
