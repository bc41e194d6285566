package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Pharmacy is a dispensing partner account. It starts unapproved and
// inactive; the admin review flow flips both flags together.
type Pharmacy struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	OwnerName       string     `db:"owner_name" json:"owner_name"`
	Phone           string     `db:"phone" json:"phone"`
	LicenseNumber   string     `db:"license_number" json:"license_number"`
	IsApproved      bool       `db:"is_approved" json:"is_approved"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	ModerationNotes *string    `db:"moderation_notes" json:"moderation_notes,omitempty"`
	ApprovedAt      *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	VersionID       int        `db:"version_id" json:"version_id"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

func (p *Pharmacy) GetVersionID() int  { return p.VersionID }
func (p *Pharmacy) SetVersionID(v int) { p.VersionID = v }
