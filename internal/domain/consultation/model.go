package consultation

import (
	"time"

	"github.com/google/uuid"
)

// Consultation is the video-visit sub-record embedded in an appointment. It
// is never addressed on its own; all mutation goes through the Service.
type Consultation struct {
	RoomToken        string     `db:"room_token" json:"room_token,omitempty"`
	Status           Status     `db:"consultation_status" json:"status"`
	StartedAt        *time.Time `db:"started_at" json:"started_at,omitempty"`
	EndedAt          *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	Summary          *string    `db:"summary" json:"summary,omitempty"`
	FollowUpDate     *time.Time `db:"follow_up_date" json:"follow_up_date,omitempty"`
	NotesForPatient  *string    `db:"notes_for_patient" json:"notes_for_patient,omitempty"`
	NotesForInternal *string    `db:"notes_for_internal" json:"notes_for_internal,omitempty"`
}

// Appointment maps to the appointment table.
type Appointment struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	PatientID       uuid.UUID    `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID    `db:"doctor_id" json:"doctor_id"`
	SlotDate        time.Time    `db:"slot_date" json:"slot_date"`
	SlotTime        string       `db:"slot_time" json:"slot_time"`
	Amount          float64      `db:"amount" json:"amount"`
	Cancelled       bool         `db:"cancelled" json:"cancelled"`
	Paid            bool         `db:"paid" json:"paid"`
	IsCompleted     bool         `db:"is_completed" json:"is_completed"`
	PrescriptionID  *uuid.UUID   `db:"prescription_id" json:"prescription_id,omitempty"`
	PharmacyOrderID *uuid.UUID   `db:"pharmacy_order_id" json:"pharmacy_order_id,omitempty"`
	Consultation    Consultation `json:"consultation"`
	VersionID       int          `db:"version_id" json:"version_id"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// GetVersionID returns the current version.
func (a *Appointment) GetVersionID() int { return a.VersionID }

// SetVersionID sets the current version.
func (a *Appointment) SetVersionID(v int) { a.VersionID = v }

// View is the projection handed to participants. Internal notes are included
// only when the reader is the owning doctor.
type View struct {
	AppointmentID    uuid.UUID  `json:"appointment_id"`
	RoomToken        string     `json:"room_token,omitempty"`
	Status           Status     `json:"status"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	Summary          *string    `json:"summary,omitempty"`
	FollowUpDate     *time.Time `json:"follow_up_date,omitempty"`
	NotesForPatient  *string    `json:"notes_for_patient,omitempty"`
	NotesForInternal *string    `json:"notes_for_internal,omitempty"`
	Cancelled        bool       `json:"cancelled"`
	IsCompleted      bool       `json:"is_completed"`
}

func (a *Appointment) view(includeInternal bool) *View {
	v := &View{
		AppointmentID:   a.ID,
		RoomToken:       a.Consultation.RoomToken,
		Status:          a.Consultation.Status,
		StartedAt:       a.Consultation.StartedAt,
		EndedAt:         a.Consultation.EndedAt,
		Summary:         a.Consultation.Summary,
		FollowUpDate:    a.Consultation.FollowUpDate,
		NotesForPatient: a.Consultation.NotesForPatient,
		Cancelled:       a.Cancelled,
		IsCompleted:     a.IsCompleted,
	}
	if includeInternal {
		v.NotesForInternal = a.Consultation.NotesForInternal
	}
	return v
}
