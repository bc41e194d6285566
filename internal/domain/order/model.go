package order

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one row of the append-only audit trail. Entries are never
// edited or removed.
type HistoryEntry struct {
	Status        Status    `db:"status" json:"status"`
	Note          string    `db:"note" json:"note,omitempty"`
	UpdatedByRole string    `db:"updated_by_role" json:"updated_by_role"`
	UpdatedByID   string    `db:"updated_by_id" json:"updated_by_id"`
	Timestamp     time.Time `db:"timestamp" json:"timestamp"`
}

// Logistics is the delivery sub-record of an order.
type Logistics struct {
	Method           *string    `db:"method" json:"method,omitempty"`
	CourierName      *string    `db:"courier_name" json:"courier_name,omitempty"`
	TrackingNumber   *string    `db:"tracking_number" json:"tracking_number,omitempty"`
	ExpectedDelivery *time.Time `db:"expected_delivery" json:"expected_delivery,omitempty"`
	DeliveredAt      *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
}

// LogisticsPatch carries partial logistics updates; nil fields are left
// untouched.
type LogisticsPatch struct {
	Method           *string    `json:"method,omitempty"`
	CourierName      *string    `json:"courier_name,omitempty"`
	TrackingNumber   *string    `json:"tracking_number,omitempty"`
	ExpectedDelivery *time.Time `json:"expected_delivery,omitempty"`
}

func (l *Logistics) apply(p LogisticsPatch) {
	if p.Method != nil {
		l.Method = p.Method
	}
	if p.CourierName != nil {
		l.CourierName = p.CourierName
	}
	if p.TrackingNumber != nil {
		l.TrackingNumber = p.TrackingNumber
	}
	if p.ExpectedDelivery != nil {
		l.ExpectedDelivery = p.ExpectedDelivery
	}
}

// Order maps to the pharmacy_order table plus its order_status_history rows.
// PatientID and PharmacyID are the ownership binding and never change after
// creation.
type Order struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	OrderNumber     string         `db:"order_number" json:"order_number"`
	PrescriptionID  uuid.UUID      `db:"prescription_id" json:"prescription_id"`
	AppointmentID   uuid.UUID      `db:"appointment_id" json:"appointment_id"`
	PatientID       uuid.UUID      `db:"patient_id" json:"patient_id"`
	PharmacyID      uuid.UUID      `db:"pharmacy_id" json:"pharmacy_id"`
	Status          Status         `db:"status" json:"status"`
	StatusHistory   []HistoryEntry `json:"status_history"`
	Logistics       Logistics      `json:"logistics"`
	NotesForPatient *string        `db:"notes_for_patient" json:"notes_for_patient,omitempty"`
	TotalAmount     float64        `db:"total_amount" json:"total_amount"`
	PaymentStatus   string         `db:"payment_status" json:"payment_status"`
	VersionID       int            `db:"version_id" json:"version_id"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// GetVersionID returns the current version.
func (o *Order) GetVersionID() int { return o.VersionID }

// SetVersionID sets the current version.
func (o *Order) SetVersionID(v int) { o.VersionID = v }
