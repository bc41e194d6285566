package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prescripto/prescripto/internal/platform/apperr"
	"github.com/prescripto/prescripto/internal/platform/auth"
)

// Kind identifies what happened upstream of a notification.
type Kind string

const (
	KindOrderStatusChanged Kind = "order_status_changed"
	KindOrderNote          Kind = "order_note"
	KindPharmacyReviewed   Kind = "pharmacy_reviewed"
	KindPharmacyActive     Kind = "pharmacy_active_toggled"
	// Fired by the record-keeping flows outside this core.
	KindLabReportUploaded   Kind = "lab_report_uploaded"
	KindPrescriptionCreated Kind = "prescription_created"
)

// Event describes a completed state change to fan out. IDs travel as strings
// so upstream packages do not need this package's persistence types.
type Event struct {
	Kind            Kind
	PatientID       string
	PharmacyID      string
	OrderID         string
	OrderNumber     string
	Status          string
	Note            string
	AdminInitiated  bool
	Approved        bool
	ModerationNotes string
	Active          bool
}

// Dispatcher persists notifications for the roles affected by an event.
// Delivery is at-most-once: each notification gets a single write attempt and
// a failed write is logged and dropped, never retried and never surfaced to
// the caller of the triggering operation.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt Event) []*Notification
}

type dbDispatcher struct {
	repo Repository
	log  zerolog.Logger
}

func NewDispatcher(repo Repository, log zerolog.Logger) Dispatcher {
	return &dbDispatcher{repo: repo, log: log}
}

var orderStatusTemplates = map[string]struct {
	Title   string
	Message string
}{
	"accepted":   {"Order accepted", "Your pharmacy order has been accepted and will be prepared shortly."},
	"processing": {"Order is being prepared", "Your pharmacy order is being prepared."},
	"ready":      {"Order ready for pickup", "Your pharmacy order is ready for pickup."},
	"shipped":    {"Order on the way", "Your pharmacy order has been shipped."},
	"completed":  {"Order delivered", "Your pharmacy order has been delivered."},
	"rejected":   {"Order could not be fulfilled", "Your pharmacy order could not be fulfilled."},
	"cancelled":  {"Order cancelled", "Your pharmacy order has been cancelled."},
}

func (d *dbDispatcher) Dispatch(ctx context.Context, evt Event) []*Notification {
	var delivered []*Notification
	for _, n := range d.build(evt) {
		if err := d.repo.Create(ctx, n); err != nil {
			d.log.Warn().
				Err(apperr.DependencyDegraded(err)).
				Str("kind", string(evt.Kind)).
				Str("recipient_id", n.RecipientID).
				Msg("notification dispatch failed, dropping")
			continue
		}
		delivered = append(delivered, n)
	}
	return delivered
}

func (d *dbDispatcher) build(evt Event) []*Notification {
	switch evt.Kind {
	case KindOrderStatusChanged:
		tpl, ok := orderStatusTemplates[evt.Status]
		if !ok {
			tpl.Title = "Order updated"
			tpl.Message = fmt.Sprintf("Your pharmacy order status changed to %s.", evt.Status)
		}
		msg := tpl.Message
		if evt.Note != "" {
			msg += fmt.Sprintf("\n\nNote from pharmacy: %s", evt.Note)
		}
		ns := []*Notification{{
			RecipientID:   evt.PatientID,
			RecipientRole: string(auth.RolePatient),
			Title:         tpl.Title,
			Message:       msg,
			Metadata:      orderMetadata(evt),
		}}
		if evt.AdminInitiated {
			ns = append(ns, &Notification{
				RecipientID:   evt.PharmacyID,
				RecipientRole: string(auth.RolePharmacist),
				Title:         "Order updated by admin",
				Message:       fmt.Sprintf("Order %s was moved to %s by an administrator.", evt.OrderNumber, evt.Status),
				Metadata:      orderMetadata(evt),
			})
		}
		return ns

	case KindOrderNote:
		return []*Notification{{
			RecipientID:   evt.PatientID,
			RecipientRole: string(auth.RolePatient),
			Title:         "Order update",
			Message:       fmt.Sprintf("Update on your order: %s", evt.Note),
			Metadata:      orderMetadata(evt),
		}}

	case KindPharmacyReviewed:
		n := &Notification{
			RecipientID:   evt.PharmacyID,
			RecipientRole: string(auth.RolePharmacist),
			Metadata:      map[string]interface{}{"approved": evt.Approved},
		}
		if evt.Approved {
			n.Title = "Pharmacy approved"
			n.Message = "Your pharmacy has been approved and can now fulfill orders."
		} else {
			n.Title = "Pharmacy application rejected"
			n.Message = "Your pharmacy application was rejected."
			if evt.ModerationNotes != "" {
				n.Message += fmt.Sprintf(" Reason: %s", evt.ModerationNotes)
			}
		}
		return []*Notification{n}

	case KindPharmacyActive:
		n := &Notification{
			RecipientID:   evt.PharmacyID,
			RecipientRole: string(auth.RolePharmacist),
			Metadata:      map[string]interface{}{"active": evt.Active},
		}
		if evt.Active {
			n.Title = "Pharmacy activated"
			n.Message = "Your pharmacy is now active and visible to patients."
		} else {
			n.Title = "Pharmacy deactivated"
			n.Message = "Your pharmacy has been deactivated and is hidden from patients."
		}
		return []*Notification{n}

	case KindLabReportUploaded:
		return []*Notification{{
			RecipientID:   evt.PatientID,
			RecipientRole: string(auth.RolePatient),
			Title:         "New lab report",
			Message:       "A new lab report has been added to your records.",
			Metadata:      map[string]interface{}{},
		}}

	case KindPrescriptionCreated:
		return []*Notification{{
			RecipientID:   evt.PatientID,
			RecipientRole: string(auth.RolePatient),
			Title:         "New prescription",
			Message:       "Your doctor has issued a new prescription.",
			Metadata:      map[string]interface{}{},
		}}
	}

	d.log.Warn().Str("kind", string(evt.Kind)).Msg("unknown notification event kind")
	return nil
}

func orderMetadata(evt Event) map[string]interface{} {
	m := map[string]interface{}{
		"order_id":     evt.OrderID,
		"order_number": evt.OrderNumber,
	}
	if evt.Status != "" {
		m["status"] = evt.Status
	}
	return m
}
