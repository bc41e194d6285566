package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/prescripto/prescripto/internal/domain/notification"
	"github.com/prescripto/prescripto/internal/platform/apperr"
	"github.com/prescripto/prescripto/internal/platform/auth"
	"github.com/prescripto/prescripto/internal/platform/lock"
)

const maxConflictRetries = 3

type Service struct {
	repo       Repository
	locker     lock.Locker
	dispatcher notification.Dispatcher
}

func NewService(repo Repository, locker lock.Locker, dispatcher notification.Dispatcher) *Service {
	return &Service{repo: repo, locker: locker, dispatcher: dispatcher}
}

// TransitionInput is the request side of a status update.
type TransitionInput struct {
	Target    string          `json:"status"`
	Note      string          `json:"note"`
	Logistics *LogisticsPatch `json:"logistics"`
}

// Transition drives the fulfillment state machine. The owning pharmacist may
// call it directly; an admin bypasses the ownership check but is held to the
// same transition table. When the target equals the current status the call
// is a note-only annotation: history grows, status does not move. A supplied
// note is also mirrored onto the order's patient-facing notes field.
//
// Guard and table validation run before any write, so a rejected call leaves
// the order byte-for-byte unchanged. The status change and its history entry
// are committed as one transaction; notification fan-out happens after the
// commit and cannot fail the operation.
func (s *Service) Transition(ctx context.Context, actor auth.Actor, orderID uuid.UUID, in TransitionInput) (*Order, error) {
	target, ok := ParseStatus(in.Target)
	if !ok {
		return nil, apperr.Validation("unknown status: " + in.Target)
	}

	var result *Order
	var noteOnly bool
	err := s.locker.WithLock(ctx, "order:"+orderID.String(), func(ctx context.Context) error {
		for attempt := 0; ; attempt++ {
			o, err := s.repo.GetByID(ctx, orderID)
			if err != nil {
				return err
			}
			if err := auth.RequireOwnerOrAdmin(actor, auth.RolePharmacist, o.PharmacyID.String()); err != nil {
				return err
			}

			noteOnly = target == o.Status
			if !noteOnly && !CanTransition(o.Status, target) {
				return apperr.InvalidTransition(string(o.Status), string(target))
			}

			// Same status, nothing to annotate: pure no-op, no history row.
			if noteOnly && in.Note == "" && in.Logistics == nil {
				result = o
				return nil
			}

			if !noteOnly {
				o.Status = target
			}
			if in.Note != "" {
				note := in.Note
				o.NotesForPatient = &note
			}
			if in.Logistics != nil {
				o.Logistics.apply(*in.Logistics)
			}
			if !noteOnly && target == StatusCompleted {
				now := time.Now().UTC()
				o.Logistics.DeliveredAt = &now
			}

			entry := HistoryEntry{
				Status:        o.Status,
				Note:          in.Note,
				UpdatedByRole: string(actor.Role),
				UpdatedByID:   auth.NormalizeID(actor.ID),
				Timestamp:     time.Now().UTC(),
			}
			if err := s.repo.UpdateWithHistory(ctx, o, entry); err != nil {
				if apperr.KindOf(err) == apperr.KindConflict && attempt < maxConflictRetries {
					continue
				}
				return err
			}
			result = o
			return nil
		}
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, apperr.Conflict("order is being updated, try again")
	}
	if err != nil {
		return nil, err
	}

	s.notify(ctx, actor, result, target, in.Note, noteOnly)
	return result, nil
}

// notify fans out after a committed update. Note-only annotations notify the
// patient only when a note was actually supplied.
func (s *Service) notify(ctx context.Context, actor auth.Actor, o *Order, target Status, note string, noteOnly bool) {
	if noteOnly {
		if note == "" {
			return
		}
		s.dispatcher.Dispatch(ctx, notification.Event{
			Kind:        notification.KindOrderNote,
			PatientID:   o.PatientID.String(),
			PharmacyID:  o.PharmacyID.String(),
			OrderID:     o.ID.String(),
			OrderNumber: o.OrderNumber,
			Note:        note,
		})
		return
	}
	s.dispatcher.Dispatch(ctx, notification.Event{
		Kind:           notification.KindOrderStatusChanged,
		PatientID:      o.PatientID.String(),
		PharmacyID:     o.PharmacyID.String(),
		OrderID:        o.ID.String(),
		OrderNumber:    o.OrderNumber,
		Status:         string(target),
		Note:           note,
		AdminInitiated: actor.Is(auth.RoleAdmin),
	})
}

// Get returns an order with its history to the owning pharmacist or an admin.
func (s *Service) Get(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdmin(actor, auth.RolePharmacist, o.PharmacyID.String()); err != nil {
		return nil, err
	}
	return o, nil
}

// Timeline returns the append-only status history in timestamp order.
func (s *Service) Timeline(ctx context.Context, actor auth.Actor, orderID uuid.UUID) ([]HistoryEntry, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdmin(actor, auth.RolePharmacist, o.PharmacyID.String()); err != nil {
		return nil, err
	}
	return o.StatusHistory, nil
}

// ListForPharmacist returns the calling pharmacist's own orders, optionally
// filtered by status.
func (s *Service) ListForPharmacist(ctx context.Context, actor auth.Actor, statusFilter string, limit, offset int) ([]*Order, int, error) {
	if !actor.Is(auth.RolePharmacist) {
		return nil, 0, apperr.Unauthorized("pharmacist role required")
	}
	pharmacyID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, 0, apperr.Unauthorized("actor is not bound to a pharmacy")
	}
	if statusFilter != "" {
		if _, ok := ParseStatus(statusFilter); !ok {
			return nil, 0, apperr.Validation("unknown status: " + statusFilter)
		}
	}
	return s.repo.ListByPharmacy(ctx, pharmacyID, statusFilter, limit, offset)
}
