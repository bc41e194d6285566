package pharmacy

import (
	"context"
	"errors"
	"strings"
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

// ReviewInput carries the admin moderation verdict. Notes are optional and
// forwarded to the pharmacy on rejection.
type ReviewInput struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

// Review applies the admin verdict. Approval activates the account in the
// same write; rejection deactivates it and records the moderation notes.
func (s *Service) Review(ctx context.Context, actor auth.Actor, id uuid.UUID, in ReviewInput) (*Pharmacy, error) {
	if !actor.Is(auth.RoleAdmin) {
		return nil, apperr.Unauthorized("admin role required")
	}
	in.Notes = strings.TrimSpace(in.Notes)

	p, err := s.mutate(ctx, id, func(p *Pharmacy) (bool, error) {
		p.IsApproved = in.Approve
		p.IsActive = in.Approve
		if in.Approve {
			if p.ApprovedAt == nil {
				now := time.Now().UTC()
				p.ApprovedAt = &now
			}
		} else {
			p.ApprovedAt = nil
		}
		if in.Notes != "" {
			p.ModerationNotes = &in.Notes
		} else {
			p.ModerationNotes = nil
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, notification.Event{
		Kind:            notification.KindPharmacyReviewed,
		PharmacyID:      p.ID.String(),
		Approved:        in.Approve,
		ModerationNotes: in.Notes,
	})
	return p, nil
}

// SetActive toggles the account without touching the approval verdict. An
// unapproved pharmacy cannot be activated.
func (s *Service) SetActive(ctx context.Context, actor auth.Actor, id uuid.UUID, active bool) (*Pharmacy, error) {
	if !actor.Is(auth.RoleAdmin) {
		return nil, apperr.Unauthorized("admin role required")
	}

	p, err := s.mutate(ctx, id, func(p *Pharmacy) (bool, error) {
		if active && !p.IsApproved {
			return false, apperr.Validation("pharmacy must be approved before activation")
		}
		if p.IsActive == active {
			return false, nil
		}
		p.IsActive = active
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, notification.Event{
		Kind:       notification.KindPharmacyActive,
		PharmacyID: p.ID.String(),
		Active:     active,
	})
	return p, nil
}

func (s *Service) List(ctx context.Context, actor auth.Actor, approved *bool, limit, offset int) ([]*Pharmacy, int, error) {
	if !actor.Is(auth.RoleAdmin) {
		return nil, 0, apperr.Unauthorized("admin role required")
	}
	return s.repo.List(ctx, approved, limit, offset)
}

// mutate runs fn on the locked, freshest copy of the pharmacy and writes it
// back under the version check when fn reports a change, retrying lost races
// a bounded number of times. An error from fn leaves the row untouched.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(*Pharmacy) (bool, error)) (*Pharmacy, error) {
	var result *Pharmacy
	err := s.locker.WithLock(ctx, "pharmacy:"+id.String(), func(ctx context.Context) error {
		for attempt := 0; ; attempt++ {
			p, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			changed, err := fn(p)
			if err != nil {
				return err
			}
			if !changed {
				result = p
				return nil
			}
			if err := s.repo.Update(ctx, p); err != nil {
				if apperr.KindOf(err) == apperr.KindConflict && attempt < maxConflictRetries {
					continue
				}
				return err
			}
			result = p
			return nil
		}
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, apperr.Conflict("pharmacy is being updated, try again")
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
