package consultation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prescripto/prescripto/internal/platform/apperr"
	"github.com/prescripto/prescripto/internal/platform/auth"
	"github.com/prescripto/prescripto/internal/platform/lock"
)

// maxConflictRetries bounds how often a lost version race is retried before
// the conflict is surfaced to the caller.
const maxConflictRetries = 3

// Policy captures the configurable edges of the lifecycle.
type Policy struct {
	RoomCodePrefix string
	// AllowCompleteCancelled keeps complete working on appointments whose
	// cancelled flag is set, matching the historical behavior where a doctor
	// could salvage a cancelled slot for record keeping.
	AllowCompleteCancelled bool
}

type Service struct {
	repo   Repository
	locker lock.Locker
	policy Policy
}

func NewService(repo Repository, locker lock.Locker, policy Policy) *Service {
	if policy.RoomCodePrefix == "" {
		policy.RoomCodePrefix = "prescripto"
	}
	return &Service{repo: repo, locker: locker, policy: policy}
}

// CompleteInput carries the narrative fields stored at completion.
type CompleteInput struct {
	Summary          string     `json:"summary"`
	NotesForPatient  string     `json:"notes_for_patient"`
	NotesForInternal string     `json:"notes_for_internal"`
	FollowUpDate     *time.Time `json:"follow_up_date"`
}

// EnsureScheduled assigns a room token and moves the consultation to
// scheduled. Idempotent: once a token exists the call returns the current
// state untouched, never regressing status or reissuing the token.
func (s *Service) EnsureScheduled(ctx context.Context, actor auth.Actor, appointmentID uuid.UUID) (*View, error) {
	return s.mutate(ctx, appointmentID, func(a *Appointment) (bool, error) {
		if err := auth.RequireOwner(actor, auth.RoleDoctor, a.DoctorID.String()); err != nil {
			return false, err
		}
		if a.Consultation.RoomToken != "" {
			return false, nil
		}
		token, err := s.newRoomToken()
		if err != nil {
			return false, err
		}
		a.Consultation.RoomToken = token
		if a.Consultation.Status == StatusNotScheduled {
			a.Consultation.Status = StatusScheduled
		}
		return true, nil
	})
}

// Start moves the consultation to live. If no room token exists yet one is
// generated first, so a client may call start without a prior
// EnsureScheduled. startedAt is stamped once; repeated calls are no-ops.
func (s *Service) Start(ctx context.Context, actor auth.Actor, appointmentID uuid.UUID) (*View, error) {
	return s.mutate(ctx, appointmentID, func(a *Appointment) (bool, error) {
		if err := auth.RequireOwner(actor, auth.RoleDoctor, a.DoctorID.String()); err != nil {
			return false, err
		}
		if a.Consultation.Status.Terminal() {
			return false, apperr.InvalidTransition(string(a.Consultation.Status), string(StatusLive))
		}

		changed := false
		if a.Consultation.RoomToken == "" {
			token, err := s.newRoomToken()
			if err != nil {
				return false, err
			}
			a.Consultation.RoomToken = token
			changed = true
		}
		if a.Consultation.Status != StatusLive {
			a.Consultation.Status = StatusLive
			changed = true
		}
		if a.Consultation.StartedAt == nil {
			now := time.Now().UTC()
			a.Consultation.StartedAt = &now
			changed = true
		}
		return changed, nil
	})
}

// Complete finishes the consultation: terminal status, endedAt stamp,
// narrative fields, and isCompleted on the owning appointment. Summary is
// required. This is the only operation that sets isCompleted.
func (s *Service) Complete(ctx context.Context, actor auth.Actor, appointmentID uuid.UUID, in CompleteInput) (*View, error) {
	if strings.TrimSpace(in.Summary) == "" {
		return nil, apperr.Validation("summary is required to complete a consultation")
	}

	return s.mutate(ctx, appointmentID, func(a *Appointment) (bool, error) {
		if err := auth.RequireOwner(actor, auth.RoleDoctor, a.DoctorID.String()); err != nil {
			return false, err
		}
		if a.Consultation.Status.Terminal() {
			return false, apperr.InvalidTransition(string(a.Consultation.Status), string(StatusCompleted))
		}
		if a.Cancelled && !s.policy.AllowCompleteCancelled {
			return false, apperr.Validation("appointment is cancelled and cannot be completed")
		}

		now := time.Now().UTC()
		a.Consultation.Status = StatusCompleted
		a.Consultation.EndedAt = &now
		a.Consultation.Summary = &in.Summary
		if in.NotesForPatient != "" {
			a.Consultation.NotesForPatient = &in.NotesForPatient
		}
		if in.NotesForInternal != "" {
			a.Consultation.NotesForInternal = &in.NotesForInternal
		}
		if in.FollowUpDate != nil {
			a.Consultation.FollowUpDate = in.FollowUpDate
		}
		a.IsCompleted = true
		return true, nil
	})
}

// Read returns the consultation projection to either participant. Internal
// notes are visible to the owning doctor only.
func (s *Service) Read(ctx context.Context, actor auth.Actor, appointmentID uuid.UUID) (*View, error) {
	a, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireParticipant(actor, a.DoctorID.String(), a.PatientID.String()); err != nil {
		return nil, err
	}
	isDoctor := actor.Is(auth.RoleDoctor) && auth.SameID(actor.ID, a.DoctorID.String())
	return a.view(isDoctor), nil
}

// mutate runs fn against a freshly loaded appointment under the per-document
// lock and persists the result with the version check. Authorization and
// validation failures inside fn abort before any write, so a denial leaves
// the row untouched.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(*Appointment) (bool, error)) (*View, error) {
	var result *View
	err := s.locker.WithLock(ctx, "appointment:"+id.String(), func(ctx context.Context) error {
		for attempt := 0; ; attempt++ {
			a, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return err
			}

			changed, err := fn(a)
			if err != nil {
				return err
			}
			if changed {
				if err := s.repo.Update(ctx, a); err != nil {
					if apperr.KindOf(err) == apperr.KindConflict && attempt < maxConflictRetries {
						continue
					}
					return err
				}
			}
			result = a.view(true)
			return nil
		}
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, apperr.Conflict("appointment is being updated, try again")
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) newRoomToken() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", apperr.Internal(err)
	}
	return fmt.Sprintf("%s-%s", s.policy.RoomCodePrefix, hex.EncodeToString(buf)), nil
}
