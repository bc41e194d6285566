package integration

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prescripto/prescripto/internal/domain/consultation"
	"github.com/prescripto/prescripto/internal/domain/notification"
	"github.com/prescripto/prescripto/internal/domain/order"
	"github.com/prescripto/prescripto/internal/platform/apperr"
	"github.com/prescripto/prescripto/internal/platform/auth"
	"github.com/prescripto/prescripto/internal/platform/lock"
)

func consultationService() *consultation.Service {
	repo := consultation.NewRepoPG(globalDB.Pool)
	return consultation.NewService(repo, lock.NewStriped(), consultation.Policy{
		RoomCodePrefix:         "prescripto",
		AllowCompleteCancelled: true,
	})
}

func orderService() *order.Service {
	notifRepo := notification.NewRepoPG(globalDB.Pool)
	dispatcher := notification.NewDispatcher(notifRepo, zerolog.Nop())
	return order.NewService(order.NewRepoPG(globalDB.Pool), lock.NewStriped(), dispatcher)
}

func TestConsultationLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := consultationService()

	patientID, doctorID := uuid.New(), uuid.New()
	appt := createTestAppointment(t, ctx, patientID, doctorID)
	doctor := auth.Actor{Role: auth.RoleDoctor, ID: doctorID.String()}

	scheduled, err := svc.EnsureScheduled(ctx, doctor, appt.ID)
	if err != nil {
		t.Fatalf("ensure scheduled: %v", err)
	}
	if scheduled.Status != consultation.StatusScheduled {
		t.Fatalf("expected scheduled, got %s", scheduled.Status)
	}
	if !strings.HasPrefix(scheduled.RoomToken, "prescripto-") {
		t.Fatalf("unexpected room token: %q", scheduled.RoomToken)
	}

	again, err := svc.EnsureScheduled(ctx, doctor, appt.ID)
	if err != nil {
		t.Fatalf("repeat ensure: %v", err)
	}
	if again.RoomToken != scheduled.RoomToken {
		t.Fatal("room token must be stable across repeated calls")
	}

	live, err := svc.Start(ctx, doctor, appt.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if live.Status != consultation.StatusLive || live.StartedAt == nil {
		t.Fatalf("expected live with started_at, got %+v", live)
	}

	done, err := svc.Complete(ctx, doctor, appt.ID, consultation.CompleteInput{
		Summary:          "Routine follow-up, all vitals normal.",
		NotesForInternal: "check renal panel next visit",
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != consultation.StatusCompleted || !done.IsCompleted || done.EndedAt == nil {
		t.Fatalf("unexpected final state: %+v", done)
	}

	// Patient reads the record but never the internal notes.
	patient := auth.Actor{Role: auth.RolePatient, ID: patientID.String()}
	view, err := svc.Read(ctx, patient, appt.ID)
	if err != nil {
		t.Fatalf("patient read: %v", err)
	}
	if view.NotesForInternal != nil {
		t.Fatal("internal notes leaked to patient")
	}

	// A completed consultation cannot be restarted.
	if _, err := svc.Start(ctx, doctor, appt.ID); apperr.KindOf(err) != apperr.KindInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestOrderTransitionsPersistHistoryAndNotifications(t *testing.T) {
	ctx := context.Background()
	svc := orderService()

	patientID, doctorID := uuid.New(), uuid.New()
	appt := createTestAppointment(t, ctx, patientID, doctorID)
	ph := createTestPharmacy(t, ctx)
	o := createTestOrder(t, ctx, appt, ph.ID)

	pharmacist := auth.Actor{Role: auth.RolePharmacist, ID: ph.ID.String()}

	for i, target := range []string{"accepted", "processing", "ready", "completed"} {
		updated, err := svc.Transition(ctx, pharmacist, o.ID, order.TransitionInput{Target: target})
		if err != nil {
			t.Fatalf("hop to %s: %v", target, err)
		}
		if len(updated.StatusHistory) != i+1 {
			t.Fatalf("after %s: history=%d, want %d", target, len(updated.StatusHistory), i+1)
		}
	}

	final, err := svc.Get(ctx, pharmacist, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if final.Status != order.StatusCompleted || final.Logistics.DeliveredAt == nil {
		t.Fatalf("unexpected final order: status=%s delivered=%v", final.Status, final.Logistics.DeliveredAt)
	}

	// Each hop produced a persisted patient notification.
	notifRepo := notification.NewRepoPG(globalDB.Pool)
	items, total, err := notifRepo.ListByRecipient(ctx, patientID.String(), false, 20, 0)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if total != 4 || len(items) != 4 {
		t.Fatalf("expected 4 notifications, got %d", total)
	}

	// Illegal hop out of the terminal state is rejected.
	if _, err := svc.Transition(ctx, pharmacist, o.ID, order.TransitionInput{Target: "pending"}); apperr.KindOf(err) != apperr.KindInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}
