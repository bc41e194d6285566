package consultation

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/prescripto/prescripto/internal/platform/apperr"
	"github.com/prescripto/prescripto/internal/platform/auth"
	"github.com/prescripto/prescripto/internal/platform/lock"
)

type mockRepo struct {
	items map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("appointment")
	}
	copy := *a
	return &copy, nil
}

func (m *mockRepo) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.VersionID = 1
	copy := *a
	m.items[a.ID] = &copy
	return nil
}

func (m *mockRepo) Update(ctx context.Context, a *Appointment) error {
	stored, ok := m.items[a.ID]
	if !ok {
		return apperr.NotFound("appointment")
	}
	if stored.VersionID != a.VersionID {
		return apperr.Conflict("appointment was modified concurrently")
	}
	a.VersionID++
	copy := *a
	m.items[a.ID] = &copy
	return nil
}

func testService(repo Repository) *Service {
	return NewService(repo, lock.NewStriped(), Policy{
		RoomCodePrefix:         "prescripto",
		AllowCompleteCancelled: true,
	})
}

func seedAppointment(t *testing.T, repo *mockRepo) (*Appointment, auth.Actor, auth.Actor) {
	t.Helper()
	a := &Appointment{
		PatientID:    uuid.New(),
		DoctorID:     uuid.New(),
		SlotTime:     "10:30",
		Consultation: Consultation{Status: StatusNotScheduled},
	}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doctor := auth.Actor{Role: auth.RoleDoctor, ID: a.DoctorID.String()}
	patient := auth.Actor{Role: auth.RolePatient, ID: a.PatientID.String()}
	return a, doctor, patient
}

func TestEnsureScheduled_Idempotent(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a, doctor, _ := seedAppointment(t, repo)
	ctx := context.Background()

	first, err := svc.EnsureScheduled(ctx, doctor, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Status != StatusScheduled {
		t.Fatalf("expected scheduled, got %s", first.Status)
	}
	if !strings.HasPrefix(first.RoomToken, "prescripto-") || len(first.RoomToken) != len("prescripto-")+12 {
		t.Fatalf("unexpected room token format: %q", first.RoomToken)
	}

	second, err := svc.EnsureScheduled(ctx, doctor, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.RoomToken != first.RoomToken {
		t.Fatalf("room token changed: %q vs %q", first.RoomToken, second.RoomToken)
	}
	if second.Status != StatusScheduled {
		t.Fatalf("expected scheduled after repeat call, got %s", second.Status)
	}
}

func TestFullLifecycle(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a, doctor, _ := seedAppointment(t, repo)
	ctx := context.Background()

	if _, err := svc.EnsureScheduled(ctx, doctor, a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	live, err := svc.Start(ctx, doctor, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if live.Status != StatusLive {
		t.Fatalf("expected live, got %s", live.Status)
	}
	if live.StartedAt == nil {
		t.Fatal("expected started_at to be set")
	}

	done, err := svc.Complete(ctx, doctor, a.ID, CompleteInput{Summary: "Flu, prescribed rest"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}
	if done.EndedAt == nil {
		t.Fatal("expected ended_at to be set")
	}
	if !done.IsCompleted {
		t.Fatal("expected appointment is_completed to be true")
	}

	stored := repo.items[a.ID]
	if !stored.IsCompleted {
		t.Fatal("is_completed not persisted")
	}
}

func TestStart_WithoutPriorEnsure_GeneratesToken(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a, doctor, _ := seedAppointment(t, repo)

	live, err := svc.Start(context.Background(), doctor, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if live.RoomToken == "" {
		t.Fatal("expected start to generate a room token")
	}
	if live.Status != StatusLive {
		t.Fatalf("expected live, got %s", live.Status)
	}
}

func TestStart_Repeated_KeepsStartedAt(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a, doctor, _ := seedAppointment(t, repo)
	ctx := context.Background()

	first, err := svc.Start(ctx, doctor, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Start(ctx, doctor, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.StartedAt.Equal(*first.StartedAt) {
		t.Fatal("started_at changed on repeated start")
	}
	if second.RoomToken != first.RoomToken {
		t.Fatal("room token changed on repeated start")
	}
}

func TestStart_AfterCompleted_Rejected(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a, doctor, _ := seedAppointment(t, repo)
	ctx := context.Background()

	if _, err := svc.Start(ctx, doctor, a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Complete(ctx, doctor, a.ID, CompleteInput{Summary: "done"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Start(ctx, doctor, a.ID)
	if apperr.KindOf(err) != apperr.KindInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestComplete_RequiresSummary(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a, doctor, _ := seedAppointment(t, repo)

	_, err := svc.Complete(context.Background(), doctor, a.ID, CompleteInput{Summary: "   "})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestComplete_CancelledAppointment_Policy(t *testing.T) {
	repo := newMockRepo()
	a, doctor, _ := seedAppointment(t, repo)
	repo.items[a.ID].Cancelled = true
	ctx := context.Background()

	// Default policy allows completing a cancelled appointment.
	allow := testService(repo)
	if _, err := allow.Complete(ctx, doctor, a.ID, CompleteInput{Summary: "salvaged"}); err != nil {
		t.Fatalf("unexpected error with permissive policy: %v", err)
	}

	// Strict policy rejects it.
	repo2 := newMockRepo()
	b, doctor2, _ := seedAppointment(t, repo2)
	repo2.items[b.ID].Cancelled = true
	strict := NewService(repo2, lock.NewStriped(), Policy{AllowCompleteCancelled: false})

	_, err := strict.Complete(ctx, doctor2, b.ID, CompleteInput{Summary: "salvaged"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error with strict policy, got %v", err)
	}
}

func TestMutations_DenyForeignDoctor(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a, _, _ := seedAppointment(t, repo)
	intruder := auth.Actor{Role: auth.RoleDoctor, ID: uuid.NewString()}
	ctx := context.Background()

	before := *repo.items[a.ID]

	ops := map[string]func() error{
		"ensure": func() error { _, err := svc.EnsureScheduled(ctx, intruder, a.ID); return err },
		"start":  func() error { _, err := svc.Start(ctx, intruder, a.ID); return err },
		"complete": func() error {
			_, err := svc.Complete(ctx, intruder, a.ID, CompleteInput{Summary: "x"})
			return err
		},
	}
	for name, op := range ops {
		if kind := apperr.KindOf(op()); kind != apperr.KindUnauthorized {
			t.Errorf("%s: expected unauthorized, got %s", name, kind)
		}
	}

	after := *repo.items[a.ID]
	if after != before {
		t.Fatal("appointment mutated despite denial")
	}
}

func TestMutations_DenyPatient(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a, _, patient := seedAppointment(t, repo)

	_, err := svc.Start(context.Background(), patient, a.ID)
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized for patient on start, got %v", err)
	}
}

func TestRead_ParticipantsOnly(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a, doctor, patient := seedAppointment(t, repo)
	ctx := context.Background()

	internal := "bp slightly elevated"
	repo.items[a.ID].Consultation.NotesForInternal = &internal

	docView, err := svc.Read(ctx, doctor, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docView.NotesForInternal == nil {
		t.Fatal("doctor should see internal notes")
	}

	patView, err := svc.Read(ctx, patient, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if patView.NotesForInternal != nil {
		t.Fatal("patient must not see internal notes")
	}

	stranger := auth.Actor{Role: auth.RolePatient, ID: uuid.NewString()}
	if _, err := svc.Read(ctx, stranger, a.ID); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized for stranger, got %v", err)
	}
}

func TestOperations_MissingAppointment(t *testing.T) {
	svc := testService(newMockRepo())
	doctor := auth.Actor{Role: auth.RoleDoctor, ID: uuid.NewString()}

	_, err := svc.EnsureScheduled(context.Background(), doctor, uuid.New())
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
