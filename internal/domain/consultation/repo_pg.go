package consultation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prescripto/prescripto/internal/platform/apperr"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable { return r.pool }

const apptCols = `id, patient_id, doctor_id, slot_date, slot_time, amount, cancelled, paid,
	is_completed, prescription_id, pharmacy_order_id,
	room_token, consultation_status, started_at, ended_at, summary, follow_up_date,
	notes_for_patient, notes_for_internal, version_id, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var roomToken *string
	var status string
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.SlotDate, &a.SlotTime, &a.Amount,
		&a.Cancelled, &a.Paid, &a.IsCompleted, &a.PrescriptionID, &a.PharmacyOrderID,
		&roomToken, &status, &a.Consultation.StartedAt, &a.Consultation.EndedAt,
		&a.Consultation.Summary, &a.Consultation.FollowUpDate,
		&a.Consultation.NotesForPatient, &a.Consultation.NotesForInternal,
		&a.VersionID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment")
	}
	if err != nil {
		return nil, err
	}
	if roomToken != nil {
		a.Consultation.RoomToken = *roomToken
	}
	st, ok := ParseStatus(status)
	if !ok {
		return nil, apperr.Internal(errors.New("unknown consultation status " + status))
	}
	a.Consultation.Status = st
	return &a, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Consultation.Status == "" {
		a.Consultation.Status = StatusNotScheduled
	}
	a.VersionID = 1
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, slot_date, slot_time, amount,
			cancelled, paid, is_completed, prescription_id, pharmacy_order_id,
			room_token, consultation_status, started_at, ended_at, summary, follow_up_date,
			notes_for_patient, notes_for_internal, version_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		a.ID, a.PatientID, a.DoctorID, a.SlotDate, a.SlotTime, a.Amount,
		a.Cancelled, a.Paid, a.IsCompleted, a.PrescriptionID, a.PharmacyOrderID,
		nullable(a.Consultation.RoomToken), a.Consultation.Status,
		a.Consultation.StartedAt, a.Consultation.EndedAt, a.Consultation.Summary,
		a.Consultation.FollowUpDate, a.Consultation.NotesForPatient,
		a.Consultation.NotesForInternal, a.VersionID)
	return err
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET cancelled=$2, paid=$3, is_completed=$4,
			prescription_id=$5, pharmacy_order_id=$6,
			room_token=$7, consultation_status=$8, started_at=$9, ended_at=$10,
			summary=$11, follow_up_date=$12, notes_for_patient=$13, notes_for_internal=$14,
			version_id = version_id + 1, updated_at = NOW()
		WHERE id = $1 AND version_id = $15`,
		a.ID, a.Cancelled, a.Paid, a.IsCompleted,
		a.PrescriptionID, a.PharmacyOrderID,
		nullable(a.Consultation.RoomToken), a.Consultation.Status,
		a.Consultation.StartedAt, a.Consultation.EndedAt, a.Consultation.Summary,
		a.Consultation.FollowUpDate, a.Consultation.NotesForPatient,
		a.Consultation.NotesForInternal, a.VersionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("appointment was modified concurrently")
	}
	a.VersionID++
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
