package order

import (
	"context"
	"errors"
	"fmt"

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

const orderCols = `id, order_number, prescription_id, appointment_id, patient_id, pharmacy_id,
	status, method, courier_name, tracking_number, expected_delivery, delivered_at,
	notes_for_patient, total_amount, payment_status, version_id, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.PrescriptionID, &o.AppointmentID,
		&o.PatientID, &o.PharmacyID, &status,
		&o.Logistics.Method, &o.Logistics.CourierName, &o.Logistics.TrackingNumber,
		&o.Logistics.ExpectedDelivery, &o.Logistics.DeliveredAt,
		&o.NotesForPatient, &o.TotalAmount, &o.PaymentStatus,
		&o.VersionID, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("order")
	}
	if err != nil {
		return nil, err
	}
	st, ok := ParseStatus(status)
	if !ok {
		return nil, apperr.Internal(errors.New("unknown order status " + status))
	}
	o.Status = st
	return &o, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderCols+` FROM pharmacy_order WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	history, err := r.History(ctx, id)
	if err != nil {
		return nil, err
	}
	o.StatusHistory = history
	return o, nil
}

func (r *repoPG) Create(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	o.VersionID = 1
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy_order (id, order_number, prescription_id, appointment_id,
			patient_id, pharmacy_id, status, method, courier_name, tracking_number,
			expected_delivery, delivered_at, notes_for_patient, total_amount,
			payment_status, version_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		o.ID, o.OrderNumber, o.PrescriptionID, o.AppointmentID,
		o.PatientID, o.PharmacyID, o.Status,
		o.Logistics.Method, o.Logistics.CourierName, o.Logistics.TrackingNumber,
		o.Logistics.ExpectedDelivery, o.Logistics.DeliveredAt,
		o.NotesForPatient, o.TotalAmount, o.PaymentStatus, o.VersionID)
	return err
}

func (r *repoPG) UpdateWithHistory(ctx context.Context, o *Order, entry HistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE pharmacy_order SET status=$2, method=$3, courier_name=$4,
			tracking_number=$5, expected_delivery=$6, delivered_at=$7,
			notes_for_patient=$8, version_id = version_id + 1, updated_at = NOW()
		WHERE id = $1 AND version_id = $9`,
		o.ID, o.Status,
		o.Logistics.Method, o.Logistics.CourierName, o.Logistics.TrackingNumber,
		o.Logistics.ExpectedDelivery, o.Logistics.DeliveredAt,
		o.NotesForPatient, o.VersionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("order was modified concurrently")
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, status, note, updated_by_role, updated_by_id, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		uuid.New(), o.ID, entry.Status, entry.Note,
		entry.UpdatedByRole, entry.UpdatedByID, entry.Timestamp); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	o.VersionID++
	o.StatusHistory = append(o.StatusHistory, entry)
	return nil
}

func (r *repoPG) History(ctx context.Context, orderID uuid.UUID) ([]HistoryEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT status, note, updated_by_role, updated_by_id, timestamp
		FROM order_status_history WHERE order_id = $1
		ORDER BY timestamp ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var status string
		if err := rows.Scan(&status, &e.Note, &e.UpdatedByRole, &e.UpdatedByID, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Status = Status(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repoPG) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, status string, limit, offset int) ([]*Order, int, error) {
	where := `WHERE pharmacy_id = $1`
	args := []interface{}{pharmacyID}
	if status != "" {
		where += fmt.Sprintf(` AND status = $%d`, len(args)+1)
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pharmacy_order `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM pharmacy_order %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}
