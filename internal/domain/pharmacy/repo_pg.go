package pharmacy

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

const pharmacyCols = `id, name, email, owner_name, phone, license_number,
	is_approved, is_active, moderation_notes, approved_at, version_id, created_at, updated_at`

func scanPharmacy(row pgx.Row) (*Pharmacy, error) {
	var p Pharmacy
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.OwnerName, &p.Phone, &p.LicenseNumber,
		&p.IsApproved, &p.IsActive, &p.ModerationNotes, &p.ApprovedAt,
		&p.VersionID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("pharmacy")
	}
	return &p, err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return scanPharmacy(r.conn(ctx).QueryRow(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacy WHERE id = $1`, id))
}

func (r *repoPG) Create(ctx context.Context, p *Pharmacy) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO pharmacy (id, name, email, owner_name, phone, license_number,
			is_approved, is_active, moderation_notes, approved_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING version_id, created_at, updated_at`,
		p.ID, p.Name, p.Email, p.OwnerName, p.Phone, p.LicenseNumber,
		p.IsApproved, p.IsActive, p.ModerationNotes, p.ApprovedAt).
		Scan(&p.VersionID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) Update(ctx context.Context, p *Pharmacy) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacy SET
			name = $2, email = $3, owner_name = $4, phone = $5, license_number = $6,
			is_approved = $7, is_active = $8, moderation_notes = $9, approved_at = $10,
			version_id = version_id + 1, updated_at = NOW()
		WHERE id = $1 AND version_id = $11`,
		p.ID, p.Name, p.Email, p.OwnerName, p.Phone, p.LicenseNumber,
		p.IsApproved, p.IsActive, p.ModerationNotes, p.ApprovedAt, p.VersionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("pharmacy was modified concurrently")
	}
	p.VersionID++
	return nil
}

func (r *repoPG) List(ctx context.Context, approved *bool, limit, offset int) ([]*Pharmacy, int, error) {
	where := ``
	args := []interface{}{}
	if approved != nil {
		where = `WHERE is_approved = $1`
		args = append(args, *approved)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pharmacy `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM pharmacy %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		pharmacyCols, where, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Pharmacy
	for rows.Next() {
		p, err := scanPharmacy(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
