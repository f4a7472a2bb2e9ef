package assessment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const codeCols = `id, code, sponsor_id, standard_id, status, issued_at,
	expires_at, used_at, used_by_id, center_id, created_at, updated_at`

func scanCode(row pgx.Row) (*AssessmentCode, error) {
	var a AssessmentCode
	err := row.Scan(&a.ID, &a.Code, &a.SponsorID, &a.StandardID, &a.Status,
		&a.IssuedAt, &a.ExpiresAt, &a.UsedAt, &a.UsedByID, &a.CenterID,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *AssessmentCode) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO assessment_code (id, code, sponsor_id, standard_id, status,
			issued_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.Code, a.SponsorID, a.StandardID, a.Status, a.IssuedAt, a.ExpiresAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*AssessmentCode, error) {
	return scanCode(r.pool.QueryRow(ctx, `SELECT `+codeCols+` FROM assessment_code WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*AssessmentCode, error) {
	return scanCode(r.pool.QueryRow(ctx, `SELECT `+codeCols+` FROM assessment_code WHERE code = $1`, code))
}

func (r *repoPG) Update(ctx context.Context, a *AssessmentCode) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE assessment_code SET status=$2, used_at=$3, used_by_id=$4, center_id=$5, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Status, a.UsedAt, a.UsedByID, a.CenterID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *repoPG) ListBySponsor(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]*AssessmentCode, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assessment_code WHERE sponsor_id = $1`, sponsorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+codeCols+` FROM assessment_code
		WHERE sponsor_id = $1 ORDER BY issued_at DESC LIMIT $2 OFFSET $3`,
		sponsorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*AssessmentCode
	for rows.Next() {
		a, err := scanCode(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AssessmentCode, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assessment_code WHERE used_by_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+codeCols+` FROM assessment_code
		WHERE used_by_id = $1 ORDER BY used_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*AssessmentCode
	for rows.Next() {
		a, err := scanCode(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM assessment_code WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}
