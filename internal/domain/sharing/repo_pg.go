package sharing

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

const grantCols = `id, patient_id, result_id, recipient_email, sponsor_id,
	access_level, status, granted_at, expires_at, revoked_at, created_at, updated_at`

func scanGrant(row pgx.Row) (*ShareGrant, error) {
	var g ShareGrant
	err := row.Scan(&g.ID, &g.PatientID, &g.ResultID, &g.RecipientEmail, &g.SponsorID,
		&g.AccessLevel, &g.Status, &g.GrantedAt, &g.ExpiresAt, &g.RevokedAt,
		&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *repoPG) Create(ctx context.Context, g *ShareGrant) error {
	g.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO share_grant (id, patient_id, result_id, recipient_email, sponsor_id,
			access_level, status, granted_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		g.ID, g.PatientID, g.ResultID, g.RecipientEmail, g.SponsorID,
		g.AccessLevel, g.Status, g.GrantedAt, g.ExpiresAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ShareGrant, error) {
	return scanGrant(r.pool.QueryRow(ctx, `SELECT `+grantCols+` FROM share_grant WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, g *ShareGrant) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE share_grant SET status=$2, revoked_at=$3, updated_at=NOW()
		WHERE id = $1`,
		g.ID, g.Status, g.RevokedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ShareGrant, int, error) {
	return r.list(ctx, `patient_id`, patientID, limit, offset)
}

func (r *repoPG) ListBySponsor(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]*ShareGrant, int, error) {
	return r.list(ctx, `sponsor_id`, sponsorID, limit, offset)
}

func (r *repoPG) ListByResult(ctx context.Context, resultID uuid.UUID, limit, offset int) ([]*ShareGrant, int, error) {
	return r.list(ctx, `result_id`, resultID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*ShareGrant, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM share_grant WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+grantCols+` FROM share_grant
		WHERE `+col+` = $1 ORDER BY granted_at DESC LIMIT $2 OFFSET $3`,
		id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ShareGrant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, g)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ActiveSponsorGrant(ctx context.Context, patientID, sponsorID, resultID uuid.UUID) (*ShareGrant, error) {
	return scanGrant(r.pool.QueryRow(ctx, `
		SELECT `+grantCols+` FROM share_grant
		WHERE patient_id = $1 AND sponsor_id = $2 AND result_id = $3 AND status = 'active'
		ORDER BY granted_at DESC LIMIT 1`,
		patientID, sponsorID, resultID))
}
