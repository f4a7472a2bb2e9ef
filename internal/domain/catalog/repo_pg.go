package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	return err
}

// =========== TestStandard Repository ===========

type standardRepoPG struct{ pool *pgxpool.Pool }

func NewStandardRepoPG(pool *pgxpool.Pool) StandardRepository {
	return &standardRepoPG{pool: pool}
}

const standardCols = `id, name, description, base_price, tests_included,
	turnaround_hours, window_period, active, created_at, updated_at`

func scanStandard(row pgx.Row) (*TestStandard, error) {
	var ts TestStandard
	err := row.Scan(&ts.ID, &ts.Name, &ts.Description, &ts.BasePrice,
		&ts.TestsIncluded, &ts.TurnaroundHrs, &ts.WindowPeriodID,
		&ts.Active, &ts.CreatedAt, &ts.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &ts, nil
}

func (r *standardRepoPG) Create(ctx context.Context, ts *TestStandard) error {
	ts.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO test_standard (id, name, description, base_price, tests_included,
			turnaround_hours, window_period, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		ts.ID, ts.Name, ts.Description, ts.BasePrice, ts.TestsIncluded,
		ts.TurnaroundHrs, ts.WindowPeriodID, ts.Active)
	return err
}

func (r *standardRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*TestStandard, error) {
	return scanStandard(r.pool.QueryRow(ctx, `SELECT `+standardCols+` FROM test_standard WHERE id = $1`, id))
}

func (r *standardRepoPG) Update(ctx context.Context, ts *TestStandard) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE test_standard SET name=$2, description=$3, base_price=$4, tests_included=$5,
			turnaround_hours=$6, window_period=$7, active=$8, updated_at=NOW()
		WHERE id = $1`,
		ts.ID, ts.Name, ts.Description, ts.BasePrice, ts.TestsIncluded,
		ts.TurnaroundHrs, ts.WindowPeriodID, ts.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *standardRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM test_standard WHERE id = $1`, id)
	return err
}

func (r *standardRepoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*TestStandard, int, error) {
	where := ``
	if activeOnly {
		where = ` WHERE active`
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM test_standard`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+standardCols+` FROM test_standard`+where+` ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*TestStandard
	for rows.Next() {
		ts, err := scanStandard(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ts)
	}
	return items, total, rows.Err()
}

// =========== AddOn Repository ===========

type addOnRepoPG struct{ pool *pgxpool.Pool }

func NewAddOnRepoPG(pool *pgxpool.Pool) AddOnRepository {
	return &addOnRepoPG{pool: pool}
}

const addOnCols = `id, name, description, price, active, created_at, updated_at`

func scanAddOn(row pgx.Row) (*AddOn, error) {
	var a AddOn
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Price, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &a, nil
}

func (r *addOnRepoPG) Create(ctx context.Context, a *AddOn) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO add_on (id, name, description, price, active)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.Name, a.Description, a.Price, a.Active)
	return err
}

func (r *addOnRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*AddOn, error) {
	return scanAddOn(r.pool.QueryRow(ctx, `SELECT `+addOnCols+` FROM add_on WHERE id = $1`, id))
}

func (r *addOnRepoPG) Update(ctx context.Context, a *AddOn) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE add_on SET name=$2, description=$3, price=$4, active=$5, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Name, a.Description, a.Price, a.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *addOnRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM add_on WHERE id = $1`, id)
	return err
}

func (r *addOnRepoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*AddOn, int, error) {
	where := ``
	if activeOnly {
		where = ` WHERE active`
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM add_on`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+addOnCols+` FROM add_on`+where+` ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*AddOn
	for rows.Next() {
		a, err := scanAddOn(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

// =========== DiagnosticCenter Repository ===========

type centerRepoPG struct{ pool *pgxpool.Pool }

func NewCenterRepoPG(pool *pgxpool.Pool) CenterRepository {
	return &centerRepoPG{pool: pool}
}

const centerCols = `id, name, address, city, latitude, longitude, rating,
	verified, operating_hours, contact_phone, created_at, updated_at`

func scanCenter(row pgx.Row) (*DiagnosticCenter, error) {
	var c DiagnosticCenter
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.Latitude, &c.Longitude,
		&c.Rating, &c.Verified, &c.OperatingHrs, &c.ContactPhone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &c, nil
}

func (r *centerRepoPG) Create(ctx context.Context, c *DiagnosticCenter) error {
	c.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO diagnostic_center (id, name, address, city, latitude, longitude,
			rating, verified, operating_hours, contact_phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.ID, c.Name, c.Address, c.City, c.Latitude, c.Longitude,
		c.Rating, c.Verified, c.OperatingHrs, c.ContactPhone)
	return err
}

func (r *centerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DiagnosticCenter, error) {
	return scanCenter(r.pool.QueryRow(ctx, `SELECT `+centerCols+` FROM diagnostic_center WHERE id = $1`, id))
}

func (r *centerRepoPG) Update(ctx context.Context, c *DiagnosticCenter) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE diagnostic_center SET name=$2, address=$3, city=$4, latitude=$5, longitude=$6,
			rating=$7, verified=$8, operating_hours=$9, contact_phone=$10, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Address, c.City, c.Latitude, c.Longitude,
		c.Rating, c.Verified, c.OperatingHrs, c.ContactPhone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *centerRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM diagnostic_center WHERE id = $1`, id)
	return err
}

func (r *centerRepoPG) List(ctx context.Context, city string, verifiedOnly bool, limit, offset int) ([]*DiagnosticCenter, int, error) {
	query := `SELECT ` + centerCols + ` FROM diagnostic_center WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM diagnostic_center WHERE 1=1`
	var args []interface{}
	idx := 1

	if city != "" {
		cond := fmt.Sprintf(` AND LOWER(city) = LOWER($%d)`, idx)
		query += cond
		countQuery += cond
		args = append(args, city)
		idx++
	}
	if verifiedOnly {
		query += ` AND verified`
		countQuery += ` AND verified`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY rating DESC, name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DiagnosticCenter
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *centerRepoPG) SetPrice(ctx context.Context, p *CenterPrice) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO center_price (center_id, standard_id, price)
		VALUES ($1,$2,$3)
		ON CONFLICT (center_id, standard_id) DO UPDATE SET price = EXCLUDED.price, updated_at = NOW()`,
		p.CenterID, p.StandardID, p.Price)
	return err
}

func (r *centerRepoPG) GetPrice(ctx context.Context, centerID, standardID uuid.UUID) (*CenterPrice, error) {
	var p CenterPrice
	err := r.pool.QueryRow(ctx, `
		SELECT center_id, standard_id, price, updated_at
		FROM center_price WHERE center_id = $1 AND standard_id = $2`,
		centerID, standardID).Scan(&p.CenterID, &p.StandardID, &p.Price, &p.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &p, nil
}

func (r *centerRepoPG) ListPrices(ctx context.Context, centerID uuid.UUID) ([]*CenterPrice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT center_id, standard_id, price, updated_at
		FROM center_price WHERE center_id = $1`, centerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CenterPrice
	for rows.Next() {
		var p CenterPrice
		if err := rows.Scan(&p.CenterID, &p.StandardID, &p.Price, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}

func (r *centerRepoPG) DeletePrice(ctx context.Context, centerID, standardID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM center_price WHERE center_id = $1 AND standard_id = $2`, centerID, standardID)
	return err
}
