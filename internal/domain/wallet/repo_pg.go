package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

type walletRepoPG struct{ pool *pgxpool.Pool }

func NewWalletRepoPG(pool *pgxpool.Pool) WalletRepository {
	return &walletRepoPG{pool: pool}
}

func (r *walletRepoPG) GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*Wallet, error) {
	var w Wallet
	err := r.pool.QueryRow(ctx, `
		INSERT INTO wallet (owner_id, balance) VALUES ($1, 0)
		ON CONFLICT (owner_id) DO UPDATE SET owner_id = EXCLUDED.owner_id
		RETURNING owner_id, balance, created_at, updated_at`,
		ownerID).Scan(&w.OwnerID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *walletRepoPG) Credit(ctx context.Context, ownerID uuid.UUID, amount float64) (*Wallet, error) {
	var w Wallet
	err := r.pool.QueryRow(ctx, `
		UPDATE wallet SET balance = balance + $2, updated_at = NOW()
		WHERE owner_id = $1
		RETURNING owner_id, balance, created_at, updated_at`,
		ownerID, amount).Scan(&w.OwnerID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *walletRepoPG) Debit(ctx context.Context, ownerID uuid.UUID, amount float64) (*Wallet, error) {
	var w Wallet
	// The balance guard in the WHERE clause makes the debit atomic.
	err := r.pool.QueryRow(ctx, `
		UPDATE wallet SET balance = balance - $2, updated_at = NOW()
		WHERE owner_id = $1 AND balance >= $2
		RETURNING owner_id, balance, created_at, updated_at`,
		ownerID, amount).Scan(&w.OwnerID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("insufficient balance: %w", xerrors.ErrInvalidInput)
		}
		return nil, err
	}
	return &w, nil
}

type withdrawalRepoPG struct{ pool *pgxpool.Pool }

func NewWithdrawalRepoPG(pool *pgxpool.Pool) WithdrawalRepository {
	return &withdrawalRepoPG{pool: pool}
}

const withdrawalCols = `id, owner_id, amount, fee, net, bank_name, account_number,
	account_name, status, failure_reason, gateway_ref, requested_at, settled_at,
	created_at, updated_at`

func scanWithdrawal(row pgx.Row) (*WithdrawalRequest, error) {
	var w WithdrawalRequest
	err := row.Scan(&w.ID, &w.OwnerID, &w.Amount, &w.Fee, &w.Net, &w.BankName,
		&w.AccountNumber, &w.AccountName, &w.Status, &w.FailureReason,
		&w.GatewayRef, &w.RequestedAt, &w.SettledAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *withdrawalRepoPG) Create(ctx context.Context, w *WithdrawalRequest) error {
	w.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO withdrawal_request (id, owner_id, amount, fee, net, status, requested_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		w.ID, w.OwnerID, w.Amount, w.Fee, w.Net, w.Status, w.RequestedAt)
	return err
}

func (r *withdrawalRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error) {
	return scanWithdrawal(r.pool.QueryRow(ctx, `SELECT `+withdrawalCols+` FROM withdrawal_request WHERE id = $1`, id))
}

func (r *withdrawalRepoPG) Update(ctx context.Context, w *WithdrawalRequest) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE withdrawal_request SET bank_name=$2, account_number=$3, account_name=$4,
			status=$5, failure_reason=$6, gateway_ref=$7, settled_at=$8, updated_at=NOW()
		WHERE id = $1`,
		w.ID, w.BankName, w.AccountNumber, w.AccountName,
		w.Status, w.FailureReason, w.GatewayRef, w.SettledAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *withdrawalRepoPG) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*WithdrawalRequest, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM withdrawal_request WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+withdrawalCols+` FROM withdrawal_request
		WHERE owner_id = $1 ORDER BY requested_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*WithdrawalRequest
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, w)
	}
	return items, total, rows.Err()
}
