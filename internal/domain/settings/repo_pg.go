package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

// The table holds at most one row, pinned by singleton = TRUE.

func (r *repoPG) Get(ctx context.Context) (*PlatformSettings, error) {
	var s PlatformSettings
	err := r.pool.QueryRow(ctx, `
		SELECT commission_rate, prime_monthly, prime_annual,
			withdrawal_fee_threshold, withdrawal_flat_fee, min_withdrawal,
			email_enabled, sms_enabled, session_timeout_minutes, updated_at
		FROM platform_settings WHERE singleton`).
		Scan(&s.CommissionRate, &s.PrimeMonthly, &s.PrimeAnnual,
			&s.WithdrawalFeeThreshold, &s.WithdrawalFlatFee, &s.MinWithdrawal,
			&s.EmailEnabled, &s.SMSEnabled, &s.SessionTimeoutMinutes, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) Save(ctx context.Context, s *PlatformSettings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO platform_settings (singleton, commission_rate, prime_monthly, prime_annual,
			withdrawal_fee_threshold, withdrawal_flat_fee, min_withdrawal,
			email_enabled, sms_enabled, session_timeout_minutes, updated_at)
		VALUES (TRUE, $1,$2,$3,$4,$5,$6,$7,$8,$9, NOW())
		ON CONFLICT (singleton) DO UPDATE SET
			commission_rate = EXCLUDED.commission_rate,
			prime_monthly = EXCLUDED.prime_monthly,
			prime_annual = EXCLUDED.prime_annual,
			withdrawal_fee_threshold = EXCLUDED.withdrawal_fee_threshold,
			withdrawal_flat_fee = EXCLUDED.withdrawal_flat_fee,
			min_withdrawal = EXCLUDED.min_withdrawal,
			email_enabled = EXCLUDED.email_enabled,
			sms_enabled = EXCLUDED.sms_enabled,
			session_timeout_minutes = EXCLUDED.session_timeout_minutes,
			updated_at = NOW()`,
		s.CommissionRate, s.PrimeMonthly, s.PrimeAnnual,
		s.WithdrawalFeeThreshold, s.WithdrawalFlatFee, s.MinWithdrawal,
		s.EmailEnabled, s.SMSEnabled, s.SessionTimeoutMinutes)
	return err
}
