package settings

import (
	"fmt"
	"math"
	"time"

	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

// PlatformSettings is the single row of platform-wide tunables. Admin edits
// it; pricing and wallet code read it.
type PlatformSettings struct {
	// CommissionRate is the platform's cut of each redeemed assessment,
	// as a fraction.
	CommissionRate float64 `db:"commission_rate" json:"commission_rate"`
	// Prime subscription prices, NGN.
	PrimeMonthly float64 `db:"prime_monthly" json:"prime_monthly"`
	PrimeAnnual  float64 `db:"prime_annual" json:"prime_annual"`
	// Withdrawal fee policy, NGN.
	WithdrawalFeeThreshold float64 `db:"withdrawal_fee_threshold" json:"withdrawal_fee_threshold"`
	WithdrawalFlatFee      float64 `db:"withdrawal_flat_fee" json:"withdrawal_flat_fee"`
	MinWithdrawal          float64 `db:"min_withdrawal" json:"min_withdrawal"`
	// Notification channel toggles.
	EmailEnabled bool `db:"email_enabled" json:"email_enabled"`
	SMSEnabled   bool `db:"sms_enabled" json:"sms_enabled"`
	// Portal session timeout.
	SessionTimeoutMinutes int       `db:"session_timeout_minutes" json:"session_timeout_minutes"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// Defaults returns the settings the platform launches with.
func Defaults() PlatformSettings {
	return PlatformSettings{
		CommissionRate:         0.10,
		PrimeMonthly:           5000,
		PrimeAnnual:            48000,
		WithdrawalFeeThreshold: 50000,
		WithdrawalFlatFee:      50,
		MinWithdrawal:          1000,
		EmailEnabled:           true,
		SMSEnabled:             true,
		SessionTimeoutMinutes:  30,
	}
}

// Validate checks numeric ranges before a save.
func (s *PlatformSettings) Validate() error {
	if s.CommissionRate < 0 || s.CommissionRate > 1 {
		return fmt.Errorf("commission_rate must be within [0, 1]: %w", xerrors.ErrInvalidInput)
	}
	if s.PrimeMonthly < 0 || s.PrimeAnnual < 0 {
		return fmt.Errorf("subscription prices must not be negative: %w", xerrors.ErrInvalidInput)
	}
	if s.WithdrawalFeeThreshold < 0 || s.WithdrawalFlatFee < 0 || s.MinWithdrawal < 0 {
		return fmt.Errorf("withdrawal policy values must not be negative: %w", xerrors.ErrInvalidInput)
	}
	if s.SessionTimeoutMinutes < 1 {
		return fmt.Errorf("session_timeout_minutes must be at least 1: %w", xerrors.ErrInvalidInput)
	}
	return nil
}

// AnnualSavings is what a subscriber keeps by paying yearly instead of
// twelve monthly payments.
func AnnualSavings(monthly, annual float64) float64 {
	return monthly*12 - annual
}

// SavingsPercent expresses AnnualSavings relative to the monthly-for-a-year
// cost, rounded to the nearest whole percent for display. A non-positive
// monthly price has no meaningful ratio.
func SavingsPercent(monthly, annual float64) (float64, error) {
	if monthly <= 0 {
		return 0, fmt.Errorf("monthly price must be positive: %w", xerrors.ErrInvalidInput)
	}
	return math.Round(AnnualSavings(monthly, annual) / (monthly * 12) * 100), nil
}
