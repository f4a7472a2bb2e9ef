package settings

import (
	"context"
	"errors"

	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the current settings, falling back to defaults when the row
// was never saved.
func (s *Service) Get(ctx context.Context) (*PlatformSettings, error) {
	cur, err := s.repo.Get(ctx)
	if errors.Is(err, xerrors.ErrNotFound) {
		d := Defaults()
		return &d, nil
	}
	if err != nil {
		return nil, err
	}
	return cur, nil
}

// Update validates and persists new settings.
func (s *Service) Update(ctx context.Context, next *PlatformSettings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	return s.repo.Save(ctx, next)
}

// WithdrawalPolicy satisfies the wallet fee policy with live settings.
func (s *Service) WithdrawalPolicy(ctx context.Context) (threshold, flatFee, minAmount float64, err error) {
	cur, err := s.Get(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	return cur.WithdrawalFeeThreshold, cur.WithdrawalFlatFee, cur.MinWithdrawal, nil
}

// PrimeSavings reports the annual-plan savings under current prices.
func (s *Service) PrimeSavings(ctx context.Context) (savings, percent float64, err error) {
	cur, err := s.Get(ctx)
	if err != nil {
		return 0, 0, err
	}
	savings = AnnualSavings(cur.PrimeMonthly, cur.PrimeAnnual)
	percent, err = SavingsPercent(cur.PrimeMonthly, cur.PrimeAnnual)
	if err != nil {
		return 0, 0, err
	}
	return savings, percent, nil
}
