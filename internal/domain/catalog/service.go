package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

type Service struct {
	standards StandardRepository
	addOns    AddOnRepository
	centers   CenterRepository
}

func NewService(s StandardRepository, a AddOnRepository, c CenterRepository) *Service {
	return &Service{standards: s, addOns: a, centers: c}
}

// -- TestStandard --

func (s *Service) CreateStandard(ctx context.Context, ts *TestStandard) error {
	if ts.Name == "" {
		return fmt.Errorf("name is required: %w", xerrors.ErrInvalidInput)
	}
	if ts.BasePrice < 0 {
		return fmt.Errorf("base_price must not be negative: %w", xerrors.ErrInvalidInput)
	}
	return s.standards.Create(ctx, ts)
}

func (s *Service) GetStandard(ctx context.Context, id uuid.UUID) (*TestStandard, error) {
	return s.standards.GetByID(ctx, id)
}

func (s *Service) UpdateStandard(ctx context.Context, ts *TestStandard) error {
	if ts.BasePrice < 0 {
		return fmt.Errorf("base_price must not be negative: %w", xerrors.ErrInvalidInput)
	}
	return s.standards.Update(ctx, ts)
}

func (s *Service) DeleteStandard(ctx context.Context, id uuid.UUID) error {
	return s.standards.Delete(ctx, id)
}

func (s *Service) ListStandards(ctx context.Context, activeOnly bool, limit, offset int) ([]*TestStandard, int, error) {
	return s.standards.List(ctx, activeOnly, limit, offset)
}

// -- AddOn --

func (s *Service) CreateAddOn(ctx context.Context, a *AddOn) error {
	if a.Name == "" {
		return fmt.Errorf("name is required: %w", xerrors.ErrInvalidInput)
	}
	if a.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", xerrors.ErrInvalidInput)
	}
	return s.addOns.Create(ctx, a)
}

func (s *Service) GetAddOn(ctx context.Context, id uuid.UUID) (*AddOn, error) {
	return s.addOns.GetByID(ctx, id)
}

func (s *Service) UpdateAddOn(ctx context.Context, a *AddOn) error {
	if a.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", xerrors.ErrInvalidInput)
	}
	return s.addOns.Update(ctx, a)
}

func (s *Service) DeleteAddOn(ctx context.Context, id uuid.UUID) error {
	return s.addOns.Delete(ctx, id)
}

func (s *Service) ListAddOns(ctx context.Context, activeOnly bool, limit, offset int) ([]*AddOn, int, error) {
	return s.addOns.List(ctx, activeOnly, limit, offset)
}

// -- DiagnosticCenter --

func (s *Service) CreateCenter(ctx context.Context, c *DiagnosticCenter) error {
	if c.Name == "" {
		return fmt.Errorf("name is required: %w", xerrors.ErrInvalidInput)
	}
	if c.Rating < 0 || c.Rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5: %w", xerrors.ErrInvalidInput)
	}
	return s.centers.Create(ctx, c)
}

func (s *Service) GetCenter(ctx context.Context, id uuid.UUID) (*DiagnosticCenter, error) {
	return s.centers.GetByID(ctx, id)
}

func (s *Service) UpdateCenter(ctx context.Context, c *DiagnosticCenter) error {
	if c.Rating < 0 || c.Rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5: %w", xerrors.ErrInvalidInput)
	}
	return s.centers.Update(ctx, c)
}

func (s *Service) DeleteCenter(ctx context.Context, id uuid.UUID) error {
	return s.centers.Delete(ctx, id)
}

func (s *Service) ListCenters(ctx context.Context, city string, verifiedOnly bool, limit, offset int) ([]*DiagnosticCenter, int, error) {
	return s.centers.List(ctx, city, verifiedOnly, limit, offset)
}

// VerifyCenter marks a center as platform-verified.
func (s *Service) VerifyCenter(ctx context.Context, id uuid.UUID) (*DiagnosticCenter, error) {
	c, err := s.centers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Verified = true
	if err := s.centers.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// -- Pricing --

// SetCenterPrice creates or replaces a center's price override for a standard.
func (s *Service) SetCenterPrice(ctx context.Context, p *CenterPrice) error {
	if p.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", xerrors.ErrInvalidInput)
	}
	if _, err := s.centers.GetByID(ctx, p.CenterID); err != nil {
		return fmt.Errorf("center %s: %w", p.CenterID, err)
	}
	if _, err := s.standards.GetByID(ctx, p.StandardID); err != nil {
		return fmt.Errorf("standard %s: %w", p.StandardID, err)
	}
	return s.centers.SetPrice(ctx, p)
}

func (s *Service) RemoveCenterPrice(ctx context.Context, centerID, standardID uuid.UUID) error {
	return s.centers.DeletePrice(ctx, centerID, standardID)
}

func (s *Service) ListCenterPrices(ctx context.Context, centerID uuid.UUID) ([]*CenterPrice, error) {
	return s.centers.ListPrices(ctx, centerID)
}

// StandardPriceAt resolves the effective price of a standard at a center.
func (s *Service) StandardPriceAt(ctx context.Context, standardID, centerID uuid.UUID) (float64, error) {
	ts, err := s.standards.GetByID(ctx, standardID)
	if err != nil {
		return 0, err
	}
	var override *float64
	if cp, err := s.centers.GetPrice(ctx, centerID, standardID); err == nil {
		override = &cp.Price
	}
	return EffectivePrice(ts.BasePrice, override), nil
}

// QuoteOrder prices a standard plus selected add-ons at a center. Add-on IDs
// that resolve to nothing are skipped rather than failing the quote.
func (s *Service) QuoteOrder(ctx context.Context, standardID, centerID uuid.UUID, addOnIDs []uuid.UUID) (*Quote, error) {
	price, err := s.StandardPriceAt(ctx, standardID, centerID)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		StandardID:    standardID,
		CenterID:      centerID,
		StandardPrice: price,
	}
	var selected []AddOn
	for _, id := range addOnIDs {
		a, err := s.addOns.GetByID(ctx, id)
		if err != nil || !a.Active {
			continue
		}
		selected = append(selected, *a)
		q.AddOns = append(q.AddOns, QuoteLine{ID: a.ID, Name: a.Name, Price: a.Price})
	}
	q.Total = OrderTotal(price, selected)
	return q, nil
}
