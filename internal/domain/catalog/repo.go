package catalog

import (
	"context"

	"github.com/google/uuid"
)

type StandardRepository interface {
	Create(ctx context.Context, s *TestStandard) error
	GetByID(ctx context.Context, id uuid.UUID) (*TestStandard, error)
	Update(ctx context.Context, s *TestStandard) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*TestStandard, int, error)
}

type AddOnRepository interface {
	Create(ctx context.Context, a *AddOn) error
	GetByID(ctx context.Context, id uuid.UUID) (*AddOn, error)
	Update(ctx context.Context, a *AddOn) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*AddOn, int, error)
}

type CenterRepository interface {
	Create(ctx context.Context, c *DiagnosticCenter) error
	GetByID(ctx context.Context, id uuid.UUID) (*DiagnosticCenter, error)
	Update(ctx context.Context, c *DiagnosticCenter) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, city string, verifiedOnly bool, limit, offset int) ([]*DiagnosticCenter, int, error)
	// Price overrides
	SetPrice(ctx context.Context, p *CenterPrice) error
	GetPrice(ctx context.Context, centerID, standardID uuid.UUID) (*CenterPrice, error)
	ListPrices(ctx context.Context, centerID uuid.UUID) ([]*CenterPrice, error)
	DeletePrice(ctx context.Context, centerID, standardID uuid.UUID) error
}
