package sharing

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, g *ShareGrant) error
	GetByID(ctx context.Context, id uuid.UUID) (*ShareGrant, error)
	Update(ctx context.Context, g *ShareGrant) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ShareGrant, int, error)
	ListBySponsor(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]*ShareGrant, int, error)
	ListByResult(ctx context.Context, resultID uuid.UUID, limit, offset int) ([]*ShareGrant, int, error)
	// ActiveSponsorGrant finds the live grant a patient holds toward a sponsor
	// for a result, if any.
	ActiveSponsorGrant(ctx context.Context, patientID, sponsorID, resultID uuid.UUID) (*ShareGrant, error)
}
