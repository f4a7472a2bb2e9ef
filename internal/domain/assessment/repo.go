package assessment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *AssessmentCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*AssessmentCode, error)
	GetByCode(ctx context.Context, code string) (*AssessmentCode, error)
	Update(ctx context.Context, a *AssessmentCode) error
	ListBySponsor(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]*AssessmentCode, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AssessmentCode, int, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}
