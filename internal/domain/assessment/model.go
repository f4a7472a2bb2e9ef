package assessment

import (
	"time"

	"github.com/google/uuid"
)

// Code lifecycle states.
const (
	StatusPending = "pending"
	StatusUsed    = "used"
	StatusExpired = "expired"
)

// AssessmentCode maps to the assessment_code table. A sponsor issues a code
// against a test standard; a patient redeems it once at a diagnostic center.
type AssessmentCode struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Code       string     `db:"code" json:"code"`
	SponsorID  uuid.UUID  `db:"sponsor_id" json:"sponsor_id"`
	StandardID uuid.UUID  `db:"standard_id" json:"standard_id"`
	Status     string     `db:"status" json:"status"`
	IssuedAt   time.Time  `db:"issued_at" json:"issued_at"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at"`
	UsedAt     *time.Time `db:"used_at" json:"used_at,omitempty"`
	UsedByID   *uuid.UUID `db:"used_by_id" json:"used_by_id,omitempty"`
	CenterID   *uuid.UUID `db:"center_id" json:"center_id,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
