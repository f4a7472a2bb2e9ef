package sharing

import (
	"time"

	"github.com/google/uuid"
)

// Grant lifecycle states.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusRevoked = "revoked"
)

// Access levels a grant can carry.
const (
	AccessSummary = "summary"
	AccessFull    = "full"
)

// DefaultValidityDays is the grant lifetime when the patient does not pick one.
const DefaultValidityDays = 7

// ShareGrant maps to the share_grant table. A patient shares one result with
// either an explicit recipient (a clinician, addressed by email) or the
// sponsor who paid for the test.
type ShareGrant struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	ResultID       uuid.UUID  `db:"result_id" json:"result_id"`
	RecipientEmail *string    `db:"recipient_email" json:"recipient_email,omitempty"`
	SponsorID      *uuid.UUID `db:"sponsor_id" json:"sponsor_id,omitempty"`
	AccessLevel    string     `db:"access_level" json:"access_level"`
	Status         string     `db:"status" json:"status"`
	GrantedAt      time.Time  `db:"granted_at" json:"granted_at"`
	ExpiresAt      time.Time  `db:"expires_at" json:"expires_at"`
	RevokedAt      *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// IsAccessible reports whether the grant allows access at the given instant.
// Revocation and expiry both close access; the stored status may lag the
// clock, so the deadline is checked directly.
func (g *ShareGrant) IsAccessible(now time.Time) bool {
	if g.Status != StatusActive {
		return false
	}
	return !now.After(g.ExpiresAt)
}

// Revoke closes the grant. Expired and Revoked are both terminal: revoking a
// grant already in either state is a no-op, so retried requests converge and
// the audit trail keeps the state the grant actually ended in.
func (g *ShareGrant) Revoke(now time.Time) {
	if g.Status != StatusActive {
		return
	}
	g.Status = StatusRevoked
	revokedAt := now.UTC()
	g.RevokedAt = &revokedAt
}
