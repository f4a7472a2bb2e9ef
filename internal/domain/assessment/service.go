package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zivahealth/ziva/internal/platform/notification"
	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

// DefaultValidityDays is how long an issued code stays redeemable.
const DefaultValidityDays = 90

// issueRetries bounds regeneration on a code collision.
const issueRetries = 5

// Notifier is the slice of the notification dispatcher the service needs.
type Notifier interface {
	SendTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*notification.Notification, error)
}

type Service struct {
	codes    Repository
	notifier Notifier
}

func NewService(codes Repository, notifier Notifier) *Service {
	return &Service{codes: codes, notifier: notifier}
}

// IssueParams describes a code issuance request.
type IssueParams struct {
	SponsorID    uuid.UUID `json:"sponsor_id"`
	StandardID   uuid.UUID `json:"standard_id"`
	ValidityDays int       `json:"validity_days"`
	// Notification targets; delivery failures never fail issuance.
	PatientEmail string `json:"patient_email"`
	PatientName  string `json:"patient_name"`
}

// Issue generates a fresh unique code for a sponsor. Collisions with existing
// codes trigger regeneration; exhausting the retry budget is reported as an
// external failure since it signals a stuck random source.
func (s *Service) Issue(ctx context.Context, p IssueParams) (*AssessmentCode, error) {
	if p.SponsorID == uuid.Nil {
		return nil, fmt.Errorf("sponsor_id is required: %w", xerrors.ErrInvalidInput)
	}
	if p.StandardID == uuid.Nil {
		return nil, fmt.Errorf("standard_id is required: %w", xerrors.ErrInvalidInput)
	}
	days := p.ValidityDays
	if days <= 0 {
		days = DefaultValidityDays
	}

	var code string
	for attempt := 0; ; attempt++ {
		c, err := GenerateCode()
		if err != nil {
			return nil, err
		}
		exists, err := s.codes.CodeExists(ctx, c)
		if err != nil {
			return nil, err
		}
		if !exists {
			code = c
			break
		}
		if attempt+1 >= issueRetries {
			return nil, fmt.Errorf("could not generate a unique code after %d attempts: %w", issueRetries, xerrors.ErrExternalFailure)
		}
	}

	now := time.Now().UTC()
	a := &AssessmentCode{
		Code:       code,
		SponsorID:  p.SponsorID,
		StandardID: p.StandardID,
		Status:     StatusPending,
		IssuedAt:   now,
		ExpiresAt:  now.AddDate(0, 0, days),
	}
	if err := s.codes.Create(ctx, a); err != nil {
		return nil, err
	}

	if s.notifier != nil && p.PatientEmail != "" {
		_, _ = s.notifier.SendTemplate(ctx, notification.TemplateCodeIssued, map[string]string{
			"patient_name": p.PatientName,
			"code":         a.Code,
			"valid_until":  a.ExpiresAt.Format("2006-01-02"),
		}, p.PatientEmail)
	}
	return a, nil
}

// Validate normalizes raw input and checks whether the code could be
// redeemed right now, without consuming it. Lazy expiry is persisted here so
// reads converge with the clock.
func (s *Service) Validate(ctx context.Context, raw string, now time.Time) (*AssessmentCode, error) {
	code := NormalizeCode(raw)
	if !IsValidCodeFormat(code) {
		return nil, fmt.Errorf("code %q: %w", raw, xerrors.ErrMalformed)
	}
	a, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	s.expireIfDue(ctx, a, now)
	if err := CanActivate(a, now); err != nil {
		return a, err
	}
	return a, nil
}

// RedeemParams describes a redemption at a diagnostic center.
type RedeemParams struct {
	Code      string    `json:"code"`
	PatientID uuid.UUID `json:"patient_id"`
	CenterID  uuid.UUID `json:"center_id"`
	// Notification targets.
	PatientEmail string `json:"patient_email"`
	PatientName  string `json:"patient_name"`
	CenterName   string `json:"center_name"`
}

// Redeem consumes a pending code. The code transitions to used exactly once;
// a second redemption reports ErrAlreadyUsed.
func (s *Service) Redeem(ctx context.Context, p RedeemParams, now time.Time) (*AssessmentCode, error) {
	if p.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required: %w", xerrors.ErrInvalidInput)
	}
	if p.CenterID == uuid.Nil {
		return nil, fmt.Errorf("center_id is required: %w", xerrors.ErrInvalidInput)
	}

	a, err := s.Validate(ctx, p.Code, now)
	if err != nil {
		return nil, err
	}

	usedAt := now.UTC()
	a.Status = StatusUsed
	a.UsedAt = &usedAt
	a.UsedByID = &p.PatientID
	a.CenterID = &p.CenterID
	if err := s.codes.Update(ctx, a); err != nil {
		return nil, err
	}

	if s.notifier != nil && p.PatientEmail != "" {
		_, _ = s.notifier.SendTemplate(ctx, notification.TemplateCodeRedeemed, map[string]string{
			"patient_name": p.PatientName,
			"code":         a.Code,
			"center_name":  p.CenterName,
			"turnaround":   "48 hours",
		}, p.PatientEmail)
	}
	return a, nil
}

// Get returns a code by id, applying lazy expiry.
func (s *Service) Get(ctx context.Context, id uuid.UUID, now time.Time) (*AssessmentCode, error) {
	a, err := s.codes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.expireIfDue(ctx, a, now)
	return a, nil
}

// ListBySponsor returns codes issued by a sponsor, applying lazy expiry.
func (s *Service) ListBySponsor(ctx context.Context, sponsorID uuid.UUID, now time.Time, limit, offset int) ([]*AssessmentCode, int, error) {
	items, total, err := s.codes.ListBySponsor(ctx, sponsorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, a := range items {
		s.expireIfDue(ctx, a, now)
	}
	return items, total, nil
}

// ListByPatient returns codes a patient has redeemed. Redeemed codes cannot
// expire, so no lazy-expiry pass is needed.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*AssessmentCode, int, error) {
	return s.codes.ListByPatient(ctx, patientID, limit, offset)
}

// expireIfDue flips a pending code past its deadline to expired. The write
// is best-effort; the in-memory status is authoritative for this request.
func (s *Service) expireIfDue(ctx context.Context, a *AssessmentCode, now time.Time) {
	if a.Status == StatusPending && now.After(a.ExpiresAt) {
		a.Status = StatusExpired
		_ = s.codes.Update(ctx, a)
	}
}
