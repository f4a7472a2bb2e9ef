package sharing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zivahealth/ziva/internal/platform/notification"
	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

// Notifier is the slice of the notification dispatcher the service needs.
type Notifier interface {
	SendTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*notification.Notification, error)
}

type Service struct {
	grants   Repository
	notifier Notifier
}

func NewService(grants Repository, notifier Notifier) *Service {
	return &Service{grants: grants, notifier: notifier}
}

// GrantParams describes a share request. Exactly one of RecipientEmail and
// SponsorID must be set.
type GrantParams struct {
	PatientID      uuid.UUID  `json:"patient_id"`
	ResultID       uuid.UUID  `json:"result_id"`
	RecipientEmail *string    `json:"recipient_email,omitempty"`
	SponsorID      *uuid.UUID `json:"sponsor_id,omitempty"`
	AccessLevel    string     `json:"access_level"`
	ValidityDays   int        `json:"validity_days"`
}

// Grant creates a share. A new sponsor grant replaces the patient's existing
// active grant toward that sponsor for the same result, so at most one is
// live at a time.
func (s *Service) Grant(ctx context.Context, p GrantParams, now time.Time) (*ShareGrant, error) {
	if p.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required: %w", xerrors.ErrInvalidInput)
	}
	if p.ResultID == uuid.Nil {
		return nil, fmt.Errorf("result_id is required: %w", xerrors.ErrInvalidInput)
	}
	hasEmail := p.RecipientEmail != nil && *p.RecipientEmail != ""
	hasSponsor := p.SponsorID != nil && *p.SponsorID != uuid.Nil
	if hasEmail == hasSponsor {
		return nil, fmt.Errorf("exactly one of recipient_email and sponsor_id is required: %w", xerrors.ErrInvalidInput)
	}
	switch p.AccessLevel {
	case "":
		p.AccessLevel = AccessSummary
	case AccessSummary, AccessFull:
	default:
		return nil, fmt.Errorf("invalid access_level %q: %w", p.AccessLevel, xerrors.ErrInvalidInput)
	}
	days := p.ValidityDays
	if days <= 0 {
		days = DefaultValidityDays
	}

	if hasSponsor {
		prior, err := s.grants.ActiveSponsorGrant(ctx, p.PatientID, *p.SponsorID, p.ResultID)
		switch {
		case err == nil:
			// A prior grant past its deadline is recorded as expired, not
			// revoked; only a live one gets revoked by the replacement.
			s.expireIfDue(ctx, prior, now)
			if prior.Status == StatusActive {
				prior.Revoke(now)
				if err := s.grants.Update(ctx, prior); err != nil {
					return nil, err
				}
			}
		case errors.Is(err, xerrors.ErrNotFound):
		default:
			return nil, err
		}
	}

	g := &ShareGrant{
		PatientID:      p.PatientID,
		ResultID:       p.ResultID,
		RecipientEmail: p.RecipientEmail,
		SponsorID:      p.SponsorID,
		AccessLevel:    p.AccessLevel,
		Status:         StatusActive,
		GrantedAt:      now.UTC(),
		ExpiresAt:      now.UTC().AddDate(0, 0, days),
	}
	if err := s.grants.Create(ctx, g); err != nil {
		return nil, err
	}

	if s.notifier != nil && hasEmail {
		_, _ = s.notifier.SendTemplate(ctx, notification.TemplateResultShared, map[string]string{
			"access_level": g.AccessLevel,
			"expires_at":   g.ExpiresAt.Format("2006-01-02"),
		}, *p.RecipientEmail)
	}
	return g, nil
}

// Revoke closes a grant on the patient's behalf. Revoking a grant that is
// already revoked or already expired succeeds without changing it, so the
// first revocation timestamp and the expired state both survive retries.
func (s *Service) Revoke(ctx context.Context, id uuid.UUID, now time.Time) (*ShareGrant, error) {
	g, err := s.grants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.expireIfDue(ctx, g, now)
	if g.Status != StatusActive {
		return g, nil
	}
	g.Revoke(now)
	if err := s.grants.Update(ctx, g); err != nil {
		return nil, err
	}
	if s.notifier != nil && g.RecipientEmail != nil {
		_, _ = s.notifier.SendTemplate(ctx, notification.TemplateShareRevoked, nil, *g.RecipientEmail)
	}
	return g, nil
}

// Get returns a grant, persisting lazy expiry first.
func (s *Service) Get(ctx context.Context, id uuid.UUID, now time.Time) (*ShareGrant, error) {
	g, err := s.grants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.expireIfDue(ctx, g, now)
	return g, nil
}

// CheckAccess reports whether a grant currently allows the recipient to view
// the shared result.
func (s *Service) CheckAccess(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	g, err := s.Get(ctx, id, now)
	if err != nil {
		return false, err
	}
	return g.IsAccessible(now), nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, now time.Time, limit, offset int) ([]*ShareGrant, int, error) {
	items, total, err := s.grants.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, g := range items {
		s.expireIfDue(ctx, g, now)
	}
	return items, total, nil
}

func (s *Service) ListBySponsor(ctx context.Context, sponsorID uuid.UUID, now time.Time, limit, offset int) ([]*ShareGrant, int, error) {
	items, total, err := s.grants.ListBySponsor(ctx, sponsorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, g := range items {
		s.expireIfDue(ctx, g, now)
	}
	return items, total, nil
}

// ListByResult returns every grant ever issued for a result, including
// expired and revoked ones, which stay visible for audit.
func (s *Service) ListByResult(ctx context.Context, resultID uuid.UUID, now time.Time, limit, offset int) ([]*ShareGrant, int, error) {
	items, total, err := s.grants.ListByResult(ctx, resultID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, g := range items {
		s.expireIfDue(ctx, g, now)
	}
	return items, total, nil
}

func (s *Service) expireIfDue(ctx context.Context, g *ShareGrant, now time.Time) {
	if g.Status == StatusActive && now.After(g.ExpiresAt) {
		g.Status = StatusExpired
		_ = s.grants.Update(ctx, g)
	}
}
