package sharing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zivahealth/ziva/internal/platform/notification"
	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

type mockRepo struct{ store map[uuid.UUID]*ShareGrant }

func newMockRepo() *mockRepo { return &mockRepo{store: make(map[uuid.UUID]*ShareGrant)} }
func (m *mockRepo) Create(_ context.Context, g *ShareGrant) error {
	g.ID = uuid.New()
	m.store[g.ID] = g
	return nil
}
func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*ShareGrant, error) {
	g, ok := m.store[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return g, nil
}
func (m *mockRepo) Update(_ context.Context, g *ShareGrant) error {
	if _, ok := m.store[g.ID]; !ok {
		return xerrors.ErrNotFound
	}
	m.store[g.ID] = g
	return nil
}
func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*ShareGrant, int, error) {
	var r []*ShareGrant
	for _, g := range m.store {
		if g.PatientID == patientID {
			r = append(r, g)
		}
	}
	return r, len(r), nil
}
func (m *mockRepo) ListBySponsor(_ context.Context, sponsorID uuid.UUID, limit, offset int) ([]*ShareGrant, int, error) {
	var r []*ShareGrant
	for _, g := range m.store {
		if g.SponsorID != nil && *g.SponsorID == sponsorID {
			r = append(r, g)
		}
	}
	return r, len(r), nil
}
func (m *mockRepo) ListByResult(_ context.Context, resultID uuid.UUID, limit, offset int) ([]*ShareGrant, int, error) {
	var r []*ShareGrant
	for _, g := range m.store {
		if g.ResultID == resultID {
			r = append(r, g)
		}
	}
	return r, len(r), nil
}
func (m *mockRepo) ActiveSponsorGrant(_ context.Context, patientID, sponsorID, resultID uuid.UUID) (*ShareGrant, error) {
	for _, g := range m.store {
		if g.PatientID == patientID && g.SponsorID != nil && *g.SponsorID == sponsorID &&
			g.ResultID == resultID && g.Status == StatusActive {
			return g, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func newTestService() (*Service, *notification.MockEmailSender) {
	email := &notification.MockEmailSender{}
	d := notification.NewDispatcher(email, &notification.MockSMSSender{}, notification.NewTemplateEngine(), 1)
	return NewService(newMockRepo(), d), email
}

func strPtr(s string) *string { return &s }

func grantToRecipient(t *testing.T, svc *Service, at time.Time) *ShareGrant {
	t.Helper()
	g, err := svc.Grant(context.Background(), GrantParams{
		PatientID:      uuid.New(),
		ResultID:       uuid.New(),
		RecipientEmail: strPtr("doc@example.com"),
	}, at)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	return g
}

func TestGrant_DefaultValidity(t *testing.T) {
	svc, email := newTestService()
	g := grantToRecipient(t, svc, t0)

	if g.Status != StatusActive {
		t.Errorf("expected active, got %s", g.Status)
	}
	want := t0.AddDate(0, 0, DefaultValidityDays)
	if !g.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, g.ExpiresAt)
	}
	if g.AccessLevel != AccessSummary {
		t.Errorf("expected default summary access, got %s", g.AccessLevel)
	}
	if len(email.Calls()) != 1 {
		t.Errorf("expected recipient to be notified, got %d calls", len(email.Calls()))
	}
}

func TestGrant_RequiresExactlyOneTarget(t *testing.T) {
	svc, _ := newTestService()

	sponsorID := uuid.New()
	cases := []GrantParams{
		{PatientID: uuid.New(), ResultID: uuid.New()}, // neither
		{PatientID: uuid.New(), ResultID: uuid.New(), RecipientEmail: strPtr("doc@example.com"), SponsorID: &sponsorID}, // both
	}
	for i, p := range cases {
		if _, err := svc.Grant(context.Background(), p, t0); !errors.Is(err, xerrors.ErrInvalidInput) {
			t.Errorf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestGrant_InvalidAccessLevel(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Grant(context.Background(), GrantParams{
		PatientID:      uuid.New(),
		ResultID:       uuid.New(),
		RecipientEmail: strPtr("doc@example.com"),
		AccessLevel:    "root",
	}, t0)
	if !errors.Is(err, xerrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGrant_SponsorReplacesActiveGrant(t *testing.T) {
	svc, _ := newTestService()
	patientID := uuid.New()
	sponsorID := uuid.New()
	resultID := uuid.New()

	p := GrantParams{PatientID: patientID, ResultID: resultID, SponsorID: &sponsorID}
	first, err := svc.Grant(context.Background(), p, t0)
	if err != nil {
		t.Fatalf("first grant: %v", err)
	}
	second, err := svc.Grant(context.Background(), p, t0.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("second grant: %v", err)
	}

	firstNow, err := svc.Get(context.Background(), first.ID, t0.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	if firstNow.Status != StatusRevoked {
		t.Errorf("expected first grant revoked after replacement, got %s", firstNow.Status)
	}
	if !second.IsAccessible(t0.AddDate(0, 0, 2)) {
		t.Error("expected replacement grant to be accessible")
	}
}

func TestRevoke_ClosesAccessNextRead(t *testing.T) {
	svc, email := newTestService()
	g := grantToRecipient(t, svc, t0)

	if _, err := svc.Revoke(context.Background(), g.ID, t0.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err := svc.CheckAccess(context.Background(), g.ID, t0.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("check access: %v", err)
	}
	if ok {
		t.Error("expected access closed after revocation")
	}
	// grant + revoke notifications
	if len(email.Calls()) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(email.Calls()))
	}
}

func TestServiceRevoke_Idempotent(t *testing.T) {
	svc, email := newTestService()
	g := grantToRecipient(t, svc, t0)

	first, err := svc.Revoke(context.Background(), g.ID, t0.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	stamp := *first.RevokedAt

	second, err := svc.Revoke(context.Background(), g.ID, t0.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("second revoke must succeed: %v", err)
	}
	if !second.RevokedAt.Equal(stamp) {
		t.Error("second revoke must not move the revocation timestamp")
	}
	// No second revocation notification.
	if len(email.Calls()) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(email.Calls()))
	}
}

func TestRevoke_AfterExpiryRecordsExpired(t *testing.T) {
	svc, email := newTestService()
	g := grantToRecipient(t, svc, t0)

	// The stored row is still active but the clock has passed the deadline,
	// so revoking must settle the grant as expired, not revoked.
	got, err := svc.Revoke(context.Background(), g.ID, t0.AddDate(0, 0, 8))
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if got.Status != StatusExpired {
		t.Errorf("expected expired status, got %s", got.Status)
	}
	if got.RevokedAt != nil {
		t.Error("expected no revocation timestamp on an expired grant")
	}
	stored, err := svc.Get(context.Background(), g.ID, t0.AddDate(0, 0, 8))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusExpired {
		t.Errorf("expected persisted expired status, got %s", stored.Status)
	}
	// Only the grant notification; nothing was revoked.
	if len(email.Calls()) != 1 {
		t.Errorf("expected 1 notification, got %d", len(email.Calls()))
	}
}

func TestRevoke_Unknown(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Revoke(context.Background(), uuid.New(), t0)
	if !errors.Is(err, xerrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckAccess_LazyExpiryPersisted(t *testing.T) {
	svc, _ := newTestService()
	g := grantToRecipient(t, svc, t0)

	ok, err := svc.CheckAccess(context.Background(), g.ID, t0.AddDate(0, 0, 8))
	if err != nil {
		t.Fatalf("check access: %v", err)
	}
	if ok {
		t.Error("expected access closed past the validity window")
	}
	stored, err := svc.Get(context.Background(), g.ID, t0.AddDate(0, 0, 8))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusExpired {
		t.Errorf("expected persisted expired status, got %s", stored.Status)
	}
}

func TestListByPatient(t *testing.T) {
	svc, _ := newTestService()
	patientID := uuid.New()
	for i := 0; i < 2; i++ {
		if _, err := svc.Grant(context.Background(), GrantParams{
			PatientID:      patientID,
			ResultID:       uuid.New(),
			RecipientEmail: strPtr("doc@example.com"),
		}, t0); err != nil {
			t.Fatalf("grant: %v", err)
		}
	}
	grantToRecipient(t, svc, t0) // different patient

	items, total, err := svc.ListByPatient(context.Background(), patientID, t0, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 grants, got %d", total)
	}
}

func TestListByResult_KeepsRevokedForAudit(t *testing.T) {
	svc, _ := newTestService()
	patientID := uuid.New()
	sponsorID := uuid.New()
	resultID := uuid.New()

	p := GrantParams{PatientID: patientID, ResultID: resultID, SponsorID: &sponsorID}
	if _, err := svc.Grant(context.Background(), p, t0); err != nil {
		t.Fatalf("first grant: %v", err)
	}
	// Replacement revokes the first grant but both stay listed.
	if _, err := svc.Grant(context.Background(), p, t0.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("second grant: %v", err)
	}

	items, total, err := svc.ListByResult(context.Background(), resultID, t0.AddDate(0, 0, 2), 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected both grants listed, got %d", total)
	}
	statuses := map[string]int{}
	for _, g := range items {
		statuses[g.Status]++
	}
	if statuses[StatusRevoked] != 1 || statuses[StatusActive] != 1 {
		t.Errorf("expected one revoked and one active grant, got %v", statuses)
	}
}
