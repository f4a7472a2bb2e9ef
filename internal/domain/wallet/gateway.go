package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// PaymentGateway executes bank payouts. Implementations return an opaque
// transfer reference on success.
type PaymentGateway interface {
	Payout(ctx context.Context, bankName, accountNumber string, amount float64) (ref string, err error)
}

// DevGateway approves every payout. Development use only.
type DevGateway struct{}

func (DevGateway) Payout(_ context.Context, _, _ string, _ float64) (string, error) {
	return "dev-" + uuid.New().String(), nil
}

// MockGateway is a scriptable test double.
type MockGateway struct {
	mu         sync.Mutex
	calls      int
	ShouldFail bool
	FailReason string
}

func (m *MockGateway) Payout(_ context.Context, _, _ string, _ float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.ShouldFail {
		reason := m.FailReason
		if reason == "" {
			reason = "transfer declined"
		}
		return "", errors.New(reason)
	}
	return fmt.Sprintf("mock-%d", m.calls), nil
}

// Calls returns how many payouts were attempted.
func (m *MockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
