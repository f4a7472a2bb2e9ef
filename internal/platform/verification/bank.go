// Package verification resolves bank account names ahead of withdrawal
// confirmation. The resolver is a black-box collaborator: the HTTP client
// talks to the payment provider's name-enquiry endpoint, and the static
// resolver backs development and tests.
package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

// AccountVerifier resolves the registered holder name for a bank account.
// Implementations return xerrors.ErrNotFound for unknown accounts and
// xerrors.ErrExternalFailure when the provider cannot be reached.
type AccountVerifier interface {
	VerifyAccount(ctx context.Context, bankName, accountNumber string) (string, error)
}

// HTTPVerifier calls a name-enquiry REST endpoint.
type HTTPVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPVerifier creates a verifier against the given provider base URL.
func NewHTTPVerifier(baseURL, apiKey string) *HTTPVerifier {
	return &HTTPVerifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type enquiryResponse struct {
	AccountName string `json:"account_name"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// VerifyAccount performs a name enquiry. A 404 from the provider maps to
// ErrNotFound; transport errors and 5xx responses map to ErrExternalFailure.
func (v *HTTPVerifier) VerifyAccount(ctx context.Context, bankName, accountNumber string) (string, error) {
	q := url.Values{}
	q.Set("bank", bankName)
	q.Set("account_number", accountNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/resolve?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build enquiry request: %w", err)
	}
	if v.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("name enquiry: %w: %v", xerrors.ErrExternalFailure, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("account %s at %s: %w", accountNumber, bankName, xerrors.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("name enquiry returned %d: %w", resp.StatusCode, xerrors.ErrExternalFailure)
	}

	var body enquiryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode enquiry response: %w: %v", xerrors.ErrExternalFailure, err)
	}
	if body.AccountName == "" {
		return "", fmt.Errorf("empty account name in enquiry response: %w", xerrors.ErrExternalFailure)
	}
	return body.AccountName, nil
}

// StaticVerifier resolves accounts from an in-memory table. Development and
// test use.
type StaticVerifier struct {
	mu       sync.RWMutex
	accounts map[string]string // bank + ":" + accountNumber -> accountName
}

// NewStaticVerifier creates an empty static resolver.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{accounts: make(map[string]string)}
}

// Register adds an account to the table.
func (v *StaticVerifier) Register(bankName, accountNumber, accountName string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.accounts[bankName+":"+accountNumber] = accountName
}

func (v *StaticVerifier) VerifyAccount(_ context.Context, bankName, accountNumber string) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	name, ok := v.accounts[bankName+":"+accountNumber]
	if !ok {
		return "", fmt.Errorf("account %s at %s: %w", accountNumber, bankName, xerrors.ErrNotFound)
	}
	return name, nil
}
