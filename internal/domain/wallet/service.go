package wallet

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/zivahealth/ziva/internal/platform/notification"
	"github.com/zivahealth/ziva/internal/platform/verification"
	"github.com/zivahealth/ziva/internal/platform/xerrors"
)

// FeePolicy supplies the withdrawal thresholds, normally backed by platform
// settings.
type FeePolicy interface {
	WithdrawalPolicy(ctx context.Context) (threshold, flatFee, minAmount float64, err error)
}

// StaticFeePolicy returns fixed values. Fallback and test use.
type StaticFeePolicy struct {
	Threshold float64
	FlatFee   float64
	MinAmount float64
}

func (p StaticFeePolicy) WithdrawalPolicy(context.Context) (float64, float64, float64, error) {
	return p.Threshold, p.FlatFee, p.MinAmount, nil
}

// Notifier is the slice of the notification dispatcher the service needs.
type Notifier interface {
	SendTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*notification.Notification, error)
}

type Service struct {
	wallets     WalletRepository
	withdrawals WithdrawalRepository
	verifier    verification.AccountVerifier
	gateway     PaymentGateway
	policy      FeePolicy
	notifier    Notifier
}

func NewService(
	wallets WalletRepository,
	withdrawals WithdrawalRepository,
	verifier verification.AccountVerifier,
	gateway PaymentGateway,
	policy FeePolicy,
	notifier Notifier,
) *Service {
	if policy == nil {
		policy = StaticFeePolicy{
			Threshold: DefaultFeeWaiverThreshold,
			FlatFee:   DefaultFlatFee,
			MinAmount: DefaultMinWithdrawal,
		}
	}
	return &Service{
		wallets:     wallets,
		withdrawals: withdrawals,
		verifier:    verifier,
		gateway:     gateway,
		policy:      policy,
		notifier:    notifier,
	}
}

// Balance returns the owner's wallet, creating it on first access.
func (s *Service) Balance(ctx context.Context, ownerID uuid.UUID) (*Wallet, error) {
	return s.wallets.GetOrCreate(ctx, ownerID)
}

// CreditEarnings adds redeemed-assessment earnings to a center's wallet.
func (s *Service) CreditEarnings(ctx context.Context, ownerID uuid.UUID, amount float64) (*Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive: %w", xerrors.ErrInvalidInput)
	}
	return s.wallets.Credit(ctx, ownerID, amount)
}

// Start opens a withdrawal request in the form state. The fee and net payout
// are fixed here so the amounts the owner confirms are the amounts settled.
func (s *Service) Start(ctx context.Context, ownerID uuid.UUID, amount float64) (*WithdrawalRequest, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("owner_id is required: %w", xerrors.ErrInvalidInput)
	}
	threshold, flatFee, minAmount, err := s.policy.WithdrawalPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if amount < minAmount {
		return nil, fmt.Errorf("amount %.2f below minimum withdrawal %.2f: %w", amount, minAmount, xerrors.ErrInvalidInput)
	}
	w, err := s.wallets.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if amount > w.Balance {
		return nil, fmt.Errorf("amount %.2f exceeds balance %.2f: %w", amount, w.Balance, xerrors.ErrInvalidInput)
	}

	fee := WithdrawalFee(amount, threshold, flatFee)
	req := &WithdrawalRequest{
		OwnerID:     ownerID,
		Amount:      amount,
		Fee:         fee,
		Net:         NetPayout(amount, fee),
		Status:      StatusForm,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.withdrawals.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// SubmitAccount attaches verified bank details and advances form -> confirm.
// The resolved account holder name is stored for the owner to confirm against.
func (s *Service) SubmitAccount(ctx context.Context, id uuid.UUID, bankName, accountNumber string) (*WithdrawalRequest, error) {
	req, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusForm {
		return nil, fmt.Errorf("cannot submit account details from state %q: %w", req.Status, xerrors.ErrConflict)
	}
	if bankName == "" {
		return nil, fmt.Errorf("bank_name is required: %w", xerrors.ErrInvalidInput)
	}
	if !IsValidAccountNumber(accountNumber) {
		return nil, fmt.Errorf("account number must be 10 digits: %w", xerrors.ErrMalformed)
	}

	accountName, err := s.verifier.VerifyAccount(ctx, bankName, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("verify account: %w", err)
	}

	req.BankName = bankName
	req.AccountNumber = accountNumber
	req.AccountName = accountName
	req.Status = StatusConfirm
	if err := s.withdrawals.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Confirm commits the withdrawal: confirm -> processing, debit, payout, then
// success or failed. A gateway failure refunds the debit so the balance is
// never reduced by a payout that did not happen.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID, smsRecipient string) (*WithdrawalRequest, error) {
	req, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusConfirm {
		return nil, fmt.Errorf("cannot confirm from state %q: %w", req.Status, xerrors.ErrConflict)
	}

	req.Status = StatusProcessing
	if err := s.withdrawals.Update(ctx, req); err != nil {
		return nil, err
	}
	if _, err := s.wallets.Debit(ctx, req.OwnerID, req.Amount); err != nil {
		req.Status = StatusFailed
		reason := "insufficient balance at settlement"
		req.FailureReason = &reason
		_ = s.withdrawals.Update(ctx, req)
		return req, err
	}

	ref, payErr := s.gateway.Payout(ctx, req.BankName, req.AccountNumber, req.Net)
	settledAt := time.Now().UTC()
	req.SettledAt = &settledAt
	if payErr != nil {
		req.Status = StatusFailed
		reason := payErr.Error()
		req.FailureReason = &reason
		if err := s.withdrawals.Update(ctx, req); err != nil {
			return nil, err
		}
		// Refund the debit; the transfer never left.
		_, _ = s.wallets.Credit(ctx, req.OwnerID, req.Amount)
		s.notifySettled(ctx, req, smsRecipient)
		return req, fmt.Errorf("payout: %v: %w", payErr, xerrors.ErrExternalFailure)
	}

	req.Status = StatusSuccess
	req.GatewayRef = &ref
	if err := s.withdrawals.Update(ctx, req); err != nil {
		return nil, err
	}
	s.notifySettled(ctx, req, smsRecipient)
	return req, nil
}

// Cancel abandons a request that has not started processing.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error) {
	req, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.CanCancel() {
		return nil, fmt.Errorf("cannot cancel from state %q: %w", req.Status, xerrors.ErrConflict)
	}
	req.Status = StatusCancelled
	if err := s.withdrawals.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error) {
	return s.withdrawals.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*WithdrawalRequest, int, error) {
	return s.withdrawals.ListByOwner(ctx, ownerID, limit, offset)
}

func (s *Service) notifySettled(ctx context.Context, req *WithdrawalRequest, recipient string) {
	if s.notifier == nil || recipient == "" {
		return
	}
	amount := strconv.FormatFloat(req.Amount, 'f', -1, 64)
	if req.Status == StatusSuccess {
		_, _ = s.notifier.SendTemplate(ctx, notification.TemplateWithdrawalPaid, map[string]string{
			"amount":         amount,
			"bank_name":      req.BankName,
			"account_number": req.AccountNumber,
			"net":            strconv.FormatFloat(req.Net, 'f', -1, 64),
		}, recipient)
		return
	}
	reason := ""
	if req.FailureReason != nil {
		reason = *req.FailureReason
	}
	_, _ = s.notifier.SendTemplate(ctx, notification.TemplateWithdrawalFailed, map[string]string{
		"amount": amount,
		"reason": reason,
	}, recipient)
}
