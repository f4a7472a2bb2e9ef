package wallet

import (
	"time"

	"github.com/google/uuid"
)

// Withdrawal request states. The request walks form -> confirm -> processing
// and settles as success or failed; cancellation is only possible before
// processing starts.
const (
	StatusForm       = "form"
	StatusConfirm    = "confirm"
	StatusProcessing = "processing"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Wallet maps to the wallet table. One row per diagnostic center; the
// balance accrues from redeemed assessments net of platform commission.
type Wallet struct {
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Balance   float64   `db:"balance" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// WithdrawalRequest maps to the withdrawal_request table.
type WithdrawalRequest struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	OwnerID       uuid.UUID  `db:"owner_id" json:"owner_id"`
	Amount        float64    `db:"amount" json:"amount"`
	Fee           float64    `db:"fee" json:"fee"`
	Net           float64    `db:"net" json:"net"`
	BankName      string     `db:"bank_name" json:"bank_name"`
	AccountNumber string     `db:"account_number" json:"account_number"`
	AccountName   string     `db:"account_name" json:"account_name"`
	Status        string     `db:"status" json:"status"`
	FailureReason *string    `db:"failure_reason" json:"failure_reason,omitempty"`
	GatewayRef    *string    `db:"gateway_ref" json:"gateway_ref,omitempty"`
	RequestedAt   time.Time  `db:"requested_at" json:"requested_at"`
	SettledAt     *time.Time `db:"settled_at" json:"settled_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// CanCancel reports whether the request is still before the point of no
// return. Once processing starts the payout is committed.
func (w *WithdrawalRequest) CanCancel() bool {
	return w.Status == StatusForm || w.Status == StatusConfirm
}
