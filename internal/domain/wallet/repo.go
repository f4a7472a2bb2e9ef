package wallet

import (
	"context"

	"github.com/google/uuid"
)

type WalletRepository interface {
	// GetOrCreate returns the owner's wallet, creating a zero-balance row on
	// first access.
	GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*Wallet, error)
	Credit(ctx context.Context, ownerID uuid.UUID, amount float64) (*Wallet, error)
	// Debit fails with ErrInvalidInput when the balance cannot cover amount.
	Debit(ctx context.Context, ownerID uuid.UUID, amount float64) (*Wallet, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, w *WithdrawalRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error)
	Update(ctx context.Context, w *WithdrawalRequest) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*WithdrawalRequest, int, error)
}
