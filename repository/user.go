package repository

import (
	"context"

	"github.com/fastygo/academy/domain"
)

type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
}

// PushTokenRepository records device push tokens per account.
type PushTokenRepository interface {
	Add(ctx context.Context, accountID, token string) error
	List(ctx context.Context, accountID string) ([]string, error)
}
