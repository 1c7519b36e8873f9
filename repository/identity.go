package repository

import (
	"context"

	"github.com/fastygo/academy/domain"
)

// IdentityDirectory validates credentials and asserts the account role.
type IdentityDirectory interface {
	Authenticate(ctx context.Context, email, password string) (*domain.Identity, error)
	Register(ctx context.Context, email, password, displayName string, role domain.Role) (*domain.Identity, error)
}

// SocialProvider completes a third-party login handshake. Implementations
// must return promptly once ctx is done.
type SocialProvider interface {
	Complete(ctx context.Context, provider domain.SocialProvider) (*domain.Identity, error)
}
