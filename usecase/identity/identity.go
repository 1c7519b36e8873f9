package identity

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/academy/domain"
	"github.com/fastygo/academy/repository"
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenSigner issues the display token returned with every identity.
type TokenSigner interface {
	Issue(identity *domain.Identity) (string, error)
}

// UseCase is the account-backed identity directory. Roles come from the
// stored account, never from the email.
type UseCase struct {
	accounts repository.AccountRepository
	hasher   PasswordHasher
	tokens   TokenSigner
	avatars  string
	logger   *zap.Logger
}

func New(accounts repository.AccountRepository, hasher PasswordHasher, tokens TokenSigner, avatarBaseURL string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		avatars:  avatarBaseURL,
		logger:   logger,
	}
}

func (uc *UseCase) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	account, err := uc.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.IsActive() {
		uc.logger.Info("login for inactive account", zap.String("account_id", account.ID))
		return nil, domain.ErrInvalidCredentials
	}
	if err := uc.hasher.Compare(account.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return uc.identity(account)
}

func (uc *UseCase) Register(ctx context.Context, email, password, displayName string, role domain.Role) (*domain.Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}
	if !role.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown role")
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		AvatarURL:    uc.avatarURL(email),
		Role:         role,
		Status:       domain.AccountStatusActive,
		PasswordHash: hash,
	}
	if err := uc.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	uc.logger.Info("account registered", zap.String("account_id", account.ID), zap.String("role", string(role)))
	return uc.identity(account)
}

func (uc *UseCase) identity(account *domain.Account) (*domain.Identity, error) {
	identity := account.Identity("")
	if uc.tokens == nil {
		return identity, nil
	}
	token, err := uc.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	identity.DisplayToken = token
	return identity, nil
}

func (uc *UseCase) avatarURL(email string) string {
	if uc.avatars == "" {
		return ""
	}
	return uc.avatars + url.QueryEscape(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ repository.IdentityDirectory = (*UseCase)(nil)
