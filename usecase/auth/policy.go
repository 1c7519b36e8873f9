package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/fastygo/academy/domain"
)

const (
	DefaultOperatorEmail    = "admin@naver.com"
	DefaultOperatorPassword = "123456"
)

// OperatorPolicy recognizes a privileged account that bypasses the identity
// directory and reserves its email against registration.
type OperatorPolicy interface {
	Authenticate(email, password string) (identity *domain.Identity, matched bool, err error)
	Reserved(email string) bool
}

// TokenSigner issues display tokens.
type TokenSigner interface {
	Issue(identity *domain.Identity) (string, error)
}

// StaticOperator is a fixed credential pair that always logs in as admin.
// It exists for demo deployments and should be replaced by a provisioned
// admin account in the directory.
type StaticOperator struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	AvatarURL   string
	Tokens      TokenSigner
}

// NewStaticOperator returns the default operator account.
func NewStaticOperator(email, password string, tokens TokenSigner) *StaticOperator {
	if email == "" {
		email = DefaultOperatorEmail
	}
	if password == "" {
		password = DefaultOperatorPassword
	}
	return &StaticOperator{
		ID:          "admin-123",
		Email:       email,
		Password:    password,
		DisplayName: "관리자",
		AvatarURL:   "https://api.dicebear.com/7.x/bottts/svg?seed=admin",
		Tokens:      tokens,
	}
}

func (o *StaticOperator) Reserved(email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), o.Email)
}

func (o *StaticOperator) Authenticate(email, password string) (*domain.Identity, bool, error) {
	if !o.Reserved(email) || subtle.ConstantTimeCompare([]byte(password), []byte(o.Password)) != 1 {
		return nil, false, nil
	}
	identity := &domain.Identity{
		ID:          o.ID,
		Email:       o.Email,
		DisplayName: o.DisplayName,
		AvatarURL:   o.AvatarURL,
		Role:        domain.RoleAdmin,
	}
	if o.Tokens != nil {
		token, err := o.Tokens.Issue(identity)
		if err != nil {
			return nil, true, err
		}
		identity.DisplayToken = token
	}
	return identity, true, nil
}

// ReservedEmail keeps the operator email off-limits without granting the
// bypass: it never matches and the directory is never asked about it.
type ReservedEmail string

func (r ReservedEmail) Authenticate(string, string) (*domain.Identity, bool, error) {
	return nil, false, nil
}

func (r ReservedEmail) Reserved(email string) bool {
	return r != "" && strings.EqualFold(strings.TrimSpace(email), string(r))
}

// NoOperator disables the bypass and reserves nothing.
type NoOperator struct{}

func (NoOperator) Authenticate(string, string) (*domain.Identity, bool, error) {
	return nil, false, nil
}

func (NoOperator) Reserved(string) bool { return false }
