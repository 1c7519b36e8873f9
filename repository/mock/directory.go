// Package mock provides in-process stand-ins for the identity collaborator.
// Role assignment here is demo behaviour isolated behind RolePolicy and
// ProviderRolePolicy; a real directory asserts roles server-side.
package mock

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/fastygo/academy/domain"
	"github.com/fastygo/academy/repository"
)

const avatarBaseURL = "https://api.dicebear.com/7.x/bottts/svg?seed="

// RolePolicy infers a role from a login email.
type RolePolicy func(email string) domain.Role

// EmailHeuristicRole treats emails mentioning "instructor" or "teacher" as
// instructors and everyone else as students.
func EmailHeuristicRole(email string) domain.Role {
	lower := strings.ToLower(email)
	if strings.Contains(lower, "instructor") || strings.Contains(lower, "teacher") {
		return domain.RoleInstructor
	}
	return domain.RoleStudent
}

// TokenSigner issues display tokens for identities.
type TokenSigner interface {
	Issue(identity *domain.Identity) (string, error)
}

// Directory accepts any non-empty credentials.
type Directory struct {
	roles  RolePolicy
	tokens TokenSigner
}

func NewDirectory(roles RolePolicy, tokens TokenSigner) *Directory {
	if roles == nil {
		roles = EmailHeuristicRole
	}
	return &Directory{roles: roles, tokens: tokens}
}

func (d *Directory) Authenticate(ctx context.Context, email, password string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	identity := &domain.Identity{
		ID:          accountID(email),
		Email:       email,
		DisplayName: localPart(email),
		AvatarURL:   avatarURL(email),
		Role:        d.roles(email),
	}
	return d.sign(identity)
}

func (d *Directory) Register(ctx context.Context, email, password, displayName string, role domain.Role) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}
	if displayName == "" {
		displayName = localPart(email)
	}
	identity := &domain.Identity{
		ID:          accountID(email),
		Email:       email,
		DisplayName: displayName,
		AvatarURL:   avatarURL(email),
		Role:        role,
	}
	return d.sign(identity)
}

func (d *Directory) sign(identity *domain.Identity) (*domain.Identity, error) {
	if d.tokens == nil {
		return identity, nil
	}
	token, err := d.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	identity.DisplayToken = token
	return identity, nil
}

// accountID is stable per email so re-login yields the same identifier.
func accountID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(email))).String()
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func avatarURL(seed string) string {
	return avatarBaseURL + url.QueryEscape(seed)
}

var _ repository.IdentityDirectory = (*Directory)(nil)
