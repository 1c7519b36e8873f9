package mock

import (
	"context"
	"time"

	"github.com/fastygo/academy/domain"
	"github.com/fastygo/academy/repository"
)

// ProviderRolePolicy maps a social provider to the role it grants.
type ProviderRolePolicy func(provider domain.SocialProvider) domain.Role

// KakaoInstructorRole grants instructor to kakao logins.
func KakaoInstructorRole(provider domain.SocialProvider) domain.Role {
	if provider == domain.ProviderKakao {
		return domain.RoleInstructor
	}
	return domain.RoleStudent
}

// Social completes a provider handshake after a fixed delay.
type Social struct {
	delay  time.Duration
	roles  ProviderRolePolicy
	tokens TokenSigner
}

func NewSocial(delay time.Duration, roles ProviderRolePolicy, tokens TokenSigner) *Social {
	if delay < 0 {
		delay = 0
	}
	if roles == nil {
		roles = KakaoInstructorRole
	}
	return &Social{delay: delay, roles: roles, tokens: tokens}
}

func (s *Social) Complete(ctx context.Context, provider domain.SocialProvider) (*domain.Identity, error) {
	if !provider.Valid() {
		return nil, domain.ErrUnknownProvider
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	email := "user@" + string(provider) + ".com"
	identity := &domain.Identity{
		ID:          accountID(email),
		Email:       email,
		DisplayName: string(provider) + "User",
		AvatarURL:   avatarURL(string(provider)),
		Role:        s.roles(provider),
	}
	if s.tokens != nil {
		token, err := s.tokens.Issue(identity)
		if err != nil {
			return nil, err
		}
		identity.DisplayToken = token
	}
	return identity, nil
}

var _ repository.SocialProvider = (*Social)(nil)
