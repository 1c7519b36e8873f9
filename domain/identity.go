package domain

// Identity is what the identity collaborator asserts after a successful
// credential check or provider handshake.
type Identity struct {
	ID           string
	Email        string
	DisplayName  string
	AvatarURL    string
	Role         Role
	DisplayToken string
}

// Session builds the session record for this identity.
func (i *Identity) Session() *Session {
	if i == nil {
		return nil
	}
	return &Session{
		ID:          i.ID,
		Email:       i.Email,
		DisplayName: i.DisplayName,
		AvatarURL:   i.AvatarURL,
		Role:        i.Role,
		AccessToken: i.DisplayToken,
	}
}

// SocialProvider names a supported third-party login.
type SocialProvider string

const (
	ProviderGoogle SocialProvider = "google"
	ProviderNaver  SocialProvider = "naver"
	ProviderKakao  SocialProvider = "kakao"
)

func (p SocialProvider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderNaver, ProviderKakao:
		return true
	}
	return false
}
