package domain

import "time"

const (
	AccountStatusActive   = "active"
	AccountStatusDisabled = "disabled"
)

// Account is a registered identity held by the account directory.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Role         Role      `json:"role"`
	Status       string    `json:"status"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *Account) IsActive() bool {
	return a != nil && a.Status == AccountStatusActive
}

// Identity converts the account into the collaborator response shape.
func (a *Account) Identity(token string) *Identity {
	return &Identity{
		ID:           a.ID,
		Email:        a.Email,
		DisplayName:  a.DisplayName,
		AvatarURL:    a.AvatarURL,
		Role:         a.Role,
		DisplayToken: token,
	}
}
