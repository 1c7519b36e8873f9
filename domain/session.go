package domain

import (
	"encoding/json"
	"strings"
)

// Role is the authorization level carried by a session.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// ParseRole normalizes user input; empty input yields the student role.
func ParseRole(value string) (Role, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return RoleStudent, nil
	}
	role := Role(value)
	if !role.Valid() {
		return "", NewError(ErrCodeInvalid, "unknown role")
	}
	return role, nil
}

// Session is the authenticated identity for the current process.
// It is replaced wholesale on login and never patched field by field.
type Session struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Role        Role   `json:"role"`
	AccessToken string `json:"access_token,omitempty"`
}

// Validate reports whether the session can be treated as authenticated.
func (s *Session) Validate() error {
	if s == nil {
		return ErrCorruptSession
	}
	if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Email) == "" {
		return WrapError(ErrCodeCorrupt, "session is missing identity fields", ErrCorruptSession)
	}
	if !s.Role.Valid() {
		return WrapError(ErrCodeCorrupt, "session role is invalid", ErrCorruptSession)
	}
	return nil
}

// Public returns a copy without the access token, suitable for API responses.
func (s Session) Public() Session {
	s.AccessToken = ""
	return s
}

// EncodeSession serializes the session for the durable store.
func EncodeSession(s *Session) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, WrapError(ErrCodeInvalid, "refusing to persist invalid session", err)
	}
	return json.Marshal(s)
}

// DecodeSession parses a persisted record. Any parse or validation failure
// is reported as ErrCorruptSession.
func DecodeSession(raw []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, WrapError(ErrCodeCorrupt, "session record unreadable", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// AuthorizationView is derived from the current session on every read.
type AuthorizationView struct {
	IsAuthenticated bool `json:"is_authenticated"`
	IsInstructor    bool `json:"is_instructor"`
	IsAdmin         bool `json:"is_admin"`
}

// Authorize projects a session into authorization flags. A nil session is
// unauthenticated.
func Authorize(s *Session) AuthorizationView {
	if s == nil {
		return AuthorizationView{}
	}
	return AuthorizationView{
		IsAuthenticated: true,
		IsInstructor:    s.Role == RoleInstructor || s.Role == RoleAdmin,
		IsAdmin:         s.Role == RoleAdmin,
	}
}

// LandingPath is where the front end sends a user right after login.
func LandingPath(role Role) string {
	switch role {
	case RoleAdmin:
		return "/admin"
	case RoleInstructor:
		return "/course-upload"
	default:
		return "/"
	}
}
