package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeSession(t *testing.T) {
	in := &Session{
		ID:          "123",
		Email:       "student.kim@example.com",
		DisplayName: "student.kim",
		AvatarURL:   "https://api.dicebear.com/7.x/bottts/svg?seed=student.kim%40example.com",
		Role:        RoleStudent,
		AccessToken: "token",
	}
	raw, err := EncodeSession(in)
	require.NoError(t, err)

	out, err := DecodeSession(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeSession_Corrupt(t *testing.T) {
	for _, raw := range []string{"", "null", "[]", `{"id":"1","email":"a@b.c"}`, `{"id":"","email":"a@b.c","role":"admin"}`} {
		_, err := DecodeSession([]byte(raw))
		require.Error(t, err, raw)
		assert.True(t, IsDomainError(err, ErrCodeCorrupt), raw)
	}
}

func TestAuthorize(t *testing.T) {
	assert.Equal(t, AuthorizationView{}, Authorize(nil))
	assert.Equal(t, AuthorizationView{IsAuthenticated: true}, Authorize(&Session{Role: RoleStudent}))
	assert.Equal(t, AuthorizationView{IsAuthenticated: true, IsInstructor: true}, Authorize(&Session{Role: RoleInstructor}))
	assert.Equal(t, AuthorizationView{IsAuthenticated: true, IsInstructor: true, IsAdmin: true}, Authorize(&Session{Role: RoleAdmin}))
}

func TestParseRoleAndLanding(t *testing.T) {
	role, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, role)

	role, err = ParseRole(" Instructor ")
	require.NoError(t, err)
	assert.Equal(t, RoleInstructor, role)

	_, err = ParseRole("owner")
	assert.True(t, IsDomainError(err, ErrCodeInvalid))

	assert.Equal(t, "/admin", LandingPath(RoleAdmin))
	assert.Equal(t, "/course-upload", LandingPath(RoleInstructor))
	assert.Equal(t, "/", LandingPath(RoleStudent))
}

func TestPublicDropsToken(t *testing.T) {
	s := Session{ID: "1", AccessToken: "secret"}
	assert.Empty(t, s.Public().AccessToken)
	assert.Equal(t, "secret", s.AccessToken)
}
