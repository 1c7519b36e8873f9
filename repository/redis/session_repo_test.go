package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/academy/domain"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redislib.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestSessionRepository_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestClient(t)
	repo := NewSessionRepository(client, "tab-1", 0)

	_, err := repo.Get(ctx)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	session := &domain.Session{ID: "admin-123", Email: "admin@naver.com", DisplayName: "Operator", Role: domain.RoleAdmin}
	require.NoError(t, repo.Save(ctx, session))
	assert.True(t, srv.Exists("session:tab-1"))
	assert.Zero(t, srv.TTL("session:tab-1"))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, got)

	require.NoError(t, repo.Delete(ctx))
	assert.False(t, srv.Exists("session:tab-1"))
	require.NoError(t, repo.Delete(ctx))
}

func TestSessionRepository_TTLAndCorruption(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestClient(t)
	repo := NewSessionRepository(client, "", time.Hour)

	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "1", Email: "s@example.com", Role: domain.RoleStudent}))
	assert.Equal(t, time.Hour, srv.TTL("session:user"))

	require.NoError(t, srv.Set("session:user", "garbage"))
	_, err := repo.Get(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeCorrupt))
}
