package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/academy/internal/infrastructure/boltdb"
	"github.com/fastygo/academy/internal/infrastructure/buffer"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestMonitor_BoltAndOutbox(t *testing.T) {
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "academy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	outbox, err := buffer.New(db, "push_outbox")
	require.NoError(t, err)
	require.NoError(t, outbox.Enqueue(buffer.Item{AccountID: "acct", Entity: buffer.EntityPushToken}))

	m := New(Deps{Bolt: db, Outbox: outbox, Gateway: pingFunc(func(context.Context) error { return nil })}, 0, nil)
	m.refresh()

	status := m.GetStatus()
	assert.Equal(t, "bolt", status.StoreBackend)
	assert.True(t, status.Store.Up)
	assert.False(t, status.PostgreSQL.Enabled)
	assert.True(t, status.Outbox.Up)
	assert.Equal(t, 1, status.OutboxSize)
	assert.True(t, status.Healthy())
	assert.True(t, m.IsOnline())
}

func TestMonitor_RedisDownAndGatewayOffline(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := New(Deps{Redis: client, Gateway: pingFunc(func(context.Context) error { return errors.New("refused") })}, 0, nil)
	m.refresh()
	assert.True(t, m.GetStatus().Healthy())
	assert.Equal(t, "redis", m.GetStatus().StoreBackend)
	assert.False(t, m.IsOnline())

	mr.Close()
	m.refresh()
	assert.False(t, m.GetStatus().Healthy())
}

func TestMonitor_StartStop(t *testing.T) {
	m := New(Deps{}, 0, nil)
	m.Start()
	m.Stop()
	m.Stop()
	status := m.GetStatus()
	assert.False(t, status.LastCheck.IsZero())
	assert.True(t, status.Healthy())
	assert.False(t, m.IsOnline())
}
