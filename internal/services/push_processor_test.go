package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/academy/internal/infrastructure/boltdb"
	"github.com/fastygo/academy/internal/infrastructure/buffer"
	"github.com/fastygo/academy/usecase/push"
)

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []push.Registration
}

func (s *fakeSender) Send(_ context.Context, reg push.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, reg)
	return nil
}

type onlineFlag bool

func (f onlineFlag) IsOnline() bool { return bool(f) }

func newOutbox(t *testing.T) (*buffer.Store, *PushOutbox) {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, err := buffer.New(db, "push_outbox")
	require.NoError(t, err)
	return store, NewPushOutbox(store)
}

var reg = push.Registration{AccountID: "acct-1", AccessToken: "tok", PushToken: "device-1"}

func TestPushProcessor_DeliversBufferedRegistrations(t *testing.T) {
	store, outbox := newOutbox(t)
	require.NoError(t, outbox.Enqueue(context.Background(), reg))

	sender := &fakeSender{}
	pp := NewPushProcessor(store, onlineFlag(true), sender, nil, ProcessorConfig{})
	assert.Equal(t, 1, pp.Size())

	require.NoError(t, pp.Drain(context.Background()))
	assert.Equal(t, []push.Registration{reg}, sender.sent)
	assert.Zero(t, pp.Size())
}

func TestPushProcessor_SkipsWhileOffline(t *testing.T) {
	store, outbox := newOutbox(t)
	require.NoError(t, outbox.Enqueue(context.Background(), reg))

	sender := &fakeSender{}
	pp := NewPushProcessor(store, onlineFlag(false), sender, nil, ProcessorConfig{})
	require.NoError(t, pp.Drain(context.Background()))
	assert.Empty(t, sender.sent)
	assert.Equal(t, 1, pp.Size())
}

func TestPushProcessor_DropsAfterMaxRetries(t *testing.T) {
	store, outbox := newOutbox(t)
	require.NoError(t, outbox.Enqueue(context.Background(), reg))

	sender := &fakeSender{err: errors.New("gateway down")}
	pp := NewPushProcessor(store, nil, sender, nil, ProcessorConfig{MaxRetries: 2})

	require.NoError(t, pp.Drain(context.Background()))
	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Retries)

	require.NoError(t, pp.Drain(context.Background()))
	assert.Zero(t, pp.Size())
}

// stuckStore refuses to delete items.
type stuckStore struct {
	*buffer.Store
}

func (stuckStore) Remove(buffer.Item) error { return errors.New("bucket is read-only") }

func TestPushProcessor_ReportsFailedDrop(t *testing.T) {
	store, outbox := newOutbox(t)
	require.NoError(t, outbox.Enqueue(context.Background(), reg))

	core, logs := observer.New(zapcore.WarnLevel)
	pp := NewPushProcessor(stuckStore{store}, nil, &fakeSender{err: errors.New("gateway down")}, zap.New(core), ProcessorConfig{MaxRetries: 1})
	require.NoError(t, pp.Drain(context.Background()))

	dropped := logs.FilterMessage("failed to drop buffered registration").All()
	require.Len(t, dropped, 1)
	assert.Equal(t, zapcore.ErrorLevel, dropped[0].Level)
	assert.Equal(t, "bucket is read-only", dropped[0].ContextMap()["error"])
	assert.Equal(t, 1, pp.Size())
}

func TestPushProcessor_PrunesExpiredRegistrations(t *testing.T) {
	store, outbox := newOutbox(t)
	require.NoError(t, outbox.Enqueue(context.Background(), reg))

	stale, err := buffer.NewItem("acct-2", buffer.EntityPushToken, buffer.OperationRegister, reg)
	require.NoError(t, err)
	stale.Timestamp = time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Enqueue(stale))

	pp := NewPushProcessor(store, onlineFlag(false), &fakeSender{}, nil, ProcessorConfig{Retention: 24 * time.Hour})
	require.Equal(t, 2, pp.Size())

	require.NoError(t, pp.Prune(time.Now()))
	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "acct-1", items[0].AccountID)

	var nilProcessor *PushProcessor
	assert.NoError(t, nilProcessor.Prune(time.Now()))
}

func TestPushOutbox_RejectsAnonymousRegistration(t *testing.T) {
	_, outbox := newOutbox(t)
	assert.Error(t, outbox.Enqueue(context.Background(), push.Registration{PushToken: "x"}))

	var nilOutbox *PushOutbox
	assert.Error(t, nilOutbox.Enqueue(context.Background(), reg))
}

func TestPushProcessor_StartStop(t *testing.T) {
	store, _ := newOutbox(t)
	pp := NewPushProcessor(store, nil, &fakeSender{}, nil, ProcessorConfig{})
	pp.Start()
	pp.Stop(context.Background())

	var nilProcessor *PushProcessor
	nilProcessor.Start()
	nilProcessor.Stop(context.Background())
	assert.NoError(t, nilProcessor.Drain(context.Background()))
}
