package buffer

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/academy/internal/infrastructure/boltdb"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, err := New(db, "push_outbox")
	require.NoError(t, err)
	return store
}

func TestStore_OrdersByPriorityThenAge(t *testing.T) {
	store := newStore(t)
	base := time.Now()

	require.NoError(t, store.Enqueue(Item{ID: "late", Entity: EntityPushToken, Priority: 3, Timestamp: base.Add(time.Second)}))
	require.NoError(t, store.Enqueue(Item{ID: "early", Entity: EntityPushToken, Priority: 3, Timestamp: base}))
	require.NoError(t, store.Enqueue(Item{ID: "urgent", Entity: EntityPushToken, Priority: 1, Timestamp: base.Add(time.Hour)}))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"urgent", "early", "late"}, []string{items[0].ID, items[1].ID, items[2].ID})

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 3, size)
}

func TestStore_RequeueRemoveCleanup(t *testing.T) {
	store := newStore(t)
	payload, _ := json.Marshal(map[string]string{"push_token": "abc"})
	require.NoError(t, store.Enqueue(Item{AccountID: "acct", Entity: EntityPushToken, Operation: OperationRegister, Data: payload}))

	items, err := store.GetBatch(0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	item := items[0]
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, 3, item.Priority)

	item.Retries++
	require.NoError(t, store.Requeue(item))
	items, err = store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Retries)
	assert.JSONEq(t, string(payload), string(items[0].Data))

	require.NoError(t, store.Cleanup(time.Now().Add(time.Minute)))
	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)

	require.NoError(t, store.Enqueue(Item{ID: "by-id"}))
	require.NoError(t, store.Remove(Item{ID: "by-id"}))
	size, _ = store.Size()
	assert.Zero(t, size)
}
