package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdown_ReverseOrderAndJoinedErrors(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	boom := errors.New("boom")

	m.Register("store", func(ctx context.Context) error {
		order = append(order, "store")
		return nil
	})
	m.Register("sessions", func(ctx context.Context) error {
		order = append(order, "sessions")
		return boom
	})
	m.Register("ignored", nil)
	m.Register("http_server", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		order = append(order, "http_server")
		return nil
	})

	err := m.Shutdown(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"http_server", "sessions", "store"}, order)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

func TestRegister_AfterShutdownRunsImmediately(t *testing.T) {
	m := New(0, nil)
	require.NoError(t, m.Shutdown(context.Background()))

	ran := false
	m.Register("late", func(context.Context) error {
		ran = true
		return nil
	})
	assert.True(t, ran)
}

func TestShutdown_ErrorNamesComponent(t *testing.T) {
	m := New(time.Second, nil)
	m.Register("bolt", func(context.Context) error { return errors.New("file locked") })

	err := m.Shutdown(context.Background())
	assert.EqualError(t, err, "bolt: file locked")
}
