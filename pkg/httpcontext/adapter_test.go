package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/academy/pkg/logger"
)

func TestAdapter_Attach(t *testing.T) {
	adapter := NewAdapter(time.Second)

	req := &fasthttp.RequestCtx{}
	req.Request.Header.Set("X-Request-ID", "req-42")
	req.Request.Header.SetUserAgent("academy-test")

	ctx, cancel := adapter.Attach(req)
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
	assert.Equal(t, "req-42", appLogger.RequestID(ctx))
	assert.Equal(t, "req-42", string(req.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, "academy-test", ctx.Value(KeyUserAgent))

	fresh := &fasthttp.RequestCtx{}
	ctx, cancel = adapter.Attach(fresh)
	defer cancel()
	assert.NotEmpty(t, appLogger.RequestID(ctx))
}

func TestRequestID_StableWithinRequest(t *testing.T) {
	req := &fasthttp.RequestCtx{}
	first := RequestID(req)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, RequestID(req))

	adapter := NewAdapter(0)
	ctx, cancel := adapter.Attach(req)
	defer cancel()
	assert.Equal(t, first, appLogger.RequestID(ctx))

	ctx, cancel = adapter.Attach(nil)
	defer cancel()
	assert.NotEmpty(t, appLogger.RequestID(ctx))
}
