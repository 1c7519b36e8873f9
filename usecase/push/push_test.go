package push

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/academy/domain"
)

type gateway struct {
	mu     sync.Mutex
	status int
	auth   []string
	tokens []string
}

func (g *gateway) handle(ctx *fasthttp.RequestCtx) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if string(ctx.Method()) == fasthttp.MethodPost {
		var body map[string]string
		_ = json.Unmarshal(ctx.PostBody(), &body)
		g.auth = append(g.auth, string(ctx.Request.Header.Peek("Authorization")))
		g.tokens = append(g.tokens, body["push_token"])
	}
	ctx.SetStatusCode(g.status)
}

func startGateway(t *testing.T, status int) (*gateway, *HTTPSender) {
	t.Helper()
	gw := &gateway{status: status}
	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: gw.handle}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	client := &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}
	return gw, NewHTTPSender("http://push.local/api/push-tokens", time.Second, client)
}

type memOutbox struct {
	mu    sync.Mutex
	items []Registration
	err   error
}

func (o *memOutbox) Enqueue(_ context.Context, reg Registration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.items = append(o.items, reg)
	return nil
}

func session() *domain.Session {
	return &domain.Session{
		ID:          "acct-1",
		Email:       "student.kim@example.com",
		DisplayName: "student.kim",
		Role:        domain.RoleStudent,
		AccessToken: "display-token",
	}
}

func TestHTTPSender_SendsBearerAndToken(t *testing.T) {
	gw, sender := startGateway(t, fasthttp.StatusCreated)

	err := sender.Send(context.Background(), Registration{AccountID: "acct-1", AccessToken: "tok", PushToken: "device-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer tok"}, gw.auth)
	assert.Equal(t, []string{"device-1"}, gw.tokens)
	assert.NoError(t, sender.Ping(context.Background()))
}

func TestHTTPSender_RejectsErrorStatus(t *testing.T) {
	_, sender := startGateway(t, fasthttp.StatusServiceUnavailable)

	err := sender.Send(context.Background(), Registration{AccessToken: "tok", PushToken: "device-1"})
	assert.ErrorContains(t, err, "503")
}

func TestRegistrar_Success(t *testing.T) {
	gw, sender := startGateway(t, fasthttp.StatusOK)
	outbox := &memOutbox{}
	r := NewRegistrar(StaticTokenSource("device-1"), sender, outbox, time.Second, nil)

	r.Register(context.Background(), session())

	assert.Equal(t, []string{"Bearer display-token"}, gw.auth)
	assert.Empty(t, outbox.items)
}

func TestRegistrar_FailureIsBuffered(t *testing.T) {
	_, sender := startGateway(t, fasthttp.StatusBadGateway)
	outbox := &memOutbox{}
	r := NewRegistrar(StaticTokenSource("device-1"), sender, outbox, time.Second, nil)

	r.Register(context.Background(), session())

	require.Len(t, outbox.items, 1)
	assert.Equal(t, Registration{AccountID: "acct-1", AccessToken: "display-token", PushToken: "device-1"}, outbox.items[0])
}

func TestRegistrar_NeverPanicsOrBuffersWithoutInputs(t *testing.T) {
	outbox := &memOutbox{err: errors.New("disk full")}
	_, sender := startGateway(t, fasthttp.StatusBadGateway)

	var nilRegistrar *Registrar
	nilRegistrar.Register(context.Background(), session())

	r := NewRegistrar(StaticTokenSource(""), sender, outbox, time.Second, nil)
	r.Register(context.Background(), session())
	r.Register(context.Background(), nil)
	r.Register(context.Background(), &domain.Session{ID: "no-token"})

	// outbox failures are only logged
	r = NewRegistrar(StaticTokenSource("device-1"), sender, outbox, time.Second, nil)
	r.Register(context.Background(), session())
	assert.Empty(t, outbox.items)
}
