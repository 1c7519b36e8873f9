// Package push registers the device push token with the notification
// gateway after a session is established. Registration is best effort:
// failures are logged and handed to an outbox for retry, never returned.
package push

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/academy/domain"
	appLogger "github.com/fastygo/academy/pkg/logger"
)

var ErrNoDeviceToken = errors.New("no device push token available")

// Registration is one pending token registration.
type Registration struct {
	AccountID   string `json:"account_id"`
	AccessToken string `json:"access_token"`
	PushToken   string `json:"push_token"`
}

// TokenSource yields the device push token from the platform.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Sender delivers a registration to the gateway.
type Sender interface {
	Send(ctx context.Context, reg Registration) error
}

// Outbox keeps registrations that could not be delivered.
type Outbox interface {
	Enqueue(ctx context.Context, reg Registration) error
}

// StaticTokenSource always returns the same device token.
type StaticTokenSource string

func (s StaticTokenSource) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoDeviceToken
	}
	return string(s), nil
}

type Registrar struct {
	tokens  TokenSource
	sender  Sender
	outbox  Outbox
	timeout time.Duration
	logger  *zap.Logger
}

func NewRegistrar(tokens TokenSource, sender Sender, outbox Outbox, timeout time.Duration, logger *zap.Logger) *Registrar {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Registrar{
		tokens:  tokens,
		sender:  sender,
		outbox:  outbox,
		timeout: timeout,
		logger:  logger,
	}
}

// Register sends the device token for session. It never fails the caller.
func (r *Registrar) Register(ctx context.Context, session *domain.Session) {
	if r == nil || r.sender == nil || r.tokens == nil {
		return
	}
	if session == nil || session.AccessToken == "" {
		return
	}
	log := appLogger.WithRequestID(ctx, r.logger).With(zap.String("account_id", session.ID))

	token, err := r.tokens.Token(ctx)
	if err != nil {
		log.Warn("push token unavailable", zap.Error(err))
		return
	}

	reg := Registration{
		AccountID:   session.ID,
		AccessToken: session.AccessToken,
		PushToken:   token,
	}

	sendCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.sender.Send(sendCtx, reg); err != nil {
		log.Warn("push token registration failed", zap.Error(err))
		if r.outbox == nil {
			return
		}
		if err := r.outbox.Enqueue(context.WithoutCancel(ctx), reg); err != nil {
			log.Error("failed to buffer push token registration", zap.Error(err))
		}
		return
	}
	log.Info("push token registered")
}
