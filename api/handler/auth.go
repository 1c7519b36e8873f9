package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/academy/api/transport"
	"github.com/fastygo/academy/domain"
	"github.com/fastygo/academy/pkg/httpcontext"
	appLogger "github.com/fastygo/academy/pkg/logger"
	authUC "github.com/fastygo/academy/usecase/auth"
)

// PushRegistrar registers the device push token once a session exists.
type PushRegistrar interface {
	Register(ctx context.Context, session *domain.Session)
}

type AuthHandler struct {
	baseHandler
	manager     *authUC.Manager
	push        PushRegistrar
	pushTimeout time.Duration
}

func NewAuthHandler(manager *authUC.Manager, push PushRegistrar, adapter *httpcontext.Adapter, logger *zap.Logger, pushTimeout time.Duration) *AuthHandler {
	if pushTimeout <= 0 {
		pushTimeout = 10 * time.Second
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		manager:     manager,
		push:        push,
		pushTimeout: pushTimeout,
	}
}

// @Summary Log in with email and password
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.manager.Login(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.afterSignIn(stdCtx, session)
	h.respondSuccess(ctx, http.StatusOK, sessionResponse(session, true))
}

// @Summary Create an account and log in
// @Tags auth
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if !h.decode(ctx, &req) {
		return
	}

	var role domain.Role
	if req.Role != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		role = parsed
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.manager.Register(stdCtx, authUC.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        role,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.afterSignIn(stdCtx, session)
	h.respondSuccess(ctx, http.StatusCreated, sessionResponse(session, true))
}

// @Summary Start a social login; the session appears once the provider completes
// @Tags auth
// @Router /api/v1/auth/social/{provider} [post]
func (h *AuthHandler) Social(ctx *fasthttp.RequestCtx) {
	name, _ := ctx.UserValue("provider").(string)
	provider := domain.SocialProvider(name)

	attempt, err := h.manager.LoginWithSocialProvider(provider)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	requestID := appLogger.RequestID(stdCtx)
	cancel()

	go func() {
		<-attempt.Done()
		session, err := attempt.Result()
		if err != nil {
			h.logger.Info("social login did not complete",
				zap.String("provider", string(provider)),
				zap.String("request_id", requestID),
				zap.Error(err))
			return
		}
		h.afterSignIn(appLogger.ContextWithRequestID(context.Background(), requestID), session)
	}()

	h.respondSuccess(ctx, http.StatusAccepted, map[string]string{
		"provider": string(provider),
		"status":   "pending",
	})
}

// @Summary Log out
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.manager.Logout(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, sessionResponse(nil, false))
}

// afterSignIn registers the push token in the background. The request
// context is about to be cancelled, so the registration gets its own deadline.
func (h *AuthHandler) afterSignIn(ctx context.Context, session *domain.Session) {
	if h.push == nil || session == nil {
		return
	}
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.pushTimeout)
	go func() {
		defer cancel()
		h.push.Register(pushCtx, session)
	}()
}

func sessionResponse(session *domain.Session, withRedirect bool) transport.SessionResponse {
	resp := transport.SessionResponse{Authorization: domain.Authorize(session)}
	if session != nil {
		public := session.Public()
		resp.Session = public
		if withRedirect {
			resp.Redirect = domain.LandingPath(session.Role)
		}
	}
	return resp
}
