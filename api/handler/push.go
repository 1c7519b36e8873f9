package handler

import (
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/academy/api/transport"
	"github.com/fastygo/academy/domain"
	"github.com/fastygo/academy/internal/middleware"
	"github.com/fastygo/academy/pkg/httpcontext"
	"github.com/fastygo/academy/repository"
)

// PushHandler is the development push gateway: it records device tokens
// for the account named by the verified display token.
type PushHandler struct {
	baseHandler
	tokens repository.PushTokenRepository
}

func NewPushHandler(tokens repository.PushTokenRepository, adapter *httpcontext.Adapter, logger *zap.Logger) *PushHandler {
	return &PushHandler{
		baseHandler: newBaseHandler(adapter, logger),
		tokens:      tokens,
	}
}

// @Summary Register a device push token
// @Tags push
// @Router /api/v1/push-tokens [post]
func (h *PushHandler) Register(ctx *fasthttp.RequestCtx) {
	accountID := h.accountID(ctx)
	if accountID == "" {
		return
	}

	var req transport.PushTokenRequest
	if !h.decode(ctx, &req) {
		return
	}
	if strings.TrimSpace(req.PushToken) == "" {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.tokens.Add(stdCtx, accountID, req.PushToken); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, map[string]string{"push_token": req.PushToken})
}

// @Summary List the caller's device push tokens
// @Tags push
// @Router /api/v1/push-tokens [get]
func (h *PushHandler) List(ctx *fasthttp.RequestCtx) {
	accountID := h.accountID(ctx)
	if accountID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tokens, err := h.tokens.List(stdCtx, accountID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if tokens == nil {
		tokens = []string{}
	}
	h.respondSuccess(ctx, http.StatusOK, tokens)
}

func (h *PushHandler) accountID(ctx *fasthttp.RequestCtx) string {
	accountID := string(ctx.Request.Header.Peek(middleware.HeaderAccountID))
	if accountID == "" {
		h.respondError(ctx, domain.ErrUnauthorized)
	}
	return accountID
}
