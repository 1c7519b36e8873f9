package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/academy/pkg/httpcontext"
	authUC "github.com/fastygo/academy/usecase/auth"
)

type SessionHandler struct {
	baseHandler
	manager *authUC.Manager
}

func NewSessionHandler(manager *authUC.Manager, adapter *httpcontext.Adapter, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		manager:     manager,
	}
}

// @Summary Current session and authorization view
// @Tags session
// @Router /api/v1/session [get]
func (h *SessionHandler) Current(ctx *fasthttp.RequestCtx) {
	session, ok := h.manager.Current()
	if !ok {
		h.respondSuccess(ctx, http.StatusOK, sessionResponse(nil, false))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, sessionResponse(&session, false))
}
