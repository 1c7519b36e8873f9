package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/academy/internal/middleware"
	"github.com/fastygo/academy/pkg/httpcontext"
	authUC "github.com/fastygo/academy/usecase/auth"
)

// ViewHandler serves the role-gated pages. Access checks happen in the
// router's guards; these handlers only describe what the page shows.
type ViewHandler struct {
	baseHandler
	manager *authUC.Manager
}

func NewViewHandler(manager *authUC.Manager, adapter *httpcontext.Adapter, logger *zap.Logger) *ViewHandler {
	return &ViewHandler{
		baseHandler: newBaseHandler(adapter, logger),
		manager:     manager,
	}
}

func (h *ViewHandler) MyPage(ctx *fasthttp.RequestCtx) {
	h.render(ctx, "my-page")
}

func (h *ViewHandler) CourseUpload(ctx *fasthttp.RequestCtx) {
	h.render(ctx, "course-upload")
}

func (h *ViewHandler) Admin(ctx *fasthttp.RequestCtx) {
	h.render(ctx, "admin")
}

func (h *ViewHandler) render(ctx *fasthttp.RequestCtx, view string) {
	session, ok := h.manager.Current()
	if !ok {
		// logged out between the guard and here
		ctx.Redirect(middleware.LoginPath, fasthttp.StatusFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"view":    view,
		"session": session.Public(),
	})
}
