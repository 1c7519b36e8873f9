package middleware

import (
	"github.com/valyala/fasthttp"

	"github.com/fastygo/academy/domain"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// AuthorizationSource yields the current authorization view. It is read on
// every request so a logout takes effect immediately.
type AuthorizationSource interface {
	Authorization() domain.AuthorizationView
}

// RequireAuthenticated redirects anonymous visitors to the login page.
func RequireAuthenticated(src AuthorizationSource) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return guard(src, func(domain.AuthorizationView) bool { return true })
}

// RequireInstructor admits instructors; IsInstructor already covers admins.
func RequireInstructor(src AuthorizationSource) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return guard(src, func(v domain.AuthorizationView) bool { return v.IsInstructor })
}

func RequireAdmin(src AuthorizationSource) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return guard(src, func(v domain.AuthorizationView) bool { return v.IsAdmin })
}

func guard(src AuthorizationSource, allowed func(domain.AuthorizationView) bool) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			view := src.Authorization()
			if !view.IsAuthenticated {
				ctx.Redirect(LoginPath, fasthttp.StatusFound)
				return
			}
			if !allowed(view) {
				ctx.Redirect(HomePath, fasthttp.StatusFound)
				return
			}
			next(ctx)
		}
	}
}
