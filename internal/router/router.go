package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/academy/api/handler"
	"github.com/fastygo/academy/internal/middleware"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Session *apiHandler.SessionHandler
	Views   *apiHandler.ViewHandler
	Push    *apiHandler.PushHandler
	Health  *apiHandler.HealthHandler
}

// New wires the routes. access is read by the view guards on every request;
// tokenAuth protects the push token endpoint.
func New(
	handlers Handlers,
	access middleware.AuthorizationSource,
	tokenAuth func(fasthttp.RequestHandler) fasthttp.RequestHandler,
) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/social/{provider}", handlers.Auth.Social)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)
	r.GET("/api/v1/session", handlers.Session.Current)

	// Guarded views
	r.GET("/my-page", middleware.RequireAuthenticated(access)(handlers.Views.MyPage))
	r.GET("/course-upload", middleware.RequireInstructor(access)(handlers.Views.CourseUpload))
	r.GET("/admin", middleware.RequireAdmin(access)(handlers.Views.Admin))

	if handlers.Push != nil {
		r.POST("/api/v1/push-tokens", tokenAuth(handlers.Push.Register))
		r.GET("/api/v1/push-tokens", tokenAuth(handlers.Push.List))
	}

	return r
}
