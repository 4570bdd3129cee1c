package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/campusbuzz/event-registration/internal/auth"
	"github.com/campusbuzz/event-registration/internal/config"
	"github.com/campusbuzz/event-registration/internal/handler"
	"github.com/campusbuzz/event-registration/internal/middleware"
	"github.com/campusbuzz/event-registration/internal/model"
)

// Register wires every route of the API onto the Echo instance.
//
// Route groups and their guards:
//
//	/auth/*            public, rate limited (credential endpoints)
//	/events (GET)      public, response cached
//	/events/:id/...    session required for register/cancel
//	/events mutations  session + admin role
func Register(e *echo.Echo, a *handler.AuthHandler, ev *handler.EventHandler, tokens *auth.TokenService, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	authGroup := e.Group("/auth")
	authGroup.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))
	authGroup.POST("/signup", a.Signup)
	authGroup.POST("/login", a.Login)
	authGroup.POST("/forgotpassword", a.ForgotPassword)
	authGroup.PUT("/resetpassword/:token", a.ResetPassword)

	e.GET("/me", a.Me, middleware.JWTAuth(tokens))

	// Public browse endpoints; short-TTL cache in front.
	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)
	e.GET("/events", ev.List, cache)
	e.GET("/events/:id", ev.Get, cache)

	// Registration lifecycle: any authenticated role.
	session := middleware.JWTAuth(tokens)
	e.POST("/events/:id/register", ev.Register, session)
	e.DELETE("/events/:id/register", ev.Cancel, session)

	// Admin CRUD. Echo matches the static /events/admin path ahead of
	// the /events/:id param route.
	admin := e.Group("/events", session, middleware.RequireRole(model.RoleAdmin))
	admin.GET("/admin", ev.AdminList)
	admin.POST("", ev.Create)
	admin.PUT("/:id", ev.Update)
	admin.DELETE("/:id", ev.Delete)
}
