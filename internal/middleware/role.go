package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusbuzz/event-registration/internal/model"
)

// RequireRole returns a middleware that enforces an exact role match on
// the authenticated principal. There is no role hierarchy: an admin is
// not implicitly a student or vice versa. It must run after JWTAuth and
// never re-derives identity from the request; a missing principal is a
// 403, not a second authentication attempt.
func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := GetPrincipal(c)
			if !ok || p.Role != role {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
