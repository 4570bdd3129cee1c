package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusbuzz/event-registration/internal/auth"
)

// principalKey is the context key under which JWTAuth stores the
// authenticated Principal.
const principalKey = "principal"

// JWTAuth returns an Echo middleware that authenticates the request's
// bearer token. A missing or malformed Authorization header is rejected
// before any verification is attempted; everything else is delegated to
// the token service, whose single error kind keeps expired and tampered
// tokens indistinguishable to the client.
func JWTAuth(tokens *auth.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			p, err := tokens.Verify(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// GetPrincipal extracts the Principal stored by JWTAuth. The boolean is
// false when the middleware did not run on this route.
func GetPrincipal(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(principalKey).(auth.Principal)
	return p, ok
}
