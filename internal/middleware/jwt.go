package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agritrack/farm-records/internal/token"
)

// ctxUserID is the context key under which the authenticated user's ID is
// stored for downstream handlers.
const ctxUserID = "user_id"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// against the token service and injects the authenticated user ID into the
// request context. Only access tokens pass; presenting a refresh token on a
// protected endpoint is rejected like any other invalid token.
func JWTAuth(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := tokens.Validate(raw, token.TypeAccess)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "invalid token"})
			}
			c.Set(ctxUserID, claims.UserID)
			return next(c)
		}
	}
}

// ErrNoIdentity is returned by UserID when no authenticated user is present
// in the context.
var ErrNoIdentity = errors.New("no authenticated user in context")

// UserID extracts the authenticated user's ID placed in the context by
// JWTAuth.
func UserID(c echo.Context) (uint64, error) {
	id, ok := c.Get(ctxUserID).(uint64)
	if !ok || id == 0 {
		return 0, ErrNoIdentity
	}
	return id, nil
}

// identityKey is used by the rate limiter and cache middleware to segment
// keys per user. It returns "guest" for unauthenticated requests.
func identityKey(c echo.Context) string {
	if id, err := UserID(c); err == nil {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}
