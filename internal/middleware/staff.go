package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agritrack/farm-records/internal/model"
)

// UserLoader is the slice of the user repository the staff gate needs.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RequireStaff returns a middleware that loads the authenticated user from
// the credential store and rejects non-staff callers with 403. The store is
// consulted on every request rather than trusting a claim: staff status can
// be withdrawn while an access token is still live.
func RequireStaff(users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := UserID(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByID(ctx, id)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
			}
			if !u.IsStaff {
				return c.JSON(http.StatusForbidden, echo.Map{"detail": "forbidden"})
			}
			return next(c)
		}
	}
}
