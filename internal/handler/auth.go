package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agritrack/farm-records/internal/config"
	"github.com/agritrack/farm-records/internal/middleware"
	"github.com/agritrack/farm-records/internal/model"
	"github.com/agritrack/farm-records/internal/token"
	"github.com/agritrack/farm-records/internal/utils"
)

// detailInvalidToken is the client-facing message for any token decode
// failure during login enrichment. Kept verbatim for client compatibility.
const detailInvalidToken = "Token is invalid or expired."

// UserStore is the slice of the user repository the auth endpoints need.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
}

// AuthHandler bundles dependencies for the session and password endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Tokens *token.Service
	Users  UserStore
}

func NewAuthHandler(cfg config.Config, tokens *token.Service, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Tokens: tokens, Users: users}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	Refresh string `json:"refresh"`
}
type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// userInfo is the denormalized user object embedded in the login response.
type userInfo struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
	Role      string `json:"role"`
}

type loginResp struct {
	Access  string   `json:"access"`
	Refresh string   `json:"refresh"`
	User    userInfo `json:"user"`
}

// Login handles POST /api/token/: verify credentials, issue a token pair and
// enrich the response with a user object. The user object is built by
// decoding the just-issued access token and re-fetching the record, not by
// reusing the user already verified in memory; the extra round trip keeps
// the enrichment on the same path every later token consumer takes.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "username and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, _, err := h.Tokens.Issue(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, token.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "No active account found with the given credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "could not issue tokens"})
	}

	claims, err := h.Tokens.Validate(pair.Access, token.TypeAccess)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": detailInvalidToken})
	}
	u, err := h.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": detailInvalidToken})
	}

	return c.JSON(http.StatusOK, loginResp{
		Access:  pair.Access,
		Refresh: pair.Refresh,
		User: userInfo{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			IsStaff:   u.IsStaff,
			Role:      u.ResolvedRole(),
		},
	})
}

// Refresh handles POST /api/token/refresh/: exchange a live refresh token
// for a new access token. A blacklisted jti fails here, which is what makes
// logout stick.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Refresh) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "refresh is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	access, err := h.Tokens.Refresh(ctx, strings.TrimSpace(req.Refresh))
	if err != nil {
		if errors.Is(err, token.ErrTokenRevoked) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Token is blacklisted."})
		}
		if errors.Is(err, token.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": detailInvalidToken})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "could not refresh token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"access": access})
}

// Logout handles POST /api/logout/ (protected): revoke the refresh token
// supplied in the body. Internally the failure modes are distinct sentinel
// errors; to the caller they coalesce into one generic message so the
// endpoint reveals nothing about token internals.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Refresh) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Failed to log out."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, strings.TrimSpace(req.Refresh)); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Failed to log out."})
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Successfully logged out."})
}

// CurrentUser handles POST /api/current-user/ (protected): return the
// identity fields of the caller from the live store record, so a renamed
// user sees current data rather than a token-embedded snapshot.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	id, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	})
}

// ChangePassword handles POST /api/change-password/ (protected): verify the
// old password and rewrite the stored hash. Existing access tokens stay
// valid until natural expiry; no re-issuance happens here.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Both old_password and new_password are required."})
	}

	id, err := middleware.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "could not load user"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.OldPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Old password is incorrect."})
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "could not update password"})
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": "Password updated successfully."})
}
