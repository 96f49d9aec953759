package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agritrack/farm-records/internal/config"
	"github.com/agritrack/farm-records/internal/model"
	"github.com/agritrack/farm-records/internal/repository"
)

// UserAdminStore is the slice of the user repository the staff-gated user
// CRUD endpoints need.
type UserAdminStore interface {
	Create(ctx context.Context, u model.User, password string, cost int) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u model.User) error
	Delete(ctx context.Context, id uint64) error
}

// UserHandler implements CRUD for /api/users/ (staff only). Password hashes
// never appear in responses; userView is the only serialization.
type UserHandler struct {
	Cfg   config.Config
	Store UserAdminStore
}

func NewUserHandler(cfg config.Config, s UserAdminStore) *UserHandler {
	return &UserHandler{Cfg: cfg, Store: s}
}

type userReq struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	IsStaff   bool   `json:"is_staff"`
}

type userView struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
	Role      string `json:"role"`
}

func toUserView(u model.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
		Role:      u.ResolvedRole(),
	}
}

// validRole normalizes a requested role; empty is allowed and defaults to
// clerk at creation time.
func validRole(role string) (string, bool) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" || role == model.RoleClerk || role == model.RoleAdmin {
		return role, true
	}
	return "", false
}

// List handles GET /api/users/.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Store.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "db error"})
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, toUserView(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/users/:id/.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "db error"})
	}
	return c.JSON(http.StatusOK, toUserView(u))
}

// Create handles POST /api/users/. The password is hashed by the store
// before it is persisted; role defaults to clerk when omitted.
func (h *UserHandler) Create(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "username, email and password are required"})
	}
	role, ok := validRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "role must be clerk or admin"})
	}
	if role == "" {
		role = model.RoleClerk
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	u := model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      &role,
		IsStaff:   req.IsStaff,
	}
	id, err := h.Store.Create(ctx, u, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"detail": "username or email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "could not create user"})
	}
	u.ID = id
	return c.JSON(http.StatusCreated, toUserView(u))
}

// Update handles PUT/PATCH /api/users/:id/. Passwords are not updatable
// here; the change-password endpoint owns that.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "username and email are required"})
	}
	role, ok := validRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "role must be clerk or admin"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	u := model.User{
		ID:        id,
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsStaff:   req.IsStaff,
	}
	if role != "" {
		u.Role = &role
	}
	if err := h.Store.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "user not found"})
		case errors.Is(err, repository.ErrDuplicate):
			return c.JSON(http.StatusConflict, echo.Map{"detail": "username or email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	return c.JSON(http.StatusOK, toUserView(u))
}

// Delete handles DELETE /api/users/:id/.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
