package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agritrack/farm-records/internal/model"
	"github.com/agritrack/farm-records/internal/repository"
)

// FarmTypeStore is the slice of the farm type repository the handler needs.
type FarmTypeStore interface {
	Create(ctx context.Context, ft *model.FarmType) error
	GetByID(ctx context.Context, id uint64) (model.FarmType, error)
	List(ctx context.Context) ([]model.FarmType, error)
	Update(ctx context.Context, ft model.FarmType) error
	Delete(ctx context.Context, id uint64) error
}

// FarmTypeHandler implements CRUD for /api/farm-types/.
type FarmTypeHandler struct {
	Store FarmTypeStore
}

func NewFarmTypeHandler(s FarmTypeStore) *FarmTypeHandler { return &FarmTypeHandler{Store: s} }

type farmTypeReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List handles GET /api/farm-types/.
func (h *FarmTypeHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "db error"})
	}
	if items == nil {
		items = []model.FarmType{}
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/farm-types/:id/.
func (h *FarmTypeHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	ft, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "farm type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "db error"})
	}
	return c.JSON(http.StatusOK, ft)
}

// Create handles POST /api/farm-types/.
func (h *FarmTypeHandler) Create(c echo.Context) error {
	var req farmTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "name is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	ft := model.FarmType{Name: req.Name, Description: req.Description}
	if err := h.Store.Create(ctx, &ft); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"detail": "farm type name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "could not create farm type"})
	}
	return c.JSON(http.StatusCreated, ft)
}

// Update handles PUT/PATCH /api/farm-types/:id/.
func (h *FarmTypeHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	var req farmTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "name is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	ft := model.FarmType{ID: id, Name: req.Name, Description: req.Description}
	if err := h.Store.Update(ctx, ft); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "farm type not found"})
		case errors.Is(err, repository.ErrDuplicate):
			return c.JSON(http.StatusConflict, echo.Map{"detail": "farm type name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	return c.JSON(http.StatusOK, ft)
}

// Delete handles DELETE /api/farm-types/:id/.
func (h *FarmTypeHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "farm type not found"})
		case errors.Is(err, repository.ErrForeignKey):
			return c.JSON(http.StatusConflict, echo.Map{"detail": "farm type is referenced by farmers"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// reqCtx bounds a handler's database work to five seconds.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
