package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agritrack/farm-records/internal/model"
	"github.com/agritrack/farm-records/internal/queue"
	"github.com/agritrack/farm-records/internal/repository"
)

// FarmerStore is the slice of the farmer repository the handler needs.
type FarmerStore interface {
	Create(ctx context.Context, f *model.Farmer) error
	GetByID(ctx context.Context, id uint64) (model.FarmerDetail, error)
	List(ctx context.Context) ([]model.FarmerDetail, error)
	Update(ctx context.Context, f model.Farmer) error
	Delete(ctx context.Context, id uint64) error
}

// EventPublisher pushes domain events to the message broker. A nil publisher
// disables event publishing without touching the request path.
type EventPublisher interface {
	FarmerRegistered(ctx context.Context, e queue.FarmerRegisteredEvent) error
}

// FarmerHandler implements CRUD for /api/farmers/. Successful creation
// publishes a farmer.registered event; publish failures are logged by the
// publisher and never fail the request.
type FarmerHandler struct {
	Store  FarmerStore
	Events EventPublisher
}

func NewFarmerHandler(s FarmerStore, events EventPublisher) *FarmerHandler {
	return &FarmerHandler{Store: s, Events: events}
}

type farmerReq struct {
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Location   string `json:"location"`
	FarmTypeID uint64 `json:"farm_type_id"`
	CropID     uint64 `json:"crop_id"`
}

func (r *farmerReq) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.NationalID = strings.TrimSpace(r.NationalID)
	r.Location = strings.TrimSpace(r.Location)
	switch {
	case r.Name == "":
		return "name is required"
	case r.NationalID == "":
		return "national_id is required"
	case r.FarmTypeID == 0:
		return "farm_type_id is required"
	case r.CropID == 0:
		return "crop_id is required"
	}
	return ""
}

// List handles GET /api/farmers/.
func (h *FarmerHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "db error"})
	}
	if items == nil {
		items = []model.FarmerDetail{}
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/farmers/:id/.
func (h *FarmerHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	f, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "farmer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "db error"})
	}
	return c.JSON(http.StatusOK, f)
}

// Create handles POST /api/farmers/.
func (h *FarmerHandler) Create(c echo.Context) error {
	var req farmerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	f := model.Farmer{
		Name:       req.Name,
		NationalID: req.NationalID,
		Location:   req.Location,
		FarmTypeID: req.FarmTypeID,
		CropID:     req.CropID,
	}
	if err := h.Store.Create(ctx, &f); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return c.JSON(http.StatusConflict, echo.Map{"detail": "national_id already exists"})
		case errors.Is(err, repository.ErrForeignKey):
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": "unknown farm type or crop"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "could not create farmer"})
	}

	if h.Events != nil {
		detail, err := h.Store.GetByID(ctx, f.ID)
		if err == nil {
			_ = h.Events.FarmerRegistered(ctx, queue.FarmerRegisteredEvent{
				FarmerID:     detail.ID,
				Name:         detail.Name,
				NationalID:   detail.NationalID,
				Location:     detail.Location,
				FarmType:     detail.FarmTypeName,
				Crop:         detail.CropName,
				RegisteredAt: time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
	return c.JSON(http.StatusCreated, f)
}

// Update handles PUT/PATCH /api/farmers/:id/.
func (h *FarmerHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	var req farmerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	f := model.Farmer{
		ID:         id,
		Name:       req.Name,
		NationalID: req.NationalID,
		Location:   req.Location,
		FarmTypeID: req.FarmTypeID,
		CropID:     req.CropID,
	}
	if err := h.Store.Update(ctx, f); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "farmer not found"})
		case errors.Is(err, repository.ErrDuplicate):
			return c.JSON(http.StatusConflict, echo.Map{"detail": "national_id already exists"})
		case errors.Is(err, repository.ErrForeignKey):
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": "unknown farm type or crop"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	return c.JSON(http.StatusOK, f)
}

// Delete handles DELETE /api/farmers/:id/.
func (h *FarmerHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "farmer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
