package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agritrack/farm-records/internal/model"
	"github.com/agritrack/farm-records/internal/repository"
	"github.com/agritrack/farm-records/internal/utils"
)

// CropStore is the slice of the crop repository the handler needs.
type CropStore interface {
	Create(ctx context.Context, cr *model.Crop) error
	GetByID(ctx context.Context, id uint64) (model.Crop, error)
	List(ctx context.Context) ([]model.Crop, error)
	Update(ctx context.Context, cr model.Crop) error
	Delete(ctx context.Context, id uint64) error
}

// CropHandler implements CRUD for /api/crops/. Image uploads arrive as
// base64 data URIs in the JSON body and are decoded to files under the
// media directory; the stored column holds the relative path.
type CropHandler struct {
	Store    CropStore
	MediaDir string
}

func NewCropHandler(s CropStore, mediaDir string) *CropHandler {
	return &CropHandler{Store: s, MediaDir: mediaDir}
}

type cropReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// resolveImage stores a data-URI image and returns its relative path. A
// non-data-URI value (an already-stored path on update) passes through
// unchanged.
func (h *CropHandler) resolveImage(image string) (string, error) {
	if strings.HasPrefix(image, "data:image/") {
		return utils.SaveDataURIImage(h.MediaDir, image)
	}
	return image, nil
}

// List handles GET /api/crops/.
func (h *CropHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Store.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "db error"})
	}
	if items == nil {
		items = []model.Crop{}
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/crops/:id/.
func (h *CropHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cr, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "crop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "db error"})
	}
	return c.JSON(http.StatusOK, cr)
}

// Create handles POST /api/crops/.
func (h *CropHandler) Create(c echo.Context) error {
	var req cropReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "name is required"})
	}
	image, err := h.resolveImage(req.Image)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid image"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	cr := model.Crop{Name: req.Name, Description: req.Description, Image: image}
	if err := h.Store.Create(ctx, &cr); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "could not create crop"})
	}
	return c.JSON(http.StatusCreated, cr)
}

// Update handles PUT/PATCH /api/crops/:id/.
func (h *CropHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	var req cropReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "name is required"})
	}
	image, err := h.resolveImage(req.Image)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid image"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	cr := model.Crop{ID: id, Name: req.Name, Description: req.Description, Image: image}
	if err := h.Store.Update(ctx, cr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "crop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
	}
	return c.JSON(http.StatusOK, cr)
}

// Delete handles DELETE /api/crops/:id/.
func (h *CropHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "crop not found"})
		case errors.Is(err, repository.ErrForeignKey):
			return c.JSON(http.StatusConflict, echo.Map{"detail": "crop is referenced by farmers"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
