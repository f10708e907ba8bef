package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dorm-admin-api/internal/models"
	appErrors "github.com/noah-isme/dorm-admin-api/pkg/errors"
	"github.com/noah-isme/dorm-admin-api/pkg/response"
)

type resourceService[T, C, U any] interface {
	Resource() string
	List(ctx context.Context, scope models.Scope) ([]T, error)
	Get(ctx context.Context, scope models.Scope, id int64) (*T, error)
	Create(ctx context.Context, scope models.Scope, req C) (*T, error)
	Replace(ctx context.Context, scope models.Scope, id int64, req C) (*T, error)
	Update(ctx context.Context, scope models.Scope, id int64, req U) (*T, error)
	Delete(ctx context.Context, scope models.Scope, id int64) error
	Stats(ctx context.Context, scope models.Scope) (*models.ResourceStats, error)
}

// ResourceHandler exposes the CRUD and stats endpoints of one record kind.
type ResourceHandler[T, C, U any] struct {
	service resourceService[T, C, U]
}

// NewResourceHandler constructs a ResourceHandler.
func NewResourceHandler[T, C, U any](svc resourceService[T, C, U]) *ResourceHandler[T, C, U] {
	return &ResourceHandler[T, C, U]{service: svc}
}

// Register mounts the handler on group.
func (h *ResourceHandler[T, C, U]) Register(group gin.IRoutes) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/stats", h.Stats)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Replace)
	group.PATCH("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

// List returns the records visible to the caller.
func (h *ResourceHandler[T, C, U]) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), scopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Get returns one record.
func (h *ResourceHandler[T, C, U]) Get(c *gin.Context) {
	id, err := pathID(c, h.service.Resource())
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Get(c.Request.Context(), scopeFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Create stores a record owned by the caller.
func (h *ResourceHandler[T, C, U]) Create(c *gin.Context) {
	var req C
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), scopeFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Replace overwrites every field of a record.
func (h *ResourceHandler[T, C, U]) Replace(c *gin.Context) {
	id, err := pathID(c, h.service.Resource())
	if err != nil {
		response.Error(c, err)
		return
	}
	var req C
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.service.Replace(c.Request.Context(), scopeFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Update changes the fields present in the payload.
func (h *ResourceHandler[T, C, U]) Update(c *gin.Context) {
	id, err := pathID(c, h.service.Resource())
	if err != nil {
		response.Error(c, err)
		return
	}
	var req U
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), scopeFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Delete removes a record.
func (h *ResourceHandler[T, C, U]) Delete(c *gin.Context) {
	id, err := pathID(c, h.service.Resource())
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), scopeFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats returns count, avg, max and min of the visible identifiers.
func (h *ResourceHandler[T, C, U]) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), scopeFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}
