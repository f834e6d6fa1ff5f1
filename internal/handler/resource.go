package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"golfcam/internal/service"
	"golfcam/internal/store"
)

// ResourceService is the CRUD surface of one collection.
type ResourceService[T store.Entity] interface {
	Kind() string
	List(ctx context.Context, filter store.Filter) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, row *T) (*T, error)
	Update(ctx context.Context, id string, fields store.Fields) (*T, error)
	Delete(ctx context.Context, id string) (*service.DeleteResult, error)
}

// ResourceHandler serves the generic REST endpoints of one collection.
type ResourceHandler[T store.Entity] struct {
	svc ResourceService[T]
}

func NewResourceHandler[T store.Entity](svc ResourceService[T]) *ResourceHandler[T] {
	return &ResourceHandler[T]{svc: svc}
}

// RegisterRoutes mounts the collection under r.
func (h *ResourceHandler[T]) RegisterRoutes(r gin.IRouter) {
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.PUT("/:id", h.Update)
	r.PATCH("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
}

// List returns the rows matching the query filters. Query parameters that
// start with an underscore are options, not filters.
func (h *ResourceHandler[T]) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), store.FilterFromQuery(c.Request.URL.Query()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ResourceHandler[T]) Get(c *gin.Context) {
	row, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *ResourceHandler[T]) Create(c *gin.Context) {
	var row T
	if err := c.ShouldBindJSON(&row); err != nil {
		badRequest(c, err.Error())
		return
	}
	created, err := h.svc.Create(c.Request.Context(), &row)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update applies a partial update. PUT and PATCH both take the changed
// fields only.
func (h *ResourceHandler[T]) Update(c *gin.Context) {
	id := c.Param("id")
	var fields store.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		badRequest(c, err.Error())
		return
	}
	if v, ok := fields["id"]; ok {
		if fmt.Sprint(v) != id {
			badRequest(c, fmt.Sprintf("body id %v does not match path id %s", v, id))
			return
		}
		delete(fields, "id")
	}
	updated, err := h.svc.Update(c.Request.Context(), id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete removes a row and its history. It answers 404 when there was
// nothing to remove.
func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	id := c.Param("id")
	res, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !res.Deleted && res.HistoryRemoved == 0 {
		respondError(c, store.NotFound("delete", h.svc.Kind(), id))
		return
	}
	c.JSON(http.StatusOK, res)
}
