package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"golfcam/internal/model"
	"golfcam/internal/service"
	"golfcam/internal/store"
)

// CameraHandler serves camera assignment and history endpoints.
type CameraHandler struct {
	cameras     *service.CameraService
	assignments *service.AssignmentService
}

func NewCameraHandler(cameras *service.CameraService, assignments *service.AssignmentService) *CameraHandler {
	return &CameraHandler{cameras: cameras, assignments: assignments}
}

// RegisterRoutes mounts the camera actions under the cameras group.
func (h *CameraHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/:id/assign", h.Assign)
	r.POST("/:id/unassign", h.Unassign)
	r.GET("/:id/history", h.History)
}

type assignRequest struct {
	WorkerID string `json:"workerId" binding:"required"`
}

// Assign gives a camera to a worker
// @Summary Assign camera
// @Tags Cameras
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Camera ID"
// @Param body body assignRequest true "Worker"
// @Success 200 {object} model.Camera
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /cameras/{id}/assign [post]
func (h *CameraHandler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	camera, err := h.assignments.Assign(c.Request.Context(), c.Param("id"), req.WorkerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, camera)
}

// Unassign releases a camera from its worker
// @Summary Unassign camera
// @Tags Cameras
// @Produce json
// @Security BearerAuth
// @Param id path string true "Camera ID"
// @Success 200 {object} model.Camera
// @Failure 404 {object} map[string]string
// @Router /cameras/{id}/unassign [post]
func (h *CameraHandler) Unassign(c *gin.Context) {
	camera, err := h.assignments.Unassign(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, camera)
}

// History returns a camera's history, newest first
// @Summary Camera history
// @Tags Cameras
// @Produce json
// @Security BearerAuth
// @Param id path string true "Camera ID"
// @Success 200 {array} model.CameraHistory
// @Failure 404 {object} map[string]string
// @Router /cameras/{id}/history [get]
func (h *CameraHandler) History(c *gin.Context) {
	rows, err := h.cameras.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// HistoryHandler serves the camera history collection.
type HistoryHandler struct {
	svc *service.HistoryService
}

func NewHistoryHandler(svc *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

func (h *HistoryHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.DELETE("/:id", h.Delete)
}

func (h *HistoryHandler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), store.FilterFromQuery(c.Request.URL.Query()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *HistoryHandler) Create(c *gin.Context) {
	var entry model.CameraHistory
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, err.Error())
		return
	}
	created, err := h.svc.Append(c.Request.Context(), &entry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *HistoryHandler) Get(c *gin.Context) {
	id, ok := historyID(c)
	if !ok {
		return
	}
	entry, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *HistoryHandler) Delete(c *gin.Context) {
	id, ok := historyID(c)
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": deleted})
}

func historyID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		badRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}
