package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"golfcam/internal/model"
	"golfcam/internal/service"
)

// AdminHandler serves the fleet maintenance and bulk import endpoints.
type AdminHandler struct {
	maintenance *service.MaintenanceService
	imports     *service.ImportService
	auth        *service.AuthService
}

func NewAdminHandler(maintenance *service.MaintenanceService, imports *service.ImportService, auth *service.AuthService) *AdminHandler {
	return &AdminHandler{maintenance: maintenance, imports: imports, auth: auth}
}

func (h *AdminHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/reset", h.Reset)
	r.POST("/rebuild-views", h.RebuildViews)
	r.GET("/verify", h.Verify)
	r.GET("/stats", h.Stats)
	r.GET("/login-attempts", h.LoginAttempts)

	r.GET("/import/:kind/template", h.ImportTemplate)
	r.POST("/import/:kind", h.Import)
	r.GET("/import/tasks/:taskId", h.ImportStatus)
	r.GET("/import/tasks/:taskId/errors", h.ImportErrorReport)
}

// Reset returns every camera to the warehouse
// @Summary Warehouse reset
// @Description Every camera goes back to the warehouse unassigned and available; worker and tournament camera lists are cleared.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} reconcile.Report
// @Failure 500 {object} map[string]interface{}
// @Router /admin/reset [post]
func (h *AdminHandler) Reset(c *gin.Context) {
	report, err := h.maintenance.Reset(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RebuildViews recomputes every worker's camera list
// @Summary Rebuild worker views
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.RebuildReport
// @Router /admin/rebuild-views [post]
func (h *AdminHandler) RebuildViews(c *gin.Context) {
	report, err := h.maintenance.RebuildViews(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Verify reports assignment drift
// @Summary Verify assignments
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.VerifyReport
// @Router /admin/verify [get]
func (h *AdminHandler) Verify(c *gin.Context) {
	report, err := h.maintenance.Verify(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	counts, err := h.maintenance.Counts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// LoginAttempts lists recent login attempts, newest first.
func (h *AdminHandler) LoginAttempts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	attempts, err := h.auth.LoginAttempts(c.Request.Context(), c.Query("username"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": attempts, "total": len(attempts)})
}

func collectionKind(c *gin.Context) (string, bool) {
	kind, ok := model.Collections[c.Param("kind")]
	if !ok {
		badRequest(c, fmt.Sprintf("unknown collection %q", c.Param("kind")))
		return "", false
	}
	return kind, true
}

// ImportTemplate downloads the Excel template of a collection
// @Summary Import template
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param kind path string true "tournaments, workers, cameras or shipments"
// @Success 200 {file} binary
// @Router /admin/import/{kind}/template [get]
func (h *AdminHandler) ImportTemplate(c *gin.Context) {
	kind, ok := collectionKind(c)
	if !ok {
		return
	}
	buf, err := h.imports.Template(kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_template.xlsx", c.Param("kind")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Import bulk-upserts a dataset
// @Summary Import dataset
// @Description Accepts a JSON array body or a multipart upload named file (.json or .xlsx).
// @Tags Admin
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param kind path string true "tournaments, workers, cameras or shipments"
// @Success 200 {object} model.ImportResult
// @Failure 400 {object} map[string]string
// @Router /admin/import/{kind} [post]
func (h *AdminHandler) Import(c *gin.Context) {
	kind, ok := collectionKind(c)
	if !ok {
		return
	}

	var (
		rows []model.ImportRow
		err  error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, ferr := c.FormFile("file")
		if ferr != nil {
			badRequest(c, "missing file")
			return
		}
		f, ferr := fh.Open()
		if ferr != nil {
			badRequest(c, ferr.Error())
			return
		}
		defer f.Close()
		switch strings.ToLower(filepath.Ext(fh.Filename)) {
		case ".xlsx":
			rows, err = h.imports.ParseExcel(kind, f)
		case ".json":
			rows, err = h.imports.ParseJSON(kind, f)
		default:
			badRequest(c, "file must be .xlsx or .json")
			return
		}
	} else {
		rows, err = h.imports.ParseJSON(kind, c.Request.Body)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.imports.Import(c.Request.Context(), kind, rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) ImportStatus(c *gin.Context) {
	result, ok := h.imports.Result(c.Param("taskId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "import task not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) ImportErrorReport(c *gin.Context) {
	result, ok := h.imports.Result(c.Param("taskId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "import task not found"})
		return
	}
	buf, err := h.imports.ErrorReport(result)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=import_errors_%s.xlsx", result.TaskID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
