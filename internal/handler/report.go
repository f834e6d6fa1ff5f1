package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"golfcam/internal/report"
	"golfcam/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the dashboard series.
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/tournaments/monthly", h.TournamentsMonthly)
	r.GET("/shipments/monthly", h.ShipmentsMonthly)
	r.GET("/states", h.States)
}

// TournamentsMonthly returns tournaments per month
// @Summary Tournaments per month
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param split query string false "Split by status when set to status"
// @Param days query int false "Only tournaments lasting this many days"
// @Param hole query int false "Only tournaments that include this hole"
// @Param _format query string false "json, csv or xlsx" default(json)
// @Success 200 {array} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /reports/tournaments/monthly [get]
func (h *ReportHandler) TournamentsMonthly(c *gin.Context) {
	days, ok := intQuery(c, "days")
	if !ok {
		return
	}
	hole, ok := intQuery(c, "hole")
	if !ok {
		return
	}
	q := service.TournamentReportQuery{Split: splitQuery(c), Days: days, Hole: hole}
	rows, err := h.svc.TournamentsMonthly(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	writeRows(c, "torneos", rows)
}

// ShipmentsMonthly returns shipments per month
// @Summary Shipments per month
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param split query string false "Split by status when set to status"
// @Param status query string false "Only shipments with this status"
// @Param _format query string false "json, csv or xlsx" default(json)
// @Success 200 {array} map[string]interface{}
// @Router /reports/shipments/monthly [get]
func (h *ReportHandler) ShipmentsMonthly(c *gin.Context) {
	q := service.ShipmentReportQuery{Split: splitQuery(c), Status: c.Query("status")}
	rows, err := h.svc.ShipmentsMonthly(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	writeRows(c, "envios", rows)
}

// States returns the per-state map summary
// @Summary State summary
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param state query string false "Only this state"
// @Success 200 {array} report.StateSummary
// @Router /reports/states [get]
func (h *ReportHandler) States(c *gin.Context) {
	states, err := h.svc.States(c.Request.Context(), c.Query("state"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, states)
}

func writeRows(c *gin.Context, name string, rows []report.Row) {
	filename := fmt.Sprintf("%s_%s", name, time.Now().Format("20060102"))
	switch c.DefaultQuery("_format", "json") {
	case "json":
		c.JSON(http.StatusOK, rows)
	case "csv":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(report.ExportRows(rows, ",")))
	case "xlsx":
		buf, err := report.ExportXLSX(rows, name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", filename))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	default:
		badRequest(c, "unknown _format, use json, csv or xlsx")
	}
}

// splitQuery reads split=status or any true boolean.
func splitQuery(c *gin.Context) bool {
	raw := c.Query("split")
	if raw == "status" {
		return true
	}
	split, err := strconv.ParseBool(raw)
	return err == nil && split
}

func intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, fmt.Sprintf("invalid %s: %q", key, raw))
		return 0, false
	}
	return n, true
}
