package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillswap/swap-service/internal/models"
	"github.com/skillswap/swap-service/internal/repositories"
	"github.com/skillswap/swap-service/internal/services"
	"github.com/skillswap/swap-service/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// GenerateReport builds and persists an analytics snapshot. Admin only.
// @Summary Generate report
// @Tags admin
// @Accept json
// @Produce json
// @Param report body services.GenerateReportRequest true "Report parameters"
// @Success 201 {object} models.Report
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/reports [post]
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	h.LogRequest(c, "Generating report")

	var req services.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	report, err := h.reportService.Generate(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// GetReport retrieves a stored report. Admin only.
// @Summary Get report by ID
// @Tags admin
// @Produce json
// @Param id path uint true "Report ID"
// @Success 200 {object} models.Report
// @Failure 404 {object} ErrorResponse
// @Router /admin/reports/{id} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	report, err := h.reportService.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListReports lists stored reports. Admin only.
// @Summary List reports
// @Tags admin
// @Produce json
// @Param type query string false "Filter by report type"
// @Success 200 {object} services.ReportListResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	limit, offset := h.parsePagination(c)
	filters := repositories.ReportFilters{Limit: limit, Offset: offset}

	if typeStr := c.Query("type"); typeStr != "" {
		reportType := models.ReportType(typeStr)
		filters.Type = &reportType
	}

	reports, err := h.reportService.List(c.Request.Context(), filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// PlatformStats returns the live admin dashboard aggregate. Admin only.
// @Summary Platform statistics
// @Tags admin
// @Produce json
// @Success 200 {object} services.PlatformStats
// @Failure 403 {object} ErrorResponse
// @Router /admin/stats [get]
func (h *ReportHandler) PlatformStats(c *gin.Context) {
	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	stats, err := h.reportService.PlatformStats(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportUsers streams a spreadsheet of all users. Admin only.
// @Summary Export users as xlsx
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /admin/exports/users [get]
func (h *ReportHandler) ExportUsers(c *gin.Context) {
	h.export(c, "users", h.reportService.ExportUsers)
}

// ExportSwaps streams a spreadsheet of all swap requests. Admin only.
// @Summary Export swap requests as xlsx
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /admin/exports/swaps [get]
func (h *ReportHandler) ExportSwaps(c *gin.Context) {
	h.export(c, "swaps", h.reportService.ExportSwaps)
}

func (h *ReportHandler) export(c *gin.Context, name string, fn func(ctx context.Context, actor *models.User) ([]byte, error)) {
	h.LogRequest(c, "Exporting "+name)

	actor, err := GetActor(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	data, err := fn(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	fileName := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
