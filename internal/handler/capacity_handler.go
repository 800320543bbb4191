package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/capacity-api/internal/dto"
	"github.com/noah-isme/capacity-api/internal/models"
	"github.com/noah-isme/capacity-api/internal/service"
	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
	"github.com/noah-isme/capacity-api/pkg/response"
)

type schedulingService interface {
	Availability(ctx context.Context, req dto.AvailabilityRequest) ([]models.AvailabilitySlot, error)
	Schedule(ctx context.Context, req dto.ScheduleRequest) (*models.ScheduleResult, error)
	CapacityTable(ctx context.Context, query dto.CapacityTableQuery) ([]models.CapacityRow, error)
	InvalidateCapacityTable(ctx context.Context, query dto.CapacityTableQuery) error
}

type availabilityExporter interface {
	Availability(ctx context.Context, req dto.AvailabilityRequest, format string) (*service.ExportResult, error)
}

// CapacityHandler exposes capacity availability and reservation endpoints.
type CapacityHandler struct {
	scheduling schedulingService
	exporter   availabilityExporter
}

// NewCapacityHandler builds a new handler.
func NewCapacityHandler(scheduling schedulingService, exporter availabilityExporter) *CapacityHandler {
	return &CapacityHandler{scheduling: scheduling, exporter: exporter}
}

// Availability godoc
// @Summary Compute capacity availability
// @Description Remaining minutes per category and date after taking the requested quantity
// @Tags Capacity
// @Accept json
// @Produce json
// @Param payload body dto.AvailabilityRequest true "Availability query"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /capacity [post]
func (h *CapacityHandler) Availability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := service.DecodeJSON(c.Request.Body, &req); err != nil {
		response.Error(c, err)
		return
	}

	slots, err := h.scheduling.Availability(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, map[string]interface{}{"total": len(slots)})
}

// Schedule godoc
// @Summary Reserve capacity
// @Description Reserves minutes on a date split evenly across the matching categories
// @Tags Capacity
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleRequest true "Reservation"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /capacity/schedule [post]
func (h *CapacityHandler) Schedule(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := service.DecodeJSON(c.Request.Body, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.scheduling.Schedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// CapacityTable godoc
// @Summary Pool capacity table
// @Tags Capacity
// @Produce json
// @Param poolId path int true "Pool ID"
// @Param periodo query string false "Period filter"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /capacity/pools/{poolId}/categories [get]
func (h *CapacityHandler) CapacityTable(c *gin.Context) {
	var query dto.CapacityTableQuery
	if err := c.ShouldBindUri(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "poolId must be a positive integer"))
		return
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	rows, err := h.scheduling.CapacityTable(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, map[string]interface{}{"total": len(rows)})
}

// InvalidateCapacityTable godoc
// @Summary Drop the cached capacity table of a pool
// @Tags Capacity
// @Param poolId path int true "Pool ID"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /capacity/pools/{poolId}/cache [delete]
func (h *CapacityHandler) InvalidateCapacityTable(c *gin.Context) {
	var query dto.CapacityTableQuery
	if err := c.ShouldBindUri(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "poolId must be a positive integer"))
		return
	}
	if err := h.scheduling.InvalidateCapacityTable(c.Request.Context(), query); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export capacity availability
// @Tags Capacity
// @Accept json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param payload body dto.AvailabilityRequest true "Availability query"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /capacity/export [post]
func (h *CapacityHandler) Export(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := service.DecodeJSON(c.Request.Body, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exporter.Availability(c.Request.Context(), req, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
