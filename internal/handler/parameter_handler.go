package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/capacity-api/internal/dto"
	"github.com/noah-isme/capacity-api/pkg/response"
)

type parameterService interface {
	GetByName(ctx context.Context, name string) (*dto.ParameterItem, error)
}

// ParameterHandler exposes configuration parameters.
type ParameterHandler struct {
	service parameterService
}

// NewParameterHandler builds a new handler.
func NewParameterHandler(service parameterService) *ParameterHandler {
	return &ParameterHandler{service: service}
}

// Get godoc
// @Summary Get parameter by name
// @Tags Parameters
// @Produce json
// @Param name path string true "Parameter name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parameters/{name} [get]
func (h *ParameterHandler) Get(c *gin.Context) {
	item, err := h.service.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}
