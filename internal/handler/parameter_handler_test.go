package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/capacity-api/internal/dto"
	appErrors "github.com/noah-isme/capacity-api/pkg/errors"
)

type parameterServiceMock struct {
	items map[string]dto.ParameterItem
}

func (m *parameterServiceMock) GetByName(_ context.Context, name string) (*dto.ParameterItem, error) {
	item, ok := m.items[name]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parameter not found")
	}
	return &item, nil
}

func TestParameterHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewParameterHandler(&parameterServiceMock{items: map[string]dto.ParameterItem{
		"MIN_VIAJE_CLIENTE_ENTRE_ORDEN": {ID: 1, Name: "MIN_VIAJE_CLIENTE_ENTRE_ORDEN", Value: "10"},
	}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/parameters/MIN_VIAJE_CLIENTE_ENTRE_ORDEN", nil)
	c.Params = gin.Params{{Key: "name", Value: "MIN_VIAJE_CLIENTE_ENTRE_ORDEN"}}

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, "10", data["valor"])
	assert.Equal(t, "MIN_VIAJE_CLIENTE_ENTRE_ORDEN", data["ident"])
}

func TestParameterHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewParameterHandler(&parameterServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/parameters/min_viaje", nil)
	c.Params = gin.Params{{Key: "name", Value: "min_viaje"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
