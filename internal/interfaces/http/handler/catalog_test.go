package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wbpos/backend/internal/domain/catalog"
	"github.com/wbpos/backend/internal/domain/shared"
	"github.com/wbpos/backend/internal/interfaces/http/dto"
)

func catalogRoutes(h *CatalogHandler) func(*gin.Engine) {
	return func(r *gin.Engine) {
		r.POST("/catalog/products", h.FetchProducts)
	}
}

func TestCatalogHandler_FetchProducts(t *testing.T) {
	svc := new(mockCatalog)
	svc.On("FetchCatalog", mock.Anything, "tok", "mug").Return([]catalog.Product{
		{ID: 11, VendorCode: "VC-11", Title: "Mug"},
		{ID: 12, VendorCode: "VC-12"},
	}, nil)

	w := performRequest(http.MethodPost, "/catalog/products",
		dto.FetchProductsRequest{Token: "tok", Search: "mug"}, nil, catalogRoutes(NewCatalogHandler(svc)))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.EqualValues(t, 2, data["count"])
	products := data["products"].([]any)
	require.Len(t, products, 2)
	first := products[0].(map[string]any)
	assert.EqualValues(t, 11, first["id"])
	assert.Equal(t, "Mug", first["title"])
	assert.Equal(t, catalog.Product{ID: 11, VendorCode: "VC-11", Title: "Mug"}.Label(), first["label"])
	svc.AssertExpectations(t)
}

func TestCatalogHandler_FetchProducts_Empty(t *testing.T) {
	svc := new(mockCatalog)
	svc.On("FetchCatalog", mock.Anything, "tok", "").Return(nil, nil)

	w := performRequest(http.MethodPost, "/catalog/products",
		map[string]string{"token": "tok"}, nil, catalogRoutes(NewCatalogHandler(svc)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"products":[]`)
}

func TestCatalogHandler_FetchProducts_MissingToken(t *testing.T) {
	svc := new(mockCatalog)

	w := performRequest(http.MethodPost, "/catalog/products",
		map[string]string{"search": "mug"}, nil, catalogRoutes(NewCatalogHandler(svc)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.NotEmpty(t, resp.Error.Details)
	assert.Equal(t, "token", resp.Error.Details[0].Field)
	svc.AssertNotCalled(t, "FetchCatalog", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogHandler_FetchProducts_Upstream(t *testing.T) {
	svc := new(mockCatalog)
	svc.On("FetchCatalog", mock.Anything, "tok", "").
		Return(nil, shared.NewUpstreamStatus(http.StatusUnauthorized, "unauthorized"))

	w := performRequest(http.MethodPost, "/catalog/products",
		map[string]string{"token": "tok"}, map[string]string{"X-Request-ID": "rid-7"}, catalogRoutes(NewCatalogHandler(svc)))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeUpstream, resp.Error.Code)
	assert.Equal(t, "rid-7", resp.Error.RequestID)
	assert.Nil(t, resp.Data, "no partial catalog on failure")
}
