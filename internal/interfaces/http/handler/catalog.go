package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/wbpos/backend/internal/domain/catalog"
	"github.com/wbpos/backend/internal/interfaces/http/dto"
)

// CatalogFetcher lists the seller's cards
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context, token, search string) ([]catalog.Product, error)
}

// CatalogHandler serves the product picker
type CatalogHandler struct {
	BaseHandler
	catalog CatalogFetcher
}

// NewCatalogHandler creates a CatalogHandler
func NewCatalogHandler(catalog CatalogFetcher) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// FetchProducts godoc
// @ID           fetchCatalogProducts
// @Summary      List seller products
// @Description  Pages through the marketplace content API with the given token and returns every card once. A failing page fails the whole request.
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body dto.FetchProductsRequest true "Seller token and optional text search"
// @Success      200 {object} APIResponse[dto.ProductListResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /catalog/products [post]
func (h *CatalogHandler) FetchProducts(c *gin.Context) {
	var req dto.FetchProductsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	products, err := h.catalog.FetchCatalog(c.Request.Context(), req.Token, req.Search)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewProductListResponse(products))
}
