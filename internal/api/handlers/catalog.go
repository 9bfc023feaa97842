package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/internal/money"
)

// ProductResponse is a product with its display price
type ProductResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Price        string   `json:"price"`
	PriceDisplay string   `json:"priceDisplay"`
	PriceCompact string   `json:"priceCompact"`
	Stock        string   `json:"stock"`
	InStock      bool     `json:"inStock"`
	Category     string   `json:"category"`
	Rating       string   `json:"rating"`
	ImageURLs    []string `json:"imageUrls"`
	Description  string   `json:"description"`
}

// HandleListProducts handles GET /v1/products
func HandleListProducts(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query service.ProductQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
			return
		}

		products, err := catalog.List(c.Request.Context(), query)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		resp := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, toProductResponse(p))
		}
		c.JSON(http.StatusOK, gin.H{
			"products": resp,
			"count":    len(resp),
		})
	}
}

// HandleGetProduct handles GET /v1/products/:id
func HandleGetProduct(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := natParam(c, "id", "product ID")
		if !ok {
			return
		}

		product, err := catalog.Product(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toProductResponse(*product))
	}
}

func toProductResponse(p domain.Product) ProductResponse {
	images := p.ImageURLs
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:           p.ID.String(),
		Title:        p.Title,
		Price:        p.Price.String(),
		PriceDisplay: money.Format(p.Price),
		PriceCompact: money.FormatCompact(p.Price),
		Stock:        p.Stock.String(),
		InStock:      p.InStock(),
		Category:     p.Category,
		Rating:       p.Rating.String(),
		ImageURLs:    images,
		Description:  p.Description,
	}
}
