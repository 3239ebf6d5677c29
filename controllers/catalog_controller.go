package controllers

import (
	"net/http"

	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	catalog *services.CatalogService
}

func NewCatalogController(catalog *services.CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// ListProducts returns the cached catalog filtered by the optional q and
// category query parameters.
func (pc *CatalogController) ListProducts(c *gin.Context) {
	products := pc.catalog.Search(c.Query("q"), c.Query("category"))
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (pc *CatalogController) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": pc.catalog.Categories()})
}

// Reload refetches the catalog from its sources.
func (pc *CatalogController) Reload(c *gin.Context) {
	products := pc.catalog.Load(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}
