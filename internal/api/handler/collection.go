package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maggie-r-m-88/commonscapes/internal/service"
)

// CollectionHandler handles the collection and featured-home endpoints.
type CollectionHandler struct {
	searchService *service.SearchService
}

// NewCollectionHandler creates a new collection handler.
func NewCollectionHandler(searchService *service.SearchService) *CollectionHandler {
	return &CollectionHandler{searchService: searchService}
}

// Collection handles GET /api/v1/collection.
func (h *CollectionHandler) Collection(c *gin.Context) {
	page := queryInt(c, "page", 0)
	pageSize := queryInt(c, "page_size", 0)

	result, err := h.searchService.Collection(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// FeaturedHome handles GET /api/v1/featured/home.
func (h *CollectionHandler) FeaturedHome(c *gin.Context) {
	gridCount := queryInt(c, "count", 0)

	home, err := h.searchService.FeaturedHomeScreen(c.Request.Context(), gridCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, home)
}
