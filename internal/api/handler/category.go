package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maggie-r-m-88/commonscapes/internal/service"
)

// CategoryHandler handles category browsing endpoints.
type CategoryHandler struct {
	searchService *service.SearchService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(searchService *service.SearchService) *CategoryHandler {
	return &CategoryHandler{searchService: searchService}
}

// ListCategories handles GET /api/v1/categories. With ?parent=slug it lists
// only that category's children; otherwise the full two-level tree.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	if parent := c.Query("parent"); parent != "" {
		children, err := h.searchService.CategoryChildren(c.Request.Context(), parent)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Category not found: " + parent})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": children})
		return
	}

	categories, err := h.searchService.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CategoryImages handles GET /api/v1/categories/:slug/images.
func (h *CategoryHandler) CategoryImages(c *gin.Context) {
	slug := c.Param("slug")

	page := queryInt(c, "page", 0)
	pageSize := queryInt(c, "page_size", 0)

	result, err := h.searchService.CategoryImages(c.Request.Context(), slug, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found: " + slug})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
