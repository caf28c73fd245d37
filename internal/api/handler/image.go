package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maggie-r-m-88/commonscapes/internal/service"
)

// ImageHandler handles single-image endpoints.
type ImageHandler struct {
	searchService *service.SearchService
}

// NewImageHandler creates a new image handler.
func NewImageHandler(searchService *service.SearchService) *ImageHandler {
	return &ImageHandler{searchService: searchService}
}

func imageID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid image id",
		})
		return 0, false
	}
	return id, true
}

// GetImage handles GET /api/v1/images/:id.
func (h *ImageHandler) GetImage(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		return
	}

	image, err := h.searchService.GetImage(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, image)
}

// Related handles GET /api/v1/images/:id/related.
func (h *ImageHandler) Related(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		return
	}

	images, err := h.searchService.Related(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": images})
}

// Taxonomy handles GET /api/v1/images/:id/taxonomy.
func (h *ImageHandler) Taxonomy(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		return
	}

	matches, err := h.searchService.Taxonomy(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": matches})
}
