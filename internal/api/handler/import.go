package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maggie-r-m-88/commonscapes/internal/service"
)

// ImportHandler handles the import endpoint.
type ImportHandler struct {
	importService *service.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// ImportRequest is the body of POST /api/v1/import.
type ImportRequest struct {
	Filename string `json:"filename"`
}

// Import handles POST /api/v1/import. It runs the full enrichment pipeline
// for one Commons filename and reports what happened.
func (h *ImportHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	req.Filename = strings.TrimSpace(req.Filename)
	if req.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Field 'filename' is required",
		})
		return
	}

	result, err := h.importService.Import(c.Request.Context(), req.Filename)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "File not found: " + req.Filename,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Import failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
