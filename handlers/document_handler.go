package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avkap007/pdf-query-bot/repository"
)

// DocumentHandler serves the extracted metadata for browsing
type DocumentHandler struct {
	metadata *repository.MetadataStore
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(metadata *repository.MetadataStore) *DocumentHandler {
	return &DocumentHandler{metadata: metadata}
}

// List handles GET /api/documents
func (h *DocumentHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.metadata.All(),
	})
}

// Get handles GET /api/documents/:ref
func (h *DocumentHandler) Get(c *gin.Context) {
	ref := c.Param("ref")

	record, ok := h.metadata.FindByToken(ref)
	if !ok {
		record, ok = h.metadata.Get(ref)
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "No document matches " + ref,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}
