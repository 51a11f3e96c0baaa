package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avkap007/pdf-query-bot/service"
)

// QueryHandler handles HTTP requests for question answering
type QueryHandler struct {
	queryService *service.QueryService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryService *service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// QueryRequest represents the request body for a question
type QueryRequest struct {
	Question string `json:"question" binding:"required"`
}

// Query handles POST /api/query
func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	answer, err := h.queryService.Answer(c.Request.Context(), req.Question)
	if err != nil {
		code := "ANSWER_FAILED"
		if errors.Is(err, service.ErrRetrievalFailed) {
			code = "RETRIEVAL_FAILED"
		} else if errors.Is(err, service.ErrGenerationFailed) {
			code = "GENERATION_FAILED"
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": "The answer could not be generated. Please retry your question.",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    answer,
	})
}

// FollowupRequest represents the request body for a per-document follow-up
type FollowupRequest struct {
	Question string `json:"question" binding:"required"`
}

// Followup handles POST /api/documents/:ref/followup. This path never
// surfaces an error; failures come back as an apologetic answer string.
func (h *QueryHandler) Followup(c *gin.Context) {
	var req FollowupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	answer := h.queryService.AnswerAboutDocument(c.Request.Context(), req.Question, c.Param("ref"))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"answer": answer,
		},
	})
}
