package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AssistantInput defines the structure of the JSON request body.
type AssistantInput struct {
	Question string `json:"question" binding:"required"`
}

// AskAssistant is the handler for POST /admin/assistant.
// Admin-gated by the router; the service itself only ever gets the
// read-only connection pool.
func (h *Handlers) AskAssistant(c *gin.Context) {
	if h.Assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured"})
		return
	}

	var input AssistantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.Assistant.Answer(c.Request.Context(), input.Question)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Assistant unavailable: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
