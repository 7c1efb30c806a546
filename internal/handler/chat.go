package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Prompt string `json:"prompt"`
}

// Chat handles POST /api/v1/chat
func (h *Handler) Chat(c *gin.Context) {
	h.limitBody(c, h.opts.MaxJSONBytes)

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(c, errBodyTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"field":   "prompt",
			"message": "Request body could not be parsed.",
		})
		return
	}

	res, err := h.chat.Ask(c.Request.Context(), actorFrom(c), req.Prompt)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Dashboard handles GET /api/v1/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	actor := actorFrom(c)
	if !actor.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in to view your dashboard"})
		return
	}

	c.JSON(http.StatusOK, h.history.Dashboard(c.Request.Context(), actor.UserID))
}
