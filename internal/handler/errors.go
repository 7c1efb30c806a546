package handler

import (
	"errors"
	"net/http"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errBodyTooLarge = errors.New("request body too large")

// writeError maps a pipeline error onto a status and a client-safe body.
// Model failures are logged with their cause and reported generically.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		verr *models.ValidationError
		cerr *models.ModelContractError
		merr *models.ModelCallError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"field":   verr.Field,
			"message": verr.Message,
		})
	case errors.Is(err, errBodyTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload_too_large"})
	case errors.Is(err, models.ErrQRDecodeFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "qr_decode_failed",
			"message": "Could not decode QR code from the image.",
		})
	case errors.Is(err, models.ErrUnsupportedMedia):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "unsupported_media",
			"message": "This file type is not supported for the selected category.",
		})
	case errors.Is(err, models.ErrMediaRead), errors.Is(err, models.ErrMediaDecode):
		h.logger.Warn("Media could not be processed", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "media_error",
			"message": "The uploaded file could not be processed.",
		})
	case errors.Is(err, models.ErrModelTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error":   "analysis_timeout",
			"message": "The analysis took too long. Please try again.",
		})
	case errors.As(err, &cerr), errors.As(err, &merr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "analysis_failed",
			"message": "An error occurred during analysis. Please try again.",
		})
	case errors.Is(err, models.ErrStoreUnavailable):
		h.logger.Error("History store unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history_unavailable"})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
