package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/classifier"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/media"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"

	"github.com/gin-gonic/gin"
)

// Multipart field names for uploaded files, by category
var fileFields = map[models.Category]string{
	models.CategoryImage:  "imageFile",
	models.CategoryQRCode: "qrCodeFile",
	models.CategoryVideo:  "videoFile",
}

// multipart overhead allowed on top of the file size limit
const formOverhead = 1 << 20

type analyzeRequest struct {
	Category string `json:"category" form:"category"`
	Content  string `json:"content" form:"content"`
	URL      string `json:"url" form:"url"`
	Source   string `json:"source" form:"source"`
}

// Analyze handles POST /api/v1/analyze
func (h *Handler) Analyze(c *gin.Context) {
	form, err := h.readForm(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	item, err := h.pipeline.Submit(c.Request.Context(), actorFrom(c), *form)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *Handler) readForm(c *gin.Context) (*classifier.Form, error) {
	multipart := strings.HasPrefix(c.ContentType(), "multipart/form-data")
	if multipart {
		h.limitBody(c, h.opts.MaxUploadBytes+formOverhead)
	} else {
		h.limitBody(c, h.opts.MaxJSONBytes)
	}

	var req analyzeRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge) && multipart:
			return nil, fmt.Errorf("%w: upload exceeds %d bytes", models.ErrMediaRead, h.opts.MaxUploadBytes)
		case errors.As(err, &tooLarge):
			return nil, errBodyTooLarge
		}
		return nil, &models.ValidationError{Field: "body", Message: "Request body could not be parsed."}
	}

	category := models.Category(strings.ToLower(strings.TrimSpace(req.Category)))
	if !category.Valid() {
		return nil, &models.ValidationError{Field: "category", Message: "Unknown content category."}
	}

	form := &classifier.Form{
		Category: category,
		Content:  req.Content,
		URL:      req.URL,
		Source:   clientSource(req.Source),
	}

	field, wantsFile := fileFields[category]
	if !multipart || !wantsFile {
		return form, nil
	}

	header, err := c.FormFile(field)
	if err != nil {
		// missing file is reported by validation
		return form, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMediaRead, err)
	}
	defer file.Close()

	payload, err := media.Normalize(file, header.Filename, category, h.opts.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	switch category {
	case models.CategoryImage:
		form.Image = payload
	case models.CategoryQRCode:
		form.QRCode = payload
	case models.CategoryVideo:
		form.Video = payload
	}
	return form, nil
}

// limitBody caps how much of the request body handlers may read
func (h *Handler) limitBody(c *gin.Context, n int64) {
	if n > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
	}
}

// clientSource keeps only hints a client may set. The qrcode and video
// sources are assigned by the pipeline.
func clientSource(s string) models.Source {
	switch src := models.Source(strings.ToLower(strings.TrimSpace(s))); src {
	case models.SourceText, models.SourceImage:
		return src
	}
	return ""
}
