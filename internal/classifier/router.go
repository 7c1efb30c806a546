package classifier

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"
)

// MinTextLength is the shortest direct text submission accepted
const MinTextLength = 20

// VideoInstruction accompanies every video sprite sheet sent to the model
const VideoInstruction = "You are analyzing keyframes from a video. Your main goal is to determine if this is a deepfake or AI-generated. " +
	"Critically assess if the depicted scenes are logically possible. Be extremely critical of any visual artifacts, " +
	"unnatural movements, or inconsistencies. Prioritize user safety above all else. " +
	"If there is any doubt, classify it as 'SUSPICIOUS' or 'FAKE'."

// Form is the set of field values a client submitted
type Form struct {
	Category models.Category
	Content  string
	URL      string
	Source   models.Source
	Image    *models.MediaPayload
	QRCode   *models.MediaPayload
	Video    *models.MediaPayload
}

// Validate reports the first field that fails its category's precondition
func Validate(f *Form) *models.ValidationError {
	switch f.Category {
	case models.CategoryText:
		// decoded QR text is forwarded as-is
		if f.Source == models.SourceQRCode {
			if strings.TrimSpace(f.Content) == "" {
				return &models.ValidationError{Field: "content", Message: "Please provide content to analyze."}
			}
			return nil
		}
		if utf8.RuneCountInString(f.Content) < MinTextLength {
			return &models.ValidationError{Field: "content", Message: "Content must be at least 20 characters."}
		}
	case models.CategoryImage:
		if f.Image == nil {
			return &models.ValidationError{Field: "imageFile", Message: "Please upload an image file."}
		}
	case models.CategoryQRCode:
		if f.QRCode == nil {
			return &models.ValidationError{Field: "qrCodeFile", Message: "Please upload a QR code image."}
		}
	case models.CategoryVideo:
		if f.Video == nil {
			return &models.ValidationError{Field: "videoFile", Message: "Please upload a video file."}
		}
	case models.CategoryURL:
		if strings.TrimSpace(f.URL) == "" {
			return &models.ValidationError{Field: "url", Message: "Please enter a URL."}
		}
		if !IsAbsoluteURL(strings.TrimSpace(f.URL)) {
			return &models.ValidationError{Field: "url", Message: "Please enter a valid URL."}
		}
	default:
		return &models.ValidationError{Field: "category", Message: "Unknown content category."}
	}
	return nil
}

// Route validates f and shapes it into a model request. The pipeline decodes
// QR codes and reroutes them as text or url before calling Route.
func Route(f *Form) (*models.AnalysisRequest, error) {
	if verr := Validate(f); verr != nil {
		return nil, verr
	}

	req := &models.AnalysisRequest{Category: f.Category}

	switch f.Category {
	case models.CategoryURL:
		req.Kind = models.RequestURL
		req.URL = &models.URLAnalysisRequest{URL: strings.TrimSpace(f.URL)}
		return req, nil
	case models.CategoryText:
		req.Content = &models.ContentAnalysisRequest{Content: f.Content, Source: f.Source}
	case models.CategoryImage:
		req.Content = &models.ContentAnalysisRequest{Media: f.Image, Source: f.Source}
	case models.CategoryQRCode:
		req.Content = &models.ContentAnalysisRequest{Media: f.QRCode, Source: models.SourceQRCode}
	case models.CategoryVideo:
		req.Content = &models.ContentAnalysisRequest{
			Content: VideoInstruction,
			Media:   f.Video,
			Source:  models.SourceVideo,
		}
	}
	req.Kind = models.RequestContent

	return req, nil
}

// IsAbsoluteURL reports whether s parses as a URL with a scheme and either a
// host or an opaque part
func IsAbsoluteURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}
