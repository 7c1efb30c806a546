// Package schema enforces the request and response contracts exchanged with
// the model. Responses that fail validation are never coerced.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"

	"github.com/go-playground/validator/v10"
)

// Template names used to key model calls and contract errors
const (
	TemplateContent = "analyzeContent"
	TemplateURL     = "analyzeURL"
	TemplateChat    = "askChatbot"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRequest checks a routed request before it leaves the process
func ValidateRequest(req *models.AnalysisRequest) error {
	switch req.Kind {
	case models.RequestContent:
		if req.Content == nil {
			return errors.New("content request missing body")
		}
		if err := validate.Struct(req.Content); err != nil {
			return fmt.Errorf("invalid content request: %w", err)
		}
	case models.RequestURL:
		if req.URL == nil {
			return errors.New("url request missing body")
		}
		if err := validate.Struct(req.URL); err != nil {
			return fmt.Errorf("invalid url request: %w", err)
		}
	default:
		return fmt.Errorf("unknown request kind %q", req.Kind)
	}
	return nil
}

// DecodeContentVerdict parses and validates a content-analysis response
func DecodeContentVerdict(raw string) (*models.ContentVerdict, error) {
	var v models.ContentVerdict
	if err := decode(raw, &v); err != nil {
		return nil, &models.ModelContractError{Template: TemplateContent, Err: err}
	}
	return &v, nil
}

// DecodeURLVerdict parses and validates a URL-analysis response
func DecodeURLVerdict(raw string) (*models.URLVerdict, error) {
	var v models.URLVerdict
	if err := decode(raw, &v); err != nil {
		return nil, &models.ModelContractError{Template: TemplateURL, Err: err}
	}
	return &v, nil
}

func decode(raw string, out any) error {
	clean := StripFences(raw)
	if clean == "" {
		return errors.New("empty response")
	}
	if err := json.Unmarshal([]byte(clean), out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("response failed validation: %w", err)
	}
	return nil
}

// StripFences removes a surrounding markdown code block if the model added one
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
