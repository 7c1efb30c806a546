package models

import (
	"encoding/base64"
	"fmt"
)

// Category is the user-declared kind of a submission
type Category string

const (
	CategoryText   Category = "text"
	CategoryImage  Category = "image"
	CategoryQRCode Category = "qrcode"
	CategoryVideo  Category = "video"
	CategoryURL    Category = "url"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryText, CategoryImage, CategoryQRCode, CategoryVideo, CategoryURL:
		return true
	}
	return false
}

// Source tells the model how to interpret an attached payload
type Source string

const (
	SourceText   Source = "text"
	SourceImage  Source = "image"
	SourceQRCode Source = "qrcode"
	SourceVideo  Source = "video"
)

// MediaPayload is an uploaded file normalised to a MIME type and raw bytes
type MediaPayload struct {
	MIMEType string
	Data     []byte
	Name     string
}

// DataURI renders the payload as data:<mime>;base64,<data>
func (m *MediaPayload) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", m.MIMEType, base64.StdEncoding.EncodeToString(m.Data))
}

// ContentAnalysisRequest is the outbound shape for non-URL submissions
type ContentAnalysisRequest struct {
	Content string        `validate:"required_without=Media"`
	Media   *MediaPayload `validate:"required_without=Content"`
	Source  Source        `validate:"omitempty,oneof=text image qrcode video"`
}

// URLAnalysisRequest is the outbound shape for URL submissions
type URLAnalysisRequest struct {
	URL string `validate:"required,url"`
}

// RequestKind discriminates AnalysisRequest
type RequestKind string

const (
	RequestContent RequestKind = "content"
	RequestURL     RequestKind = "url"
)

// AnalysisRequest is a routed, validated request. Exactly one of Content or
// URL is set, matching Kind.
type AnalysisRequest struct {
	Kind     RequestKind
	Category Category
	Content  *ContentAnalysisRequest
	URL      *URLAnalysisRequest
}

// Information statuses returned by content analysis
const (
	StatusReal       = "REAL"
	StatusFake       = "FAKE"
	StatusScam       = "SCAM"
	StatusSuspicious = "SUSPICIOUS"
)

// URL safety statuses
const (
	SafetySafe       = "Safe"
	SafetySuspicious = "Suspicious"
	SafetyUnsafe     = "Unsafe"
)

// PossibilityScore holds the model's two percentages. They are not
// re-normalised and need not sum to 100.
type PossibilityScore struct {
	True        *float64 `json:"true" validate:"required,gte=0,lte=100"`
	FalseOrScam *float64 `json:"falseOrScam" validate:"required,gte=0,lte=100"`
}

// DetailedAnalysis is the red-flag breakdown of a content verdict
type DetailedAnalysis struct {
	PsychologicalTriggers []string `json:"psychologicalTriggers"`
	LanguageAnalysis      []string `json:"languageAnalysis"`
	RequestAnalysis       []string `json:"requestAnalysis"`
	VideoAnalysis         []string `json:"videoAnalysis,omitempty"`
}

// ContentVerdict is the structured result for text, image, QR and video submissions
type ContentVerdict struct {
	InformationStatus     string            `json:"informationStatus" validate:"required,oneof=REAL FAKE SCAM SUSPICIOUS"`
	PossibilityScore      *PossibilityScore `json:"possibilityScore" validate:"required"`
	InformationType       []string          `json:"informationType" validate:"required"`
	DetailedAnalysis      *DetailedAnalysis `json:"detailedAnalysis" validate:"required"`
	SimpleExplanation     string            `json:"simpleExplanation" validate:"required"`
	WarningOrSafetyAdvice string            `json:"warningOrSafetyAdvice" validate:"required"`
	FinalVerdict          string            `json:"finalVerdict" validate:"required"`
}

// URLVerdict is the structured result for URL submissions
type URLVerdict struct {
	SafetyStatus string `json:"safetyStatus" validate:"required,oneof=Safe Suspicious Unsafe"`
	Reason       string `json:"reason" validate:"required"`
	Risk         string `json:"risk" validate:"required"`
	Advice       string `json:"advice" validate:"required"`
}

// VerdictKind discriminates Verdict
type VerdictKind string

const (
	VerdictContent VerdictKind = "content"
	VerdictURL     VerdictKind = "url"
)

// Verdict is either a ContentVerdict or a URLVerdict, selected by Kind
type Verdict struct {
	Kind    VerdictKind     `json:"kind"`
	Content *ContentVerdict `json:"content,omitempty"`
	URL     *URLVerdict     `json:"url,omitempty"`
}

// NewContentVerdict wraps a content verdict
func NewContentVerdict(v *ContentVerdict) Verdict {
	return Verdict{Kind: VerdictContent, Content: v}
}

// NewURLVerdict wraps a URL verdict
func NewURLVerdict(v *URLVerdict) Verdict {
	return Verdict{Kind: VerdictURL, URL: v}
}
