package service

import (
	"context"
	"errors"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/classifier"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/metrics"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/qr"

	"go.uber.org/zap"
)

// QRDecoder finds and classifies QR symbols
type QRDecoder interface {
	Decode(payload *models.MediaPayload) (qr.Decoded, bool)
}

// SpriteBuilder turns a video upload into a keyframe sprite sheet
type SpriteBuilder interface {
	Sprite(ctx context.Context, video *models.MediaPayload) (*models.MediaPayload, error)
}

// VerdictSource produces a verdict for a routed request
type VerdictSource interface {
	Analyze(ctx context.Context, req *models.AnalysisRequest) (models.Verdict, error)
}

// Pipeline runs one submission from form values to a recorded history item:
// validate, decode QR, sample video, route, analyze, record. Each step runs
// only after the previous one succeeded.
type Pipeline struct {
	qr       QRDecoder
	sprites  SpriteBuilder
	analyzer VerdictSource
	history  *HistoryService
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewPipeline wires the pipeline stages
func NewPipeline(decoder QRDecoder, sprites SpriteBuilder, analyzer VerdictSource, history *HistoryService, m *metrics.Metrics, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		qr:       decoder,
		sprites:  sprites,
		analyzer: analyzer,
		history:  history,
		metrics:  m,
		logger:   logger,
	}
}

// Submit analyses the form and returns the recorded history item
func (p *Pipeline) Submit(ctx context.Context, actor Actor, form classifier.Form) (*models.HistoryItem, error) {
	declared := form.Category

	item, err := p.submit(ctx, actor, &form)
	p.metrics.Analysis(string(declared), outcome(err))
	if err != nil {
		return nil, err
	}

	p.logger.Info("Submission analysed",
		zap.String("declared_category", string(declared)),
		zap.String("category", string(item.Prompt.Type)),
		zap.String("verdict_kind", string(item.Verdict.Kind)),
		zap.String("id", item.ID))

	return item, nil
}

func (p *Pipeline) submit(ctx context.Context, actor Actor, form *classifier.Form) (*models.HistoryItem, error) {
	if verr := classifier.Validate(form); verr != nil {
		return nil, verr
	}

	if form.Category == models.CategoryQRCode {
		decoded, ok := p.qr.Decode(form.QRCode)
		if !ok {
			return nil, models.ErrQRDecodeFailed
		}
		p.logger.Debug("QR code decoded", zap.String("rerouted_to", string(decoded.Category)))
		*form = classifier.Form{
			Category: decoded.Category,
			Content:  decoded.Content,
			URL:      decoded.URL,
			Source:   models.SourceQRCode,
		}
	}

	summary := summarize(form)

	if form.Category == models.CategoryVideo {
		sprite, err := p.sprites.Sprite(ctx, form.Video)
		if err != nil {
			return nil, err
		}
		form.Video = sprite
	}

	req, err := classifier.Route(form)
	if err != nil {
		return nil, err
	}

	verdict, err := p.analyzer.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	return p.history.Record(ctx, actor, summary, verdict), nil
}

// summarize builds the short description shown in history
func summarize(form *classifier.Form) models.PromptSummary {
	s := models.PromptSummary{Type: form.Category}
	switch form.Category {
	case models.CategoryText:
		s.Content = form.Content
	case models.CategoryURL:
		s.Content = form.URL
	case models.CategoryImage:
		s.Content = "Image: " + form.Image.Name
	case models.CategoryVideo:
		s.Content = "Video: " + form.Video.Name
	case models.CategoryQRCode:
		s.Content = "QR code: " + form.QRCode.Name
	}
	return s
}

func outcome(err error) string {
	var (
		verr *models.ValidationError
		cerr *models.ModelContractError
		merr *models.ModelCallError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, models.ErrQRDecodeFailed):
		return "qr_undecodable"
	case errors.Is(err, models.ErrMediaRead), errors.Is(err, models.ErrMediaDecode), errors.Is(err, models.ErrUnsupportedMedia):
		return "media_error"
	case errors.Is(err, models.ErrModelTimeout):
		return "timeout"
	case errors.As(err, &cerr):
		return "contract_error"
	case errors.As(err, &merr):
		return "model_error"
	}
	return "error"
}
