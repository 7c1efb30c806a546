package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/llm"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/metrics"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/prompts"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/schema"

	"go.uber.org/zap"
)

// Analyzer sends one routed request to the model and validates the answer.
// It makes exactly one model call per request and persists nothing.
type Analyzer struct {
	provider llm.Provider
	timeout  time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewAnalyzer creates an analyzer. timeout <= 0 leaves the call bounded only
// by the caller's context.
func NewAnalyzer(provider llm.Provider, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		provider: provider,
		timeout:  timeout,
		metrics:  m,
		logger:   logger,
	}
}

// Analyze returns the verdict for req
func (a *Analyzer) Analyze(ctx context.Context, req *models.AnalysisRequest) (models.Verdict, error) {
	if err := schema.ValidateRequest(req); err != nil {
		return models.Verdict{}, &models.ValidationError{Field: "request", Message: err.Error()}
	}

	switch req.Kind {
	case models.RequestContent:
		v, err := a.analyzeContent(ctx, req)
		if err != nil {
			return models.Verdict{}, err
		}
		return models.NewContentVerdict(v), nil
	case models.RequestURL:
		v, err := a.analyzeURL(ctx, req.URL)
		if err != nil {
			return models.Verdict{}, err
		}
		return models.NewURLVerdict(v), nil
	}
	return models.Verdict{}, fmt.Errorf("unknown request kind %q", req.Kind)
}

func (a *Analyzer) analyzeContent(ctx context.Context, req *models.AnalysisRequest) (*models.ContentVerdict, error) {
	body := req.Content
	in := prompts.ContentInput{Source: string(body.Source), Content: body.Content}
	if body.Media != nil {
		in.HasMedia = true
		in.MediaType = body.Media.MIMEType
	}

	prompt, err := prompts.AnalyzeContent(in)
	if err != nil {
		return nil, err
	}

	raw, err := a.call(ctx, &llm.Request{
		Template: schema.TemplateContent,
		Prompt:   prompt,
		Media:    body.Media,
	})
	if err != nil {
		return nil, err
	}

	v, err := schema.DecodeContentVerdict(raw)
	if err != nil {
		a.logger.Error("Model response rejected",
			zap.String("template", schema.TemplateContent),
			zap.String("prompts_version", prompts.Version),
			zap.String("raw_response", raw),
			zap.Error(err))
		return nil, err
	}

	// only video submissions may carry video findings
	if req.Category != models.CategoryVideo && v.DetailedAnalysis != nil {
		v.DetailedAnalysis.VideoAnalysis = nil
	}

	return v, nil
}

func (a *Analyzer) analyzeURL(ctx context.Context, req *models.URLAnalysisRequest) (*models.URLVerdict, error) {
	prompt, err := prompts.AnalyzeURL(prompts.URLInput{URL: req.URL})
	if err != nil {
		return nil, err
	}

	raw, err := a.call(ctx, &llm.Request{Template: schema.TemplateURL, Prompt: prompt})
	if err != nil {
		return nil, err
	}

	v, err := schema.DecodeURLVerdict(raw)
	if err != nil {
		a.logger.Error("Model response rejected",
			zap.String("template", schema.TemplateURL),
			zap.String("prompts_version", prompts.Version),
			zap.String("raw_response", raw),
			zap.Error(err))
		return nil, err
	}
	return v, nil
}

func (a *Analyzer) call(ctx context.Context, req *llm.Request) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := a.provider.GenerateJSON(ctx, req)
	a.metrics.ModelCall(req.Template, time.Since(start))

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			a.logger.Error("Model call timed out",
				zap.String("template", req.Template),
				zap.Duration("timeout", a.timeout))
			return "", fmt.Errorf("%w after %s", models.ErrModelTimeout, a.timeout)
		}
		a.logger.Error("Model call failed", zap.String("template", req.Template), zap.Error(err))
		return "", &models.ModelCallError{Template: req.Template, Err: err}
	}

	a.logger.Debug("Model call completed",
		zap.String("template", req.Template),
		zap.Duration("duration", time.Since(start)))

	return raw, nil
}
