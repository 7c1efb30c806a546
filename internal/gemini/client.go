package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/llm"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client wraps the Gemini API client
type Client struct {
	client      *genai.Client
	logger      *zap.Logger
	modelName   string
	temperature float32
}

// Config for Gemini client
type Config struct {
	APIKey      string
	ModelName   string // Default: "gemini-2.0-flash"
	Temperature float32
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info("Gemini client initialized",
		zap.String("model", cfg.ModelName),
		zap.Float32("temperature", cfg.Temperature))

	return &Client{
		client:      client,
		logger:      logger,
		modelName:   cfg.ModelName,
		temperature: cfg.Temperature,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) model(instruction string) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.modelName)
	if instruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(instruction)},
		}
	}
	model.SetTemperature(c.temperature)
	return model
}

// GenerateJSON sends one prompt and returns the model's JSON text. There is
// no retry; callers get one answer or one error.
func (c *Client) GenerateJSON(ctx context.Context, req *llm.Request) (string, error) {
	model := c.model(req.Instruction)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema(req.Template)

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.Media != nil {
		parts = append(parts, genai.Blob{MIMEType: req.Media.MIMEType, Data: req.Media.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		c.logger.Error("Gemini API error", zap.String("template", req.Template), zap.Error(err))
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	text, err := firstText(resp)
	if err != nil {
		c.logger.Error("Unusable Gemini response", zap.String("template", req.Template), zap.Error(err))
		return "", err
	}

	c.logger.Debug("Gemini response received",
		zap.String("template", req.Template),
		zap.Int("response_bytes", len(text)))

	return text, nil
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("unexpected response type from gemini")
	}
	return sb.String(), nil
}

// StartChat opens a conversation with the given system instruction and tools
func (c *Client) StartChat(instruction string, tools []llm.ToolDeclaration) llm.ChatSession {
	model := c.model(instruction)
	model.Tools = functionDeclarations(tools)
	return &chatSession{session: model.StartChat(), logger: c.logger}
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    "gemini",
		"model":       c.modelName,
		"temperature": c.temperature,
	}
}

type chatSession struct {
	session *genai.ChatSession
	logger  *zap.Logger
}

func (s *chatSession) Send(ctx context.Context, text string) (*llm.ChatReply, error) {
	resp, err := s.session.SendMessage(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini chat error: %w", err)
	}
	return toReply(resp), nil
}

func (s *chatSession) SendToolResult(ctx context.Context, name string, result map[string]any) (*llm.ChatReply, error) {
	resp, err := s.session.SendMessage(ctx, genai.FunctionResponse{Name: name, Response: result})
	if err != nil {
		return nil, fmt.Errorf("gemini chat error: %w", err)
	}
	return toReply(resp), nil
}

func toReply(resp *genai.GenerateContentResponse) *llm.ChatReply {
	reply := &llm.ChatReply{}
	if resp == nil || len(resp.Candidates) == 0 {
		return reply
	}

	cand := resp.Candidates[0]
	for _, fc := range cand.FunctionCalls() {
		reply.ToolCalls = append(reply.ToolCalls, llm.ToolCall{Name: fc.Name, Args: fc.Args})
	}
	if cand.Content != nil {
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		reply.Text = strings.TrimSpace(sb.String())
	}
	return reply
}
