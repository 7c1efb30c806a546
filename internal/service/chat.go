package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/llm"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/metrics"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/prompts"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/schema"

	"go.uber.org/zap"
)

// DefaultHistoryCount is used when the model does not say how many items it wants
const DefaultHistoryCount = 5

const maxHistoryCount = 50

// Fixed answers used when the model gives nothing usable
const (
	FallbackUnclear  = "I'm not sure how to respond to that. Could you please rephrase your question?"
	FallbackTrouble  = "I'm sorry, I'm having trouble thinking right now. Please try asking again."
	LoginRequiredMsg = "You need to be logged in to view your analysis history. Please sign in and ask again."
)

// ChatState is a step of one chat turn
type ChatState string

const (
	StateIdle                  ChatState = "idle"
	StateAwaitingModelResponse ChatState = "awaiting_model_response"
	StateDirectAnswer          ChatState = "direct_answer"
	StateToolInvoked           ChatState = "tool_invoked"
	StateToolResult            ChatState = "tool_result"
	StateFinalAnswer           ChatState = "final_answer"
)

// ChatResult is the outcome of one chat turn. Answer is never empty.
type ChatResult struct {
	Answer  string                   `json:"answer"`
	History []models.ChatHistoryItem `json:"history,omitempty"`

	trace []ChatState
}

var historyTool = llm.ToolDeclaration{
	Name:        prompts.HistoryToolName,
	Description: "Get the user's most recent analysis history records.",
	Params: []llm.ToolParam{{
		Name:        "count",
		Type:        "integer",
		Description: "The number of recent items to fetch.",
	}},
}

// ChatService answers questions about the app and lets the model read the
// signed-in user's history through a single tool
type ChatService struct {
	provider llm.Provider
	history  *HistoryService
	timeout  time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewChatService creates a chat service
func NewChatService(provider llm.Provider, history *HistoryService, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *ChatService {
	return &ChatService{
		provider: provider,
		history:  history,
		timeout:  timeout,
		metrics:  m,
		logger:   logger,
	}
}

// GetRecentHistory returns at most count of the user's records, newest
// first. Store failures yield an empty list.
func (c *ChatService) GetRecentHistory(ctx context.Context, userID string, count int) []models.ChatHistoryItem {
	if count <= 0 {
		count = DefaultHistoryCount
	}
	if count > maxHistoryCount {
		count = maxHistoryCount
	}

	records := c.history.Persisted(ctx, userID, count)
	items := make([]models.ChatHistoryItem, 0, len(records))
	for _, r := range records {
		items = append(items, r.ChatItem())
	}
	return items
}

// Ask runs one chat turn for prompt
func (c *ChatService) Ask(ctx context.Context, actor Actor, prompt string) (*ChatResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &models.ValidationError{Field: "prompt", Message: "Please type a question."}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res := &ChatResult{trace: []ChatState{StateIdle}}
	loggedIn := actor.Authenticated()
	defer func() {
		c.logger.Debug("Chat turn finished",
			zap.Strings("states", stateNames(res.trace)),
			zap.Bool("logged_in", loggedIn),
			zap.Int("history_items", len(res.History)))
	}()

	instruction, err := prompts.Chatbot(prompts.ChatInput{LoggedIn: loggedIn})
	if err != nil {
		return nil, err
	}

	var tools []llm.ToolDeclaration
	if loggedIn {
		tools = []llm.ToolDeclaration{historyTool}
	}
	session := c.provider.StartChat(instruction, tools)

	res.trace = append(res.trace, StateAwaitingModelResponse)
	start := time.Now()
	reply, err := session.Send(ctx, prompt)
	c.metrics.ModelCall(schema.TemplateChat, time.Since(start))
	if err != nil {
		c.logger.Error("Chat model call failed", zap.Error(err))
		res.trace = append(res.trace, StateDirectAnswer)
		res.Answer = FallbackTrouble
		return res, nil
	}

	call, wantsTool := firstHistoryCall(reply)
	if !wantsTool {
		res.trace = append(res.trace, StateDirectAnswer)
		res.Answer = answerOrFallback(replyText(reply), nil)
		return res, nil
	}

	if !loggedIn {
		c.metrics.ChatTool("refused")
		c.logger.Warn("Model requested history for an anonymous user")
		res.trace = append(res.trace, StateDirectAnswer)
		res.Answer = LoginRequiredMsg
		return res, nil
	}

	res.trace = append(res.trace, StateToolInvoked)
	c.metrics.ChatTool("invoked")

	// the tool always reads the signed-in user's history, whatever the model passes
	items := c.GetRecentHistory(ctx, actor.UserID, countArg(call.Args))
	res.History = items
	res.trace = append(res.trace, StateToolResult)

	start = time.Now()
	final, err := session.SendToolResult(ctx, call.Name, map[string]any{"history": toolPayload(items)})
	c.metrics.ModelCall(schema.TemplateChat, time.Since(start))
	res.trace = append(res.trace, StateFinalAnswer)
	if err != nil {
		c.logger.Error("Chat model call failed after tool result", zap.Error(err))
		res.Answer = answerOrFallback("", items)
		return res, nil
	}

	res.Answer = answerOrFallback(replyText(final), items)
	return res, nil
}

func stateNames(trace []ChatState) []string {
	out := make([]string, len(trace))
	for i, s := range trace {
		out[i] = string(s)
	}
	return out
}

func firstHistoryCall(reply *llm.ChatReply) (llm.ToolCall, bool) {
	if reply == nil {
		return llm.ToolCall{}, false
	}
	for _, call := range reply.ToolCalls {
		if call.Name == prompts.HistoryToolName {
			return call, true
		}
	}
	return llm.ToolCall{}, false
}

func replyText(reply *llm.ChatReply) string {
	if reply == nil {
		return ""
	}
	return reply.Text
}

func countArg(args map[string]any) int {
	switch v := args["count"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return DefaultHistoryCount
}

// toolPayload converts items into plain maps and slices so the model client
// can encode them as a protobuf struct
func toolPayload(items []models.ChatHistoryItem) []any {
	b, err := json.Marshal(items)
	if err != nil {
		return []any{}
	}
	var out []any
	if err := json.Unmarshal(b, &out); err != nil || out == nil {
		return []any{}
	}
	return out
}

func answerOrFallback(text string, history []models.ChatHistoryItem) string {
	if text = strings.TrimSpace(text); text != "" {
		return text
	}
	if len(history) > 0 {
		return fmt.Sprintf("I found %d items in your recent history.", len(history))
	}
	return FallbackUnclear
}
