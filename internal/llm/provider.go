package llm

import (
	"context"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"
)

// Request is one structured-output model call
type Request struct {
	// Template names the prompt and selects the response schema
	Template    string
	Instruction string
	Prompt      string
	Media       *models.MediaPayload
}

// ToolParam describes one argument of a tool the model may call
type ToolParam struct {
	Name        string
	Type        string // "string" or "integer"
	Description string
	Required    bool
}

// ToolDeclaration is a function exposed to the model during chat
type ToolDeclaration struct {
	Name        string
	Description string
	Params      []ToolParam
}

// ToolCall is the model asking to run a declared tool
type ToolCall struct {
	Name string
	Args map[string]any
}

// ChatReply is the model's answer to one chat message
type ChatReply struct {
	Text      string
	ToolCalls []ToolCall
}

// ChatSession is a multi-turn conversation with the model
type ChatSession interface {
	Send(ctx context.Context, text string) (*ChatReply, error)
	SendToolResult(ctx context.Context, name string, result map[string]any) (*ChatReply, error)
}

// Provider interface for the hosted model
type Provider interface {
	GenerateJSON(ctx context.Context, req *Request) (string, error)
	StartChat(instruction string, tools []ToolDeclaration) ChatSession
	Close() error
	GetModelInfo() map[string]interface{}
}
