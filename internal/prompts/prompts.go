// Package prompts holds the instruction templates sent to the model. The
// templates are the decision logic of the service; bump Version whenever
// their wording changes.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

// Version identifies the current wording of all templates
const Version = "3"

// HistoryToolName is the chat tool the model may call to read history
const HistoryToolName = "getAnalysisHistory"

//go:embed templates/*.tmpl
var files embed.FS

var templates = template.Must(template.New("prompts").ParseFS(files, "templates/*.tmpl"))

// ContentInput fills the content-analysis template
type ContentInput struct {
	Source    string
	Content   string
	HasMedia  bool
	MediaType string
}

// URLInput fills the URL-analysis template
type URLInput struct {
	URL string
}

// ChatInput fills the chatbot system instruction
type ChatInput struct {
	LoggedIn bool
	ToolName string
}

// AnalyzeContent renders the content-analysis prompt
func AnalyzeContent(in ContentInput) (string, error) {
	return render("analyze_content.tmpl", in)
}

// AnalyzeURL renders the URL-analysis prompt
func AnalyzeURL(in URLInput) (string, error) {
	return render("analyze_url.tmpl", in)
}

// Chatbot renders the chat system instruction
func Chatbot(in ChatInput) (string, error) {
	if in.ToolName == "" {
		in.ToolName = HistoryToolName
	}
	return render("chatbot.tmpl", in)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
