package gemini

import (
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/llm"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/schema"

	"github.com/google/generative-ai-go/genai"
)

func stringList(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Description: description,
		Items:       &genai.Schema{Type: genai.TypeString},
	}
}

// contentVerdictSchema mirrors models.ContentVerdict
var contentVerdictSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"informationStatus": {
			Type:        genai.TypeString,
			Format:      "enum",
			Enum:        []string{"REAL", "FAKE", "SCAM", "SUSPICIOUS"},
			Description: "The classification of the information.",
		},
		"possibilityScore": {
			Type:        genai.TypeObject,
			Description: "Probability scores for the information.",
			Properties: map[string]*genai.Schema{
				"true":        {Type: genai.TypeNumber, Description: "Probability information is TRUE / AUTHENTIC (percentage)."},
				"falseOrScam": {Type: genai.TypeNumber, Description: "Probability information is FAKE / SCAM / AI-GENERATED (percentage)."},
			},
			Required: []string{"true", "falseOrScam"},
		},
		"informationType": stringList("The type(s) of information detected (e.g., Phishing, Fake News, Deepfake, Genuine Information)."),
		"detailedAnalysis": {
			Type:        genai.TypeObject,
			Description: "A detailed breakdown of specific red flags found in the content.",
			Properties: map[string]*genai.Schema{
				"psychologicalTriggers": stringList("List of psychological tactics found (e.g., Urgency, Greed, Fear, Authority)."),
				"languageAnalysis":      stringList("List of language red flags (e.g., Spelling/Grammar Mistakes, Unprofessional Tone)."),
				"requestAnalysis":       stringList("Analysis of what the content is asking the user to do (e.g., Asks for Personal Info, Asks for Money, Clicks a Link)."),
				"videoAnalysis":         stringList("List of video-specific red flags found (e.g., Unnatural facial movement, Blurring or artifacts, Inconsistent lighting)."),
			},
			Required: []string{"psychologicalTriggers", "languageAnalysis", "requestAnalysis"},
		},
		"simpleExplanation":     {Type: genai.TypeString, Description: "A simple explanation of why the content is risky or safe, written for non-technical users."},
		"warningOrSafetyAdvice": {Type: genai.TypeString, Description: "Clear, actionable advice on what steps users should take."},
		"finalVerdict":          {Type: genai.TypeString, Description: "A one-line verdict summarizing the analysis."},
	},
	Required: []string{
		"informationStatus", "possibilityScore", "informationType", "detailedAnalysis",
		"simpleExplanation", "warningOrSafetyAdvice", "finalVerdict",
	},
}

// urlVerdictSchema mirrors models.URLVerdict
var urlVerdictSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"safetyStatus": {
			Type:        genai.TypeString,
			Format:      "enum",
			Enum:        []string{"Safe", "Suspicious", "Unsafe"},
			Description: "The safety status of the URL.",
		},
		"reason": {Type: genai.TypeString, Description: "A clear explanation for the assigned safety status."},
		"risk":   {Type: genai.TypeString, Description: "The potential risk if the user proceeds (e.g., data theft, malware)."},
		"advice": {Type: genai.TypeString, Description: "Actionable advice for the user."},
	},
	Required: []string{"safetyStatus", "reason", "risk", "advice"},
}

func responseSchema(template string) *genai.Schema {
	switch template {
	case schema.TemplateContent:
		return contentVerdictSchema
	case schema.TemplateURL:
		return urlVerdictSchema
	}
	return nil
}

// functionDeclarations converts tool declarations into Gemini's form
func functionDeclarations(tools []llm.ToolDeclaration) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		params := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: make(map[string]*genai.Schema, len(t.Params)),
		}
		for _, p := range t.Params {
			typ := genai.TypeString
			if p.Type == "integer" {
				typ = genai.TypeInteger
			}
			params.Properties[p.Name] = &genai.Schema{Type: typ, Description: p.Description}
			if p.Required {
				params.Required = append(params.Required, p.Name)
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		})
	}

	return []*genai.Tool{{FunctionDeclarations: decls}}
}
