package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Timestamp mirrors the document-store timestamp shape returned to clients
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int32 `json:"nanoseconds"`
}

// NewTimestamp converts t, returning nil for the zero time
func NewTimestamp(t time.Time) *Timestamp {
	if t.IsZero() {
		return nil
	}
	return &Timestamp{Seconds: t.Unix(), Nanoseconds: int32(t.Nanosecond())}
}

// Time converts back to time.Time. A nil timestamp yields the zero time.
func (t *Timestamp) Time() time.Time {
	if t == nil {
		return time.Time{}
	}
	return time.Unix(t.Seconds, int64(t.Nanoseconds)).UTC()
}

// PromptSummary is the short description of what was submitted
type PromptSummary struct {
	Type    Category `json:"type"`
	Content string   `json:"content"`
}

// HistoryItem pairs a submission summary with its verdict. Items are never
// mutated once recorded.
type HistoryItem struct {
	ID                string        `json:"id"`
	Prompt            PromptSummary `json:"prompt"`
	Verdict           Verdict       `json:"verdict"`
	AnalysisTimestamp *Timestamp    `json:"analysisTimestamp,omitempty"`
}

// HistoryRecord is the flattened, per-user persisted form of a verdict
type HistoryRecord struct {
	ID                    string     `db:"id" json:"id"`
	UserID                string     `db:"user_id" json:"userId"`
	Category              Category   `db:"category" json:"category"`
	Content               string     `db:"content" json:"content"`
	InformationStatus     string     `db:"information_status" json:"informationStatus"`
	ProbabilityTrue       float64    `db:"probability_true" json:"probabilityTrue"`
	ProbabilityFalseScam  float64    `db:"probability_false_scam" json:"probabilityFalseScam"`
	InformationType       string     `db:"information_type" json:"informationType"`
	SimpleExplanation     string     `db:"simple_explanation" json:"simpleExplanation"`
	WarningOrSafetyAdvice string     `db:"warning_or_safety_advice" json:"warningOrSafetyAdvice"`
	FinalVerdict          string     `db:"final_verdict" json:"finalVerdict"`
	AnalysisTimestamp     *time.Time `db:"analysis_timestamp" json:"-"`
}

// Timestamp returns the record's server timestamp, nil when unknown
func (r *HistoryRecord) Timestamp() *Timestamp {
	if r.AnalysisTimestamp == nil {
		return nil
	}
	return NewTimestamp(*r.AnalysisTimestamp)
}

// MarshalJSON renders the server timestamp as {seconds, nanoseconds}
func (r HistoryRecord) MarshalJSON() ([]byte, error) {
	type plain HistoryRecord
	return json.Marshal(struct {
		plain
		AnalysisTimestamp *Timestamp `json:"analysisTimestamp"`
	}{plain(r), r.Timestamp()})
}

// ChatHistoryItem is what the chat history tool hands back to the model
type ChatHistoryItem struct {
	ID                string     `json:"id"`
	FinalVerdict      string     `json:"finalVerdict"`
	Content           string     `json:"content"`
	InformationStatus string     `json:"informationStatus"`
	AnalysisTimestamp *Timestamp `json:"analysisTimestamp,omitempty"`
}

// Flatten builds the persisted record for a history item. URL verdicts are
// mapped onto the content-verdict columns with fixed scores.
func Flatten(userID string, item *HistoryItem) *HistoryRecord {
	rec := &HistoryRecord{
		ID:       item.ID,
		UserID:   userID,
		Category: item.Prompt.Type,
		Content:  item.Prompt.Content,
	}

	switch item.Verdict.Kind {
	case VerdictContent:
		v := item.Verdict.Content
		rec.InformationStatus = v.InformationStatus
		if v.PossibilityScore != nil {
			if v.PossibilityScore.True != nil {
				rec.ProbabilityTrue = *v.PossibilityScore.True
			}
			if v.PossibilityScore.FalseOrScam != nil {
				rec.ProbabilityFalseScam = *v.PossibilityScore.FalseOrScam
			}
		}
		rec.InformationType = strings.Join(v.InformationType, ", ")
		rec.SimpleExplanation = v.SimpleExplanation
		rec.WarningOrSafetyAdvice = v.WarningOrSafetyAdvice
		rec.FinalVerdict = v.FinalVerdict
	case VerdictURL:
		v := item.Verdict.URL
		switch v.SafetyStatus {
		case SafetyUnsafe:
			rec.InformationStatus = StatusScam
			rec.ProbabilityTrue, rec.ProbabilityFalseScam = 5, 95
		case SafetySuspicious:
			rec.InformationStatus = StatusSuspicious
			rec.ProbabilityTrue, rec.ProbabilityFalseScam = 40, 60
		default:
			rec.InformationStatus = StatusReal
			rec.ProbabilityTrue, rec.ProbabilityFalseScam = 95, 5
		}
		rec.InformationType = v.Risk
		rec.SimpleExplanation = v.Reason
		rec.WarningOrSafetyAdvice = v.Advice
		rec.FinalVerdict = "This URL is considered " + v.SafetyStatus + "."
	}

	return rec
}

// ChatItem projects a record onto the chat tool contract
func (r *HistoryRecord) ChatItem() ChatHistoryItem {
	return ChatHistoryItem{
		ID:                r.ID,
		FinalVerdict:      r.FinalVerdict,
		Content:           r.Content,
		InformationStatus: r.InformationStatus,
		AnalysisTimestamp: r.Timestamp(),
	}
}

// Dashboard summarises a user's persisted history
type Dashboard struct {
	TotalAnalyzed      int              `json:"totalAnalyzed"`
	ThreatsThisWeek    int              `json:"threatsThisWeek"`
	AccuracyConfidence int              `json:"accuracyConfidence"`
	ThreatLevel        string           `json:"threatLevel"`
	Recent             []*HistoryRecord `json:"recent"`
	SecurityTip        string           `json:"securityTip"`
}
