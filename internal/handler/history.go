package handler

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetHistory handles GET /api/v1/history. scope=account returns the signed-in
// user's persisted records instead of the session list.
func (h *Handler) GetHistory(c *gin.Context) {
	if c.Query("scope") == "account" {
		actor := actorFrom(c)
		if !actor.Authenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in to view your account history"})
			return
		}

		limit := h.opts.AccountLimit
		if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 && n < limit {
			limit = n
		}

		records := h.history.Persisted(c.Request.Context(), actor.UserID, limit)
		c.JSON(http.StatusOK, gin.H{"history": records, "total": len(records)})
		return
	}

	items := h.history.Session(c.Request.Context(), actorFrom(c).SessionID)
	c.JSON(http.StatusOK, gin.H{"history": items, "total": len(items)})
}

// ClearHistory handles DELETE /api/v1/history
func (h *Handler) ClearHistory(c *gin.Context) {
	if err := h.history.Clear(c.Request.Context(), actorFrom(c).SessionID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportHistory handles GET /api/v1/history/export. Signed-in users export
// their persisted records, anonymous sessions export the session list.
func (h *Handler) ExportHistory(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "csv" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"field":   "format",
			"message": "format must be csv or json",
		})
		return
	}

	records := h.exportRecords(c)

	filename := "suraksha-history-" + time.Now().UTC().Format("20060102")

	if format == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment; filename="+filename+".csv")

		writer := csv.NewWriter(c.Writer)
		defer writer.Flush()

		writer.Write([]string{
			"id", "category", "content", "information_status", "probability_true",
			"probability_false_scam", "information_type", "simple_explanation",
			"warning_or_safety_advice", "final_verdict", "analysis_timestamp",
		})
		for _, r := range records {
			ts := ""
			if r.AnalysisTimestamp != nil {
				ts = r.AnalysisTimestamp.UTC().Format(time.RFC3339)
			}
			writer.Write([]string{
				r.ID,
				string(r.Category),
				r.Content,
				r.InformationStatus,
				strconv.FormatFloat(r.ProbabilityTrue, 'f', -1, 64),
				strconv.FormatFloat(r.ProbabilityFalseScam, 'f', -1, 64),
				r.InformationType,
				r.SimpleExplanation,
				r.WarningOrSafetyAdvice,
				r.FinalVerdict,
				ts,
			})
		}
		return
	}

	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", "attachment; filename="+filename+".json")

	encoder := json.NewEncoder(c.Writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		h.logger.Error("Failed to export JSON", zap.Error(err))
	}
}

func (h *Handler) exportRecords(c *gin.Context) []*models.HistoryRecord {
	actor := actorFrom(c)
	if actor.Authenticated() {
		return h.history.All(c.Request.Context(), actor.UserID)
	}

	items := h.history.Session(c.Request.Context(), actor.SessionID)
	records := make([]*models.HistoryRecord, 0, len(items))
	for _, item := range items {
		rec := models.Flatten("", item)
		if item.AnalysisTimestamp != nil {
			t := item.AnalysisTimestamp.Time()
			rec.AnalysisTimestamp = &t
		}
		records = append(records, rec)
	}
	return records
}
