package service

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"
)

var securityTips = []string{
	"Never share your OTP, PIN, or passwords with anyone, even if they claim to be from your bank.",
	"Be wary of messages that create a sense of urgency or fear. Scammers want you to act without thinking.",
	"Always double-check the sender's email address or phone number before clicking on any links.",
	"If an offer seems too good to be true, it probably is. Be skeptical of unexpected prizes or lottery wins.",
	"Use strong, unique passwords for different accounts and enable two-factor authentication (2FA) wherever possible.",
	"Scan QR codes only from trusted sources. A payment QR code is used to send money, not to receive it.",
}

// ComputeDashboard summarises records as of now. Records without a timestamp
// count toward totals but never toward this week's threats.
func ComputeDashboard(records []*models.HistoryRecord, now time.Time) *models.Dashboard {
	d := &models.Dashboard{
		TotalAnalyzed: len(records),
		Recent:        []*models.HistoryRecord{},
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	var confidence float64
	for _, r := range records {
		if r.InformationStatus == models.StatusScam || r.InformationStatus == models.StatusFake {
			if r.AnalysisTimestamp != nil && !r.AnalysisTimestamp.Before(weekAgo) {
				d.ThreatsThisWeek++
			}
		}
		if r.InformationStatus == models.StatusReal {
			confidence += r.ProbabilityTrue
		} else {
			confidence += r.ProbabilityFalseScam
		}
	}
	if len(records) > 0 {
		d.AccuracyConfidence = int(math.Round(confidence / float64(len(records))))
	}

	switch {
	case d.ThreatsThisWeek > 10:
		d.ThreatLevel = "High"
	case d.ThreatsThisWeek > 3:
		d.ThreatLevel = "Medium"
	default:
		d.ThreatLevel = "Low"
	}

	n := len(records)
	if n > 3 {
		n = 3
	}
	d.Recent = append(d.Recent, records[:n]...)

	return d
}

// Dashboard builds the signed-in user's dashboard from persisted history
func (s *HistoryService) Dashboard(ctx context.Context, userID string) *models.Dashboard {
	d := ComputeDashboard(s.All(ctx, userID), time.Now())
	d.SecurityTip = securityTips[rand.Intn(len(securityTips))]
	return d
}
