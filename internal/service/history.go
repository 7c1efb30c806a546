package service

import (
	"context"
	"fmt"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/metrics"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor identifies who a request is made for. UserID is empty for anonymous
// sessions.
type Actor struct {
	SessionID string
	UserID    string
}

// Authenticated reports whether the actor carries a verified user id
func (a Actor) Authenticated() bool {
	return a.UserID != ""
}

// HistoryService records verdicts into the session list and, for signed-in
// users, the persisted per-user store
type HistoryService struct {
	sessions repository.SessionStore
	repo     repository.HistoryRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
	newID    func() (string, error)
}

// NewHistoryService creates a history service. repo may be nil, in which case
// nothing is persisted.
func NewHistoryService(sessions repository.SessionStore, repo repository.HistoryRepository, m *metrics.Metrics, logger *zap.Logger) *HistoryService {
	return &HistoryService{
		sessions: sessions,
		repo:     repo,
		metrics:  m,
		logger:   logger,
		newID:    newTimeOrderedID,
	}
}

func newTimeOrderedID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Record builds a history item for the verdict and stores it. Store failures
// are logged and never returned: the caller always gets the item back.
func (s *HistoryService) Record(ctx context.Context, actor Actor, prompt models.PromptSummary, verdict models.Verdict) *models.HistoryItem {
	id, err := s.newID()
	if err != nil {
		id = uuid.NewString()
	}

	item := &models.HistoryItem{
		ID:      id,
		Prompt:  prompt,
		Verdict: verdict,
	}

	if actor.Authenticated() && s.repo != nil {
		rec := models.Flatten(actor.UserID, item)
		if err := s.repo.Save(ctx, rec); err != nil {
			s.metrics.HistoryWriteFailed()
			s.logger.Warn("Failed to persist analysis result",
				zap.String("user_id", actor.UserID),
				zap.String("id", item.ID),
				zap.Error(err))
		} else {
			item.AnalysisTimestamp = rec.Timestamp()
		}
	}

	if actor.SessionID != "" {
		if err := s.sessions.Prepend(ctx, actor.SessionID, item); err != nil {
			s.metrics.HistoryWriteFailed()
			s.logger.Warn("Failed to append session history",
				zap.String("session_id", actor.SessionID),
				zap.Error(err))
		}
	}

	return item
}

// Session returns the session history, most recent first. Read failures
// degrade to an empty list.
func (s *HistoryService) Session(ctx context.Context, sessionID string) []*models.HistoryItem {
	items, err := s.sessions.List(ctx, sessionID)
	if err != nil {
		s.logger.Warn("Failed to read session history",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return []*models.HistoryItem{}
	}
	if items == nil {
		return []*models.HistoryItem{}
	}
	return items
}

// Clear empties the session history
func (s *HistoryService) Clear(ctx context.Context, sessionID string) error {
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	s.logger.Info("Session history cleared", zap.String("session_id", sessionID))
	return nil
}

// Persisted returns up to limit of the user's stored records, newest first.
// Read failures degrade to an empty list.
func (s *HistoryService) Persisted(ctx context.Context, userID string, limit int) []*models.HistoryRecord {
	if userID == "" || s.repo == nil {
		return []*models.HistoryRecord{}
	}

	records, err := s.repo.Recent(ctx, userID, limit)
	if err != nil {
		s.logger.Warn("Failed to read analysis history",
			zap.String("user_id", userID),
			zap.Error(err))
		return []*models.HistoryRecord{}
	}
	return records
}

// All returns every stored record for the user, newest first. Read failures
// degrade to an empty list.
func (s *HistoryService) All(ctx context.Context, userID string) []*models.HistoryRecord {
	if userID == "" || s.repo == nil {
		return []*models.HistoryRecord{}
	}

	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to list analysis history",
			zap.String("user_id", userID),
			zap.Error(err))
		return []*models.HistoryRecord{}
	}
	return records
}
