package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// HistoryRepository stores flattened analysis results per user. Rows are
// only ever appended by the analysis pipeline; the retention janitor is the
// single caller that deletes.
type HistoryRepository interface {
	Save(ctx context.Context, rec *models.HistoryRecord) error
	Recent(ctx context.Context, userID string, limit int) ([]*models.HistoryRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*models.HistoryRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type historyRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewHistoryRepository creates a repository over an open, migrated database
func NewHistoryRepository(db *sqlx.DB, logger *zap.Logger) HistoryRepository {
	return &historyRepository{db: db, logger: logger, now: time.Now}
}

const historyColumns = `id, user_id, category, content, information_status, probability_true,
	probability_false_scam, information_type, simple_explanation, warning_or_safety_advice,
	final_verdict, analysis_timestamp`

// unknown timestamps sort last on both sqlite and postgres
const historyOrder = `ORDER BY analysis_timestamp IS NULL, analysis_timestamp DESC, id DESC`

// Save inserts rec, stamping it with the server time
func (r *historyRepository) Save(ctx context.Context, rec *models.HistoryRecord) error {
	ts := r.now().UTC()
	rec.AnalysisTimestamp = &ts

	query := r.db.Rebind(`
		INSERT INTO analysis_results (` + historyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Category,
		rec.Content,
		rec.InformationStatus,
		rec.ProbabilityTrue,
		rec.ProbabilityFalseScam,
		rec.InformationType,
		rec.SimpleExplanation,
		rec.WarningOrSafetyAdvice,
		rec.FinalVerdict,
		ts,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis result: %w", err)
	}
	return nil
}

// Recent returns up to limit records for userID, newest first
func (r *historyRepository) Recent(ctx context.Context, userID string, limit int) ([]*models.HistoryRecord, error) {
	if limit <= 0 {
		return []*models.HistoryRecord{}, nil
	}

	query := r.db.Rebind(`SELECT ` + historyColumns + ` FROM analysis_results WHERE user_id = ? ` + historyOrder + ` LIMIT ?`)

	records := []*models.HistoryRecord{}
	if err := r.db.SelectContext(ctx, &records, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to query recent analysis results: %w", err)
	}
	return records, nil
}

// ListByUser returns every record for userID, newest first
func (r *historyRepository) ListByUser(ctx context.Context, userID string) ([]*models.HistoryRecord, error) {
	query := r.db.Rebind(`SELECT ` + historyColumns + ` FROM analysis_results WHERE user_id = ? ` + historyOrder)

	records := []*models.HistoryRecord{}
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list analysis results: %w", err)
	}
	return records, nil
}

// DeleteOlderThan removes records stamped before cutoff. Records without a
// timestamp are kept.
func (r *historyRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM analysis_results WHERE analysis_timestamp IS NOT NULL AND analysis_timestamp < ?`)

	res, err := r.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old analysis results: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted rows: %w", err)
	}

	r.logger.Info("Deleted expired analysis results", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	return n, nil
}
