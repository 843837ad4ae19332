package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"bandprep/internal/database"
	"bandprep/internal/models"
)

// AttemptRepository handles database operations for attempt records.
// Attempts are append-only: there is no update or delete path.
type AttemptRepository struct {
	db *database.DB
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(db *database.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Create appends one attempt record and returns its id. The user id is not
// checked against the users table; that looseness is deliberate (guest
// attempts, imports) and documented rather than fixed here.
func (r *AttemptRepository) Create(ctx context.Context, attempt *models.Attempt) (int64, error) {
	scores := attempt.SectionScores
	if scores == nil {
		scores = map[string]float64{}
	}
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return 0, fmt.Errorf("failed to encode section scores: %w", err)
	}

	var feedback interface{}
	if len(attempt.Feedback) > 0 {
		feedback = string(attempt.Feedback)
	}

	takenAt := attempt.TakenAt
	if takenAt.IsZero() {
		takenAt = time.Now().UTC()
	}

	query := `
		INSERT INTO attempts (user_id, set_id, set_title, band_score, section_scores, feedback, taken_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, attempt.UserID, attempt.SetID, attempt.SetTitle,
		attempt.BandScore, string(scoresJSON), feedback, takenAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create attempt: %w", err)
	}
	return id, nil
}

// ListByUser returns all attempts for a user, newest first. Each record is
// annotated with the referenced set's current title; when the set has been
// deleted the stored snapshot title is used, then a fixed fallback label.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID string) ([]models.AttemptSummary, error) {
	query := `
		SELECT a.id, a.user_id, a.set_id, a.set_title, a.band_score, a.section_scores, a.feedback, a.taken_at,
		       COALESCE(ps.title, NULLIF(a.set_title, ''), 'Deleted practice set')
		FROM attempts a
		LEFT JOIN practice_sets ps ON a.set_id = ps.id
		WHERE a.user_id = ?
		ORDER BY a.taken_at DESC, a.id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.AttemptSummary
	for rows.Next() {
		var summary models.AttemptSummary
		var scoresJSON string
		var feedback sql.NullString
		if err := rows.Scan(
			&summary.ID,
			&summary.UserID,
			&summary.SetID,
			&summary.SetTitle,
			&summary.BandScore,
			&scoresJSON,
			&feedback,
			&summary.TakenAt,
			&summary.ResolvedTitle,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}

		summary.SectionScores = map[string]float64{}
		if scoresJSON != "" {
			if err := json.Unmarshal([]byte(scoresJSON), &summary.SectionScores); err != nil {
				return nil, fmt.Errorf("failed to decode section scores for attempt %d: %w", summary.ID, err)
			}
		}
		if feedback.Valid {
			summary.Feedback = json.RawMessage(feedback.String)
		}

		attempts = append(attempts, summary)
	}

	return attempts, rows.Err()
}

// CountByUser returns the number of recorded attempts for a user
func (r *AttemptRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM attempts WHERE user_id = ?"
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}
