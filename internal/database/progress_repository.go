package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingobot/pkg/models"
)

// ProgressRepository handles database operations for progress records
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Get returns the progress record for a (user, word) pair, or nil when
// the word has never been answered correctly
func (r *ProgressRepository) Get(ctx context.Context, userID, wordID int64) (*models.ProgressRecord, error) {
	var rec models.ProgressRecord
	query := r.db.Rebind(`
		SELECT user_id, word_id, correct_answers, last_repeat
		FROM progress WHERE user_id = ? AND word_id = ?`)
	err := r.db.GetContext(ctx, &rec, query, userID, wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress record: %w", err)
	}
	return &rec, nil
}

// Create inserts a fresh progress record
func (r *ProgressRepository) Create(ctx context.Context, rec *models.ProgressRecord) error {
	query := r.db.Rebind(`
		INSERT INTO progress (user_id, word_id, correct_answers, last_repeat)
		VALUES (?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, rec.UserID, rec.WordID, rec.CorrectAnswers, rec.LastRepeat)
	if err != nil {
		return fmt.Errorf("failed to create progress record: %w", err)
	}
	return nil
}

// Update stores the new counter value and refreshes the repeat time
func (r *ProgressRepository) Update(ctx context.Context, rec *models.ProgressRecord) error {
	query := r.db.Rebind(`
		UPDATE progress SET correct_answers = ?, last_repeat = ?
		WHERE user_id = ? AND word_id = ?`)
	_, err := r.db.ExecContext(ctx, query, rec.CorrectAnswers, rec.LastRepeat, rec.UserID, rec.WordID)
	if err != nil {
		return fmt.Errorf("failed to update progress record: %w", err)
	}
	return nil
}

// LearnedCount returns how many of the user's progress records have
// reached the user's own mastery threshold
func (r *ProgressRepository) LearnedCount(ctx context.Context, userID int64) (int, error) {
	var count int
	query := r.db.Rebind(`
		SELECT COUNT(*) FROM progress
		WHERE user_id = ?
		  AND correct_answers >= (SELECT mastery_threshold FROM users WHERE id = ?)`)
	if err := r.db.GetContext(ctx, &count, query, userID, userID); err != nil {
		return 0, fmt.Errorf("failed to count learned words: %w", err)
	}
	return count, nil
}
