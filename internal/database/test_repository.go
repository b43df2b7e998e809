package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingobot/pkg/models"
)

// TestRepository handles the per-user pool of in-flight questions
type TestRepository struct {
	db *sqlx.DB
}

// NewTestRepository creates a new repository instance
func NewTestRepository(db *sqlx.DB) *TestRepository {
	return &TestRepository{db: db}
}

// Insert adds an unresolved entry for a freshly issued question
func (r *TestRepository) Insert(ctx context.Context, userID, wordID int64) error {
	query := r.db.Rebind(`INSERT INTO test_entries (user_id, word_id) VALUES (?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, userID, wordID); err != nil {
		return fmt.Errorf("failed to add test entry: %w", err)
	}
	return nil
}

// UnresolvedWordIDs lists the words with an open question for the
// user. A word in this list must not be re-issued.
func (r *TestRepository) UnresolvedWordIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	query := r.db.Rebind(`SELECT word_id FROM test_entries WHERE user_id = ? AND is_correct IS NULL`)
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list unresolved entries: %w", err)
	}
	return ids, nil
}

// Pending returns the user's current outstanding question joined with
// its word, or nil when nothing is pending. Should several unresolved
// rows exist the lowest word id wins, deterministically.
func (r *TestRepository) Pending(ctx context.Context, userID int64) (*models.PendingQuestion, error) {
	var q models.PendingQuestion
	query := r.db.Rebind(`
		SELECT test_entries.word_id, words.word, words.translation,
		       words.usage_example, words.usage_example_translation
		FROM test_entries
		JOIN words ON words.id = test_entries.word_id
		WHERE test_entries.user_id = ? AND test_entries.is_correct IS NULL
		ORDER BY test_entries.word_id
		LIMIT 1`)
	err := r.db.GetContext(ctx, &q, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending question: %w", err)
	}
	return &q, nil
}

// PendingByWord returns the unresolved entry for a specific word, or
// nil when that question was already resolved or never issued
func (r *TestRepository) PendingByWord(ctx context.Context, userID, wordID int64) (*models.PendingQuestion, error) {
	var q models.PendingQuestion
	query := r.db.Rebind(`
		SELECT test_entries.word_id, words.word, words.translation,
		       words.usage_example, words.usage_example_translation
		FROM test_entries
		JOIN words ON words.id = test_entries.word_id
		WHERE test_entries.user_id = ? AND test_entries.word_id = ? AND test_entries.is_correct IS NULL`)
	err := r.db.GetContext(ctx, &q, query, userID, wordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending question by word: %w", err)
	}
	return &q, nil
}

// Resolve marks the matching unresolved entry with the answer outcome.
// It reports false when no unresolved entry matched, leaving resolved
// rows untouched.
func (r *TestRepository) Resolve(ctx context.Context, userID, wordID int64, isCorrect bool) (bool, error) {
	query := r.db.Rebind(`
		UPDATE test_entries SET is_correct = ?
		WHERE user_id = ? AND word_id = ? AND is_correct IS NULL`)
	res, err := r.db.ExecContext(ctx, query, isCorrect, userID, wordID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve test entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear deletes every entry of the user's pool. Clearing an empty pool
// is a no-op.
func (r *TestRepository) Clear(ctx context.Context, userID int64) error {
	query := r.db.Rebind(`DELETE FROM test_entries WHERE user_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear test pool: %w", err)
	}
	return nil
}

// Tally aggregates the resolved entries of the user's pool
func (r *TestRepository) Tally(ctx context.Context, userID int64) (models.SessionStats, error) {
	rows := []struct {
		IsCorrect bool `db:"is_correct"`
		Count     int  `db:"count"`
	}{}
	query := r.db.Rebind(`
		SELECT is_correct, COUNT(*) AS count
		FROM test_entries
		WHERE user_id = ? AND is_correct IS NOT NULL
		GROUP BY is_correct`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return models.SessionStats{}, fmt.Errorf("failed to tally session: %w", err)
	}

	var stats models.SessionStats
	for _, row := range rows {
		if row.IsCorrect {
			stats.Correct = row.Count
		} else {
			stats.Incorrect = row.Count
		}
	}
	return stats, nil
}
