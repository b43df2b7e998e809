package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingobot/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user, or nil when no such user exists
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`
		SELECT id, topic_id, questions_per_session, mastery_threshold, state, last_repeat, reminder_sent
		FROM users WHERE id = ?`)
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a new user row
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`
		INSERT INTO users (id, topic_id, questions_per_session, mastery_threshold, state, last_repeat, reminder_sent)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.TopicID, user.QuestionsPerSession, user.MasteryThreshold,
		user.State, user.LastRepeat, user.ReminderSent,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// SetTopic assigns the user's quiz topic
func (r *UserRepository) SetTopic(ctx context.Context, userID, topicID int64) error {
	query := r.db.Rebind(`UPDATE users SET topic_id = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, topicID, userID); err != nil {
		return fmt.Errorf("failed to set user topic: %w", err)
	}
	return nil
}

// SetQuestionsPerSession updates the per-session question count
func (r *UserRepository) SetQuestionsPerSession(ctx context.Context, userID int64, n int) error {
	query := r.db.Rebind(`UPDATE users SET questions_per_session = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, n, userID); err != nil {
		return fmt.Errorf("failed to set questions per session: %w", err)
	}
	return nil
}

// SetMasteryThreshold updates the correct-answers-to-mastery threshold
func (r *UserRepository) SetMasteryThreshold(ctx context.Context, userID int64, n int) error {
	query := r.db.Rebind(`UPDATE users SET mastery_threshold = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, n, userID); err != nil {
		return fmt.Errorf("failed to set mastery threshold: %w", err)
	}
	return nil
}

// SetState updates the user's bot-interaction state code
func (r *UserRepository) SetState(ctx context.Context, userID int64, state int) error {
	query := r.db.Rebind(`UPDATE users SET state = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, state, userID); err != nil {
		return fmt.Errorf("failed to set user state: %w", err)
	}
	return nil
}

// CompleteSession clears the user's test pool and stamps the session
// end in one transaction: last_repeat moves to finishedAt and the
// reminder flag is re-armed so future inactivity triggers again.
func (r *UserRepository) CompleteSession(ctx context.Context, userID int64, finishedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin session close: %w", err)
	}
	defer tx.Rollback()

	clear := r.db.Rebind(`DELETE FROM test_entries WHERE user_id = ?`)
	if _, err := tx.ExecContext(ctx, clear, userID); err != nil {
		return fmt.Errorf("failed to clear test pool: %w", err)
	}

	touch := r.db.Rebind(`UPDATE users SET last_repeat = ?, reminder_sent = FALSE WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, touch, finishedAt, userID); err != nil {
		return fmt.Errorf("failed to stamp session end: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session close: %w", err)
	}
	return nil
}

// DueForReminder lists users who have not been reminded yet and whose
// last session ended before the cutoff
func (r *UserRepository) DueForReminder(ctx context.Context, cutoff time.Time) ([]int64, error) {
	var ids []int64
	query := r.db.Rebind(`
		SELECT id FROM users
		WHERE reminder_sent = FALSE AND last_repeat IS NOT NULL AND last_repeat < ?
		ORDER BY id`)
	if err := r.db.SelectContext(ctx, &ids, query, cutoff); err != nil {
		return nil, fmt.Errorf("failed to list users due for reminder: %w", err)
	}
	return ids, nil
}

// MarkReminderSent claims the user's reminder with a conditional
// update. It reports false when the flag was already set, which lets
// overlapping scans race safely: only one of them ever notifies.
func (r *UserRepository) MarkReminderSent(ctx context.Context, userID int64) (bool, error) {
	query := r.db.Rebind(`UPDATE users SET reminder_sent = TRUE WHERE id = ? AND reminder_sent = FALSE`)
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}
