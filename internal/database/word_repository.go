package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingobot/pkg/models"
)

// WordRepository handles database operations for words
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// Create inserts a new word and fills in its generated ID
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if r.db.DriverName() == "postgres" {
		query := `
			INSERT INTO words (topic_id, word, translation, usage_example, usage_example_translation)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`
		err := r.db.QueryRowxContext(ctx, query,
			word.TopicID, word.Word, word.Translation, word.UsageExample, word.UsageExampleTranslation,
		).Scan(&word.ID)
		if err != nil {
			return fmt.Errorf("failed to create word: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO words (topic_id, word, translation, usage_example, usage_example_translation)
		VALUES (?, ?, ?, ?, ?)`,
		word.TopicID, word.Word, word.Translation, word.UsageExample, word.UsageExampleTranslation,
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	word.ID = id
	return nil
}

// GetByID returns a word, or nil when no such word exists
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	query := r.db.Rebind(`
		SELECT id, topic_id, word, translation, usage_example, usage_example_translation
		FROM words WHERE id = ?`)
	err := r.db.GetContext(ctx, &word, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word by id: %w", err)
	}
	return &word, nil
}

// CountByTopic returns the number of words in a topic
func (r *WordRepository) CountByTopic(ctx context.Context, topicID int64) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM words WHERE topic_id = ?`)
	if err := r.db.GetContext(ctx, &count, query, topicID); err != nil {
		return 0, fmt.Errorf("failed to count words in topic: %w", err)
	}
	return count, nil
}

// ForSelection returns every word of the user's assigned topic
// left-joined against the user's progress, least-mastered first.
// Words without a progress record carry a zero counter. The result is
// empty when the user has no topic or the topic has no words.
func (r *WordRepository) ForSelection(ctx context.Context, userID int64) ([]models.WordMastery, error) {
	var rows []models.WordMastery
	query := r.db.Rebind(`
		SELECT words.id AS word_id,
		       COALESCE(progress.correct_answers, 0) AS correct_answers,
		       progress.last_repeat AS last_repeat
		FROM words
		LEFT JOIN progress ON progress.word_id = words.id AND progress.user_id = ?
		WHERE words.topic_id = (SELECT topic_id FROM users WHERE id = ?)
		ORDER BY COALESCE(progress.correct_answers, 0), words.id`)
	if err := r.db.SelectContext(ctx, &rows, query, userID, userID); err != nil {
		return nil, fmt.Errorf("failed to select words for user: %w", err)
	}
	return rows, nil
}

// TranslationsExcluding returns the translations of every word in the
// catalogue except the given one. Distractors are sampled from this
// pool by the caller.
func (r *WordRepository) TranslationsExcluding(ctx context.Context, wordID int64) ([]string, error) {
	var translations []string
	query := r.db.Rebind(`SELECT translation FROM words WHERE id != ? ORDER BY id`)
	if err := r.db.SelectContext(ctx, &translations, query, wordID); err != nil {
		return nil, fmt.Errorf("failed to get distractor translations: %w", err)
	}
	return translations, nil
}
