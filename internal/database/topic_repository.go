package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/lingobot/pkg/models"
)

// TopicRepository handles database operations for topics
type TopicRepository struct {
	db *sqlx.DB
}

// NewTopicRepository creates a new repository instance
func NewTopicRepository(db *sqlx.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// Create inserts a new topic and fills in its generated ID
func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	if r.db.DriverName() == "postgres" {
		query := `INSERT INTO topics (title, description, user_id) VALUES ($1, $2, $3) RETURNING id`
		if err := r.db.QueryRowxContext(ctx, query, topic.Title, topic.Description, topic.UserID).Scan(&topic.ID); err != nil {
			return fmt.Errorf("failed to create topic: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO topics (title, description, user_id) VALUES (?, ?, ?)`,
		topic.Title, topic.Description, topic.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	topic.ID = id
	return nil
}

// GetByID returns a topic, or nil when no such topic exists
func (r *TopicRepository) GetByID(ctx context.Context, id int64) (*models.Topic, error) {
	var topic models.Topic
	query := r.db.Rebind(`SELECT id, title, description, user_id FROM topics WHERE id = ?`)
	err := r.db.GetContext(ctx, &topic, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic by id: %w", err)
	}
	return &topic, nil
}

// List returns all topics ordered by id
func (r *TopicRepository) List(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.SelectContext(ctx, &topics,
		`SELECT id, title, description, user_id FROM topics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

// PublicTopic returns the first topic owned by no user. New users are
// assigned it on first contact; nil when the catalogue has none.
func (r *TopicRepository) PublicTopic(ctx context.Context) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.GetContext(ctx, &topic,
		`SELECT id, title, description, user_id FROM topics WHERE user_id IS NULL ORDER BY id LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get public topic: %w", err)
	}
	return &topic, nil
}
