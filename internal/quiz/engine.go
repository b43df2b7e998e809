// Package quiz implements the session and progress engine: word
// selection, question building, answer scoring, mastery promotion and
// inactivity reminders. Transport and storage stay outside.
package quiz

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/lingobot/pkg/models"
)

// Rand is the randomness source for distractor sampling and option
// shuffling. *rand.Rand satisfies it; tests inject a seeded source.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Engine coordinates the quiz flow over the injected stores. Safe for
// concurrent use across users; operations for one user are expected to
// be serialized by the transport.
type Engine struct {
	users    UserStore
	topics   TopicStore
	words    WordStore
	progress ProgressStore
	tests    TestStore
	logger   *zap.Logger

	mu  sync.Mutex
	rng Rand
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand replaces the default time-seeded randomness source.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over the given stores.
func New(users UserStore, topics TopicStore, words WordStore, progress ProgressStore, tests TestStore, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		users:    users,
		topics:   topics,
		words:    words,
		progress: progress,
		tests:    tests,
		logger:   logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartSession ensures a user row exists, provisioning a new user with
// the public topic and default counters on first contact.
func (e *Engine) StartSession(ctx context.Context, userID int64) (*models.User, error) {
	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	if user != nil {
		return user, nil
	}

	user = &models.User{
		ID:                  userID,
		QuestionsPerSession: models.DefaultQuestionsPerSession,
		MasteryThreshold:    models.DefaultMasteryThreshold,
	}
	topic, err := e.topics.PublicTopic(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	if topic != nil {
		user.TopicID.Int64 = topic.ID
		user.TopicID.Valid = true
	}
	if err := e.users.Create(ctx, user); err != nil {
		return nil, storageErr(err)
	}
	e.logger.Info("provisioned new user",
		zap.Int64("user_id", userID),
		zap.Int64("topic_id", user.TopicID.Int64))
	return user, nil
}

// ListTopics returns the topic catalogue.
func (e *Engine) ListTopics(ctx context.Context) ([]models.Topic, error) {
	topics, err := e.topics.List(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return topics, nil
}

// SetTopic assigns the user's quiz topic after checking it exists.
func (e *Engine) SetTopic(ctx context.Context, userID, topicID int64) error {
	topic, err := e.topics.GetByID(ctx, topicID)
	if err != nil {
		return storageErr(err)
	}
	if topic == nil {
		return ErrNotFound
	}
	if err := e.users.SetTopic(ctx, userID, topicID); err != nil {
		return storageErr(err)
	}
	return nil
}

// SetQuestionsPerSession updates how many questions one session asks.
func (e *Engine) SetQuestionsPerSession(ctx context.Context, userID int64, n int) error {
	if n <= 0 {
		return ErrInvalidSetting
	}
	if err := e.users.SetQuestionsPerSession(ctx, userID, n); err != nil {
		return storageErr(err)
	}
	return nil
}

// SetMasteryThreshold updates the correct-answer count at which a word
// counts as learned.
func (e *Engine) SetMasteryThreshold(ctx context.Context, userID int64, n int) error {
	if n <= 0 {
		return ErrInvalidSetting
	}
	if err := e.users.SetMasteryThreshold(ctx, userID, n); err != nil {
		return storageErr(err)
	}
	return nil
}

// SetState stores the user's bot-interaction state code.
func (e *Engine) SetState(ctx context.Context, userID int64, state int) error {
	if err := e.users.SetState(ctx, userID, state); err != nil {
		return storageErr(err)
	}
	return nil
}

// LearnedCount reports how many words the user has mastered.
func (e *Engine) LearnedCount(ctx context.Context, userID int64) (int, error) {
	count, err := e.progress.LearnedCount(ctx, userID)
	if err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

// TopicWordCount reports the size of the user's assigned topic.
func (e *Engine) TopicWordCount(ctx context.Context, userID int64) (int, error) {
	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return 0, storageErr(err)
	}
	if user == nil || !user.TopicID.Valid {
		return 0, ErrNotFound
	}
	count, err := e.words.CountByTopic(ctx, user.TopicID.Int64)
	if err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

// DueForReminder lists users idle for at least the given duration who
// have not been reminded since their last session.
func (e *Engine) DueForReminder(ctx context.Context, inactivity time.Duration) ([]int64, error) {
	ids, err := e.users.DueForReminder(ctx, e.now().Add(-inactivity))
	if err != nil {
		return nil, storageErr(err)
	}
	return ids, nil
}

// MarkReminderSent claims the user's reminder. False means another
// scan already claimed it and the caller must not notify.
func (e *Engine) MarkReminderSent(ctx context.Context, userID int64) (bool, error) {
	claimed, err := e.users.MarkReminderSent(ctx, userID)
	if err != nil {
		return false, storageErr(err)
	}
	return claimed, nil
}
