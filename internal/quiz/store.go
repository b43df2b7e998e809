package quiz

import (
	"context"
	"time"

	"github.com/example/lingobot/pkg/models"
)

// The engine consumes storage through these interfaces so tests can
// substitute an in-memory double. Lookups return nil (not an error)
// when no row exists; every mutation is individually atomic.

// UserStore persists user rows and the session/reminder bookkeeping
// attached to them.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetTopic(ctx context.Context, userID, topicID int64) error
	SetQuestionsPerSession(ctx context.Context, userID int64, n int) error
	SetMasteryThreshold(ctx context.Context, userID int64, n int) error
	SetState(ctx context.Context, userID int64, state int) error
	// CompleteSession clears the user's test pool, moves last_repeat
	// to finishedAt and re-arms the reminder flag in one atomic unit.
	CompleteSession(ctx context.Context, userID int64, finishedAt time.Time) error
	DueForReminder(ctx context.Context, cutoff time.Time) ([]int64, error)
	// MarkReminderSent reports false when the reminder was already
	// claimed by a concurrent scan.
	MarkReminderSent(ctx context.Context, userID int64) (bool, error)
}

// TopicStore reads the topic catalogue.
type TopicStore interface {
	GetByID(ctx context.Context, id int64) (*models.Topic, error)
	List(ctx context.Context) ([]models.Topic, error)
	// PublicTopic returns a topic owned by no user, assigned to new
	// users by default; nil when none exists.
	PublicTopic(ctx context.Context) (*models.Topic, error)
}

// WordStore reads vocabulary items and selection candidates.
type WordStore interface {
	GetByID(ctx context.Context, id int64) (*models.Word, error)
	CountByTopic(ctx context.Context, topicID int64) (int, error)
	// ForSelection returns the user's topic words least-mastered
	// first; empty when no topic is assigned or the topic is empty.
	ForSelection(ctx context.Context, userID int64) ([]models.WordMastery, error)
	TranslationsExcluding(ctx context.Context, wordID int64) ([]string, error)
}

// ProgressStore persists per-(user, word) mastery counters.
type ProgressStore interface {
	Get(ctx context.Context, userID, wordID int64) (*models.ProgressRecord, error)
	Create(ctx context.Context, rec *models.ProgressRecord) error
	Update(ctx context.Context, rec *models.ProgressRecord) error
	LearnedCount(ctx context.Context, userID int64) (int, error)
}

// TestStore persists the per-user pool of in-flight questions.
type TestStore interface {
	Insert(ctx context.Context, userID, wordID int64) error
	UnresolvedWordIDs(ctx context.Context, userID int64) ([]int64, error)
	Pending(ctx context.Context, userID int64) (*models.PendingQuestion, error)
	PendingByWord(ctx context.Context, userID, wordID int64) (*models.PendingQuestion, error)
	Resolve(ctx context.Context, userID, wordID int64, isCorrect bool) (bool, error)
	Clear(ctx context.Context, userID int64) error
	Tally(ctx context.Context, userID int64) (models.SessionStats, error)
}
