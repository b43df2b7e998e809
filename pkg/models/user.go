package models

import "database/sql"

// User represents a Telegram user using the bot.
// The ID is the external Telegram identity, not a surrogate key.
type User struct {
	ID                  int64         `json:"id" db:"id"`
	TopicID             sql.NullInt64 `json:"topic_id" db:"topic_id"`
	QuestionsPerSession int           `json:"questions_per_session" db:"questions_per_session"`
	MasteryThreshold    int           `json:"mastery_threshold" db:"mastery_threshold"`
	State               int           `json:"state" db:"state"`
	LastRepeat          sql.NullTime  `json:"last_repeat" db:"last_repeat"`
	ReminderSent        bool          `json:"reminder_sent" db:"reminder_sent"`
}

// Default per-user settings applied on first contact.
const (
	DefaultQuestionsPerSession = 5
	DefaultMasteryThreshold    = 5
)
