package models

import "database/sql"

// TestEntry is one question issued during the user's open session.
// IsCorrect stays NULL until the question is answered; entries are
// deleted when the session is cleared.
type TestEntry struct {
	ID        int64        `json:"id" db:"id"`
	UserID    int64        `json:"user_id" db:"user_id"`
	WordID    int64        `json:"word_id" db:"word_id"`
	IsCorrect sql.NullBool `json:"is_correct" db:"is_correct"`
}

// PendingQuestion is an unresolved test entry joined with its word.
type PendingQuestion struct {
	WordID                  int64          `db:"word_id"`
	Word                    string         `db:"word"`
	Translation             string         `db:"translation"`
	UsageExample            sql.NullString `db:"usage_example"`
	UsageExampleTranslation sql.NullString `db:"usage_example_translation"`
}

// SessionStats aggregates resolved entries of the current test pool.
type SessionStats struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}
