package models

import "database/sql"

// Word represents a vocabulary item to be learned
type Word struct {
	ID                      int64          `json:"id" db:"id"`
	TopicID                 int64          `json:"topic_id" db:"topic_id"`
	Word                    string         `json:"word" db:"word"`
	Translation             string         `json:"translation" db:"translation"`
	UsageExample            sql.NullString `json:"usage_example" db:"usage_example"`
	UsageExampleTranslation sql.NullString `json:"usage_example_translation" db:"usage_example_translation"`
}

// WordMastery is a selection row for one word of the user's topic:
// the word left-joined against the user's progress record, so words
// never answered correctly carry a zero counter and no repeat time.
type WordMastery struct {
	WordID         int64        `db:"word_id"`
	CorrectAnswers int          `db:"correct_answers"`
	LastRepeat     sql.NullTime `db:"last_repeat"`
}
