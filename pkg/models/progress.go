package models

import "time"

// ProgressRecord tracks how many times a user answered a word correctly.
// A record exists only for words answered correctly at least once; the
// counter is never decremented.
type ProgressRecord struct {
	UserID         int64     `json:"user_id" db:"user_id"`
	WordID         int64     `json:"word_id" db:"word_id"`
	CorrectAnswers int       `json:"correct_answers" db:"correct_answers"`
	LastRepeat     time.Time `json:"last_repeat" db:"last_repeat"`
}
