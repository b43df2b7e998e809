package models

import "database/sql"

// Topic groups words by a common theme
type Topic struct {
	ID          int64          `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description sql.NullString `json:"description" db:"description"`
	// UserID is the creating user; topics without an owner are public
	// and become the default topic for new users
	UserID sql.NullInt64 `json:"user_id" db:"user_id"`
}
