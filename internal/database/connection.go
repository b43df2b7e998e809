// Package database implements the storage layer on top of sqlx. Every
// repository receives an explicit handle; there is no package-level
// connection state.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the database and bootstraps the schema. A non-empty
// url selects PostgreSQL; otherwise a local SQLite file at sqlitePath
// is used.
func Connect(url, sqlitePath string) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	if url != "" {
		db, err = sqlx.Connect("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	} else {
		if dir := filepath.Dir(sqlitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err = sqlx.Connect("sqlite3", sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates the tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS topics (
				id %s,
				title TEXT NOT NULL,
				description TEXT,
				user_id BIGINT
			)`, serial),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS words (
				id %s,
				topic_id BIGINT NOT NULL REFERENCES topics(id),
				word TEXT NOT NULL,
				translation TEXT NOT NULL,
				usage_example TEXT,
				usage_example_translation TEXT
			)`, serial),
		`
			CREATE TABLE IF NOT EXISTS users (
				id BIGINT PRIMARY KEY,
				topic_id BIGINT REFERENCES topics(id),
				questions_per_session INTEGER NOT NULL DEFAULT 5,
				mastery_threshold INTEGER NOT NULL DEFAULT 5,
				state INTEGER NOT NULL DEFAULT 0,
				last_repeat TIMESTAMP,
				reminder_sent BOOLEAN NOT NULL DEFAULT FALSE
			)`,
		`
			CREATE TABLE IF NOT EXISTS progress (
				user_id BIGINT NOT NULL REFERENCES users(id),
				word_id BIGINT NOT NULL REFERENCES words(id),
				correct_answers INTEGER NOT NULL DEFAULT 0,
				last_repeat TIMESTAMP NOT NULL,
				PRIMARY KEY (user_id, word_id)
			)`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS test_entries (
				id %s,
				user_id BIGINT NOT NULL REFERENCES users(id),
				word_id BIGINT NOT NULL REFERENCES words(id),
				is_correct BOOLEAN
			)`, serial),
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
