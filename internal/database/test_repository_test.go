package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestRepositoryInsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTestRepository(db)

	mock.ExpectExec(`INSERT INTO test_entries \(user_id, word_id\) VALUES \(\?, \?\)`).
		WithArgs(int64(42), int64(7)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Insert(context.Background(), 42, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestRepositoryUnresolvedWordIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTestRepository(db)

	rows := sqlmock.NewRows([]string{"word_id"}).AddRow(7).AddRow(9)
	mock.ExpectQuery(`SELECT word_id FROM test_entries WHERE user_id = \? AND is_correct IS NULL`).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	ids, err := repo.UnresolvedWordIDs(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 9}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestRepositoryPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTestRepository(db)

	rows := sqlmock.NewRows([]string{
		"word_id", "word", "translation", "usage_example", "usage_example_translation",
	}).AddRow(7, "paw", "лапа", "The cat licked its paw.", "Кошка облизала лапу.")
	mock.ExpectQuery(`SELECT test_entries.word_id, words.word, words.translation`).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	q, err := repo.Pending(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, int64(7), q.WordID)
	assert.Equal(t, "paw", q.Word)
	assert.Equal(t, "лапа", q.Translation)
	assert.True(t, q.UsageExample.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestRepositoryPendingNone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTestRepository(db)

	mock.ExpectQuery(`SELECT test_entries.word_id, words.word, words.translation`).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	q, err := repo.Pending(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, q)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestRepositoryPendingByWordNone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTestRepository(db)

	mock.ExpectQuery(`SELECT test_entries.word_id, words.word, words.translation`).
		WithArgs(int64(42), int64(7)).
		WillReturnError(sql.ErrNoRows)

	q, err := repo.PendingByWord(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.Nil(t, q)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestRepositoryResolve(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		resolved bool
	}{
		{name: "resolves an open entry", affected: 1, resolved: true},
		{name: "reports false when already resolved", affected: 0, resolved: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewTestRepository(db)

			mock.ExpectExec(`UPDATE test_entries SET is_correct = \? WHERE user_id = \? AND word_id = \? AND is_correct IS NULL`).
				WithArgs(true, int64(42), int64(7)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			resolved, err := repo.Resolve(context.Background(), 42, 7, true)
			require.NoError(t, err)
			assert.Equal(t, tt.resolved, resolved)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTestRepositoryClear(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTestRepository(db)

	mock.ExpectExec(`DELETE FROM test_entries WHERE user_id = \?`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 5))

	require.NoError(t, repo.Clear(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestRepositoryTally(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTestRepository(db)

	rows := sqlmock.NewRows([]string{"is_correct", "count"}).
		AddRow(true, 4).
		AddRow(false, 2)
	mock.ExpectQuery(`SELECT is_correct, COUNT\(\*\) AS count FROM test_entries WHERE user_id = \? AND is_correct IS NOT NULL GROUP BY is_correct`).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	stats, err := repo.Tally(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Correct)
	assert.Equal(t, 2, stats.Incorrect)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTestRepositoryTallyEmptyPool(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTestRepository(db)

	mock.ExpectQuery(`SELECT is_correct, COUNT\(\*\) AS count`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"is_correct", "count"}))

	stats, err := repo.Tally(context.Background(), 42)
	require.NoError(t, err)
	assert.Zero(t, stats.Correct)
	assert.Zero(t, stats.Incorrect)
	assert.NoError(t, mock.ExpectationsWereMet())
}
