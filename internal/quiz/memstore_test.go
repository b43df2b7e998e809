package quiz

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/example/lingobot/pkg/models"
)

// memStore is an in-memory implementation of every store interface,
// used as the engine's test double. Mutations are atomic under one
// mutex, mirroring the per-row atomicity of the real storage layer.
type memStore struct {
	mu       sync.Mutex
	users    map[int64]*models.User
	topics   map[int64]*models.Topic
	words    map[int64]*models.Word
	progress map[pairKey]*models.ProgressRecord
	entries  []*models.TestEntry
	nextID   int64
}

type pairKey struct{ user, word int64 }

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]*models.User),
		topics:   make(map[int64]*models.Topic),
		words:    make(map[int64]*models.Word),
		progress: make(map[pairKey]*models.ProgressRecord),
	}
}

func (s *memStore) addTopic(id int64, title string) {
	s.topics[id] = &models.Topic{ID: id, Title: title}
}

func (s *memStore) addWord(id, topicID int64, word, translation string) {
	s.words[id] = &models.Word{ID: id, TopicID: topicID, Word: word, Translation: translation}
}

func (s *memStore) addUser(id, topicID int64, perSession, threshold int) {
	s.users[id] = &models.User{
		ID:                  id,
		TopicID:             sql.NullInt64{Int64: topicID, Valid: true},
		QuestionsPerSession: perSession,
		MasteryThreshold:    threshold,
	}
}

func (s *memStore) addProgress(userID, wordID int64, count int) {
	s.progress[pairKey{userID, wordID}] = &models.ProgressRecord{
		UserID:         userID,
		WordID:         wordID,
		CorrectAnswers: count,
		LastRepeat:     time.Now(),
	}
}

// UserStore

func (s *memStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copy := *user
	return &copy, nil
}

func (s *memStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *user
	s.users[user.ID] = &copy
	return nil
}

func (s *memStore) SetTopic(_ context.Context, userID, topicID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		user.TopicID = sql.NullInt64{Int64: topicID, Valid: true}
	}
	return nil
}

func (s *memStore) SetQuestionsPerSession(_ context.Context, userID int64, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		user.QuestionsPerSession = n
	}
	return nil
}

func (s *memStore) SetMasteryThreshold(_ context.Context, userID int64, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		user.MasteryThreshold = n
	}
	return nil
}

func (s *memStore) SetState(_ context.Context, userID int64, state int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		user.State = state
	}
	return nil
}

func (s *memStore) CompleteSession(_ context.Context, userID int64, finishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(userID)
	if user, ok := s.users[userID]; ok {
		user.LastRepeat = sql.NullTime{Time: finishedAt, Valid: true}
		user.ReminderSent = false
	}
	return nil
}

func (s *memStore) DueForReminder(_ context.Context, cutoff time.Time) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for _, user := range s.users {
		if !user.ReminderSent && user.LastRepeat.Valid && user.LastRepeat.Time.Before(cutoff) {
			ids = append(ids, user.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *memStore) MarkReminderSent(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok || user.ReminderSent {
		return false, nil
	}
	user.ReminderSent = true
	return true, nil
}

// TopicStore

func (s *memStore) GetTopicByID(_ context.Context, id int64) (*models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	topic, ok := s.topics[id]
	if !ok {
		return nil, nil
	}
	copy := *topic
	return &copy, nil
}

func (s *memStore) List(_ context.Context) ([]models.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	topics := make([]models.Topic, 0, len(s.topics))
	for _, topic := range s.topics {
		topics = append(topics, *topic)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].ID < topics[j].ID })
	return topics, nil
}

func (s *memStore) PublicTopic(_ context.Context) (*models.Topic, error) {
	topics, _ := s.List(context.Background())
	for _, topic := range topics {
		if !topic.UserID.Valid {
			t := topic
			return &t, nil
		}
	}
	return nil, nil
}

// WordStore

func (s *memStore) GetWordByID(_ context.Context, id int64) (*models.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	word, ok := s.words[id]
	if !ok {
		return nil, nil
	}
	copy := *word
	return &copy, nil
}

func (s *memStore) CountByTopic(_ context.Context, topicID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, word := range s.words {
		if word.TopicID == topicID {
			count++
		}
	}
	return count, nil
}

func (s *memStore) ForSelection(_ context.Context, userID int64) ([]models.WordMastery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok || !user.TopicID.Valid {
		return nil, nil
	}
	var rows []models.WordMastery
	for _, word := range s.words {
		if word.TopicID != user.TopicID.Int64 {
			continue
		}
		row := models.WordMastery{WordID: word.ID}
		if rec, ok := s.progress[pairKey{userID, word.ID}]; ok {
			row.CorrectAnswers = rec.CorrectAnswers
			row.LastRepeat = sql.NullTime{Time: rec.LastRepeat, Valid: true}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CorrectAnswers != rows[j].CorrectAnswers {
			return rows[i].CorrectAnswers < rows[j].CorrectAnswers
		}
		return rows[i].WordID < rows[j].WordID
	})
	return rows, nil
}

func (s *memStore) TranslationsExcluding(_ context.Context, wordID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.words))
	for id := range s.words {
		if id != wordID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	translations := make([]string, 0, len(ids))
	for _, id := range ids {
		translations = append(translations, s.words[id].Translation)
	}
	return translations, nil
}

// ProgressStore

func (s *memStore) Get(_ context.Context, userID, wordID int64) (*models.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.progress[pairKey{userID, wordID}]
	if !ok {
		return nil, nil
	}
	copy := *rec
	return &copy, nil
}

func (s *memStore) CreateProgress(_ context.Context, rec *models.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *rec
	s.progress[pairKey{rec.UserID, rec.WordID}] = &copy
	return nil
}

func (s *memStore) Update(_ context.Context, rec *models.ProgressRecord) error {
	return s.CreateProgress(context.Background(), rec)
}

func (s *memStore) LearnedCount(_ context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return 0, nil
	}
	count := 0
	for key, rec := range s.progress {
		if key.user == userID && rec.CorrectAnswers >= user.MasteryThreshold {
			count++
		}
	}
	return count, nil
}

// TestStore

func (s *memStore) Insert(_ context.Context, userID, wordID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.entries = append(s.entries, &models.TestEntry{ID: s.nextID, UserID: userID, WordID: wordID})
	return nil
}

func (s *memStore) UnresolvedWordIDs(_ context.Context, userID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for _, entry := range s.entries {
		if entry.UserID == userID && !entry.IsCorrect.Valid {
			ids = append(ids, entry.WordID)
		}
	}
	return ids, nil
}

func (s *memStore) Pending(ctx context.Context, userID int64) (*models.PendingQuestion, error) {
	ids, _ := s.UnresolvedWordIDs(ctx, userID)
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return s.PendingByWord(ctx, userID, ids[0])
}

func (s *memStore) PendingByWord(_ context.Context, userID, wordID int64) (*models.PendingQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.UserID == userID && entry.WordID == wordID && !entry.IsCorrect.Valid {
			word := s.words[wordID]
			return &models.PendingQuestion{
				WordID:                  wordID,
				Word:                    word.Word,
				Translation:             word.Translation,
				UsageExample:            word.UsageExample,
				UsageExampleTranslation: word.UsageExampleTranslation,
			}, nil
		}
	}
	return nil, nil
}

func (s *memStore) Resolve(_ context.Context, userID, wordID int64, isCorrect bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.UserID == userID && entry.WordID == wordID && !entry.IsCorrect.Valid {
			entry.IsCorrect = sql.NullBool{Bool: isCorrect, Valid: true}
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(userID)
	return nil
}

func (s *memStore) clearLocked(userID int64) {
	kept := s.entries[:0]
	for _, entry := range s.entries {
		if entry.UserID != userID {
			kept = append(kept, entry)
		}
	}
	s.entries = kept
}

// The topic, word and progress interfaces each declare methods whose
// names collide on one struct (GetByID, Create), so thin views over
// the same memStore expose them under the expected names.

type memTopics struct{ *memStore }

func (s memTopics) GetByID(ctx context.Context, id int64) (*models.Topic, error) {
	return s.GetTopicByID(ctx, id)
}

type memWords struct{ *memStore }

func (s memWords) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	return s.GetWordByID(ctx, id)
}

type memProgress struct{ *memStore }

func (s memProgress) Create(ctx context.Context, rec *models.ProgressRecord) error {
	return s.CreateProgress(ctx, rec)
}

func (s *memStore) Tally(_ context.Context, userID int64) (models.SessionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats models.SessionStats
	for _, entry := range s.entries {
		if entry.UserID != userID || !entry.IsCorrect.Valid {
			continue
		}
		if entry.IsCorrect.Bool {
			stats.Correct++
		} else {
			stats.Incorrect++
		}
	}
	return stats, nil
}
