package quiz

import (
	"context"

	"go.uber.org/zap"
)

const distractorCount = 3

// Question is a four-option multiple-choice question. Answer holds the
// correct translation; its position inside Options is randomized.
type Question struct {
	WordID  int64
	Word    string
	Answer  string
	Options []string
}

// NextQuestion picks the least-mastered word of the user's topic that
// has no open question yet, builds its options and records the entry
// in the test pool.
func (e *Engine) NextQuestion(ctx context.Context, userID int64) (*Question, error) {
	selection, err := e.words.ForSelection(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	if len(selection) == 0 {
		return nil, ErrNoWords
	}

	unresolved, err := e.tests.UnresolvedWordIDs(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	pending := make(map[int64]struct{}, len(unresolved))
	for _, id := range unresolved {
		pending[id] = struct{}{}
	}

	var wordID int64 = -1
	for _, candidate := range selection {
		if _, open := pending[candidate.WordID]; !open {
			wordID = candidate.WordID
			break
		}
	}
	if wordID < 0 {
		return nil, ErrSessionExhausted
	}

	word, err := e.words.GetByID(ctx, wordID)
	if err != nil {
		return nil, storageErr(err)
	}
	if word == nil {
		return nil, ErrNotFound
	}

	distractors, err := e.pickDistractors(ctx, word.ID, word.Translation)
	if err != nil {
		return nil, err
	}

	if err := e.tests.Insert(ctx, userID, word.ID); err != nil {
		return nil, storageErr(err)
	}

	question := &Question{
		WordID:  word.ID,
		Word:    word.Word,
		Answer:  word.Translation,
		Options: e.shuffleOptions(word.Translation, distractors),
	}
	e.logger.Debug("issued question",
		zap.Int64("user_id", userID),
		zap.Int64("word_id", word.ID))
	return question, nil
}

// pickDistractors samples three translations uniformly from all other
// words. Translations equal to the correct answer are excluded so the
// answer never collides with a distractor, and duplicates are dropped
// so the four options stay distinct.
func (e *Engine) pickDistractors(ctx context.Context, wordID int64, answer string) ([]string, error) {
	candidates, err := e.words.TranslationsExcluding(ctx, wordID)
	if err != nil {
		return nil, storageErr(err)
	}

	seen := map[string]struct{}{answer: {}}
	pool := make([]string, 0, len(candidates))
	for _, t := range candidates {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		pool = append(pool, t)
	}
	if len(pool) < distractorCount {
		return nil, ErrInsufficientVocabulary
	}

	e.mu.Lock()
	e.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	e.mu.Unlock()
	return pool[:distractorCount], nil
}

// shuffleOptions mixes the correct translation into the distractors at
// a random position.
func (e *Engine) shuffleOptions(answer string, distractors []string) []string {
	options := make([]string, 0, len(distractors)+1)
	options = append(options, distractors...)
	options = append(options, answer)

	e.mu.Lock()
	e.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	e.mu.Unlock()
	return options
}
