package quiz

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/lingobot/pkg/models"
)

// AnswerResult reports the outcome of one submitted answer.
type AnswerResult struct {
	IsCorrect bool
	// Mastery is the counter after the answer; unchanged on a wrong one
	Mastery int
	// JustLearned is true only when this answer moved the counter onto
	// the user's threshold
	JustLearned bool
	// UsageExample and its translation come from the answered word,
	// empty when the word has none
	UsageExample            string
	UsageExampleTranslation string
}

// SubmitAnswer resolves the pending question for (user, word) and
// advances progress on a correct answer. Wrong answers leave the
// mastery counter untouched; answers without a matching pending
// question yield ErrStaleAnswer and mutate nothing.
func (e *Engine) SubmitAnswer(ctx context.Context, userID, wordID int64, chosen string) (*AnswerResult, error) {
	pending, err := e.tests.PendingByWord(ctx, userID, wordID)
	if err != nil {
		return nil, storageErr(err)
	}
	if pending == nil {
		return nil, ErrStaleAnswer
	}

	isCorrect := chosen == pending.Translation

	resolved, err := e.tests.Resolve(ctx, userID, wordID, isCorrect)
	if err != nil {
		return nil, storageErr(err)
	}
	if !resolved {
		// The entry vanished between lookup and resolve: duplicate
		// submission or a concurrent clear.
		e.logger.Warn("answer for already-resolved entry",
			zap.Int64("user_id", userID),
			zap.Int64("word_id", wordID))
		return nil, ErrStaleAnswer
	}

	result := &AnswerResult{
		IsCorrect:               isCorrect,
		UsageExample:            pending.UsageExample.String,
		UsageExampleTranslation: pending.UsageExampleTranslation.String,
	}

	rec, err := e.progress.Get(ctx, userID, wordID)
	if err != nil {
		return nil, storageErr(err)
	}

	if !isCorrect {
		if rec != nil {
			result.Mastery = rec.CorrectAnswers
		}
		return result, nil
	}

	now := e.now()
	if rec == nil {
		rec = &models.ProgressRecord{
			UserID:         userID,
			WordID:         wordID,
			CorrectAnswers: 1,
			LastRepeat:     now,
		}
		if err := e.progress.Create(ctx, rec); err != nil {
			return nil, storageErr(err)
		}
	} else {
		rec.CorrectAnswers++
		rec.LastRepeat = now
		if err := e.progress.Update(ctx, rec); err != nil {
			return nil, storageErr(err)
		}
	}
	result.Mastery = rec.CorrectAnswers

	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	if user != nil && rec.CorrectAnswers == user.MasteryThreshold {
		result.JustLearned = true
		e.logger.Info("word learned",
			zap.Int64("user_id", userID),
			zap.Int64("word_id", wordID),
			zap.Int("mastery", rec.CorrectAnswers))
	}
	return result, nil
}

// IsLearned reports whether the word's mastery counter has reached the
// user's threshold. Once true it never reverts: the counter only grows.
func (e *Engine) IsLearned(ctx context.Context, userID, wordID int64) (bool, error) {
	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return false, storageErr(err)
	}
	if user == nil {
		return false, ErrNotFound
	}
	rec, err := e.progress.Get(ctx, userID, wordID)
	if err != nil {
		return false, storageErr(err)
	}
	return rec != nil && rec.CorrectAnswers >= user.MasteryThreshold, nil
}

// FinishSession tallies the pool, clears it and stamps the session
// end, re-arming the user's reminder. The clear and the stamp are one
// atomic unit in storage.
func (e *Engine) FinishSession(ctx context.Context, userID int64) (models.SessionStats, error) {
	stats, err := e.tests.Tally(ctx, userID)
	if err != nil {
		return models.SessionStats{}, storageErr(err)
	}
	if err := e.users.CompleteSession(ctx, userID, e.now()); err != nil {
		return models.SessionStats{}, storageErr(err)
	}
	e.logger.Info("session finished",
		zap.Int64("user_id", userID),
		zap.Int("correct", stats.Correct),
		zap.Int("incorrect", stats.Incorrect))
	return stats, nil
}

// AbandonSession drops the user's pool without touching activity
// timestamps. Safe to call when nothing is in flight.
func (e *Engine) AbandonSession(ctx context.Context, userID int64) error {
	if err := e.tests.Clear(ctx, userID); err != nil {
		return storageErr(err)
	}
	return nil
}

// PendingQuestion returns the user's outstanding question, nil when
// none is pending.
func (e *Engine) PendingQuestion(ctx context.Context, userID int64) (*models.PendingQuestion, error) {
	pending, err := e.tests.Pending(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	return pending, nil
}
