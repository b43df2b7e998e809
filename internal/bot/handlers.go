package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/lingobot/internal/quiz"
	"github.com/example/lingobot/pkg/models"
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	userID := message.From.ID

	user, err := b.engine.StartSession(ctx, userID)
	if err != nil {
		return b.sendFailure(userID, err)
	}

	if message.IsCommand() {
		return b.handleCommand(ctx, user, message)
	}

	// Non-command text is only meaningful in an awaiting-number state
	switch user.State {
	case stateAwaitingQuestionCount:
		return b.applyNumberSetting(ctx, userID, message.Text,
			b.engine.SetQuestionsPerSession, "Questions per session updated.")
	case stateAwaitingThreshold:
		return b.applyNumberSetting(ctx, userID, message.Text,
			b.engine.SetMasteryThreshold, "Mastery threshold updated.")
	}
	return b.send(userID, "Send /test to start a quiz or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, user *models.User, message *tgbotapi.Message) error {
	userID := message.From.ID

	// Any command leaves a half-finished settings dialog
	if user.State != stateIdle {
		if err := b.engine.SetState(ctx, userID, stateIdle); err != nil {
			return b.sendFailure(userID, err)
		}
	}

	switch message.Command() {
	case "start":
		return b.send(userID,
			"Hi! I quiz you on vocabulary and keep track of what you have learned.\n"+
				"Send /test to begin. /help lists everything else.")
	case "help":
		return b.send(userID,
			"/test — start or continue a quiz session\n"+
				"/stop — finish the session and see the score\n"+
				"/topics — choose a topic\n"+
				"/stats — your progress\n"+
				"/questions — set questions per session\n"+
				"/threshold — set correct answers needed to learn a word")
	case "test":
		return b.askNext(ctx, userID)
	case "stop":
		return b.finishSession(ctx, userID)
	case "topics":
		return b.showTopics(ctx, userID)
	case "stats":
		return b.showStats(ctx, userID)
	case "questions":
		if err := b.engine.SetState(ctx, userID, stateAwaitingQuestionCount); err != nil {
			return b.sendFailure(userID, err)
		}
		return b.send(userID, "How many questions per session? Send a number.")
	case "threshold":
		if err := b.engine.SetState(ctx, userID, stateAwaitingThreshold); err != nil {
			return b.sendFailure(userID, err)
		}
		return b.send(userID, "After how many correct answers is a word learned? Send a number.")
	default:
		return b.send(userID, "Unknown command. /help lists what I understand.")
	}
}

func (b *Bot) applyNumberSetting(ctx context.Context, userID int64, text string, set func(context.Context, int64, int) error, confirmation string) error {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return b.send(userID, "That doesn't look like a number. Try again.")
	}
	if err := set(ctx, userID, n); err != nil {
		if errors.Is(err, quiz.ErrInvalidSetting) {
			return b.send(userID, "The value must be a positive number.")
		}
		return b.sendFailure(userID, err)
	}
	if err := b.engine.SetState(ctx, userID, stateIdle); err != nil {
		return b.sendFailure(userID, err)
	}
	return b.send(userID, confirmation)
}

// askNext issues the next question or reports why none is available.
func (b *Bot) askNext(ctx context.Context, userID int64) error {
	question, err := b.engine.NextQuestion(ctx, userID)
	switch {
	case errors.Is(err, quiz.ErrNoWords):
		return b.send(userID, "No words to practice yet. Pick a topic with /topics.")
	case errors.Is(err, quiz.ErrSessionExhausted):
		return b.finishSession(ctx, userID)
	case errors.Is(err, quiz.ErrInsufficientVocabulary):
		return b.send(userID, "The catalogue is too small to build a quiz yet.")
	case err != nil:
		return b.sendFailure(userID, err)
	}

	b.setActiveQuestion(userID, question)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(question.Options))
	for i, option := range question.Options {
		data := fmt.Sprintf("ans|%d|%d", question.WordID, i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, data)))
	}

	msg := tgbotapi.NewMessage(userID, fmt.Sprintf("How do you translate «%s»?", question.Word))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	userID := callback.From.ID
	defer func() {
		// Stop the client spinner regardless of outcome
		_, _ = b.api.Request(tgbotapi.NewCallback(callback.ID, ""))
	}()

	parts := strings.Split(callback.Data, "|")
	switch parts[0] {
	case "ans":
		if len(parts) != 3 {
			return nil
		}
		wordID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil
		}
		optionIdx, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil
		}
		return b.handleAnswer(ctx, userID, wordID, optionIdx)
	case "topic":
		if len(parts) != 2 {
			return nil
		}
		topicID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil
		}
		return b.chooseTopic(ctx, userID, topicID)
	}
	return nil
}

func (b *Bot) handleAnswer(ctx context.Context, userID, wordID int64, optionIdx int) error {
	question := b.activeQuestion(userID)
	if question == nil || question.WordID != wordID || optionIdx < 0 || optionIdx >= len(question.Options) {
		return b.send(userID, "That question is no longer active. Send /test for a new one.")
	}
	chosen := question.Options[optionIdx]

	result, err := b.engine.SubmitAnswer(ctx, userID, wordID, chosen)
	if errors.Is(err, quiz.ErrStaleAnswer) {
		return b.send(userID, "That question was already answered. Send /test for a new one.")
	}
	if err != nil {
		return b.sendFailure(userID, err)
	}

	var reply strings.Builder
	if result.IsCorrect {
		reply.WriteString("Correct! ✅")
	} else {
		fmt.Fprintf(&reply, "Wrong ❌ The answer is «%s».", question.Answer)
	}
	if result.UsageExample != "" {
		fmt.Fprintf(&reply, "\n\n%s", result.UsageExample)
		if result.UsageExampleTranslation != "" {
			fmt.Fprintf(&reply, "\n%s", result.UsageExampleTranslation)
		}
	}
	if result.JustLearned {
		fmt.Fprintf(&reply, "\n\nYou have learned «%s»! 🎉", question.Word)
	}
	if err := b.send(userID, reply.String()); err != nil {
		return err
	}

	user, err := b.engine.StartSession(ctx, userID)
	if err != nil {
		return b.sendFailure(userID, err)
	}
	if b.bumpAnswered(userID) >= user.QuestionsPerSession {
		return b.finishSession(ctx, userID)
	}
	return b.askNext(ctx, userID)
}

func (b *Bot) finishSession(ctx context.Context, userID int64) error {
	stats, err := b.engine.FinishSession(ctx, userID)
	if err != nil {
		return b.sendFailure(userID, err)
	}
	b.resetSession(userID)
	return b.send(userID, fmt.Sprintf(
		"Session over: %d correct, %d wrong. Send /test to go again.",
		stats.Correct, stats.Incorrect))
}

func (b *Bot) showTopics(ctx context.Context, userID int64) error {
	topics, err := b.engine.ListTopics(ctx)
	if err != nil {
		return b.sendFailure(userID, err)
	}
	if len(topics) == 0 {
		return b.send(userID, "No topics yet.")
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(topics))
	for _, topic := range topics {
		data := fmt.Sprintf("topic|%d", topic.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(topic.Title, data)))
	}
	msg := tgbotapi.NewMessage(userID, "Choose a topic:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) chooseTopic(ctx context.Context, userID, topicID int64) error {
	if err := b.engine.SetTopic(ctx, userID, topicID); err != nil {
		if errors.Is(err, quiz.ErrNotFound) {
			return b.send(userID, "That topic doesn't exist anymore.")
		}
		return b.sendFailure(userID, err)
	}
	// A topic switch abandons any in-flight questions
	if err := b.engine.AbandonSession(ctx, userID); err != nil {
		return b.sendFailure(userID, err)
	}
	b.resetSession(userID)
	return b.send(userID, "Topic updated. Send /test to start practicing.")
}

func (b *Bot) showStats(ctx context.Context, userID int64) error {
	learned, err := b.engine.LearnedCount(ctx, userID)
	if err != nil {
		return b.sendFailure(userID, err)
	}
	total, err := b.engine.TopicWordCount(ctx, userID)
	if errors.Is(err, quiz.ErrNotFound) {
		return b.send(userID, fmt.Sprintf("Words learned: %d. No topic assigned yet — try /topics.", learned))
	}
	if err != nil {
		return b.sendFailure(userID, err)
	}
	return b.send(userID, fmt.Sprintf("Words learned: %d\nWords in your topic: %d", learned, total))
}

// sendFailure reports a transient failure without leaking internals.
func (b *Bot) sendFailure(userID int64, err error) error {
	b.logger.Error("operation failed", zap.Int64("user_id", userID), zap.Error(err))
	return b.send(userID, "Something went wrong, please try again.")
}
