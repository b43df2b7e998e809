// Package bot is the Telegram transport over the quiz engine. It
// renders questions and results; every decision stays in the engine.
package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/lingobot/internal/quiz"
)

// User bot-interaction state codes persisted between messages.
const (
	stateIdle = iota
	stateAwaitingQuestionCount
	stateAwaitingThreshold
)

// Bot wires Telegram updates to the engine.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *quiz.Engine
	logger *zap.Logger

	mu sync.Mutex
	// activeQuestions holds the question currently on screen per user,
	// so an answer callback can be matched to its option texts
	activeQuestions map[int64]*quiz.Question
	// answeredCounts tracks how many answers the open session took
	answeredCounts map[int64]int
}

// New creates a bot for the given token.
func New(token string, engine *quiz.Engine, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:             api,
		engine:          engine,
		logger:          logger,
		activeQuestions: make(map[int64]*quiz.Question),
		answeredCounts:  make(map[int64]int),
	}, nil
}

// Start long-polls Telegram updates until the context is canceled.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("bot started", zap.String("username", b.api.Self.UserName))

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.logger.Error("callback failed",
				zap.Int64("user_id", update.CallbackQuery.From.ID),
				zap.Error(err))
		}
	case update.Message != nil:
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.logger.Error("message failed",
				zap.Int64("user_id", update.Message.From.ID),
				zap.Error(err))
		}
	}
}

// SendReminder implements the reminder notifier.
func (b *Bot) SendReminder(userID int64) error {
	msg := tgbotapi.NewMessage(userID,
		"Time to practice! Send /test to pick up where you left off.")
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) send(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) setActiveQuestion(userID int64, q *quiz.Question) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activeQuestions[userID] = q
}

func (b *Bot) activeQuestion(userID int64) *quiz.Question {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.activeQuestions[userID]
}

// bumpAnswered increments the session answer counter and returns it.
func (b *Bot) bumpAnswered(userID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answeredCounts[userID]++
	return b.answeredCounts[userID]
}

func (b *Bot) resetSession(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.activeQuestions, userID)
	delete(b.answeredCounts, userID)
}
