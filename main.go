package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/lingobot/internal/bot"
	"github.com/example/lingobot/internal/config"
	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/internal/excel"
	"github.com/example/lingobot/internal/quiz"
	"github.com/example/lingobot/internal/reminder"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.Database.URL, cfg.Database.SQLitePath)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	topicRepo := database.NewTopicRepository(db)
	wordRepo := database.NewWordRepository(db)

	if cfg.ImportFile != "" {
		importer := excel.NewImporter(topicRepo, wordRepo)
		result, err := importer.ImportFile(context.Background(), cfg.ImportFile)
		if err != nil {
			logger.Fatal("vocabulary import failed", zap.Error(err))
		}
		logger.Info("vocabulary imported",
			zap.Int("topics", result.TopicsCreated),
			zap.Int("words", result.WordsCreated),
			zap.Int("skipped", result.Skipped),
			zap.Strings("errors", result.Errors))
	}

	engine := quiz.New(
		database.NewUserRepository(db),
		topicRepo,
		wordRepo,
		database.NewProgressRepository(db),
		database.NewTestRepository(db),
		logger,
	)

	b, err := bot.New(cfg.Telegram.Token, engine, logger)
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	scheduler := reminder.New(
		engine,
		b,
		time.Duration(cfg.Reminder.InactivityMinutes)*time.Minute,
		time.Duration(cfg.Reminder.ScanIntervalMinutes)*time.Minute,
		logger,
	)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("failed to start reminder scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bot stopped with error", zap.Error(err))
	}
	logger.Info("bot stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
