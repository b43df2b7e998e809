// Package reminder periodically scans for inactive users and hands
// them to a notifier, at most once per finished session.
package reminder

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Engine is the part of the quiz engine the scheduler needs.
type Engine interface {
	DueForReminder(ctx context.Context, inactivity time.Duration) ([]int64, error)
	// MarkReminderSent claims the reminder; false means another scan
	// already took it.
	MarkReminderSent(ctx context.Context, userID int64) (bool, error)
}

// Notifier delivers the reminder message.
type Notifier interface {
	SendReminder(userID int64) error
}

// Scheduler runs the inactivity scan on a fixed interval.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	engine     Engine
	notifier   Notifier
	logger     *zap.Logger
	inactivity time.Duration
	interval   time.Duration
}

// New creates a scheduler that scans every interval for users idle
// longer than inactivity.
func New(engine Engine, notifier Notifier, inactivity, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		engine:     engine,
		notifier:   notifier,
		logger:     logger,
		inactivity: inactivity,
		interval:   interval,
	}
}

// Start begins the periodic scan in the background.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.Scan); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates the scan loop.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Scan finds due users, claims each reminder and notifies the claimed
// ones. Claiming before sending keeps overlapping scans from
// double-notifying: the conditional update succeeds for exactly one.
func (s *Scheduler) Scan() {
	ctx := context.Background()

	userIDs, err := s.engine.DueForReminder(ctx, s.inactivity)
	if err != nil {
		s.logger.Error("reminder scan failed", zap.Error(err))
		return
	}

	for _, userID := range userIDs {
		claimed, err := s.engine.MarkReminderSent(ctx, userID)
		if err != nil {
			s.logger.Error("failed to claim reminder",
				zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}
		if err := s.notifier.SendReminder(userID); err != nil {
			s.logger.Error("failed to send reminder",
				zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		s.logger.Info("reminder sent", zap.Int64("user_id", userID))
	}
}
