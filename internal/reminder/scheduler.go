// Package reminder posts a periodic, static purchase reminder. It never reads or
// writes purchase data.
package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	errMissingNotifier = errors.New("reminder: notifier is required")
	errInvalidInterval = errors.New("reminder: interval must be positive")
)

// SchedulerConfig describes a periodic reminder.
type SchedulerConfig struct {
	Interval time.Duration
	Channel  string
	Title    string
	Body     string
	Notifier Notifier
	Logger   *zap.Logger
	Clock    func() time.Time
}

// Scheduler fires one notification immediately on Start and then once per interval.
type Scheduler struct {
	interval time.Duration
	channel  string
	title    string
	body     string
	notifier Notifier
	logger   *zap.Logger
	clock    func() time.Time

	mu      sync.Mutex
	current *run
}

type run struct {
	stop chan struct{}
	done chan struct{}
}

// NewScheduler validates the configuration and returns an idle Scheduler.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Notifier == nil {
		return nil, errMissingNotifier
	}
	if cfg.Interval <= 0 {
		return nil, errInvalidInterval
	}
	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{
		interval: cfg.Interval,
		channel:  channel,
		title:    cfg.Title,
		body:     cfg.Body,
		notifier: cfg.Notifier,
		logger:   logger,
		clock:    clock,
	}, nil
}

// Start launches the periodic loop. If a loop is already running it is kept
// and Start returns without scheduling a second one.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		select {
		case <-s.current.done:
		default:
			s.logger.Debug("reminder already scheduled")
			return
		}
	}

	current := &run{stop: make(chan struct{}), done: make(chan struct{})}
	s.current = current
	s.logger.Info("reminder scheduler started", zap.Duration("interval", s.interval))
	go s.loop(ctx, current)
}

// Stop ends the running loop, if any, and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	current := s.current
	s.current = nil
	s.mu.Unlock()

	if current == nil {
		return
	}
	close(current.stop)
	<-current.done
}

// Running reports whether a loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return false
	}
	select {
	case <-s.current.done:
		return false
	default:
		return true
	}
}

func (s *Scheduler) loop(ctx context.Context, current *run) {
	defer close(current.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.fire(ctx)
	for {
		select {
		case <-ticker.C:
			s.fire(ctx)
		case <-current.stop:
			s.logger.Info("reminder scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("reminder scheduler context cancelled")
			return
		}
	}
}

func (s *Scheduler) fire(ctx context.Context) {
	notification, err := s.newNotification()
	if err != nil {
		s.logger.Error("reminder notification id failed", zap.Error(err))
		return
	}
	// Delivery failures (for example a revoked permission) are logged and the schedule continues.
	if err := s.notifier.Notify(ctx, notification); err != nil {
		s.logger.Warn("reminder notification failed",
			zap.String("notification_id", notification.ID),
			zap.Error(err))
	}
}

func (s *Scheduler) newNotification() (Notification, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Notification{}, err
	}
	return Notification{
		ID:        id.String(),
		Channel:   s.channel,
		Title:     s.title,
		Body:      s.body,
		CreatedAt: s.clock().UTC(),
	}, nil
}
