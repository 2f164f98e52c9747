package bot

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs the periodic session expiry sweep using gocron.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	sessions  *SessionStore
	ttl       time.Duration
	interval  time.Duration
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates a scheduler that sweeps sessions idle for longer
// than ttl every interval.
func NewScheduler(logger *slog.Logger, sessions *SessionStore, ttl, interval time.Duration) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    logger.With("component", "scheduler"),
		sessions:  sessions,
		ttl:       ttl,
		interval:  interval,
	}, nil
}

// Start registers the sweep job and starts the scheduler's internal ticking.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			start := time.Now()
			removed := s.sessions.Sweep(s.ttl)
			if removed > 0 {
				s.logger.Info("Swept expired sessions",
					"removed", removed,
					"ttl", s.ttl,
					"duration", time.Since(start))
			}
		}),
		gocron.WithName("session_sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "sweep_interval", s.interval, "session_ttl", s.ttl)

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully.")
	}

	s.running = false
	return err
}
