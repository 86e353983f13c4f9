// Package supervisor keeps long-running pipeline tasks alive, restarting
// them with exponential backoff when they return.
package supervisor

import (
	"context"
	"log"
	"sync"
	"time"

	"nft-auction-feed/internal/observability"
)

// Config tunes restart behavior.
type Config struct {
	// InitialBackoff is the delay before the first restart.
	InitialBackoff time.Duration
	// MaxBackoff caps the restart delay.
	MaxBackoff time.Duration
	// ResetAfter resets the backoff once a task has run this long.
	ResetAfter time.Duration
}

// DefaultConfig returns restart defaults.
func DefaultConfig() Config {
	return Config{
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		ResetAfter:     1 * time.Minute,
	}
}

type task struct {
	name string
	run  func(ctx context.Context) error
}

// Supervisor runs registered tasks until its context is cancelled. A task
// that returns for any other reason is restarted after a backoff delay.
type Supervisor struct {
	config  Config
	logger  *log.Logger
	metrics *observability.Metrics

	tasks []task

	mu       sync.RWMutex
	degraded map[string]bool
}

// New creates an empty supervisor.
func New(config Config, logger *log.Logger, metrics *observability.Metrics) *Supervisor {
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = DefaultConfig().InitialBackoff
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = DefaultConfig().MaxBackoff
	}
	if config.ResetAfter <= 0 {
		config.ResetAfter = DefaultConfig().ResetAfter
	}
	return &Supervisor{
		config:   config,
		logger:   logger,
		metrics:  metrics,
		degraded: make(map[string]bool),
	}
}

// Add registers a task. Must be called before Run.
func (s *Supervisor) Add(name string, run func(ctx context.Context) error) {
	s.tasks = append(s.tasks, task{name: name, run: run})
}

// Run starts every task and blocks until ctx is cancelled and all tasks
// have returned.
func (s *Supervisor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, t := range s.tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			s.supervise(ctx, t)
		}(t)
	}
	wg.Wait()
}

// Healthy reports whether no task is currently waiting on a restart.
func (s *Supervisor) Healthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.degraded {
		if d {
			return false
		}
	}
	return true
}

// supervise runs one task in a restart loop.
func (s *Supervisor) supervise(ctx context.Context, t task) {
	backoff := s.config.InitialBackoff

	for {
		started := time.Now()
		err := t.run(ctx)

		if ctx.Err() != nil {
			s.logger.Printf("[supervisor] %s stopped", t.name)
			return
		}

		if time.Since(started) >= s.config.ResetAfter {
			backoff = s.config.InitialBackoff
		}

		s.metrics.TaskRestarts.WithLabelValues(t.name).Inc()
		s.logger.Printf("[supervisor] %s exited (%v), restarting in %v", t.name, err, backoff)

		s.setDegraded(t.name, true)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		s.setDegraded(t.name, false)

		backoff *= 2
		if backoff > s.config.MaxBackoff {
			backoff = s.config.MaxBackoff
		}
	}
}

func (s *Supervisor) setDegraded(name string, degraded bool) {
	s.mu.Lock()
	s.degraded[name] = degraded
	s.mu.Unlock()
}
