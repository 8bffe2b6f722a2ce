package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/crstnmac/estate-broker-manager/internal/shared/logger"
)

// SessionSweeper periodically removes expired session rows. Expired sessions
// are already rejected at validation time; the sweeper only keeps the table
// from growing without bound.
type SessionSweeper struct {
	sessions SessionManagerInterface
	interval time.Duration
	logger   logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewSessionSweeper creates a sweeper that purges on the given interval.
func NewSessionSweeper(sessions SessionManagerInterface, interval time.Duration, log logger.Logger) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		interval: interval,
		logger:   log.WithComponent("session_sweeper"),
	}
}

// Start launches the background sweep loop. Calling Start on a running
// sweeper is a no-op.
func (s *SessionSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true

	go s.run(ctx)
	s.logger.WithFields(map[string]interface{}{
		"interval": s.interval.String(),
	}).Info("Session sweeper started")
}

// Stop terminates the loop and waits for an in-flight sweep to finish.
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.cancel()
	<-s.done
	s.started = false
	s.logger.Info("Session sweeper stopped")
}

func (s *SessionSweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	purged, err := s.sessions.PurgeExpired(sweepCtx)
	if err != nil {
		s.logger.Errorf("Failed to purge expired sessions: %v", err)
		return
	}
	if purged > 0 {
		s.logger.WithFields(map[string]interface{}{
			"purged": purged,
		}).Info("Purged expired sessions")
	}
}
