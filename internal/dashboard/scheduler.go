package dashboard

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seuros/covidboard/internal/logging"
)

// SessionSweeper periodically drops idle sessions from a Registry, so memory
// is reclaimed even when no new visitor arrives to trigger eviction.
type SessionSweeper struct {
	registry *Registry
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewSessionSweeper creates a sweeper for registry running every interval.
func NewSessionSweeper(registry *Registry, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{
		registry: registry,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins sweeping in the background
func (s *SessionSweeper) Start() {
	logging.L().Info("starting session sweeper", zap.Duration("interval", s.interval))
	go s.run()
}

// Stop gracefully stops the sweeper and waits for it to exit
func (s *SessionSweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	<-s.done
}

func (s *SessionSweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			return
		}
	}
}

func (s *SessionSweeper) sweep() {
	if dropped := s.registry.Sweep(); dropped > 0 {
		logging.L().Debug("dropped idle sessions",
			zap.Int("dropped", dropped),
			zap.Int("remaining", s.registry.Len()))
	}
}
