package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Ticker is one scheduling pass. *Service implements it; tests substitute
// something smaller.
type Ticker interface {
	Tick(ctx context.Context, now time.Time)
}

// Scheduler drives a Ticker at a fixed cadence. Reminder matching is
// exact-minute, so the cadence must stay at one minute or below or matches
// get skipped.
type Scheduler struct {
	mu       sync.RWMutex
	svc      Ticker
	interval time.Duration
	log      *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(svc Ticker, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{svc: svc, interval: interval, log: log}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.log.Info("reminder scheduler started", zap.Duration("interval", s.interval))

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info("reminder scheduler stopping")
				return
			case <-ticker.C:
				s.svc.Tick(ctx, time.Now().UTC())
			}
		}
	}()
}

// Stop cancels the loop and waits for any in-flight pass to finish. Safe to
// call without a prior Start.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
