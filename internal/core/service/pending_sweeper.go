package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// PendingSweeper expires bookings whose unpaid hold outlived holdTTL, then
// reconciles the advisory counter of items whose bookings ended since the
// previous sweep.
type PendingSweeper struct {
	lifecycle *LifecycleService
	holdTTL   time.Duration
	interval  time.Duration
	batchSize int
	lookback  time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewPendingSweeper(lifecycle *LifecycleService, holdTTL, interval time.Duration) *PendingSweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &PendingSweeper{
		lifecycle: lifecycle,
		holdTTL:   holdTTL,
		interval:  interval,
		batchSize: 200,
		lookback:  24 * time.Hour,
		now:       time.Now,
	}
}

func (s *PendingSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep returns how many pending bookings it expired.
func (s *PendingSweeper) Sweep(ctx context.Context) int {
	now := s.now().UTC()
	n, err := s.lifecycle.ExpirePending(ctx, now.Add(-s.holdTTL), s.batchSize)
	if err != nil {
		log.WithError(err).Error("pending sweep failed")
	}
	if n > 0 {
		log.WithField("expired", n).Info("expired pending bookings")
	}

	s.reconcile(ctx, now)
	return n
}

func (s *PendingSweeper) reconcile(ctx context.Context, now time.Time) {
	after := s.lastSweep
	if after.IsZero() {
		after = now.Add(-s.lookback)
	}
	reconciled, err := s.lifecycle.ReconcileEnded(ctx, after, now)
	if err != nil {
		log.WithError(err).Error("advisory reconcile failed")
		return
	}
	s.lastSweep = now
	if reconciled > 0 {
		log.WithField("items", reconciled).Debug("reconciled advisory counters")
	}
}
