// Package sweeper enforces the item lifecycle invariants in the background:
// expired items are soft-deleted, soft-deleted items past their retention
// buffer are purged and lapsed QR tokens are removed.
package sweeper

import (
	"context"
	"time"

	"github.com/mdouchement/clipvault/internal/database"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultInterval is the cadence between two sweeps.
	DefaultInterval = 10 * time.Minute
	// DefaultRetention is how long a soft-deleted item survives before purge.
	DefaultRetention = 24 * time.Hour
)

// A Sweeper is the recurring cleanup task. Only one instance runs per
// process; each pass is set-based and idempotent so double execution across
// processes stays correct, if not efficient.
type Sweeper struct {
	db        database.Client
	logger    logrus.FieldLogger
	interval  time.Duration
	retention time.Duration
}

// New returns a new Sweeper. Zero durations fall back to the defaults.
func New(db database.Client, logger logrus.FieldLogger, interval, retention time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Sweeper{
		db:        db,
		logger:    logger,
		interval:  interval,
		retention: retention,
	}
}

// Run sweeps once immediately, then on every tick until ctx is canceled.
// It never returns an error; failures are logged and retried next tick.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.WithField("interval", s.interval).Info("sweeper started")
	s.RunOnce(time.Now().UTC())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(time.Now().UTC())
		}
	}
}

// RunOnce performs the three cleanup passes for the given time.
// A failure in one pass does not abort the others: a transient database
// error on one table should not block unrelated cleanup.
func (s *Sweeper) RunOnce(now time.Time) {
	if n, err := s.db.ExpireItems(now); err != nil {
		s.logger.WithError(err).Error("sweeper: expire pass failed")
	} else if n > 0 {
		s.logger.WithField("count", n).Info("sweeper: soft-deleted expired items")
	}

	if n, err := s.db.PurgeItems(now.Add(-s.retention)); err != nil {
		s.logger.WithError(err).Error("sweeper: purge pass failed")
	} else if n > 0 {
		s.logger.WithField("count", n).Info("sweeper: purged soft-deleted items")
	}

	if n, err := s.db.RevokeExpiredQRTokens(now); err != nil {
		s.logger.WithError(err).Error("sweeper: qr token pass failed")
	} else if n > 0 {
		s.logger.WithField("count", n).Info("sweeper: removed expired qr tokens")
	}
}
