// Package services – Sweeper
//
// This file implements the periodic expiry sweep. Lazy expiry already hides
// stale vendors from every read; the sweep keeps the stored state tidy so
// that vendors nobody looks at are closed too.
//
// One cycle selects the open vendors whose expiry instant has passed and
// closes them with a single bulk update inside one transaction. The update
// restates the stale predicate, so a keep-alive that lands between the select
// and the update wins and the vendor stays open.
package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-vendor-backend/internal/repo"
)

// DefaultSweepInterval is the period between sweep cycles.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper closes expired vendors on a fixed interval.
type Sweeper struct {
	DB       *gorm.DB
	Interval time.Duration
	// BatchSize caps vendors closed per cycle; <= 0 means no cap.
	BatchSize int
	// PurgeIdempotency also removes expired idempotency records each cycle.
	PurgeIdempotency bool
	Now              func() time.Time

	running atomic.Bool
}

// NewSweeper returns a Sweeper with the given interval (DefaultSweepInterval
// when interval <= 0).
func NewSweeper(db *gorm.DB, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{DB: db, Interval: interval, PurgeIdempotency: true, Now: utcNow}
}

// SweepOnce runs one cycle and returns how many vendors it closed. Errors are
// logged and counted; the transaction is rolled back and nothing is closed.
func (s *Sweeper) SweepOnce(ctx context.Context) (closed int64, err error) {
	ctx, span := otel.Tracer("services/Sweeper").Start(ctx, "SweepOnce")
	defer span.End()

	now := s.now()
	var selected int
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := repo.ListExpiredIDs(ctx, tx, now, s.BatchSize)
		if err != nil {
			return err
		}
		selected = len(ids)
		closed, err = repo.ExpireByIDs(ctx, tx, ids, now)
		return err
	})
	if err != nil {
		sweepRunsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		log.Error().Err(err).Msg("expiry sweep failed; will retry next cycle")
		return 0, persistence("sweep", err)
	}

	sweepRunsTotal.WithLabelValues("ok").Inc()
	sweepClosedTotal.Add(float64(closed))
	span.SetAttributes(attribute.Int("sweep.selected", selected), attribute.Int64("sweep.closed", closed))
	if closed > 0 {
		log.Info().Int64("closed", closed).Int("selected", selected).Msg("expiry sweep closed vendors")
	} else {
		log.Debug().Msg("expiry sweep: nothing to close")
	}

	if s.PurgeIdempotency {
		if n, err := repo.PurgeExpiredIdempotency(ctx, s.DB, now); err != nil {
			log.Warn().Err(err).Msg("idempotency purge failed")
		} else if n > 0 {
			log.Debug().Int64("purged", n).Msg("expired idempotency records removed")
		}
	}
	return closed, nil
}

// Run sweeps immediately and then every Interval until ctx is cancelled, at
// which point it returns nil. A second concurrent Run on the same Sweeper
// returns ErrSweeperRunning.
func (s *Sweeper) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrSweeperRunning
	}
	defer s.running.Store(false)

	interval := s.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	log.Info().Dur("interval", interval).Msg("expiry sweeper started")

	s.safeSweep(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("expiry sweeper stopped")
			return nil
		case <-t.C:
			s.safeSweep(ctx)
		}
	}
}

// Running reports whether Run is active.
func (s *Sweeper) Running() bool { return s.running.Load() }

func (s *Sweeper) safeSweep(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			sweepRunsTotal.WithLabelValues("error").Inc()
			log.Error().Str("panic", fmt.Sprint(rec)).Msg("expiry sweep panicked")
		}
	}()
	_, _ = s.SweepOnce(ctx)
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utcNow()
}
