// Package scheduler drives the board's periodic work: reservation reload
// with the daily reset check, expiry purge, disabled set reload and the
// one-second clock tick.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Board is the part of service.BoardService the scheduler refreshes.
type Board interface {
	RefreshReservations(ctx context.Context) error
	RefreshDisabled(ctx context.Context) error
	Tick(now time.Time)
}

// Housekeeper is the part of service.Lifecycle the scheduler runs.
type Housekeeper interface {
	DailyReset(ctx context.Context, now time.Time) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Intervals are the cadences of the four loops.
type Intervals struct {
	Reload         time.Duration
	Purge          time.Duration
	DisabledReload time.Duration
	Clock          time.Duration
}

// Scheduler owns the loops.  A failed run is logged and retried on the
// next tick; nothing here stops the process.
type Scheduler struct {
	board     Board
	lifecycle Housekeeper
	every     Intervals
	log       *zap.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

func New(board Board, lifecycle Housekeeper, every Intervals, log *zap.Logger) *Scheduler {
	return &Scheduler{board: board, lifecycle: lifecycle, every: every, log: log, now: time.Now}
}

// Prime runs the startup sequence once: daily reset check, then a full
// load of reservations and disabled sets.
func (s *Scheduler) Prime(ctx context.Context) {
	s.reload(ctx)
	s.reloadDisabled(ctx)
	s.board.Tick(s.now())
}

// Start launches the loops.  They all return once ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.loop(ctx, "reload", s.every.Reload, s.reload)
	s.loop(ctx, "purge", s.every.Purge, s.purge)
	s.loop(ctx, "disabled", s.every.DisabledReload, s.reloadDisabled)
	s.loop(ctx, "clock", s.every.Clock, func(context.Context) { s.board.Tick(s.now()) })
}

// Wait blocks until every loop has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) loop(ctx context.Context, name string, every time.Duration, run func(context.Context)) {
	if every <= 0 {
		s.log.Warn("scheduler loop disabled", zap.String("loop", name))
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.log.Debug("scheduler loop stopped", zap.String("loop", name))
				return
			case <-ticker.C:
				run(ctx)
			}
		}
	}()
}

func (s *Scheduler) reload(ctx context.Context) {
	if _, err := s.lifecycle.DailyReset(ctx, s.now()); err != nil {
		s.log.Error("daily reset failed", zap.Error(err))
	}
	if err := s.board.RefreshReservations(ctx); err != nil {
		s.log.Error("reservation reload failed", zap.Error(err))
	}
}

func (s *Scheduler) purge(ctx context.Context) {
	if _, err := s.lifecycle.PurgeExpired(ctx, s.now()); err != nil {
		s.log.Error("expiry purge failed", zap.Error(err))
	}
}

func (s *Scheduler) reloadDisabled(ctx context.Context) {
	if err := s.board.RefreshDisabled(ctx); err != nil {
		s.log.Error("disabled reload failed", zap.Error(err))
	}
}
