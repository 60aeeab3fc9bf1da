package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/arcade-reservation-board/internal/board"
	"github.com/iliyamo/arcade-reservation-board/internal/lock"
	"github.com/iliyamo/arcade-reservation-board/internal/queue"
	"github.com/iliyamo/arcade-reservation-board/internal/repository"
)

// resetLockTTL bounds how long one instance may hold the reset lock.
const resetLockTTL = time.Minute

// Lifecycle runs the board's time-driven housekeeping: the once-a-day wipe
// and the purge of elapsed reservations.
type Lifecycle struct {
	board        *BoardService
	reservations ReservationStore
	resets       ResetLogStore
	locker       lock.Locker
	log          *zap.Logger
}

// NewLifecycle wires a Lifecycle.  A nil locker skips cross-instance locking.
func NewLifecycle(b *BoardService, reservations ReservationStore, resets ResetLogStore, locker lock.Locker, log *zap.Logger) *Lifecycle {
	if locker == nil {
		locker = lock.NewRedisLocker(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{board: b, reservations: reservations, resets: resets, locker: locker, log: log}
}

// DailyReset wipes every reservation the first time it runs on a new
// board date and records the date.  It reports whether this call did the
// reset.
func (l *Lifecycle) DailyReset(ctx context.Context, now time.Time) (bool, error) {
	date := board.DateKey(now.In(l.board.Location()))

	done, err := l.resets.Exists(ctx, date)
	if err != nil {
		return false, fmt.Errorf("check reset log: %w", err)
	}
	if done {
		return false, nil
	}

	release, err := l.locker.Acquire(ctx, "board:reset:"+date, resetLockTTL)
	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		return false, nil
	case err != nil:
		// The reset log insert still serializes instances.
		l.log.Warn("reset lock unavailable", zap.Error(err))
	default:
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				l.log.Warn("reset lock release failed", zap.Error(err))
			}
		}()
		if done, err = l.resets.Exists(ctx, date); err != nil {
			return false, fmt.Errorf("check reset log: %w", err)
		} else if done {
			return false, nil
		}
	}

	n, err := l.reservations.DeleteAll(ctx)
	if err != nil {
		return false, fmt.Errorf("delete reservations: %w", err)
	}
	if err := l.resets.Insert(ctx, date); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("record reset %s: %w", date, err)
	}
	if err := l.board.RefreshReservations(ctx); err != nil {
		l.log.Warn("reload after reset failed", zap.Error(err))
	}

	ev := queue.NewEvent(queue.TypeBoardReset, now)
	ev.Count = n
	l.board.emit(ev)
	l.log.Info("board reset", zap.String("date", date), zap.Int64("deleted", n))
	return true, nil
}

// PurgeExpired deletes every reservation whose slot has fully elapsed at
// now and returns how many were removed.
func (l *Lifecycle) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	now = now.In(l.board.Location())
	all, err := l.reservations.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list reservations: %w", err)
	}
	var ids []uint64
	for _, res := range all {
		if board.IsExpired(res.EffectiveTime, now) {
			ids = append(ids, res.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := l.reservations.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete expired reservations: %w", err)
	}
	if err := l.board.RefreshReservations(ctx); err != nil {
		l.log.Warn("reload after purge failed", zap.Error(err))
	}

	ev := queue.NewEvent(queue.TypeReservationsPurged, now)
	ev.Count = n
	l.board.emit(ev)
	l.log.Info("expired reservations purged", zap.Int64("deleted", n))
	return n, nil
}
