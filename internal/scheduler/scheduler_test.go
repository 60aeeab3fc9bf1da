package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingBoard struct {
	reloads, disabled, ticks atomic.Int32
	fail                     bool
}

func (b *countingBoard) RefreshReservations(context.Context) error {
	b.reloads.Add(1)
	if b.fail {
		return errors.New("db down")
	}
	return nil
}

func (b *countingBoard) RefreshDisabled(context.Context) error {
	b.disabled.Add(1)
	return nil
}

func (b *countingBoard) Tick(time.Time) { b.ticks.Add(1) }

type countingHousekeeper struct {
	resets, purges atomic.Int32
}

func (h *countingHousekeeper) DailyReset(context.Context, time.Time) (bool, error) {
	h.resets.Add(1)
	return false, nil
}

func (h *countingHousekeeper) PurgeExpired(context.Context, time.Time) (int64, error) {
	h.purges.Add(1)
	return 0, errors.New("db down")
}

func TestPrimeRunsStartupSequence(t *testing.T) {
	b, h := &countingBoard{}, &countingHousekeeper{}
	s := New(b, h, Intervals{}, zap.NewNop())
	s.Prime(context.Background())
	if h.resets.Load() != 1 || b.reloads.Load() != 1 || b.disabled.Load() != 1 || b.ticks.Load() != 1 {
		t.Fatalf("resets=%d reloads=%d disabled=%d ticks=%d",
			h.resets.Load(), b.reloads.Load(), b.disabled.Load(), b.ticks.Load())
	}
}

func TestLoopsRunAndStopTogether(t *testing.T) {
	b, h := &countingBoard{fail: true}, &countingHousekeeper{}
	s := New(b, h, Intervals{
		Reload:         5 * time.Millisecond,
		Purge:          5 * time.Millisecond,
		DisabledReload: 5 * time.Millisecond,
		Clock:          5 * time.Millisecond,
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.reloads.Load() >= 2 && h.purges.Load() >= 2 && b.disabled.Load() >= 2 && b.ticks.Load() >= 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	done := make(chan struct{})
	go func() { s.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loops did not stop after cancel")
	}

	if b.reloads.Load() < 2 || h.resets.Load() < 2 || h.purges.Load() < 2 || b.disabled.Load() < 2 || b.ticks.Load() < 2 {
		t.Fatalf("failing runs should keep being retried: reloads=%d resets=%d purges=%d disabled=%d ticks=%d",
			b.reloads.Load(), h.resets.Load(), h.purges.Load(), b.disabled.Load(), b.ticks.Load())
	}
}

func TestZeroIntervalDisablesLoop(t *testing.T) {
	b, h := &countingBoard{}, &countingHousekeeper{}
	s := New(b, h, Intervals{Clock: 5 * time.Millisecond}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	cancel()
	s.Wait()
	if b.reloads.Load() != 0 || h.purges.Load() != 0 {
		t.Fatal("loops with zero interval must not run")
	}
}
