package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewPanicsOnBadInterval(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("zero interval must panic")
		}
	}()
	New(Options{}, zerolog.Nop())
}

func TestRunSurvivesTickErrorsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks atomic.Int32
	s := New(Options{Interval: 5 * time.Millisecond, RunImmediately: true}, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(_ context.Context, _ time.Time) error {
			if ticks.Add(1) >= 3 {
				cancel()
			}
			return errors.New("tick trouble")
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run should exit with context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	if n := ticks.Load(); n < 3 {
		t.Fatalf("expected at least 3 ticks despite errors, got %d", n)
	}
}

func TestCycleAlignment(t *testing.T) {
	s := New(Options{Interval: time.Minute, AlignToCycle: true}, zerolog.Nop())
	now := time.Date(2024, 5, 1, 10, 32, 17, 0, time.UTC)

	next := s.nextTick(now)
	if want := time.Date(2024, 5, 1, 10, 33, 0, 0, time.UTC); !next.Equal(want) {
		t.Fatalf("next tick = %v, want %v", next, want)
	}
	if got := s.cycleStart(next); !got.Equal(next) {
		t.Fatalf("aligned cycle start = %v, want %v", got, next)
	}

	unaligned := New(Options{Interval: time.Minute}, zerolog.Nop())
	if got := unaligned.nextTick(now); !got.Equal(now.Add(time.Minute)) {
		t.Fatalf("unaligned next tick = %v", got)
	}
}
