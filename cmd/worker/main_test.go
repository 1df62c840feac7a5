package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"kira/internal/readings"
)

func TestNextRun(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before hour", time.Date(2025, 3, 10, 4, 30, 0, 0, time.UTC), time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)},
		{"at hour", time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC), time.Date(2025, 3, 11, 6, 0, 0, 0, time.UTC)},
		{"after hour", time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC), time.Date(2025, 3, 11, 6, 0, 0, 0, time.UTC)},
		{"month end", time.Date(2025, 2, 28, 7, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)},
		{"non utc input before hour", time.Date(2025, 3, 10, 8, 0, 0, 0, time.FixedZone("WIB", 7*3600)), time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)},
		{"non utc input after hour", time.Date(2025, 3, 10, 14, 0, 0, 0, time.FixedZone("WIB", 7*3600)), time.Date(2025, 3, 11, 6, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextRun(tc.now, 6); !got.Equal(tc.want) {
				t.Fatalf("nextRun() = %v, want %v", got, tc.want)
			}
		})
	}
}

type stubRunner struct {
	calls int
	date  time.Time
	err   error
}

func (s *stubRunner) RunDaily(_ context.Context, date time.Time) (readings.DailySummary, error) {
	s.calls++
	s.date = date
	return readings.DailySummary{Date: date}, s.err
}

func TestRunOnceSwallowsStoreErrors(t *testing.T) {
	runner := &stubRunner{err: errors.New("store down")}
	w := &dailyWorker{service: runner, logger: zerolog.Nop()}
	day := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	if err := w.runOnce(context.Background(), day); err != nil {
		t.Fatalf("runOnce error: %v", err)
	}
	if runner.calls != 1 || !runner.date.Equal(day) {
		t.Fatalf("unexpected call: %d %v", runner.calls, runner.date)
	}
}

func TestRunOnceReturnsCancellation(t *testing.T) {
	w := &dailyWorker{service: &stubRunner{err: context.Canceled}, logger: zerolog.Nop()}
	if err := w.runOnce(context.Background(), time.Now()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &stubRunner{}
	w := &dailyWorker{service: runner, logger: zerolog.Nop(), hour: 6, now: time.Now}
	if err := w.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if runner.calls != 0 {
		t.Fatalf("expected no runs, got %d", runner.calls)
	}
}
