package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"kira/internal/app"
	"kira/internal/infra"
	"kira/internal/readings"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.NewContainer(ctx, cfg, logger, true)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to build application")
	}
	defer container.Close()

	w := &dailyWorker{
		service: container.Service,
		logger:  logger,
		hour:    cfg.DailyRunHour,
		now:     time.Now,
	}
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

type dailyRunner interface {
	RunDaily(ctx context.Context, date time.Time) (readings.DailySummary, error)
}

// dailyWorker runs the daily report batch once per UTC day at hour.
type dailyWorker struct {
	service dailyRunner
	logger  zerolog.Logger
	hour    int
	now     func() time.Time
}

func (w *dailyWorker) Run(ctx context.Context) error {
	w.logger.Info().Int("hour_utc", w.hour).Msg("worker: started")
	for {
		next := nextRun(w.now(), w.hour)
		w.logger.Info().Time("next_run", next).Msg("worker: waiting")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := w.runOnce(ctx, next); err != nil {
			return err
		}
	}
}

// runOnce executes one batch. Cancellation is returned; any other failure is
// logged and the worker waits for the next day.
func (w *dailyWorker) runOnce(ctx context.Context, date time.Time) error {
	start := time.Now()
	summary, err := w.service.RunDaily(ctx, date)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		w.logger.Error().Err(err).Msg("worker: daily run failed")
		return nil
	}
	w.logger.Info().
		Int("created", summary.Count(readings.DailyCreated)).
		Int("exists", summary.Count(readings.DailyExists)).
		Int("skipped", summary.Count(readings.DailySkipped)).
		Int("errors", summary.Count(readings.DailyError)).
		Dur("elapsed", time.Since(start)).
		Msg("worker: daily run finished")
	return nil
}

// nextRun returns the first instant strictly after now at hour:00 UTC.
func nextRun(now time.Time, hour int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
