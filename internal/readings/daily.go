package readings

import (
	"context"
	"errors"
	"time"

	"kira/internal/domain"
)

// Daily run outcomes per account.
const (
	DailyCreated = "created"
	DailyExists  = "exists"
	DailySkipped = "skipped"
	DailyError   = "error"
)

// DailyResult is the outcome for one account.
type DailyResult struct {
	AccountID string `json:"accountId"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// DailySummary collects the outcome of a daily run.
type DailySummary struct {
	Date    time.Time
	Results []DailyResult
}

// Count returns how many results have status.
func (d DailySummary) Count(status string) int {
	n := 0
	for _, r := range d.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// RunDaily generates the daily report for every premium recipient, one
// account at a time. Per-account failures are recorded in the summary; only a
// failure to list recipients or cancellation aborts the run.
func (s *Service) RunDaily(ctx context.Context, date time.Time) (DailySummary, error) {
	date = domain.Day(date)
	summary := DailySummary{Date: date}

	recipients, err := s.accounts.ListDailyRecipients(ctx)
	if err != nil {
		return summary, storeErr(err)
	}
	log := s.logger.With().Str("date", domain.FormatDay(date)).Logger()
	log.Info().Int("recipients", len(recipients)).Msg("readings: daily run started")

	for i, a := range recipients {
		if i > 0 && s.dailyPause > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(s.dailyPause):
			}
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res, err := s.GenerateDailyReport(ctx, a.ID, date, "")
		r := DailyResult{AccountID: a.ID}
		switch {
		case err == nil && res.Created:
			r.Status = DailyCreated
		case err == nil:
			r.Status = DailyExists
		case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrPremiumRequired):
			r.Status = DailySkipped
			r.Error = err.Error()
		default:
			r.Status = DailyError
			r.Error = err.Error()
			log.Error().Err(err).Str("account_id", a.ID).Msg("readings: daily report failed")
		}
		summary.Results = append(summary.Results, r)
	}

	log.Info().
		Int("created", summary.Count(DailyCreated)).
		Int("exists", summary.Count(DailyExists)).
		Int("skipped", summary.Count(DailySkipped)).
		Int("errors", summary.Count(DailyError)).
		Msg("readings: daily run finished")
	return summary, nil
}
