package handlers

import (
	"net/http"

	"kira/internal/domain"
	"kira/internal/readings"
)

type dailyRunResponse struct {
	Message   string                 `json:"message"`
	Date      string                 `json:"date"`
	Processed int                    `json:"processed"`
	Results   []readings.DailyResult `json:"results"`
}

// CronDailyReports runs the daily report batch for today. The route is
// guarded by the cron secret middleware.
func (a *App) CronDailyReports(w http.ResponseWriter, r *http.Request) {
	summary, err := a.Service.RunDaily(r.Context(), a.now())
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	results := summary.Results
	if results == nil {
		results = []readings.DailyResult{}
	}
	a.json(w, http.StatusOK, dailyRunResponse{
		Message:   "Daily reports generation completed",
		Date:      domain.FormatDay(summary.Date),
		Processed: len(results),
		Results:   results,
	})
}
