package handlers

import (
	"net/http"
	"time"

	"kira/internal/domain"
	"kira/internal/readings"
)

type reportRequest struct {
	birthDTO
	ReportDate string `json:"reportDate"`
}

type reportResponse struct {
	Report     string `json:"report"`
	ReportDate string `json:"reportDate,omitempty"`
	Cached     bool   `json:"cached"`
}

type compatibilityRequest struct {
	User    birthDTO `json:"user"`
	Partner birthDTO `json:"partner"`
}

type compatibilityResponse struct {
	Analysis  string    `json:"analysis"`
	Timestamp time.Time `json:"timestamp"`
}

// GenerateReport serves both anonymous and signed-in callers; only the latter
// get the report stored and counted.
func (a *App) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	res, err := a.Service.GenerateReport(r.Context(), readings.ReportRequest{
		AccountID: a.currentAccountID(r),
		Birth:     req.birth(),
		Date:      req.ReportDate,
		Locale:    a.locale(r),
	})
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, reportResponse{
		Report:     res.Content,
		ReportDate: domain.FormatDay(res.Date),
		Cached:     res.Cached,
	})
}

func (a *App) GenerateGeneralReport(w http.ResponseWriter, r *http.Request) {
	var req birthDTO
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	text, err := a.Service.GenerateGeneralReport(r.Context(), readings.ReportRequest{
		AccountID: a.currentAccountID(r),
		Birth:     req.birth(),
		Locale:    a.locale(r),
	})
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, reportResponse{Report: text})
}

func (a *App) Compatibility(w http.ResponseWriter, r *http.Request) {
	var req compatibilityRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	res, err := a.Service.Compatibility(r.Context(), req.User.birth(), req.Partner.birth(), a.locale(r))
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, compatibilityResponse{Analysis: res.Analysis, Timestamp: res.Timestamp})
}
