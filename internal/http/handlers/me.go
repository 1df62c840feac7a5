package handlers

import (
	"net/http"
	"strconv"
	"time"

	"kira/internal/domain"
)

type settingsRequest struct {
	DailyReportsEnabled *bool `json:"dailyReportsEnabled"`
}

type trialStatusResponse struct {
	DaysLeft          int       `json:"daysLeft"`
	ReportsUsed       int       `json:"reportsUsed"`
	IsTrialActive     bool      `json:"isTrialActive"`
	IsPremium         bool      `json:"isPremium"`
	CanGenerateReport bool      `json:"canGenerateReport"`
	TrialEndsAt       time.Time `json:"trialEndsAt"`
}

type insightRequest struct {
	TargetDate string `json:"targetDate"`
}

type generatedArtifactResponse struct {
	artifactDTO
	Created bool `json:"created"`
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	acc, err := a.Service.Profile(r.Context(), a.currentAccountID(r))
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUserDTO(acc))
}

func (a *App) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.DailyReportsEnabled == nil {
		a.error(w, http.StatusBadRequest, "invalid_input", "dailyReportsEnabled is required")
		return
	}
	id := a.currentAccountID(r)
	if err := a.Service.SetDailyReports(r.Context(), id, *req.DailyReportsEnabled); err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"dailyReportsEnabled": *req.DailyReportsEnabled})
}

func (a *App) TrialStatus(w http.ResponseWriter, r *http.Request) {
	st, err := a.Service.TrialStatus(r.Context(), a.currentAccountID(r))
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, trialStatusResponse{
		DaysLeft:          st.DaysLeft,
		ReportsUsed:       st.ReportsUsed,
		IsTrialActive:     st.IsTrialActive,
		IsPremium:         st.IsPremium,
		CanGenerateReport: st.CanGenerate,
		TrialEndsAt:       st.TrialEnd.UTC(),
	})
}

func (a *App) ListReports(w http.ResponseWriter, r *http.Request) {
	a.listArtifacts(w, r, domain.KindReport)
}

func (a *App) ListInsights(w http.ResponseWriter, r *http.Request) {
	a.listArtifacts(w, r, domain.KindInsight)
}

func (a *App) listArtifacts(w http.ResponseWriter, r *http.Request, kind domain.ArtifactKind) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "invalid_input", "limit must be a number")
			return
		}
		limit = n
	}
	list, err := a.Service.ListArtifacts(r.Context(), a.currentAccountID(r), kind, limit)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	items := make([]artifactDTO, 0, len(list))
	for _, art := range list {
		items = append(items, toArtifactDTO(art))
	}
	a.json(w, http.StatusOK, items)
}

// GenerateTodayReport produces the premium daily report for today (UTC).
func (a *App) GenerateTodayReport(w http.ResponseWriter, r *http.Request) {
	res, err := a.Service.GenerateDailyReport(r.Context(), a.currentAccountID(r), a.now(), a.locale(r))
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	a.json(w, status, generatedArtifactResponse{artifactDTO: toArtifactDTO(res.Artifact), Created: res.Created})
}

func (a *App) GenerateInsight(w http.ResponseWriter, r *http.Request) {
	var req insightRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	res, err := a.Service.GenerateDailyInsight(r.Context(), a.currentAccountID(r), req.TargetDate, a.locale(r))
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	a.json(w, status, generatedArtifactResponse{artifactDTO: toArtifactDTO(res.Artifact), Created: res.Created})
}
