package handlers

import (
	"errors"
	"net/http"

	"kira/internal/domain"
	"kira/internal/middleware"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	// Report carries generated text that could not be stored.
	Report string `json:"report,omitempty"`
}

var errorTable = []struct {
	target  error
	status  int
	code    string
	message string
}{
	{domain.ErrInvalidIdentifier, http.StatusBadRequest, "invalid_identifier", "Invalid user ID format"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input", "Invalid input"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"},
	{domain.ErrAccountNotFound, http.StatusNotFound, "account_not_found", "User not found"},
	{domain.ErrTrialExpired, http.StatusForbidden, "trial_expired", "Trial expired. Please upgrade to premium."},
	{domain.ErrPremiumRequired, http.StatusForbidden, "premium_required", "Premium subscription required"},
	{domain.ErrAccountExists, http.StatusConflict, "account_exists", "User already exists"},
	{domain.ErrPersistFailed, http.StatusInternalServerError, "persist_failed", "Report generated but could not be saved"},
	{domain.ErrGenerationFailed, http.StatusBadGateway, "generation_failed", "Failed to generate content"},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable", "Database connection failed"},
}

// serviceError converts an error from the readings service into a response.
// Infrastructure failures are logged here, once.
func (a *App) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{Error: "internal", Message: "Internal server error"}
	status := http.StatusInternalServerError
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			status, body.Error, body.Message = e.status, e.code, e.message
			break
		}
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Message = verr.Message
	}
	var perr *domain.PersistError
	if errors.As(err, &perr) {
		body.Report = perr.Content
	}

	if status >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Int("status", status).
			Msg("request failed")
	}
	a.json(w, status, body)
}
