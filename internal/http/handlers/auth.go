package handlers

import (
	"net/http"
	"time"

	"kira/internal/domain"
	"kira/internal/middleware"
)

const defaultTokenTTL = 7 * 24 * time.Hour

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string  `json:"message,omitempty"`
	User    userDTO `json:"user"`
	Token   string  `json:"token"`
}

func (a *App) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	acc, err := a.Service.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.session(w, http.StatusCreated, acc, "Account created successfully! You can now sign in.")
}

func (a *App) Signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	acc, err := a.Service.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		a.serviceError(w, r, err)
		return
	}
	a.session(w, http.StatusOK, acc, "")
}

func (a *App) session(w http.ResponseWriter, status int, acc *domain.Account, message string) {
	ttl := a.JWTTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	token, err := middleware.IssueToken(a.JWTSecret, acc.ID, acc.Email, string(acc.Plan), ttl, a.now())
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign jwt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, status, sessionResponse{Message: message, User: toUserDTO(acc), Token: token})
}
