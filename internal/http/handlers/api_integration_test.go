package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kira/internal/adapter/sqlite"
	"kira/internal/domain"
	"kira/internal/generation"
	"kira/internal/http/handlers"
	"kira/internal/http/httpapi"
	"kira/internal/infra"
	"kira/internal/migrations"
	"kira/internal/providers/textgen"
	"kira/internal/readings"
)

type countingGenerator struct {
	mu    sync.Mutex
	calls int
	textgen.Synthetic
}

func (c *countingGenerator) Generate(ctx context.Context, req textgen.Request) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.Synthetic.Generate(ctx, req)
}

func (c *countingGenerator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type apiEnv struct {
	router   http.Handler
	db       *sql.DB
	accounts *sqlite.AccountRepository
	gen      *countingGenerator
	now      time.Time
}

const cronSecret = "cron-secret"

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	ctx := context.Background()
	db, err := infra.OpenSQLite(ctx, filepath.Join(t.TempDir(), "kira.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.RunSQLite(ctx, db))

	env := &apiEnv{
		db:       db,
		accounts: sqlite.NewAccountRepository(db),
		gen:      &countingGenerator{},
		now:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	svc := readings.NewService(readings.Deps{
		Accounts:   env.accounts,
		Artifacts:  sqlite.NewArtifactRepository(db),
		Generator:  generation.NewGateway(env.gen, zerolog.Nop()),
		Logger:     zerolog.Nop(),
		DailyPause: -1,
		Now:        func() time.Time { return env.now },
	})
	cfg := &infra.Config{
		AppEnv:          "test",
		JWTSecret:       "test-secret",
		CronSecret:      cronSecret,
		DefaultLocale:   "en",
		RateLimitPerMin: 1000,
	}
	env.router = httpapi.NewRouter(&handlers.App{
		Config:    cfg,
		Logger:    zerolog.Nop(),
		Service:   svc,
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    time.Hour,
	})
	return env
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID               string     `json:"id"`
		Email            string     `json:"email"`
		PlanType         string     `json:"planType"`
		TrialStartDate   *time.Time `json:"trialStartDate"`
		TrialReportsUsed int        `json:"trialReportsUsed"`
	} `json:"user"`
}

func (e *apiEnv) signup(t *testing.T, email string) session {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var s session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	require.NotEmpty(t, s.Token)
	return s
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var lisbon = map[string]any{"birthDate": "1990-04-21", "birthTime": "06:45", "birthPlace": "Lisbon, Portugal"}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("select count(*) from "+table).Scan(&n))
	return n
}

func TestSignupAndSignin(t *testing.T) {
	env := newAPIEnv(t)

	s := env.signup(t, "Ada@Example.com")
	assert.Equal(t, "ada@example.com", s.User.Email)
	assert.Equal(t, "basic", s.User.PlanType)
	assert.Nil(t, s.User.TrialStartDate)

	dup := env.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{"email": "ada@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.Equal(t, "account_exists", decodeBody(t, dup)["error"])

	short := env.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{"email": "bob@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, short.Code)
	assert.Equal(t, "Password must be at least 6 characters", decodeBody(t, short)["message"])

	ok := env.do(t, http.MethodPost, "/v1/auth/signin", "", map[string]string{"email": "ADA@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, ok.Code)

	bad := env.do(t, http.MethodPost, "/v1/auth/signin", "", map[string]string{"email": "ada@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, "invalid_credentials", decodeBody(t, bad)["error"])
}

func TestReportFlowStartsTrialAndCaches(t *testing.T) {
	env := newAPIEnv(t)
	s := env.signup(t, "ada@example.com")

	status := env.do(t, http.MethodGet, "/v1/me/trial-status", s.Token, nil)
	require.Equal(t, http.StatusOK, status.Code)
	body := decodeBody(t, status)
	assert.EqualValues(t, 3, body["daysLeft"])
	assert.Equal(t, true, body["canGenerateReport"])

	first := env.do(t, http.MethodPost, "/v1/reports", s.Token, lisbon)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	firstBody := decodeBody(t, first)
	assert.Equal(t, false, firstBody["cached"])
	assert.Equal(t, "2025-03-10", firstBody["reportDate"])

	second := env.do(t, http.MethodPost, "/v1/reports", s.Token, lisbon)
	require.Equal(t, http.StatusOK, second.Code)
	secondBody := decodeBody(t, second)
	assert.Equal(t, true, secondBody["cached"])
	assert.Equal(t, firstBody["report"], secondBody["report"])
	assert.Equal(t, 1, env.gen.count())

	me := env.do(t, http.MethodGet, "/v1/me", s.Token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	meBody := decodeBody(t, me)
	assert.EqualValues(t, 1, meBody["trialReportsUsed"])
	assert.NotNil(t, meBody["trialStartDate"])

	list := env.do(t, http.MethodGet, "/v1/me/reports?limit=5", s.Token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "2025-03-10", items[0]["date"])
	assert.Equal(t, true, items[0]["isTrialReport"])
}

func TestAnonymousReportIsNotStored(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/reports", "", lisbon)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["report"])
	assert.Zero(t, countRows(t, env.db, "daily_reports"))

	general := env.do(t, http.MethodPost, "/v1/reports/general", "", lisbon)
	require.Equal(t, http.StatusOK, general.Code)
	assert.Equal(t, 2, env.gen.count())
}

func TestReportValidationAndExpiry(t *testing.T) {
	env := newAPIEnv(t)
	s := env.signup(t, "ada@example.com")

	missing := env.do(t, http.MethodPost, "/v1/reports", s.Token, map[string]any{"birthDate": "1990-04-21"})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, "Birth date and place are required", decodeBody(t, missing)["message"])

	_, err := env.accounts.StartTrial(context.Background(), s.User.ID, env.now.Add(-96*time.Hour))
	require.NoError(t, err)
	expired := env.do(t, http.MethodPost, "/v1/reports", s.Token, lisbon)
	assert.Equal(t, http.StatusForbidden, expired.Code)
	assert.Equal(t, "trial_expired", decodeBody(t, expired)["error"])
	assert.Zero(t, env.gen.count())
}

func TestAuthRequired(t *testing.T) {
	env := newAPIEnv(t)
	for _, path := range []string{"/v1/me", "/v1/me/trial-status", "/v1/me/reports"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := env.do(t, http.MethodPost, "/v1/reports", "garbage", lisbon)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTodayReportRequiresPremium(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()
	s := env.signup(t, "ada@example.com")

	rec := env.do(t, http.MethodPost, "/v1/me/reports/today", s.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "premium_required", decodeBody(t, rec)["error"])

	require.NoError(t, env.accounts.UpdatePlan(ctx, s.User.ID, domain.PlanPremium, domain.SubscriptionActive))
	rec = env.do(t, http.MethodPost, "/v1/me/reports/today", s.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Birth data required. Please complete your profile first.", decodeBody(t, rec)["message"])

	require.NoError(t, env.accounts.UpdateBirthData(ctx, s.User.ID, domain.BirthData{Date: "1990-04-21", Place: "Lisbon"}))
	rec = env.do(t, http.MethodPost, "/v1/me/reports/today", s.Token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeBody(t, rec)["created"])

	rec = env.do(t, http.MethodPost, "/v1/me/reports/today", s.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["created"])
	assert.Equal(t, 1, env.gen.count())
}

func TestDailyInsight(t *testing.T) {
	env := newAPIEnv(t)
	s := env.signup(t, "ada@example.com")

	rec := env.do(t, http.MethodPost, "/v1/me/insights", s.Token, map[string]string{"targetDate": "2025-03-10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	general := env.do(t, http.MethodPost, "/v1/reports/general", s.Token, lisbon)
	require.Equal(t, http.StatusOK, general.Code)

	rec = env.do(t, http.MethodPost, "/v1/me/insights", s.Token, map[string]string{"targetDate": "2025-03-10"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "insight", body["kind"])
	assert.Equal(t, "2025-03-10", body["date"])

	list := env.do(t, http.MethodGet, "/v1/me/insights", s.Token, nil)
	require.Equal(t, http.StatusOK, list.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &items))
	assert.Len(t, items, 1)
}

func TestSettings(t *testing.T) {
	env := newAPIEnv(t)
	s := env.signup(t, "ada@example.com")

	rec := env.do(t, http.MethodPatch, "/v1/me/settings", s.Token, map[string]bool{"dailyReportsEnabled": false})
	require.Equal(t, http.StatusOK, rec.Code)
	a, err := env.accounts.GetByID(context.Background(), s.User.ID)
	require.NoError(t, err)
	assert.False(t, a.DailyReportsEnabled)

	rec = env.do(t, http.MethodPatch, "/v1/me/settings", s.Token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCronDailyReports(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()
	s := env.signup(t, "ada@example.com")
	require.NoError(t, env.accounts.UpdatePlan(ctx, s.User.ID, domain.PlanPremium, domain.SubscriptionActive))
	require.NoError(t, env.accounts.UpdateBirthData(ctx, s.User.ID, domain.BirthData{Date: "1990-04-21", Place: "Lisbon"}))

	rec := env.do(t, http.MethodPost, "/v1/cron/daily-reports", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = env.do(t, http.MethodPost, "/v1/cron/daily-reports", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/cron/daily-reports", cronSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["processed"])
	results := body["results"].([]any)
	assert.Equal(t, "created", results[0].(map[string]any)["status"])

	rec = env.do(t, http.MethodPost, "/v1/cron/daily-reports", cronSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results = decodeBody(t, rec)["results"].([]any)
	assert.Equal(t, "exists", results[0].(map[string]any)["status"])
}

func TestCompatibilityEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	partner := map[string]any{"birthDate": "1992-11-02", "birthPlace": "Porto"}

	rec := env.do(t, http.MethodPost, "/v1/compatibility", "", map[string]any{"user": lisbon, "partner": partner})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["analysis"], "Synthetic reading")
	assert.NotEmpty(t, body["timestamp"])

	rec = env.do(t, http.MethodPost, "/v1/compatibility", "", map[string]any{"user": lisbon, "partner": map[string]any{"birthDate": "1992-11-02"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndOpenAPI(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = env.do(t, http.MethodGet, "/v1/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Contains(t, decodeBody(t, rec)["paths"], "/v1/reports")

	req := httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	env.router.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)
}
