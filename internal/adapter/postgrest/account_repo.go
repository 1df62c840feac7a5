package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"kira/internal/domain"
)

const usersTable = "users"

// maxIncrementAttempts bounds the compare-and-set loop in IncrementReportsUsed.
const maxIncrementAttempts = 5

var errContended = fmt.Errorf("%w: postgrest: report counter update kept conflicting", domain.ErrStoreUnavailable)

type userRow struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"password_hash"`
	CreatedAt           time.Time  `json:"created_at"`
	PlanType            string     `json:"plan_type"`
	SubscriptionStatus  string     `json:"subscription_status"`
	TrialStartDate      *time.Time `json:"trial_start_date"`
	IsTrialActive       bool       `json:"is_trial_active"`
	TrialReportsUsed    int        `json:"trial_reports_used"`
	BirthDate           *string    `json:"birth_date"`
	BirthTime           *string    `json:"birth_time"`
	BirthPlace          *string    `json:"birth_place"`
	PalmPhoto           *bool      `json:"palm_photo"`
	DailyReportsEnabled bool       `json:"daily_reports_enabled"`
}

func (u userRow) account() *domain.Account {
	a := &domain.Account{
		ID:                  u.ID,
		Email:               u.Email,
		PasswordHash:        u.PasswordHash,
		CreatedAt:           u.CreatedAt.UTC(),
		Plan:                domain.Plan(u.PlanType),
		SubscriptionStatus:  domain.SubscriptionStatus(u.SubscriptionStatus),
		TrialActive:         u.IsTrialActive,
		ReportsUsed:         u.TrialReportsUsed,
		DailyReportsEnabled: u.DailyReportsEnabled,
	}
	if u.TrialStartDate != nil {
		t := u.TrialStartDate.UTC()
		a.TrialStart = &t
	}
	if u.BirthDate != nil || u.BirthPlace != nil {
		b := &domain.BirthData{}
		if u.BirthDate != nil {
			b.Date = *u.BirthDate
		}
		if u.BirthTime != nil {
			b.Time = *u.BirthTime
		}
		if u.BirthPlace != nil {
			b.Place = *u.BirthPlace
		}
		if u.PalmPhoto != nil {
			b.PalmPhoto = *u.PalmPhoto
		}
		a.Birth = b
	}
	return a
}

// AccountRepository implements domain.AccountRepository over PostgREST.
type AccountRepository struct {
	c *Client
}

func NewAccountRepository(c *Client) *AccountRepository {
	return &AccountRepository{c: c}
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	return r.c.do(ctx, request{
		method: http.MethodPost,
		table:  usersTable,
		prefer: "return=minimal",
		body: map[string]any{
			"id":                    a.ID,
			"email":                 domain.NormalizeEmail(a.Email),
			"password_hash":         a.PasswordHash,
			"created_at":            a.CreatedAt.UTC(),
			"plan_type":             string(a.Plan),
			"subscription_status":   string(a.SubscriptionStatus),
			"is_trial_active":       a.TrialActive,
			"trial_reports_used":    0,
			"daily_reports_enabled": a.DailyReportsEnabled,
		},
	}, nil)
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.one(ctx, url.Values{"id": {eq(id)}})
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.one(ctx, url.Values{"email": {eq(domain.NormalizeEmail(email))}})
}

func (r *AccountRepository) StartTrial(ctx context.Context, id string, at time.Time) (bool, error) {
	rows, err := r.patch(ctx,
		url.Values{"id": {eq(id)}, "trial_start_date": {"is.null"}},
		map[string]any{"trial_start_date": at.UTC()})
	if err != nil {
		return false, err
	}
	return len(rows) == 1, nil
}

// IncrementReportsUsed performs a compare-and-set on the current value since
// plain PostgREST has no atomic increment.
func (r *AccountRepository) IncrementReportsUsed(ctx context.Context, id string) (int, error) {
	for attempt := 0; attempt < maxIncrementAttempts; attempt++ {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		next := current.ReportsUsed + 1
		rows, err := r.patch(ctx,
			url.Values{"id": {eq(id)}, "trial_reports_used": {eq(strconv.Itoa(current.ReportsUsed))}},
			map[string]any{"trial_reports_used": next})
		if err != nil {
			return 0, err
		}
		if len(rows) == 1 {
			return rows[0].TrialReportsUsed, nil
		}
	}
	return 0, errContended
}

func (r *AccountRepository) UpdateBirthData(ctx context.Context, id string, b domain.BirthData) error {
	var clock any
	if b.Time != "" {
		clock = b.Time
	}
	return r.updateOne(ctx, id, map[string]any{
		"birth_date":  b.Date,
		"birth_time":  clock,
		"birth_place": b.Place,
		"palm_photo":  b.PalmPhoto,
	})
}

func (r *AccountRepository) UpdatePlan(ctx context.Context, id string, plan domain.Plan, status domain.SubscriptionStatus) error {
	return r.updateOne(ctx, id, map[string]any{
		"plan_type":           string(plan),
		"subscription_status": string(status),
	})
}

func (r *AccountRepository) SetDailyReports(ctx context.Context, id string, enabled bool) error {
	return r.updateOne(ctx, id, map[string]any{"daily_reports_enabled": enabled})
}

func (r *AccountRepository) ListDailyRecipients(ctx context.Context) ([]domain.Account, error) {
	var rows []userRow
	err := r.c.do(ctx, request{
		method: http.MethodGet,
		table:  usersTable,
		query: url.Values{
			"select":                {"*"},
			"plan_type":             {eq(string(domain.PlanPremium))},
			"subscription_status":   {eq(string(domain.SubscriptionActive))},
			"daily_reports_enabled": {"is.true"},
			"order":                 {"created_at.asc"},
		},
	}, &rows)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.account())
	}
	return out, nil
}

func (r *AccountRepository) one(ctx context.Context, filter url.Values) (*domain.Account, error) {
	filter.Set("select", "*")
	filter.Set("limit", "1")
	var rows []userRow
	if err := r.c.do(ctx, request{method: http.MethodGet, table: usersTable, query: filter}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows[0].account(), nil
}

func (r *AccountRepository) patch(ctx context.Context, filter url.Values, body map[string]any) ([]userRow, error) {
	var rows []userRow
	err := r.c.do(ctx, request{
		method: http.MethodPatch,
		table:  usersTable,
		query:  filter,
		body:   body,
		prefer: "return=representation",
	}, &rows)
	return rows, err
}

func (r *AccountRepository) updateOne(ctx context.Context, id string, body map[string]any) error {
	rows, err := r.patch(ctx, url.Values{"id": {eq(id)}}, body)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return domain.ErrNotFound
	}
	return nil
}
