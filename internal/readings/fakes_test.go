package readings

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"kira/internal/domain"
)

type fakeAccounts struct {
	mu         sync.Mutex
	byID       map[string]*domain.Account
	startCalls int
	getErr     error
	incErr     error
	listErr    error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[string]*domain.Account{}}
}

func (f *fakeAccounts) put(a *domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.byID[a.ID] = &cp
}

func (f *fakeAccounts) get(id string) domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.byID[id]
}

func (f *fakeAccounts) Create(_ context.Context, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == a.Email {
			return domain.ErrDuplicate
		}
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAccounts) StartTrial(_ context.Context, id string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	a, ok := f.byID[id]
	if !ok || a.TrialStart != nil {
		return false, nil
	}
	t := at
	a.TrialStart = &t
	return true, nil
}

func (f *fakeAccounts) IncrementReportsUsed(_ context.Context, id string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incErr != nil {
		return 0, f.incErr
	}
	a, ok := f.byID[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	a.ReportsUsed++
	return a.ReportsUsed, nil
}

func (f *fakeAccounts) UpdateBirthData(_ context.Context, id string, b domain.BirthData) error {
	return f.update(id, func(a *domain.Account) { a.Birth = &b })
}

func (f *fakeAccounts) UpdatePlan(_ context.Context, id string, plan domain.Plan, status domain.SubscriptionStatus) error {
	return f.update(id, func(a *domain.Account) { a.Plan, a.SubscriptionStatus = plan, status })
}

func (f *fakeAccounts) SetDailyReports(_ context.Context, id string, enabled bool) error {
	return f.update(id, func(a *domain.Account) { a.DailyReportsEnabled = enabled })
}

func (f *fakeAccounts) ListDailyRecipients(context.Context) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Account
	for _, a := range f.byID {
		if a.Plan == domain.PlanPremium && a.SubscriptionStatus == domain.SubscriptionActive && a.DailyReportsEnabled {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeAccounts) update(id string, fn func(*domain.Account)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(a)
	return nil
}

type fakeArtifacts struct {
	mu      sync.Mutex
	rows    map[string]domain.Artifact
	inserts int
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{rows: map[string]domain.Artifact{}}
}

func artifactKey(accountID string, kind domain.ArtifactKind, date time.Time) string {
	return accountID + "|" + string(kind) + "|" + domain.FormatDay(date)
}

func (f *fakeArtifacts) Find(_ context.Context, accountID string, kind domain.ArtifactKind, date time.Time) (*domain.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[artifactKey(accountID, kind, date)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (f *fakeArtifacts) Insert(_ context.Context, a *domain.Artifact) (*domain.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := artifactKey(a.AccountID, a.Kind, a.EffectiveDate)
	if _, ok := f.rows[key]; ok {
		return nil, domain.ErrDuplicate
	}
	f.inserts++
	f.rows[key] = *a
	cp := *a
	return &cp, nil
}

func (f *fakeArtifacts) List(_ context.Context, accountID string, kind domain.ArtifactKind, limit int) ([]domain.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Artifact
	for _, a := range f.rows {
		if a.AccountID == accountID && a.Kind == kind {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EffectiveDate.After(out[j].EffectiveDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeArtifacts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{calls: map[string]int{}}
}

func (g *fakeGenerator) record(kind string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[kind]++
	if g.err != nil {
		return "", g.err
	}
	return kind + " text", nil
}

func (g *fakeGenerator) count(kind string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[kind]
}

func (g *fakeGenerator) Report(context.Context, domain.BirthData, time.Time, string) (string, error) {
	return g.record("report")
}

func (g *fakeGenerator) DailyReport(context.Context, domain.BirthData, time.Time, string) (string, error) {
	return g.record("daily_report")
}

func (g *fakeGenerator) DailyInsight(context.Context, domain.BirthData, time.Time, string) (string, error) {
	return g.record("daily_insight")
}

func (g *fakeGenerator) GeneralReport(context.Context, domain.BirthData, string) (string, error) {
	return g.record("general_report")
}

func (g *fakeGenerator) Compatibility(context.Context, domain.BirthData, domain.BirthData, string) (string, error) {
	return g.record("compatibility")
}

var errBoom = errors.New("boom")
