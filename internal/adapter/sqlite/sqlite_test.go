package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kira/internal/artifact"
	"kira/internal/domain"
	"kira/internal/infra"
	"kira/internal/migrations"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := infra.OpenSQLite(ctx, filepath.Join(t.TempDir(), "kira.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.RunSQLite(ctx, db))
	return db
}

func createAccount(t *testing.T, repo *AccountRepository, email string) *domain.Account {
	t.Helper()
	a := domain.NewAccount(uuid.NewString(), email, "digest", time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func TestAccountRoundTrip(t *testing.T) {
	db := setupDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	created := createAccount(t, repo, "Ada@Example.com")

	got, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, domain.PlanBasic, got.Plan)
	assert.Equal(t, domain.SubscriptionInactive, got.SubscriptionStatus)
	assert.True(t, got.TrialActive)
	assert.True(t, got.DailyReportsEnabled)
	assert.Nil(t, got.TrialStart)
	assert.Nil(t, got.Birth)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountDuplicateEmail(t *testing.T) {
	repo := NewAccountRepository(setupDB(t))
	createAccount(t, repo, "ada@example.com")

	dup := domain.NewAccount(uuid.NewString(), "ada@example.com", "digest", time.Now())
	assert.ErrorIs(t, repo.Create(context.Background(), dup), domain.ErrDuplicate)
}

func TestStartTrialWritesOnce(t *testing.T) {
	repo := NewAccountRepository(setupDB(t))
	ctx := context.Background()
	a := createAccount(t, repo, "ada@example.com")

	first := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	ok, err := repo.StartTrial(ctx, a.ID, first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.StartTrial(ctx, a.ID, first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TrialStart)
	assert.True(t, got.TrialStart.Equal(first))
}

func TestAccountUpdates(t *testing.T) {
	repo := NewAccountRepository(setupDB(t))
	ctx := context.Background()
	a := createAccount(t, repo, "ada@example.com")

	n, err := repo.IncrementReportsUsed(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = repo.IncrementReportsUsed(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.UpdateBirthData(ctx, a.ID, domain.BirthData{Date: "1990-04-21", Place: "Lisbon", PalmPhoto: true}))
	require.NoError(t, repo.UpdatePlan(ctx, a.ID, domain.PlanPremium, domain.SubscriptionActive))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Birth)
	assert.Equal(t, domain.BirthData{Date: "1990-04-21", Place: "Lisbon", PalmPhoto: true}, *got.Birth)
	assert.Equal(t, domain.PlanPremium, got.Plan)
	assert.Equal(t, 2, got.ReportsUsed)

	missing := uuid.NewString()
	assert.ErrorIs(t, repo.UpdatePlan(ctx, missing, domain.PlanBasic, domain.SubscriptionInactive), domain.ErrNotFound)
	_, err = repo.IncrementReportsUsed(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListDailyRecipients(t *testing.T) {
	repo := NewAccountRepository(setupDB(t))
	ctx := context.Background()

	premium := createAccount(t, repo, "premium@example.com")
	optedOut := createAccount(t, repo, "optout@example.com")
	lapsed := createAccount(t, repo, "lapsed@example.com")
	createAccount(t, repo, "basic@example.com")

	require.NoError(t, repo.UpdatePlan(ctx, premium.ID, domain.PlanPremium, domain.SubscriptionActive))
	require.NoError(t, repo.UpdatePlan(ctx, optedOut.ID, domain.PlanPremium, domain.SubscriptionActive))
	require.NoError(t, repo.SetDailyReports(ctx, optedOut.ID, false))
	require.NoError(t, repo.UpdatePlan(ctx, lapsed.ID, domain.PlanPremium, domain.SubscriptionPastDue))

	got, err := repo.ListDailyRecipients(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, premium.ID, got[0].ID)
}

func TestArtifactUniquenessPerKindAndDay(t *testing.T) {
	db := setupDB(t)
	accounts := NewAccountRepository(db)
	repo := NewArtifactRepository(db)
	ctx := context.Background()
	a := createAccount(t, accounts, "ada@example.com")
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	report := &domain.Artifact{ID: uuid.NewString(), AccountID: a.ID, Kind: domain.KindReport, EffectiveDate: day.Add(13 * time.Hour), Content: "r1", TrialReport: true, CreatedAt: day}
	stored, err := repo.Insert(ctx, report)
	require.NoError(t, err)
	assert.True(t, stored.EffectiveDate.Equal(day))

	_, err = repo.Insert(ctx, &domain.Artifact{ID: uuid.NewString(), AccountID: a.ID, Kind: domain.KindReport, EffectiveDate: day, Content: "r2", CreatedAt: day})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = repo.Insert(ctx, &domain.Artifact{ID: uuid.NewString(), AccountID: a.ID, Kind: domain.KindInsight, EffectiveDate: day, Content: "i1", CreatedAt: day})
	require.NoError(t, err)

	found, err := repo.Find(ctx, a.ID, domain.KindReport, day)
	require.NoError(t, err)
	assert.Equal(t, "r1", found.Content)
	assert.True(t, found.TrialReport)

	_, err = repo.Find(ctx, a.ID, domain.KindReport, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestArtifactListNewestFirst(t *testing.T) {
	db := setupDB(t)
	a := createAccount(t, NewAccountRepository(db), "ada@example.com")
	repo := NewArtifactRepository(db)
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := repo.Insert(ctx, &domain.Artifact{
			ID: uuid.NewString(), AccountID: a.ID, Kind: domain.KindInsight,
			EffectiveDate: base.AddDate(0, 0, i), Content: fmt.Sprintf("insight %d", i), CreatedAt: base,
		})
		require.NoError(t, err)
	}

	got, err := repo.List(ctx, a.ID, domain.KindInsight, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "insight 4", got[0].Content)
	assert.Equal(t, "insight 2", got[2].Content)
}

func TestGuardConcurrencyAgainstUniqueIndex(t *testing.T) {
	db := setupDB(t)
	a := createAccount(t, NewAccountRepository(db), "ada@example.com")
	repo := NewArtifactRepository(db)
	guard := artifact.NewGuard(repo)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	const callers = 12
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		texts   = map[string]bool{}
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := guard.ObtainOrGenerate(context.Background(),
				artifact.Target{AccountID: a.ID, Kind: domain.KindReport, Date: day},
				func(context.Context) (string, error) { return fmt.Sprintf("reading %d", i), nil })
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if res.Created {
				created++
			}
			texts[res.Artifact.Content] = true
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, texts, 1)

	list, err := repo.List(context.Background(), a.ID, domain.KindReport, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
