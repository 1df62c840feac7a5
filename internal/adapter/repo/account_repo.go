package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"kira/internal/domain"
	"kira/internal/infra"
	"kira/internal/sqlinline"
)

// AccountRepositoryPG implements domain.AccountRepository on the users table.
type AccountRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewAccountRepository creates a new AccountRepositoryPG.
func NewAccountRepository(sql infra.SQLExecutor) *AccountRepositoryPG {
	return &AccountRepositoryPG{sql: sql}
}

func (r *AccountRepositoryPG) Create(ctx context.Context, a *domain.Account) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertUser,
		a.ID,
		a.Email,
		a.PasswordHash,
		a.CreatedAt,
		string(a.Plan),
		string(a.SubscriptionStatus),
		a.TrialActive,
		a.DailyReportsEnabled,
	)
	return translate(err)
}

func (r *AccountRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return scanAccount(r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id))
}

func (r *AccountRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return scanAccount(r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, domain.NormalizeEmail(email)))
}

func (r *AccountRepositoryPG) StartTrial(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QStartTrial, id, at.UTC())
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AccountRepositoryPG) IncrementReportsUsed(ctx context.Context, id string) (int, error) {
	var used int
	if err := r.sql.QueryRow(ctx, sqlinline.QIncrementTrialReportsUsed, id).Scan(&used); err != nil {
		return 0, translate(err)
	}
	return used, nil
}

func (r *AccountRepositoryPG) UpdateBirthData(ctx context.Context, id string, b domain.BirthData) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateBirthData, id, b.Date, b.Time, b.Place, b.PalmPhoto)
	return affectedOne(tag.RowsAffected(), err)
}

func (r *AccountRepositoryPG) UpdatePlan(ctx context.Context, id string, plan domain.Plan, status domain.SubscriptionStatus) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdatePlan, id, string(plan), string(status))
	return affectedOne(tag.RowsAffected(), err)
}

func (r *AccountRepositoryPG) SetDailyReports(ctx context.Context, id string, enabled bool) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QSetDailyReports, id, enabled)
	return affectedOne(tag.RowsAffected(), err)
}

func (r *AccountRepositoryPG) ListDailyRecipients(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDailyRecipients)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func affectedOne(n int64, err error) error {
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a                                domain.Account
		plan, status                     string
		birthDate, birthTime, birthPlace *string
		palm                             *bool
	)
	if err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.CreatedAt,
		&plan,
		&status,
		&a.TrialStart,
		&a.TrialActive,
		&a.ReportsUsed,
		&birthDate,
		&birthTime,
		&birthPlace,
		&palm,
		&a.DailyReportsEnabled,
	); err != nil {
		return nil, translate(err)
	}
	a.Plan = domain.Plan(plan)
	a.SubscriptionStatus = domain.SubscriptionStatus(status)
	a.Birth = birthFromColumns(birthDate, birthTime, birthPlace, palm)
	return &a, nil
}

func birthFromColumns(date, clock, place *string, palm *bool) *domain.BirthData {
	if date == nil && place == nil {
		return nil
	}
	b := &domain.BirthData{}
	if date != nil {
		b.Date = *date
	}
	if clock != nil {
		b.Time = *clock
	}
	if place != nil {
		b.Place = *place
	}
	if palm != nil {
		b.PalmPhoto = *palm
	}
	return b
}
