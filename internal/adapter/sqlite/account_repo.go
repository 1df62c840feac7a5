package sqlite

import (
	"context"
	"database/sql"
	"time"

	"kira/internal/domain"
)

const accountColumns = `id, email, password_hash, created_at, plan_type, subscription_status,
    trial_start_date, is_trial_active, trial_reports_used, birth_date, birth_time,
    birth_place, palm_photo, daily_reports_enabled`

// AccountRepository implements domain.AccountRepository on SQLite.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at, plan_type, subscription_status,
		    is_trial_active, trial_reports_used, daily_reports_enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		a.ID, domain.NormalizeEmail(a.Email), a.PasswordHash, formatTime(a.CreatedAt),
		string(a.Plan), string(a.SubscriptionStatus), a.TrialActive, a.DailyReportsEnabled,
	)
	return translate(err)
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM users WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM users WHERE email = ?`, domain.NormalizeEmail(email))
	return scanAccount(row)
}

func (r *AccountRepository) StartTrial(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET trial_start_date = ? WHERE id = ? AND trial_start_date IS NULL`,
		formatTime(at), id)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, translate(err)
	}
	return n == 1, nil
}

func (r *AccountRepository) IncrementReportsUsed(ctx context.Context, id string) (int, error) {
	var used int
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET trial_reports_used = trial_reports_used + 1 WHERE id = ? RETURNING trial_reports_used`,
		id).Scan(&used)
	if err != nil {
		return 0, translate(err)
	}
	return used, nil
}

func (r *AccountRepository) UpdateBirthData(ctx context.Context, id string, b domain.BirthData) error {
	var clock any
	if b.Time != "" {
		clock = b.Time
	}
	return r.update(ctx,
		`UPDATE users SET birth_date = ?, birth_time = ?, birth_place = ?, palm_photo = ? WHERE id = ?`,
		b.Date, clock, b.Place, b.PalmPhoto, id)
}

func (r *AccountRepository) UpdatePlan(ctx context.Context, id string, plan domain.Plan, status domain.SubscriptionStatus) error {
	return r.update(ctx,
		`UPDATE users SET plan_type = ?, subscription_status = ? WHERE id = ?`,
		string(plan), string(status), id)
}

func (r *AccountRepository) SetDailyReports(ctx context.Context, id string, enabled bool) error {
	return r.update(ctx, `UPDATE users SET daily_reports_enabled = ? WHERE id = ?`, enabled, id)
}

func (r *AccountRepository) ListDailyRecipients(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM users
		WHERE plan_type = 'premium' AND subscription_status = 'active' AND daily_reports_enabled = 1
		ORDER BY created_at ASC`)
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
	return out, translate(rows.Err())
}

func (r *AccountRepository) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAccount(row scanner) (*domain.Account, error) {
	var (
		a                                domain.Account
		createdAt, plan, status          string
		trialStart                       sql.NullString
		birthDate, birthTime, birthPlace sql.NullString
		palm                             sql.NullBool
	)
	if err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &createdAt, &plan, &status,
		&trialStart, &a.TrialActive, &a.ReportsUsed,
		&birthDate, &birthTime, &birthPlace, &palm, &a.DailyReportsEnabled,
	); err != nil {
		return nil, translate(err)
	}

	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if trialStart.Valid {
		t, err := parseTime(trialStart.String)
		if err != nil {
			return nil, err
		}
		a.TrialStart = &t
	}
	a.Plan = domain.Plan(plan)
	a.SubscriptionStatus = domain.SubscriptionStatus(status)
	if birthDate.Valid || birthPlace.Valid {
		a.Birth = &domain.BirthData{
			Date:      birthDate.String,
			Time:      birthTime.String,
			Place:     birthPlace.String,
			PalmPhoto: palm.Bool,
		}
	}
	return &a, nil
}
