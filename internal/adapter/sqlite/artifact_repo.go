package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kira/internal/domain"
)

type artifactTable struct {
	name, content, date, trial string
}

var artifactTables = map[domain.ArtifactKind]artifactTable{
	domain.KindReport:  {"daily_reports", "report_content", "report_date", "is_trial_report"},
	domain.KindInsight: {"daily_insights", "insight_content", "insight_date", "0"},
}

func (t artifactTable) selectColumns() string {
	return fmt.Sprintf("id, user_id, %s, %s, %s, created_at", t.content, t.date, t.trial)
}

// ArtifactRepository implements domain.ArtifactRepository on SQLite.
type ArtifactRepository struct {
	db *sql.DB
}

func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

func (r *ArtifactRepository) Find(ctx context.Context, accountID string, kind domain.ArtifactKind, date time.Time) (*domain.Artifact, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = ? AND %s = ?`, t.selectColumns(), t.name, t.date)
	return scanArtifact(r.db.QueryRowContext(ctx, query, accountID, domain.FormatDay(date)), kind)
}

func (r *ArtifactRepository) Insert(ctx context.Context, a *domain.Artifact) (*domain.Artifact, error) {
	t, err := tableFor(a.Kind)
	if err != nil {
		return nil, err
	}
	stored := *a
	stored.EffectiveDate = domain.Day(a.EffectiveDate)
	stored.CreatedAt = a.CreatedAt.UTC()

	var query string
	args := []any{stored.ID, stored.AccountID, stored.Content, domain.FormatDay(stored.EffectiveDate)}
	if a.Kind == domain.KindReport {
		query = `INSERT INTO daily_reports (id, user_id, report_content, report_date, is_trial_report, created_at) VALUES (?, ?, ?, ?, ?, ?)`
		args = append(args, stored.TrialReport)
	} else {
		query = fmt.Sprintf(`INSERT INTO %s (id, user_id, %s, %s, created_at) VALUES (?, ?, ?, ?, ?)`, t.name, t.content, t.date)
		stored.TrialReport = false
	}
	args = append(args, formatTime(stored.CreatedAt))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, translate(err)
	}
	return &stored, nil
}

func (r *ArtifactRepository) List(ctx context.Context, accountID string, kind domain.ArtifactKind, limit int) ([]domain.Artifact, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = ? ORDER BY %s DESC LIMIT ?`, t.selectColumns(), t.name, t.date)
	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []domain.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, translate(rows.Err())
}

func tableFor(kind domain.ArtifactKind) (artifactTable, error) {
	t, ok := artifactTables[kind]
	if !ok {
		return artifactTable{}, domain.Invalid(fmt.Sprintf("unknown artifact kind %q", kind))
	}
	return t, nil
}

func scanArtifact(row scanner, kind domain.ArtifactKind) (*domain.Artifact, error) {
	a := domain.Artifact{Kind: kind}
	var date, createdAt string
	if err := row.Scan(&a.ID, &a.AccountID, &a.Content, &date, &a.TrialReport, &createdAt); err != nil {
		return nil, translate(err)
	}
	var err error
	if a.EffectiveDate, err = parseDate(date); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}
