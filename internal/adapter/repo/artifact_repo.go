package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"kira/internal/domain"
	"kira/internal/infra"
	"kira/internal/sqlinline"
)

type artifactQueries struct {
	find, insert, list string
}

// Reports and insights live in separate tables with the same shape.
var artifactTables = map[domain.ArtifactKind]artifactQueries{
	domain.KindReport:  {sqlinline.QSelectDailyReport, sqlinline.QInsertDailyReport, sqlinline.QListDailyReports},
	domain.KindInsight: {sqlinline.QSelectDailyInsight, sqlinline.QInsertDailyInsight, sqlinline.QListDailyInsights},
}

// ArtifactRepositoryPG implements domain.ArtifactRepository over
// daily_reports and daily_insights.
type ArtifactRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewArtifactRepository(sql infra.SQLExecutor) *ArtifactRepositoryPG {
	return &ArtifactRepositoryPG{sql: sql}
}

func (r *ArtifactRepositoryPG) Find(ctx context.Context, accountID string, kind domain.ArtifactKind, date time.Time) (*domain.Artifact, error) {
	q, err := queriesFor(kind)
	if err != nil {
		return nil, err
	}
	return scanArtifact(r.sql.QueryRow(ctx, q.find, accountID, domain.Day(date)), kind)
}

func (r *ArtifactRepositoryPG) Insert(ctx context.Context, a *domain.Artifact) (*domain.Artifact, error) {
	q, err := queriesFor(a.Kind)
	if err != nil {
		return nil, err
	}
	args := []any{a.ID, a.AccountID, a.Content, domain.Day(a.EffectiveDate)}
	if a.Kind == domain.KindReport {
		args = append(args, a.TrialReport)
	}
	args = append(args, a.CreatedAt.UTC())
	return scanArtifact(r.sql.QueryRow(ctx, q.insert, args...), a.Kind)
}

func (r *ArtifactRepositoryPG) List(ctx context.Context, accountID string, kind domain.ArtifactKind, limit int) ([]domain.Artifact, error) {
	q, err := queriesFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.sql.Query(ctx, q.list, accountID, limit)
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
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func queriesFor(kind domain.ArtifactKind) (artifactQueries, error) {
	q, ok := artifactTables[kind]
	if !ok {
		return artifactQueries{}, domain.Invalid(fmt.Sprintf("unknown artifact kind %q", kind))
	}
	return q, nil
}

func scanArtifact(row pgx.Row, kind domain.ArtifactKind) (*domain.Artifact, error) {
	a := domain.Artifact{Kind: kind}
	if err := row.Scan(&a.ID, &a.AccountID, &a.Content, &a.EffectiveDate, &a.TrialReport, &a.CreatedAt); err != nil {
		return nil, translate(err)
	}
	a.EffectiveDate = domain.Day(a.EffectiveDate)
	return &a, nil
}
