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

type artifactTable struct {
	name, content, date string
}

var artifactTables = map[domain.ArtifactKind]artifactTable{
	domain.KindReport:  {"daily_reports", "report_content", "report_date"},
	domain.KindInsight: {"daily_insights", "insight_content", "insight_date"},
}

// artifactRow covers both tables; unused columns stay empty.
type artifactRow struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ReportContent  string    `json:"report_content,omitempty"`
	ReportDate     string    `json:"report_date,omitempty"`
	IsTrialReport  bool      `json:"is_trial_report,omitempty"`
	InsightContent string    `json:"insight_content,omitempty"`
	InsightDate    string    `json:"insight_date,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r artifactRow) artifact(kind domain.ArtifactKind) (*domain.Artifact, error) {
	a := &domain.Artifact{ID: r.ID, AccountID: r.UserID, Kind: kind, CreatedAt: r.CreatedAt.UTC()}
	date := r.ReportDate
	a.Content = r.ReportContent
	a.TrialReport = r.IsTrialReport
	if kind == domain.KindInsight {
		date = r.InsightDate
		a.Content = r.InsightContent
	}
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w: postgrest: parse date %q: %w", domain.ErrStoreUnavailable, date, err)
	}
	a.EffectiveDate = day
	return a, nil
}

// ArtifactRepository implements domain.ArtifactRepository over PostgREST.
type ArtifactRepository struct {
	c *Client
}

func NewArtifactRepository(c *Client) *ArtifactRepository {
	return &ArtifactRepository{c: c}
}

func (r *ArtifactRepository) Find(ctx context.Context, accountID string, kind domain.ArtifactKind, date time.Time) (*domain.Artifact, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.fetch(ctx, t, url.Values{
		"select":  {"*"},
		"user_id": {eq(accountID)},
		t.date:    {eq(domain.FormatDay(date))},
		"limit":   {"1"},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows[0].artifact(kind)
}

func (r *ArtifactRepository) Insert(ctx context.Context, a *domain.Artifact) (*domain.Artifact, error) {
	t, err := tableFor(a.Kind)
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"id":         a.ID,
		"user_id":    a.AccountID,
		t.content:    a.Content,
		t.date:       domain.FormatDay(a.EffectiveDate),
		"created_at": a.CreatedAt.UTC(),
	}
	if a.Kind == domain.KindReport {
		body["is_trial_report"] = a.TrialReport
	}
	var rows []artifactRow
	err = r.c.do(ctx, request{
		method: http.MethodPost,
		table:  t.name,
		body:   body,
		prefer: "return=representation",
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: postgrest: insert returned no rows", domain.ErrStoreUnavailable)
	}
	return rows[0].artifact(a.Kind)
}

func (r *ArtifactRepository) List(ctx context.Context, accountID string, kind domain.ArtifactKind, limit int) ([]domain.Artifact, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.fetch(ctx, t, url.Values{
		"select":  {"*"},
		"user_id": {eq(accountID)},
		"order":   {t.date + ".desc"},
		"limit":   {strconv.Itoa(limit)},
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Artifact, 0, len(rows))
	for _, row := range rows {
		a, err := row.artifact(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *ArtifactRepository) fetch(ctx context.Context, t artifactTable, query url.Values) ([]artifactRow, error) {
	var rows []artifactRow
	err := r.c.do(ctx, request{method: http.MethodGet, table: t.name, query: query}, &rows)
	return rows, err
}

func tableFor(kind domain.ArtifactKind) (artifactTable, error) {
	t, ok := artifactTables[kind]
	if !ok {
		return artifactTable{}, domain.Invalid(fmt.Sprintf("unknown artifact kind %q", kind))
	}
	return t, nil
}
