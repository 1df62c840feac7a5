package domain

import (
	"fmt"
	"strings"
	"time"
)

// ArtifactKind distinguishes the kinds of stored generated content.
type ArtifactKind string

const (
	KindReport  ArtifactKind = "report"
	KindInsight ArtifactKind = "insight"
)

// Valid reports whether k is a known artifact kind.
func (k ArtifactKind) Valid() bool {
	return k == KindReport || k == KindInsight
}

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Artifact is generated content stored for one account and one calendar
// date. Artifacts are never updated once written.
type Artifact struct {
	ID            string
	AccountID     string
	Kind          ArtifactKind
	EffectiveDate time.Time
	Content       string
	TrialReport   bool
	CreatedAt     time.Time
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date. An empty string yields the UTC day of
// fallback.
func ParseDay(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Day(fallback), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, Invalid(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return t, nil
}

// FormatDay renders t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
