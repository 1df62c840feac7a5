package readings

import (
	"context"
	"time"

	"kira/internal/artifact"
	"kira/internal/domain"
	"kira/internal/entitlement"
	"kira/internal/events"
)

// List limits for ListArtifacts.
const (
	DefaultListLimit = 30
	MaxListLimit     = 100
)

// ReportRequest is a dated or general report request. AccountID is empty for
// anonymous callers.
type ReportRequest struct {
	AccountID string
	Birth     domain.BirthData
	// Date is YYYY-MM-DD; empty means today (UTC).
	Date   string
	Locale string
}

// ReportResult is the outcome of GenerateReport.
type ReportResult struct {
	Content string
	Date    time.Time
	// Cached is true when stored content was returned instead of new text.
	Cached bool
}

// CompatibilityResult is the outcome of Compatibility.
type CompatibilityResult struct {
	Analysis  string
	Timestamp time.Time
}

// GenerateReport produces the dated life report. Anonymous requests are
// generated and returned without storing anything.
func (s *Service) GenerateReport(ctx context.Context, req ReportRequest) (ReportResult, error) {
	if err := validateBirth(req.Birth); err != nil {
		return ReportResult{}, err
	}
	date, err := domain.ParseDay(req.Date, s.now())
	if err != nil {
		return ReportResult{}, err
	}

	if req.AccountID == "" {
		text, err := s.gen.Report(ctx, req.Birth, date, req.Locale)
		if err != nil {
			return ReportResult{}, err
		}
		return ReportResult{Content: text, Date: date}, nil
	}

	a, st, err := s.Authorize(ctx, req.AccountID)
	if err != nil {
		return ReportResult{}, err
	}
	res, err := s.guard.ObtainOrGenerate(ctx,
		artifact.Target{AccountID: a.ID, Kind: domain.KindReport, Date: date, Trial: !st.IsPremium},
		func(ctx context.Context) (string, error) {
			return s.gen.Report(ctx, req.Birth, date, req.Locale)
		})
	if err != nil {
		return ReportResult{}, err
	}
	if res.Created {
		s.recordUsage(ctx, a.ID)
		s.emitArtifact(ctx, res.Artifact)
	}
	return ReportResult{Content: res.Artifact.Content, Date: date, Cached: !res.Created}, nil
}

// GenerateGeneralReport produces the undated life report. It is never
// stored; authenticated callers get their birth data saved to the profile and
// the usage counter bumped.
func (s *Service) GenerateGeneralReport(ctx context.Context, req ReportRequest) (string, error) {
	if err := validateBirth(req.Birth); err != nil {
		return "", err
	}
	if req.AccountID == "" {
		return s.gen.GeneralReport(ctx, req.Birth, req.Locale)
	}

	a, _, err := s.Authorize(ctx, req.AccountID)
	if err != nil {
		return "", err
	}
	if err := s.accounts.UpdateBirthData(ctx, a.ID, req.Birth); err != nil {
		s.logger.Warn().Err(err).Str("account_id", a.ID).Msg("readings: save birth data failed")
	}
	text, err := s.gen.GeneralReport(ctx, req.Birth, req.Locale)
	if err != nil {
		return "", err
	}
	s.recordUsage(ctx, a.ID)
	return text, nil
}

// GenerateDailyReport produces the premium daily report for date from the
// profile's birth data. The scheduled trigger uses the same path.
func (s *Service) GenerateDailyReport(ctx context.Context, accountID string, date time.Time, locale string) (artifact.Result, error) {
	a, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return artifact.Result{}, err
	}
	if !entitlement.IsPremium(a.Plan, a.SubscriptionStatus) {
		return artifact.Result{}, domain.ErrPremiumRequired
	}
	if a.Birth == nil || !a.Birth.Complete() {
		return artifact.Result{}, errBirthDataRequired
	}
	birth := *a.Birth
	date = domain.Day(date)

	res, err := s.guard.ObtainOrGenerate(ctx,
		artifact.Target{AccountID: a.ID, Kind: domain.KindReport, Date: date},
		func(ctx context.Context) (string, error) {
			return s.gen.DailyReport(ctx, birth, date, locale)
		})
	if err != nil {
		return artifact.Result{}, err
	}
	if res.Created {
		s.emitArtifact(ctx, res.Artifact)
	}
	return res, nil
}

// GenerateDailyInsight returns the insight for dateStr (default today),
// generating it on first request. Birth data is only required when a new
// insight has to be generated.
func (s *Service) GenerateDailyInsight(ctx context.Context, accountID, dateStr, locale string) (artifact.Result, error) {
	date, err := domain.ParseDay(dateStr, s.now())
	if err != nil {
		return artifact.Result{}, err
	}
	a, st, err := s.Authorize(ctx, accountID)
	if err != nil {
		return artifact.Result{}, err
	}
	res, err := s.guard.ObtainOrGenerate(ctx,
		artifact.Target{AccountID: a.ID, Kind: domain.KindInsight, Date: date, Trial: !st.IsPremium},
		func(ctx context.Context) (string, error) {
			if a.Birth == nil || !a.Birth.Complete() {
				return "", errBirthDataRequired
			}
			return s.gen.DailyInsight(ctx, *a.Birth, date, locale)
		})
	if err != nil {
		return artifact.Result{}, err
	}
	if res.Created {
		s.emitArtifact(ctx, res.Artifact)
	}
	return res, nil
}

// ListArtifacts returns the account's artifacts of kind, newest date first.
func (s *Service) ListArtifacts(ctx context.Context, accountID string, kind domain.ArtifactKind, limit int) ([]domain.Artifact, error) {
	if err := entitlement.ValidateAccountID(accountID); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, domain.Invalid("unknown artifact kind")
	}
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	list, err := s.artifacts.List(ctx, accountID, kind, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	return list, nil
}

// Compatibility analyses two people. Nothing is stored and no account is
// involved.
func (s *Service) Compatibility(ctx context.Context, self, partner domain.BirthData, locale string) (CompatibilityResult, error) {
	if err := validateBirth(self); err != nil {
		return CompatibilityResult{}, err
	}
	if err := validateBirth(partner); err != nil {
		return CompatibilityResult{}, domain.Invalid("Partner birth date and place are required")
	}
	text, err := s.gen.Compatibility(ctx, self, partner, locale)
	if err != nil {
		return CompatibilityResult{}, err
	}
	return CompatibilityResult{Analysis: text, Timestamp: s.now().UTC()}, nil
}

// recordUsage bumps the report counter. The artifact is already durable, so
// a failure here is logged and not returned.
func (s *Service) recordUsage(ctx context.Context, accountID string) {
	used, err := s.accounts.IncrementReportsUsed(ctx, accountID)
	if err != nil {
		s.logger.Warn().Err(err).Str("account_id", accountID).Msg("readings: usage counter update failed")
		return
	}
	s.logger.Debug().Str("account_id", accountID).Int("reports_used", used).Msg("readings: usage recorded")
}

func (s *Service) emitArtifact(ctx context.Context, a domain.Artifact) {
	s.events.Emit(ctx, events.ArtifactGenerated, events.ArtifactGeneratedEvent{
		AccountID:     a.AccountID,
		ArtifactID:    a.ID,
		Kind:          string(a.Kind),
		EffectiveDate: domain.FormatDay(a.EffectiveDate),
		TrialReport:   a.TrialReport,
		OccurredAt:    s.now().UTC(),
	})
}
