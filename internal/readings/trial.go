package readings

import (
	"context"

	"kira/internal/domain"
	"kira/internal/entitlement"
	"kira/internal/events"
)

// TrialStatus evaluates the account's entitlement. It never writes: an
// unstarted trial is reported as starting now.
func (s *Service) TrialStatus(ctx context.Context, id string) (entitlement.Status, error) {
	a, err := s.loadAccount(ctx, id)
	if err != nil {
		return entitlement.Status{}, err
	}
	return s.policy.Evaluate(entitlement.InputFromAccount(a), s.now()), nil
}

// Authorize admits a generation attempt. The first admitted attempt starts
// the trial; the conditional update keeps that write to exactly once.
func (s *Service) Authorize(ctx context.Context, id string) (*domain.Account, entitlement.Status, error) {
	a, err := s.loadAccount(ctx, id)
	if err != nil {
		return nil, entitlement.Status{}, err
	}
	st := s.policy.Evaluate(entitlement.InputFromAccount(a), s.now())
	if !st.CanGenerate {
		return nil, st, domain.ErrTrialExpired
	}
	if !st.TrialStartPending {
		return a, st, nil
	}

	started, err := s.accounts.StartTrial(ctx, a.ID, st.TrialStart)
	if err != nil {
		return nil, st, accountErr(err)
	}
	if !started {
		// a concurrent request started it first; use the stored start
		if a, err = s.loadAccount(ctx, id); err != nil {
			return nil, st, err
		}
		st = s.policy.Evaluate(entitlement.InputFromAccount(a), s.now())
		if !st.CanGenerate {
			return nil, st, domain.ErrTrialExpired
		}
		return a, st, nil
	}

	start := st.TrialStart.UTC()
	a.TrialStart = &start
	st.TrialStartPending = false
	s.logger.Info().Str("account_id", a.ID).Time("trial_end", st.TrialEnd).Msg("readings: trial started")
	s.events.Emit(ctx, events.TrialStarted, events.TrialStartedEvent{
		AccountID:  a.ID,
		TrialStart: start,
		TrialEnd:   st.TrialEnd.UTC(),
		OccurredAt: s.now().UTC(),
	})
	return a, st, nil
}
