// Package entitlement decides whether an account may generate new content.
//
// Evaluation is a pure function of the account's trial and plan fields and
// the current time. Persisting a lazily activated trial start is left to the
// caller.
package entitlement

import (
	"time"

	"kira/internal/domain"
)

// DefaultTrialDuration is the length of the free trial window.
const DefaultTrialDuration = 72 * time.Hour

const day = 24 * time.Hour

// Policy holds the tunables of the evaluator.
type Policy struct {
	TrialDuration time.Duration
}

// DefaultPolicy returns the policy with a three day trial.
func DefaultPolicy() Policy {
	return Policy{TrialDuration: DefaultTrialDuration}
}

// Input is the subset of account state the evaluator reads.
type Input struct {
	TrialStart         *time.Time
	TrialActive        bool
	ReportsUsed        int
	Plan               domain.Plan
	SubscriptionStatus domain.SubscriptionStatus
}

// InputFromAccount extracts the evaluator input from an account.
func InputFromAccount(a *domain.Account) Input {
	return Input{
		TrialStart:         a.TrialStart,
		TrialActive:        a.TrialActive,
		ReportsUsed:        a.ReportsUsed,
		Plan:               a.Plan,
		SubscriptionStatus: a.SubscriptionStatus,
	}
}

// Status is the result of an evaluation.
type Status struct {
	DaysLeft      int
	ReportsUsed   int
	IsTrialActive bool
	IsPremium     bool
	CanGenerate   bool

	TrialStart time.Time
	TrialEnd   time.Time
	// TrialStartPending is set when the account had no trial start and now
	// was used in its place. The caller must persist TrialStart.
	TrialStartPending bool
}

// Evaluate computes the entitlement status at now.
func (p Policy) Evaluate(in Input, now time.Time) Status {
	duration := p.TrialDuration
	if duration <= 0 {
		duration = DefaultTrialDuration
	}

	start := now
	pending := true
	if in.TrialStart != nil {
		start = *in.TrialStart
		pending = false
	}
	end := start.Add(duration)

	trialActive := now.Before(end) && in.TrialActive
	premium := IsPremium(in.Plan, in.SubscriptionStatus)

	return Status{
		DaysLeft:          DaysLeft(end, now),
		ReportsUsed:       max(in.ReportsUsed, 0),
		IsTrialActive:     trialActive,
		IsPremium:         premium,
		CanGenerate:       trialActive || premium,
		TrialStart:        start,
		TrialEnd:          end,
		TrialStartPending: pending,
	}
}

// DaysLeft returns the number of started days between now and end, never
// negative.
func DaysLeft(end, now time.Time) int {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + day - 1) / day)
}

// IsPremium reports whether the plan and subscription grant premium access.
func IsPremium(plan domain.Plan, status domain.SubscriptionStatus) bool {
	return plan == domain.PlanPremium && status == domain.SubscriptionActive
}
