package domain

import (
	"strings"
	"time"
)

// Plan enumerates billing tiers.
type Plan string

const (
	PlanBasic   Plan = "basic"
	PlanPremium Plan = "premium"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	return p == PlanBasic || p == PlanPremium
}

// SubscriptionStatus mirrors the payment provider's subscription state.
// Only "active" grants premium access; every other value is treated as lapsed.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
)

// BirthData is the structured input every reading is built from.
type BirthData struct {
	Date      string // YYYY-MM-DD
	Time      string // HH:MM, empty when unknown
	Place     string
	PalmPhoto bool
}

// Complete reports whether the fields required for a reading are present.
func (b BirthData) Complete() bool {
	return strings.TrimSpace(b.Date) != "" && strings.TrimSpace(b.Place) != ""
}

// Account is a registered user together with its trial and plan state.
type Account struct {
	ID                  string
	Email               string
	PasswordHash        string
	CreatedAt           time.Time
	Plan                Plan
	SubscriptionStatus  SubscriptionStatus
	TrialStart          *time.Time
	TrialActive         bool
	ReportsUsed         int
	Birth               *BirthData
	DailyReportsEnabled bool
}

// NewAccount returns an account in its signup state: basic plan, trial
// flagged active but not yet started.
func NewAccount(id, email, passwordHash string, now time.Time) *Account {
	return &Account{
		ID:                  id,
		Email:               NormalizeEmail(email),
		PasswordHash:        passwordHash,
		CreatedAt:           now.UTC(),
		Plan:                PlanBasic,
		SubscriptionStatus:  SubscriptionInactive,
		TrialActive:         true,
		DailyReportsEnabled: true,
	}
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
