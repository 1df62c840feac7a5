// Package readings runs the request flows: entitlement check, idempotent
// artifact lookup, generation and usage accounting.
package readings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kira/internal/artifact"
	"kira/internal/domain"
	"kira/internal/entitlement"
	"kira/internal/events"
	"kira/internal/password"
)

// Generator produces reading text. *generation.Gateway satisfies it.
type Generator interface {
	Report(ctx context.Context, b domain.BirthData, date time.Time, locale string) (string, error)
	DailyReport(ctx context.Context, b domain.BirthData, date time.Time, locale string) (string, error)
	DailyInsight(ctx context.Context, b domain.BirthData, date time.Time, locale string) (string, error)
	GeneralReport(ctx context.Context, b domain.BirthData, locale string) (string, error)
	Compatibility(ctx context.Context, self, partner domain.BirthData, locale string) (string, error)
}

// DefaultDailyPause spaces out provider calls during a daily run.
const DefaultDailyPause = time.Second

// Deps wires a Service. Accounts, Artifacts and Generator are required.
type Deps struct {
	Accounts  domain.AccountRepository
	Artifacts domain.ArtifactRepository
	Generator Generator
	Hasher    *password.Hasher
	Events    *events.Emitter
	Logger    zerolog.Logger
	Policy    entitlement.Policy

	// DailyPause is the wait between accounts in RunDaily. Zero selects
	// DefaultDailyPause; a negative value disables the pause.
	DailyPause time.Duration
	Now        func() time.Time
	NewID      func() string
}

// Service implements the account and reading operations behind the HTTP API
// and the scheduled trigger.
type Service struct {
	accounts   domain.AccountRepository
	artifacts  domain.ArtifactRepository
	guard      *artifact.Guard
	gen        Generator
	hasher     *password.Hasher
	events     *events.Emitter
	logger     zerolog.Logger
	policy     entitlement.Policy
	dailyPause time.Duration
	now        func() time.Time
	newID      func() string
}

func NewService(d Deps) *Service {
	s := &Service{
		accounts:   d.Accounts,
		artifacts:  d.Artifacts,
		gen:        d.Generator,
		hasher:     d.Hasher,
		events:     d.Events,
		logger:     d.Logger,
		policy:     d.Policy,
		dailyPause: d.DailyPause,
		now:        d.Now,
		newID:      d.NewID,
	}
	if s.hasher == nil {
		s.hasher = password.NewHasher("")
	}
	if s.events == nil {
		s.events = events.NewEmitter(nil, d.Logger)
	}
	if s.policy.TrialDuration <= 0 {
		s.policy = entitlement.DefaultPolicy()
	}
	if s.dailyPause == 0 {
		s.dailyPause = DefaultDailyPause
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	s.guard = artifact.NewGuard(d.Artifacts, artifact.WithClock(s.now), artifact.WithLogger(d.Logger))
	return s
}

// loadAccount validates id and fetches the account.
func (s *Service) loadAccount(ctx context.Context, id string) (*domain.Account, error) {
	if err := entitlement.ValidateAccountID(id); err != nil {
		return nil, err
	}
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storeErr(err)
	}
	return a, nil
}

// storeErr folds any store failure into ErrStoreUnavailable.
func storeErr(err error) error {
	if err == nil || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}

func accountErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrAccountNotFound
	}
	return storeErr(err)
}
