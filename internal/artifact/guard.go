// Package artifact makes content generation idempotent per account, kind and
// calendar date.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kira/internal/domain"
)

// GenerateFunc produces new content. It is called at most once per
// ObtainOrGenerate call and never when an artifact already exists.
type GenerateFunc func(ctx context.Context) (string, error)

// Result describes the artifact returned by the guard.
type Result struct {
	Artifact domain.Artifact
	// Created is true when this call generated and stored the artifact.
	Created bool
	// Raced is true when a concurrent caller stored the artifact first and
	// this call returned the winner's row.
	Raced bool
}

// Target identifies the artifact slot a call fills.
type Target struct {
	AccountID string
	Kind      domain.ArtifactKind
	Date      time.Time
	// Trial marks content produced under the free trial.
	Trial bool
}

// Guard enforces at most one artifact per (account, kind, date).
type Guard struct {
	store  domain.ArtifactRepository
	logger zerolog.Logger
	now    func() time.Time
	newID  func() string
}

// Option customises a Guard.
type Option func(*Guard)

// WithClock overrides the clock used to stamp CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

// NewGuard constructs a guard over the given store.
func NewGuard(store domain.ArtifactRepository, opts ...Option) *Guard {
	g := &Guard{
		store:  store,
		logger: zerolog.Nop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ObtainOrGenerate returns the stored artifact for the target's (account,
// kind, date) or generates, stores and returns a new one.
//
// The store must reject a second row for the same triple. When a concurrent
// caller wins that race the insert fails with domain.ErrDuplicate and the
// winner's row is fetched once and returned instead.
func (g *Guard) ObtainOrGenerate(ctx context.Context, target Target, generate GenerateFunc) (Result, error) {
	accountID, kind, date := target.AccountID, target.Kind, domain.Day(target.Date)
	log := g.logger.With().
		Str("account_id", accountID).
		Str("kind", string(kind)).
		Str("date", domain.FormatDay(date)).
		Logger()

	existing, err := g.find(ctx, accountID, kind, date)
	if err == nil {
		log.Debug().Msg("artifact: returning stored content")
		return Result{Artifact: *existing}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return Result{}, err
	}

	content, err := generate(ctx)
	if err != nil {
		if isTaxonomyError(err) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	stored, err := g.store.Insert(ctx, &domain.Artifact{
		ID:            g.newID(),
		AccountID:     accountID,
		Kind:          kind,
		EffectiveDate: date,
		Content:       content,
		TrialReport:   target.Trial,
		CreatedAt:     g.now().UTC(),
	})
	switch {
	case err == nil:
		log.Info().Msg("artifact: stored new content")
		return Result{Artifact: *stored, Created: true}, nil
	case errors.Is(err, domain.ErrDuplicate):
		winner, findErr := g.find(ctx, accountID, kind, date)
		if findErr != nil {
			log.Error().Err(findErr).Msg("artifact: refetch after conflict failed")
			return Result{}, &domain.PersistError{Content: content, Err: findErr}
		}
		log.Info().Msg("artifact: lost insert race, returning winner")
		return Result{Artifact: *winner, Raced: true}, nil
	default:
		log.Error().Err(err).Msg("artifact: insert failed")
		return Result{}, &domain.PersistError{Content: content, Err: err}
	}
}

func (g *Guard) find(ctx context.Context, accountID string, kind domain.ArtifactKind, date time.Time) (*domain.Artifact, error) {
	a, err := g.store.Find(ctx, accountID, kind, date)
	if err == nil {
		return a, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}

func isTaxonomyError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput,
		domain.ErrGenerationFailed,
		domain.ErrStoreUnavailable,
		domain.ErrAccountNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
