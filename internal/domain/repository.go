package domain

import (
	"context"
	"time"
)

// AccountRepository defines persistence for accounts.
//
// Implementations return ErrNotFound when no row matches, ErrDuplicate when a
// unique constraint rejects a write, and wrap connectivity failures with
// ErrStoreUnavailable.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	// StartTrial sets the trial start only when it is still unset. It reports
	// whether this call performed the write.
	StartTrial(ctx context.Context, id string, at time.Time) (bool, error)
	// IncrementReportsUsed bumps the consumed report counter and returns the
	// new value.
	IncrementReportsUsed(ctx context.Context, id string) (int, error)
	UpdateBirthData(ctx context.Context, id string, birth BirthData) error
	UpdatePlan(ctx context.Context, id string, plan Plan, status SubscriptionStatus) error
	SetDailyReports(ctx context.Context, id string, enabled bool) error
	// ListDailyRecipients returns premium accounts with an active
	// subscription and daily reports enabled.
	ListDailyRecipients(ctx context.Context) ([]Account, error)
}

// ArtifactRepository handles persistence for generated artifacts.
type ArtifactRepository interface {
	Find(ctx context.Context, accountID string, kind ArtifactKind, date time.Time) (*Artifact, error)
	// Insert stores a new artifact and returns the stored row. A second
	// artifact for the same (account, kind, date) yields ErrDuplicate.
	Insert(ctx context.Context, artifact *Artifact) (*Artifact, error)
	List(ctx context.Context, accountID string, kind ArtifactKind, limit int) ([]Artifact, error)
}
