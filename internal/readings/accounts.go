package readings

import (
	"context"
	"errors"
	"strings"

	"kira/internal/domain"
	"kira/internal/entitlement"
	"kira/internal/events"
	"kira/internal/password"
)

// Signup registers an account in its initial trial state.
func (s *Service) Signup(ctx context.Context, email, pw string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || pw == "" {
		return nil, domain.Invalid("Email and password are required")
	}
	if at := strings.Index(email, "@"); at <= 0 || at == len(email)-1 {
		return nil, domain.Invalid("Email address is invalid")
	}
	if len(pw) < password.MinLength {
		return nil, domain.Invalid("Password must be at least 6 characters")
	}

	a := domain.NewAccount(s.newID(), email, s.hasher.Hash(pw), s.now())
	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrAccountExists
		}
		return nil, storeErr(err)
	}

	s.logger.Info().Str("account_id", a.ID).Msg("readings: account created")
	s.events.Emit(ctx, events.AccountCreated, events.AccountCreatedEvent{
		AccountID:  a.ID,
		OccurredAt: a.CreatedAt,
	})
	return a, nil
}

// Signin checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Signin(ctx context.Context, email, pw string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || pw == "" {
		return nil, domain.Invalid("Email and password are required")
	}
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, storeErr(err)
	}
	if !s.hasher.Verify(pw, a.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return a, nil
}

func (s *Service) Profile(ctx context.Context, id string) (*domain.Account, error) {
	return s.loadAccount(ctx, id)
}

// SetPlan records a plan change. It stands in for the payment provider's
// webhook.
func (s *Service) SetPlan(ctx context.Context, id string, plan domain.Plan, status domain.SubscriptionStatus) error {
	if err := entitlement.ValidateAccountID(id); err != nil {
		return err
	}
	if !plan.Valid() {
		return domain.Invalid("plan must be basic or premium")
	}
	if strings.TrimSpace(string(status)) == "" {
		return domain.Invalid("subscription status is required")
	}
	if err := s.accounts.UpdatePlan(ctx, id, plan, status); err != nil {
		return accountErr(err)
	}
	s.logger.Info().Str("account_id", id).Str("plan", string(plan)).Str("status", string(status)).Msg("readings: plan updated")
	return nil
}

func (s *Service) SetDailyReports(ctx context.Context, id string, enabled bool) error {
	if err := entitlement.ValidateAccountID(id); err != nil {
		return err
	}
	if err := s.accounts.SetDailyReports(ctx, id, enabled); err != nil {
		return accountErr(err)
	}
	return nil
}
