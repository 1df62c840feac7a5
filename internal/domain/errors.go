package domain

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate record")

	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidIdentifier  = errors.New("invalid account identifier")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrTrialExpired       = errors.New("trial expired")
	ErrPremiumRequired    = errors.New("premium subscription required")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrPersistFailed      = errors.New("persist failed")
	ErrGenerationFailed   = errors.New("generation failed")
)

// ValidationError is a user-correctable input problem. The message is safe
// to show to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid returns a ValidationError with the given message.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}

// PersistError reports that generated content could not be stored. The
// content travels with the error so callers can still hand it to the user.
type PersistError struct {
	Content string
	Err     error
}

func (e *PersistError) Error() string {
	if e.Err == nil {
		return ErrPersistFailed.Error()
	}
	return ErrPersistFailed.Error() + ": " + e.Err.Error()
}

func (e *PersistError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPersistFailed}
	}
	return []error{ErrPersistFailed, e.Err}
}
