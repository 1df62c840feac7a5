package repo

import (
	"fmt"

	"kira/internal/domain"
	"kira/internal/infra"
)

// translate maps driver errors onto the domain taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case infra.IsNoRows(err):
		return domain.ErrNotFound
	case infra.IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", domain.ErrDuplicate, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
}
