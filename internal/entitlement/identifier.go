package entitlement

import (
	"strings"

	"github.com/google/uuid"

	"kira/internal/domain"
)

// ValidateAccountID rejects identifiers that are not canonical RFC 4122
// UUIDs of version 1 through 5. It never touches the store.
func ValidateAccountID(id string) error {
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		return domain.ErrInvalidIdentifier
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrInvalidIdentifier
	}
	if v := parsed.Version(); v < 1 || v > 5 {
		return domain.ErrInvalidIdentifier
	}
	if parsed.Variant() != uuid.RFC4122 {
		return domain.ErrInvalidIdentifier
	}
	return nil
}
