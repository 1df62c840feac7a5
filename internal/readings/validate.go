package readings

import (
	"strings"
	"time"

	"kira/internal/domain"
)

var errBirthDataRequired = domain.Invalid("Birth data required. Please complete your profile first.")

func validateBirth(b domain.BirthData) error {
	if !b.Complete() {
		return domain.Invalid("Birth date and place are required")
	}
	if _, err := time.Parse(domain.DateLayout, strings.TrimSpace(b.Date)); err != nil {
		return domain.Invalid("Birth date must be YYYY-MM-DD")
	}
	if t := strings.TrimSpace(b.Time); t != "" {
		if _, err := time.Parse("15:04", t); err != nil {
			return domain.Invalid("Birth time must be HH:MM")
		}
	}
	return nil
}
