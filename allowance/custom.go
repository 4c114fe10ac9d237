package allowance

import (
	"strings"

	"github.com/warp/stipend-engine/generic"
)

// CustomEntry is a manually priced duty. It never goes through the
// calculators.
type CustomEntry struct {
	Description string
	Amount      int
}

// ValidateCustom checks that both the description and a positive amount
// were supplied.
func ValidateCustom(e CustomEntry) error {
	if strings.TrimSpace(e.Description) == "" {
		return &generic.ValidationError{
			Field:   "custom_description",
			Message: "a description is required for a manually entered activity",
		}
	}
	if e.Amount <= 0 {
		return &generic.ValidationError{
			Field:   "custom_amount",
			Message: "a positive amount is required for a manually entered activity",
		}
	}
	return nil
}
