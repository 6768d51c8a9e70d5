package catalog

import (
	"fmt"
	"strings"

	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

func (s *Service) validateUpsert(in UpsertProductInput) error {
	if strings.TrimSpace(in.Code) == "" {
		return shared.NewValidationError("product code is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return shared.NewValidationError("product name is required")
	}
	if len(in.Units) == 0 {
		return shared.NewValidationError("at least one unit is required")
	}

	baseCount := 0
	for _, u := range in.Units {
		if strings.TrimSpace(u.Name) == "" {
			return shared.NewValidationError("unit name is required")
		}
		if u.IsBase {
			baseCount++
			if u.MultiplierToBase != 1 {
				return shared.NewValidationError(fmt.Sprintf("base unit %q must have multiplier 1", u.Name))
			}
		} else if u.MultiplierToBase < 1 {
			return shared.NewValidationError(fmt.Sprintf("unit %q must have multiplier >= 1", u.Name))
		}
	}
	if baseCount != 1 {
		return shared.NewValidationError("single base unit required")
	}
	return nil
}
