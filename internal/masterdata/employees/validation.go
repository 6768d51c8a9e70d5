package employees

import (
	"strings"

	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

func (s *Service) validate(e Employee) error {
	if strings.TrimSpace(e.Code) == "" {
		return shared.NewValidationError("employee code is required")
	}
	if strings.TrimSpace(e.Name) == "" {
		return shared.NewValidationError("employee name is required")
	}
	return nil
}
