package employees

import (
	"context"

	"github.com/fieldline-erp/fieldline-erp/internal/masterdata/shared"
	internalShared "github.com/fieldline-erp/fieldline-erp/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Employee, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	if id <= 0 {
		return Employee{}, internalShared.NewValidationError("invalid employee ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, employee Employee) (Employee, error) {
	if err := s.validate(employee); err != nil {
		return Employee{}, err
	}
	return s.repo.Create(ctx, employee)
}

func (s *Service) Update(ctx context.Context, id int64, employee Employee) error {
	if id <= 0 {
		return internalShared.NewValidationError("invalid employee ID")
	}
	if err := s.validate(employee); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, employee)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return internalShared.NewValidationError("invalid employee ID")
	}
	return s.repo.Delete(ctx, id)
}
