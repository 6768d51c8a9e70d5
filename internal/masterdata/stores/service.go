package stores

import (
	"context"
	"strings"

	"github.com/fieldline-erp/fieldline-erp/internal/masterdata/shared"
	internalShared "github.com/fieldline-erp/fieldline-erp/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Store, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Store, error) {
	if id <= 0 {
		return Store{}, internalShared.NewValidationError("invalid store ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, store Store) (Store, error) {
	if err := s.validate(store); err != nil {
		return Store{}, err
	}
	return s.repo.Create(ctx, store)
}

func (s *Service) Update(ctx context.Context, id int64, store Store) error {
	if id <= 0 {
		return internalShared.NewValidationError("invalid store ID")
	}
	if err := s.validate(store); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, store)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return internalShared.NewValidationError("invalid store ID")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(st Store) error {
	if strings.TrimSpace(st.Code) == "" {
		return internalShared.NewValidationError("store code is required")
	}
	if strings.TrimSpace(st.Name) == "" {
		return internalShared.NewValidationError("store name is required")
	}
	return nil
}
