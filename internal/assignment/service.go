package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fieldline-erp/fieldline-erp/internal/catalog"
	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

// CatalogStore is the slice of the catalog the reconciler needs: referential
// validity of unit ids against their product.
type CatalogStore interface {
	ListUnits(ctx context.Context, productID int64) ([]catalog.ProductUnit, error)
}

// Service reconciles desired assignment-unit state against persisted state.
// Every call converges storage to the submitted desired set without ever
// hard-deleting unit-price history.
type Service struct {
	repo    Repository
	catalog CatalogStore
	logger  *slog.Logger
}

// NewService constructs the reconciler.
func NewService(repo Repository, catalogStore CatalogStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalogStore, logger: logger}
}

// Reconcile applies the minimal diff between the desired unit set and the
// persisted rows for one (product, employee, store) assignment. The call is
// idempotent: repeating it with the same input leaves storage unchanged, so
// a blind retry after a mid-call crash is safe.
func (s *Service) Reconcile(ctx context.Context, in ReconcileInput) error {
	if len(in.Units) == 0 {
		return shared.NewValidationError("no units supplied")
	}

	seen := make(map[int64]bool, len(in.Units))
	var enabled []UnitDesire
	for _, u := range in.Units {
		if seen[u.UnitID] {
			return shared.NewValidationError(fmt.Sprintf("unit %d listed more than once", u.UnitID))
		}
		seen[u.UnitID] = true
		if u.Enabled && u.PricePC > 0 {
			enabled = append(enabled, u)
		}
	}
	if len(enabled) == 0 {
		return shared.NewValidationError("no enabled units with positive price")
	}

	if err := s.checkUnitOwnership(ctx, in); err != nil {
		return err
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		assignment, err := s.findOrCreate(ctx, tx, in)
		if err != nil {
			return err
		}

		existing, err := tx.ListUnits(ctx, assignment.ID)
		if err != nil {
			return err
		}
		existingByUnit := make(map[int64]AssignmentUnit, len(existing))
		for _, row := range existing {
			existingByUnit[row.UnitID] = row
		}

		desired := make(map[int64]bool, len(enabled))
		for _, want := range enabled {
			desired[want.UnitID] = true
			if row, ok := existingByUnit[want.UnitID]; ok {
				if err := tx.UpdateUnitPrice(ctx, row.ID, want.PricePC); err != nil {
					return err
				}
				continue
			}
			if _, err := tx.InsertUnit(ctx, AssignmentUnit{
				AssignmentID: assignment.ID,
				UnitID:       want.UnitID,
				PricePC:      want.PricePC,
				Status:       UnitStatusActive,
			}); err != nil {
				return err
			}
		}

		for _, row := range existing {
			if desired[row.UnitID] || row.Status == UnitStatusInactive {
				continue
			}
			if err := tx.DeactivateUnit(ctx, row.ID); err != nil {
				return err
			}
		}
		return nil
	})
	return shared.NewPersistenceError("assignment: reconcile", err)
}

// checkUnitOwnership rejects unit ids that do not belong to the product.
func (s *Service) checkUnitOwnership(ctx context.Context, in ReconcileInput) error {
	units, err := s.catalog.ListUnits(ctx, in.ProductID)
	if err != nil {
		return shared.NewPersistenceError("assignment: load catalog units", err)
	}
	if len(units) == 0 {
		return shared.NewNotFoundError("product", in.ProductID)
	}
	known := make(map[int64]bool, len(units))
	for _, u := range units {
		known[u.ID] = true
	}
	for _, want := range in.Units {
		if !known[want.UnitID] {
			return shared.NewValidationError(fmt.Sprintf("unit %d does not belong to product %d", want.UnitID, in.ProductID))
		}
	}
	return nil
}

// findOrCreate resolves the assignment for the exact key, creating it lazily
// on first reconciliation. A concurrent create loses the unique-constraint
// race and falls back to re-reading the winner's row.
func (s *Service) findOrCreate(ctx context.Context, tx TxRepository, in ReconcileInput) (Assignment, error) {
	assignment, found, err := tx.FindByKey(ctx, in.ProductID, in.EmployeeID, in.StoreID)
	if err != nil {
		return Assignment{}, err
	}
	if found {
		return assignment, nil
	}

	id, err := tx.InsertAssignment(ctx, Assignment{
		ProductID:  in.ProductID,
		EmployeeID: in.EmployeeID,
		StoreID:    in.StoreID,
	})
	if err == nil {
		return Assignment{ID: id, ProductID: in.ProductID, EmployeeID: in.EmployeeID, StoreID: in.StoreID}, nil
	}
	if errors.Is(err, shared.ErrDuplicate) {
		assignment, found, err = tx.FindByKey(ctx, in.ProductID, in.EmployeeID, in.StoreID)
		if err != nil {
			return Assignment{}, err
		}
		if found {
			return assignment, nil
		}
	}
	return Assignment{}, err
}

// DeleteAssignment hard-deletes an assignment and its unit rows. Used only
// when the employee or store relationship is fully withdrawn; a missing id
// is a no-op.
func (s *Service) DeleteAssignment(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.NewValidationError("invalid assignment ID")
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteUnitsByAssignment(ctx, id); err != nil {
			return err
		}
		return tx.DeleteAssignment(ctx, id)
	})
	return shared.NewPersistenceError("assignment: delete", err)
}

// ListAssignments returns assignments matching the filter with resolved
// product identity. OnlyActiveUnits omits inactive rows from the response
// without touching storage.
func (s *Service) ListAssignments(ctx context.Context, filter ListFilter) ([]View, error) {
	views, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.NewPersistenceError("assignment: list", err)
	}
	return views, nil
}
