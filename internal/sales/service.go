package sales

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fieldline-erp/fieldline-erp/internal/assignment"
	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

// Service records sales against enabled assignment units.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RecordSale validates each line against its assignment unit, captures the
// current PC price, and persists the sale atomically. Lines pointing at
// inactive units are rejected; the employee on the unit's assignment must
// match the selling employee.
func (s *Service) RecordSale(ctx context.Context, in RecordSaleInput) (Sale, error) {
	if len(in.Lines) == 0 {
		return Sale{}, shared.NewValidationError("no sale lines supplied")
	}

	soldAt := time.Now()
	if in.SoldAt != nil {
		soldAt = *in.SoldAt
	}

	priced := make([]PricedUnit, 0, len(in.Lines))
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return Sale{}, shared.NewValidationError("sale line quantity must be positive")
		}
		unit, err := s.repo.GetPricedUnit(ctx, line.AssignmentUnitID)
		if err != nil {
			return Sale{}, shared.NewPersistenceError("sales: load assignment unit", err)
		}
		if unit.Status != assignment.UnitStatusActive {
			return Sale{}, shared.NewValidationError(fmt.Sprintf("assignment unit %d is not active", unit.ID))
		}
		if unit.EmployeeID != in.EmployeeID {
			return Sale{}, shared.NewValidationError(fmt.Sprintf("assignment unit %d does not belong to employee %d", unit.ID, in.EmployeeID))
		}
		priced = append(priced, unit)
	}

	sale := Sale{
		DocRef:     newDocRef(in.EmployeeID, soldAt),
		EmployeeID: in.EmployeeID,
		StoreID:    in.StoreID,
		SoldAt:     soldAt,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		sale.ID = id
		for i, line := range in.Lines {
			unit := priced[i]
			if _, err := tx.InsertLine(ctx, SaleLine{
				SaleID:           id,
				AssignmentUnitID: unit.ID,
				Quantity:         line.Quantity,
				PricePC:          unit.PricePC,
				Total:            line.Quantity * unit.PricePC,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Sale{}, shared.NewPersistenceError("sales: record", err)
	}
	return sale, nil
}

// ListSales returns sales matching the filter with resolved line identity.
func (s *Service) ListSales(ctx context.Context, filter ListFilter) ([]SaleView, error) {
	views, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.NewPersistenceError("sales: list", err)
	}
	return views, nil
}

// newDocRef derives a stable reference for the sale document.
func newDocRef(employeeID int64, soldAt time.Time) string {
	return uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("SALE:%d:%d", employeeID, soldAt.UnixNano()))).String()
}
