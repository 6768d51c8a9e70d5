package sales

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldline-erp/fieldline-erp/internal/assignment"
	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

type memSalesRepo struct {
	pricedUnits map[int64]PricedUnit
	sales       map[int64]Sale
	lines       map[int64]SaleLine
	nextSaleID  int64
	nextLineID  int64
}

type memSalesTx struct {
	repo *memSalesRepo
}

func newMemSalesRepo() *memSalesRepo {
	return &memSalesRepo{
		pricedUnits: make(map[int64]PricedUnit),
		sales:       make(map[int64]Sale),
		lines:       make(map[int64]SaleLine),
	}
}

func (r *memSalesRepo) GetPricedUnit(ctx context.Context, assignmentUnitID int64) (PricedUnit, error) {
	u, ok := r.pricedUnits[assignmentUnitID]
	if !ok {
		return PricedUnit{}, shared.NewNotFoundError("assignment unit", assignmentUnitID)
	}
	return u, nil
}

func (r *memSalesRepo) List(ctx context.Context, filter ListFilter) ([]SaleView, error) {
	var views []SaleView
	for _, s := range r.sales {
		if filter.EmployeeID != nil && s.EmployeeID != *filter.EmployeeID {
			continue
		}
		v := SaleView{Sale: s}
		for _, l := range r.lines {
			if l.SaleID != s.ID {
				continue
			}
			v.Lines = append(v.Lines, LineView{SaleLine: l})
			v.Total += l.Total
		}
		views = append(views, v)
	}
	return views, nil
}

func (r *memSalesRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memSalesTx{repo: r})
}

func (t *memSalesTx) InsertSale(ctx context.Context, s Sale) (int64, error) {
	t.repo.nextSaleID++
	s.ID = t.repo.nextSaleID
	t.repo.sales[s.ID] = s
	return s.ID, nil
}

func (t *memSalesTx) InsertLine(ctx context.Context, l SaleLine) (int64, error) {
	t.repo.nextLineID++
	l.ID = t.repo.nextLineID
	t.repo.lines[l.ID] = l
	return l.ID, nil
}

const sellerID = int64(7)

func newTestSales(repo *memSalesRepo) *Service {
	return NewService(repo, slog.Default())
}

func seedUnit(repo *memSalesRepo, id int64, price float64, status assignment.UnitStatus, employeeID int64) {
	repo.pricedUnits[id] = PricedUnit{ID: id, UnitID: id + 100, PricePC: price, Status: status, EmployeeID: employeeID}
}

func TestRecordSaleRejectsEmptyLines(t *testing.T) {
	svc := newTestSales(newMemSalesRepo())

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{EmployeeID: sellerID})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRecordSaleRejectsNonPositiveQuantity(t *testing.T) {
	repo := newMemSalesRepo()
	seedUnit(repo, 1, 5, assignment.UnitStatusActive, sellerID)
	svc := newTestSales(repo)

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{
		EmployeeID: sellerID,
		Lines:      []RecordLineInput{{AssignmentUnitID: 1, Quantity: 0}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, repo.sales)
}

func TestRecordSaleRejectsInactiveUnit(t *testing.T) {
	repo := newMemSalesRepo()
	seedUnit(repo, 1, 5, assignment.UnitStatusInactive, sellerID)
	svc := newTestSales(repo)

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{
		EmployeeID: sellerID,
		Lines:      []RecordLineInput{{AssignmentUnitID: 1, Quantity: 2}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, repo.sales)
}

func TestRecordSaleRejectsForeignEmployee(t *testing.T) {
	repo := newMemSalesRepo()
	seedUnit(repo, 1, 5, assignment.UnitStatusActive, sellerID+1)
	svc := newTestSales(repo)

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{
		EmployeeID: sellerID,
		Lines:      []RecordLineInput{{AssignmentUnitID: 1, Quantity: 2}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRecordSaleMissingUnit(t *testing.T) {
	svc := newTestSales(newMemSalesRepo())

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{
		EmployeeID: sellerID,
		Lines:      []RecordLineInput{{AssignmentUnitID: 42, Quantity: 1}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRecordSaleCapturesCurrentPrice(t *testing.T) {
	repo := newMemSalesRepo()
	seedUnit(repo, 1, 5, assignment.UnitStatusActive, sellerID)
	seedUnit(repo, 2, 50, assignment.UnitStatusActive, sellerID)
	svc := newTestSales(repo)

	soldAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sale, err := svc.RecordSale(context.Background(), RecordSaleInput{
		EmployeeID: sellerID,
		SoldAt:     &soldAt,
		Lines: []RecordLineInput{
			{AssignmentUnitID: 1, Quantity: 3},
			{AssignmentUnitID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, sale.ID)
	require.NotEmpty(t, sale.DocRef)
	require.Equal(t, soldAt, sale.SoldAt)

	require.Len(t, repo.lines, 2)
	var totals float64
	for _, l := range repo.lines {
		require.Equal(t, sale.ID, l.SaleID)
		totals += l.Total
	}
	require.Equal(t, float64(3*5+1*50), totals, "line totals use the price captured at sale time")
}

func TestRecordSaleDocRefIsStable(t *testing.T) {
	soldAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.Equal(t, newDocRef(sellerID, soldAt), newDocRef(sellerID, soldAt))
	require.NotEqual(t, newDocRef(sellerID, soldAt), newDocRef(sellerID+1, soldAt))
}

func TestListSalesFiltersByEmployee(t *testing.T) {
	repo := newMemSalesRepo()
	seedUnit(repo, 1, 5, assignment.UnitStatusActive, sellerID)
	seedUnit(repo, 2, 9, assignment.UnitStatusActive, sellerID+1)
	svc := newTestSales(repo)
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, RecordSaleInput{
		EmployeeID: sellerID,
		Lines:      []RecordLineInput{{AssignmentUnitID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = svc.RecordSale(ctx, RecordSaleInput{
		EmployeeID: sellerID + 1,
		Lines:      []RecordLineInput{{AssignmentUnitID: 2, Quantity: 1}},
	})
	require.NoError(t, err)

	emp := sellerID
	views, err := svc.ListSales(ctx, ListFilter{EmployeeID: &emp})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, sellerID, views[0].EmployeeID)
	require.Equal(t, float64(10), views[0].Total)
}
