package sales

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldline-erp/fieldline-erp/internal/assignment"
	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

// PricedUnit is an assignment-unit row joined with the assignment key, as
// needed to validate and price one sale line.
type PricedUnit struct {
	ID         int64
	UnitID     int64
	PricePC    float64
	Status     assignment.UnitStatus
	EmployeeID int64
	StoreID    *int64
}

// Repository defines persistence for sales.
type Repository interface {
	GetPricedUnit(ctx context.Context, assignmentUnitID int64) (PricedUnit, error)
	List(ctx context.Context, filter ListFilter) ([]SaleView, error)

	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes transactional sale writes.
type TxRepository interface {
	InsertSale(ctx context.Context, s Sale) (int64, error)
	InsertLine(ctx context.Context, l SaleLine) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *repository) GetPricedUnit(ctx context.Context, assignmentUnitID int64) (PricedUnit, error) {
	query := `
		SELECT au.id, au.unit_id, au.price_pc, au.status, a.employee_id, a.store_id
		FROM product_assignment_units au
		JOIN product_assignments a ON a.id = au.assignment_id
		WHERE au.id = $1
	`
	var u PricedUnit
	err := r.pool.QueryRow(ctx, query, assignmentUnitID).Scan(&u.ID, &u.UnitID, &u.PricePC, &u.Status, &u.EmployeeID, &u.StoreID)
	if errors.Is(err, pgx.ErrNoRows) {
		return PricedUnit{}, shared.NewNotFoundError("assignment unit", assignmentUnitID)
	}
	return u, err
}

// List joins lines back to product and unit identity. Deactivated assignment
// units still resolve; only hard catalog deletion removes the rows.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]SaleView, error) {
	query := `
		SELECT s.id, s.doc_ref, s.employee_id, s.store_id, s.sold_at, s.created_at,
		       l.id, l.assignment_unit_id, l.quantity, l.price_pc, l.total,
		       p.code, p.name, pu.name
		FROM sales s
		JOIN sale_lines l ON l.sale_id = s.id
		JOIN product_assignment_units au ON au.id = l.assignment_unit_id
		JOIN product_units pu ON pu.id = au.unit_id
		JOIN products p ON p.id = pu.product_id
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 0

	if filter.EmployeeID != nil {
		argCount++
		query += ` AND s.employee_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.EmployeeID)
	}
	if filter.StoreID != nil {
		argCount++
		query += ` AND s.store_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.StoreID)
	}
	if filter.From != nil {
		argCount++
		query += ` AND s.sold_at >= $` + strconv.Itoa(argCount)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		argCount++
		query += ` AND s.sold_at < $` + strconv.Itoa(argCount)
		args = append(args, *filter.To)
	}

	query += ` ORDER BY s.sold_at DESC, s.id, l.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []SaleView
	index := make(map[int64]int)
	for rows.Next() {
		var (
			s    Sale
			line LineView
		)
		if err := rows.Scan(&s.ID, &s.DocRef, &s.EmployeeID, &s.StoreID, &s.SoldAt, &s.CreatedAt,
			&line.ID, &line.AssignmentUnitID, &line.Quantity, &line.PricePC, &line.Total,
			&line.ProductCode, &line.ProductName, &line.UnitName); err != nil {
			return nil, err
		}
		line.SaleID = s.ID

		pos, ok := index[s.ID]
		if !ok {
			pos = len(views)
			index[s.ID] = pos
			views = append(views, SaleView{Sale: s})
		}
		views[pos].Lines = append(views[pos].Lines, line)
		views[pos].Total += line.Total
	}
	return views, rows.Err()
}

func (t *txRepository) InsertSale(ctx context.Context, s Sale) (int64, error) {
	query := `
		INSERT INTO sales (doc_ref, employee_id, store_id, sold_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRow(ctx, query, s.DocRef, s.EmployeeID, s.StoreID, s.SoldAt, time.Now()).Scan(&id)
	return id, err
}

func (t *txRepository) InsertLine(ctx context.Context, l SaleLine) (int64, error) {
	query := `
		INSERT INTO sale_lines (sale_id, assignment_unit_id, quantity, price_pc, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRow(ctx, query, l.SaleID, l.AssignmentUnitID, l.Quantity, l.PricePC, l.Total).Scan(&id)
	return id, err
}
