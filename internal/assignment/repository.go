package assignment

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

// Repository defines persistence for assignments and their unit rows.
type Repository interface {
	Get(ctx context.Context, id int64) (Assignment, error)
	List(ctx context.Context, filter ListFilter) ([]View, error)

	// WithTx wraps the read-diff-write reconciliation sequence in a single
	// transaction.
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes transactional operations for reconciliation and
// assignment deletion.
type TxRepository interface {
	FindByKey(ctx context.Context, productID, employeeID int64, storeID *int64) (Assignment, bool, error)
	InsertAssignment(ctx context.Context, a Assignment) (int64, error)
	DeleteAssignment(ctx context.Context, id int64) error

	ListUnits(ctx context.Context, assignmentID int64) ([]AssignmentUnit, error)
	InsertUnit(ctx context.Context, u AssignmentUnit) (int64, error)
	UpdateUnitPrice(ctx context.Context, id int64, pricePC float64) error
	DeactivateUnit(ctx context.Context, id int64) error
	DeleteUnitsByAssignment(ctx context.Context, assignmentID int64) error
}

// repository implements Repository using pgxpool.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// txRepository implements TxRepository.
type txRepository struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction.
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

const assignmentColumns = `id, product_id, employee_id, store_id, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (Assignment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM product_assignments WHERE id = $1`, id)
	var a Assignment
	err := row.Scan(&a.ID, &a.ProductID, &a.EmployeeID, &a.StoreID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Assignment{}, shared.NewNotFoundError("assignment", id)
	}
	return a, err
}

// List resolves assignments with product identity and unit rows in one pass,
// units ascending by multiplier within each assignment.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]View, error) {
	// The status filter lives in the join condition: an assignment whose rows
	// are all inactive still comes back, with an empty unit list.
	unitJoin := `LEFT JOIN product_assignment_units au ON au.assignment_id = a.id`
	if filter.OnlyActiveUnits {
		unitJoin += ` AND au.status = 'active'`
	}

	query := `
		SELECT a.id, a.product_id, p.code, p.name, a.employee_id, a.store_id,
		       au.id, au.unit_id, pu.name, pu.multiplier_to_base, au.price_pc, au.status
		FROM product_assignments a
		JOIN products p ON p.id = a.product_id
		` + unitJoin + `
		LEFT JOIN product_units pu ON pu.id = au.unit_id
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 0

	if filter.EmployeeID != nil {
		argCount++
		query += ` AND a.employee_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.EmployeeID)
	}
	if filter.StoreID != nil {
		argCount++
		query += ` AND a.store_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.StoreID)
	}

	query += ` ORDER BY a.id, pu.multiplier_to_base`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []View
	index := make(map[int64]int)
	for rows.Next() {
		var (
			v        View
			unitID   *int64
			catalogU *int64
			unitName *string
			mult     *float64
			price    *float64
			status   *string
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.ProductCode, &v.ProductName, &v.EmployeeID, &v.StoreID,
			&unitID, &catalogU, &unitName, &mult, &price, &status); err != nil {
			return nil, err
		}

		pos, ok := index[v.ID]
		if !ok {
			pos = len(views)
			index[v.ID] = pos
			views = append(views, v)
		}
		if unitID != nil {
			views[pos].Units = append(views[pos].Units, UnitView{
				ID:               *unitID,
				UnitID:           *catalogU,
				UnitName:         *unitName,
				MultiplierToBase: *mult,
				PricePC:          *price,
				Status:           UnitStatus(*status),
			})
		}
	}
	return views, rows.Err()
}

func (t *txRepository) FindByKey(ctx context.Context, productID, employeeID int64, storeID *int64) (Assignment, bool, error) {
	query := `SELECT ` + assignmentColumns + ` FROM product_assignments WHERE product_id = $1 AND employee_id = $2 AND store_id IS NOT DISTINCT FROM $3`
	row := t.tx.QueryRow(ctx, query, productID, employeeID, storeID)
	var a Assignment
	err := row.Scan(&a.ID, &a.ProductID, &a.EmployeeID, &a.StoreID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Assignment{}, false, nil
	}
	if err != nil {
		return Assignment{}, false, err
	}
	return a, true, nil
}

// InsertAssignment relies on the unique key over (product_id, employee_id,
// store_id) with NULLS NOT DISTINCT; a concurrent duplicate surfaces as
// shared.ErrDuplicate so the caller can re-read instead of duplicating.
func (t *txRepository) InsertAssignment(ctx context.Context, a Assignment) (int64, error) {
	query := `
		INSERT INTO product_assignments (product_id, employee_id, store_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRow(ctx, query, a.ProductID, a.EmployeeID, a.StoreID, time.Now()).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, shared.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (t *txRepository) DeleteAssignment(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM product_assignments WHERE id = $1`, id)
	return err
}

const assignmentUnitColumns = `id, assignment_id, unit_id, price_pc, status, created_at, updated_at`

func (t *txRepository) ListUnits(ctx context.Context, assignmentID int64) ([]AssignmentUnit, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+assignmentUnitColumns+` FROM product_assignment_units WHERE assignment_id = $1`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []AssignmentUnit
	for rows.Next() {
		var u AssignmentUnit
		if err := rows.Scan(&u.ID, &u.AssignmentID, &u.UnitID, &u.PricePC, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (t *txRepository) InsertUnit(ctx context.Context, u AssignmentUnit) (int64, error) {
	query := `
		INSERT INTO product_assignment_units (assignment_id, unit_id, price_pc, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRow(ctx, query, u.AssignmentID, u.UnitID, u.PricePC, u.Status, time.Now()).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, shared.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// UpdateUnitPrice sets the price and forces the row active, reactivating a
// previously disabled unit in the same statement.
func (t *txRepository) UpdateUnitPrice(ctx context.Context, id int64, pricePC float64) error {
	query := `UPDATE product_assignment_units SET price_pc = $1, status = 'active', updated_at = $2 WHERE id = $3`
	_, err := t.tx.Exec(ctx, query, pricePC, time.Now(), id)
	return err
}

// DeactivateUnit flips status only; price and id stay untouched so prior
// sales rows keep resolving.
func (t *txRepository) DeactivateUnit(ctx context.Context, id int64) error {
	query := `UPDATE product_assignment_units SET status = 'inactive', updated_at = $1 WHERE id = $2`
	_, err := t.tx.Exec(ctx, query, time.Now(), id)
	return err
}

func (t *txRepository) DeleteUnitsByAssignment(ctx context.Context, assignmentID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM product_assignment_units WHERE assignment_id = $1`, assignmentID)
	return err
}
