package employees

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldline-erp/fieldline-erp/internal/masterdata/shared"
	internalShared "github.com/fieldline-erp/fieldline-erp/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Employee, int, error)
	Get(ctx context.Context, id int64) (Employee, error)
	Create(ctx context.Context, employee Employee) (Employee, error)
	Update(ctx context.Context, id int64, employee Employee) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, code, name, phone, store_id, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Employee, int, error) {
	query := `SELECT ` + columns + ` FROM employees WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.StoreID != nil {
		argCount++
		query += ` AND store_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.StoreID)
	}
	if filters.IsActive != nil {
		argCount++
		query += ` AND is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}

	countQuery := `SELECT COUNT(*) FROM (` + query + `) c`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.Phone, &e.StoreID, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM employees WHERE id = $1`, id)
	var e Employee
	err := row.Scan(&e.ID, &e.Code, &e.Name, &e.Phone, &e.StoreID, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, internalShared.NewNotFoundError("employee", id)
	}
	return e, err
}

func (r *repository) Create(ctx context.Context, employee Employee) (Employee, error) {
	query := `
		INSERT INTO employees (code, name, phone, store_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`
	now := time.Now()
	err := r.pool.QueryRow(ctx, query, employee.Code, employee.Name, employee.Phone, employee.StoreID, employee.IsActive, now).Scan(&employee.ID)
	if err != nil {
		return Employee{}, err
	}
	employee.CreatedAt = now
	employee.UpdatedAt = now
	return employee, nil
}

func (r *repository) Update(ctx context.Context, id int64, employee Employee) error {
	query := `
		UPDATE employees
		SET code = $1, name = $2, phone = $3, store_id = $4, is_active = $5, updated_at = $6
		WHERE id = $7
	`
	_, err := r.pool.Exec(ctx, query, employee.Code, employee.Name, employee.Phone, employee.StoreID, employee.IsActive, time.Now(), id)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	return err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
