package attendance

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

type Repository interface {
	GetOpenEntry(ctx context.Context, employeeID int64) (Entry, bool, error)
	Insert(ctx context.Context, e Entry) (Entry, error)
	CloseEntry(ctx context.Context, id int64, clockOutAt time.Time) error
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, employee_id, store_id, clock_in_at, clock_out_at, created_at`

func (r *repository) GetOpenEntry(ctx context.Context, employeeID int64) (Entry, bool, error) {
	query := `SELECT ` + columns + ` FROM attendance_entries WHERE employee_id = $1 AND clock_out_at IS NULL ORDER BY clock_in_at DESC LIMIT 1`
	row := r.pool.QueryRow(ctx, query, employeeID)
	var e Entry
	err := row.Scan(&e.ID, &e.EmployeeID, &e.StoreID, &e.ClockInAt, &e.ClockOutAt, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (r *repository) Insert(ctx context.Context, e Entry) (Entry, error) {
	query := `
		INSERT INTO attendance_entries (employee_id, store_id, clock_in_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	now := time.Now()
	err := r.pool.QueryRow(ctx, query, e.EmployeeID, e.StoreID, e.ClockInAt, now).Scan(&e.ID)
	if err != nil {
		return Entry{}, err
	}
	e.CreatedAt = now
	return e, nil
}

func (r *repository) CloseEntry(ctx context.Context, id int64, clockOutAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE attendance_entries SET clock_out_at = $1 WHERE id = $2 AND clock_out_at IS NULL`, clockOutAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NewNotFoundError("attendance entry", id)
	}
	return nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	query := `SELECT ` + columns + ` FROM attendance_entries WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.EmployeeID != nil {
		argCount++
		query += ` AND employee_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.EmployeeID)
	}
	if filter.StoreID != nil {
		argCount++
		query += ` AND store_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.StoreID)
	}
	if filter.From != nil {
		argCount++
		query += ` AND clock_in_at >= $` + strconv.Itoa(argCount)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		argCount++
		query += ` AND clock_in_at < $` + strconv.Itoa(argCount)
		args = append(args, *filter.To)
	}

	query += ` ORDER BY clock_in_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.StoreID, &e.ClockInAt, &e.ClockOutAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
