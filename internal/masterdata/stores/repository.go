package stores

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
	List(ctx context.Context, filters shared.ListFilters) ([]Store, int, error)
	Get(ctx context.Context, id int64) (Store, error)
	Create(ctx context.Context, store Store) (Store, error)
	Update(ctx context.Context, id int64, store Store) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, code, name, address, is_active, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Store, int, error) {
	query := `SELECT ` + columns + ` FROM stores WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
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

	query += ` ORDER BY name`

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

	var stores []Store
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Address, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		stores = append(stores, s)
	}
	return stores, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Store, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM stores WHERE id = $1`, id)
	var s Store
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Address, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Store{}, internalShared.NewNotFoundError("store", id)
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, store Store) (Store, error) {
	query := `
		INSERT INTO stores (code, name, address, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`
	now := time.Now()
	err := r.pool.QueryRow(ctx, query, store.Code, store.Name, store.Address, store.IsActive, now).Scan(&store.ID)
	if err != nil {
		return Store{}, err
	}
	store.CreatedAt = now
	store.UpdatedAt = now
	return store, nil
}

func (r *repository) Update(ctx context.Context, id int64, store Store) error {
	query := `
		UPDATE stores
		SET code = $1, name = $2, address = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`
	_, err := r.pool.Exec(ctx, query, store.Code, store.Name, store.Address, store.IsActive, time.Now(), id)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
	return err
}
