package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

// Repository defines persistence for products and their units.
type Repository interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListUnits(ctx context.Context, productID int64) ([]ProductUnit, error)
	ListAllUnits(ctx context.Context) ([]ProductUnit, error)

	// WithTx wraps catalog write sequences in a single transaction.
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes transactional write operations. Deleting a unit must
// first remove the assignment-unit rows referencing it; deleting a product
// cascades through assignments as well.
type TxRepository interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
	InsertProduct(ctx context.Context, p Product) (int64, error)
	UpdateProduct(ctx context.Context, id int64, p Product) error
	DeleteProduct(ctx context.Context, id int64) error

	ListUnits(ctx context.Context, productID int64) ([]ProductUnit, error)
	InsertUnit(ctx context.Context, u ProductUnit) (int64, error)
	UpdateUnit(ctx context.Context, u ProductUnit) error
	ClearBaseFlags(ctx context.Context, productID int64) error
	DeleteUnit(ctx context.Context, unitID int64) error
	DeleteUnitsByProduct(ctx context.Context, productID int64) error

	DeleteAssignmentUnitsByUnit(ctx context.Context, unitID int64) error
	DeleteAssignmentUnitsByProduct(ctx context.Context, productID int64) error
	DeleteAssignmentsByProduct(ctx context.Context, productID int64) error
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

const productColumns = `id, code, name, description, is_active, created_at, updated_at`

func (r *repository) GetProduct(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.NewNotFoundError("product", id)
	}
	return p, err
}

func (r *repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const unitColumns = `id, product_id, name, sku, is_base, multiplier_to_base`

func (r *repository) ListUnits(ctx context.Context, productID int64) ([]ProductUnit, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+unitColumns+` FROM product_units WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUnits(rows)
}

func (r *repository) ListAllUnits(ctx context.Context) ([]ProductUnit, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+unitColumns+` FROM product_units`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUnits(rows)
}

func collectUnits(rows pgx.Rows) ([]ProductUnit, error) {
	var units []ProductUnit
	for rows.Next() {
		var u ProductUnit
		if err := rows.Scan(&u.ID, &u.ProductID, &u.Name, &u.SKU, &u.IsBase, &u.MultiplierToBase); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (t *txRepository) GetProduct(ctx context.Context, id int64) (Product, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.NewNotFoundError("product", id)
	}
	return p, err
}

func (t *txRepository) InsertProduct(ctx context.Context, p Product) (int64, error) {
	query := `
		INSERT INTO products (code, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRow(ctx, query, p.Code, p.Name, p.Description, p.IsActive, time.Now()).Scan(&id)
	if isUniqueViolation(err) {
		return 0, shared.ErrDuplicate
	}
	return id, err
}

func (t *txRepository) UpdateProduct(ctx context.Context, id int64, p Product) error {
	query := `
		UPDATE products
		SET code = $1, name = $2, description = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`
	_, err := t.tx.Exec(ctx, query, p.Code, p.Name, p.Description, p.IsActive, time.Now(), id)
	if isUniqueViolation(err) {
		return shared.ErrDuplicate
	}
	return err
}

// isUniqueViolation reports whether err is a Postgres 23505 unique violation,
// raised when a product code collides with an existing row.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (t *txRepository) DeleteProduct(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

func (t *txRepository) ListUnits(ctx context.Context, productID int64) ([]ProductUnit, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+unitColumns+` FROM product_units WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUnits(rows)
}

func (t *txRepository) InsertUnit(ctx context.Context, u ProductUnit) (int64, error) {
	query := `
		INSERT INTO product_units (product_id, name, sku, is_base, multiplier_to_base)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRow(ctx, query, u.ProductID, u.Name, u.SKU, u.IsBase, u.MultiplierToBase).Scan(&id)
	return id, err
}

func (t *txRepository) UpdateUnit(ctx context.Context, u ProductUnit) error {
	query := `
		UPDATE product_units
		SET name = $1, sku = $2, is_base = $3, multiplier_to_base = $4
		WHERE id = $5 AND product_id = $6
	`
	_, err := t.tx.Exec(ctx, query, u.Name, u.SKU, u.IsBase, u.MultiplierToBase, u.ID, u.ProductID)
	return err
}

// ClearBaseFlags drops every base designation for the product. The partial
// unique index on is_base is not deferrable, so moving the base flag between
// units must clear the old flag before any row sets a new one.
func (t *txRepository) ClearBaseFlags(ctx context.Context, productID int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE product_units SET is_base = FALSE WHERE product_id = $1`, productID)
	return err
}

func (t *txRepository) DeleteUnit(ctx context.Context, unitID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM product_units WHERE id = $1`, unitID)
	return err
}

func (t *txRepository) DeleteUnitsByProduct(ctx context.Context, productID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM product_units WHERE product_id = $1`, productID)
	return err
}

func (t *txRepository) DeleteAssignmentUnitsByUnit(ctx context.Context, unitID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM product_assignment_units WHERE unit_id = $1`, unitID)
	return err
}

func (t *txRepository) DeleteAssignmentUnitsByProduct(ctx context.Context, productID int64) error {
	query := `
		DELETE FROM product_assignment_units
		WHERE assignment_id IN (SELECT id FROM product_assignments WHERE product_id = $1)
	`
	_, err := t.tx.Exec(ctx, query, productID)
	return err
}

func (t *txRepository) DeleteAssignmentsByProduct(ctx context.Context, productID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM product_assignments WHERE product_id = $1`, productID)
	return err
}
