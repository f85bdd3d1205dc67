package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/prodbot/internal/models"
	"github.com/Kerhoff/prodbot/internal/repository"
)

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new product repository
func NewProductRepository(db DBTX) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) LockFamily(ctx context.Context, family int64) error {
	// Transaction-scoped advisory lock keyed by the family id. Unlike a
	// FOR UPDATE on existing rows, this also serializes writers while
	// the family has no products yet.
	if _, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, family); err != nil {
		return fmt.Errorf("failed to lock family %d: %w", family, err)
	}
	return nil
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (code, family, name, expires, withdrawn, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		product.Code,
		product.Family,
		product.Name,
		product.Expires,
		product.Withdrawn,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (r *productRepository) GetForUpdate(ctx context.Context, family int64, code int) (*models.Product, error) {
	query := `
		SELECT code, family, name, expires, withdrawn, created_at, updated_at
		FROM products
		WHERE family = $1 AND code = $2
		FOR UPDATE`

	product := &models.Product{}
	err := r.db.QueryRowContext(ctx, query, family, code).Scan(
		&product.Code,
		&product.Family,
		&product.Name,
		&product.Expires,
		&product.Withdrawn,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product for update: %w", err)
	}

	return product, nil
}

func (r *productRepository) ListActive(ctx context.Context, family int64, expiredBefore time.Time, limit int) ([]*models.Product, error) {
	query := `
		SELECT code, family, name, expires, withdrawn, created_at, updated_at
		FROM products
		WHERE family = $1 AND withdrawn IS NULL`
	args := []interface{}{family}
	argIdx := 2

	if !expiredBefore.IsZero() {
		query += fmt.Sprintf(" AND expires < $%d", argIdx)
		args = append(args, expiredBefore)
		argIdx++
	}

	query += " ORDER BY expires ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(
			&product.Code,
			&product.Family,
			&product.Name,
			&product.Expires,
			&product.Withdrawn,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func (r *productRepository) CountActive(ctx context.Context, family int64, expiredBefore time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE family = $1 AND withdrawn IS NULL`
	args := []interface{}{family}

	if !expiredBefore.IsZero() {
		query += " AND expires < $2"
		args = append(args, expiredBefore)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (r *productRepository) CodeExists(ctx context.Context, family int64, code int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE family = $1 AND code = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, family, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check product code: %w", err)
	}
	return exists, nil
}

func (r *productRepository) Withdraw(ctx context.Context, family int64, code int, at time.Time) error {
	query := `
		UPDATE products
		SET withdrawn = $3, updated_at = $3
		WHERE family = $1 AND code = $2 AND withdrawn IS NULL`

	result, err := r.db.ExecContext(ctx, query, family, code, at)
	if err != nil {
		return fmt.Errorf("failed to withdraw product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("active product %d not found in family %d", code, family)
	}

	return nil
}

func (r *productRepository) ExpiredFamilies(ctx context.Context, now time.Time) ([]int64, error) {
	query := `
		SELECT DISTINCT family
		FROM products
		WHERE withdrawn IS NULL AND expires < $1`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired families: %w", err)
	}
	defer rows.Close()

	var families []int64
	for rows.Next() {
		var family int64
		if err := rows.Scan(&family); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, family)
	}

	return families, rows.Err()
}

func (r *productRepository) DeleteWithdrawnExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM products WHERE withdrawn IS NOT NULL AND expires < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge products: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}
