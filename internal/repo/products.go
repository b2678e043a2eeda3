package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/pos-engine/internal/catalog"
)

// ProductsRepo reads and mutates the product catalog.
type ProductsRepo struct {
	Pool *pgxpool.Pool
}

const productColumns = `id, name, price, is_weighted, price_per_unit, weight_unit, stock_quantity, stock_tracked`

// Product loads a single product by id.
func (r ProductsRepo) Product(ctx context.Context, id string) (catalog.Product, error) {
	row := r.Pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}

// List returns the catalog ordered by name, for the browse endpoint.
func (r ProductsRepo) List(ctx context.Context, limit, offset int32) ([]catalog.Product, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var out []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AddStock increments a tracked product's stock and returns the new
// quantity. Used by the restock flow.
func (r ProductsRepo) AddStock(ctx context.Context, id string, qty int) (int, error) {
	var updated int
	err := r.Pool.QueryRow(ctx,
		`UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now()
		 WHERE id = $1 AND stock_tracked RETURNING stock_quantity`, id, qty).Scan(&updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, catalog.ErrNotFound
		}
		return 0, fmt.Errorf("add stock: %w", err)
	}
	return updated, nil
}

type pgxRow interface {
	Scan(dest ...any) error
}

func scanProduct(row pgxRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.IsWeighted, &p.PricePerUnit,
		&p.WeightUnit, &p.StockQuantity, &p.StockTracked)
	return p, err
}
