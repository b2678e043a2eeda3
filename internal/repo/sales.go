package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/pos-engine/internal/money"
)

// ErrStockConflict is returned when a committed sale would push a
// tracked product's stock below zero. The in-memory gate normally
// prevents this; the database guard is the last line.
var ErrStockConflict = errors.New("stock changed during commit")

// Sale is the persisted record of a settled checkout. On a partial
// sale AmountPaid is the portion collected now and RemainingBalance
// the open balance; on a full sale AmountPaid equals Total.
type Sale struct {
	ID               uuid.UUID
	Subtotal         money.Money
	Discount         money.Money
	Total            money.Money
	Tendered         money.Money
	ChangeDue        money.Money
	Method           string
	Partial          bool
	AmountPaid       money.Money
	RemainingBalance money.Money
	PromotionID      *string
	CustomerName     string
	CustomerPhone    string
	Notes            string
	CreatedAt        time.Time
}

// SaleItem is one line of a sale. Weighted lines carry WeightMilli and
// zero Qty; unit and custom price lines carry Qty.
type SaleItem struct {
	ProductID   string
	Name        string
	Qty         int32
	WeightMilli money.Milli
	UnitPrice   money.Money
	Total       money.Money
}

// SalesRepo persists sales atomically: the sale header, its items, the
// stock decrements and the promotion usage all land in one transaction.
type SalesRepo struct {
	Pool *pgxpool.Pool
}

// Create writes the sale and applies its side effects.
func (r SalesRepo) Create(ctx context.Context, sale Sale, items []SaleItem) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin sale tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO sales (id, subtotal, discount, total, tendered, change_due, method, partial,
		                    amount_paid, remaining_balance, promotion_id, customer_name,
		                    customer_phone, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		sale.ID, sale.Subtotal, sale.Discount, sale.Total, sale.Tendered,
		sale.ChangeDue, sale.Method, sale.Partial, sale.AmountPaid,
		sale.RemainingBalance, sale.PromotionID, sale.CustomerName,
		sale.CustomerPhone, sale.Notes, sale.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for _, it := range items {
		_, err = tx.Exec(ctx,
			`INSERT INTO sale_items (sale_id, product_id, name, qty, weight_milli, unit_price, total)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sale.ID, it.ProductID, it.Name, it.Qty, it.WeightMilli, it.UnitPrice, it.Total)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
		if it.Qty > 0 {
			if err := decrementStock(ctx, tx, it.ProductID, int(it.Qty)); err != nil {
				return err
			}
		}
	}

	if sale.PromotionID != nil {
		_, err = tx.Exec(ctx,
			`UPDATE promotions SET usage_count = usage_count + 1 WHERE id = $1`, *sale.PromotionID)
		if err != nil {
			return fmt.Errorf("increment promotion usage: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO promotion_applications (promotion_id, sale_id, discount, applied_at)
			 VALUES ($1, $2, $3, $4)`,
			*sale.PromotionID, sale.ID, sale.Discount, sale.CreatedAt)
		if err != nil {
			return fmt.Errorf("record promotion application: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func decrementStock(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = now()
		 WHERE id = $1 AND stock_tracked AND stock_quantity >= $2`, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	// Either untracked (no decrement needed) or a stock conflict.
	var tracked bool
	err = tx.QueryRow(ctx, `SELECT stock_tracked FROM products WHERE id = $1`, productID).Scan(&tracked)
	if err != nil {
		return fmt.Errorf("check stock tracking: %w", err)
	}
	if tracked {
		return fmt.Errorf("product %s: %w", productID, ErrStockConflict)
	}
	return nil
}
