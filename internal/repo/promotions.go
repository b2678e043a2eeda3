package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/pos-engine/internal/promotion"
)

// PromotionsRepo loads promotion candidates. Activity window and the
// active flag are filtered in SQL so the evaluator only ever sees
// promotions that are currently live.
type PromotionsRepo struct {
	Pool *pgxpool.Pool
}

// Active returns the promotions usable right now, with their scoped
// product ids attached.
func (r PromotionsRepo) Active(ctx context.Context) ([]promotion.Promotion, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT id, name, kind, discount_type, percent_bps, value, scope,
		        min_purchase, max_discount, usage_limit, usage_count,
		        qty_required, qty_reward
		   FROM promotions
		  WHERE active
		    AND (starts_at IS NULL OR starts_at <= now())
		    AND (ends_at IS NULL OR ends_at >= now())
		  ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()

	var promos []promotion.Promotion
	for rows.Next() {
		var p promotion.Promotion
		if err := rows.Scan(&p.ID, &p.Name, &p.Kind, &p.Type, &p.PercentBps, &p.Value,
			&p.Scope, &p.MinPurchase, &p.MaxDiscount, &p.UsageLimit, &p.UsageCount,
			&p.QtyRequired, &p.QtyReward); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		promos = append(promos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachProducts(ctx, promos); err != nil {
		return nil, err
	}
	return promos, nil
}

func (r PromotionsRepo) attachProducts(ctx context.Context, promos []promotion.Promotion) error {
	ids := make([]string, 0, len(promos))
	index := make(map[string]int, len(promos))
	for i, p := range promos {
		if p.Scope == promotion.ScopeSpecific {
			ids = append(ids, p.ID)
			index[p.ID] = i
		}
	}
	if len(ids) == 0 {
		return nil
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT promotion_id, product_id FROM promotion_products WHERE promotion_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("list promotion products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var promoID, productID string
		if err := rows.Scan(&promoID, &productID); err != nil {
			return fmt.Errorf("scan promotion product: %w", err)
		}
		if i, ok := index[promoID]; ok {
			promos[i].ProductIDs = append(promos[i].ProductIDs, productID)
		}
	}
	return rows.Err()
}
