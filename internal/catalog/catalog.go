package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/pos-engine/internal/money"
)

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is the catalog snapshot the checkout core consumes. Weighted
// products are priced by PricePerUnit per WeightUnit; service-style
// items have StockTracked false and are never stock gated.
type Product struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Price         money.Money `json:"price"`
	IsWeighted    bool        `json:"isWeighted"`
	PricePerUnit  money.Money `json:"pricePerUnit"`
	WeightUnit    string      `json:"weightUnit"`
	StockQuantity int         `json:"stockQuantity"`
	StockTracked  bool        `json:"stockTracked"`
}

// Lookup resolves products by id.
type Lookup interface {
	Product(ctx context.Context, id string) (Product, error)
}

// Service fronts a product repository with a cache-aside layer. Cached
// stock snapshots may lag; restocks and commits invalidate.
type Service struct {
	Repo  Lookup
	Cache *Cache
}

// Product resolves a product, serving from cache when possible.
func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	if s == nil || s.Repo == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	key := cacheKey(id)
	var cached Product
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	product, err := s.Repo.Product(ctx, id)
	if err != nil {
		return Product{}, err
	}
	_ = s.Cache.SetJSON(ctx, key, product)
	return product, nil
}

// Invalidate drops the cached snapshot for a product, used after
// restocks and committed sales so the next lookup sees fresh stock.
func (s *Service) Invalidate(ctx context.Context, id string) {
	if s == nil {
		return
	}
	_ = s.Cache.Delete(ctx, cacheKey(id))
}

func cacheKey(id string) string {
	return fmt.Sprintf("catalog:product:%s", id)
}
