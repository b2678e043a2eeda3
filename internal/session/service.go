package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/pos-engine/internal/cart"
	"github.com/noah-isme/pos-engine/internal/catalog"
	"github.com/noah-isme/pos-engine/internal/change"
	"github.com/noah-isme/pos-engine/internal/money"
	"github.com/noah-isme/pos-engine/internal/obs"
	"github.com/noah-isme/pos-engine/internal/payment"
	"github.com/noah-isme/pos-engine/internal/pricing"
	"github.com/noah-isme/pos-engine/internal/promotion"
	"github.com/noah-isme/pos-engine/internal/repo"
	"github.com/noah-isme/pos-engine/internal/stock"
)

// ProductLookup resolves catalog products for admission and pricing.
type ProductLookup interface {
	Product(ctx context.Context, id string) (catalog.Product, error)
}

// PromotionSource supplies the currently live promotion candidates.
type PromotionSource interface {
	Active(ctx context.Context) ([]promotion.Promotion, error)
}

// SaleStore persists committed sales.
type SaleStore interface {
	Create(ctx context.Context, sale repo.Sale, items []repo.SaleItem) error
}

// StockWriter applies restocks.
type StockWriter interface {
	AddStock(ctx context.Context, id string, qty int) (int, error)
}

// Invalidator drops cached catalog entries after stock changes.
type Invalidator interface {
	Invalidate(ctx context.Context, id string)
}

// Enqueuer publishes post-commit notifications. Failures are logged,
// never surfaced: the sale is already durable by then.
type Enqueuer interface {
	SaleCommitted(ctx context.Context, saleID uuid.UUID, total money.Money) error
	StockLow(ctx context.Context, productID string, remaining int) error
}

// Tender captures a recorded payment awaiting commit.
type Tender struct {
	Method        payment.Method
	Settlement    payment.Settlement
	Change        []change.Entry
	PartialAmount money.Money
}

// Checkout is one open checkout. The cart state is an immutable value;
// every mutation produces a new state via cart.Apply, and the derived
// summary and promotion selection are recomputed from it.
type Checkout struct {
	ID            uuid.UUID
	State         cart.State
	Enabled       bool
	PinnedID      string
	CustomerName  string
	CustomerPhone string
	Notes         string
	Summary       pricing.Summary
	Selection     promotion.Selection
	Tender        *Tender
	CreatedAt     time.Time
	LastUpdated   time.Time
}

// Service owns the open checkouts. Operations are serialized with one
// mutex; the core packages underneath are pure and need no locking.
type Service struct {
	Products     ProductLookup
	Promotions   PromotionSource
	Sales        SaleStore
	Stock        StockWriter
	Cache        Invalidator
	Notify       Enqueuer
	LowStockMark int
	Now          func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Checkout
}

// AddItemInput selects how a product enters the cart. Weight takes
// effect for weighted products; CustomPrice overrides the catalog
// price for quick sale items; Target re-weighs an existing line.
type AddItemInput struct {
	ProductID   string
	Qty         int
	Weight      money.Milli
	CustomPrice *money.Money
	Target      uuid.UUID
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create opens a new checkout with an empty cart.
func (s *Service) Create(ctx context.Context) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = make(map[uuid.UUID]*Checkout)
	}
	now := s.now()
	c := &Checkout{ID: uuid.New(), Enabled: true, CreatedAt: now, LastUpdated: now}
	if err := s.recompute(ctx, c); err != nil {
		return nil, err
	}
	s.sessions[c.ID] = c
	return c, nil
}

// Get returns a snapshot of the checkout.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	snapshot := *c
	return &snapshot, nil
}

// AddItem admits a product into the cart. Stock-tracked unit products
// pass the admission gate against the quantity already carted;
// weighed and untracked products bypass it.
func (s *Service) AddItem(ctx context.Context, id uuid.UUID, in AddItemInput) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	product, err := s.Products.Product(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, invalid("productId", "unknown product")
		}
		return nil, fmt.Errorf("resolve product: %w", err)
	}

	var action cart.Action
	switch {
	case product.IsWeighted:
		if in.Weight <= 0 {
			return nil, invalid("weight", "must be positive")
		}
		action = cart.AddWeighted{
			ProductID:    product.ID,
			PricePerUnit: product.PricePerUnit,
			Weight:       in.Weight,
			Target:       in.Target,
		}
	case in.CustomPrice != nil:
		if *in.CustomPrice < 0 {
			return nil, invalid("customPrice", "must not be negative")
		}
		action = cart.AddCustom{ProductID: product.ID, Price: *in.CustomPrice, Qty: in.Qty}
	default:
		if in.Qty < 0 {
			return nil, invalid("qty", "must not be negative")
		}
		qty := in.Qty
		if qty == 0 {
			qty = 1
		}
		if product.StockTracked {
			res := stock.Check(product.StockQuantity, c.State.UnitQty(product.ID), qty)
			if !res.Accepted {
				if obs.StockRejectionsTotal != nil {
					obs.StockRejectionsTotal.Inc()
				}
				return nil, &StockError{ProductID: product.ID, Available: res.Available, Requested: res.RequestedTotal}
			}
		}
		action = cart.AddUnit{ProductID: product.ID, UnitPrice: product.Price, Qty: qty}
	}

	return s.apply(ctx, c, action)
}

// SetQuantity replaces a unit or custom line's quantity. Zero and
// below removes the line. The admission gate does not re-run here; the
// database guard at commit is the backstop.
func (s *Service) SetQuantity(ctx context.Context, id, lineID uuid.UUID, qty int) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.apply(ctx, c, cart.SetQuantity{Line: lineID, Qty: qty})
}

// SetWeight replaces a weighted line's weight. Zero and below removes
// the line.
func (s *Service) SetWeight(ctx context.Context, id, lineID uuid.UUID, weight money.Milli) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.apply(ctx, c, cart.SetWeight{Line: lineID, Weight: weight})
}

// RemoveLine deletes a line from the cart.
func (s *Service) RemoveLine(ctx context.Context, id, lineID uuid.UUID) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.apply(ctx, c, cart.Remove{Line: lineID})
}

// Reset empties the cart and clears any recorded tender.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Tender = nil
	return s.apply(ctx, c, cart.Clear{})
}

// SetPromotions adjusts the session's promotion toggle and pin, then
// re-evaluates. Pinning an id that no longer qualifies is not an
// error; the selection reports it as unavailable.
func (s *Service) SetPromotions(ctx context.Context, id uuid.UUID, enabled bool, pinnedID string) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Enabled = enabled
	c.PinnedID = pinnedID
	if err := s.recompute(ctx, c); err != nil {
		return nil, err
	}
	c.Tender = nil
	c.LastUpdated = s.now()
	snapshot := *c
	return &snapshot, nil
}

// SetCustomer attaches customer details and receipt notes. All fields
// are optional; blanks clear.
func (s *Service) SetCustomer(ctx context.Context, id uuid.UUID, name, phone, notes string) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.CustomerName = name
	c.CustomerPhone = phone
	c.Notes = notes
	c.LastUpdated = s.now()
	snapshot := *c
	return &snapshot, nil
}

// Restock raises a product's stock so a previously rejected add can be
// retried. Returns the new stock level.
func (s *Service) Restock(ctx context.Context, productID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, invalid("qty", "must be positive")
	}
	updated, err := s.Stock.AddStock(ctx, productID, qty)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return 0, invalid("productId", "unknown or untracked product")
		}
		return 0, fmt.Errorf("restock: %w", err)
	}
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, productID)
	}
	if obs.RestocksTotal != nil {
		obs.RestocksTotal.Inc()
	}
	return updated, nil
}

// RecordTender validates and records a payment against the order total.
// A tender below the amount due is rejected unless partial payment is
// requested. Change is broken into denominations for cash handling.
func (s *Service) RecordTender(ctx context.Context, id uuid.UUID, method payment.Method, tendered money.Money, partial bool, partialAmount money.Money) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if c.State.Empty() {
		return nil, invalid("cart", "cart is empty")
	}
	if !payment.ValidMethod(method) {
		return nil, invalid("method", "unknown payment method")
	}
	if tendered < 0 {
		return nil, invalid("tendered", "must not be negative")
	}
	settlement := payment.Settle(c.Summary.Total, tendered, partial, partialAmount)
	if !settlement.Satisfied {
		return nil, &UnderpaidError{Due: settlement.AmountDue, Tendered: tendered}
	}
	c.Tender = &Tender{
		Method:        method,
		Settlement:    settlement,
		Change:        change.Breakdown(settlement.ChangeDue),
		PartialAmount: partialAmount,
	}
	c.LastUpdated = s.now()
	snapshot := *c
	return &snapshot, nil
}

// Commit persists the settled checkout as a sale and closes the
// session. The sale header, items, stock decrements and promotion
// usage land in one transaction; notifications go out after.
func (s *Service) Commit(ctx context.Context, id uuid.UUID) (repo.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return repo.Sale{}, ErrNotFound
	}
	if c.Tender == nil {
		return repo.Sale{}, ErrNotSettled
	}

	sale := repo.Sale{
		ID:               uuid.New(),
		Subtotal:         c.Summary.Subtotal,
		Discount:         c.Summary.Discount,
		Total:            c.Summary.Total,
		Tendered:         c.Tender.Settlement.Tendered,
		ChangeDue:        c.Tender.Settlement.ChangeDue,
		Method:           string(c.Tender.Method),
		Partial:          c.Tender.Settlement.Partial,
		AmountPaid:       c.Tender.Settlement.AmountDue,
		RemainingBalance: c.Tender.Settlement.RemainingBalance,
		CustomerName:     c.CustomerName,
		CustomerPhone:    c.CustomerPhone,
		Notes:            c.Notes,
		CreatedAt:        s.now(),
	}
	if c.Selection.Promotion != nil {
		promoID := c.Selection.Promotion.ID
		sale.PromotionID = &promoID
	}

	items, err := s.saleItems(ctx, c.State)
	if err != nil {
		return repo.Sale{}, err
	}
	if err := s.Sales.Create(ctx, sale, items); err != nil {
		return repo.Sale{}, err
	}

	if obs.SalesCommittedTotal != nil {
		obs.SalesCommittedTotal.WithLabelValues(sale.Method, strconv.FormatBool(sale.Partial)).Inc()
	}
	if obs.SaleAmount != nil {
		obs.SaleAmount.Observe(float64(sale.Total))
	}
	if obs.PromotionsAppliedTotal != nil && c.Selection.Promotion != nil {
		obs.PromotionsAppliedTotal.WithLabelValues(string(c.Selection.Promotion.Kind)).Inc()
	}

	s.afterCommit(ctx, sale, items)
	delete(s.sessions, id)
	return sale, nil
}

func (s *Service) saleItems(ctx context.Context, state cart.State) ([]repo.SaleItem, error) {
	items := make([]repo.SaleItem, 0, len(state.Lines))
	for _, line := range state.Lines {
		name := line.ItemID()
		if p, err := s.Products.Product(ctx, line.ItemID()); err == nil {
			name = p.Name
		}
		item := repo.SaleItem{ProductID: line.ItemID(), Name: name, Total: line.Total()}
		switch l := line.(type) {
		case cart.UnitLine:
			item.Qty = int32(l.Qty)
			item.UnitPrice = l.UnitPrice
		case cart.WeightedLine:
			item.WeightMilli = l.Weight
			item.UnitPrice = l.PricePerUnit
		case cart.CustomPriceLine:
			item.Qty = int32(l.Qty)
			item.UnitPrice = l.Price
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) afterCommit(ctx context.Context, sale repo.Sale, items []repo.SaleItem) {
	for _, it := range items {
		if s.Cache != nil {
			s.Cache.Invalidate(ctx, it.ProductID)
		}
	}
	if s.Notify == nil {
		return
	}
	_ = s.Notify.SaleCommitted(ctx, sale.ID, sale.Total)
	if s.LowStockMark <= 0 {
		return
	}
	for _, it := range items {
		if it.Qty == 0 {
			continue
		}
		p, err := s.Products.Product(ctx, it.ProductID)
		if err != nil || !p.StockTracked {
			continue
		}
		if p.StockQuantity <= s.LowStockMark {
			_ = s.Notify.StockLow(ctx, it.ProductID, p.StockQuantity)
		}
	}
}

// apply runs one cart action and refreshes everything derived from the
// new state. A failed action leaves the checkout untouched.
func (s *Service) apply(ctx context.Context, c *Checkout, action cart.Action) (*Checkout, error) {
	next, err := cart.Apply(c.State, action)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, cart.ErrInvalidInput) {
			return nil, &ValidationError{Field: "line", Reason: err.Error()}
		}
		return nil, err
	}
	c.State = next
	c.Tender = nil
	if err := s.recompute(ctx, c); err != nil {
		return nil, err
	}
	c.LastUpdated = s.now()
	snapshot := *c
	return &snapshot, nil
}

func (s *Service) recompute(ctx context.Context, c *Checkout) error {
	var candidates []promotion.Promotion
	if s.Promotions != nil {
		var err error
		candidates, err = s.Promotions.Active(ctx)
		if err != nil {
			return fmt.Errorf("load promotions: %w", err)
		}
	}
	subtotal := pricing.Subtotal(c.State.Lines)
	c.Selection = promotion.Evaluate(promotion.Input{
		Lines:      promotionLines(c.State),
		Subtotal:   subtotal,
		Candidates: candidates,
		Enabled:    c.Enabled,
		PinnedID:   c.PinnedID,
	})
	c.Summary = pricing.Compute(c.State.Lines, c.Selection.Discount)
	return nil
}

// promotionLines projects cart lines into the evaluator's shape.
// Custom price lines are excluded: they are never promotion-eligible,
// though their totals still count toward the order subtotal. Weighted
// lines carry no quantity, which keeps them out of the quantity based
// promotion kinds.
func promotionLines(state cart.State) []promotion.Line {
	lines := make([]promotion.Line, 0, len(state.Lines))
	for _, line := range state.Lines {
		switch l := line.(type) {
		case cart.UnitLine:
			lines = append(lines, promotion.Line{
				ProductID: l.ProductID,
				Qty:       l.Qty,
				UnitPrice: l.UnitPrice,
				Total:     l.Total(),
			})
		case cart.WeightedLine:
			lines = append(lines, promotion.Line{ProductID: l.ProductID, Total: l.Total()})
		}
	}
	return lines
}
