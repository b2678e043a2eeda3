package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/pos-engine/internal/cart"
	"github.com/noah-isme/pos-engine/internal/change"
	"github.com/noah-isme/pos-engine/internal/common"
	"github.com/noah-isme/pos-engine/internal/money"
	"github.com/noah-isme/pos-engine/internal/payment"
	"github.com/noah-isme/pos-engine/internal/repo"
)

// Handler wires the checkout service to HTTP. Idem, when set, guards
// the commit endpoint against duplicate submissions.
type Handler struct {
	Svc      *Service
	Idem     func(http.Handler) http.Handler
	Currency string
}

type addItemPayload struct {
	ProductID   string  `json:"productId" validate:"required"`
	Qty         int     `json:"qty" validate:"gte=0"`
	Weight      string  `json:"weight"`
	CustomPrice *string `json:"customPrice"`
	TargetLine  string  `json:"targetLine"`
}

type quantityPayload struct {
	Qty int `json:"qty"`
}

type weightPayload struct {
	Weight string `json:"weight" validate:"required"`
}

type promotionsPayload struct {
	Enabled  *bool  `json:"enabled"`
	PinnedID string `json:"pinnedId"`
}

type customerPayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type restockPayload struct {
	Qty int `json:"qty" validate:"required,gt=0"`
}

type tenderPayload struct {
	Method        string `json:"method" validate:"required,oneof=cash card credit"`
	Tendered      string `json:"tendered" validate:"required"`
	Partial       bool   `json:"partial"`
	PartialAmount string `json:"partialAmount"`
}

// Routes mounts the checkout endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/checkout/sessions", h.Create)
	r.Get("/checkout/sessions/{id}", h.Get)
	r.Post("/checkout/sessions/{id}/items", h.AddItem)
	r.Put("/checkout/sessions/{id}/items/{lineId}/quantity", h.SetQuantity)
	r.Put("/checkout/sessions/{id}/items/{lineId}/weight", h.SetWeight)
	r.Delete("/checkout/sessions/{id}/items/{lineId}", h.RemoveLine)
	r.Post("/checkout/sessions/{id}/reset", h.Reset)
	r.Put("/checkout/sessions/{id}/customer", h.SetCustomer)
	r.Put("/checkout/sessions/{id}/promotions", h.SetPromotions)
	r.Post("/checkout/sessions/{id}/tender", h.RecordTender)
	if h.Idem != nil {
		r.With(h.Idem).Post("/checkout/sessions/{id}/commit", h.Commit)
	} else {
		r.Post("/checkout/sessions/{id}/commit", h.Commit)
	}
	r.Post("/products/{productId}/restock", h.Restock)
}

// Create opens a new checkout session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": h.checkoutView(c)})
}

// Get returns the current session snapshot.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.checkoutView(c)})
}

// AddItem adds a product to the cart, gated on stock for tracked
// unit products.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var payload addItemPayload
	if !h.decode(w, r, &payload) {
		return
	}
	in := AddItemInput{ProductID: payload.ProductID, Qty: payload.Qty}
	if payload.Weight != "" {
		weight, err := money.ParseWeight(payload.Weight)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid weight", nil)
			return
		}
		in.Weight = weight
	}
	if payload.CustomPrice != nil {
		price, err := money.ParseAmount(*payload.CustomPrice)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid custom price", nil)
			return
		}
		in.CustomPrice = &price
	}
	if payload.TargetLine != "" {
		target, err := uuid.Parse(payload.TargetLine)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid target line id", nil)
			return
		}
		in.Target = target
	}
	c, err := h.Svc.AddItem(r.Context(), id, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.checkoutView(c)})
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	lineID, ok := h.lineID(w, r)
	if !ok {
		return
	}
	var payload quantityPayload
	if !h.decode(w, r, &payload) {
		return
	}
	c, err := h.Svc.SetQuantity(r.Context(), id, lineID, payload.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.checkoutView(c)})
}

// SetWeight replaces a weighted line's weight; zero removes the line.
func (h *Handler) SetWeight(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	lineID, ok := h.lineID(w, r)
	if !ok {
		return
	}
	var payload weightPayload
	if !h.decode(w, r, &payload) {
		return
	}
	weight, err := money.ParseWeight(payload.Weight)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid weight", nil)
		return
	}
	c, err := h.Svc.SetWeight(r.Context(), id, lineID, weight)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.checkoutView(c)})
}

// RemoveLine deletes a line.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	lineID, ok := h.lineID(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.RemoveLine(r.Context(), id, lineID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.checkoutView(c)})
}

// Reset empties the cart.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Reset(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.checkoutView(c)})
}

// SetPromotions toggles promotion evaluation or pins a promotion.
func (h *Handler) SetPromotions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var payload promotionsPayload
	if !h.decode(w, r, &payload) {
		return
	}
	current, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	enabled := current.Enabled
	if payload.Enabled != nil {
		enabled = *payload.Enabled
	}
	c, err := h.Svc.SetPromotions(r.Context(), id, enabled, payload.PinnedID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.checkoutView(c)})
}

// SetCustomer attaches customer details to the session.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var payload customerPayload
	if !h.decode(w, r, &payload) {
		return
	}
	c, err := h.Svc.SetCustomer(r.Context(), id, payload.Name, payload.Phone, payload.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.checkoutView(c)})
}

// Restock raises stock so a rejected add can be retried.
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "missing product id", nil)
		return
	}
	var payload restockPayload
	if !h.decode(w, r, &payload) {
		return
	}
	updated, err := h.Svc.Restock(r.Context(), productID, payload.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"productId":     productID,
			"stockQuantity": updated,
		},
	})
}

// RecordTender validates a payment against the amount due.
func (h *Handler) RecordTender(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var payload tenderPayload
	if !h.decode(w, r, &payload) {
		return
	}
	tendered, err := money.ParseAmount(payload.Tendered)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid tendered amount", nil)
		return
	}
	var partialAmount money.Money
	if payload.PartialAmount != "" {
		partialAmount, err = money.ParseAmount(payload.PartialAmount)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid partial amount", nil)
			return
		}
	}
	c, err := h.Svc.RecordTender(r.Context(), id, payment.Method(payload.Method), tendered, payload.Partial, partialAmount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.checkoutView(c)})
}

// Commit persists the settled session as a sale.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	sale, err := h.Svc.Commit(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": h.saleView(sale)})
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid session id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) lineID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "lineId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid line id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid request body", nil)
		return false
	}
	if err := common.Validate(dst); err != nil {
		var fields validator.ValidationErrors
		details := map[string]any{}
		if errors.As(err, &fields) {
			for _, f := range fields {
				details[f.Field()] = f.Tag()
			}
		}
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "request failed validation", details)
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	var stockErr *StockError
	var underpaid *UnderpaidError
	switch {
	case errors.As(err, &vErr):
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", vErr.Error(), map[string]any{"field": vErr.Field})
	case errors.As(err, &stockErr):
		common.JSONError(w, http.StatusConflict, "STOCK_INSUFFICIENT", stockErr.Error(), map[string]any{
			"productId":      stockErr.ProductID,
			"available":      stockErr.Available,
			"requestedTotal": stockErr.Requested,
		})
	case errors.As(err, &underpaid):
		common.JSONError(w, http.StatusUnprocessableEntity, "SETTLEMENT_UNDERPAID", underpaid.Error(), map[string]any{
			"amountDue": money.FormatAmount(underpaid.Due),
			"tendered":  money.FormatAmount(underpaid.Tendered),
		})
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "session or line not found", nil)
	case errors.Is(err, ErrNotSettled):
		common.JSONError(w, http.StatusConflict, "NOT_SETTLED", "record a tender before committing", nil)
	case errors.Is(err, ErrPromotionUnavailable):
		common.JSONError(w, http.StatusConflict, "PROMOTION_UNAVAILABLE", "pinned promotion no longer qualifies", nil)
	case errors.Is(err, repo.ErrStockConflict):
		common.JSONError(w, http.StatusConflict, "STOCK_CONFLICT", "stock changed during commit, review the cart", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
	}
}

type lineView struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	ProductID string `json:"productId"`
	Qty       int    `json:"qty,omitempty"`
	Weight    string `json:"weight,omitempty"`
	UnitPrice string `json:"unitPrice"`
	Total     string `json:"total"`
}

type promotionView struct {
	Enabled           bool   `json:"enabled"`
	AppliedID         string `json:"appliedId,omitempty"`
	AppliedName       string `json:"appliedName,omitempty"`
	Discount          string `json:"discount"`
	Pinned            bool   `json:"pinned"`
	PinnedUnavailable bool   `json:"pinnedUnavailable,omitempty"`
}

type tenderView struct {
	Method           string         `json:"method"`
	Tendered         string         `json:"tendered"`
	Partial          bool           `json:"partial"`
	AmountDue        string         `json:"amountDue"`
	RemainingBalance string         `json:"remainingBalance"`
	ChangeDue        string         `json:"changeDue"`
	Change           []change.Entry `json:"change,omitempty"`
}

type customerView struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

type checkoutJSON struct {
	ID        string        `json:"id"`
	Currency  string        `json:"currency,omitempty"`
	Lines     []lineView    `json:"lines"`
	Subtotal  string        `json:"subtotal"`
	Discount  string        `json:"discount"`
	Tax       string        `json:"tax"`
	Total     string        `json:"total"`
	Promotion promotionView `json:"promotion"`
	Customer  *customerView `json:"customer,omitempty"`
	Tender    *tenderView   `json:"tender,omitempty"`
}

func (h *Handler) checkoutView(c *Checkout) checkoutJSON {
	view := checkoutJSON{
		ID:       c.ID.String(),
		Currency: h.Currency,
		Lines:    make([]lineView, 0, len(c.State.Lines)),
		Subtotal: money.FormatAmount(c.Summary.Subtotal),
		Discount: money.FormatAmount(c.Summary.Discount),
		Tax:      money.FormatAmount(c.Summary.Tax),
		Total:    money.FormatAmount(c.Summary.Total),
		Promotion: promotionView{
			Enabled:           c.Enabled,
			Discount:          money.FormatAmount(c.Selection.Discount),
			Pinned:            c.Selection.Pinned,
			PinnedUnavailable: c.Selection.PinnedUnavailable,
		},
	}
	if c.Selection.Promotion != nil {
		view.Promotion.AppliedID = c.Selection.Promotion.ID
		view.Promotion.AppliedName = c.Selection.Promotion.Name
	}
	if c.CustomerName != "" || c.CustomerPhone != "" || c.Notes != "" {
		view.Customer = &customerView{Name: c.CustomerName, Phone: c.CustomerPhone, Notes: c.Notes}
	}
	for _, line := range c.State.Lines {
		lv := lineView{
			ID:        line.LineID().String(),
			ProductID: line.ItemID(),
			Total:     money.FormatAmount(line.Total()),
		}
		switch l := line.(type) {
		case cart.UnitLine:
			lv.Type = "unit"
			lv.Qty = l.Qty
			lv.UnitPrice = money.FormatAmount(l.UnitPrice)
		case cart.WeightedLine:
			lv.Type = "weighted"
			lv.Weight = money.FormatWeight(l.Weight)
			lv.UnitPrice = money.FormatAmount(l.PricePerUnit)
		case cart.CustomPriceLine:
			lv.Type = "custom"
			lv.Qty = l.Qty
			lv.UnitPrice = money.FormatAmount(l.Price)
		}
		view.Lines = append(view.Lines, lv)
	}
	if c.Tender != nil {
		view.Tender = &tenderView{
			Method:           string(c.Tender.Method),
			Tendered:         money.FormatAmount(c.Tender.Settlement.Tendered),
			Partial:          c.Tender.Settlement.Partial,
			AmountDue:        money.FormatAmount(c.Tender.Settlement.AmountDue),
			RemainingBalance: money.FormatAmount(c.Tender.Settlement.RemainingBalance),
			ChangeDue:        money.FormatAmount(c.Tender.Settlement.ChangeDue),
			Change:           c.Tender.Change,
		}
	}
	return view
}

type saleJSON struct {
	ID               string `json:"id"`
	Currency         string `json:"currency,omitempty"`
	Subtotal         string `json:"subtotal"`
	Discount         string `json:"discount"`
	Total            string `json:"total"`
	Tendered         string `json:"tendered"`
	ChangeDue        string `json:"changeDue"`
	Method           string `json:"method"`
	Partial          bool   `json:"partial"`
	AmountPaid       string `json:"amountPaid"`
	RemainingBalance string `json:"remainingBalance"`
}

func (h *Handler) saleView(sale repo.Sale) saleJSON {
	return saleJSON{
		ID:               sale.ID.String(),
		Currency:         h.Currency,
		Subtotal:         money.FormatAmount(sale.Subtotal),
		Discount:         money.FormatAmount(sale.Discount),
		Total:            money.FormatAmount(sale.Total),
		Tendered:         money.FormatAmount(sale.Tendered),
		ChangeDue:        money.FormatAmount(sale.ChangeDue),
		Method:           sale.Method,
		Partial:          sale.Partial,
		AmountPaid:       money.FormatAmount(sale.AmountPaid),
		RemainingBalance: money.FormatAmount(sale.RemainingBalance),
	}
}
