package session

import (
	"errors"
	"fmt"

	"github.com/noah-isme/pos-engine/internal/money"
)

// ErrNotFound indicates an unknown session or line.
var ErrNotFound = errors.New("session not found")

// ErrPromotionUnavailable indicates the pinned promotion no longer
// qualifies for the current cart.
var ErrPromotionUnavailable = errors.New("promotion unavailable")

// ErrNotSettled indicates commit was attempted before a satisfying
// tender was recorded.
var ErrNotSettled = errors.New("sale has not been settled")

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StockError reports an admission failure: the cart already holds
// InCart units and adding Requested more would exceed Available.
type StockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested", e.ProductID, e.Available, e.Requested)
}

// UnderpaidError reports a tender below the amount due without the
// partial payment flag.
type UnderpaidError struct {
	Due      money.Money
	Tendered money.Money
}

func (e *UnderpaidError) Error() string {
	return fmt.Sprintf("tendered %d below amount due %d", e.Tendered, e.Due)
}
