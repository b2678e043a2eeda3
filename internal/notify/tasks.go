// Package notify publishes post-sale events onto the task queue and
// consumes them in the worker process. Enqueue failures never block a
// sale.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/noah-isme/pos-engine/internal/money"
)

// Task type names on the queue.
const (
	TypeSaleCommitted = "sale:committed"
	TypeStockLow      = "stock:low"
)

// SaleCommittedPayload announces a persisted sale.
type SaleCommittedPayload struct {
	SaleID string      `json:"saleId"`
	Total  money.Money `json:"total"`
}

// StockLowPayload flags a product at or under the low stock mark.
type StockLowPayload struct {
	ProductID string `json:"productId"`
	Remaining int    `json:"remaining"`
}

// Enqueuer publishes notification tasks.
type Enqueuer struct {
	Client *asynq.Client
}

// SaleCommitted enqueues a sale receipt event.
func (e *Enqueuer) SaleCommitted(ctx context.Context, saleID uuid.UUID, total money.Money) error {
	if e == nil || e.Client == nil {
		return nil
	}
	payload, err := json.Marshal(SaleCommittedPayload{SaleID: saleID.String(), Total: total})
	if err != nil {
		return fmt.Errorf("marshal sale payload: %w", err)
	}
	task := asynq.NewTask(TypeSaleCommitted, payload)
	_, err = e.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
	return err
}

// StockLow enqueues a replenishment alert.
func (e *Enqueuer) StockLow(ctx context.Context, productID string, remaining int) error {
	if e == nil || e.Client == nil {
		return nil
	}
	payload, err := json.Marshal(StockLowPayload{ProductID: productID, Remaining: remaining})
	if err != nil {
		return fmt.Errorf("marshal stock payload: %w", err)
	}
	task := asynq.NewTask(TypeStockLow, payload)
	_, err = e.Client.EnqueueContext(ctx, task, asynq.MaxRetry(3), asynq.Timeout(30*time.Second))
	return err
}
