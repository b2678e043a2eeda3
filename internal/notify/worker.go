package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Worker consumes notification tasks. Handlers only log today; a
// receipt printer or purchasing hook slots in behind the same task
// types later.
type Worker struct {
	Log zerolog.Logger
}

// Register mounts the worker's handlers on the mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeSaleCommitted, w.HandleSaleCommitted)
	mux.HandleFunc(TypeStockLow, w.HandleStockLow)
}

// HandleSaleCommitted processes a persisted sale event.
func (w *Worker) HandleSaleCommitted(ctx context.Context, task *asynq.Task) error {
	var payload SaleCommittedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal %s: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	w.Log.Info().
		Str("sale_id", payload.SaleID).
		Int64("total", payload.Total).
		Msg("sale committed")
	return nil
}

// HandleStockLow processes a low stock alert.
func (w *Worker) HandleStockLow(ctx context.Context, task *asynq.Task) error {
	var payload StockLowPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal %s: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	w.Log.Warn().
		Str("product_id", payload.ProductID).
		Int("remaining", payload.Remaining).
		Msg("stock low")
	return nil
}
