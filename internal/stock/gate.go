// Package stock implements the admission check that keeps a cart
// quantity from exceeding known available stock. Stock levels arrive as
// snapshots supplied by the caller; the gate itself performs no I/O.
package stock

// Result reports the outcome of an admission check. When the check
// fails it carries the numbers the restock flow needs to prompt with.
type Result struct {
	Accepted       bool
	Available      int
	RequestedTotal int
}

// Check admits an increment when the available stock covers the cart's
// current quantity plus the request. Equality on the boundary is
// accepted. The check applies to stock-tracked unit lines only; callers
// do not gate weighed goods.
func Check(available, inCart, increment int) Result {
	requested := inCart + increment
	if available >= requested {
		return Result{Accepted: true, Available: available, RequestedTotal: requested}
	}
	return Result{Available: available, RequestedTotal: requested}
}
