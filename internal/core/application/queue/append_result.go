package queue

import (
	"slices"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// AppendResult is the outcome of one append job: either persisted, carrying
// the state the backend confirmed, or failed, carrying the error and the
// optimistic images still held locally so the caller may roll them back.
type AppendResult struct {
	jobID uuid.UUID
	code  kernel.OrderCode

	err    error
	order  *order.Order
	images []string
}

// Persisted builds a successful result. o is nil when the backend returned no order.
func Persisted(jobID uuid.UUID, code kernel.OrderCode, o *order.Order, images []string) AppendResult {
	return AppendResult{jobID: jobID, code: code, order: o, images: slices.Clone(images)}
}

// Failed builds a failed result. staleImages is the optimistic list left in
// local state, nil if nothing was written.
func Failed(jobID uuid.UUID, code kernel.OrderCode, err error, staleImages []string) AppendResult {
	return AppendResult{jobID: jobID, code: code, err: err, images: slices.Clone(staleImages)}
}

// JobID returns the id of the job that produced the result.
func (r AppendResult) JobID() uuid.UUID {
	return r.jobID
}

// OrderCode returns the order the job appended to.
func (r AppendResult) OrderCode() kernel.OrderCode {
	return r.code
}

// IsPersisted reports whether the backend accepted the append.
func (r AppendResult) IsPersisted() bool {
	return r.err == nil
}

// Err returns the failure reason, nil when persisted.
func (r AppendResult) Err() error {
	return r.err
}

// Order returns the order confirmed by the backend, if it sent one.
func (r AppendResult) Order() (*order.Order, bool) {
	return r.order, r.order != nil
}

// Images returns the persisted image list, or the stale optimistic list on failure.
func (r AppendResult) Images() []string {
	return slices.Clone(r.images)
}
