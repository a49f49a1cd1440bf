package commands

import (
	"sync"

	"fulfillment/internal/pkg/errs"
)

// SingleFlight is a set of busy flags keyed by operation and order. A second
// caller for a busy key is rejected instead of waiting.
type SingleFlight struct {
	busy sync.Map
}

// NewSingleFlight creates an empty SingleFlight.
func NewSingleFlight() *SingleFlight {
	return &SingleFlight{}
}

// Acquire raises the busy flag for operation on key. It returns a release
// func, or a BusyError if the flag is already raised.
func (f *SingleFlight) Acquire(operation, key string) (func(), error) {
	flag := operation + "/" + key
	if _, loaded := f.busy.LoadOrStore(flag, struct{}{}); loaded {
		return nil, errs.NewBusyError(operation, key)
	}
	return func() { f.busy.Delete(flag) }, nil
}

// IsBusy reports whether operation is in flight for key.
func (f *SingleFlight) IsBusy(operation, key string) bool {
	_, ok := f.busy.Load(operation + "/" + key)
	return ok
}
