package kernel

// DetailID identifies a line item within an order. Positive values are
// assigned by the backend; negative values are client placeholders for
// details created during an editing session. Zero means "no id".
type DetailID int64

// IsPersisted reports whether the id was assigned by the backend.
func (id DetailID) IsPersisted() bool {
	return id > 0
}

// IsPlaceholder reports whether the id was generated client-side.
func (id DetailID) IsPlaceholder() bool {
	return id < 0
}

// DetailIDAllocator hands out placeholder ids from the reserved negative
// space: -1, -2, ... skipping any id already reserved. Ids are never reused
// for the lifetime of the allocator, so soft-deleted and hard-deleted
// placeholders stay unique across the order's id history.
//
// DetailIDAllocator is not safe for concurrent use; it belongs to one
// editing session, which serializes access.
type DetailIDAllocator struct {
	next DetailID
	used map[DetailID]struct{}
}

// NewDetailIDAllocator returns an allocator that will never produce any of
// the given ids.
func NewDetailIDAllocator(reserved ...DetailID) *DetailIDAllocator {
	a := &DetailIDAllocator{next: -1, used: make(map[DetailID]struct{})}
	a.Reserve(reserved...)
	return a
}

// Reserve marks ids as used. Positive ids are accepted but can never
// collide with placeholders.
func (a *DetailIDAllocator) Reserve(ids ...DetailID) {
	for _, id := range ids {
		if id != 0 {
			a.used[id] = struct{}{}
		}
	}
}

// Next returns a fresh placeholder id and reserves it.
func (a *DetailIDAllocator) Next() DetailID {
	for {
		id := a.next
		a.next--
		if _, taken := a.used[id]; !taken {
			a.used[id] = struct{}{}
			return id
		}
	}
}
