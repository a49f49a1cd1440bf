// Package session owns the in-memory editing state of orders: one working
// copy per order being edited plus the latest known state of every order
// the process has touched.
package session

import (
	"slices"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// SubmitStatus is the status sent with every submitted edit.
const SubmitStatus = "verify"

// DetailView is a working detail as presented to clients.
type DetailView struct {
	order.DetailSnapshot
	AutoPriced  bool
	SoftDeleted bool
	New         bool
}

// EditSession is the working copy of one order's line items and metadata
// against the baseline last fetched from the backend. It is safe for
// concurrent use.
type EditSession struct {
	mu sync.Mutex

	code          kernel.OrderCode
	baselineOrder *order.Order
	baseline      []*order.Detail
	working       *order.Order
	details       []*order.Detail
	allocator     *kernel.DetailIDAllocator

	pricer     order.PriceCalculator
	reconciler services.DetailReconciler

	now        func() time.Time
	lastAccess time.Time
}

func newEditSession(
	o *order.Order,
	details []*order.Detail,
	pricer order.PriceCalculator,
	now func() time.Time,
) *EditSession {
	s := &EditSession{
		code:       o.Code(),
		pricer:     pricer,
		reconciler: services.NewDetailReconciler(),
		now:        now,
		allocator:  kernel.NewDetailIDAllocator(),
	}
	s.resetLocked(o, details)
	s.lastAccess = now()
	return s
}

// resetLocked installs a new baseline and replaces the working copy with it.
func (s *EditSession) resetLocked(o *order.Order, details []*order.Detail) {
	s.baselineOrder = o.Clone()
	s.working = o.Clone()
	s.baseline = s.identify(details)
	s.details = cloneDetails(s.baseline)
}

// identify gives details the backend sent without an id a placeholder id and
// reserves every id so new details never collide with them. Id-less details
// take the placeholders of the current baseline in order, so the same row
// keeps its id across refreshes.
func (s *EditSession) identify(details []*order.Detail) []*order.Detail {
	var reuse []kernel.DetailID
	for _, d := range s.baseline {
		if d.ID().IsPlaceholder() {
			reuse = append(reuse, d.ID())
		}
	}
	for _, d := range details {
		s.allocator.Reserve(d.ID())
	}

	out := make([]*order.Detail, 0, len(details))
	for _, d := range details {
		if d.ID() == 0 {
			snap := d.Snapshot()
			if len(reuse) > 0 {
				snap.ID, reuse = reuse[0], reuse[1:]
			} else {
				snap.ID = s.allocator.Next()
			}
			d = order.RestoreDetail(snap)
		}
		out = append(out, d.Clone())
	}
	return out
}

// Code returns the order code of the session.
func (s *EditSession) Code() kernel.OrderCode {
	return s.code
}

// LastAccess returns when the session was last used.
func (s *EditSession) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

func (s *EditSession) touch() {
	s.lastAccess = s.now()
}

// AddDetail appends a new session-only detail and returns its placeholder id.
func (s *EditSession) AddDetail() kernel.DetailID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	d := order.NewDetail(s.allocator.Next(), s.pricer)
	s.details = append(s.details, d)
	return d.ID()
}

// UpdateDetail applies patch to the working detail with the given id.
func (s *EditSession) UpdateDetail(id kernel.DetailID, patch order.DetailPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	d, _ := s.findLocked(id)
	if d == nil {
		return errs.NewObjectNotFoundError("detail", id)
	}
	d.ApplyPatch(patch, s.pricer)
	return nil
}

// RemoveDetail soft-deletes a detail that exists in the baseline and drops a
// session-only detail outright.
func (s *EditSession) RemoveDetail(id kernel.DetailID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	d, idx := s.findLocked(id)
	if d == nil {
		return errs.NewObjectNotFoundError("detail", id)
	}
	if s.inBaselineLocked(id) {
		d.SoftDelete()
		return nil
	}
	s.details = slices.Delete(s.details, idx, idx+1)
	return nil
}

// UpdateOrderMeta applies patch to the working order metadata.
func (s *EditSession) UpdateOrderMeta(patch order.MetaPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.working.ApplyMeta(patch)
}

// Rebase merges a freshly fetched baseline into the working copy. Metadata
// not edited this session follows the new baseline order.
func (s *EditSession) Rebase(o *order.Order, details []*order.Detail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.rebaseLocked(o, details, s.details, s.editedMetaLocked(s.baselineOrder.Snapshot()))
}

// Commit installs the response to a submit of sent as the new baseline.
// Whatever sent carried is taken from the response; edits made after sent
// was built are kept on top of it.
//
// Session-only details that were sent are matched to the response by id, or
// by position when the response has one row per sent row. Sent details the
// response no longer contains are dropped unless they were edited again.
func (s *EditSession) Commit(sent ports.SubmitPayload, o *order.Order, details []*order.Detail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	sentAt := make(map[kernel.DetailID]int, len(sent.Details))
	for i, d := range sent.Details {
		sentAt[d.ID] = i
	}
	positional := len(details) == len(sent.Details)
	if positional {
		details = slices.Clone(details)
		for i, d := range details {
			if d.ID() == 0 && sent.Details[i].ID.IsPlaceholder() {
				snap := d.Snapshot()
				snap.ID = sent.Details[i].ID
				details[i] = order.RestoreDetail(snap)
			}
		}
	}
	returned := make(map[kernel.DetailID]struct{}, len(details))
	for _, d := range details {
		returned[d.ID()] = struct{}{}
	}

	working := make([]*order.Detail, 0, len(s.details))
	for _, d := range s.details {
		idx, wasSent := sentAt[d.ID()]
		if !wasSent {
			working = append(working, d)
			continue
		}

		id := d.ID()
		if _, ok := returned[id]; !ok && id.IsPlaceholder() && positional {
			id = details[idx].ID()
		}
		settled := d.Settle(id, sent.Details[idx])
		if _, ok := returned[id]; !ok && (id == 0 || settled.Touched() == 0) {
			continue
		}
		working = append(working, settled)
	}

	s.rebaseLocked(o, details, working, s.editedMetaLocked(sent.Order))
}

// rebaseLocked installs o and details as the new baseline and merges working
// onto it, then applies the edited metadata over the new working order.
func (s *EditSession) rebaseLocked(o *order.Order, details, working []*order.Detail, edited order.MetaPatch) {
	baseline := s.identify(details)
	working = s.withoutRemovedLocked(working, baseline)

	merged := s.reconciler.Merge(baseline, working)
	for _, d := range merged {
		d.Reprice(s.pricer)
	}
	s.details = merged
	s.baseline = baseline

	s.baselineOrder = o.Clone()
	s.working = o.Clone()
	s.working.ApplyMeta(edited)
}

// withoutRemovedLocked drops soft-deleted details of the current baseline
// that the backend no longer reports.
func (s *EditSession) withoutRemovedLocked(working, baseline []*order.Detail) []*order.Detail {
	out := make([]*order.Detail, 0, len(working))
	for _, d := range working {
		if d.IsZeroed() && s.inBaselineLocked(d.ID()) && !containsID(baseline, d.ID()) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Reprice recomputes every auto-priced working detail and returns how many changed.
func (s *EditSession) Reprice() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, d := range s.details {
		if d.Reprice(s.pricer) {
			changed++
		}
	}
	return changed
}

// Totals returns the price summary of the working copy.
func (s *EditSession) Totals() services.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.Totals(s.baselineOrder, s.baseline, s.details)
}

// Details returns the working details in presentation order.
func (s *EditSession) Details() []DetailView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]DetailView, 0, len(s.details))
	for _, d := range s.details {
		inBaseline := s.inBaselineLocked(d.ID())
		views = append(views, DetailView{
			DetailSnapshot: d.Snapshot(),
			AutoPriced:     d.IsAutoPriced(),
			SoftDeleted:    inBaseline && d.Quantity() == 0,
			New:            !inBaseline,
		})
	}
	return views
}

// WorkingDetails returns copies of the working details.
func (s *EditSession) WorkingDetails() []*order.Detail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDetails(s.details)
}

// Order returns a copy of the working order.
func (s *EditSession) Order() *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Clone()
}

// BuildPayload produces the full-replacement update for the working copy.
func (s *EditSession) BuildPayload() ports.SubmitPayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := s.reconciler.Totals(s.baselineOrder, s.baseline, s.details)

	meta := s.working.Snapshot()
	meta.Status = SubmitStatus
	meta.TotalPrice = totals.FinalTotal
	meta.UnpaidAmount = totals.NewUnpaid
	meta.Images = nil

	details := make([]order.DetailSnapshot, len(s.details))
	for i, d := range s.details {
		details[i] = d.Snapshot()
	}

	return ports.SubmitPayload{Order: meta, Details: details}
}

func (s *EditSession) findLocked(id kernel.DetailID) (*order.Detail, int) {
	for i, d := range s.details {
		if d.ID() == id {
			return d, i
		}
	}
	return nil, -1
}

func (s *EditSession) inBaselineLocked(id kernel.DetailID) bool {
	return containsID(s.baseline, id)
}

func containsID(details []*order.Detail, id kernel.DetailID) bool {
	return slices.ContainsFunc(details, func(d *order.Detail) bool { return d.ID() == id })
}

// editedMetaLocked returns the working metadata fields that differ from ref.
func (s *EditSession) editedMetaLocked(ref order.Snapshot) order.MetaPatch {
	var patch order.MetaPatch
	diff := func(working, ref string) *string {
		if working == ref {
			return nil
		}
		return &working
	}
	w := s.working.Contact()
	patch.CustomerName = diff(w.CustomerName, ref.Contact.CustomerName)
	patch.Phone = diff(w.Phone, ref.Contact.Phone)
	patch.Email = diff(w.Email, ref.Contact.Email)
	patch.Address = diff(w.Address, ref.Contact.Address)
	patch.Note = diff(s.working.Note(), ref.Note)
	patch.DepositDate = diff(s.working.DepositDate(), ref.DepositDate)
	patch.ReturnDate = diff(s.working.ReturnDate(), ref.ReturnDate)
	return patch
}

func cloneDetails(details []*order.Detail) []*order.Detail {
	out := make([]*order.Detail, len(details))
	for i, d := range details {
		out[i] = d.Clone()
	}
	return out
}
