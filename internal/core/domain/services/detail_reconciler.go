package services

import (
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// Totals is the price summary of an editing session.
type Totals struct {
	// Delta is the signed change of the detail subtotals against the baseline.
	Delta int64
	// FinalTotal is the baseline order total plus Delta.
	FinalTotal int64
	// NewUnpaid is the baseline unpaid amount plus Delta, floored at zero.
	NewUnpaid int64
	// DetailsTotal is the plain sum of the working subtotals.
	DetailsTotal int64
}

// DetailReconciler merges working detail sets with baselines and prices the difference.
//
// Business rules:
//   - Baseline-derived details come first in baseline order, then session-only
//     details in creation order
//   - Fields changed this session win over the baseline; everything else is refreshed
//   - The order's stored total, not a sum of details, anchors the final total
type DetailReconciler struct{}

// NewDetailReconciler creates a new DetailReconciler instance.
func NewDetailReconciler() DetailReconciler {
	return DetailReconciler{}
}

// Merge rebases working onto a freshly fetched baseline.
//
// Details present in both take the working edits over the new baseline.
// Baseline details missing from working are carried forward unchanged, and
// working details with no baseline counterpart are appended verbatim.
// The inputs are not modified; every returned detail is a fresh copy.
func (DetailReconciler) Merge(baseline, working []*order.Detail) []*order.Detail {
	byID := make(map[kernel.DetailID]*order.Detail, len(working))
	for _, d := range working {
		if _, dup := byID[d.ID()]; !dup {
			byID[d.ID()] = d
		}
	}

	merged := make([]*order.Detail, 0, len(baseline)+len(working))
	matched := make(map[kernel.DetailID]struct{}, len(baseline))
	for _, base := range baseline {
		if w, ok := byID[base.ID()]; ok {
			merged = append(merged, w.Rebase(base))
			matched[base.ID()] = struct{}{}
			continue
		}
		merged = append(merged, base.Clone())
	}

	for _, w := range working {
		if _, ok := matched[w.ID()]; ok {
			continue
		}
		merged = append(merged, w.Clone())
		// a duplicated id is kept once
		matched[w.ID()] = struct{}{}
	}

	return merged
}

// ComputeDelta returns the signed price change of working against baseline.
//
// A matched detail contributes newSubTotal - baselineSubTotal, an unmatched
// working detail its full subtotal, and a baseline detail missing from
// working minus its subtotal.
func (DetailReconciler) ComputeDelta(working, baseline []*order.Detail) int64 {
	remaining := make(map[kernel.DetailID]*order.Detail, len(baseline))
	for _, b := range baseline {
		remaining[b.ID()] = b
	}

	var delta int64
	for _, w := range working {
		if b, ok := remaining[w.ID()]; ok {
			delta += w.SubTotal() - b.SubTotal()
			delete(remaining, w.ID())
			continue
		}
		delta += w.SubTotal()
	}
	for _, b := range remaining {
		delta -= b.SubTotal()
	}

	return delta
}

// ComputeFinalTotal anchors delta on the order's stored total.
func (DetailReconciler) ComputeFinalTotal(baselineTotal, delta int64) int64 {
	return baselineTotal + delta
}

// NewUnpaidAmount returns baselineUnpaid + delta, floored at zero.
// An overpayment is therefore reported as nothing owed rather than a credit.
func (DetailReconciler) NewUnpaidAmount(baselineUnpaid, delta int64) int64 {
	return max(0, baselineUnpaid+delta)
}

// DetailsTotal sums the subtotals of details.
func (DetailReconciler) DetailsTotal(details []*order.Detail) int64 {
	var total int64
	for _, d := range details {
		total += d.SubTotal()
	}
	return total
}

// Totals computes the full price summary of working against the baseline order and details.
func (r DetailReconciler) Totals(baselineOrder *order.Order, baseline, working []*order.Detail) Totals {
	delta := r.ComputeDelta(working, baseline)
	return Totals{
		Delta:        delta,
		FinalTotal:   r.ComputeFinalTotal(baselineOrder.TotalPrice(), delta),
		NewUnpaid:    r.NewUnpaidAmount(baselineOrder.UnpaidAmount(), delta),
		DetailsTotal: r.DetailsTotal(working),
	}
}
