// Package order provides the order aggregate and its line items together with
// the fulfillment step state machine.
//
// The package includes:
//   - Step: the fixed, ordered fulfillment lifecycle with an explicit Unknown sentinel
//   - Order: the aggregate loaded from the backend; this engine only mutates its
//     images, totals and editable metadata, never its status directly
//   - Detail: a billable line item whose subtotal is always derived from its inputs
//
// Key business rules:
//   - Steps run pending -> wait-pick-up -> verify -> checkout -> picked-up -> delivered
//   - An unrecognised backend status maps to Unknown, never to the first step
//   - subTotal == price * quantity * containerQuantity after every mutation
//   - The order's image list is append-only and free of duplicates
package order
