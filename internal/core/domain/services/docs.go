// Package services provides domain services that compute over orders and their
// line items without owning any state of their own.
//
// The package includes:
//   - PricingEngine: unit price of a detail from catalog lookups and surcharge rules
//   - SurchargeTable: the ordered product type surcharge policy
//   - DetailReconciler: merges an edited detail set with a fresh backend set and
//     computes the order level price delta
package services
