package services

import (
	"github.com/shopspring/decimal"
)

// PricingCatalog resolves the catalog facts pricing depends on.
type PricingCatalog interface {
	// ContainerBasePrice returns the base price of a container type.
	ContainerBasePrice(containerTypeID int64) (decimal.Decimal, bool)

	// ProductTypeName returns the display name of a product type.
	ProductTypeName(productTypeID int64) (string, bool)
}

var hundred = decimal.NewFromInt(100)

// PricingEngine computes unit prices as
//
//	round(basePrice(container) * (1 + surcharge(productTypes) / 100))
//
// It implements order.PriceCalculator.
type PricingEngine struct {
	catalog PricingCatalog
	table   SurchargeTable
}

// NewPricingEngine creates a PricingEngine over catalog with the given surcharge table.
func NewPricingEngine(catalog PricingCatalog, table SurchargeTable) *PricingEngine {
	return &PricingEngine{catalog: catalog, table: table}
}

// BasePrice returns the container's base price, or zero if it is unknown.
func (e *PricingEngine) BasePrice(containerTypeID int64) decimal.Decimal {
	if e.catalog == nil {
		return decimal.Zero
	}
	price, ok := e.catalog.ContainerBasePrice(containerTypeID)
	if !ok || price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// SurchargePercent sums the surcharge of every product type with a known name.
func (e *PricingEngine) SurchargePercent(productTypeIDs []int64) int64 {
	if e.catalog == nil {
		return 0
	}
	names := make([]string, 0, len(productTypeIDs))
	for _, id := range productTypeIDs {
		if name, ok := e.catalog.ProductTypeName(id); ok {
			names = append(names, name)
		}
	}
	return e.table.Percent(names...)
}

// ComputePrice returns the rounded unit price. Halves round away from zero.
func (e *PricingEngine) ComputePrice(containerTypeID int64, productTypeIDs []int64) int64 {
	base := e.BasePrice(containerTypeID)
	if base.IsZero() {
		return 0
	}
	pct := decimal.NewFromInt(e.SurchargePercent(productTypeIDs))
	factor := decimal.NewFromInt(1).Add(pct.Div(hundred))
	return base.Mul(factor).Round(0).IntPart()
}
