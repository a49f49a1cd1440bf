package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// CatalogKind names one of the lookup tables.
type CatalogKind string

const (
	CatalogContainerTypes CatalogKind = "container-types"
	CatalogProductTypes   CatalogKind = "product-types"
	CatalogServiceTypes   CatalogKind = "service-types"
	CatalogStorageTypes   CatalogKind = "storage-types"
	CatalogShelfTypes     CatalogKind = "shelf-types"
)

// CatalogKinds lists every lookup table.
func CatalogKinds() []CatalogKind {
	return []CatalogKind{
		CatalogContainerTypes,
		CatalogProductTypes,
		CatalogServiceTypes,
		CatalogStorageTypes,
		CatalogShelfTypes,
	}
}

// CatalogEntry is one row of a lookup table. Price is zero for tables that carry none.
type CatalogEntry struct {
	ID     int64
	Name   string
	Price  decimal.Decimal
	Active bool
}

// CatalogBackend fetches the lookup tables.
type CatalogBackend interface {
	GetCatalog(ctx context.Context, kind CatalogKind) ([]CatalogEntry, error)
}
