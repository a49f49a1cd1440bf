package order

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
)

// Field identifies an editable detail field. Fields combine into a bitmask
// recording what the user changed during a session.
type Field uint8

const (
	FieldQuantity Field = 1 << iota
	FieldContainerQuantity
	FieldPrice
	FieldContainerType
	FieldProductTypes
	FieldServices
	FieldPlacement
)

// Has reports whether every bit of other is set in f.
func (f Field) Has(other Field) bool {
	return f&other == other
}

// PriceCalculator computes the unit price of a container holding the given product types.
type PriceCalculator interface {
	ComputePrice(containerTypeID int64, productTypeIDs []int64) int64
}

// Placement holds the storage bookkeeping a detail carries through to the
// backend untouched by pricing.
type Placement struct {
	Name          string
	StorageCode   *string
	ContainerCode string
	StorageTypeID *int64
	ShelfTypeID   *int64
	ShelfQuantity *int64
	Image         *string
}

// DetailSnapshot is the canonical typed shape of a line item.
// SubTotal is informational: RestoreDetail always recomputes it.
type DetailSnapshot struct {
	ID                kernel.DetailID
	ContainerTypeID   int64
	ContainerQuantity int64
	ProductTypeIDs    []int64
	ServiceIDs        []int64
	Price             int64
	Quantity          int64
	SubTotal          int64
	Placement         Placement
}

// DetailPatch is a partial edit of a detail. Nil fields are left unchanged.
//
// When the container type or product types are present the price is
// recomputed and any Price in the same patch is ignored.
type DetailPatch struct {
	ContainerTypeID   *int64
	ProductTypeIDs    *[]int64
	ServiceIDs        *[]int64
	Price             *int64
	Quantity          *int64
	ContainerQuantity *int64
	ContainerCode     *string
	StorageCode       *string
	Image             *string
}

// Detail is a billable line item of an order.
//
// Detail follows these invariants:
//   - subTotal == price * quantity * containerQuantity after every mutation
//   - quantity, containerQuantity and price are never negative
//   - productTypeIDs and serviceIDs are sets: no duplicates, first-seen order
type Detail struct {
	id kernel.DetailID

	containerTypeID   int64
	containerQuantity int64
	productTypeIDs    []int64
	serviceIDs        []int64
	price             int64
	quantity          int64
	subTotal          int64

	// autoPriced is true while the price follows the catalog.
	autoPriced bool

	touched   Field
	placement Placement
}

// NewDetail creates a session-only detail with one container of no type.
// It is auto-priced from the start.
func NewDetail(id kernel.DetailID, calc PriceCalculator) *Detail {
	d := &Detail{
		id:                id,
		containerQuantity: 1,
		quantity:          1,
		autoPriced:        true,
	}
	d.Reprice(calc)
	d.recompute()
	return d
}

// RestoreDetail builds a detail from a backend snapshot. The backend price is
// kept (not auto-priced) until the user changes the container or product types.
func RestoreDetail(s DetailSnapshot) *Detail {
	d := &Detail{
		id:                s.ID,
		containerTypeID:   s.ContainerTypeID,
		containerQuantity: CoerceQuantity(s.ContainerQuantity),
		productTypeIDs:    uniqueIDs(s.ProductTypeIDs),
		serviceIDs:        uniqueIDs(s.ServiceIDs),
		price:             CoerceQuantity(s.Price),
		quantity:          CoerceQuantity(s.Quantity),
		placement:         s.Placement,
	}
	d.recompute()
	return d
}

// ID returns the detail id. Negative ids are session placeholders.
func (d *Detail) ID() kernel.DetailID {
	return d.id
}

// ContainerTypeID returns the container type, 0 when none is chosen yet.
func (d *Detail) ContainerTypeID() int64 {
	return d.containerTypeID
}

// ContainerQuantity returns how many containers the detail covers.
func (d *Detail) ContainerQuantity() int64 {
	return d.containerQuantity
}

// ProductTypeIDs returns a copy of the product type set in first-seen order.
func (d *Detail) ProductTypeIDs() []int64 {
	return slices.Clone(d.productTypeIDs)
}

// ServiceIDs returns a copy of the service set in first-seen order.
func (d *Detail) ServiceIDs() []int64 {
	return slices.Clone(d.serviceIDs)
}

// Price returns the unit price in currency units.
func (d *Detail) Price() int64 {
	return d.price
}

// Quantity returns the item quantity per container.
func (d *Detail) Quantity() int64 {
	return d.quantity
}

// SubTotal returns price * quantity * containerQuantity.
func (d *Detail) SubTotal() int64 {
	return d.subTotal
}

// IsAutoPriced reports whether the price follows the catalog.
//
// Returns:
//   - true for details created this session or whose container or product
//     types were changed
//   - false for backend prices and manual prices
func (d *Detail) IsAutoPriced() bool {
	return d.autoPriced
}

// Touched returns the fields changed since the detail was restored.
func (d *Detail) Touched() Field {
	return d.touched
}

// Placement returns the storage bookkeeping of the detail.
func (d *Detail) Placement() Placement {
	return d.placement
}

// IsZeroed reports whether both quantity fields are zero, which is how a
// persisted detail is soft-deleted.
func (d *Detail) IsZeroed() bool {
	return d.quantity == 0 && d.containerQuantity == 0
}

// SetQuantity sets the quantity, coercing negative values to zero.
func (d *Detail) SetQuantity(quantity int64) {
	d.quantity = CoerceQuantity(quantity)
	d.touch(FieldQuantity)
}

// SetContainerQuantity sets the container quantity, coercing negative values to zero.
func (d *Detail) SetContainerQuantity(quantity int64) {
	d.containerQuantity = CoerceQuantity(quantity)
	d.touch(FieldContainerQuantity)
}

// SetPrice sets a manual price and suspends catalog pricing for this detail.
func (d *Detail) SetPrice(price int64) {
	d.price = CoerceQuantity(price)
	d.autoPriced = false
	d.touch(FieldPrice)
}

// SetContainerType changes the container and recomputes the price.
func (d *Detail) SetContainerType(containerTypeID int64, calc PriceCalculator) {
	d.containerTypeID = containerTypeID
	d.autoPriced = true
	d.Reprice(calc)
	d.touch(FieldContainerType)
}

// SetProductTypes replaces the product type set and recomputes the price.
func (d *Detail) SetProductTypes(productTypeIDs []int64, calc PriceCalculator) {
	d.productTypeIDs = uniqueIDs(productTypeIDs)
	d.autoPriced = true
	d.Reprice(calc)
	d.touch(FieldProductTypes)
}

// SetServices replaces the service set. Services do not affect the price.
func (d *Detail) SetServices(serviceIDs []int64) {
	d.serviceIDs = uniqueIDs(serviceIDs)
	d.touch(FieldServices)
}

// SoftDelete zeroes both quantity fields, keeping the detail's identity.
func (d *Detail) SoftDelete() {
	d.quantity = 0
	d.containerQuantity = 0
	d.touch(FieldQuantity | FieldContainerQuantity)
}

// ApplyPatch applies every present field of patch.
func (d *Detail) ApplyPatch(patch DetailPatch, calc PriceCalculator) {
	if patch.Quantity != nil {
		d.SetQuantity(*patch.Quantity)
	}
	if patch.ContainerQuantity != nil {
		d.SetContainerQuantity(*patch.ContainerQuantity)
	}
	if patch.ServiceIDs != nil {
		d.SetServices(*patch.ServiceIDs)
	}
	if patch.ContainerCode != nil || patch.StorageCode != nil || patch.Image != nil {
		if patch.ContainerCode != nil {
			d.placement.ContainerCode = *patch.ContainerCode
		}
		if patch.StorageCode != nil {
			d.placement.StorageCode = patch.StorageCode
		}
		if patch.Image != nil {
			d.placement.Image = patch.Image
		}
		d.touch(FieldPlacement)
	}

	repriced := patch.ContainerTypeID != nil || patch.ProductTypeIDs != nil
	if patch.ContainerTypeID != nil {
		d.SetContainerType(*patch.ContainerTypeID, calc)
	}
	if patch.ProductTypeIDs != nil {
		d.SetProductTypes(*patch.ProductTypeIDs, calc)
	}
	if !repriced && patch.Price != nil {
		d.SetPrice(*patch.Price)
	}
}

// Reprice recomputes the price from calc if the detail is auto-priced.
// Reports whether the price changed.
func (d *Detail) Reprice(calc PriceCalculator) bool {
	if !d.autoPriced || calc == nil {
		return false
	}
	price := CoerceQuantity(calc.ComputePrice(d.containerTypeID, d.productTypeIDs))
	if price == d.price {
		return false
	}
	d.price = price
	d.recompute()
	return true
}

// Rebase returns a copy of baseline carrying the fields d changed this
// session. Untouched fields come from baseline.
func (d *Detail) Rebase(baseline *Detail) *Detail {
	merged := baseline.Clone()
	merged.touched = d.touched

	if d.touched.Has(FieldQuantity) {
		merged.quantity = d.quantity
	}
	if d.touched.Has(FieldContainerQuantity) {
		merged.containerQuantity = d.containerQuantity
	}
	if d.touched.Has(FieldContainerType) {
		merged.containerTypeID = d.containerTypeID
	}
	if d.touched.Has(FieldProductTypes) {
		merged.productTypeIDs = slices.Clone(d.productTypeIDs)
	}
	if d.touched.Has(FieldServices) {
		merged.serviceIDs = slices.Clone(d.serviceIDs)
	}
	if d.touched.Has(FieldPlacement) {
		merged.placement = d.placement
	}
	if d.touched&(FieldPrice|FieldContainerType|FieldProductTypes) != 0 {
		merged.price = d.price
		merged.autoPriced = d.autoPriced
	}

	merged.recompute()
	return merged
}

// Settle returns a copy of d renumbered to id that keeps only the edits made
// after sent was taken. Touched fields whose values still equal sent are
// considered persisted and no longer override a baseline.
func (d *Detail) Settle(id kernel.DetailID, sent DetailSnapshot) *Detail {
	settled := d.Clone()
	settled.id = id
	settled.touched = d.touched & d.changedSince(sent)
	return settled
}

// changedSince returns the fields whose values differ from s.
func (d *Detail) changedSince(s DetailSnapshot) Field {
	var changed Field
	if d.quantity != s.Quantity {
		changed |= FieldQuantity
	}
	if d.containerQuantity != s.ContainerQuantity {
		changed |= FieldContainerQuantity
	}
	if d.price != s.Price {
		changed |= FieldPrice
	}
	if d.containerTypeID != s.ContainerTypeID {
		changed |= FieldContainerType
	}
	if !slices.Equal(d.productTypeIDs, s.ProductTypeIDs) {
		changed |= FieldProductTypes
	}
	if !slices.Equal(d.serviceIDs, s.ServiceIDs) {
		changed |= FieldServices
	}
	if !d.placement.equal(s.Placement) {
		changed |= FieldPlacement
	}
	return changed
}

func (p Placement) equal(other Placement) bool {
	return p.Name == other.Name &&
		p.ContainerCode == other.ContainerCode &&
		equalPtr(p.StorageCode, other.StorageCode) &&
		equalPtr(p.StorageTypeID, other.StorageTypeID) &&
		equalPtr(p.ShelfTypeID, other.ShelfTypeID) &&
		equalPtr(p.ShelfQuantity, other.ShelfQuantity) &&
		equalPtr(p.Image, other.Image)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Snapshot exports the detail into its canonical shape.
func (d *Detail) Snapshot() DetailSnapshot {
	return DetailSnapshot{
		ID:                d.id,
		ContainerTypeID:   d.containerTypeID,
		ContainerQuantity: d.containerQuantity,
		ProductTypeIDs:    d.ProductTypeIDs(),
		ServiceIDs:        d.ServiceIDs(),
		Price:             d.price,
		Quantity:          d.quantity,
		SubTotal:          d.subTotal,
		Placement:         d.placement,
	}
}

// Clone returns an independent copy of the detail.
func (d *Detail) Clone() *Detail {
	clone := *d
	clone.productTypeIDs = slices.Clone(d.productTypeIDs)
	clone.serviceIDs = slices.Clone(d.serviceIDs)
	return &clone
}

func (d *Detail) touch(field Field) {
	d.touched |= field
	d.recompute()
}

func (d *Detail) recompute() {
	d.subTotal = d.price * d.quantity * d.containerQuantity
}

// CoerceQuantity maps negative values to zero.
func CoerceQuantity(v int64) int64 {
	return max(v, 0)
}

// ParseQuantity parses user input into a quantity. Blank input yields the
// default of 1; non-numeric or negative input yields 0. Fractions are truncated.
func ParseQuantity(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int64(math.Trunc(v))
}

func uniqueIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
