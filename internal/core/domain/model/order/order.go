package order

import (
	"errors"
	"slices"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via RestoreOrder constructor")
)

// Contact holds the customer-facing fields of an order.
type Contact struct {
	CustomerName string
	Phone        string
	Email        string
	Address      string
}

// Snapshot is the canonical typed shape of an order as the backend reports it.
// The backend adapter produces it at the normalization boundary; the domain
// never sees raw payloads.
type Snapshot struct {
	Code          string
	Status        string
	PaymentStatus string
	TotalPrice    int64
	UnpaidAmount  int64
	Contact       Contact
	Note          string
	Style         string
	Image         string
	Images        []string
	DepositDate   string
	ReturnDate    string
	StorageTypeID int64
	ShelfTypeID   int64
	ShelfQuantity int64
}

// MetaPatch carries the editable order metadata. Nil fields are left unchanged.
type MetaPatch struct {
	CustomerName *string
	Phone        *string
	Email        *string
	Address      *string
	Note         *string
	DepositDate  *string
	ReturnDate   *string
}

// Order is the aggregate root of a fulfillment order.
//
// Order follows these invariants:
//   - The order code is immutable and never blank
//   - The step is derived from the raw status and never set optimistically
//   - The image list is append-only and free of duplicates
//   - Can only be created through RestoreOrder
type Order struct {
	code kernel.OrderCode

	// rawStatus is kept verbatim so an unknown status survives a round-trip.
	rawStatus string
	step      Step

	paymentStatus string
	totalPrice    int64
	unpaidAmount  int64

	contact     Contact
	note        string
	style       string
	image       string
	images      []string
	depositDate string
	returnDate  string

	storageTypeID int64
	shelfTypeID   int64
	shelfQuantity int64

	isConstructed bool
}

// RestoreOrder builds an Order from a backend snapshot.
//
// Returns an error if the snapshot carries no order code. Duplicate or blank
// image URLs are dropped while preserving first-seen order.
func RestoreOrder(s Snapshot) (*Order, error) {
	code, err := kernel.NewOrderCode(s.Code)
	if err != nil {
		return nil, err
	}

	return &Order{
		code:          code,
		rawStatus:     s.Status,
		step:          ParseStep(s.Status),
		paymentStatus: s.PaymentStatus,
		totalPrice:    s.TotalPrice,
		unpaidAmount:  s.UnpaidAmount,
		contact:       s.Contact,
		note:          s.Note,
		style:         s.Style,
		image:         s.Image,
		images:        MergeImages(nil, s.Images...),
		depositDate:   s.DepositDate,
		returnDate:    s.ReturnDate,
		storageTypeID: s.StorageTypeID,
		shelfTypeID:   s.ShelfTypeID,
		shelfQuantity: s.ShelfQuantity,
		isConstructed: true,
	}, nil
}

// Validate ensures the Order instance was properly constructed through RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// Code returns the immutable order code.
func (o *Order) Code() kernel.OrderCode {
	return o.code
}

// Status returns the backend status string as received.
func (o *Order) Status() string {
	return o.rawStatus
}

// Step returns the lifecycle step derived from the status.
func (o *Order) Step() Step {
	return o.step
}

// PaymentStatus returns the payment status as the backend reports it.
func (o *Order) PaymentStatus() string {
	return o.paymentStatus
}

// TotalPrice returns the backend's stored total, which may include charges
// outside the detail rows.
func (o *Order) TotalPrice() int64 {
	return o.totalPrice
}

// UnpaidAmount returns the amount still owed in currency units.
func (o *Order) UnpaidAmount() int64 {
	return o.unpaidAmount
}

// Contact returns the customer-facing fields.
func (o *Order) Contact() Contact {
	return o.contact
}

// Note returns the free-text order note.
func (o *Order) Note() string {
	return o.note
}

// Style returns the backend style tag, passed through untouched.
func (o *Order) Style() string {
	return o.style
}

// DepositDate returns the deposit date in the backend's format.
func (o *Order) DepositDate() string {
	return o.depositDate
}

// ReturnDate returns the return date in the backend's format.
func (o *Order) ReturnDate() string {
	return o.returnDate
}

// Images returns a copy of the image list.
func (o *Order) Images() []string {
	return slices.Clone(o.images)
}

// MergeImages adds urls to the order's image list and returns a copy of the
// result. Existing entries keep their position.
func (o *Order) MergeImages(urls ...string) []string {
	o.images = MergeImages(o.images, urls...)
	return o.Images()
}

// ApplyMeta updates the editable metadata fields present in patch.
func (o *Order) ApplyMeta(patch MetaPatch) {
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&o.contact.CustomerName, patch.CustomerName)
	assign(&o.contact.Phone, patch.Phone)
	assign(&o.contact.Email, patch.Email)
	assign(&o.contact.Address, patch.Address)
	assign(&o.note, patch.Note)
	assign(&o.depositDate, patch.DepositDate)
	assign(&o.returnDate, patch.ReturnDate)
}

// Snapshot exports the order back into its canonical shape.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		Code:          o.code.String(),
		Status:        o.rawStatus,
		PaymentStatus: o.paymentStatus,
		TotalPrice:    o.totalPrice,
		UnpaidAmount:  o.unpaidAmount,
		Contact:       o.contact,
		Note:          o.note,
		Style:         o.style,
		Image:         o.image,
		Images:        o.Images(),
		DepositDate:   o.depositDate,
		ReturnDate:    o.returnDate,
		StorageTypeID: o.storageTypeID,
		ShelfTypeID:   o.shelfTypeID,
		ShelfQuantity: o.shelfQuantity,
	}
}

// Clone returns an independent copy of the order.
func (o *Order) Clone() *Order {
	clone := *o
	clone.images = slices.Clone(o.images)
	return &clone
}

// MergeImages returns existing followed by every url not yet present.
// Blank urls are ignored and the result never contains duplicates.
func MergeImages(existing []string, urls ...string) []string {
	seen := make(map[string]struct{}, len(existing)+len(urls))
	merged := make([]string, 0, len(existing)+len(urls))
	for _, url := range slices.Concat(existing, urls) {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		merged = append(merged, url)
	}
	return merged
}
