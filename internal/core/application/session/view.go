package session

import (
	"fulfillment/internal/core/domain/model/order"
)

// OrderPayload is the client-facing shape of an order.
type OrderPayload struct {
	OrderCode     string   `json:"orderCode"`
	Status        string   `json:"status"`
	Step          string   `json:"step"`
	StepIndex     int      `json:"stepIndex"`
	PaymentStatus string   `json:"paymentStatus"`
	TotalPrice    int64    `json:"totalPrice"`
	UnpaidAmount  int64    `json:"unpaidAmount"`
	CustomerName  string   `json:"customerName"`
	Phone         string   `json:"phoneContact"`
	Email         string   `json:"email"`
	Address       string   `json:"address"`
	Note          string   `json:"note"`
	Style         string   `json:"style"`
	Images        []string `json:"images"`
	DepositDate   string   `json:"depositDate,omitempty"`
	ReturnDate    string   `json:"returnDate,omitempty"`
}

// NewOrderPayload converts an order into its client-facing shape.
func NewOrderPayload(o *order.Order) OrderPayload {
	contact := o.Contact()
	images := o.Images()
	if images == nil {
		images = []string{}
	}
	return OrderPayload{
		OrderCode:     o.Code().String(),
		Status:        o.Status(),
		Step:          o.Step().Key(),
		StepIndex:     o.Step().Index(),
		PaymentStatus: o.PaymentStatus(),
		TotalPrice:    o.TotalPrice(),
		UnpaidAmount:  o.UnpaidAmount(),
		CustomerName:  contact.CustomerName,
		Phone:         contact.Phone,
		Email:         contact.Email,
		Address:       contact.Address,
		Note:          o.Note(),
		Style:         o.Style(),
		Images:        images,
		DepositDate:   o.DepositDate(),
		ReturnDate:    o.ReturnDate(),
	}
}
