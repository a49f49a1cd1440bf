package http

import (
	"encoding/json"
	"strings"

	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/order"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type StepResponse struct {
	Key   string `json:"key"`
	Index int    `json:"index"`
	State string `json:"state"`
}

type PlacementResponse struct {
	Name          string  `json:"name,omitempty"`
	StorageCode   *string `json:"storageCode"`
	ContainerCode string  `json:"containerCode"`
	StorageTypeID *int64  `json:"storageTypeId"`
	ShelfTypeID   *int64  `json:"shelfTypeId"`
	ShelfQuantity *int64  `json:"shelfQuantity"`
	Image         *string `json:"image"`
}

type DetailResponse struct {
	ID                int64             `json:"orderDetailId"`
	ContainerTypeID   int64             `json:"containerType"`
	ContainerQuantity int64             `json:"containerQuantity"`
	ProductTypeIDs    []int64           `json:"productTypeIds"`
	ServiceIDs        []int64           `json:"serviceIds"`
	Price             int64             `json:"price"`
	Quantity          int64             `json:"quantity"`
	SubTotal          int64             `json:"subTotal"`
	AutoPriced        bool              `json:"autoPriced"`
	SoftDeleted       bool              `json:"softDeleted"`
	New               bool              `json:"new"`
	Placement         PlacementResponse `json:"placement"`
}

type TotalsResponse struct {
	Delta        int64 `json:"delta"`
	FinalTotal   int64 `json:"finalTotal"`
	NewUnpaid    int64 `json:"newUnpaid"`
	DetailsTotal int64 `json:"detailsTotal"`
}

type OrderViewResponse struct {
	Order   session.OrderPayload `json:"order"`
	Steps   []StepResponse       `json:"steps"`
	Editing bool                 `json:"editing"`
	Details []DetailResponse     `json:"details"`
	Totals  *TotalsResponse      `json:"totals,omitempty"`
}

type AddDetailResponse struct {
	DetailID int64             `json:"orderDetailId"`
	View     OrderViewResponse `json:"view"`
}

type AppendImageResponse struct {
	JobID     string   `json:"jobId"`
	Persisted bool     `json:"persisted"`
	Images    []string `json:"images"`
	Error     string   `json:"error,omitempty"`
}

type PaymentLinkResponse struct {
	URL string `json:"url"`
}

type ActiveOrdersResponse struct {
	Planned         []session.OrderPayload `json:"planned"`
	Processing      []session.OrderPayload `json:"processing"`
	PlannedCount    int                    `json:"plannedCount"`
	ProcessingCount int                    `json:"processingCount"`
}

// quantityInput accepts a JSON number or the text a staff member typed.
type quantityInput int64

func (q *quantityInput) UnmarshalJSON(raw []byte) error {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		*q = quantityInput(order.ParseQuantity(text))
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return err
	}
	*q = quantityInput(order.ParseQuantity(strings.TrimSpace(number.String())))
	return nil
}

func (q *quantityInput) value() *int64 {
	if q == nil {
		return nil
	}
	v := int64(*q)
	return &v
}

type UpdateDetailRequest struct {
	ContainerTypeID   *int64         `json:"containerType"`
	ProductTypeIDs    *[]int64       `json:"productTypeIds"`
	ServiceIDs        *[]int64       `json:"serviceIds"`
	Price             *int64         `json:"price"`
	Quantity          *quantityInput `json:"quantity"`
	ContainerQuantity *quantityInput `json:"containerQuantity"`
	ContainerCode     *string        `json:"containerCode"`
	StorageCode       *string        `json:"storageCode"`
	Image             *string        `json:"image"`
}

func (r UpdateDetailRequest) toPatch() order.DetailPatch {
	return order.DetailPatch{
		ContainerTypeID:   r.ContainerTypeID,
		ProductTypeIDs:    r.ProductTypeIDs,
		ServiceIDs:        r.ServiceIDs,
		Price:             r.Price,
		Quantity:          r.Quantity.value(),
		ContainerQuantity: r.ContainerQuantity.value(),
		ContainerCode:     r.ContainerCode,
		StorageCode:       r.StorageCode,
		Image:             r.Image,
	}
}

type UpdateOrderMetaRequest struct {
	CustomerName *string `json:"customerName"`
	Phone        *string `json:"phoneContact"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	Note         *string `json:"note"`
	DepositDate  *string `json:"depositDate"`
	ReturnDate   *string `json:"returnDate"`
}

func (r UpdateOrderMetaRequest) toPatch() order.MetaPatch {
	return order.MetaPatch{
		CustomerName: r.CustomerName,
		Phone:        r.Phone,
		Email:        r.Email,
		Address:      r.Address,
		Note:         r.Note,
		DepositDate:  r.DepositDate,
		ReturnDate:   r.ReturnDate,
	}
}

type AppendImageRequest struct {
	URL string `json:"url"`
}

func toOrderView(view queries.GetOrderViewQueryResponse) OrderViewResponse {
	response := OrderViewResponse{
		Order:   view.Order,
		Steps:   make([]StepResponse, len(view.Steps)),
		Editing: view.Editing,
		Details: make([]DetailResponse, len(view.Details)),
	}
	for i, step := range view.Steps {
		response.Steps[i] = StepResponse{Key: step.Key, Index: step.Index, State: string(step.State)}
	}
	for i, d := range view.Details {
		response.Details[i] = toDetail(d)
	}
	if view.Totals != nil {
		response.Totals = &TotalsResponse{
			Delta:        view.Totals.Delta,
			FinalTotal:   view.Totals.FinalTotal,
			NewUnpaid:    view.Totals.NewUnpaid,
			DetailsTotal: view.Totals.DetailsTotal,
		}
	}
	return response
}

func toDetail(d session.DetailView) DetailResponse {
	ids := func(v []int64) []int64 {
		if v == nil {
			return []int64{}
		}
		return v
	}
	return DetailResponse{
		ID:                int64(d.ID),
		ContainerTypeID:   d.ContainerTypeID,
		ContainerQuantity: d.ContainerQuantity,
		ProductTypeIDs:    ids(d.ProductTypeIDs),
		ServiceIDs:        ids(d.ServiceIDs),
		Price:             d.Price,
		Quantity:          d.Quantity,
		SubTotal:          d.SubTotal,
		AutoPriced:        d.AutoPriced,
		SoftDeleted:       d.SoftDeleted,
		New:               d.New,
		Placement: PlacementResponse{
			Name:          d.Placement.Name,
			StorageCode:   d.Placement.StorageCode,
			ContainerCode: d.Placement.ContainerCode,
			StorageTypeID: d.Placement.StorageTypeID,
			ShelfTypeID:   d.Placement.ShelfTypeID,
			ShelfQuantity: d.Placement.ShelfQuantity,
			Image:         d.Placement.Image,
		},
	}
}
