package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// object is a decoded JSON object. Every read goes through a list of keys and
// the first present, non-null one wins.
type object map[string]any

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func asObject(v any) (object, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func (o object) value(keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := o[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (o object) nested(keys ...string) (object, bool) {
	v, ok := o.value(keys...)
	if !ok {
		return nil, false
	}
	return asObject(v)
}

func (o object) items(keys ...string) ([]any, bool) {
	v, ok := o.value(keys...)
	if !ok {
		return nil, false
	}
	a, ok := v.([]any)
	return a, ok
}

func (o object) text(keys ...string) string {
	v, _ := o.value(keys...)
	return asString(v)
}

func (o object) optionalText(keys ...string) *string {
	v, ok := o.value(keys...)
	if !ok {
		return nil
	}
	s := asString(v)
	return &s
}

func (o object) number(keys ...string) (int64, bool) {
	v, ok := o.value(keys...)
	if !ok {
		return 0, false
	}
	return asInt64(v)
}

func (o object) optionalNumber(keys ...string) *int64 {
	n, ok := o.number(keys...)
	if !ok {
		return nil
	}
	return &n
}

func (o object) flag(keys ...string) (bool, bool) {
	v, ok := o.value(keys...)
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	}
	return false, false
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// asDecimal accepts JSON numbers and numbers given as strings.
func asDecimal(v any) (decimal.Decimal, bool) {
	var raw string
	switch n := v.(type) {
	case json.Number:
		raw = n.String()
	case string:
		raw = strings.TrimSpace(n)
	case float64:
		return decimal.NewFromFloat(n), true
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// asInt64 rounds amounts to whole units.
func asInt64(v any) (int64, bool) {
	d, ok := asDecimal(v)
	if !ok {
		return 0, false
	}
	return d.Round(0).IntPart(), true
}

func asInt64s(v []any) []int64 {
	out := make([]int64, 0, len(v))
	for _, item := range v {
		if n, ok := asInt64(item); ok {
			out = append(out, n)
			continue
		}
		if obj, ok := asObject(item); ok {
			if n, ok := obj.number("id", "productTypeId", "serviceId"); ok {
				out = append(out, n)
			}
		}
	}
	return out
}

// unwrap strips a {data: ...} or {result: ...} envelope.
func unwrap(v any) any {
	obj, ok := asObject(v)
	if !ok {
		return v
	}
	if inner, ok := obj.value("data", "result"); ok {
		switch inner.(type) {
		case map[string]any, []any:
			return inner
		}
	}
	return v
}

// list returns the elements of a bare array or an enveloped one.
func list(v any) []any {
	if a, ok := unwrap(v).([]any); ok {
		return a
	}
	return nil
}

func looksLikeOrder(obj object) bool {
	_, ok := obj.value("orderCode", "OrderCode", "orderRef", "totalPrice", "TotalPrice", "status", "Status")
	return ok
}

// decodeOrder maps a raw order object into the aggregate. fallback is used
// when the object does not carry an order code of its own.
func decodeOrder(obj object, fallback kernel.OrderCode) (*order.Order, error) {
	snapshot := order.Snapshot{
		Code:          obj.text("orderCode", "OrderCode", "orderRef"),
		Status:        obj.text("status", "Status"),
		PaymentStatus: obj.text("paymentStatus", "PaymentStatus"),
		Note:          obj.text("note", "Note"),
		Style:         obj.text("style", "Style"),
		Image:         obj.text("image", "Image"),
		DepositDate:   obj.text("depositDate", "DepositDate", "orderDate"),
		ReturnDate:    obj.text("returnDate", "ReturnDate"),
		Contact: order.Contact{
			CustomerName: obj.text("customerName", "CustomerName"),
			Phone:        obj.text("phoneContact", "PhoneContact", "phone"),
			Email:        obj.text("email", "Email"),
			Address:      obj.text("address", "Address"),
		},
	}
	if snapshot.Code == "" {
		snapshot.Code = fallback.String()
	}

	if customer, ok := obj.nested("customer"); ok {
		if snapshot.Contact.CustomerName == "" {
			snapshot.Contact.CustomerName = customer.text("name", "fullName")
		}
		if snapshot.Contact.Phone == "" {
			snapshot.Contact.Phone = customer.text("phone", "phoneNumber")
		}
		if snapshot.Contact.Email == "" {
			snapshot.Contact.Email = customer.text("email")
		}
	}

	snapshot.TotalPrice = decodeTotal(obj)
	snapshot.UnpaidAmount, _ = obj.number("unpaidAmount", "UnpaidAmount")
	snapshot.StorageTypeID, _ = obj.number("storageTypeId", "StorageTypeId")
	snapshot.ShelfTypeID, _ = obj.number("shelfTypeId", "ShelfTypeId")
	snapshot.ShelfQuantity, _ = obj.number("shelfQuantity", "ShelfQuantity")

	if images, ok := obj.items("images", "Images"); ok {
		for _, image := range images {
			snapshot.Images = append(snapshot.Images, asString(image))
		}
	} else if snapshot.Image != "" {
		snapshot.Images = []string{snapshot.Image}
	}

	return order.RestoreOrder(snapshot)
}

func decodeTotal(obj object) int64 {
	if total, ok := obj.number("totalPrice", "TotalPrice"); ok {
		return total
	}
	if pricing, ok := obj.nested("pricing"); ok {
		if total, ok := pricing.number("total", "subtotal", "basePrice"); ok {
			return total
		}
	}
	var sum int64
	details, _ := obj.items("orderDetails", "OrderDetails")
	for _, item := range details {
		if raw, ok := asObject(item); ok {
			sum += decodeDetailSubTotal(raw)
		}
	}
	return sum
}

func decodeQuantity(obj object, keys ...string) int64 {
	v, ok := obj.value(keys...)
	if !ok {
		return 1
	}
	if s, isString := v.(string); isString {
		return order.ParseQuantity(s)
	}
	n, ok := asInt64(v)
	if !ok {
		return 1
	}
	return order.CoerceQuantity(n)
}

func decodeDetailSubTotal(obj object) int64 {
	if sub, ok := obj.number("subTotal", "SubTotal", "subtotal"); ok {
		return sub
	}
	price, _ := obj.number("price", "Price")
	return price * decodeQuantity(obj, "quantity", "Quantity") *
		decodeQuantity(obj, "containerQuantity", "ContainerQuantity")
}

// decodeDetail maps a raw line item. The subtotal is always recomputed from
// price and quantities.
func decodeDetail(obj object) *order.Detail {
	id, _ := obj.number("orderDetailId", "OrderDetailId", "id")
	containerType, _ := obj.number("containerType", "containerTypeId", "ContainerType")
	price, _ := obj.number("price", "Price")

	snapshot := order.DetailSnapshot{
		ID:                kernel.DetailID(id),
		ContainerTypeID:   containerType,
		ContainerQuantity: decodeQuantity(obj, "containerQuantity", "ContainerQuantity"),
		Quantity:          decodeQuantity(obj, "quantity", "Quantity"),
		Price:             price,
		Placement: order.Placement{
			Name:          obj.text("name", "containerName"),
			StorageCode:   obj.optionalText("storageCode", "StorageCode"),
			ContainerCode: obj.text("containerCode", "ContainerCode"),
			StorageTypeID: obj.optionalNumber("storageTypeId", "StorageTypeId"),
			ShelfTypeID:   obj.optionalNumber("shelfTypeId", "ShelfTypeId"),
			ShelfQuantity: obj.optionalNumber("shelfQuantity", "ShelfQuantity"),
			Image:         obj.optionalText("image", "Image"),
		},
	}
	if ids, ok := obj.items("productTypeIds", "ProductTypeIds"); ok {
		snapshot.ProductTypeIDs = asInt64s(ids)
	}
	if ids, ok := obj.items("serviceIds", "ServiceIds"); ok {
		snapshot.ServiceIDs = asInt64s(ids)
	}
	return order.RestoreDetail(snapshot)
}

func decodeDetails(items []any) []*order.Detail {
	details := make([]*order.Detail, 0, len(items))
	for _, item := range items {
		if obj, ok := asObject(item); ok {
			details = append(details, decodeDetail(obj))
		}
	}
	return details
}

// decodeCatalogEntry normalizes one lookup row. The id key depends on the table.
func decodeCatalogEntry(kind ports.CatalogKind, obj object) (ports.CatalogEntry, bool) {
	idKeys := map[ports.CatalogKind][]string{
		ports.CatalogContainerTypes: {"containerTypeId", "ContainerTypeId", "id"},
		ports.CatalogProductTypes:   {"productTypeId", "ProductTypeId", "id"},
		ports.CatalogServiceTypes:   {"serviceId", "serviceTypeId", "ServiceId", "id"},
		ports.CatalogStorageTypes:   {"storageTypeId", "StorageTypeId", "id"},
		ports.CatalogShelfTypes:     {"shelfTypeId", "ShelfTypeId", "id"},
	}[kind]

	id, ok := obj.number(idKeys...)
	if !ok {
		return ports.CatalogEntry{}, false
	}

	entry := ports.CatalogEntry{
		ID:     id,
		Name:   obj.text("name", "Name", "vname", "type", "Type"),
		Price:  decimal.Zero,
		Active: true,
	}
	if v, ok := obj.value("price", "Price"); ok {
		if price, ok := asDecimal(v); ok {
			entry.Price = price
		}
	}
	if active, ok := obj.flag("isActive", "IsActive"); ok {
		entry.Active = active
	} else if status := obj.text("status", "Status"); status != "" {
		entry.Active = strings.Contains(strings.ToLower(status), "active") &&
			!strings.Contains(strings.ToLower(status), "inactive")
	}
	return entry, true
}

// submitBody is the wire shape of PUT /api/Order/{code}/with-details.
type submitBody struct {
	DepositDate   *string            `json:"depositDate"`
	ReturnDate    *string            `json:"returnDate"`
	Status        string             `json:"status"`
	PaymentStatus *string            `json:"paymentStatus"`
	TotalPrice    int64              `json:"totalPrice"`
	UnpaidAmount  int64              `json:"unpaidAmount"`
	CustomerName  string             `json:"customerName"`
	PhoneContact  string             `json:"phoneContact"`
	Email         string             `json:"email"`
	Note          string             `json:"note"`
	Image         *string            `json:"image"`
	Address       string             `json:"address"`
	Style         string             `json:"style"`
	StorageTypeID int64              `json:"storageTypeId"`
	ShelfTypeID   int64              `json:"shelfTypeId"`
	ShelfQuantity int64              `json:"shelfQuantity"`
	OrderDetails  []submitDetailBody `json:"orderDetails"`
}

type submitDetailBody struct {
	OrderDetailID     int64   `json:"orderDetailId"`
	StorageCode       *string `json:"storageCode"`
	ContainerCode     string  `json:"containerCode"`
	Price             int64   `json:"price"`
	Quantity          string  `json:"quantity"`
	StorageTypeID     *int64  `json:"storageTypeId"`
	ShelfTypeID       *int64  `json:"shelfTypeId"`
	ShelfQuantity     *int64  `json:"shelfQuantity"`
	Image             *string `json:"image"`
	ContainerType     int64   `json:"containerType"`
	ContainerQuantity int64   `json:"containerQuantity"`
	ProductTypeIDs    []int64 `json:"productTypeIds"`
	ServiceIDs        []int64 `json:"serviceIds"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func encodeSubmit(payload ports.SubmitPayload) submitBody {
	o := payload.Order
	body := submitBody{
		DepositDate:   nullable(o.DepositDate),
		ReturnDate:    nullable(o.ReturnDate),
		Status:        o.Status,
		PaymentStatus: nullable(o.PaymentStatus),
		TotalPrice:    o.TotalPrice,
		UnpaidAmount:  o.UnpaidAmount,
		CustomerName:  o.Contact.CustomerName,
		PhoneContact:  o.Contact.Phone,
		Email:         o.Contact.Email,
		Note:          o.Note,
		Image:         nullable(o.Image),
		Address:       o.Contact.Address,
		Style:         o.Style,
		StorageTypeID: o.StorageTypeID,
		ShelfTypeID:   o.ShelfTypeID,
		ShelfQuantity: o.ShelfQuantity,
		OrderDetails:  make([]submitDetailBody, 0, len(payload.Details)),
	}
	for _, d := range payload.Details {
		body.OrderDetails = append(body.OrderDetails, submitDetailBody{
			OrderDetailID:     int64(d.ID),
			StorageCode:       d.Placement.StorageCode,
			ContainerCode:     d.Placement.ContainerCode,
			Price:             d.Price,
			Quantity:          strconv.FormatInt(d.Quantity, 10),
			StorageTypeID:     d.Placement.StorageTypeID,
			ShelfTypeID:       d.Placement.ShelfTypeID,
			ShelfQuantity:     d.Placement.ShelfQuantity,
			Image:             d.Placement.Image,
			ContainerType:     d.ContainerTypeID,
			ContainerQuantity: d.ContainerQuantity,
			ProductTypeIDs:    nonNil(d.ProductTypeIDs),
			ServiceIDs:        nonNil(d.ServiceIDs),
		})
	}
	return body
}

// decodeSubmitResult picks the order and details out of a with-details
// response, falling back to the submitted payload for whatever is missing.
func decodeSubmitResult(v any, code kernel.OrderCode, payload ports.SubmitPayload) (ports.OrderWithDetails, error) {
	var result ports.OrderWithDetails

	root, isObject := asObject(v)
	data, _ := root.nested("data")

	var orderObj object
	switch {
	case isObject && hasObject(root, "order"):
		orderObj, _ = root.nested("order")
	case data != nil && hasObject(data, "order"):
		orderObj, _ = data.nested("order")
	case isObject && looksLikeOrder(root):
		orderObj = root
	}
	if orderObj != nil {
		o, err := decodeOrder(orderObj, code)
		if err != nil {
			return ports.OrderWithDetails{}, err
		}
		result.Order = o
	} else {
		o, err := order.RestoreOrder(payload.Order)
		if err != nil {
			return ports.OrderWithDetails{}, err
		}
		result.Order = o
	}

	var items []any
	var found bool
	switch {
	case isObject && hasArray(root, "orderDetails"):
		items, _ = root.items("orderDetails")
		found = true
	case data != nil && hasArray(data, "orderDetails"):
		items, _ = data.items("orderDetails")
		found = true
	default:
		if a, ok := v.([]any); ok {
			items, found = a, true
		} else if a, ok := root.items("data"); isObject && ok {
			items, found = a, true
		}
	}
	if found {
		result.Details = decodeDetails(items)
	} else {
		result.Details = make([]*order.Detail, 0, len(payload.Details))
		for _, snapshot := range payload.Details {
			result.Details = append(result.Details, order.RestoreDetail(snapshot))
		}
	}
	return result, nil
}

func hasObject(obj object, key string) bool {
	_, ok := obj.nested(key)
	return ok
}

func hasArray(obj object, key string) bool {
	_, ok := obj.items(key)
	return ok
}

// errorMessage extracts message or errorMessage from an error body.
func errorMessage(raw []byte) string {
	v, err := decodeJSON(raw)
	if err != nil {
		return ""
	}
	obj, ok := asObject(v)
	if !ok {
		return ""
	}
	return obj.text("message", "errorMessage", "title")
}
