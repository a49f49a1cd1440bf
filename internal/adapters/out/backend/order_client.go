package backend

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

var urlInText = regexp.MustCompile(`https?://[^\s"'<>]+`)

func orderPath(code kernel.OrderCode, suffix string) string {
	return "/api/Order/" + url.PathEscape(code.String()) + suffix
}

// GetOrder fetches one order via GET /api/Order/{code}.
func (c *Client) GetOrder(ctx context.Context, code kernel.OrderCode) (*order.Order, error) {
	const op = "get-order"
	resp, err := c.do(ctx, op, http.MethodGet, orderPath(code, ""), nil, nil)
	if err != nil {
		return nil, err
	}
	v, err := resp.decode(op)
	if err != nil {
		return nil, err
	}

	obj, ok := asObject(unwrap(v))
	if !ok {
		return nil, errs.NewNetworkErrorWithCause(op, errNoOrder)
	}
	// some deployments nest the header under "order"
	if nested, ok := obj.nested("order"); ok && !looksLikeOrder(obj) {
		obj = nested
	}
	return decodeOrder(obj, code)
}

// GetOrderDetails fetches the line items of an order.
func (c *Client) GetOrderDetails(ctx context.Context, code kernel.OrderCode) ([]*order.Detail, error) {
	const op = "get-order-details"
	resp, err := c.do(ctx, op, http.MethodGet, "/api/OrderDetail/order/"+url.PathEscape(code.String()), nil, nil)
	if err != nil {
		return nil, err
	}
	v, err := resp.decode(op)
	if err != nil {
		return nil, err
	}

	items := list(v)
	if items == nil {
		if obj, ok := asObject(unwrap(v)); ok {
			items, _ = obj.items("orderDetails", "OrderDetails")
		}
	}
	return decodeDetails(items), nil
}

// PutOrderWithDetails replaces the order and its details in one request.
// Missing parts of the response are filled from payload.
func (c *Client) PutOrderWithDetails(
	ctx context.Context,
	code kernel.OrderCode,
	payload ports.SubmitPayload,
) (ports.OrderWithDetails, error) {
	const op = "put-order-with-details"
	resp, err := c.do(ctx, op, http.MethodPut, orderPath(code, "/with-details"), nil, encodeSubmit(payload))
	if err != nil {
		return ports.OrderWithDetails{}, err
	}
	v, err := resp.decode(op)
	if err != nil {
		return ports.OrderWithDetails{}, err
	}
	return decodeSubmitResult(v, code, payload)
}

// AdvanceStatus asks the backend to move the order to its next step.
func (c *Client) AdvanceStatus(ctx context.Context, code kernel.OrderCode) error {
	_, err := c.do(ctx, "advance-status", http.MethodPut, orderPath(code, "/status"), nil, nil)
	return err
}

type imagesBody struct {
	Images []string `json:"images"`
}

// AppendImages replaces the image list of the order.
func (c *Client) AppendImages(ctx context.Context, code kernel.OrderCode, images []string) (*order.Order, error) {
	const op = "append-images"
	if images == nil {
		images = []string{}
	}
	resp, err := c.do(ctx, op, http.MethodPut, orderPath(code, "/images"), nil, imagesBody{Images: images})
	if err != nil {
		return nil, err
	}
	v, err := resp.decode(op)
	if err != nil {
		return nil, err
	}

	obj, ok := asObject(unwrap(v))
	if !ok {
		return nil, nil
	}
	if nested, ok := obj.nested("order"); ok {
		obj = nested
	}
	if !looksLikeOrder(obj) {
		return nil, nil
	}
	return decodeOrder(obj, code)
}

// CreatePaymentLink returns the checkout URL from data, data.url and its
// aliases, the Location header or the first URL found in the body, in that order.
func (c *Client) CreatePaymentLink(ctx context.Context, code kernel.OrderCode) (string, error) {
	const op = "create-payment-link"
	resp, err := c.do(ctx, op, http.MethodPost, "/api/PayOs/mobile/create-link/"+url.PathEscape(code.String()), nil, nil)
	if err != nil {
		return "", err
	}

	if link := paymentLinkFromJSON(resp.body); link != "" {
		return link, nil
	}
	if location := resp.header.Get("Location"); location != "" {
		return location, nil
	}
	if found := urlInText.FindString(string(resp.body)); found != "" {
		return found, nil
	}
	return "", errs.NewValueIsRequiredError("paymentUrl")
}

func paymentLinkFromJSON(raw []byte) string {
	v, err := decodeJSON(raw)
	if err != nil {
		return ""
	}
	data := v
	if obj, ok := asObject(v); ok {
		if inner, ok := obj.value("data"); ok {
			data = inner
		}
	}
	if s, ok := data.(string); ok {
		return strings.TrimSpace(s)
	}
	if obj, ok := asObject(data); ok {
		return strings.TrimSpace(obj.text("url", "link", "paymentUrl", "payment_link", "checkoutUrl"))
	}
	return ""
}

// GetActiveOrders returns an employee's orders as the backend lists them;
// status filtering is up to the caller.
func (c *Client) GetActiveOrders(ctx context.Context, employeeCode string) ([]*order.Order, error) {
	const op = "get-active-orders"
	path := "/api/Order/employee/" + url.PathEscape(employeeCode) + "/active-orders"
	resp, err := c.do(ctx, op, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	v, err := resp.decode(op)
	if err != nil {
		return nil, err
	}

	items := list(v)
	orders := make([]*order.Order, 0, len(items))
	for _, item := range items {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		o, err := decodeOrder(obj, kernel.OrderCode{})
		if err != nil {
			c.logger.WarnContext(ctx, "skipping active order without code", "employeeCode", employeeCode)
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}
