package backend_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/internal/adapters/out/backend"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

var code = kernel.MustOrderCode("ORD-1")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T, handler http.HandlerFunc, token string) *backend.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := backend.NewClient(server.URL, time.Second, backend.NewStaticTokenSource(token, discardLogger()), discardLogger())
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewClient_ValidatesBaseURL(t *testing.T) {
	creds := backend.NewStaticTokenSource("", discardLogger())

	_, err := backend.NewClient("", time.Second, creds, discardLogger())
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = backend.NewClient("not a url", time.Second, creds, discardLogger())
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestClient_GetOrder_NormalizesEnvelopeAndFallbackKeys(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/Order/ORD-1", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"data": {
			"OrderCode": "ORD-1",
			"status": "Checkout",
			"TotalPrice": "1500000",
			"unpaidAmount": 500000.4,
			"customer": {"name": "Minh"},
			"phone": "0901",
			"orderDate": "2026-02-01",
			"image": "https://cdn/one.png"
		}}`)
	}, "secret")

	o, err := client.GetOrder(t.Context(), code)
	require.NoError(t, err)

	assert.Equal(t, "ORD-1", o.Code().String())
	assert.Equal(t, order.StepCheckout, o.Step())
	assert.Equal(t, int64(1_500_000), o.TotalPrice())
	assert.Equal(t, int64(500_000), o.UnpaidAmount())
	assert.Equal(t, "Minh", o.Contact().CustomerName)
	assert.Equal(t, "0901", o.Contact().Phone)
	assert.Equal(t, "2026-02-01", o.DepositDate())
	assert.Equal(t, []string{"https://cdn/one.png"}, o.Images())
}

func TestClient_GetOrder_TotalFallsBackToPricingThenDetails(t *testing.T) {
	body := `{"orderCode": "ORD-1", "pricing": {"subtotal": 700}}`
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}, "")

	o, err := client.GetOrder(t.Context(), code)
	require.NoError(t, err)
	assert.Equal(t, int64(700), o.TotalPrice())

	body = `{"orderCode": "ORD-1", "orderDetails": [
		{"price": 100, "quantity": 2},
		{"price": 50, "containerQuantity": "3", "subTotal": 150}
	]}`
	o, err = client.GetOrder(t.Context(), code)
	require.NoError(t, err)
	assert.Equal(t, int64(350), o.TotalPrice())
}

func TestClient_GetOrder_NoCredentialMeansAnonymous(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"orderCode": "ORD-1"}`)
	}, "")

	_, err := client.GetOrder(t.Context(), code)
	require.NoError(t, err)
}

func TestClient_NonSuccessBecomesNetworkError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"errorMessage": "order locked"}`)
	}, "")

	_, err := client.GetOrder(t.Context(), code)

	require.ErrorIs(t, err, errs.ErrNetwork)
	var netErr *errs.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusBadRequest, netErr.StatusCode)
	assert.Equal(t, "order locked", netErr.Message)
}

func TestClient_NonSuccessWithoutMessageUsesStatusText(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, "")

	err := client.AdvanceStatus(t.Context(), code)

	var netErr *errs.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), netErr.Message)
}

func TestClient_TransportFailureBecomesNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client, err := backend.NewClient(server.URL, time.Second, backend.NewStaticTokenSource("", discardLogger()), discardLogger())
	require.NoError(t, err)

	_, err = client.GetOrder(t.Context(), code)

	var netErr *errs.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.StatusCode)
}

func TestClient_GetOrderDetails(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/OrderDetail/order/ORD-1", r.URL.Path)
		writeJSON(w, http.StatusOK, `[
			{"orderDetailId": 7, "containerType": "2", "price": "1000", "quantity": "3",
			 "productTypeIds": [1, "4"], "serviceIds": [], "storageCode": "S-1", "containerCode": "C-9"},
			{"orderDetailId": 8, "price": 500}
		]`)
	}, "")

	details, err := client.GetOrderDetails(t.Context(), code)
	require.NoError(t, err)
	require.Len(t, details, 2)

	first := details[0]
	assert.Equal(t, kernel.DetailID(7), first.ID())
	assert.Equal(t, int64(2), first.ContainerTypeID())
	assert.Equal(t, int64(3), first.Quantity())
	assert.Equal(t, []int64{1, 4}, first.ProductTypeIDs())
	assert.Equal(t, int64(3000), first.SubTotal())
	assert.False(t, first.IsAutoPriced())
	require.NotNil(t, first.Placement().StorageCode)
	assert.Equal(t, "S-1", *first.Placement().StorageCode)
	assert.Equal(t, "C-9", first.Placement().ContainerCode)

	second := details[1]
	assert.Equal(t, int64(1), second.Quantity())
	assert.Equal(t, int64(1), second.ContainerQuantity())
	assert.Equal(t, int64(500), second.SubTotal())
}

func submitPayload() ports.SubmitPayload {
	storage := "S-1"
	return ports.SubmitPayload{
		Order: order.Snapshot{
			Code:         "ORD-1",
			Status:       "verify",
			TotalPrice:   1_200,
			UnpaidAmount: 200,
			Contact:      order.Contact{CustomerName: "Lan", Phone: "0900"},
		},
		Details: []order.DetailSnapshot{
			{ID: 7, ContainerTypeID: 2, ContainerQuantity: 1, Quantity: 1, Price: 1_000, SubTotal: 1_000,
				Placement: order.Placement{StorageCode: &storage}},
			{ID: -1, ContainerQuantity: 1, Quantity: 2, Price: 100, SubTotal: 200},
		},
	}
}

func TestClient_PutOrderWithDetails_SendsWireShape(t *testing.T) {
	var body map[string]any
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/Order/ORD-1/with-details", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusNoContent)
	}, "")

	result, err := client.PutOrderWithDetails(t.Context(), code, submitPayload())
	require.NoError(t, err)

	assert.Equal(t, "verify", body["status"])
	assert.InDelta(t, 1200, body["totalPrice"], 0)
	assert.Equal(t, "0900", body["phoneContact"])
	assert.Nil(t, body["paymentStatus"])
	details, ok := body["orderDetails"].([]any)
	require.True(t, ok)
	require.Len(t, details, 2)
	first := details[0].(map[string]any)
	assert.Equal(t, "1", first["quantity"])
	assert.Equal(t, "S-1", first["storageCode"])
	assert.InDelta(t, 2, first["containerType"], 0)
	assert.Equal(t, []any{}, first["productTypeIds"])
	second := details[1].(map[string]any)
	assert.InDelta(t, -1, second["orderDetailId"], 0)

	// empty answer echoes the payload
	assert.Equal(t, int64(1_200), result.Order.TotalPrice())
	require.Len(t, result.Details, 2)
	assert.Equal(t, kernel.DetailID(-1), result.Details[1].ID())
}

func TestClient_PutOrderWithDetails_ReadsNestedResult(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"data": {
			"order": {"orderCode": "ORD-1", "status": "verify", "totalPrice": 1300, "unpaidAmount": 300},
			"orderDetails": [{"orderDetailId": 7, "price": 1000}, {"orderDetailId": 12, "price": 300}]
		}}`)
	}, "")

	result, err := client.PutOrderWithDetails(t.Context(), code, submitPayload())
	require.NoError(t, err)

	assert.Equal(t, int64(1_300), result.Order.TotalPrice())
	require.Len(t, result.Details, 2)
	assert.Equal(t, kernel.DetailID(12), result.Details[1].ID())
}

func TestClient_PutOrderWithDetails_TopLevelOrderAndArrayDetails(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"orderCode": "ORD-1", "totalPrice": 999, "data": [{"orderDetailId": 3, "price": 999}]}`)
	}, "")

	result, err := client.PutOrderWithDetails(t.Context(), code, submitPayload())
	require.NoError(t, err)

	assert.Equal(t, int64(999), result.Order.TotalPrice())
	require.Len(t, result.Details, 1)
	assert.Equal(t, kernel.DetailID(3), result.Details[0].ID())
}

func TestClient_AdvanceStatus(t *testing.T) {
	called := false
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/Order/ORD-1/status", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}, "")

	require.NoError(t, client.AdvanceStatus(t.Context(), code))
	assert.True(t, called)
}

func TestClient_AppendImages(t *testing.T) {
	respond := `{"orderCode": "ORD-1", "images": ["https://cdn/a.png", "https://cdn/b.png"]}`
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Images []string `json:"images"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"https://cdn/a.png", "https://cdn/b.png"}, body.Images)
		writeJSON(w, http.StatusOK, respond)
	}, "")

	o, err := client.AppendImages(t.Context(), code, []string{"https://cdn/a.png", "https://cdn/b.png"})
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, []string{"https://cdn/a.png", "https://cdn/b.png"}, o.Images())

	respond = `{"success": true}`
	o, err = client.AppendImages(t.Context(), code, []string{"https://cdn/a.png", "https://cdn/b.png"})
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestClient_CreatePaymentLink(t *testing.T) {
	tests := []struct {
		name    string
		respond func(w http.ResponseWriter)
		want    string
	}{
		{
			name:    "data string",
			respond: func(w http.ResponseWriter) { writeJSON(w, http.StatusOK, `{"data": "https://pay/1"}`) },
			want:    "https://pay/1",
		},
		{
			name:    "data object",
			respond: func(w http.ResponseWriter) { writeJSON(w, http.StatusOK, `{"data": {"paymentUrl": "https://pay/2"}}`) },
			want:    "https://pay/2",
		},
		{
			name:    "top level object",
			respond: func(w http.ResponseWriter) { writeJSON(w, http.StatusOK, `{"checkoutUrl": "https://pay/3"}`) },
			want:    "https://pay/3",
		},
		{
			name: "location header",
			respond: func(w http.ResponseWriter) {
				w.Header().Set("Location", "https://pay/4")
				w.WriteHeader(http.StatusCreated)
			},
			want: "https://pay/4",
		},
		{
			name: "url in text",
			respond: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusOK)
				_, _ = io.WriteString(w, "open https://pay/5?x=1 to pay")
			},
			want: "https://pay/5?x=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/PayOs/mobile/create-link/ORD-1", r.URL.Path)
				tt.respond(w)
			}, "")

			link, err := client.CreatePaymentLink(t.Context(), code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, link)
		})
	}
}

func TestClient_CreatePaymentLink_MissingURL(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"data": {}}`)
	}, "")

	_, err := client.CreatePaymentLink(t.Context(), code)

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	assert.False(t, errors.Is(err, errs.ErrNetwork))
}

func TestClient_GetActiveOrders(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Order/employee/EMP%201/active-orders", r.URL.EscapedPath())
		writeJSON(w, http.StatusOK, `{"result": [
			{"orderCode": "A", "status": "pending"},
			{"status": "verify"},
			{"orderCode": "B", "status": "delivered"}
		]}`)
	}, "")

	orders, err := client.GetActiveOrders(t.Context(), "EMP 1")
	require.NoError(t, err)

	require.Len(t, orders, 2)
	assert.Equal(t, "A", orders[0].Code().String())
	assert.Equal(t, "B", orders[1].Code().String())
}

func TestClient_GetCatalog(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/ProductType":
			assert.Equal(t, "1", r.URL.Query().Get("pageNumber"))
			assert.Equal(t, "200", r.URL.Query().Get("pageSize"))
			writeJSON(w, http.StatusOK, `{"data": [
				{"productTypeId": 1, "vname": "Dễ vỡ", "status": "Active"},
				{"id": 2, "name": "Heavy", "isActive": false},
				{"name": "no id"}
			]}`)
		case "/api/ContainerType":
			writeJSON(w, http.StatusOK, `[{"containerTypeId": 3, "type": "Box", "price": "120000.50"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, "")

	products, err := client.GetProductTypes(t.Context())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, ports.CatalogEntry{ID: 1, Name: "Dễ vỡ", Price: products[0].Price, Active: true}, products[0])
	assert.False(t, products[1].Active)

	containers, err := client.GetContainerTypes(t.Context())
	require.NoError(t, err)
	require.Len(t, containers, 1)
	assert.Equal(t, "Box", containers[0].Name)
	assert.Equal(t, "120000.5", containers[0].Price.String())

	_, err = client.GetShelfTypes(t.Context())
	require.ErrorIs(t, err, errs.ErrNetwork)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "employee-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestStaticTokenSource(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	empty := backend.NewStaticTokenSource("  ", discardLogger())
	_, ok := empty.Token(ctx)
	assert.False(t, ok)

	opaque := backend.NewStaticTokenSource("opaque-token", discardLogger())
	token, ok := opaque.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "opaque-token", token)
	assert.True(t, opaque.ExpiresAt().IsZero())

	valid := signedToken(t, now.Add(time.Hour))
	source := backend.NewStaticTokenSource(valid, discardLogger()).WithClock(func() time.Time { return now })
	token, ok = source.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, valid, token)

	expired := backend.NewStaticTokenSource(signedToken(t, now.Add(-time.Minute)), discardLogger()).
		WithClock(func() time.Time { return now })
	_, ok = expired.Token(ctx)
	assert.False(t, ok)
}
