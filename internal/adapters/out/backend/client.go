// Package backend is the HTTP client of the authoritative order backend.
// payload.go is the only place that knows the backend's JSON shapes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const defaultTimeout = 15 * time.Second

var (
	_ ports.OrderBackend          = (*Client)(nil)
	_ ports.PaymentBackend        = (*Client)(nil)
	_ ports.EmployeeOrdersBackend = (*Client)(nil)
	_ ports.CatalogBackend        = (*Client)(nil)
)

// Client talks to the backend over HTTP. Every call is a single attempt.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	credentials ports.CredentialSource
	logger      *slog.Logger
}

// response is a raw 2xx answer.
type response struct {
	body   []byte
	header http.Header
}

// NewClient creates a backend client rooted at baseURL.
//
// Returns:
//   - ValueIsRequiredError if baseURL is blank or credentials is nil
//   - ValueIsInvalidError if baseURL is not an absolute URL
//
// A non-positive timeout falls back to 15 seconds.
func NewClient(
	baseURL string,
	timeout time.Duration,
	credentials ports.CredentialSource,
	logger *slog.Logger,
) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errs.NewValueIsInvalidErrorWithCause("baseURL", err)
	}
	if credentials == nil {
		return nil, errs.NewValueIsRequiredError("credentials")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:     u,
		httpClient:  &http.Client{Timeout: timeout},
		credentials: credentials,
		logger:      logger.With("component", "backend_client"),
	}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawQuery = query.Encode()
	return u.String()
}

// do performs one request. Transport failures and non-2xx answers become
// NetworkError; the message is the body's message or errorMessage when present.
func (c *Client) do(
	ctx context.Context,
	op, method, path string,
	query url.Values,
	body any,
) (response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return response{}, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return response{}, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json, text/plain")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.credentials.Token(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "backend request failed", "op", op, "error", err)
		return response{}, errs.NewNetworkErrorWithCause(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, errs.NewNetworkErrorWithCause(op, err)
	}

	c.logger.DebugContext(ctx, "backend request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := errorMessage(raw)
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return response{}, errs.NewNetworkError(op, resp.StatusCode, message)
	}
	return response{body: raw, header: resp.Header}, nil
}

// decode parses a 2xx body. An empty body decodes to nil.
func (r response) decode(op string) (any, error) {
	if len(bytes.TrimSpace(r.body)) == 0 {
		return nil, nil
	}
	v, err := decodeJSON(r.body)
	if err != nil {
		return nil, errs.NewNetworkErrorWithCause(op, fmt.Errorf("decode response: %w", err))
	}
	return v, nil
}

var errNoOrder = errors.New("response carries no order")
