package backend

import (
	"context"
	"net/http"
	"net/url"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

type catalogEndpoint struct {
	path  string
	query url.Values
}

var catalogEndpoints = map[ports.CatalogKind]catalogEndpoint{
	ports.CatalogContainerTypes: {path: "/api/ContainerType"},
	ports.CatalogProductTypes: {
		path:  "/api/ProductType",
		query: url.Values{"pageNumber": {"1"}, "pageSize": {"200"}},
	},
	ports.CatalogServiceTypes: {path: "/api/ServiceType"},
	ports.CatalogStorageTypes: {path: "/api/StorageType"},
	ports.CatalogShelfTypes:   {path: "/api/ShelfType"},
}

// GetCatalog fetches one lookup table. Rows without an id are skipped.
func (c *Client) GetCatalog(ctx context.Context, kind ports.CatalogKind) ([]ports.CatalogEntry, error) {
	endpoint, ok := catalogEndpoints[kind]
	if !ok {
		return nil, errs.NewValueIsInvalidError("catalogKind")
	}

	op := "get-" + string(kind)
	resp, err := c.do(ctx, op, http.MethodGet, endpoint.path, endpoint.query, nil)
	if err != nil {
		return nil, err
	}
	v, err := resp.decode(op)
	if err != nil {
		return nil, err
	}

	items := list(v)
	if items == nil {
		// paged answers keep rows under items
		if obj, ok := asObject(unwrap(v)); ok {
			items, _ = obj.items("items", "Items")
		}
	}

	entries := make([]ports.CatalogEntry, 0, len(items))
	for _, item := range items {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		if entry, ok := decodeCatalogEntry(kind, obj); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// GetContainerTypes fetches the container type table.
func (c *Client) GetContainerTypes(ctx context.Context) ([]ports.CatalogEntry, error) {
	return c.GetCatalog(ctx, ports.CatalogContainerTypes)
}

// GetProductTypes fetches the first page of product types.
func (c *Client) GetProductTypes(ctx context.Context) ([]ports.CatalogEntry, error) {
	return c.GetCatalog(ctx, ports.CatalogProductTypes)
}

// GetServiceTypes fetches the service type table.
func (c *Client) GetServiceTypes(ctx context.Context) ([]ports.CatalogEntry, error) {
	return c.GetCatalog(ctx, ports.CatalogServiceTypes)
}

// GetStorageTypes fetches the storage type table.
func (c *Client) GetStorageTypes(ctx context.Context) ([]ports.CatalogEntry, error) {
	return c.GetCatalog(ctx, ports.CatalogStorageTypes)
}

// GetShelfTypes fetches the shelf type table.
func (c *Client) GetShelfTypes(ctx context.Context) ([]ports.CatalogEntry, error) {
	return c.GetCatalog(ctx, ports.CatalogShelfTypes)
}
