// Package catalog caches the backend lookup tables in memory.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fulfillment/internal/core/ports"
)

// Store holds the latest successfully fetched copy of every lookup table.
// It is safe for concurrent use and implements services.PricingCatalog.
type Store struct {
	backend ports.CatalogBackend
	logger  *slog.Logger

	mu          sync.RWMutex
	tables      map[ports.CatalogKind][]ports.CatalogEntry
	byID        map[ports.CatalogKind]map[int64]ports.CatalogEntry
	refreshedAt map[ports.CatalogKind]time.Time
}

// NewStore creates an empty Store. Call Refresh to populate it.
func NewStore(backend ports.CatalogBackend, logger *slog.Logger) *Store {
	return &Store{
		backend:     backend,
		logger:      logger.With("component", "catalog_store"),
		tables:      make(map[ports.CatalogKind][]ports.CatalogEntry),
		byID:        make(map[ports.CatalogKind]map[int64]ports.CatalogEntry),
		refreshedAt: make(map[ports.CatalogKind]time.Time),
	}
}

// Refresh fetches every table. A table whose fetch fails keeps its previous
// contents; the failures are returned joined.
func (s *Store) Refresh(ctx context.Context) error {
	var refreshErrs []error
	for _, kind := range ports.CatalogKinds() {
		if err := s.RefreshKind(ctx, kind); err != nil {
			refreshErrs = append(refreshErrs, err)
		}
	}
	return errors.Join(refreshErrs...)
}

// RefreshKind fetches a single table.
func (s *Store) RefreshKind(ctx context.Context, kind ports.CatalogKind) error {
	entries, err := s.backend.GetCatalog(ctx, kind)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog refresh failed, keeping previous table",
			"kind", kind,
			"error", err,
		)
		return fmt.Errorf("refresh %s: %w", kind, err)
	}

	index := make(map[int64]ports.CatalogEntry, len(entries))
	for _, e := range entries {
		if _, dup := index[e.ID]; !dup {
			index[e.ID] = e
		}
	}

	s.mu.Lock()
	s.tables[kind] = slices.Clone(entries)
	s.byID[kind] = index
	s.refreshedAt[kind] = time.Now()
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "catalog refreshed", "kind", kind, "entries", len(entries))
	return nil
}

// Entries returns a copy of a table in backend order.
func (s *Store) Entries(kind ports.CatalogKind) []ports.CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tables[kind])
}

// Lookup returns one entry of a table.
func (s *Store) Lookup(kind ports.CatalogKind, id int64) (ports.CatalogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[kind][id]
	return e, ok
}

// RefreshedAt returns when a table was last fetched successfully.
func (s *Store) RefreshedAt(kind ports.CatalogKind) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.refreshedAt[kind]
	return t, ok
}

// ContainerBasePrice returns the base price of a container type.
// Reports false when the type is unknown or the table is not loaded yet.
func (s *Store) ContainerBasePrice(containerTypeID int64) (decimal.Decimal, bool) {
	e, ok := s.Lookup(ports.CatalogContainerTypes, containerTypeID)
	if !ok {
		return decimal.Zero, false
	}
	return e.Price, true
}

// ProductTypeName returns the display name of a product type, used to match
// surcharge rules.
func (s *Store) ProductTypeName(productTypeID int64) (string, bool) {
	e, ok := s.Lookup(ports.CatalogProductTypes, productTypeID)
	if !ok {
		return "", false
	}
	return e.Name, true
}
