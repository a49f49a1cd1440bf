package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// Registry tracks open editing sessions and the latest known state of every
// order this process has loaded. It is safe for concurrent use.
//
// The known state is what the update queue reads and optimistically writes;
// editing sessions keep their own baseline for pricing.
type Registry struct {
	backend   ports.OrderBackend
	pricer    order.PriceCalculator
	publisher ports.EventPublisher
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[kernel.OrderCode]*EditSession
	known    map[kernel.OrderCode]*order.Order
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithPublisher sets the sink for order events.
func WithPublisher(publisher ports.EventPublisher) Option {
	return func(r *Registry) {
		r.publisher = publisher
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(
	backend ports.OrderBackend,
	pricer order.PriceCalculator,
	logger *slog.Logger,
	opts ...Option,
) *Registry {
	r := &Registry{
		backend:  backend,
		pricer:   pricer,
		logger:   logger.With("component", "session_registry"),
		now:      time.Now,
		sessions: make(map[kernel.OrderCode]*EditSession),
		known:    make(map[kernel.OrderCode]*order.Order),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open loads the order and its details and starts an editing session.
// Opening an order that already has a session refreshes it instead; a failed
// refresh is logged and the existing session is returned unchanged.
func (r *Registry) Open(ctx context.Context, code kernel.OrderCode) (*EditSession, error) {
	if s, ok := r.lookup(code); ok {
		r.Refresh(ctx, code)
		return s, nil
	}

	o, details, err := r.fetch(ctx, code)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	s, exists := r.sessions[code]
	if !exists {
		s = newEditSession(o, details, r.pricer, r.now)
		r.sessions[code] = s
	}
	r.known[code] = o.Clone()
	r.mu.Unlock()

	if exists {
		s.Rebase(o, details)
	}

	r.logger.InfoContext(ctx, "editing session opened", "orderCode", code.String(), "details", len(details))
	r.publish(ctx, ports.EventOrderUpdated, o)
	return s, nil
}

// Get returns the open session of an order.
func (r *Registry) Get(code kernel.OrderCode) (*EditSession, error) {
	s, ok := r.lookup(code)
	if !ok {
		return nil, errs.NewObjectNotFoundError("session", code.String())
	}
	s.mu.Lock()
	s.touch()
	s.mu.Unlock()
	return s, nil
}

// Close drops the session of an order. The known order state is kept.
func (r *Registry) Close(code kernel.OrderCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[code]
	delete(r.sessions, code)
	return ok
}

// Refresh refetches the baseline of an open session and merges it into the
// working copy. Failures are logged and leave the session as it was.
func (r *Registry) Refresh(ctx context.Context, code kernel.OrderCode) {
	s, ok := r.lookup(code)
	if !ok {
		return
	}

	o, details, err := r.fetch(ctx, code)
	if err != nil {
		r.logger.WarnContext(ctx, "session refresh failed, keeping working copy",
			"orderCode", code.String(),
			"error", err,
		)
		return
	}

	s.Rebase(o, details)
	r.storeKnown(o)
	r.publish(ctx, ports.EventOrderUpdated, o)
}

// Reload refetches an order as the new authoritative state, merging it into
// its session if one is open.
func (r *Registry) Reload(ctx context.Context, code kernel.OrderCode) (*order.Order, error) {
	o, details, err := r.fetch(ctx, code)
	if err != nil {
		return nil, err
	}

	if s, ok := r.lookup(code); ok {
		s.Rebase(o, details)
	}
	r.storeKnown(o)
	r.publish(ctx, ports.EventOrderUpdated, o)
	return o.Clone(), nil
}

// AdoptSubmitted installs the response to a submit of sent as the new
// baseline. Edits that arrived while the submit was in flight are kept.
func (r *Registry) AdoptSubmitted(ctx context.Context, sent ports.SubmitPayload, result ports.OrderWithDetails) {
	o := result.Order
	// the submit payload does not carry images, keep what is known
	if known, ok := r.Known(o.Code()); ok {
		o = o.Clone()
		o.MergeImages(known.Images()...)
	}

	if s, ok := r.lookup(o.Code()); ok {
		s.Commit(sent, o, result.Details)
	}
	r.storeKnown(o)
	r.publish(ctx, ports.EventOrderUpdated, o)
}

// Order returns the known state of an order, fetching it on first use.
func (r *Registry) Order(ctx context.Context, code kernel.OrderCode) (*order.Order, error) {
	if o, ok := r.Known(code); ok {
		return o, nil
	}

	o, err := r.backend.GetOrder(ctx, code)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.known[code]; ok {
		return existing.Clone(), nil
	}
	r.known[code] = o.Clone()
	return o, nil
}

// Known returns the known state of an order without fetching.
func (r *Registry) Known(code kernel.OrderCode) (*order.Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.known[code]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// Images returns the known image list of an order, fetching the order on first use.
func (r *Registry) Images(ctx context.Context, code kernel.OrderCode) ([]string, error) {
	o, err := r.Order(ctx, code)
	if err != nil {
		return nil, err
	}
	return o.Images(), nil
}

// SetImages records images as the known image list of an order.
func (r *Registry) SetImages(ctx context.Context, code kernel.OrderCode, images []string) {
	r.mu.Lock()
	o, ok := r.known[code]
	if ok {
		snap := o.Snapshot()
		snap.Images = images
		if restored, err := order.RestoreOrder(snap); err == nil {
			r.known[code] = restored
			o = restored
		}
	}
	r.mu.Unlock()

	if !ok {
		r.logger.WarnContext(ctx, "images set for unknown order", "orderCode", code.String())
		return
	}
	r.publish(ctx, ports.EventOrderImages, o)
}

// Adopt records an order returned by the backend as its known state.
func (r *Registry) Adopt(ctx context.Context, o *order.Order) {
	r.storeKnown(o)
	r.publish(ctx, ports.EventOrderUpdated, o)
}

// RepriceAll reprices the auto-priced details of every open session.
func (r *Registry) RepriceAll(ctx context.Context) int {
	changed := 0
	for _, s := range r.snapshotSessions() {
		if n := s.Reprice(); n > 0 {
			changed += n
			r.logger.DebugContext(ctx, "session repriced", "orderCode", s.Code().String(), "details", n)
		}
	}
	return changed
}

// EvictIdle closes every session unused for longer than ttl and returns the
// evicted order codes.
func (r *Registry) EvictIdle(ctx context.Context, ttl time.Duration) []kernel.OrderCode {
	cutoff := r.now().Add(-ttl)

	var evicted []kernel.OrderCode
	for _, s := range r.snapshotSessions() {
		if s.LastAccess().Before(cutoff) {
			evicted = append(evicted, s.Code())
		}
	}

	r.mu.Lock()
	for _, code := range evicted {
		delete(r.sessions, code)
		delete(r.known, code)
	}
	r.mu.Unlock()

	if len(evicted) > 0 {
		r.logger.InfoContext(ctx, "idle sessions evicted", "count", len(evicted))
	}
	return evicted
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) lookup(code kernel.OrderCode) (*EditSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[code]
	return s, ok
}

func (r *Registry) snapshotSessions() []*EditSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*EditSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) storeKnown(o *order.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[o.Code()] = o.Clone()
}

func (r *Registry) fetch(ctx context.Context, code kernel.OrderCode) (*order.Order, []*order.Detail, error) {
	o, err := r.backend.GetOrder(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	details, err := r.backend.GetOrderDetails(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	return o, details, nil
}

func (r *Registry) publish(ctx context.Context, eventType string, o *order.Order) {
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(ctx, ports.OrderEvent{
		Type:      eventType,
		OrderCode: o.Code().String(),
		Payload:   NewOrderPayload(o),
	})
}
