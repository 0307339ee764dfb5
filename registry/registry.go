package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/terralab/prockit/algorithm"
	"github.com/terralab/prockit/component"
	"github.com/terralab/prockit/errors"
	"github.com/terralab/prockit/logger"
	"github.com/terralab/prockit/observability"
	"github.com/terralab/prockit/provider"
)

// ComponentName is the name the Registry registers under in a component registry.
const ComponentName = "provider-registry"

// ObserverHandle identifies a registered observer for later removal.
type ObserverHandle = uuid.UUID

// observerEntry pairs a handle with its callback, preserving registration order.
type observerEntry struct {
	handle ObserverHandle
	fn     func(*provider.Provider)
}

// entry holds a provider and whether the registry has loaded it.
type entry struct {
	provider *provider.Provider
	loaded   bool
}

// Registry is an ordered container of providers. Providers are loaded when
// added (or on Start, for providers added before the registry starts) and
// unloaded in reverse order on Stop.
type Registry struct {
	mu      sync.Mutex
	entries []*entry
	lookup  map[string]*entry
	started bool

	added   []observerEntry
	removed []observerEntry

	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used by the registry.
func WithLogger(log *logger.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// WithMetrics attaches a metrics instrument set. When nil, recording is skipped.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// New creates an empty provider registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		lookup: make(map[string]*entry),
		log:    logger.Get("registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a provider and, if the registry has started, loads it.
// Duplicate provider IDs are rejected. A provider that cannot be activated
// is kept inert: it is added and queryable but never asked for algorithms.
func (r *Registry) Add(ctx context.Context, p *provider.Provider) error {
	if p == nil {
		return errors.InvalidInput("provider", "must not be nil")
	}

	r.mu.Lock()
	id := p.ID()
	if _, exists := r.lookup[id]; exists {
		r.mu.Unlock()
		return errors.AlreadyExists("provider", id)
	}

	e := &entry{provider: p}
	r.entries = append(r.entries, e)
	r.lookup[id] = e
	started := r.started
	r.mu.Unlock()

	if started {
		if err := r.loadEntry(ctx, e); err != nil {
			r.mu.Lock()
			delete(r.lookup, id)
			for i, cur := range r.entries {
				if cur == e {
					r.entries = append(r.entries[:i], r.entries[i+1:]...)
					break
				}
			}
			r.mu.Unlock()
			return err
		}
	}

	r.log.Info("provider added", logger.Fields(
		logger.FieldProvider, id,
		"active", p.IsActive(),
	))
	if r.metrics != nil {
		r.metrics.RecordProviderAdded(ctx)
	}
	r.notifyAdded(p)
	return nil
}

// Remove unloads a provider and drops it from the registry.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	e, exists := r.lookup[id]
	if !exists {
		r.mu.Unlock()
		return errors.NotFound("provider", id)
	}
	delete(r.lookup, id)
	for i, cur := range r.entries {
		if cur == e {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	if err := e.provider.Unload(ctx); err != nil {
		r.log.Error("provider unload failed", logger.ErrorFields(id, err))
	}

	r.log.Info("provider removed", logger.Fields(logger.FieldProvider, id))
	if r.metrics != nil {
		r.metrics.RecordProviderRemoved(ctx)
	}
	r.notifyRemoved(e.provider)
	return nil
}

// ProviderByID returns the provider with the given ID.
func (r *Registry) ProviderByID(id string) (*provider.Provider, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, exists := r.lookup[id]; exists {
		return e.provider, true
	}
	return nil, false
}

// Providers returns all providers in registration order.
func (r *Registry) Providers() []*provider.Provider {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*provider.Provider, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.provider)
	}
	return out
}

// AlgorithmByID resolves a composite "provider:algorithm" identifier to the
// descriptor and its owning provider. Matching is exact; there is no fuzzy
// or case-insensitive fallback.
func (r *Registry) AlgorithmByID(id string) (*algorithm.Descriptor, *provider.Provider, bool) {
	providerID, name, found := strings.Cut(id, ":")
	if !found || providerID == "" || name == "" {
		return nil, nil, false
	}

	p, exists := r.ProviderByID(providerID)
	if !exists {
		return nil, nil, false
	}
	d, exists := p.Algorithm(name)
	if !exists {
		return nil, nil, false
	}
	return d, p, true
}

// RefreshAll re-runs the algorithm refresh on every active provider.
// Inactive providers are skipped. Failures do not stop the sweep; the
// returned error aggregates every provider that failed.
func (r *Registry) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, p := range r.Providers() {
		if !p.IsActive() {
			continue
		}
		if err := r.refreshProvider(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("refresh %s: %w", p.ID(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("refresh errors: %v", errs)
	}
	return nil
}

// refreshProvider runs a single refresh with metrics and tracing around it.
func (r *Registry) refreshProvider(ctx context.Context, p *provider.Provider) error {
	ctx, span := observability.StartSpan(ctx, "registry.refresh")
	defer span.End()

	before := int64(len(p.Algorithms()))
	start := time.Now()
	err := p.RefreshAlgorithms(ctx)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		observability.SetSpanError(ctx, err)
		if r.metrics != nil {
			r.metrics.RecordError(ctx, "refresh", ComponentName)
		}
	}
	if r.metrics != nil {
		delta := int64(len(p.Algorithms())) - before
		r.metrics.RecordRefresh(ctx, p.ID(), status, duration, delta)
	}
	return err
}

// OnProviderAdded registers an observer invoked after each successful Add.
func (r *Registry) OnProviderAdded(fn func(*provider.Provider)) ObserverHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := uuid.New()
	r.added = append(r.added, observerEntry{handle: h, fn: fn})
	return h
}

// OnProviderRemoved registers an observer invoked after each successful Remove.
func (r *Registry) OnProviderRemoved(fn func(*provider.Provider)) ObserverHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := uuid.New()
	r.removed = append(r.removed, observerEntry{handle: h, fn: fn})
	return h
}

// RemoveObserver unregisters an observer by handle. It reports whether the
// handle was known.
func (r *Registry) RemoveObserver(h ObserverHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.added {
		if o.handle == h {
			r.added = append(r.added[:i], r.added[i+1:]...)
			return true
		}
	}
	for i, o := range r.removed {
		if o.handle == h {
			r.removed = append(r.removed[:i], r.removed[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry) notifyAdded(p *provider.Provider) {
	r.mu.Lock()
	observers := make([]observerEntry, len(r.added))
	copy(observers, r.added)
	r.mu.Unlock()

	for _, o := range observers {
		o.fn(p)
	}
}

func (r *Registry) notifyRemoved(p *provider.Provider) {
	r.mu.Lock()
	observers := make([]observerEntry, len(r.removed))
	copy(observers, r.removed)
	r.mu.Unlock()

	for _, o := range observers {
		o.fn(p)
	}
}

// loadEntry loads a provider exactly once on behalf of the registry.
func (r *Registry) loadEntry(ctx context.Context, e *entry) error {
	if e.loaded {
		return nil
	}
	if err := e.provider.Load(ctx); err != nil {
		return err
	}
	e.loaded = true
	return nil
}

// Name implements component.Component.
func (r *Registry) Name() string { return ComponentName }

// Start loads every provider added so far, in registration order. The first
// load failure aborts the startup.
func (r *Registry) Start(ctx context.Context) error {
	r.mu.Lock()
	entries := make([]*entry, len(r.entries))
	copy(entries, r.entries)
	r.started = true
	r.mu.Unlock()

	for _, e := range entries {
		if err := r.loadEntry(ctx, e); err != nil {
			return fmt.Errorf("load provider %s: %w", e.provider.ID(), err)
		}
	}
	r.log.Info("registry started", logger.Fields(logger.FieldCount, len(entries)))
	return nil
}

// Stop unloads all loaded providers in reverse registration order,
// collecting errors instead of aborting.
func (r *Registry) Stop(ctx context.Context) error {
	r.mu.Lock()
	entries := make([]*entry, len(r.entries))
	copy(entries, r.entries)
	r.started = false
	r.mu.Unlock()

	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !e.loaded {
			continue
		}
		if err := e.provider.Unload(ctx); err != nil {
			errs = append(errs, fmt.Errorf("unload %s: %w", e.provider.ID(), err))
		}
		e.loaded = false
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// Health implements component.Component. The registry is degraded when any
// loaded provider reports itself inactive.
func (r *Registry) Health(ctx context.Context) component.Health {
	providers := r.Providers()

	algorithms := 0
	inactive := 0
	for _, p := range providers {
		algorithms += len(p.Algorithms())
		if !p.IsActive() {
			inactive++
		}
	}

	h := component.Health{
		Name:    ComponentName,
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d providers, %d algorithms", len(providers), algorithms),
	}
	if inactive > 0 {
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("%d providers (%d inactive), %d algorithms", len(providers), inactive, algorithms)
	}
	return h
}
