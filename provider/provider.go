package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/terralab/prockit/algorithm"
	"github.com/terralab/prockit/errors"
	"github.com/terralab/prockit/logger"
	"github.com/terralab/prockit/util"
)

// Provider wraps a Backend with an ordered, name-unique algorithm registry
// and the load/refresh/unload lifecycle. A Provider exclusively owns the
// descriptors registered with it; it must not be copied.
type Provider struct {
	backend Backend
	prefs   FormatPreferences
	log     *logger.Logger

	mu         sync.Mutex
	entries    []*algorithm.Descriptor
	lookup     map[string]*algorithm.Descriptor
	refreshing bool
	loaded     bool
	unloaded   bool

	listeners notifier
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger used for registration and lifecycle events.
func WithLogger(log *logger.Logger) Option {
	return func(p *Provider) { p.log = log }
}

// WithFormatPreferences injects the host's preferred output formats, consulted
// first when resolving default file extensions.
func WithFormatPreferences(prefs FormatPreferences) Option {
	return func(p *Provider) { p.prefs = prefs }
}

// New creates a Provider around the given backend. The provider starts empty;
// no algorithms are loaded until Load or RefreshAlgorithms is called.
func New(backend Backend, opts ...Option) *Provider {
	p := &Provider{
		backend: backend,
		lookup:  make(map[string]*algorithm.Descriptor),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get("provider")
	}
	if backend != nil {
		p.log = p.log.WithFields(map[string]interface{}{logger.FieldProvider: backend.ID()})
	}
	return p
}

// ID returns the unique provider identifier.
func (p *Provider) ID() string { return p.backend.ID() }

// Name returns the localized provider display name.
func (p *Provider) Name() string { return p.backend.Name() }

// LongName returns the longer display name variant, falling back to Name.
func (p *Provider) LongName() string {
	if ln, ok := p.backend.(LongNamer); ok {
		if name := ln.LongName(); name != "" {
			return name
		}
	}
	return p.backend.Name()
}

// CanBeActivated reports whether the backend's external dependencies are
// satisfiable. No side effects.
func (p *Provider) CanBeActivated() bool {
	if a, ok := p.backend.(Activatable); ok {
		return a.CanBeActivated()
	}
	return true
}

// IsActive reports the backend's current operational readiness.
func (p *Provider) IsActive() bool {
	if a, ok := p.backend.(ActiveReporter); ok {
		return a.IsActive()
	}
	return true
}

// SupportedOutputRasterLayerExtensions returns the raster output formats the
// backend's algorithms can write, normalized to lowercase without dots.
func (p *Provider) SupportedOutputRasterLayerExtensions() []string {
	if r, ok := p.backend.(RasterOutputSupport); ok {
		return util.NormalizeExtensions(r.SupportedOutputRasterLayerExtensions())
	}
	return nil
}

// SupportedOutputVectorLayerExtensions returns the vector output formats the
// backend's algorithms can write, normalized to lowercase without dots.
func (p *Provider) SupportedOutputVectorLayerExtensions() []string {
	if v, ok := p.backend.(VectorOutputSupport); ok {
		return util.NormalizeExtensions(v.SupportedOutputVectorLayerExtensions())
	}
	return nil
}

// SupportsNonFileBasedOutput reports whether individual algorithm parameters
// declare non-file output support.
func (p *Provider) SupportsNonFileBasedOutput() bool {
	if n, ok := p.backend.(NonFileOutputSupport); ok {
		return n.SupportsNonFileBasedOutput()
	}
	return false
}

// Icon returns an identity-only icon reference, or "" for the default icon.
func (p *Provider) Icon() string {
	if i, ok := p.backend.(IconSource); ok {
		return i.Icon()
	}
	return ""
}

// SVGIconPath returns an identity-only SVG icon path, or "" if none.
func (p *Provider) SVGIconPath() string {
	if i, ok := p.backend.(IconSource); ok {
		return i.SVGIconPath()
	}
	return ""
}

// Load runs backend setup (if any) and triggers the initial algorithm load.
// The host calls Load exactly once at provider registration time. A provider
// that cannot be activated loads as an empty, inert registry rather than
// failing hard.
func (p *Provider) Load(ctx context.Context) error {
	p.mu.Lock()
	if p.unloaded {
		p.mu.Unlock()
		return errors.Conflict(fmt.Sprintf("provider %q has been unloaded", p.ID()))
	}
	if p.loaded {
		p.mu.Unlock()
		return errors.Conflict(fmt.Sprintf("provider %q is already loaded", p.ID()))
	}
	p.loaded = true
	p.mu.Unlock()

	if !p.CanBeActivated() {
		p.log.Warn("provider cannot be activated, loading as inert",
			logger.Fields(logger.FieldProvider, p.ID()))
		return nil
	}

	if b, ok := p.backend.(Bootstrapper); ok {
		if err := b.Setup(ctx); err != nil {
			return errors.ServiceUnavailable(fmt.Sprintf("provider %q", p.ID())).WithCause(err)
		}
	}

	return p.RefreshAlgorithms(ctx)
}

// Unload releases backend-held resources. The host calls Unload exactly once
// before discarding the provider; repeated calls are no-ops. The in-memory
// algorithm set is left intact until the next refresh or until the provider
// itself is discarded.
func (p *Provider) Unload(ctx context.Context) error {
	p.mu.Lock()
	if p.unloaded {
		p.mu.Unlock()
		p.log.Debug("provider already unloaded")
		return nil
	}
	p.unloaded = true
	p.mu.Unlock()

	if t, ok := p.backend.(Teardowner); ok {
		if err := t.Teardown(ctx); err != nil {
			return fmt.Errorf("teardown provider %q: %w", p.ID(), err)
		}
	}
	p.log.Info("provider unloaded")
	return nil
}

// RefreshAlgorithms rebuilds the algorithm set from scratch: the current
// mapping is cleared, the backend repopulates it, and listeners are notified.
// Safe to call repeatedly; an empty result is valid. An inactive provider
// refreshes to an empty set without consulting the backend. Calling refresh
// from within a running refresh is a contract violation.
func (p *Provider) RefreshAlgorithms(ctx context.Context) error {
	p.mu.Lock()
	if p.refreshing {
		p.mu.Unlock()
		return errors.ContractViolation(
			fmt.Sprintf("refresh of provider %q re-entered while already running", p.ID()))
	}
	p.refreshing = true
	p.entries = nil
	p.lookup = make(map[string]*algorithm.Descriptor)
	active := p.IsActive()
	p.mu.Unlock()

	if !active {
		p.mu.Lock()
		p.refreshing = false
		p.mu.Unlock()
		p.log.Warn("provider inactive, refreshed to empty set")
		return nil
	}

	reg := &Registrar{provider: p}
	err := p.backend.LoadAlgorithms(ctx, reg)
	reg.invalidate()

	p.mu.Lock()
	p.refreshing = false
	count := len(p.entries)
	p.mu.Unlock()

	if err != nil {
		return fmt.Errorf("load algorithms for provider %q: %w", p.ID(), err)
	}

	p.log.Info("algorithms loaded", logger.Fields(logger.FieldCount, count))
	p.listeners.notify()
	return nil
}

// Algorithms returns the currently registered descriptors in registration
// order. The returned slice is a copy; the descriptors it references remain
// owned by the provider and are only valid until the next refresh.
func (p *Provider) Algorithms() []*algorithm.Descriptor {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*algorithm.Descriptor, len(p.entries))
	copy(out, p.entries)
	return out
}

// Algorithm returns the descriptor registered under the exact given name.
// There is no partial or fuzzy matching; an unknown name is not an error.
func (p *Provider) Algorithm(name string) (*algorithm.Descriptor, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.lookup[name]
	return d, ok
}

// add registers one descriptor, enforcing validity and name uniqueness.
// Only reachable through a live Registrar.
func (p *Provider) add(d *algorithm.Descriptor) error {
	if err := d.Validate(); err != nil {
		p.log.Warn("rejected invalid algorithm descriptor",
			logger.Fields(logger.FieldError, err.Error()))
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.lookup[d.Name()]; exists {
		p.log.Warn("duplicate algorithm name rejected",
			logger.Fields(logger.FieldAlgorithm, d.Name()))
		return errors.AlreadyExists("algorithm", d.Name())
	}
	p.entries = append(p.entries, d)
	p.lookup[d.Name()] = d
	return nil
}

// OnAlgorithmsLoaded registers fn to be called synchronously after each
// successful refresh. The returned handle removes the listener again.
func (p *Provider) OnAlgorithmsLoaded(fn func()) ListenerHandle {
	return p.listeners.add(fn)
}

// RemoveListener unregisters a listener previously added with
// OnAlgorithmsLoaded. It reports whether the handle was known.
func (p *Provider) RemoveListener(h ListenerHandle) bool {
	return p.listeners.remove(h)
}
