package component

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/terralab/prockit/logger"
)

const stopTimeout = 10 * time.Second

// entry holds a component and its started state.
type entry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
// Components are started in registration order and stopped in reverse order.
type Registry struct {
	mu      sync.Mutex
	entries []*entry
	lookup  map[string]*entry
	log     *logger.Logger
}

// NewRegistry creates a new component registry.
func NewRegistry() *Registry {
	return &Registry{
		lookup: make(map[string]*entry),
		log:    logger.Get("component"),
	}
}

// Register adds a component to the registry. Components are started in
// the order they are registered, so register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %q already registered", name)
	}

	e := &entry{component: c}
	r.entries = append(r.entries, e)
	r.lookup[name] = e

	r.log.Debug("component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts all components in registration order. The first failure
// aborts the startup; already-started components stay up for StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		name := e.component.Name()
		if err := e.component.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.ErrorFields(name, err))
			return fmt.Errorf("start %s: %w", name, err)
		}
		e.started = true
		r.log.Debug("component started", logger.Fields(logger.FieldComponent, name))
	}
	return nil
}

// StopAll gracefully stops all started components in reverse registration
// order, collecting errors instead of aborting.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		name := e.component.Name()

		stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
		if err := e.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
			r.log.Error("component stop failed", logger.ErrorFields(name, err))
		} else {
			r.log.Debug("component stopped", logger.Fields(logger.FieldComponent, name))
		}
		e.started = false
		cancel()
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// HealthAll returns health status for all registered components.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := make([]Health, 0, len(r.entries))
	for _, e := range r.entries {
		results = append(results, e.component.Health(ctx))
	}
	return results
}

// Get returns a registered component by name, or nil if not found.
func (r *Registry) Get(name string) Component {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, exists := r.lookup[name]; exists {
		return e.component
	}
	return nil
}
