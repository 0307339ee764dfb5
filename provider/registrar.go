package provider

import (
	"sync"

	"github.com/terralab/prockit/algorithm"
	"github.com/terralab/prockit/errors"
)

// Registrar is the narrow handle a backend uses to register algorithms during
// a refresh. Ownership of each accepted descriptor transfers to the provider.
// The registrar is only live for the duration of the refresh that created it;
// a backend holding on to it past that point gets contract-violation errors.
type Registrar struct {
	mu       sync.Mutex
	provider *Provider
}

// Add registers one descriptor with the owning provider. It returns an error,
// without registering, when the descriptor fails validity checks or an
// algorithm with the same name already exists. Both are recoverable: the
// backend should report and continue loading its remaining algorithms.
func (r *Registrar) Add(d *algorithm.Descriptor) error {
	r.mu.Lock()
	p := r.provider
	r.mu.Unlock()
	if p == nil {
		return errors.ContractViolation("algorithm registered outside of a refresh")
	}
	return p.add(d)
}

// invalidate severs the registrar from its provider once the refresh ends.
func (r *Registrar) invalidate() {
	r.mu.Lock()
	r.provider = nil
	r.mu.Unlock()
}
