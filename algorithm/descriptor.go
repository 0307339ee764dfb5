package algorithm

import (
	"github.com/terralab/prockit/errors"
	"github.com/terralab/prockit/validation"
)

// Descriptor describes one available processing operation. The name is the
// unique, stable, non-localized identifier within the owning provider and is
// immutable after construction.
type Descriptor struct {
	name        string
	displayName string
	group       string
	tags        []string
	metadata    map[string]any
}

// New creates a Descriptor with the given unique name and localized display
// name. Optional attributes are attached with the chainable With* methods.
func New(name, displayName string) *Descriptor {
	return &Descriptor{
		name:        name,
		displayName: displayName,
	}
}

// WithGroup sets the display group and returns the receiver.
func (d *Descriptor) WithGroup(group string) *Descriptor {
	d.group = group
	return d
}

// WithTags sets search tags and returns the receiver.
func (d *Descriptor) WithTags(tags ...string) *Descriptor {
	d.tags = tags
	return d
}

// WithMetadata attaches opaque execution-engine metadata and returns the receiver.
func (d *Descriptor) WithMetadata(metadata map[string]any) *Descriptor {
	d.metadata = metadata
	return d
}

// Name returns the unique, stable algorithm name.
func (d *Descriptor) Name() string { return d.name }

// DisplayName returns the localized display name.
func (d *Descriptor) DisplayName() string { return d.displayName }

// Group returns the display group, which may be empty.
func (d *Descriptor) Group() string { return d.group }

// Tags returns the search tags.
func (d *Descriptor) Tags() []string { return d.tags }

// Metadata returns the opaque execution-engine metadata.
func (d *Descriptor) Metadata() map[string]any { return d.metadata }

// Validate checks the descriptor's identity fields. A nil or unnamed
// descriptor is reported as invalid input, never a panic.
func (d *Descriptor) Validate() *errors.AppError {
	if d == nil {
		return errors.MissingField("descriptor")
	}
	return validation.New().
		Required("name", d.name).
		NoWhitespace("name", d.name).
		MaxLen("name", d.name, 256).
		Validate()
}
