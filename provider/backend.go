package provider

import "context"

// Backend is the extension point every concrete algorithm source implements.
// ID must be a short, unique, non-localized identifier (e.g. "gdal"); Name is
// the localized display name. LoadAlgorithms is invoked only during a refresh
// and must register each discovered operation through the given Registrar.
type Backend interface {
	ID() string
	Name() string
	LoadAlgorithms(ctx context.Context, reg *Registrar) error
}

// LongNamer is optionally implemented by backends whose display name has a
// longer variant carrying extra details such as version numbers.
type LongNamer interface {
	LongName() string
}

// Activatable is optionally implemented by backends whose external
// dependencies may be missing. A false result means the provider should not
// be loaded; loading it anyway yields an empty, inert provider.
type Activatable interface {
	CanBeActivated() bool
}

// ActiveReporter is optionally implemented by backends that can report their
// current operational readiness.
type ActiveReporter interface {
	IsActive() bool
}

// RasterOutputSupport is optionally implemented by backends whose algorithms
// can write raster layers.
type RasterOutputSupport interface {
	SupportedOutputRasterLayerExtensions() []string
}

// VectorOutputSupport is optionally implemented by backends whose algorithms
// can write vector layers.
type VectorOutputSupport interface {
	SupportedOutputVectorLayerExtensions() []string
}

// NonFileOutputSupport is optionally implemented by backends whose algorithm
// parameters individually declare support for non-file outputs (memory
// layers, direct database writes).
type NonFileOutputSupport interface {
	SupportsNonFileBasedOutput() bool
}

// IconSource is optionally implemented by backends that ship visual assets.
// Both values are identity-only references resolved by a rendering
// collaborator; no image loading happens in this package.
type IconSource interface {
	Icon() string
	SVGIconPath() string
}

// Bootstrapper is optionally implemented by backends that need setup before
// the first algorithm load (e.g. verifying an external tool is installed).
// Setup runs from Load, before the initial refresh.
type Bootstrapper interface {
	Setup(ctx context.Context) error
}

// Teardowner is optionally implemented by backends holding external resources
// that require explicit release. Teardown runs from Unload.
type Teardowner interface {
	Teardown(ctx context.Context) error
}
