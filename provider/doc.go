// Package provider implements the algorithm provider contract: a named,
// lazily-populated registry of algorithm descriptors supplied by a pluggable
// backend.
//
// A Backend is the single required extension point. It discovers operations
// and registers them through the Registrar handed to it during a refresh.
// Everything else (activation checks, display names, output format support,
// setup and teardown) is opt-in through capability interfaces, mirroring the
// Initializable/Closeable pattern used elsewhere in the kit.
//
// # Loading protocol
//
// The host constructs a Provider around a Backend, calls Load once, and may
// call RefreshAlgorithms any number of times afterwards. A refresh clears the
// current set, asks the backend to repopulate it, and then notifies
// registered listeners. Backends must only register algorithms through the
// Registrar they are handed; registering outside a refresh, or triggering a
// nested refresh, is reported as a contract violation.
//
// # Usage
//
//	p := provider.New(backend, provider.WithFormatPreferences(prefs))
//	if err := p.Load(ctx); err != nil { ... }
//	for _, d := range p.Algorithms() { ... }
package provider
