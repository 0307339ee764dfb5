// Package registry provides the host-side container for algorithm providers.
//
// A Registry owns a set of providers, keeps them in registration order, and
// drives their load/unload lifecycle. It resolves algorithms across providers
// through composite "provider:algorithm" identifiers and notifies observers
// when providers are added or removed.
//
// The Registry implements component.Component so a host can run it alongside
// the discovery server under a single lifecycle registry.
package registry
