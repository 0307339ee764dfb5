// Package algorithm defines the descriptor value type for processing
// algorithms.
//
// A Descriptor carries the immutable identity and display metadata of one
// operation supplied by a provider backend. Descriptors are created by the
// backend during a refresh and owned by the provider that registers them;
// uniqueness of names is enforced by the owning provider, not here.
package algorithm
