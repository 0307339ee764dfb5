// Package component defines the lifecycle contract for long-lived parts of a
// prockit host: things that start, stop, and report health.
//
// Components are started in registration order and stopped in reverse, so
// dependencies register first. The processing registry and the discovery
// server both implement Component.
package component
