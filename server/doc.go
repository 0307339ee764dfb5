// Package server exposes the provider registry over HTTP for host tooling.
//
// The discovery API is read-mostly: it lists providers, their capability and
// format queries, and their algorithms in registration order, and lets
// operators trigger a refresh. The server is backed by Gin with h2c support
// and implements component.Component so hosts can run it under the component
// lifecycle registry.
package server
