// Package errors provides unified error handling for prockit.
// It implements structured error types with machine-readable codes,
// HTTP status mapping, and retryable detection following RFC 7807.
package errors
