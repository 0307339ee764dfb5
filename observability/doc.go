// Package observability provides OpenTelemetry tracing and metrics for
// prockit hosts.
//
// Both exporters speak OTLP over HTTP. Hosts initialize the providers once
// at startup and hand the Metrics instrument set to the processing registry,
// which records refresh counts, durations, and registered-algorithm totals.
package observability
