// Package observe provides observability primitives for cached completion
// calls: OpenTelemetry tracing and metrics plus a structured JSON logger.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. The completion gateway records against it through
// Instruments.
package observe
