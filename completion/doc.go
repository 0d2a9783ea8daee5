// Package completion orchestrates cached chat completions.
//
// The Gateway is the single entry point: it derives a deterministic
// cache key from a request, serves hits from a persistent store, and on
// a miss calls the upstream provider under a retry policy before
// writing the serialized result back. Structured and unstructured
// requests live in separate key namespaces; a cached structured result
// is re-validated against the request's schema on every hit.
//
// A hit and a miss return results of identical shape, so callers
// cannot tell them apart except by latency and cost.
package completion
