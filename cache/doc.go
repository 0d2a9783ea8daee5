// Package cache provides deterministic key derivation and persistent stores
// for completion results.
//
// It provides a Store interface with memory, disk, and Redis implementations,
// plus SHA-256 based key derivation over a canonical JSON form so that
// semantically equal requests always map to the same key.
package cache
