package cache

import (
	"context"
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for store operations.
var (
	ErrNilStore   = errors.New("cache: store is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Store is the interface for persisting serialized completion results.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Get reports a miss with found=false; a present but empty value is a hit.
// - Set replaces any existing entry (last write wins). Entries carry no TTL;
//   eviction, if any, is the store's own concern.
// - Context: methods should honor cancellation/deadlines where applicable.
type Store interface {
	// Get retrieves a stored value. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set durably persists a value under key, replacing any existing entry.
	Set(ctx context.Context, key string, value []byte) error
}

// ValidateKey checks if a key is valid for storage.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
