package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Key namespaces for completion requests. Structured and unstructured
// requests never share a namespace, so otherwise-identical requests cannot
// collide across variants.
const (
	NamespaceChat           = "openai_chat_completion"
	NamespaceChatStructured = "openai_chat_completion_structured"
)

// Keyer derives deterministic cache keys from completion call parameters.
//
// Contract:
// - Determinism: equal namespace and params must produce the same key,
//   regardless of map iteration or insertion order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// DeriveKey derives a cache key for params under the given namespace.
	DeriveKey(namespace string, params map[string]any) (string, error)
}

// DefaultKeyer derives SHA-256 based keys over canonical JSON.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// DeriveKey derives a deterministic cache key.
// Format: <namespace>__<hash>
// where hash is the first 16 bytes of SHA-256(canonical JSON(params))
// rendered as 32 lowercase hex characters.
func (k *DefaultKeyer) DeriveKey(namespace string, params map[string]any) (string, error) {
	canonical, err := Canonicalize(params)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize params: %w", err)
	}

	hash := sha256.Sum256(canonical)
	return fmt.Sprintf("%s__%s", namespace, hex.EncodeToString(hash[:16])), nil
}

// Canonicalize produces a deterministic JSON representation of v.
// Object keys are sorted lexicographically; array order is preserved since
// sequence order is semantically significant. Values that are not already
// generic JSON (structs, typed slices and maps) are normalized through a
// JSON round-trip first, so anything json.Marshal accepts is canonicalizable.
func Canonicalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	return canonicalize(generic)
}

// canonicalize walks a generic JSON tree, sorting object keys.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		// Leaves (string, float64, bool) use standard JSON encoding
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	// Sort keys
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Build ordered JSON object
	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		// Key
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		// Value (recursively canonicalize)
		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
