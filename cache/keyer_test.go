package cache

import (
	"strings"
	"testing"
)

func TestKeyer_DeterministicForMaps(t *testing.T) {
	keyer := NewDefaultKeyer()

	// Same content, different insertion order
	params1 := map[string]any{"model": "m", "temperature": 0.2, "seed": 7}
	params2 := map[string]any{"seed": 7, "model": "m", "temperature": 0.2}
	params3 := map[string]any{"temperature": 0.2, "seed": 7, "model": "m"}

	key1, err := keyer.DeriveKey(NamespaceChat, params1)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	key2, err := keyer.DeriveKey(NamespaceChat, params2)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	key3, err := keyer.DeriveKey(NamespaceChat, params3)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	if key1 != key2 {
		t.Errorf("Keys should be equal for same content:\n  key1=%s\n  key2=%s", key1, key2)
	}
	if key2 != key3 {
		t.Errorf("Keys should be equal for same content:\n  key2=%s\n  key3=%s", key2, key3)
	}
}

func TestKeyer_MessageOrderPreserved(t *testing.T) {
	keyer := NewDefaultKeyer()

	// Message order is semantically significant, so different order must
	// produce different keys.
	params1 := map[string]any{"messages": []any{
		map[string]any{"role": "system", "content": "a"},
		map[string]any{"role": "user", "content": "b"},
	}}
	params2 := map[string]any{"messages": []any{
		map[string]any{"role": "user", "content": "b"},
		map[string]any{"role": "system", "content": "a"},
	}}

	key1, err := keyer.DeriveKey(NamespaceChat, params1)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	key2, err := keyer.DeriveKey(NamespaceChat, params2)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	if key1 == key2 {
		t.Errorf("Keys should differ for different message order:\n  key1=%s\n  key2=%s", key1, key2)
	}
}

func TestKeyer_NamespaceSeparation(t *testing.T) {
	keyer := NewDefaultKeyer()

	params := map[string]any{"model": "m", "messages": []any{
		map[string]any{"role": "user", "content": "hi"},
	}}

	key1, err := keyer.DeriveKey(NamespaceChat, params)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	key2, err := keyer.DeriveKey(NamespaceChatStructured, params)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	if key1 == key2 {
		t.Errorf("Keys should differ across namespaces:\n  key1=%s\n  key2=%s", key1, key2)
	}
}

func TestKeyer_SameInputsSameKey(t *testing.T) {
	keyer := NewDefaultKeyer()

	params := map[string]any{"model": "gpt-4", "max_tokens": 100}

	keys := make([]string, 5)
	for i := 0; i < 5; i++ {
		key, err := keyer.DeriveKey(NamespaceChat, params)
		if err != nil {
			t.Fatalf("DeriveKey() iteration %d error = %v", i, err)
		}
		keys[i] = key
	}

	for i := 1; i < len(keys); i++ {
		if keys[i] != keys[0] {
			t.Errorf("Key should be consistent across calls:\n  keys[0]=%s\n  keys[%d]=%s", keys[0], i, keys[i])
		}
	}
}

func TestKeyer_FieldChangeChangesKey(t *testing.T) {
	keyer := NewDefaultKeyer()

	base := map[string]any{"model": "m", "messages": []any{
		map[string]any{"role": "user", "content": "hi"},
	}}
	changed := map[string]any{"model": "m2", "messages": []any{
		map[string]any{"role": "user", "content": "hi"},
	}}

	key1, err := keyer.DeriveKey(NamespaceChat, base)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	key2, err := keyer.DeriveKey(NamespaceChat, changed)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	if key1 == key2 {
		t.Errorf("Keys should differ when a field changes:\n  key1=%s\n  key2=%s", key1, key2)
	}
}

func TestKeyer_KeyFormat(t *testing.T) {
	keyer := NewDefaultKeyer()

	key, err := keyer.DeriveKey(NamespaceChat, map[string]any{"model": "m"})
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	// Format: <namespace>__<hash>
	// Hash should be 32 hex characters (128 bits)
	prefix := NamespaceChat + "__"
	if !strings.HasPrefix(key, prefix) {
		t.Errorf("Key should have prefix %q, got %q", prefix, key)
	}

	hash := strings.TrimPrefix(key, prefix)
	if len(hash) != 32 {
		t.Errorf("Hash should be 32 characters, got %d: %q", len(hash), hash)
	}

	for _, c := range hash {
		isLowerHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		if !isLowerHex {
			t.Errorf("Hash should be lowercase hex, got character %q in %q", string(c), hash)
			break
		}
	}
}

func TestKeyer_StructsNormalized(t *testing.T) {
	keyer := NewDefaultKeyer()

	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	// A typed slice and its generic JSON equivalent must hash identically.
	typed := map[string]any{"messages": []message{{Role: "user", Content: "hi"}}}
	generic := map[string]any{"messages": []any{
		map[string]any{"content": "hi", "role": "user"},
	}}

	key1, err := keyer.DeriveKey(NamespaceChat, typed)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	key2, err := keyer.DeriveKey(NamespaceChat, generic)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	if key1 != key2 {
		t.Errorf("Keys should be equal for typed and generic forms:\n  key1=%s\n  key2=%s", key1, key2)
	}
}

func TestKeyer_NonSerializableParams(t *testing.T) {
	keyer := NewDefaultKeyer()

	_, err := keyer.DeriveKey(NamespaceChat, map[string]any{"bad": make(chan int)})
	if err == nil {
		t.Fatal("DeriveKey() should fail for non-serializable params")
	}
}

func TestCanonicalize_SortsNestedKeys(t *testing.T) {
	nested1 := map[string]any{
		"outer": map[string]any{"z": 26, "a": 1, "m": 13},
		"other": "value",
	}
	nested2 := map[string]any{
		"other": "value",
		"outer": map[string]any{"a": 1, "m": 13, "z": 26},
	}

	c1, err := Canonicalize(nested1)
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}

	c2, err := Canonicalize(nested2)
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}

	if string(c1) != string(c2) {
		t.Errorf("Canonical forms should be equal:\n  c1=%s\n  c2=%s", c1, c2)
	}

	want := `{"other":"value","outer":{"a":1,"m":13,"z":26}}`
	if string(c1) != want {
		t.Errorf("Canonical form = %s, want %s", c1, want)
	}
}

func TestCanonicalize_Nil(t *testing.T) {
	c, err := Canonicalize(nil)
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}
	if string(c) != "null" {
		t.Errorf("Canonicalize(nil) = %s, want null", c)
	}
}
