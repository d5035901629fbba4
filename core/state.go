package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// KeySeparator joins the segments of a hierarchical state key.
const KeySeparator = "."

// Store is a hierarchical key-path state store. Keys are dotted paths
// ("server.tags.0") addressing into a nested map tree. Each wizard instance
// owns exactly one Store; it is the single source of truth for values entered
// in prior walks and is not safe for concurrent use.
type Store struct {
	data map[string]any
}

// NewStore creates an empty state store.
func NewStore() *Store {
	return &Store{data: make(map[string]any)}
}

// Set stores a value under the given dotted key path, creating intermediate
// map levels lazily. A numeric segment addressing into a stored slice sets
// the element in place when the index is in range.
func (s *Store) Set(key string, value any) {
	state := s.data
	parts := strings.Split(key, KeySeparator)
	i := 0
	for i < len(parts) {
		part := parts[i]
		if i == len(parts)-1 {
			state[part] = value
			return
		}

		if slice, ok := state[part].([]any); ok {
			idx, err := strconv.Atoi(parts[i+1])
			if err == nil && idx >= 0 && idx < len(slice) {
				if i+1 == len(parts)-1 {
					slice[idx] = value
					return
				}
				next, ok := slice[idx].(map[string]any)
				if !ok {
					next = make(map[string]any)
					slice[idx] = next
				}
				state = next
				i += 2
				continue
			}
		}

		next, ok := state[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			state[part] = next
		}
		state = next
		i++
	}
}

// Get returns the value stored under the given dotted key path. The second
// return value is false when any segment is missing. Numeric segments address
// into stored slices.
//
// Missing intermediate levels are created on read. Callers that treat Get as
// pure should not rely on the tree staying untouched.
func (s *Store) Get(key string) (any, bool) {
	var parent any = s.data
	parts := strings.Split(key, KeySeparator)
	for i, part := range parts {
		last := i == len(parts)-1

		switch node := parent.(type) {
		case map[string]any:
			if last {
				val, ok := node[part]
				return val, ok
			}
			next, ok := node[part]
			if !ok {
				created := make(map[string]any)
				node[part] = created
				next = created
			}
			parent = next

		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			if last {
				return node[idx], true
			}
			parent = node[idx]

		default:
			return nil, false
		}
	}
	return nil, false
}

// GetDefault returns the value under key, or fallback when absent.
func (s *Store) GetDefault(key string, fallback any) any {
	if val, ok := s.Get(key); ok && val != nil {
		return val
	}
	return fallback
}

// Delete removes the value stored under the given dotted key path.
// Missing segments are ignored.
func (s *Store) Delete(key string) {
	state := s.data
	parts := strings.Split(key, KeySeparator)
	for i, part := range parts {
		if i == len(parts)-1 {
			delete(state, part)
			return
		}
		next, ok := state[part].(map[string]any)
		if !ok {
			return
		}
		state = next
	}
}

// Reset discards all stored values. Called by the wizard after a successful
// submission when clear-on-submit is requested.
func (s *Store) Reset() {
	s.data = make(map[string]any)
}

// Len returns the number of top-level entries.
func (s *Store) Len() int {
	return len(s.data)
}

// Tree returns the underlying nested map. The engine reads it when unpacking
// the final value tree; mutating it bypasses key-path semantics.
func (s *Store) Tree() map[string]any {
	return s.data
}

// Snapshot serializes the store content with msgpack so the host environment
// can persist wizard state between interactions.
func (s *Store) Snapshot() ([]byte, error) {
	data, err := msgpack.Marshal(s.data)
	if err != nil {
		return nil, fmt.Errorf("snapshot state: %w", err)
	}
	return data, nil
}

// Restore replaces the store content from a Snapshot payload.
func (s *Store) Restore(snapshot []byte) error {
	restored := make(map[string]any)
	if err := msgpack.Unmarshal(snapshot, &restored); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	s.data = normalizeTree(restored)
	return nil
}

// normalizeTree converts msgpack's map[any]any decoding back into the
// map[string]any shape the store works with.
func normalizeTree(m map[string]any) map[string]any {
	for key, value := range m {
		m[key] = normalizeValue(value)
	}
	return m
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalizeTree(v)
	case map[any]any:
		converted := make(map[string]any, len(v))
		for key, val := range v {
			converted[fmt.Sprintf("%v", key)] = normalizeValue(val)
		}
		return converted
	case []any:
		for i, item := range v {
			v[i] = normalizeValue(item)
		}
		return v
	default:
		return value
	}
}
