package core

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/bndr/gotabulate"
	json "github.com/goccy/go-json"
)

// Record represents a collected configuration value tree as a key-value map.
// Keys are property names, values are scalars, sequences, or nested Records.
type Record map[string]any

// Renderable is implemented by value containers that can present themselves
// for human inspection.
type Renderable interface {
	PrettyTable() string
	PrettyJson(indent ...string) string
}

// Fill populates the exported fields of the given struct pointer using values
// from the Record. It round-trips through JSON so keys map to struct fields by
// their `json` tags and compatible type conversions happen automatically.
//
// The target container must be a non-nil pointer to a struct.
func (r Record) Fill(container any) error {
	val := reflect.ValueOf(container)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("container must be a non-nil pointer to a struct")
	}
	if val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("container must point to a struct")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := json.Unmarshal(data, container); err != nil {
		return fmt.Errorf("unmarshal record into %T: %w", container, err)
	}
	return nil
}

// PrettyTable prints the Record as an attr/value table. Scalar values are
// printed as-is; nested values are rendered as compact JSON.
func (r Record) PrettyTable() string {
	if len(r) == 0 {
		return "<>"
	}

	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var rows [][]any
	for _, key := range keys {
		val := r[key]
		if val == nil {
			rows = append(rows, []any{key, "<nil>"})
			continue
		}
		switch val.(type) {
		case string, bool, int, int64, float64:
			rows = append(rows, []any{key, fmt.Sprintf("%v", val)})
		default:
			compact, err := json.Marshal(val)
			if err != nil {
				rows = append(rows, []any{key, fmt.Sprintf("%v", val)})
				continue
			}
			rows = append(rows, []any{key, string(compact)})
		}
	}

	t := gotabulate.Create(rows)
	t.SetHeaders([]string{"attr", "value"})
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(85)
	return t.Render("grid")
}

// PrettyJson prints the Record as JSON, optionally indented.
func (r Record) PrettyJson(indent ...string) string {
	var b []byte
	var err error
	if len(indent) > 0 {
		b, err = json.MarshalIndent(r, "", indent[0])
	} else {
		b, err = json.Marshal(r)
	}
	if err != nil {
		return fmt.Sprintf("failed to marshal JSON: %v", err)
	}
	return string(b)
}

func (r Record) String() string {
	return r.PrettyTable()
}

// Empty reports whether the record holds no values.
func (r Record) Empty() bool {
	return len(r) == 0
}

// Keys returns the record's keys in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// DeepMerge merges another Record into this one. Nested Records are merged
// recursively; scalar collisions are resolved in favor of the other Record.
func (r Record) DeepMerge(other Record) {
	for key, value := range other {
		if existing, ok := r[key].(Record); ok {
			if incoming, ok := value.(Record); ok {
				existing.DeepMerge(incoming)
				continue
			}
		}
		r[key] = value
	}
}
