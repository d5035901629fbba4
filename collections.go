package settings_wizard

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vast-data/go-settings-wizard/core"
	"github.com/vast-data/go-settings-wizard/settings_schema"
)

// AddListItem appends a new element to the list at path, seeded from the item
// schema's default. Fails on read-only schemas, on tuples (fixed length), and
// once maxItems is reached.
func (w *Wizard) AddListItem(path string) error {
	schema, _, err := w.collectionAt(path, ListInput, SetInput)
	if err != nil {
		return err
	}

	items := w.listAt(path)
	if schema.MaxItems != nil && uint64(len(items)) >= *schema.MaxItems {
		return fmt.Errorf("list %q is full (maxItems=%d)", path, *schema.MaxItems)
	}

	var seed any
	if item := schema.ItemsSchema(); !item.IsZero() {
		seed = item.Default
	}
	w.store.Set(path, append(items, seed))
	return nil
}

// RemoveListItem deletes the element at index from the list at path. Fails on
// read-only schemas and when removal would breach minItems.
func (w *Wizard) RemoveListItem(path string, index int) error {
	schema, _, err := w.collectionAt(path, ListInput, SetInput, TupleInput)
	if err != nil {
		return err
	}

	items := w.listAt(path)
	if index < 0 || index >= len(items) {
		return fmt.Errorf("list %q has no item %d", path, index)
	}
	if uint64(len(items)-1) < schema.MinItems {
		return fmt.Errorf("list %q already at minItems=%d", path, schema.MinItems)
	}

	w.store.Set(path, append(items[:index:index], items[index+1:]...))
	return nil
}

// ClearListItems discards the collected values of the list at path, leaving
// minItems empty placeholder entries so the next walk still renders the
// required minimum. Fails on read-only schemas.
func (w *Wizard) ClearListItems(path string) error {
	schema, _, err := w.collectionAt(path, ListInput, SetInput, TupleInput)
	if err != nil {
		return err
	}
	w.store.Set(path, make([]any, schema.MinItems))
	return nil
}

// AddDictEntry creates a new entry in the dictionary at path under a fresh
// auto-generated key and returns that key. Fails on read-only schemas.
func (w *Wizard) AddDictEntry(path string) (string, error) {
	schema, _, err := w.collectionAt(path, DictInput)
	if err != nil {
		return "", err
	}

	entries := w.dictAt(path)
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	newKey := GetNextKey(keys)

	var seed any
	if item := schema.AdditionalSchema(); !item.IsZero() {
		seed = item.Default
	}
	entries[newKey] = seed
	w.store.Set(path, entries)
	return newKey, nil
}

// RemoveDictEntry deletes the named entry from the dictionary at path.
func (w *Wizard) RemoveDictEntry(path, key string) error {
	if _, _, err := w.collectionAt(path, DictInput); err != nil {
		return err
	}
	entries := w.dictAt(path)
	delete(entries, key)
	w.store.Set(path, entries)
	return nil
}

// RenameDictEntry moves an entry to a new key. A rename that collides with an
// existing key keeps the original entry untouched.
func (w *Wizard) RenameDictEntry(path, oldKey, newKey string) error {
	if _, _, err := w.collectionAt(path, DictInput); err != nil {
		return err
	}
	if oldKey == newKey || newKey == "" {
		return nil
	}

	entries := w.dictAt(path)
	value, ok := entries[oldKey]
	if !ok {
		return fmt.Errorf("dictionary %q has no entry %q", path, oldKey)
	}
	if _, collision := entries[newKey]; collision {
		w.log.Debug("rename collision, keeping original key",
			zap.String("path", path),
			zap.String("key", oldKey))
		return nil
	}

	delete(entries, oldKey)
	entries[newKey] = value
	w.store.Set(path, entries)
	return nil
}

// collectionAt resolves the schema at path and checks that it is one of the
// wanted collection kinds and not read-only.
func (w *Wizard) collectionAt(path string, wanted ...InputType) (settings_schema.ResolvedSchema, InputType, error) {
	schema := w.schemaAt(path)
	if schema.IsZero() {
		return schema, "", fmt.Errorf("no schema at path %q", path)
	}
	kind := PropertyToInputType(schema)
	matched := false
	for _, want := range wanted {
		if kind == want {
			matched = true
			break
		}
	}
	if !matched {
		return schema, kind, fmt.Errorf("path %q is %s, not a mutable collection", path, kind)
	}
	if schema.ReadOnly {
		return schema, kind, fmt.Errorf("path %q is read-only", path)
	}
	return schema, kind, nil
}

// schemaAt navigates the resolved schema tree along a dotted path: property
// names descend into objects, numeric segments into array items, the
// additional-properties sentinel stays on the parent, and any other segment
// of a dynamic-key object descends into its additionalProperties schema.
func (w *Wizard) schemaAt(path string) settings_schema.ResolvedSchema {
	schema := w.schema
	if path == "" {
		return schema
	}
	for _, segment := range strings.Split(path, core.KeySeparator) {
		if schema.IsZero() {
			return schema
		}
		if prop := schema.Prop(segment); !prop.IsZero() {
			schema = prop
			continue
		}
		if idx, err := strconv.Atoi(segment); err == nil && schema.TypeName() == "array" {
			if prefix := schema.PrefixItemsSchemas(); idx >= 0 && idx < len(prefix) {
				schema = prefix[idx]
			} else {
				schema = schema.ItemsSchema()
			}
			continue
		}
		if segment == AdditionalPropertiesKey {
			continue
		}
		if schema.HasAdditional() {
			schema = schema.AdditionalSchema()
			continue
		}
		return settings_schema.ResolvedSchema{}
	}
	return schema
}

// listAt returns a copy-safe view of the list stored at path.
func (w *Wizard) listAt(path string) []any {
	if stored, ok := w.store.Get(path); ok {
		if list, ok := stored.([]any); ok {
			return list
		}
	}
	return []any{}
}

// dictAt returns the mapping stored at path, or a fresh one.
func (w *Wizard) dictAt(path string) map[string]any {
	if stored, ok := w.store.Get(path); ok {
		if m, ok := stored.(map[string]any); ok {
			return m
		}
	}
	return map[string]any{}
}
