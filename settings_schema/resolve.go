package settings_schema

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"

	"github.com/vast-data/go-settings-wizard/core"
)

// maxResolveDepth bounds reference resolution recursion. A self-referencing
// chain keeps substituting its own target and exceeds the bound long before
// the call stack is at risk.
const maxResolveDepth = 512

var validTypeNames = map[string]struct{}{
	"string": {}, "number": {}, "integer": {}, "boolean": {},
	"array": {}, "object": {}, "null": {},
}

// ResolvedSchema wraps an openapi3.Schema that is guaranteed free of $ref
// markers. Nested nodes reached through Prop/ItemsSchema/Branches carry the
// same guarantee.
type ResolvedSchema struct {
	*openapi3.Schema
}

// IsZero reports whether the wrapper holds no schema.
func (r ResolvedSchema) IsZero() bool {
	return r.Schema == nil
}

// Wrap adapts a nested SchemaRef of an already-resolved tree. The ref pointer
// of such nodes is always empty.
func Wrap(ref *openapi3.SchemaRef) ResolvedSchema {
	if ref == nil {
		return ResolvedSchema{}
	}
	return ResolvedSchema{Schema: ref.Value}
}

// ResolveRefs substitutes every $ref pointer in the schema with its target
// fetched from the reference map by trailing path segment, then normalizes
// the tree and validates it into the kin-openapi object model.
//
// An optional explicit reference map overrides the one captured at
// construction. Resolution fails with ReferenceNotFoundError when a pointer
// target is absent and with CircularReferenceError when recursion exceeds the
// bounded depth. The original schema is left untouched.
func (s *SettingsSchema) ResolveRefs(refMap ...map[string]any) (ResolvedSchema, error) {
	refs := s.refMap
	if len(refMap) > 0 && refMap[0] != nil {
		refs = refMap[0]
	}
	if refs == nil && containsRef(s.raw) {
		return ResolvedSchema{}, fmt.Errorf("no reference map provided for resolving references")
	}

	resolved, err := resolveNode(copyTree(s.raw), refs, 0)
	if err != nil {
		return ResolvedSchema{}, err
	}

	root, ok := resolved.(map[string]any)
	if !ok {
		return ResolvedSchema{}, &core.InvalidSchemaInputError{Type: fmt.Sprintf("%T", resolved)}
	}
	if err := normalizeNode(root); err != nil {
		return ResolvedSchema{}, err
	}

	data, err := json.Marshal(root)
	if err != nil {
		return ResolvedSchema{}, fmt.Errorf("serialize resolved schema: %w", err)
	}

	schema := &openapi3.Schema{}
	if err := schema.UnmarshalJSON(data); err != nil {
		return ResolvedSchema{}, fmt.Errorf("invalid schema after resolution: %w", err)
	}

	return ResolvedSchema{Schema: schema}, nil
}

// resolveNode walks raw map/slice trees uniformly; scalar leaves pass through
// unchanged. $ref substitution re-resolves the target so chained references
// collapse in one pass.
func resolveNode(node any, refs map[string]any, depth int) (any, error) {
	if depth > maxResolveDepth {
		return nil, &core.CircularReferenceError{Depth: maxResolveDepth}
	}

	switch v := node.(type) {
	case map[string]any:
		if ref, ok := v["$ref"].(string); ok {
			name := refName(ref)
			target, found := refs[name]
			if !found {
				return nil, &core.ReferenceNotFoundError{Ref: name}
			}
			return resolveNode(copyValue(target), refs, depth+1)
		}

		out := make(map[string]any, len(v))
		for key, val := range v {
			resolved, err := resolveNode(val, refs, depth+1)
			if err != nil {
				return nil, err
			}
			out[key] = resolved
		}
		return out, nil

	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			resolved, err := resolveNode(val, refs, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil

	default:
		return v, nil
	}
}

// containsRef reports whether any $ref marker occurs in the tree.
func containsRef(node any) bool {
	switch v := node.(type) {
	case map[string]any:
		if _, ok := v["$ref"]; ok {
			return true
		}
		for _, val := range v {
			if containsRef(val) {
				return true
			}
		}
	case []any:
		for _, val := range v {
			if containsRef(val) {
				return true
			}
		}
	}
	return false
}

// normalizeNode post-processes a resolved raw schema node in place:
//   - numeric exclusiveMinimum/exclusiveMaximum (JSON Schema 2019+ style) are
//     folded into the OpenAPI 3.0 shape (minimum/maximum plus boolean flag)
//     that the kin-openapi model carries;
//   - a bare-string discriminator becomes the object form;
//   - allOf branches are merged into the node (properties union, required
//     union, last declared type wins);
//   - declared type names are checked against the JSON Schema set.
func normalizeNode(node map[string]any) error {
	if err := checkTypeName(node); err != nil {
		return err
	}

	foldExclusiveBound(node, "exclusiveMinimum", "minimum")
	foldExclusiveBound(node, "exclusiveMaximum", "maximum")

	if disc, ok := node["discriminator"].(string); ok {
		node["discriminator"] = map[string]any{"propertyName": disc}
	}

	if branches, ok := node["allOf"].([]any); ok {
		if err := mergeAllOf(node, branches); err != nil {
			return err
		}
		delete(node, "allOf")
	}

	for _, val := range node {
		if err := normalizeChild(val); err != nil {
			return err
		}
	}
	return nil
}

func normalizeChild(val any) error {
	switch child := val.(type) {
	case map[string]any:
		return normalizeNode(child)
	case []any:
		for _, item := range child {
			if err := normalizeChild(item); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkTypeName(node map[string]any) error {
	declared, ok := node["type"].(string)
	if !ok {
		return nil
	}
	if _, valid := validTypeNames[declared]; !valid {
		return fmt.Errorf("invalid schema type %q", declared)
	}
	return nil
}

// foldExclusiveBound converts {"exclusiveMinimum": 5} into
// {"minimum": 5, "exclusiveMinimum": true}. Boolean-style bounds pass through.
func foldExclusiveBound(node map[string]any, exclusiveKey, inclusiveKey string) {
	bound, ok := toFloat(node[exclusiveKey])
	if !ok {
		return
	}
	node[inclusiveKey] = bound
	node[exclusiveKey] = true
}

// toFloat coerces the numeric shapes a raw spec can carry: decoded JSON
// numbers and plain Go literals from hand-written spec maps.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// mergeAllOf merges allOf branches into the parent node the same way composed
// request schemas are flattened for form generation: properties accumulate,
// required names accumulate, a branch type overrides an unset parent type.
func mergeAllOf(node map[string]any, branches []any) error {
	props, _ := node["properties"].(map[string]any)
	if props == nil {
		props = make(map[string]any)
	}
	required, _ := node["required"].([]any)
	order, _ := node[propOrderKey].([]any)

	for _, branch := range branches {
		sub, ok := branch.(map[string]any)
		if !ok {
			continue
		}
		if err := normalizeNode(sub); err != nil {
			return err
		}
		if subProps, ok := sub["properties"].(map[string]any); ok {
			subOrder := orderedKeys(sub)
			for _, name := range subOrder {
				if _, exists := props[name]; !exists {
					order = append(order, name)
				}
				props[name] = subProps[name]
			}
		}
		if subRequired, ok := sub["required"].([]any); ok {
			required = append(required, subRequired...)
		}
		if subType, ok := sub["type"].(string); ok && node["type"] == nil {
			node["type"] = subType
		}
	}

	if len(props) > 0 {
		node["properties"] = props
	}
	if len(required) > 0 {
		node["required"] = required
	}
	if len(order) > 0 {
		node[propOrderKey] = order
	}
	return nil
}

// orderedKeys returns the property names of a raw schema node: declaration
// order when it was captured, sorted otherwise.
func orderedKeys(node map[string]any) []string {
	props, _ := node["properties"].(map[string]any)
	if order, ok := node[propOrderKey].([]any); ok {
		names := make([]string, 0, len(order))
		for _, item := range order {
			if name, ok := item.(string); ok {
				if _, exists := props[name]; exists {
					names = append(names, name)
				}
			}
		}
		return names
	}
	return sortedMapKeys(props)
}

func sortedMapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
