// Package settings_schema provides the schema model for the settings wizard:
// construction of a wizard schema from a raw JSON-Schema/OpenAPI spec mapping,
// a full OpenAPI document, raw JSON, or a Go struct type, plus reference
// resolution into a $ref-free tree backed by the kin-openapi object model.
package settings_schema

import (
	"fmt"
	"reflect"
	"strings"

	version "github.com/hashicorp/go-version"

	"github.com/vast-data/go-settings-wizard/core"
)

// minDocumentVersion is the lowest OpenAPI document version FromDocument accepts.
const minDocumentVersion = "3.0.0"

// SettingsSchema holds a raw (possibly $ref-bearing) schema fragment together
// with its reference map. The reference map is built once at construction,
// consumed by ResolveRefs, and not used afterwards.
type SettingsSchema struct {
	raw    map[string]any
	refMap map[string]any
}

// FromSpec creates a SettingsSchema from a raw specification mapping
// conforming to JSON Schema / OpenAPI Schema Object. A `$defs` (or legacy
// `definitions`) block becomes the reference map.
func FromSpec(spec map[string]any) (*SettingsSchema, error) {
	if spec == nil {
		return nil, &core.InvalidSchemaInputError{Type: "nil"}
	}

	raw := copyTree(spec)

	var refMap map[string]any
	for _, defsKey := range []string{"$defs", "definitions"} {
		if defs, ok := raw[defsKey].(map[string]any); ok {
			refMap = defs
			delete(raw, defsKey)
			break
		}
	}

	return &SettingsSchema{raw: raw, refMap: refMap}, nil
}

// FromJSON creates a SettingsSchema from raw JSON bytes of a schema fragment.
// Property declaration order is preserved from the document.
func FromJSON(data []byte) (*SettingsSchema, error) {
	decoded, err := decodeOrdered(data)
	if err != nil {
		return nil, fmt.Errorf("decode schema JSON: %w", err)
	}
	spec, ok := decoded.(map[string]any)
	if !ok {
		return nil, &core.InvalidSchemaInputError{Type: fmt.Sprintf("%T", decoded)}
	}
	return FromSpec(spec)
}

// FromDocument creates a SettingsSchema from a full OpenAPI 3.x document,
// selecting the named component schema as the wizard root. The document's
// `components.schemas` block becomes the reference map. Documents older than
// OpenAPI 3.0 are rejected.
func FromDocument(doc []byte, component string) (*SettingsSchema, error) {
	decoded, err := decodeOrdered(doc)
	if err != nil {
		return nil, fmt.Errorf("decode OpenAPI document: %w", err)
	}
	root, ok := decoded.(map[string]any)
	if !ok {
		return nil, &core.InvalidSchemaInputError{Type: fmt.Sprintf("%T", decoded)}
	}

	declared, _ := root["openapi"].(string)
	if declared == "" {
		return nil, fmt.Errorf("document has no 'openapi' version field")
	}
	docVersion, err := version.NewVersion(declared)
	if err != nil {
		return nil, fmt.Errorf("invalid OpenAPI version %q: %w", declared, err)
	}
	minVersion, _ := version.NewVersion(minDocumentVersion)
	if docVersion.LessThan(minVersion) {
		return nil, fmt.Errorf("unsupported OpenAPI version %q (minimum is %s)", declared, minDocumentVersion)
	}

	components, _ := root["components"].(map[string]any)
	schemas, _ := components["schemas"].(map[string]any)
	if schemas == nil {
		return nil, fmt.Errorf("document has no components.schemas block")
	}

	fragment, ok := schemas[component].(map[string]any)
	if !ok {
		return nil, &core.ReferenceNotFoundError{Ref: component}
	}

	return &SettingsSchema{raw: copyTree(fragment), refMap: schemas}, nil
}

// FromStruct creates a SettingsSchema from a Go struct type (or a pointer to
// one), mapping fields by their json tags. A map[string]any input is treated
// as a raw spec mapping. Any other shape fails with InvalidSchemaInputError.
func FromStruct(v any) (*SettingsSchema, error) {
	if v == nil {
		return nil, &core.InvalidSchemaInputError{Type: "nil"}
	}

	if spec, ok := v.(map[string]any); ok {
		return FromSpec(spec)
	}

	typ, ok := v.(reflect.Type)
	if !ok {
		typ = reflect.TypeOf(v)
	}
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, &core.InvalidSchemaInputError{Type: typ.Kind().String()}
	}

	return reflectStruct(typ)
}

// RefMap returns the reference map built at construction, or nil.
func (s *SettingsSchema) RefMap() map[string]any {
	return s.refMap
}

// SetRefMap replaces the reference map, e.g. when definitions are supplied
// separately from the schema fragment itself.
func (s *SettingsSchema) SetRefMap(refMap map[string]any) {
	s.refMap = refMap
}

// Raw returns the underlying raw schema fragment.
func (s *SettingsSchema) Raw() map[string]any {
	return s.raw
}

// Title returns the schema's declared title, or "".
func (s *SettingsSchema) Title() string {
	title, _ := s.raw["title"].(string)
	return title
}

// copyTree returns a deep copy of a raw map/slice/scalar tree so that
// construction and resolution never mutate caller-owned data.
func copyTree(node any) map[string]any {
	copied := copyValue(node)
	if m, ok := copied.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func copyValue(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = copyValue(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = copyValue(val)
		}
		return out
	default:
		return v
	}
}

// refName extracts the trailing path segment of a $ref pointer
// ("#/$defs/Nested" -> "Nested").
func refName(ref string) string {
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}
