package settings_schema

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"
	"github.com/mohae/deepcopy"
)

// TypeName returns the schema's single declared type name, or "" when no type
// is declared.
func (r ResolvedSchema) TypeName() string {
	if r.Schema == nil || r.Type == nil {
		return ""
	}
	types := r.Type.Slice()
	if len(types) == 0 {
		return ""
	}
	return types[0]
}

// PropNames returns property names in schema declaration order when it was
// captured at construction, sorted alphabetically otherwise.
func (r ResolvedSchema) PropNames() []string {
	if r.Schema == nil || len(r.Properties) == 0 {
		return nil
	}
	if order, ok := r.Extensions[propOrderKey].([]any); ok {
		names := make([]string, 0, len(order))
		for _, item := range order {
			if name, ok := item.(string); ok {
				if _, exists := r.Properties[name]; exists {
					names = append(names, name)
				}
			}
		}
		if len(names) == len(r.Properties) {
			return names
		}
	}
	raw := make(map[string]any, len(r.Properties))
	for name := range r.Properties {
		raw[name] = nil
	}
	return sortedMapKeys(raw)
}

// Prop returns the named property schema; the zero value when absent.
func (r ResolvedSchema) Prop(name string) ResolvedSchema {
	if r.Schema == nil {
		return ResolvedSchema{}
	}
	return Wrap(r.Properties[name])
}

// IsRequired reports whether the named property is listed as required.
func (r ResolvedSchema) IsRequired(name string) bool {
	if r.Schema == nil {
		return false
	}
	for _, req := range r.Required {
		if req == name {
			return true
		}
	}
	return false
}

// ItemsSchema returns the uniform element schema of an array.
func (r ResolvedSchema) ItemsSchema() ResolvedSchema {
	if r.Schema == nil {
		return ResolvedSchema{}
	}
	return Wrap(r.Items)
}

// PrefixItemsSchemas returns the positional element schemas of a tuple-style
// array, declared through prefixItems. The keyword postdates the OpenAPI 3.0
// object model, so it lands in the extension map as raw nodes and is decoded
// here on demand.
func (r ResolvedSchema) PrefixItemsSchemas() []ResolvedSchema {
	if r.Schema == nil {
		return nil
	}
	rawItems, ok := r.Extensions["prefixItems"].([]any)
	if !ok {
		return nil
	}
	out := make([]ResolvedSchema, 0, len(rawItems))
	for _, rawItem := range rawItems {
		data, err := json.Marshal(rawItem)
		if err != nil {
			continue
		}
		schema := &openapi3.Schema{}
		if err := schema.UnmarshalJSON(data); err != nil {
			continue
		}
		out = append(out, ResolvedSchema{Schema: schema})
	}
	return out
}

// Branches returns the schema's anyOf branches, falling back to oneOf.
func (r ResolvedSchema) Branches() []ResolvedSchema {
	if r.Schema == nil {
		return nil
	}
	refs := r.AnyOf
	if len(refs) == 0 {
		refs = r.OneOf
	}
	out := make([]ResolvedSchema, 0, len(refs))
	for _, ref := range refs {
		out = append(out, Wrap(ref))
	}
	return out
}

// HasAdditional reports whether the schema admits dynamic keys, either through
// an additionalProperties schema or the bare boolean form.
func (r ResolvedSchema) HasAdditional() bool {
	if r.Schema == nil {
		return false
	}
	if r.AdditionalProperties.Schema != nil {
		return true
	}
	return r.AdditionalProperties.Has != nil && *r.AdditionalProperties.Has
}

// AdditionalSchema returns the value schema for dynamic keys. The bare
// `additionalProperties: true` form yields an empty, accept-anything schema.
func (r ResolvedSchema) AdditionalSchema() ResolvedSchema {
	if !r.HasAdditional() {
		return ResolvedSchema{}
	}
	if r.AdditionalProperties.Schema != nil {
		return Wrap(r.AdditionalProperties.Schema)
	}
	return ResolvedSchema{Schema: &openapi3.Schema{}}
}

// ConstValue returns the schema's const value, if any. Like prefixItems, the
// keyword is carried in the extension map.
func (r ResolvedSchema) ConstValue() (any, bool) {
	if r.Schema == nil {
		return nil, false
	}
	val, ok := r.Extensions["const"]
	return val, ok
}

// Step returns the numeric increment for the schema: multipleOf when declared,
// otherwise 1 for integers and 0.01 for numbers.
func (r ResolvedSchema) Step() float64 {
	if r.Schema != nil && r.MultipleOf != nil {
		return *r.MultipleOf
	}
	if r.TypeName() == "integer" {
		return 1
	}
	return 0.01
}

// EffectiveMin returns the lowest admissible value, folding an exclusive bound
// inward by one step.
func (r ResolvedSchema) EffectiveMin() (float64, bool) {
	if r.Schema == nil || r.Min == nil {
		return 0, false
	}
	if r.ExclusiveMin {
		return *r.Min + r.Step(), true
	}
	return *r.Min, true
}

// EffectiveMax returns the highest admissible value, folding an exclusive
// bound inward by one step.
func (r ResolvedSchema) EffectiveMax() (float64, bool) {
	if r.Schema == nil || r.Max == nil {
		return 0, false
	}
	if r.ExclusiveMax {
		return *r.Max - r.Step(), true
	}
	return *r.Max, true
}

// Clone returns an independent deep copy of the resolved schema, for cases
// where a caller mutates a nested node (e.g. seeding list items).
func (r ResolvedSchema) Clone() ResolvedSchema {
	if r.Schema == nil {
		return ResolvedSchema{}
	}
	return ResolvedSchema{Schema: deepcopy.Copy(r.Schema).(*openapi3.Schema)}
}

// ValidationMap renders the resolved schema as a plain JSON Schema mapping
// suitable for compiling with a standalone validator: internal extension
// markers are stripped and OpenAPI-only keywords removed.
func (r ResolvedSchema) ValidationMap() (map[string]any, error) {
	if r.Schema == nil {
		return map[string]any{}, nil
	}
	data, err := r.Schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	stripInternalKeys(raw)
	return raw, nil
}

func stripInternalKeys(node any) {
	switch v := node.(type) {
	case map[string]any:
		for key := range v {
			if key == "discriminator" || strings.HasPrefix(key, "x-") {
				delete(v, key)
				continue
			}
			stripInternalKeys(v[key])
		}
	case []any:
		for _, item := range v {
			stripInternalKeys(item)
		}
	}
}

// IsObject reports whether the schema declares (or implies) an object shape.
func (r ResolvedSchema) IsObject() bool {
	if r.Schema == nil {
		return false
	}
	if r.TypeName() == "object" {
		return true
	}
	return r.TypeName() == "" && len(r.Properties) > 0
}

// IsPrimitive reports whether the schema is a scalar leaf.
func (r ResolvedSchema) IsPrimitive() bool {
	switch r.TypeName() {
	case "string", "integer", "number", "boolean":
		return true
	}
	return false
}

// IsEmptySchema reports whether the schema carries no constraints at all, the
// accept-anything form.
func (r ResolvedSchema) IsEmptySchema() bool {
	if r.Schema == nil {
		return true
	}
	return r.TypeName() == "" &&
		len(r.Properties) == 0 &&
		r.Items == nil &&
		len(r.AnyOf) == 0 &&
		len(r.OneOf) == 0 &&
		len(r.Enum) == 0 &&
		r.Discriminator == nil &&
		!r.HasAdditional()
}
