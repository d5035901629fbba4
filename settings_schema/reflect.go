package settings_schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/vast-data/go-settings-wizard/core"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// reflectStruct derives a raw schema from a struct type. Exported fields map
// to properties by json tag (falling back to the field name); non-pointer
// fields without omitempty are required. Named nested structs become $defs
// entries referenced by $ref, so a type that embeds itself produces a cyclic
// reference caught at resolution time.
func reflectStruct(typ reflect.Type) (*SettingsSchema, error) {
	defs := map[string]any{}
	raw, err := structSchema(typ, defs)
	if err != nil {
		return nil, err
	}
	schema := &SettingsSchema{raw: raw}
	if len(defs) > 0 {
		schema.refMap = defs
	}
	return schema, nil
}

func structSchema(typ reflect.Type, defs map[string]any) (map[string]any, error) {
	props := map[string]any{}
	order := []any{}
	required := []any{}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name, opts := parseJSONTag(field)
		if name == "-" {
			continue
		}

		fieldSchema, err := typeSchema(field.Type, defs)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", typ.Name(), field.Name, err)
		}

		if desc := field.Tag.Get("description"); desc != "" {
			if m, ok := fieldSchema.(map[string]any); ok {
				m["description"] = desc
			}
		}

		props[name] = fieldSchema
		order = append(order, name)
		if field.Type.Kind() != reflect.Ptr && !opts.omitempty {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if typ.Name() != "" {
		schema["title"] = typ.Name()
	}
	if len(order) > 0 {
		schema[propOrderKey] = order
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema, nil
}

func typeSchema(typ reflect.Type, defs map[string]any) (any, error) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	switch typ {
	case timeType:
		return map[string]any{"type": "string", "format": "date-time"}, nil
	case durationType:
		return map[string]any{"type": "string", "format": "duration"}, nil
	}

	switch typ.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}, nil
	case reflect.Bool:
		return map[string]any{"type": "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}, nil

	case reflect.Slice, reflect.Array:
		items, err := typeSchema(typ.Elem(), defs)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil

	case reflect.Map:
		if typ.Key().Kind() != reflect.String {
			return nil, &core.InvalidSchemaInputError{Type: typ.String()}
		}
		additional, err := typeSchema(typ.Elem(), defs)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "object", "additionalProperties": additional}, nil

	case reflect.Struct:
		// Anonymous struct types inline; named ones go through $defs so the
		// same type reflects once and self-reference stays representable.
		if typ.Name() == "" {
			return structSchema(typ, defs)
		}
		if _, seen := defs[typ.Name()]; !seen {
			defs[typ.Name()] = nil // placeholder guards against re-entry
			nested, err := structSchema(typ, defs)
			if err != nil {
				return nil, err
			}
			defs[typ.Name()] = nested
		}
		return map[string]any{"$ref": "#/$defs/" + typ.Name()}, nil

	case reflect.Interface:
		return map[string]any{}, nil

	default:
		return nil, &core.InvalidSchemaInputError{Type: typ.Kind().String()}
	}
}

type tagOptions struct {
	omitempty bool
}

func parseJSONTag(field reflect.StructField) (string, tagOptions) {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name, tagOptions{}
	}
	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = field.Name
	}
	opts := tagOptions{}
	for _, part := range parts[1:] {
		if part == "omitempty" {
			opts.omitempty = true
		}
	}
	return name, opts
}
