package settings_wizard

import (
	"testing"

	"github.com/vast-data/go-settings-wizard/settings_schema"
)

func mustResolve(t *testing.T, spec map[string]any) settings_schema.ResolvedSchema {
	t.Helper()
	schema, err := settings_schema.FromSpec(spec)
	if err != nil {
		t.Fatalf("FromSpec error: %v", err)
	}
	resolved, err := schema.ResolveRefs()
	if err != nil {
		t.Fatalf("ResolveRefs error: %v", err)
	}
	return resolved
}

func TestPropertyToInputType(t *testing.T) {
	tests := []struct {
		name string
		spec map[string]any
		want InputType
	}{
		{"text", map[string]any{"type": "string"}, TextInput},
		{"email", map[string]any{"type": "string", "format": "email"}, EmailInput},
		{"password", map[string]any{"type": "string", "format": "password"}, PasswordInput},
		{"uri", map[string]any{"type": "string", "format": "uri"}, URIInput},
		{"uuid", map[string]any{"type": "string", "format": "uuid"}, UUIDInput},
		{"ipv4", map[string]any{"type": "string", "format": "ipv4"}, IPv4Input},
		{"ipv6", map[string]any{"type": "string", "format": "ipv6"}, IPv6Input},
		{"file path", map[string]any{"type": "string", "format": "file-path"}, FilePathInput},
		{"directory path", map[string]any{"type": "string", "format": "directory-path"}, DirectoryPathInput},
		{"unknown format falls back to text", map[string]any{"type": "string", "format": "hostname"}, TextInput},
		{"integer", map[string]any{"type": "integer"}, IntegerInput},
		{"float", map[string]any{"type": "number"}, FloatInput},
		{"date", map[string]any{"type": "string", "format": "date"}, DateInput},
		{"time", map[string]any{"type": "string", "format": "time"}, TimeInput},
		{"datetime", map[string]any{"type": "string", "format": "date-time"}, DateTimeInput},
		{"duration", map[string]any{"type": "string", "format": "duration"}, DurationInput},
		{"boolean", map[string]any{"type": "boolean"}, BooleanInput},
		{"enum", map[string]any{"type": "string", "enum": []any{"a", "b"}}, EnumInput},
		{"enum wins over format", map[string]any{"type": "string", "format": "email", "enum": []any{"a"}}, EnumInput},
		{
			"list",
			map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			ListInput,
		},
		{
			"set",
			map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "uniqueItems": true},
			SetInput,
		},
		{
			"tuple",
			map[string]any{"type": "array", "prefixItems": []any{
				map[string]any{"type": "string"},
				map[string]any{"type": "integer"},
			}},
			TupleInput,
		},
		{
			"dict",
			map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "string"}},
			DictInput,
		},
		{
			"object",
			map[string]any{"type": "object", "properties": map[string]any{
				"a": map[string]any{"type": "string"},
			}},
			ObjectInput,
		},
		{"bare object is any", map[string]any{"type": "object"}, AnyInput},
		{
			"typeless with properties is object",
			map[string]any{"properties": map[string]any{
				"a": map[string]any{"type": "string"},
			}},
			ObjectInput,
		},
		{
			"typeless with additionalProperties is dict",
			map[string]any{"additionalProperties": map[string]any{"type": "string"}},
			DictInput,
		},
		{
			"union",
			map[string]any{"anyOf": []any{
				map[string]any{"type": "string"},
				map[string]any{"type": "integer"},
			}},
			UnionInput,
		},
		{
			"discriminated union",
			map[string]any{
				"discriminator": "kind",
				"oneOf": []any{
					map[string]any{"type": "object", "properties": map[string]any{
						"kind": map[string]any{"type": "string", "const": "a"},
					}},
					map[string]any{"type": "object", "properties": map[string]any{
						"kind": map[string]any{"type": "string", "const": "b"},
					}},
				},
			},
			DiscriminatedInput,
		},
		{"null", map[string]any{"type": "null"}, NullInput},
		{"empty schema is any", map[string]any{}, AnyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PropertyToInputType(mustResolve(t, tt.spec))
			if got != tt.want {
				t.Errorf("PropertyToInputType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPropertyToInputTypeZeroSchema(t *testing.T) {
	if got := PropertyToInputType(settings_schema.ResolvedSchema{}); got != AnyInput {
		t.Errorf("zero schema = %q, want %q", got, AnyInput)
	}
}

func TestIsComplex(t *testing.T) {
	complex := map[InputType]bool{
		ListInput:          true,
		TupleInput:         true,
		SetInput:           true,
		DictInput:          true,
		ObjectInput:        true,
		UnionInput:         true,
		DiscriminatedInput: true,
	}

	all := []InputType{
		TextInput, EmailInput, PasswordInput, URIInput, UUIDInput, IPv4Input,
		IPv6Input, FilePathInput, DirectoryPathInput, IntegerInput, FloatInput,
		DateInput, TimeInput, DateTimeInput, DurationInput, BooleanInput,
		EnumInput, ListInput, TupleInput, SetInput, DictInput, ObjectInput,
		UnionInput, DiscriminatedInput, AnyInput, NullInput,
	}

	for _, kind := range all {
		if got := kind.IsComplex(); got != complex[kind] {
			t.Errorf("%s.IsComplex() = %v, want %v", kind, got, complex[kind])
		}
	}
}
