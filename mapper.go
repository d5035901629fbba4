package settings_wizard

import (
	"github.com/vast-data/go-settings-wizard/settings_schema"
)

// InputType classifies a resolved schema node into the kind of input control
// a backend should render for it.
type InputType string

const (
	TextInput          InputType = "text"
	EmailInput         InputType = "email"
	PasswordInput      InputType = "password"
	URIInput           InputType = "uri"
	UUIDInput          InputType = "uuid"
	IPv4Input          InputType = "ipv4"
	IPv6Input          InputType = "ipv6"
	FilePathInput      InputType = "file_path"
	DirectoryPathInput InputType = "directory_path"
	IntegerInput       InputType = "integer"
	FloatInput         InputType = "float"
	DateInput          InputType = "date"
	TimeInput          InputType = "time"
	DateTimeInput      InputType = "datetime"
	DurationInput      InputType = "duration"
	BooleanInput       InputType = "boolean"
	EnumInput          InputType = "enum"
	ListInput          InputType = "list"
	TupleInput         InputType = "tuple"
	SetInput           InputType = "set"
	DictInput          InputType = "dict"
	ObjectInput        InputType = "object"
	UnionInput         InputType = "union"
	DiscriminatedInput InputType = "discriminated_union"
	AnyInput           InputType = "any"
	NullInput          InputType = "null"
)

// IsComplex reports whether the kind is rendered by recursing into child
// schemas rather than by a single prompt.
func (t InputType) IsComplex() bool {
	switch t {
	case ListInput, TupleInput, SetInput, DictInput, ObjectInput, UnionInput, DiscriminatedInput:
		return true
	}
	return false
}

// stringFormats maps string `format` values onto input kinds. Unlisted
// formats fall back to plain text.
var stringFormats = map[string]InputType{
	"email":          EmailInput,
	"idn-email":      EmailInput,
	"password":       PasswordInput,
	"uri":            URIInput,
	"uri-reference":  URIInput,
	"url":            URIInput,
	"uuid":           UUIDInput,
	"ipv4":           IPv4Input,
	"ipv6":           IPv6Input,
	"file-path":      FilePathInput,
	"path":           FilePathInput,
	"directory-path": DirectoryPathInput,
	"date":           DateInput,
	"time":           TimeInput,
	"date-time":      DateTimeInput,
	"duration":       DurationInput,
}

// PropertyToInputType classifies a resolved schema node. Value-restriction
// keywords win over declared type: an enum is an enum whatever its base type,
// a discriminator marks a discriminated union, and bare anyOf/oneOf is a
// plain union. A node without a declared type defaults to the object shape
// when it carries properties or additionalProperties; only typeless,
// constraint-free schemas accept anything.
func PropertyToInputType(schema settings_schema.ResolvedSchema) InputType {
	if schema.IsEmptySchema() {
		return AnyInput
	}

	if len(schema.Enum) > 0 {
		return EnumInput
	}
	if schema.Discriminator != nil {
		return DiscriminatedInput
	}
	if len(schema.AnyOf) > 0 || len(schema.OneOf) > 0 {
		return UnionInput
	}

	if schema.IsPrimitive() {
		switch schema.TypeName() {
		case "string":
			if kind, ok := stringFormats[schema.Format]; ok {
				return kind
			}
			return TextInput
		case "integer":
			return IntegerInput
		case "number":
			return FloatInput
		case "boolean":
			return BooleanInput
		}
	}

	switch schema.TypeName() {
	case "array":
		if len(schema.PrefixItemsSchemas()) > 0 {
			return TupleInput
		}
		if schema.UniqueItems {
			return SetInput
		}
		return ListInput
	case "null":
		return NullInput
	}

	if schema.IsObject() || schema.HasAdditional() {
		if len(schema.Properties) > 0 {
			return ObjectInput
		}
		if schema.HasAdditional() {
			return DictInput
		}
	}

	return AnyInput
}
