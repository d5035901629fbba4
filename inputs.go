package settings_wizard

import (
	"regexp"

	"github.com/vast-data/go-settings-wizard/settings_schema"
)

// PromptRequest describes one scalar input the backend must collect. The
// engine fills it from the property's resolved schema; the backend renders
// whatever control fits the Kind and returns the entered value.
type PromptRequest struct {
	// Key is the full dotted state path of the property.
	Key string
	// Label is the human title (declared, or synthesized from the key).
	Label       string
	Description string
	Kind        InputType
	// Default is the prefill value: the stored state entry when present,
	// else the schema default.
	Default  any
	Required bool
	ReadOnly bool
	// IsItem marks collection items, letting backends suppress repeated
	// labels inside a list.
	IsItem bool

	// Pattern and PatternMessage apply to text-family kinds. When the schema
	// declares no explicit pattern, the builtin pattern for the kind is used.
	Pattern        string
	PatternMessage string
	MinLength      uint64
	MaxLength      *uint64

	// Number is set for integer/float kinds.
	Number *NumberSpec
	// Options is set for the enum kind, in declaration order.
	Options []any
	// DateTime is set for date/time/datetime kinds.
	DateTime *DateTimeParts

	// Schema is the property's resolved schema, for backends that need more
	// than the digested fields above.
	Schema settings_schema.ResolvedSchema
}

// NumberSpec carries the digested numeric constraints of an integer or float
// prompt. When both bounds are known the input is presented as a bounded
// slider, otherwise as an open numeric field.
type NumberSpec struct {
	Min    *float64
	Max    *float64
	Step   float64
	Slider bool
}

// DateTimeParts says which calendar components a temporal prompt collects.
// A combined datetime collects both and the engine merges them.
type DateTimeParts struct {
	HasDate bool
	HasTime bool
}

// builtinPattern pairs a validation regexp with the message shown when a
// value does not match.
type builtinPattern struct {
	pattern string
	message string
}

// builtinPatterns are the per-kind validation rules applied when the schema
// declares no explicit pattern. Validation is advisory: a mismatch surfaces
// next to the field but the entered value is kept.
var builtinPatterns = map[InputType]builtinPattern{
	EmailInput: {
		pattern: `^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`,
		message: "Enter a valid email address.",
	},
	URIInput: {
		pattern: `^[A-Za-z][A-Za-z0-9+.-]*://[^\s]+$`,
		message: "Enter a valid URI, including the scheme (e.g. https://...).",
	},
	UUIDInput: {
		pattern: `^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`,
		message: "Enter a valid UUID (8-4-4-4-12 hexadecimal digits).",
	},
	IPv4Input: {
		pattern: `^((25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9]?[0-9])\.){3}(25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9]?[0-9])$`,
		message: "Enter a valid IPv4 address (e.g. 192.168.0.1).",
	},
	IPv6Input: {
		pattern: `^[0-9a-fA-F:]+$`,
		message: "Enter a valid IPv6 address.",
	},
	FilePathInput: {
		pattern: `^[^\x00]+$`,
		message: "Enter a file path.",
	},
	DirectoryPathInput: {
		pattern: `^[^\x00]+$`,
		message: "Enter a directory path.",
	},
}

// effectivePattern returns the validation pattern and message for a text
// prompt: the schema's own pattern wins, else the builtin for the kind.
func effectivePattern(kind InputType, schema settings_schema.ResolvedSchema) (string, string) {
	if !schema.IsZero() && schema.Pattern != "" {
		return schema.Pattern, "Value does not match the required pattern."
	}
	if builtin, ok := builtinPatterns[kind]; ok {
		return builtin.pattern, builtin.message
	}
	return "", ""
}

// matchesPattern reports whether a string value satisfies the pattern. An
// unparsable pattern never blocks input.
func matchesPattern(pattern, value string) bool {
	if pattern == "" {
		return true
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return true
	}
	return re.MatchString(value)
}

// dateTimeParts maps temporal kinds onto the components they collect.
func dateTimeParts(kind InputType) *DateTimeParts {
	switch kind {
	case DateInput:
		return &DateTimeParts{HasDate: true}
	case TimeInput:
		return &DateTimeParts{HasTime: true}
	case DateTimeInput:
		return &DateTimeParts{HasDate: true, HasTime: true}
	}
	return nil
}

// numberSpec digests the numeric constraints of a schema node.
func numberSpec(schema settings_schema.ResolvedSchema) *NumberSpec {
	spec := &NumberSpec{Step: schema.Step()}
	if min, ok := schema.EffectiveMin(); ok {
		spec.Min = &min
	}
	if max, ok := schema.EffectiveMax(); ok {
		spec.Max = &max
	}
	spec.Slider = spec.Min != nil && spec.Max != nil
	return spec
}
