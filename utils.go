package settings_wizard

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/vast-data/go-settings-wizard/settings_schema"
)

// AdditionalPropertiesKey is the reserved sentinel under which an object's
// dynamic-key region is collected before being unpacked into the parent.
const AdditionalPropertiesKey = "__additional_properties__"

// newItemPrefix seeds auto-generated dictionary keys.
const newItemPrefix = "new_item_"

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	newItemRe     = regexp.MustCompile(`^new_item_(\d+)$`)
)

// ToTitleCase converts a camelCase, snake_case, or kebab-case identifier into
// a spaced, capitalized label. Idempotent on already-converted input; the
// empty string passes through.
func ToTitleCase(s string) string {
	if s == "" {
		return ""
	}
	spaced := camelBoundary.ReplaceAllString(s, "$1 $2")
	spaced = strings.NewReplacer("_", " ", "-", " ").Replace(spaced)
	words := strings.Fields(spaced)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// ToKebabCase converts a camelCase or snake_case identifier into kebab-case.
// Idempotent on already-converted input; the empty string passes through.
func ToKebabCase(s string) string {
	if s == "" {
		return ""
	}
	hyphenated := camelBoundary.ReplaceAllString(s, "$1-$2")
	hyphenated = strings.NewReplacer("_", "-", " ", "-").Replace(hyphenated)
	return strings.ToLower(hyphenated)
}

// GetNextKey generates a fresh auto-key for a new dictionary entry: it scans
// the existing keys for the new_item_<N> pattern and returns new_item_<max+1>
// (new_item_0 when none match). Prior auto-generated keys never collide;
// user-chosen keys that happen to match the pattern out of sequence are the
// user's problem.
func GetNextKey(existing []string) string {
	next := -1
	for _, key := range existing {
		match := newItemRe.FindStringSubmatch(key)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err == nil && n > next {
			next = n
		}
	}
	return newItemPrefix + strconv.Itoa(next+1)
}

// UnpackAdditionalProperties lifts every sentinel-keyed block in the tree up
// into its parent mapping, recursively. A dynamic key colliding with a
// declared one wins: the additional entry replaces the original value.
func UnpackAdditionalProperties(tree map[string]any, sentinel string) map[string]any {
	out := make(map[string]any, len(tree))
	for key, value := range tree {
		if key == sentinel {
			continue
		}
		out[key] = unpackValue(value, sentinel)
	}
	if block, ok := tree[sentinel].(map[string]any); ok {
		for key, value := range block {
			out[key] = unpackValue(value, sentinel)
		}
	}
	return out
}

func unpackValue(value any, sentinel string) any {
	switch v := value.(type) {
	case map[string]any:
		return UnpackAdditionalProperties(v, sentinel)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = unpackValue(item, sentinel)
		}
		return out
	default:
		return value
	}
}

// compiledCache memoizes validator compilation per serialized schema. Union
// preselection probes the same branch schemas on every walk.
var compiledCache sync.Map

// IsAssignable reports whether a value structurally validates against the
// schema, using the standalone JSON Schema validator. Compilation failures
// count as not assignable.
func IsAssignable(value any, schema settings_schema.ResolvedSchema) bool {
	compiled, err := compiledSchema(schema)
	if err != nil {
		return false
	}

	// The validator wants plain decoded-JSON shapes, so typed values go
	// through a serialization round-trip first.
	data, err := json.Marshal(value)
	if err != nil {
		return false
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return false
	}

	return compiled.Validate(instance) == nil
}

func compiledSchema(schema settings_schema.ResolvedSchema) (*jsonschema.Schema, error) {
	raw, err := schema.ValidationMap()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	cacheKey := string(data)
	if cached, ok := compiledCache.Load(cacheKey); ok {
		return cached.(*jsonschema.Schema), nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("register schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	compiledCache.Store(cacheKey, compiled)
	return compiled, nil
}
