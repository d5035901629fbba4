package settings_wizard

import (
	"reflect"
	"testing"

	"github.com/vast-data/go-settings-wizard/core"
	"github.com/vast-data/go-settings-wizard/settings_schema"
)

// testBackend answers prompts from a scripted map and records messages.
type testBackend struct {
	StateBackend
	answers  map[string]any
	regions  map[string][]string
	warnings []string
	errors   []string
}

func newTestBackend() *testBackend {
	return &testBackend{
		answers: make(map[string]any),
		regions: make(map[string][]string),
	}
}

func (b *testBackend) RenderProperty(req *PromptRequest) (any, error) {
	if value, ok := b.answers[req.Key]; ok {
		return value, nil
	}
	return req.Default, nil
}

func (b *testBackend) RenderAdditionalProperties(key string, schema settings_schema.ResolvedSchema, existing []string) ([]string, error) {
	if keys, ok := b.regions[key]; ok {
		return keys, nil
	}
	return existing, nil
}

func (b *testBackend) RenderWizard(title string) error { return nil }

func (b *testBackend) Warning(key, message string) {
	b.warnings = append(b.warnings, key+": "+message)
}

func (b *testBackend) Error(key, message string) {
	b.errors = append(b.errors, key+": "+message)
}

func newTestEngine(t *testing.T, b *testBackend) *Engine {
	t.Helper()
	b.InitState(core.NewStore())
	return NewEngine(b, nil)
}

func TestRenderSchemaEndToEnd(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"tags": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 1,
			},
		},
		"required": []any{"name"},
	})

	backend := newTestBackend()
	backend.answers["name"] = "x"
	backend.answers["tags.0"] = "a"
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}

	want := core.Record{"name": "x", "tags": []any{"a"}}
	if !reflect.DeepEqual(tree, want) {
		t.Errorf("tree = %v, want %v", tree, want)
	}
}

func TestRenderSchemaIdempotent(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"tags": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 1,
			},
		},
	})

	backend := newTestBackend()
	backend.answers["name"] = "x"
	backend.answers["tags.0"] = "a"
	engine := newTestEngine(t, backend)

	first, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("first walk error: %v", err)
	}

	// No user edits between walks: values come back out of state.
	backend.answers = map[string]any{}
	second, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("second walk error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("walks differ: %v vs %v", first, second)
	}
}

func TestRenderSchemaEmptyObject(t *testing.T) {
	schema := mustResolve(t, map[string]any{"type": "object", "properties": map[string]any{}})
	engine := newTestEngine(t, newTestBackend())

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	if len(tree) != 0 {
		t.Errorf("tree = %v, want empty", tree)
	}
}

func TestRenderSchemaTypelessNestedObject(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"server": map[string]any{
				"properties": map[string]any{
					"host": map[string]any{"type": "string"},
				},
			},
		},
	})

	backend := newTestBackend()
	backend.answers["server.host"] = "localhost"
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	want := map[string]any{"host": "localhost"}
	if !reflect.DeepEqual(tree["server"], want) {
		t.Errorf("server = %v, want %v", tree["server"], want)
	}
}

func TestUnionPreselectsAssignableBranch(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"value": map[string]any{
				"anyOf": []any{
					map[string]any{"type": "string"},
					map[string]any{"type": "integer"},
				},
			},
		},
	})

	backend := newTestBackend()
	engine := newTestEngine(t, backend)
	backend.Store().Set("value", 5)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	if tree["value"] != 5 {
		t.Errorf("value = %v, want 5 through the integer branch", tree["value"])
	}
}

func TestDiscriminatedUnionPreselection(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"auth": map[string]any{
				"discriminator": "kind",
				"oneOf": []any{
					map[string]any{
						"type":  "object",
						"title": "TokenAuth",
						"properties": map[string]any{
							"kind":  map[string]any{"type": "string", "const": "token"},
							"token": map[string]any{"type": "string"},
						},
					},
					map[string]any{
						"type":  "object",
						"title": "BasicAuth",
						"properties": map[string]any{
							"kind":     map[string]any{"type": "string", "const": "basic"},
							"username": map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	})

	backend := newTestBackend()
	engine := newTestEngine(t, backend)
	backend.Store().Set("auth", map[string]any{"kind": "basic", "username": "admin"})
	backend.answers["auth.username"] = "admin"
	backend.answers["auth.kind"] = "basic"

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	auth, ok := tree["auth"].(map[string]any)
	if !ok {
		t.Fatalf("auth = %v, want object from the basic branch", tree["auth"])
	}
	if auth["username"] != "admin" {
		t.Errorf("auth = %v, want the basic branch fields", auth)
	}
}

func TestEnumSingleOptionShortCircuits(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mode": map[string]any{"type": "string", "enum": []any{"only"}},
		},
	})

	backend := newTestBackend()
	backend.answers["mode"] = "should not be asked"
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	if tree["mode"] != "only" {
		t.Errorf("mode = %v, want the single enum option without prompting", tree["mode"])
	}
}

func TestNullYieldsNilWithoutPrompting(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"nothing": map[string]any{"type": "null"},
		},
	})

	backend := newTestBackend()
	backend.answers["nothing"] = "ignored"
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	if tree["nothing"] != nil {
		t.Errorf("nothing = %v, want nil", tree["nothing"])
	}
}

func TestAnyParsesStructuredText(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"blob": map[string]any{},
		},
	})

	backend := newTestBackend()
	backend.answers["blob"] = `{"a": 1}`
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	blob, ok := tree["blob"].(map[string]any)
	if !ok {
		t.Fatalf("blob = %v (%T), want parsed object", tree["blob"], tree["blob"])
	}
	if blob["a"] != float64(1) {
		t.Errorf("blob = %v, want {a: 1}", blob)
	}
}

func TestAnyKeepsRawTextOnParseFailure(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"blob": map[string]any{},
		},
	})

	backend := newTestBackend()
	backend.answers["blob"] = "not structured"
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	if tree["blob"] != "not structured" {
		t.Errorf("blob = %v, want the raw text retained", tree["blob"])
	}
	if len(backend.warnings) == 0 {
		t.Errorf("expected a non-blocking warning for unparsable input")
	}
}

func TestTextPatternMismatchWarnsButKeepsValue(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"contact": map[string]any{"type": "string", "format": "email"},
		},
	})

	backend := newTestBackend()
	backend.answers["contact"] = "not-an-email"
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	if tree["contact"] != "not-an-email" {
		t.Errorf("contact = %v, want the invalid value retained", tree["contact"])
	}
	if len(backend.warnings) == 0 {
		t.Errorf("expected a validation warning for the pattern mismatch")
	}
}

func TestSetDeduplicatesAndWarns(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"colors": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"uniqueItems": true,
			},
		},
	})

	backend := newTestBackend()
	engine := newTestEngine(t, backend)
	backend.Store().Set("colors", []any{"red", "red", "blue"})

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	want := []any{"red", "blue"}
	if !reflect.DeepEqual(tree["colors"], want) {
		t.Errorf("colors = %v, want %v", tree["colors"], want)
	}
	if len(backend.warnings) == 0 {
		t.Errorf("expected a duplicate-members warning")
	}
}

func TestTupleUsesPerIndexSchemas(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pair": map[string]any{
				"type": "array",
				"prefixItems": []any{
					map[string]any{"type": "string"},
					map[string]any{"type": "integer"},
				},
			},
		},
	})

	backend := newTestBackend()
	backend.answers["pair.0"] = "host"
	backend.answers["pair.1"] = 8080
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	want := []any{"host", 8080}
	if !reflect.DeepEqual(tree["pair"], want) {
		t.Errorf("pair = %v, want %v", tree["pair"], want)
	}
}

func TestDictCollectsDynamicEntries(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"labels": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
		},
	})

	backend := newTestBackend()
	backend.regions["labels"] = []string{"env", "tier"}
	backend.answers["labels.env"] = "prod"
	backend.answers["labels.tier"] = "web"
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	want := map[string]any{"env": "prod", "tier": "web"}
	if !reflect.DeepEqual(tree["labels"], want) {
		t.Errorf("labels = %v, want %v", tree["labels"], want)
	}
}

func TestAdditionalPropertiesUnpackedIntoParent(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "string"},
		},
		"additionalProperties": map[string]any{"type": "integer"},
	})

	backend := newTestBackend()
	backend.answers["a"] = "declared"
	backend.regions[AdditionalPropertiesKey] = []string{"extra"}
	backend.answers[AdditionalPropertiesKey+".extra"] = 7
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	want := core.Record{"a": "declared", "extra": 7}
	if !reflect.DeepEqual(tree, want) {
		t.Errorf("tree = %v, want %v", tree, want)
	}
	if _, sentinel := tree[AdditionalPropertiesKey]; sentinel {
		t.Errorf("sentinel key leaked into the final tree")
	}
}

func TestNestedObjectAdditionalProperties(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"server": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"host": map[string]any{"type": "string"},
				},
				"additionalProperties": map[string]any{"type": "string"},
			},
		},
	})

	backend := newTestBackend()
	backend.answers["server.host"] = "localhost"
	region := "server" + core.KeySeparator + AdditionalPropertiesKey
	backend.regions[region] = []string{"zone"}
	backend.answers[region+".zone"] = "eu"
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	want := map[string]any{"host": "localhost", "zone": "eu"}
	if !reflect.DeepEqual(tree["server"], want) {
		t.Errorf("server = %v, want %v", tree["server"], want)
	}
}

func TestNestedAdditionalPropertiesIdempotent(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"server": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"host": map[string]any{"type": "string"},
				},
				"additionalProperties": map[string]any{"type": "string"},
			},
		},
	})

	backend := newTestBackend()
	backend.answers["server.host"] = "localhost"
	region := "server" + core.KeySeparator + AdditionalPropertiesKey
	backend.regions[region] = []string{"zone"}
	backend.answers[region+".zone"] = "eu"
	engine := newTestEngine(t, backend)

	first, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("first walk error: %v", err)
	}

	// Dynamic keys must survive a re-walk purely out of state.
	backend.answers = map[string]any{}
	backend.regions = map[string][]string{}
	second, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("second walk error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("walks differ: %v vs %v", first, second)
	}
}

func TestUnionDuplicateBranchLabelsStaySelectable(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"value": map[string]any{
				"anyOf": []any{
					map[string]any{"type": "string", "enum": []any{"alpha"}},
					map[string]any{"type": "string", "enum": []any{"beta"}},
				},
			},
		},
	})

	backend := newTestBackend()
	backend.answers["value"] = "string 2"
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	if tree["value"] != "beta" {
		t.Errorf("value = %v, want the second branch's option", tree["value"])
	}
}

func TestSequenceSeedingLeavesItemSchemaUntouched(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ports": map[string]any{
				"type":    "array",
				"items":   map[string]any{"type": "integer", "default": 1},
				"default": []any{80, 443},
			},
		},
	})

	backend := newTestBackend()
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	want := []any{float64(80), float64(443)}
	if !reflect.DeepEqual(tree["ports"], want) {
		t.Errorf("ports = %v, want %v", tree["ports"], want)
	}

	item := schema.Prop("ports").ItemsSchema()
	if item.Default != float64(1) {
		t.Errorf("shared items schema mutated: default = %v", item.Default)
	}
}

func TestListSeedsFromSchemaDefault(t *testing.T) {
	schema := mustResolve(t, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ports": map[string]any{
				"type":    "array",
				"items":   map[string]any{"type": "integer"},
				"default": []any{80, 443},
			},
		},
	})

	backend := newTestBackend()
	engine := newTestEngine(t, backend)

	tree, err := engine.RenderSchema(schema)
	if err != nil {
		t.Fatalf("RenderSchema error: %v", err)
	}
	// Schema defaults pass through JSON decoding, so numbers are float64.
	want := []any{float64(80), float64(443)}
	if !reflect.DeepEqual(tree["ports"], want) {
		t.Errorf("ports = %v, want the schema default seed %v", tree["ports"], want)
	}
}
