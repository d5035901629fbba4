package settings_wizard

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/vast-data/go-settings-wizard/core"
	"github.com/vast-data/go-settings-wizard/settings_schema"
)

// visit carries the context of one property visit down the walk.
type visit struct {
	key      string
	schema   settings_schema.ResolvedSchema
	required bool
	// isItem marks collection items so backends can suppress repeated labels.
	isItem bool
	// override is the default injected by a parent collection (the stored or
	// default element at this index), used when the store has nothing at the
	// item's own path.
	override    any
	hasOverride bool
}

// handlerFunc renders one classified property and returns its value.
type handlerFunc func(e *Engine, v *visit) (any, error)

// Engine walks a resolved schema, classifies every node, and collects values
// through a Backend. Complex kinds recurse inside the engine; scalar kinds
// become prompt requests. One walk per interaction cycle; state already
// present wins over schema defaults, which keeps repeated walks idempotent.
type Engine struct {
	backend  Backend
	log      *zap.Logger
	handlers map[InputType]handlerFunc
}

// NewEngine creates an engine around a backend. A nil logger disables logging.
func NewEngine(backend Backend, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{backend: backend, log: log}
	e.handlers = map[InputType]handlerFunc{
		EnumInput:          (*Engine).handleEnum,
		BooleanInput:       (*Engine).handleScalar,
		IntegerInput:       (*Engine).handleNumber,
		FloatInput:         (*Engine).handleNumber,
		TextInput:          (*Engine).handleText,
		EmailInput:         (*Engine).handleText,
		PasswordInput:      (*Engine).handleText,
		URIInput:           (*Engine).handleText,
		UUIDInput:          (*Engine).handleText,
		IPv4Input:          (*Engine).handleText,
		IPv6Input:          (*Engine).handleText,
		FilePathInput:      (*Engine).handleText,
		DirectoryPathInput: (*Engine).handleText,
		DateInput:          (*Engine).handleTemporal,
		TimeInput:          (*Engine).handleTemporal,
		DateTimeInput:      (*Engine).handleTemporal,
		DurationInput:      (*Engine).handleScalar,
		ListInput:          (*Engine).handleSequence,
		TupleInput:         (*Engine).handleSequence,
		SetInput:           (*Engine).handleSequence,
		DictInput:          (*Engine).handleDict,
		ObjectInput:        (*Engine).handleObject,
		UnionInput:         (*Engine).handleUnion,
		DiscriminatedInput: (*Engine).handleUnion,
		AnyInput:           (*Engine).handleAny,
		NullInput:          (*Engine).handleNull,
	}
	return e
}

// RenderSchema performs one complete walk over the schema and returns the
// collected value tree. Objects without declared properties and without an
// additionalProperties block yield an empty tree immediately.
func (e *Engine) RenderSchema(schema settings_schema.ResolvedSchema) (core.Record, error) {
	if len(schema.Properties) == 0 && !schema.HasAdditional() {
		return core.Record{}, nil
	}

	tree := make(map[string]any)
	for _, name := range schema.PropNames() {
		prop := schema.Prop(name)
		value, err := e.visitProperty(&visit{
			key:      name,
			schema:   prop,
			required: schema.IsRequired(name),
		})
		if err != nil {
			return nil, err
		}
		tree[name] = value
	}

	if schema.HasAdditional() {
		region, err := e.renderAdditionalRegion("", AdditionalPropertiesKey, schema)
		if err != nil {
			return nil, err
		}
		tree[AdditionalPropertiesKey] = region
	}

	return core.Record(UnpackAdditionalProperties(tree, AdditionalPropertiesKey)), nil
}

// visitProperty classifies the node, dispatches to its handler, and persists
// the returned value under the visit key.
func (e *Engine) visitProperty(v *visit) (any, error) {
	kind := PropertyToInputType(v.schema)
	handler, ok := e.handlers[kind]
	if !ok {
		e.backend.Warning(v.key, fmt.Sprintf("property %q has no renderable input kind %q", v.key, kind))
		return nil, &core.UnsupportedInputKindError{Property: v.key, Kind: string(kind)}
	}

	e.log.Debug("visit property",
		zap.String("key", v.key),
		zap.String("kind", string(kind)))

	value, err := handler(e, v)
	if err != nil {
		return nil, err
	}
	e.backend.StoreValue(v.key, value)
	return value, nil
}

// promptDefault resolves the prefill for a visit: stored state wins, then a
// parent-supplied override, then the schema default.
func (e *Engine) promptDefault(v *visit) any {
	if stored, ok := e.backend.GetValue(v.key); ok && stored != nil {
		return stored
	}
	if v.hasOverride {
		return v.override
	}
	if v.schema.IsZero() {
		return nil
	}
	return v.schema.Default
}

// label returns the visit's human title: the declared schema title, else the
// title-cased trailing key segment.
func (v *visit) label() string {
	if !v.schema.IsZero() && v.schema.Title != "" {
		return v.schema.Title
	}
	segments := strings.Split(v.key, core.KeySeparator)
	return ToTitleCase(segments[len(segments)-1])
}

// newRequest builds the base prompt request for a scalar visit.
func (e *Engine) newRequest(v *visit, kind InputType) *PromptRequest {
	req := &PromptRequest{
		Key:      v.key,
		Label:    v.label(),
		Kind:     kind,
		Default:  e.promptDefault(v),
		Required: v.required,
		IsItem:   v.isItem,
		Schema:   v.schema,
	}
	if !v.schema.IsZero() {
		req.Description = v.schema.Description
		req.ReadOnly = v.schema.ReadOnly
		req.MinLength = v.schema.MinLength
		req.MaxLength = v.schema.MaxLength
	}
	return req
}

func (e *Engine) handleScalar(v *visit) (any, error) {
	return e.backend.RenderProperty(e.newRequest(v, PropertyToInputType(v.schema)))
}

// handleEnum offers the literal values as mutually exclusive options. A
// single-valued enum short-circuits without prompting since there is no
// choice to make.
func (e *Engine) handleEnum(v *visit) (any, error) {
	options := v.schema.Enum
	if len(options) == 1 {
		return options[0], nil
	}
	req := e.newRequest(v, EnumInput)
	req.Options = options
	return e.backend.RenderProperty(req)
}

func (e *Engine) handleNumber(v *visit) (any, error) {
	req := e.newRequest(v, PropertyToInputType(v.schema))
	req.Number = numberSpec(v.schema)
	return e.backend.RenderProperty(req)
}

// handleText collects a string and validates it against the effective pattern
// (declared, else the builtin for the kind). A mismatch is reported next to
// the field and the entered value is kept.
func (e *Engine) handleText(v *visit) (any, error) {
	kind := PropertyToInputType(v.schema)
	req := e.newRequest(v, kind)
	req.Pattern, req.PatternMessage = effectivePattern(kind, v.schema)

	value, err := e.backend.RenderProperty(req)
	if err != nil {
		return nil, err
	}
	if text, ok := value.(string); ok && text != "" && !matchesPattern(req.Pattern, text) {
		e.warnValidation(v.key, req.PatternMessage)
	}
	return value, nil
}

func (e *Engine) handleTemporal(v *visit) (any, error) {
	kind := PropertyToInputType(v.schema)
	req := e.newRequest(v, kind)
	req.DateTime = dateTimeParts(kind)
	return e.backend.RenderProperty(req)
}

// handleAny collects free-form text and tries to parse it as JSON; a parse
// failure keeps the raw text and surfaces a non-blocking error.
func (e *Engine) handleAny(v *visit) (any, error) {
	value, err := e.backend.RenderProperty(e.newRequest(v, AnyInput))
	if err != nil {
		return nil, err
	}
	text, ok := value.(string)
	if !ok {
		return value, nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		e.warnValidation(v.key, "Value is not valid structured data; keeping it as plain text.")
		return text, nil
	}
	return parsed, nil
}

// handleNull yields nil without prompting.
func (e *Engine) handleNull(v *visit) (any, error) {
	return nil, nil
}

// handleSequence renders list, tuple, and set kinds. Item count comes from
// stored state, else the schema default's length, else minItems; tuples are
// fixed to their prefixItems length. Sets flag duplicates non-fatally and
// keep the first occurrence of each value.
func (e *Engine) handleSequence(v *visit) (any, error) {
	kind := PropertyToInputType(v.schema)

	var prefix []settings_schema.ResolvedSchema
	var count int
	seed := e.sequenceSeed(v)

	if kind == TupleInput {
		prefix = v.schema.PrefixItemsSchemas()
		count = len(prefix)
	} else {
		count = len(seed)
		if count == 0 && !e.hasStoredList(v.key) {
			count = int(v.schema.MinItems)
		}
	}

	items := make([]any, 0, count)
	for i := 0; i < count; i++ {
		itemSchema := v.schema.ItemsSchema()
		if kind == TupleInput {
			itemSchema = prefix[i]
		}
		child := &visit{
			key:    v.key + core.KeySeparator + strconv.Itoa(i),
			schema: itemSchema,
			isItem: true,
		}
		if i < len(seed) {
			// Inject the prior element as this item's default on an
			// independent copy; the shared items schema stays untouched.
			if cloned := itemSchema.Clone(); !cloned.IsZero() {
				cloned.Default = seed[i]
				child.schema = cloned
			} else {
				child.override = seed[i]
				child.hasOverride = true
			}
		}
		value, err := e.visitProperty(child)
		if err != nil {
			return nil, err
		}
		items = append(items, value)
	}

	if kind == SetInput {
		items = e.dedupeSet(v.key, items)
	}
	return items, nil
}

// hasStoredList reports whether state already holds a list at the key. An
// explicitly emptied list stays empty instead of refilling to minItems.
func (e *Engine) hasStoredList(key string) bool {
	stored, ok := e.backend.GetValue(key)
	if !ok {
		return false
	}
	_, isList := stored.([]any)
	return isList
}

// sequenceSeed returns the prior values of a sequence visit: stored state,
// then a parent override, then the schema default.
func (e *Engine) sequenceSeed(v *visit) []any {
	if stored, ok := e.backend.GetValue(v.key); ok {
		if list, ok := stored.([]any); ok {
			return list
		}
	}
	if v.hasOverride {
		if list, ok := v.override.([]any); ok {
			return list
		}
	}
	if !v.schema.IsZero() {
		if list, ok := v.schema.Default.([]any); ok {
			return list
		}
	}
	return nil
}

// dedupeSet drops duplicate members, keeping first occurrences, and reports
// the duplicates next to the field.
func (e *Engine) dedupeSet(key string, items []any) []any {
	seen := make(map[string]struct{}, len(items))
	unique := make([]any, 0, len(items))
	var dupes []string
	for _, item := range items {
		fingerprint := fmt.Sprintf("%#v", item)
		if _, dup := seen[fingerprint]; dup {
			dupes = append(dupes, fmt.Sprintf("%v", item))
			continue
		}
		seen[fingerprint] = struct{}{}
		unique = append(unique, item)
	}
	if len(dupes) > 0 {
		e.warnValidation(key, "Duplicate values removed: "+strings.Join(dupes, ", "))
	}
	return unique
}

// handleDict renders a dynamic string-keyed mapping. The item schema is the
// additionalProperties schema, or a catch-all when it is the bare boolean
// form. The backend decides the final key set for this walk.
func (e *Engine) handleDict(v *visit) (any, error) {
	itemSchema := v.schema.AdditionalSchema()

	existing := e.dictKeys(v)
	keys, err := e.backend.RenderAdditionalProperties(v.key, v.schema, existing)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(keys))
	for _, entryKey := range keys {
		value, err := e.visitProperty(&visit{
			key:    v.key + core.KeySeparator + entryKey,
			schema: itemSchema,
			isItem: true,
		})
		if err != nil {
			return nil, err
		}
		out[entryKey] = value
	}
	return out, nil
}

// dictKeys returns the current entry keys of a dict visit, sorted for a
// stable walk order.
func (e *Engine) dictKeys(v *visit) []string {
	source := map[string]any{}
	if stored, ok := e.backend.GetValue(v.key); ok {
		if m, ok := stored.(map[string]any); ok {
			source = m
		}
	} else if !v.schema.IsZero() {
		if m, ok := v.schema.Default.(map[string]any); ok {
			source = m
		}
	}
	keys := make([]string, 0, len(source))
	for key := range source {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// handleObject visits each declared sub-property under an extended key path,
// then merges in the object's own additional-properties region.
func (e *Engine) handleObject(v *visit) (any, error) {
	seed, _ := e.promptDefault(v).(map[string]any)

	out := make(map[string]any)
	for _, name := range v.schema.PropNames() {
		child := &visit{
			key:      v.key + core.KeySeparator + name,
			schema:   v.schema.Prop(name),
			required: v.schema.IsRequired(name),
		}
		if seedValue, ok := seed[name]; ok {
			child.override = seedValue
			child.hasOverride = true
		}
		value, err := e.visitProperty(child)
		if err != nil {
			return nil, err
		}
		out[name] = value
	}

	if v.schema.HasAdditional() {
		region, err := e.renderAdditionalRegion(v.key, v.key+core.KeySeparator+AdditionalPropertiesKey, v.schema)
		if err != nil {
			return nil, err
		}
		out[AdditionalPropertiesKey] = region
		return UnpackAdditionalProperties(out, AdditionalPropertiesKey), nil
	}
	return out, nil
}

// renderAdditionalRegion collects the dynamic-key region of an object under
// its sentinel path, as a dict whose item schema is additionalProperties.
// Prior entries come from the sentinel path when still present, else are
// reconstructed from the stored parent object (its keys minus the declared
// property set), since storing the unpacked parent value flattens the region.
func (e *Engine) renderAdditionalRegion(parentKey, regionKey string, parent settings_schema.ResolvedSchema) (map[string]any, error) {
	itemSchema := parent.AdditionalSchema()

	seed := map[string]any{}
	if stored, ok := e.backend.GetValue(regionKey); ok {
		if m, ok := stored.(map[string]any); ok {
			seed = m
		}
	} else if parentKey != "" {
		if stored, ok := e.backend.GetValue(parentKey); ok {
			if m, ok := stored.(map[string]any); ok {
				declared := make(map[string]struct{})
				for _, name := range parent.PropNames() {
					declared[name] = struct{}{}
				}
				for key, value := range m {
					if _, isDeclared := declared[key]; !isDeclared {
						seed[key] = value
					}
				}
			}
		}
	}

	existing := make([]string, 0, len(seed))
	for key := range seed {
		existing = append(existing, key)
	}
	sort.Strings(existing)

	keys, err := e.backend.RenderAdditionalProperties(regionKey, parent, existing)
	if err != nil {
		return nil, err
	}

	region := make(map[string]any, len(keys))
	for _, entryKey := range keys {
		child := &visit{
			key:    regionKey + core.KeySeparator + entryKey,
			schema: itemSchema,
			isItem: true,
		}
		if prior, ok := seed[entryKey]; ok {
			child.override = prior
			child.hasOverride = true
		}
		value, err := e.visitProperty(child)
		if err != nil {
			return nil, err
		}
		region[entryKey] = value
	}
	e.backend.StoreValue(regionKey, region)
	return region, nil
}

// handleUnion presents the anyOf/oneOf branches as a labeled choice and
// recurses into the selected branch. A stored or default value preselects the
// branch: by the discriminator property's literal for discriminated unions,
// by first structural assignability otherwise.
func (e *Engine) handleUnion(v *visit) (any, error) {
	branches := v.schema.Branches()
	if len(branches) == 0 {
		return nil, &core.UnsupportedInputKindError{Property: v.key, Kind: string(UnionInput)}
	}

	labels := branchLabels(branches)

	selected := e.preselectBranch(v, branches)

	req := e.newRequest(v, PropertyToInputType(v.schema))
	req.Options = labels
	req.Default = labels[selected]
	choice, err := e.backend.RenderProperty(req)
	if err != nil {
		return nil, err
	}
	if label, ok := choice.(string); ok {
		for i, candidate := range labels {
			if candidate == label {
				selected = i
				break
			}
		}
	}

	return e.visitBranch(v, branches[selected])
}

// visitBranch renders the chosen branch schema as the property's own value,
// at the property's own key.
func (e *Engine) visitBranch(v *visit, branch settings_schema.ResolvedSchema) (any, error) {
	return e.visitProperty(&visit{
		key:         v.key,
		schema:      branch,
		required:    v.required,
		isItem:      v.isItem,
		override:    v.override,
		hasOverride: v.hasOverride,
	})
}

// preselectBranch picks the branch index matching the prior value, falling
// back to the first branch.
func (e *Engine) preselectBranch(v *visit, branches []settings_schema.ResolvedSchema) int {
	prior := e.promptDefault(v)
	if prior == nil {
		return 0
	}

	if v.schema.Discriminator != nil {
		var tag string
		if m, ok := prior.(map[string]any); ok {
			tag, _ = m[v.schema.Discriminator.PropertyName].(string)
		}
		if tag != "" {
			for i, branch := range branches {
				if branchTag(branch, v.schema.Discriminator.PropertyName) == tag {
					return i
				}
			}
		}
		return 0
	}

	for i, branch := range branches {
		if IsAssignable(prior, branch) {
			return i
		}
	}
	return 0
}

// branchTag returns the literal the branch fixes its discriminator property
// to, through const or a single-valued enum.
func branchTag(branch settings_schema.ResolvedSchema, property string) string {
	prop := branch.Prop(property)
	if prop.IsZero() {
		return ""
	}
	if val, ok := prop.ConstValue(); ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	if len(prop.Enum) == 1 {
		if s, ok := prop.Enum[0].(string); ok {
			return s
		}
	}
	return ""
}

// branchLabels names every branch, suffixing an ordinal where two branches
// would otherwise share a label so each one stays selectable.
func branchLabels(branches []settings_schema.ResolvedSchema) []any {
	names := make([]string, len(branches))
	counts := make(map[string]int, len(branches))
	for i, branch := range branches {
		names[i] = branchLabel(branch)
		counts[names[i]]++
	}

	ordinals := make(map[string]int, len(counts))
	labels := make([]any, len(branches))
	for i, name := range names {
		if counts[name] > 1 {
			ordinals[name]++
			name = fmt.Sprintf("%s %d", name, ordinals[name])
		}
		labels[i] = name
	}
	return labels
}

// branchLabel names a union branch: the declared title, else "type (format)".
func branchLabel(branch settings_schema.ResolvedSchema) string {
	if branch.IsZero() {
		return "any"
	}
	if branch.Title != "" {
		return ToKebabCase(branch.Title)
	}
	name := branch.TypeName()
	if name == "" {
		name = "any"
	}
	if branch.Format != "" {
		return fmt.Sprintf("%s (%s)", name, branch.Format)
	}
	return name
}

// warnValidation reports a recoverable per-field problem. The walk continues
// with the entered value retained.
func (e *Engine) warnValidation(key, message string) {
	verr := &core.ValidationError{Key: key, Message: message}
	e.log.Warn("validation", zap.String("key", key), zap.String("message", message))
	e.backend.Warning(key, verr.Message)
}
