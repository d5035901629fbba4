package settings_wizard

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vast-data/go-settings-wizard/core"
	"github.com/vast-data/go-settings-wizard/settings_schema"
)

// CompletionFunc receives the fully collected value tree together with any
// caller-forwarded extra arguments. Its return value is propagated back to
// the RenderWizard caller.
type CompletionFunc func(values core.Record, args ...any) (any, error)

// Wizard binds one resolved schema to one backend and one state store. Each
// wizard instance is identified by a key and owns its store exclusively;
// independent instances never share state.
type Wizard struct {
	id            string
	schema        settings_schema.ResolvedSchema
	store         *core.Store
	backend       Backend
	engine        *Engine
	log           *zap.Logger
	clearOnSubmit bool
}

// Option customizes wizard construction.
type Option func(*Wizard)

// WithID sets the wizard's identity key instead of a generated UUID.
func WithID(id string) Option {
	return func(w *Wizard) { w.id = id }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(w *Wizard) { w.log = log }
}

// WithClearOnSubmit resets the state store after a successful completion
// callback, so the next walk starts from schema defaults.
func WithClearOnSubmit() Option {
	return func(w *Wizard) { w.clearOnSubmit = true }
}

// New resolves the schema and builds a wizard around the backend. Resolution
// failures (missing or cyclic references, invalid schema shapes) surface here,
// before any rendering begins.
func New(schema *settings_schema.SettingsSchema, backend Backend, opts ...Option) (*Wizard, error) {
	resolved, err := schema.ResolveRefs()
	if err != nil {
		return nil, err
	}

	w := &Wizard{
		id:      uuid.NewString(),
		schema:  resolved,
		store:   core.NewStore(),
		backend: backend,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}

	w.engine = NewEngine(backend, w.log.With(zap.String("wizard", w.id)))
	backend.InitState(w.store)
	return w, nil
}

// ID returns the wizard's identity key.
func (w *Wizard) ID() string {
	return w.id
}

// Schema returns the resolved root schema.
func (w *Wizard) Schema() settings_schema.ResolvedSchema {
	return w.schema
}

// Store returns the wizard's state store.
func (w *Wizard) Store() *core.Store {
	return w.store
}

// Title returns the wizard's display title: the schema title, else a generic
// one.
func (w *Wizard) Title() string {
	if w.schema.Title != "" {
		return w.schema.Title
	}
	return "Settings"
}

// RenderSchema performs one walk over the root schema and returns the
// collected value tree. Values already in state win over schema defaults, so
// repeated walks without user edits return the same tree.
func (w *Wizard) RenderSchema() (core.Record, error) {
	return w.engine.RenderSchema(w.schema)
}

// RenderWizard runs one full interaction cycle: draws the outer container,
// walks the schema, and hands the collected tree to the completion function
// along with any extra arguments. The completion function's return value is
// propagated back; a nil completion function yields nil.
func (w *Wizard) RenderWizard(onComplete CompletionFunc, args ...any) (any, error) {
	if err := w.backend.RenderWizard(w.Title()); err != nil {
		return nil, err
	}

	values, err := w.RenderSchema()
	if err != nil {
		return nil, err
	}
	if onComplete == nil {
		return nil, nil
	}

	result, err := onComplete(values, args...)
	if err != nil {
		return nil, err
	}
	if w.clearOnSubmit {
		w.store.Reset()
	}
	return result, nil
}

// Reset discards all collected state.
func (w *Wizard) Reset() {
	w.store.Reset()
}
