package settings_wizard

import (
	"github.com/vast-data/go-settings-wizard/core"
	"github.com/vast-data/go-settings-wizard/settings_schema"
)

// Backend is the capability set a rendering layer must provide. The engine
// holds only this interface: it decides WHAT to collect and in which order,
// the backend decides HOW a prompt looks and talks to the user.
//
// InitState hands the backend the wizard's state store before the first walk.
// StoreValue/GetValue go through the backend so it can observe every state
// mutation (e.g. to refresh widgets); the stock StateBackend simply forwards
// to the store.
type Backend interface {
	InitState(store *core.Store)
	StoreValue(key string, value any)
	GetValue(key string) (any, bool)

	// RenderProperty collects one scalar value for the request. The returned
	// value is stored as-is; returning the request's Default unchanged is the
	// "no edit" path.
	RenderProperty(req *PromptRequest) (any, error)

	// RenderAdditionalProperties presents the dynamic-key region of an
	// object or dict. It receives the keys currently present in state and
	// returns the keys the region should hold after the interaction (the
	// backend may add, remove, or rename entries).
	RenderAdditionalProperties(key string, schema settings_schema.ResolvedSchema, existing []string) ([]string, error)

	// RenderWizard draws the outer container before a walk starts.
	RenderWizard(title string) error

	// Warning surfaces a non-blocking message next to a field; Error surfaces
	// a fatal one. Neither interrupts control flow by itself.
	Warning(key, message string)
	Error(key, message string)
}

// StateBackend is the stock state plumbing for backends: embed it and
// implement only the Render* and messaging methods.
type StateBackend struct {
	store *core.Store
}

func (b *StateBackend) InitState(store *core.Store) {
	b.store = store
}

func (b *StateBackend) StoreValue(key string, value any) {
	if b.store != nil {
		b.store.Set(key, value)
	}
}

func (b *StateBackend) GetValue(key string) (any, bool) {
	if b.store == nil {
		return nil, false
	}
	return b.store.Get(key)
}

// Store exposes the underlying state store, e.g. for snapshots.
func (b *StateBackend) Store() *core.Store {
	return b.store
}
