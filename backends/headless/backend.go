// Package headless provides a non-interactive wizard backend driven by
// pre-scripted answers. It serves automated configuration runs and tests:
// every prompt resolves to the scripted value for its key, falling back to
// the prompt's default.
package headless

import (
	"go.uber.org/zap"

	wizard "github.com/vast-data/go-settings-wizard"
	"github.com/vast-data/go-settings-wizard/settings_schema"
)

// Message is one warning or error surfaced during a walk.
type Message struct {
	Key     string
	Message string
}

// Backend answers prompts from a scripted value map.
type Backend struct {
	wizard.StateBackend

	log *zap.Logger

	answers    map[string]any
	regionKeys map[string][]string

	warnings []Message
	errors   []Message
}

// New creates a headless backend. A nil logger disables logging.
func New(log *zap.Logger) *Backend {
	if log == nil {
		log = zap.NewNop()
	}
	return &Backend{
		log:        log,
		answers:    make(map[string]any),
		regionKeys: make(map[string][]string),
	}
}

// Answer scripts the value returned for a prompt key.
func (b *Backend) Answer(key string, value any) *Backend {
	b.answers[key] = value
	return b
}

// RegionKeys scripts the dynamic keys of an additional-properties region or
// dictionary.
func (b *Backend) RegionKeys(regionKey string, keys ...string) *Backend {
	b.regionKeys[regionKey] = keys
	return b
}

// RenderProperty answers with the scripted value for the key, else the
// prompt's default.
func (b *Backend) RenderProperty(req *wizard.PromptRequest) (any, error) {
	if value, ok := b.answers[req.Key]; ok {
		b.log.Debug("scripted answer", zap.String("key", req.Key))
		return value, nil
	}
	return req.Default, nil
}

// RenderAdditionalProperties returns the scripted key set for the region,
// else the keys already present.
func (b *Backend) RenderAdditionalProperties(key string, schema settings_schema.ResolvedSchema, existing []string) ([]string, error) {
	if keys, ok := b.regionKeys[key]; ok {
		return keys, nil
	}
	return existing, nil
}

// RenderWizard is a no-op for headless runs.
func (b *Backend) RenderWizard(title string) error {
	b.log.Info("wizard walk", zap.String("title", title))
	return nil
}

func (b *Backend) Warning(key, message string) {
	b.log.Warn(message, zap.String("key", key))
	b.warnings = append(b.warnings, Message{Key: key, Message: message})
}

func (b *Backend) Error(key, message string) {
	b.log.Error(message, zap.String("key", key))
	b.errors = append(b.errors, Message{Key: key, Message: message})
}

// Warnings returns the non-blocking messages collected so far.
func (b *Backend) Warnings() []Message {
	return b.warnings
}

// Errors returns the fatal messages collected so far.
func (b *Backend) Errors() []Message {
	return b.errors
}
