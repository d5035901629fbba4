package core

import (
	"errors"
	"fmt"
)

// ReferenceNotFoundError is returned during schema resolution when a $ref
// points at a name that is not present in the reference map.
type ReferenceNotFoundError struct {
	Ref string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("reference '%s' not found in reference map", e.Ref)
}

// CircularReferenceError is returned when reference resolution exceeds the
// bounded recursion depth, which indicates a self-referencing schema chain.
type CircularReferenceError struct {
	Depth int
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference detected in schema resolution (depth %d exceeded)", e.Depth)
}

// InvalidSchemaInputError is returned when a schema is constructed from a
// value that is none of the supported shapes (spec mapping, Go struct, raw JSON).
type InvalidSchemaInputError struct {
	Type string
}

func (e *InvalidSchemaInputError) Error() string {
	return fmt.Sprintf("schema input must be a spec mapping, struct, or raw JSON, got %s", e.Type)
}

// UnsupportedInputKindError is returned by the render engine when a schema
// shape has no classification-to-rendering mapping. It is fatal for the
// current walk and is raised only after a user-visible warning was surfaced.
type UnsupportedInputKindError struct {
	Property string
	Kind     string
}

func (e *UnsupportedInputKindError) Error() string {
	return fmt.Sprintf("input kind '%s' is not supported for property '%s'", e.Kind, e.Property)
}

// ValidationError reports a per-field problem (pattern mismatch, duplicate
// set members, malformed free-form input). It never aborts a walk: the engine
// surfaces it next to the offending field and keeps the entered value.
type ValidationError struct {
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for '%s': %s", e.Key, e.Message)
}

func IsReferenceNotFoundErr(err error) bool {
	var refErr *ReferenceNotFoundError
	return errors.As(err, &refErr)
}

func IsCircularReferenceErr(err error) bool {
	var circErr *CircularReferenceError
	return errors.As(err, &circErr)
}

func IsInvalidSchemaInputErr(err error) bool {
	var inputErr *InvalidSchemaInputError
	return errors.As(err, &inputErr)
}

func IsUnsupportedInputKindErr(err error) bool {
	var kindErr *UnsupportedInputKindError
	return errors.As(err, &kindErr)
}

func IsValidationErr(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsSchemaErr reports whether err belongs to the schema error taxonomy,
// i.e. it was raised during schema normalization or resolution and no
// rendering has started yet.
func IsSchemaErr(err error) bool {
	return IsReferenceNotFoundErr(err) || IsCircularReferenceErr(err) || IsInvalidSchemaInputErr(err)
}
