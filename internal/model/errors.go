// internal/model/errors.go
package model

import (
	"fmt"
	"strings"

	"github.com/vk/buildmodelgo/internal/modelpath"
	"github.com/vk/buildmodelgo/internal/modeltype"
)

// NoSuchNodeError reports an unaddressable path: no node exists there and no
// creator is registered to produce one.
type NoSuchNodeError struct {
	Path modelpath.Path
}

func (e *NoSuchNodeError) Error() string {
	return fmt.Sprintf("no such node: %s (no creator registered)", e.Path)
}

// DuplicateChildError reports an AddLink or AddReference whose child name is
// already taken. The existing child is left untouched.
type DuplicateChildError struct {
	Parent modelpath.Path
	Name   string
}

func (e *DuplicateChildError) Error() string {
	return fmt.Sprintf("duplicate child %q under %s", e.Name, e.Parent)
}

// DuplicateCreatorError reports a second creator registered for the same path.
type DuplicateCreatorError struct {
	Path modelpath.Path
}

func (e *DuplicateCreatorError) Error() string {
	return fmt.Sprintf("creator already registered for %s", e.Path)
}

// TypeMismatchError reports a view or input requested with a type that is
// incompatible with the node's stored data. Both types are named.
type TypeMismatchError struct {
	Path      modelpath.Path
	Stored    modeltype.Token
	Requested modeltype.Token
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch at %s: stored %s, requested %s", e.Path, e.Stored, e.Requested)
}

// IllegalMutationError reports a write attempt against a node that can no
// longer accept one: a writable view on a Finalized node, or a rule bound to
// a role the node has already passed.
type IllegalMutationError struct {
	Path       modelpath.Path
	State      State
	Descriptor string
}

func (e *IllegalMutationError) Error() string {
	if e.Descriptor != "" {
		return fmt.Sprintf("illegal mutation of %s (state %s) by %s", e.Path, e.State, e.Descriptor)
	}
	return fmt.Sprintf("illegal mutation of %s (state %s)", e.Path, e.State)
}

// CycleError reports that realization revisited a node already being
// realized. Chain holds the ordered paths from the outermost request to the
// repeated node.
type CycleError struct {
	Chain []modelpath.Path
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, p := range e.Chain {
		parts[i] = p.String()
	}
	return fmt.Sprintf("realization cycle detected: %s", strings.Join(parts, " -> "))
}

// ValidationError reports one Validate-rule failure at one node. Validation
// errors are collected across the whole pass rather than failing fast.
type ValidationError struct {
	Path modelpath.Path
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation of %s failed: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
