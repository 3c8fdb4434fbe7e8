// internal/model/view.go
package model

import (
	"github.com/vk/buildmodelgo/internal/modelpath"
	"github.com/vk/buildmodelgo/internal/modeltype"
)

// View is an ephemeral, typed handle over a node's data, scoped to one rule
// invocation or caller query. A view is never persisted on the node; it
// enforces the single-writer discipline for the duration of the rule that
// requested it.
type View struct {
	node       *Node
	typ        modeltype.Token
	writable   bool
	descriptor string
}

// Path returns the path of the viewed node.
func (v *View) Path() modelpath.Path {
	return v.node.path
}

// Type returns the type the view was requested with, which may be zero for
// untyped container access.
func (v *View) Type() modeltype.Token {
	return v.typ
}

// IsWritable reports whether Set is permitted through this view.
func (v *View) IsWritable() bool {
	return v.writable
}

// Node exposes the underlying node for structural operations (adding links,
// registering nested rules). Mutating structure through a read-only view of
// a Finalized node still fails at the node layer.
func (v *View) Node() *Node {
	return v.node
}

// Get returns the node's value, checked against the view's type. It fails
// with TypeMismatch when no compatible value is stored.
func (v *View) Get() (any, error) {
	return v.node.PrivateData(v.typ)
}

// Set replaces the node's value. On a node without data this is the creation
// point: the view's type becomes the node's stored type token. Fails with
// IllegalMutation through a read-only view or on a Finalized node.
func (v *View) Set(value any) error {
	if !v.writable {
		return &IllegalMutationError{Path: v.node.path, State: v.node.state, Descriptor: v.descriptor}
	}
	return v.node.SetPrivateData(v.typ, value)
}

// ValueOf projects a view's value to a concrete type. It is the only
// downcast in the system and is guarded by the same token check as Get.
func ValueOf[T any](v *View) (T, error) {
	var zero T
	requested := modeltype.Of[T]()
	raw, err := v.node.PrivateData(requested)
	if err != nil {
		return zero, err
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, &TypeMismatchError{Path: v.node.path, Stored: v.node.valueType, Requested: requested}
	}
	return typed, nil
}
