// internal/model/node.go
package model

import (
	"context"

	"github.com/vk/buildmodelgo/internal/modelpath"
	"github.com/vk/buildmodelgo/internal/modeltype"
)

// Node is a single addressable unit of the model graph. A node is either a
// data-holder (private data plus owned child links) or a reference that
// delegates every operation to the node at its target path, never both.
//
// Nodes are created through the owning Registry and are not safe for
// concurrent use; the whole graph belongs to one configuration pass.
type Node struct {
	registry *Registry
	path     modelpath.Path
	state    State

	// value and valueType form the existentially-typed data slot. The token
	// is fixed by the first write and every later access must be compatible.
	value     any
	valueType modeltype.Token

	// declaredType is the creator's declared production type, used to match
	// type-scoped rules before the node has been realized.
	declaredType modeltype.Token

	// links are owned children, unique by name, in insertion order.
	linkNames []string
	links     map[string]*Node

	// target, when set, makes this node a reference.
	target *modelpath.Path

	// implicit marks a container shell reserved as an intermediate path
	// segment; a later creator registration may adopt it.
	implicit bool
}

// Path returns the node's immutable identity.
func (n *Node) Path() modelpath.Path {
	return n.path
}

// State returns the node's current lifecycle state.
func (n *Node) State() State {
	return n.state
}

// IsMutable reports whether the node's state is before Finalized.
func (n *Node) IsMutable() bool {
	return n.state < Finalized
}

// IsReference reports whether this node delegates to another node.
func (n *Node) IsReference() bool {
	return n.target != nil
}

// resolve follows reference redirection until it reaches a data-holder,
// failing with CycleError on circular references and NoSuchNodeError when a
// target does not exist.
func (n *Node) resolve() (*Node, error) {
	cur := n
	var chain []modelpath.Path
	seen := make(map[string]bool)
	for cur.target != nil {
		chain = append(chain, cur.path)
		if seen[cur.path.String()] {
			return nil, &CycleError{Chain: chain}
		}
		seen[cur.path.String()] = true

		next, ok := n.registry.lookup(*cur.target)
		if !ok {
			return nil, &NoSuchNodeError{Path: *cur.target}
		}
		cur = next
	}
	return cur, nil
}

// TypeToken is the best known type of the node's value: the stored token
// once data exists, the creator's declared token before that.
func (n *Node) TypeToken() modeltype.Token {
	return n.typeToken()
}

func (n *Node) typeToken() modeltype.Token {
	if !n.valueType.IsZero() {
		return n.valueType
	}
	return n.declaredType
}

// AsWritable returns a writable view over the node's value for the given
// rule. It fails with IllegalMutation once the node is Finalized and with
// TypeMismatch when the requested type cannot project the stored data. When
// no data exists yet the view's first Set becomes the creation point.
func (n *Node) AsWritable(t modeltype.Token, descriptor string) (*View, error) {
	self, err := n.resolve()
	if err != nil {
		return nil, err
	}
	if !self.IsMutable() {
		return nil, &IllegalMutationError{Path: self.path, State: self.state, Descriptor: descriptor}
	}
	if !self.valueType.IsZero() && !t.IsZero() && !t.AssignableFrom(self.valueType) {
		return nil, &TypeMismatchError{Path: self.path, Stored: self.valueType, Requested: t}
	}
	return &View{node: self, typ: t, writable: true, descriptor: descriptor}, nil
}

// AsReadOnly returns an immutable view over the node's value, first driving
// the node through Mutated (the last mutating stage) so the value is usable.
func (n *Node) AsReadOnly(ctx context.Context, t modeltype.Token) (*View, error) {
	self, err := n.resolve()
	if err != nil {
		return nil, err
	}
	// A node being read from inside its own rule is as current as it can
	// get; realizing it again would be a false cycle.
	if !self.registry.realizing(self) {
		if err := self.registry.realize(ctx, self, Mutated); err != nil {
			return nil, err
		}
	}
	if !t.IsZero() && !self.valueType.IsZero() && !t.AssignableFrom(self.valueType) {
		return nil, &TypeMismatchError{Path: self.path, Stored: self.valueType, Requested: t}
	}
	return &View{node: self, typ: t, writable: false}, nil
}

// EnsureUsable drives the node through Created..Mutated eagerly, applying
// defaults even when no contributing rule supplied a value.
func (n *Node) EnsureUsable(ctx context.Context) error {
	self, err := n.resolve()
	if err != nil {
		return err
	}
	if self.registry.realizing(self) {
		return nil
	}
	return self.registry.realize(ctx, self, Mutated)
}

// AddLink registers a new owned child produced by the given creator, whose
// path must address a direct child of this node. The child starts in Known
// and is realized on demand. Fails with DuplicateChild if the name is taken;
// the existing child and its data are left untouched.
func (n *Node) AddLink(c Creator) (*Node, error) {
	self, err := n.resolve()
	if err != nil {
		return nil, err
	}
	if !self.IsMutable() {
		return nil, &IllegalMutationError{Path: self.path, State: self.state, Descriptor: c.Descriptor}
	}
	if !c.Path.IsDirectChildOf(self.path) {
		return nil, &NoSuchNodeError{Path: c.Path}
	}
	return self.registry.link(self, c)
}

// AddReference registers a new child that is a symbolic alias: every
// operation on it resolves to the node at the target path instead of holding
// its own data. Fails with DuplicateChild if the name is taken.
func (n *Node) AddReference(name string, target modelpath.Path) (*Node, error) {
	self, err := n.resolve()
	if err != nil {
		return nil, err
	}
	if !self.IsMutable() {
		return nil, &IllegalMutationError{Path: self.path, State: self.state, Descriptor: "addReference"}
	}
	childPath, err := self.path.Child(name)
	if err != nil {
		return nil, err
	}
	return self.registry.linkReference(self, childPath, target)
}

// RemoveLink detaches and discards the named child subtree. Fails with
// NoSuchNode when no such child exists.
func (n *Node) RemoveLink(name string) error {
	self, err := n.resolve()
	if err != nil {
		return err
	}
	child, ok := self.links[name]
	if !ok {
		missing, pathErr := self.path.Child(name)
		if pathErr != nil {
			return pathErr
		}
		return &NoSuchNodeError{Path: missing}
	}
	delete(self.links, name)
	for i, linkName := range self.linkNames {
		if linkName == name {
			self.linkNames = append(self.linkNames[:i], self.linkNames[i+1:]...)
			break
		}
	}
	self.registry.unregisterSubtree(child)
	return nil
}

// ApplyToSelf registers a rule whose subject is this node, at the rule's
// role. The rule's subject selector is replaced.
func (n *Node) ApplyToSelf(rule Rule) error {
	self, err := n.resolve()
	if err != nil {
		return err
	}
	if rule.Subject.hasTyp {
		rule.Subject = ByPathAs(self.path, rule.Subject.typ)
	} else {
		rule.Subject = ByPath(self.path)
	}
	return self.registry.RegisterRule(rule)
}

// ApplyToAllLinks registers a rule against every existing and future child
// of this node whose value type is assignable to t.
func (n *Node) ApplyToAllLinks(t modeltype.Token, rule Rule) error {
	self, err := n.resolve()
	if err != nil {
		return err
	}
	rule.Subject = ByType(self.path, t)
	return self.registry.RegisterRule(rule)
}

// ApplyToLink registers a rule against the named child.
func (n *Node) ApplyToLink(name string, rule Rule) error {
	self, err := n.resolve()
	if err != nil {
		return err
	}
	child, ok := self.links[name]
	if !ok {
		missing, pathErr := self.path.Child(name)
		if pathErr != nil {
			return pathErr
		}
		return &NoSuchNodeError{Path: missing}
	}
	if rule.Subject.hasTyp {
		rule.Subject = ByPathAs(child.path, rule.Subject.typ)
	} else {
		rule.Subject = ByPath(child.path)
	}
	return self.registry.RegisterRule(rule)
}

// Link returns the named child, if any.
func (n *Node) Link(name string) (*Node, bool) {
	self, err := n.resolve()
	if err != nil {
		return nil, false
	}
	child, ok := self.links[name]
	return child, ok
}

// HasLink reports whether a child with the given name exists.
func (n *Node) HasLink(name string) bool {
	_, ok := n.Link(name)
	return ok
}

// HasLinkOfType reports whether a child with the given name exists and its
// value type is assignable to t.
func (n *Node) HasLinkOfType(name string, t modeltype.Token) bool {
	child, ok := n.Link(name)
	if !ok {
		return false
	}
	return t.AssignableFrom(child.typeToken())
}

// Links returns the children whose value type is assignable to t, in
// insertion order. A zero token matches every child.
func (n *Node) Links(t modeltype.Token) []*Node {
	self, err := n.resolve()
	if err != nil {
		return nil
	}
	var out []*Node
	for _, name := range self.linkNames {
		child := self.links[name]
		if t.IsZero() || t.AssignableFrom(child.typeToken()) {
			out = append(out, child)
		}
	}
	return out
}

// LinkNames returns the names of the children matching t, in insertion order.
func (n *Node) LinkNames(t modeltype.Token) []string {
	var names []string
	for _, child := range n.Links(t) {
		names = append(names, child.path.Name())
	}
	return names
}

// LinkCount returns the number of children matching t.
func (n *Node) LinkCount(t modeltype.Token) int {
	return len(n.Links(t))
}

// SetPrivateData stores the node's value. The first write fixes the node's
// type token; later writes must stay compatible with it. Fails with
// IllegalMutation once the node is Finalized.
func (n *Node) SetPrivateData(t modeltype.Token, value any) error {
	self, err := n.resolve()
	if err != nil {
		return err
	}
	if !self.IsMutable() {
		return &IllegalMutationError{Path: self.path, State: self.state}
	}
	if t.IsZero() {
		t = modeltype.FromValue(value)
	}
	if !t.Describes(value) {
		return &TypeMismatchError{Path: self.path, Stored: t, Requested: modeltype.FromValue(value)}
	}
	if !self.valueType.IsZero() && !self.valueType.AssignableFrom(t) {
		return &TypeMismatchError{Path: self.path, Stored: self.valueType, Requested: t}
	}
	if self.valueType.IsZero() {
		self.valueType = t
	}
	self.value = value
	return nil
}

// PrivateData returns the stored value, checked against the requested type.
// Fails with TypeMismatch when no compatible value is stored.
func (n *Node) PrivateData(t modeltype.Token) (any, error) {
	self, err := n.resolve()
	if err != nil {
		return nil, err
	}
	if self.value == nil {
		return nil, &TypeMismatchError{Path: self.path, Stored: self.valueType, Requested: t}
	}
	if !t.IsZero() && !t.AssignableFrom(self.valueType) {
		return nil, &TypeMismatchError{Path: self.path, Stored: self.valueType, Requested: t}
	}
	return self.value, nil
}
