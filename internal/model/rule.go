// internal/model/rule.go
package model

import (
	"context"
	"fmt"

	"github.com/vk/buildmodelgo/internal/modelpath"
	"github.com/vk/buildmodelgo/internal/modeltype"
)

// Creator is a factory registered at a path. Registering a creator reserves
// the node (state Known); the Create function runs exactly once, when the
// node first advances to Created, and populates its private data.
type Creator struct {
	// Path addresses the node this creator produces.
	Path modelpath.Path
	// Descriptor names the registration site for diagnostics.
	Descriptor string
	// Type declares the type of the produced value. It is what type-scoped
	// selectors match against before the node has been realized. A zero token
	// declares a bare container node.
	Type modeltype.Token
	// Create populates the node. A nil Create leaves the node as a container
	// that only carries links.
	Create func(ctx context.Context, node *Node) error
}

// Input declares one rule input: the path of the node whose value the rule
// reads and the type it expects to read it as. The input node is fully
// realized before the rule body runs.
type Input struct {
	Path modelpath.Path
	Type modeltype.Token
}

// Action is a rule body. It receives a view of the subject, writable for
// mutating roles and read-only for Validate, plus one realized read-only
// view per declared input, in declaration order.
type Action func(ctx context.Context, subject *View, inputs []*View) error

// Selector picks the subject node(s) of a rule: either one exact path, or
// every current and future direct child of Scope whose declared or stored
// value type is assignable to Type.
type Selector struct {
	path   *modelpath.Path
	scope  *modelpath.Path
	typ    modeltype.Token
	hasTyp bool
}

// ByPath selects exactly the node at the given path.
func ByPath(p modelpath.Path) Selector {
	return Selector{path: &p}
}

// ByPathAs selects the node at the given path and types the subject view.
func ByPathAs(p modelpath.Path, t modeltype.Token) Selector {
	return Selector{path: &p, typ: t, hasTyp: true}
}

// ByType selects each current and future child of scope whose value is
// assignable to t.
func ByType(scope modelpath.Path, t modeltype.Token) Selector {
	return Selector{scope: &scope, typ: t, hasTyp: true}
}

// IsScoped reports whether the selector matches by (scope, type) rather than
// by exact path.
func (s Selector) IsScoped() bool {
	return s.scope != nil
}

// Type returns the subject type the selector declares, which may be zero for
// plain path selectors.
func (s Selector) Type() modeltype.Token {
	return s.typ
}

// String renders the selector for diagnostics.
func (s Selector) String() string {
	if s.IsScoped() {
		return fmt.Sprintf("each %s under %s", s.typ, s.scope)
	}
	if s.path == nil {
		return "<unbound>"
	}
	if s.hasTyp {
		return fmt.Sprintf("%s as %s", s.path, s.typ)
	}
	return s.path.String()
}

// Rule pairs a subject selector with a role, declared inputs, and a body.
type Rule struct {
	Subject    Selector
	Role       Role
	Inputs     []Input
	Descriptor string
	Do         Action
}

// binding is a rule resolved against one concrete subject node. The sequence
// number is the global registration order and serves as the within-role
// tie-break, which must be preserved exactly for reproducible configuration.
type binding struct {
	rule *Rule
	seq  int
}
