// internal/model/registry.go
package model

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/buildmodelgo/internal/ctxlog"
	"github.com/vk/buildmodelgo/internal/modelpath"
)

// Registry owns one model graph for one configuration pass: the root node,
// the creator and rule indices, and the realization engine. It is not a
// process-wide singleton; independent graphs are independent registries.
//
// The registry is single-threaded by contract. Realization is recursive
// sampling: resolving a rule's inputs realizes them first as ordinary nested
// calls, and the realization stack doubles as the cycle detector.
type Registry struct {
	root     *Node
	nodes    map[string]*Node
	creators map[string]*Creator

	// bindings holds resolved rules per node per role, ordered by
	// registration sequence.
	bindings map[string]map[Role][]*binding

	// scoped indexes type-scoped rules by scope path. The index is
	// re-evaluated whenever a new child is linked under a matching scope,
	// which is how a rule registered before a child exists still applies to
	// it later.
	scoped map[string][]*binding

	nextSeq int

	// stack is the chain of nodes currently being realized.
	stack    []modelpath.Path
	stackSet map[string]bool
}

// New creates an empty registry with a realized root container node.
func New() *Registry {
	r := &Registry{
		nodes:    make(map[string]*Node),
		creators: make(map[string]*Creator),
		bindings: make(map[string]map[Role][]*binding),
		scoped:   make(map[string][]*binding),
		stackSet: make(map[string]bool),
	}
	r.root = &Node{registry: r, path: modelpath.Root(), links: make(map[string]*Node)}
	r.nodes[r.root.path.String()] = r.root
	return r
}

// Root returns the graph's root node.
func (r *Registry) Root() *Node {
	return r.root
}

// Node returns the node at the given path. It fails with NoSuchNode when the
// path is unaddressable, i.e. no creator or link ever reserved it.
func (r *Registry) Node(p modelpath.Path) (*Node, error) {
	n, ok := r.lookup(p)
	if !ok {
		return nil, &NoSuchNodeError{Path: p}
	}
	return n, nil
}

func (r *Registry) lookup(p modelpath.Path) (*Node, bool) {
	n, ok := r.nodes[p.String()]
	return n, ok
}

// RegisterCreator reserves the node at the creator's path (state Known) and
// records the creator to run when the node first advances to Created.
// Intermediate path segments are reserved as container nodes. Fails with
// DuplicateCreator when the path already has one.
func (r *Registry) RegisterCreator(c Creator) (*Node, error) {
	if c.Path.IsRoot() {
		return nil, &DuplicateCreatorError{Path: c.Path}
	}
	parentPath, _ := c.Path.Parent()
	parent, err := r.container(parentPath)
	if err != nil {
		return nil, err
	}
	return r.link(parent, c)
}

// container walks down from the root, reserving implicit container shells
// for any missing intermediate segment.
func (r *Registry) container(p modelpath.Path) (*Node, error) {
	cur := r.root
	walked := modelpath.Root()
	for _, segment := range p.Segments() {
		walked = walked.MustChild(segment)
		next, ok := cur.links[segment]
		if !ok {
			next = &Node{registry: r, path: walked, links: make(map[string]*Node), implicit: true}
			cur.links[segment] = next
			cur.linkNames = append(cur.linkNames, segment)
			r.nodes[walked.String()] = next
		}
		if next.IsReference() {
			resolved, err := next.resolve()
			if err != nil {
				return nil, err
			}
			next = resolved
		}
		cur = next
	}
	return cur, nil
}

// link attaches the creator's node as a child of parent. An implicit
// container shell at the same path is adopted by the creator; a child that
// was explicitly registered before fails with DuplicateChild.
func (r *Registry) link(parent *Node, c Creator) (*Node, error) {
	name := c.Path.Name()
	key := c.Path.String()

	if existing, ok := parent.links[name]; ok {
		if !existing.implicit || r.creators[key] != nil {
			return nil, &DuplicateChildError{Parent: parent.path, Name: name}
		}
		if existing.state > Known {
			return nil, &IllegalMutationError{Path: existing.path, State: existing.state, Descriptor: c.Descriptor}
		}
		// Adopt the implicit shell: it now has a declared type and a creator.
		existing.implicit = false
		existing.declaredType = c.Type
		if c.Create != nil {
			r.creators[key] = &c
		}
		slog.Debug("Creator adopted implicit node.", "path", key, "type", c.Type.String())
		r.matchScopedRules(parent, existing)
		return existing, nil
	}

	child := &Node{
		registry:     r,
		path:         c.Path,
		links:        make(map[string]*Node),
		declaredType: c.Type,
	}
	parent.links[name] = child
	parent.linkNames = append(parent.linkNames, name)
	r.nodes[key] = child
	if c.Create != nil {
		r.creators[key] = &c
	}
	slog.Debug("Node reserved.", "path", key, "type", c.Type.String(), "by", c.Descriptor)

	r.matchScopedRules(parent, child)
	return child, nil
}

// linkReference attaches a reference child delegating to the target path.
func (r *Registry) linkReference(parent *Node, childPath, target modelpath.Path) (*Node, error) {
	name := childPath.Name()
	if _, ok := parent.links[name]; ok {
		return nil, &DuplicateChildError{Parent: parent.path, Name: name}
	}
	child := &Node{
		registry: r,
		path:     childPath,
		links:    make(map[string]*Node),
		target:   &target,
	}
	parent.links[name] = child
	parent.linkNames = append(parent.linkNames, name)
	r.nodes[childPath.String()] = child
	slog.Debug("Reference node added.", "path", childPath.String(), "target", target.String())
	return child, nil
}

// unregisterSubtree drops a detached child and everything below it from the
// global indices.
func (r *Registry) unregisterSubtree(n *Node) {
	key := n.path.String()
	delete(r.nodes, key)
	delete(r.creators, key)
	delete(r.bindings, key)
	delete(r.scoped, key)
	for _, name := range n.linkNames {
		r.unregisterSubtree(n.links[name])
	}
}

// RegisterRule resolves the rule's subject selector and queues the rule at
// its role. Exact-path subjects must be addressable now; type-scoped
// subjects bind to every matching existing child and are indexed so children
// linked later under the scope are matched retroactively.
func (r *Registry) RegisterRule(rule Rule) error {
	b := &binding{rule: &rule, seq: r.nextSeq}
	r.nextSeq++

	if rule.Subject.IsScoped() {
		scopeKey := rule.Subject.scope.String()
		r.scoped[scopeKey] = append(r.scoped[scopeKey], b)
		slog.Debug("Scoped rule registered.", "scope", scopeKey, "type", rule.Subject.typ.String(), "role", rule.Role.String(), "rule", rule.Descriptor)

		if scope, ok := r.lookup(*rule.Subject.scope); ok {
			for _, name := range scope.linkNames {
				child := scope.links[name]
				if child.IsReference() {
					continue
				}
				if rule.Subject.typ.AssignableFrom(child.typeToken()) {
					if err := r.bind(child, b); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}

	if rule.Subject.path == nil {
		return fmt.Errorf("rule %q has no subject selector", rule.Descriptor)
	}
	subject, ok := r.lookup(*rule.Subject.path)
	if !ok {
		return &NoSuchNodeError{Path: *rule.Subject.path}
	}
	resolved, err := subject.resolve()
	if err != nil {
		return err
	}
	slog.Debug("Rule registered.", "subject", resolved.path.String(), "role", rule.Role.String(), "rule", rule.Descriptor)
	return r.bind(resolved, b)
}

// matchScopedRules applies the scoped-rule index of the parent scope to a
// freshly linked child. This is the retroactive half of type-scoped
// matching.
func (r *Registry) matchScopedRules(parent, child *Node) {
	for _, b := range r.scoped[parent.path.String()] {
		if b.rule.Subject.typ.AssignableFrom(child.typeToken()) {
			// A fresh child is always in Known, so binding cannot fail.
			_ = r.bind(child, b)
		}
	}
}

// bind attaches a binding to a concrete subject node. A rule bound to a role
// the node has already passed can never run and fails with IllegalMutation.
func (r *Registry) bind(n *Node, b *binding) error {
	if target, ok := b.rule.Role.TargetState(); ok && n.state >= target {
		return &IllegalMutationError{Path: n.path, State: n.state, Descriptor: b.rule.Descriptor}
	}
	key := n.path.String()
	if r.bindings[key] == nil {
		r.bindings[key] = make(map[Role][]*binding)
	}
	r.bindings[key][b.rule.Role] = append(r.bindings[key][b.rule.Role], b)
	return nil
}

// realizing reports whether the node is on the current realization stack.
func (r *Registry) realizing(n *Node) bool {
	return r.stackSet[n.path.String()]
}

// Realize drives the node at the given path up to the requested state and
// returns it.
func (r *Registry) Realize(ctx context.Context, p modelpath.Path, upTo State) (*Node, error) {
	n, err := r.Node(p)
	if err != nil {
		return nil, err
	}
	self, err := n.resolve()
	if err != nil {
		return nil, err
	}
	if err := r.realize(ctx, self, upTo); err != nil {
		return nil, err
	}
	return self, nil
}

// realize advances a node state by state until it reaches target, running
// each transition's bindings exactly once, in registration order. Re-entrant
// calls for a node already on the realization stack fail with the full chain
// of paths.
func (r *Registry) realize(ctx context.Context, n *Node, target State) error {
	if target > Finalized {
		target = Finalized
	}
	if n.state >= target {
		return nil
	}

	key := n.path.String()
	if r.stackSet[key] {
		chain := make([]modelpath.Path, len(r.stack), len(r.stack)+1)
		copy(chain, r.stack)
		return &CycleError{Chain: append(chain, n.path)}
	}
	r.stack = append(r.stack, n.path)
	r.stackSet[key] = true
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		delete(r.stackSet, key)
	}()

	logger := ctxlog.FromContext(ctx)
	for n.state < target {
		next := n.state + 1
		role, ok := roleForTransition(next)
		if !ok {
			return fmt.Errorf("no role drives state %s", next)
		}
		logger.Debug("Advancing node.", "path", key, "to", next.String(), "role", role.String())

		if next == Created {
			if creator := r.creators[key]; creator != nil {
				if err := creator.Create(ctx, n); err != nil {
					return fmt.Errorf("creator %s at %s: %w", creator.Descriptor, n.path, err)
				}
			}
		}

		// Snapshot: a rule body may register further rules, but never for a
		// transition that is already underway.
		queue := append([]*binding(nil), r.bindings[key][role]...)
		for _, b := range queue {
			if err := r.run(ctx, n, b); err != nil {
				return err
			}
		}
		n.state = next
	}
	return nil
}

// run resolves one binding's inputs depth-first and invokes its body. Inputs
// are realized through Finalized, including their link subtrees, before the
// rule sees them; this is what makes inputs current relative to the rule's
// own role.
func (r *Registry) run(ctx context.Context, subject *Node, b *binding) error {
	inputs := make([]*View, len(b.rule.Inputs))
	for i, in := range b.rule.Inputs {
		node, err := r.Node(in.Path)
		if err != nil {
			return fmt.Errorf("input %d of rule %s: %w", i, b.rule.Descriptor, err)
		}
		resolved, err := node.resolve()
		if err != nil {
			return err
		}
		if err := r.realizeGraph(ctx, resolved); err != nil {
			return err
		}
		if !in.Type.IsZero() && !resolved.valueType.IsZero() && !in.Type.AssignableFrom(resolved.valueType) {
			return &TypeMismatchError{Path: resolved.path, Stored: resolved.valueType, Requested: in.Type}
		}
		inputs[i] = &View{node: resolved, typ: in.Type, writable: false}
	}

	view := &View{
		node:       subject,
		typ:        b.rule.Subject.typ,
		writable:   b.rule.Role.Mutates(),
		descriptor: b.rule.Descriptor,
	}
	if view.writable && !subject.valueType.IsZero() && !view.typ.IsZero() && !view.typ.AssignableFrom(subject.valueType) {
		return &TypeMismatchError{Path: subject.path, Stored: subject.valueType, Requested: view.typ}
	}

	if err := b.rule.Do(ctx, view, inputs); err != nil {
		return fmt.Errorf("rule %s at %s (%s): %w", b.rule.Descriptor, subject.path, b.rule.Role, err)
	}
	return nil
}

// realizeGraph realizes a node through Finalized together with its whole
// link subtree, so container inputs expose usable children.
func (r *Registry) realizeGraph(ctx context.Context, n *Node) error {
	if err := r.realize(ctx, n, Finalized); err != nil {
		return err
	}
	for _, name := range n.linkNames {
		child, err := n.links[name].resolve()
		if err != nil {
			return err
		}
		if err := r.realizeGraph(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

// RealizeAll drives the whole graph through Finalized, depth-first from the
// root. Used once registration is complete to force a full configuration
// pass.
func (r *Registry) RealizeAll(ctx context.Context) error {
	return r.realizeGraph(ctx, r.root)
}

// ValidateAll realizes every node that has Validate rules and runs those
// rules, aggregating failures instead of stopping at the first, so one pass
// reports every configuration problem. Structural failures (cycles, type
// mismatches, missing nodes) abort and are returned as err.
func (r *Registry) ValidateAll(ctx context.Context) ([]*ValidationError, error) {
	var keys []string
	for key, byRole := range r.bindings {
		if len(byRole[RoleValidate]) > 0 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var failures []*ValidationError
	for _, key := range keys {
		n := r.nodes[key]
		if n == nil {
			continue
		}
		if err := r.realizeGraph(ctx, n); err != nil {
			return failures, err
		}
		for _, b := range r.bindings[key][RoleValidate] {
			if err := r.run(ctx, n, b); err != nil {
				failures = append(failures, &ValidationError{Path: n.path, Err: err})
			}
		}
	}
	return failures, nil
}
