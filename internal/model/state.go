// internal/model/state.go
package model

// State is a node's position in its lifecycle. States are strictly ordered
// and a node's state only ever advances.
type State int

const (
	// Known means the path is reserved but no data exists yet.
	Known State = iota
	// Created means the node's creator has run and private data is populated.
	Created
	// DefaultsApplied means all Defaults-role rules have run.
	DefaultsApplied
	// Initialized means all Initialize-role rules have run.
	Initialized
	// Mutated means all Mutate-role rules have run. This is the last state a
	// read-only consumer needs; EnsureUsable drives a node here.
	Mutated
	// Finalized is terminal: the node is immutable and no further role may run.
	Finalized
)

// String returns the human-readable state name used in diagnostics.
func (s State) String() string {
	switch s {
	case Known:
		return "Known"
	case Created:
		return "Created"
	case DefaultsApplied:
		return "DefaultsApplied"
	case Initialized:
		return "Initialized"
	case Mutated:
		return "Mutated"
	case Finalized:
		return "Finalized"
	default:
		return "Unknown"
	}
}

// Role identifies the stage at which a rule runs. Roles form a fixed total
// order; within one role at one node, rules run in registration order.
type Role int

const (
	// RoleCreate rules run alongside the node's creator to reach Created.
	RoleCreate Role = iota
	// RoleDefaults rules supply conventional values before user configuration.
	RoleDefaults
	// RoleInitialize rules run after defaults, before general mutation.
	RoleInitialize
	// RoleMutate rules carry the bulk of user and plugin configuration.
	RoleMutate
	// RoleFinalize rules run last and seal the node.
	RoleFinalize
	// RoleValidate rules run after Finalized, never mutate, and only report
	// problems. Their failures are aggregated rather than failing fast.
	RoleValidate
)

// String returns the role name used in diagnostics and logs.
func (r Role) String() string {
	switch r {
	case RoleCreate:
		return "Create"
	case RoleDefaults:
		return "Defaults"
	case RoleInitialize:
		return "Initialize"
	case RoleMutate:
		return "Mutate"
	case RoleFinalize:
		return "Finalize"
	case RoleValidate:
		return "Validate"
	default:
		return "Unknown"
	}
}

// Mutates reports whether rules in this role may write to their subject.
func (r Role) Mutates() bool {
	return r != RoleValidate
}

// TargetState returns the state a node reaches once every binding of this
// role has run. Validate has no target state; ok is false for it.
func (r Role) TargetState() (State, bool) {
	switch r {
	case RoleCreate:
		return Created, true
	case RoleDefaults:
		return DefaultsApplied, true
	case RoleInitialize:
		return Initialized, true
	case RoleMutate:
		return Mutated, true
	case RoleFinalize:
		return Finalized, true
	default:
		return 0, false
	}
}

// roleForTransition returns the role whose bindings drive a node into the
// given state.
func roleForTransition(next State) (Role, bool) {
	switch next {
	case Created:
		return RoleCreate, true
	case DefaultsApplied:
		return RoleDefaults, true
	case Initialized:
		return RoleInitialize, true
	case Mutated:
		return RoleMutate, true
	case Finalized:
		return RoleFinalize, true
	default:
		return 0, false
	}
}
