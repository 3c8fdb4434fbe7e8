// internal/model/doc.go

/*
Package model implements the configuration-time model graph: a lazily
realized, strongly typed, path-addressed graph of mutable nodes whose values
are produced and refined by ordered rules before any build action executes.

# Core Concepts

The engine is built around a few key structures:

  - Node: the addressable, mutable unit of the graph. A node holds private
    data tagged with its type token, an ordered set of owned child links, and
    optionally a reference redirecting all operations to another node.

  - Creator: a factory registered at a path, run exactly once to produce the
    node's initial value when the node first advances to Created.

  - Rule: a mutation (or, for Validate, inspection) bound to a subject node
    either by exact path or by a (scope, type) selector that also matches
    children linked under the scope later. Rules declare their inputs as
    (path, type) references; inputs are fully realized before the rule runs.

  - Registry: owns the root node and all indices, and drives realization:
    advancing a node state by state, applying each role's bindings in
    registration order, resolving inputs depth-first, and detecting cycles
    with the full chain of paths.

  - View: an ephemeral, typed, read-only or writable handle over a node's
    data, handed to rules and queries. Every access is validated against the
    node's stored type token; there is never an unchecked cast.

# Lifecycle

A node advances monotonically through Known, Created, DefaultsApplied,
Initialized, Mutated, and Finalized. Each transition runs the bindings of the
corresponding role exactly once, in registration order. Validate rules run
after Finalized, never mutate, and have their failures aggregated so a user
sees every configuration problem in one report.

The registry is deliberately single-threaded: one instance serves one
configuration pass, realization is ordinary nested calls, and the mutable
flag plus state ordering replace any locking.
*/
package model
