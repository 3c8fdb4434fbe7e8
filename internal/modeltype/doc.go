// internal/modeltype/doc.go

/*
Package modeltype provides a reified, comparable descriptor of a Go value
type, used by the model graph to validate typed views over node data and to
select type-scoped rules.

Tokens are captured statically with Of[T](), which preserves the full type
including generic parameterization and interface-ness. Two tokens describing
the same concrete type always compare equal, regardless of where they were
constructed. Compatibility is checked with AssignableFrom, the covariance
check applied when a caller requests a supertype view of a node's stored
value.
*/
package modeltype
