// internal/modeltype/token.go
package modeltype

import (
	"reflect"
)

// Token is a reified descriptor of a Go value type. The zero Token describes
// no type at all; IsZero reports that state.
type Token struct {
	t reflect.Type
}

// Of captures the static type T, including generic arguments and interface
// types. `Of[io.Reader]()` and `Of[*bytes.Buffer]()` are distinct tokens.
func Of[T any]() Token {
	return Token{t: reflect.TypeOf((*T)(nil)).Elem()}
}

// FromValue derives the token describing the dynamic type of the given value.
func FromValue(v any) Token {
	return Token{t: reflect.TypeOf(v)}
}

// IsZero reports whether the token describes no type.
func (k Token) IsZero() bool {
	return k.t == nil
}

// Equal checks whether two tokens describe exactly the same type.
func (k Token) Equal(other Token) bool {
	return k.t == other.t
}

// AssignableFrom reports whether a value described by other can be used where
// a value of the receiver's type is expected. For interface tokens this is
// the implements check; for concrete tokens it requires identity.
func (k Token) AssignableFrom(other Token) bool {
	if k.t == nil || other.t == nil {
		return false
	}
	return other.t.AssignableTo(k.t)
}

// Describes reports whether the given value is assignable to the token's
// type. A nil value never matches.
func (k Token) Describes(v any) bool {
	if v == nil {
		return false
	}
	return k.AssignableFrom(FromValue(v))
}

// String returns the Go syntax of the described type, e.g. "*jvm.JarBinarySpec".
func (k Token) String() string {
	if k.t == nil {
		return "<none>"
	}
	return k.t.String()
}
