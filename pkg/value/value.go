// Package value implements Ven's tagged runtime value union (spec.md §3.2):
// a small set of concrete Go types, each satisfying Value, standing in for
// a sum type. Values are immutable except where spec.md calls for mutation
// (Lambda's superlocal slot, Map's insertion-ordered entries while building).
package value

import "fmt"

// Kind tags a Value's variant, used by type predicates and trace messages.
type Kind int

const (
	KindNum Kind = iota
	KindStr
	KindBool
	KindVec
	KindMap
	KindRegex
	KindRange
	KindType
	KindCompoundType
	KindAny
	KindQuote
	KindConcrete
	KindGeneric
	KindLambda
	KindFrozenLambda
	KindBuiltin
	KindPartial
	KindBox
	KindBoxInstance
	KindInternal
	KindVoid
)

func (k Kind) String() string {
	switch k {
	case KindNum:
		return "num"
	case KindStr:
		return "str"
	case KindBool:
		return "bool"
	case KindVec:
		return "vec"
	case KindMap:
		return "map"
	case KindRegex:
		return "regex"
	case KindRange:
		return "range"
	case KindType:
		return "type"
	case KindCompoundType:
		return "compound-type"
	case KindAny:
		return "any"
	case KindQuote:
		return "quote"
	case KindConcrete:
		return "concrete"
	case KindGeneric:
		return "generic"
	case KindLambda:
		return "lambda"
	case KindFrozenLambda:
		return "frozen-lambda"
	case KindBuiltin:
		return "builtin"
	case KindPartial:
		return "partial"
	case KindBox:
		return "box"
	case KindBoxInstance:
		return "box-instance"
	case KindInternal:
		return "internal"
	case KindVoid:
		return "void"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is implemented by every runtime value variant.
type Value interface {
	Kind() Kind
	// String renders the value the way `~` (to_str) does.
	String() string
	// Eqv implements deep, element-wise equality (spec.md §3.3).
	Eqv(other Value) bool
	// Truthy reports whether the value counts as true for `not`/`if`/`and`/`or`
	// (spec.md §4.8): only Bool(false) itself is falsy.
	Truthy() bool
}

// Scope is the minimal contract a runtime scope chain must satisfy for a
// Lambda/BoxInstance to reference it. The concrete implementation lives in
// pkg/scope; this interface exists here (not an import of pkg/scope) so
// pkg/value need not import pkg/scope, which itself imports pkg/value for
// the values it stores — declaring the contract on the consumer side is
// the standard way to break that cycle.
type Scope interface {
	Get(name string) (Value, bool)
	Define(name string, v Value, local bool)
	Parent() Scope
}

// Void is Ven's unit/nothing value.
type Void struct{}

func (Void) Kind() Kind       { return KindVoid }
func (Void) String() string   { return "void" }
func (Void) Truthy() bool     { return true }
func (Void) Eqv(o Value) bool { _, ok := o.(Void); return ok }

// Bool wraps a boolean. Bool(false) is Ven's only falsy value.
type Bool bool

func (b Bool) Kind() Kind { return KindBool }
func (b Bool) Truthy() bool { return bool(b) }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) Eqv(o Value) bool {
	ob, ok := o.(Bool)
	return ok && ob == b
}

var (
	True  Value = Bool(true)
	False Value = Bool(false)
	Unit  Value = Void{}
)

// FromBool is a convenience constructor mirroring `IntoBool` quotes.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}
