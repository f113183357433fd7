package value

import (
	"fmt"
	"sort"

	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/chunk"
)

// ConstrainedParam is a resolved (value-level) formal parameter: Constraint
// is nil for an unconstrained parameter (matches AnyValue), per spec.md §3.2.
type ConstrainedParam struct {
	Name       string
	Constraint Value
}

// Concrete is a single-variant function (spec.md §3.2).
type Concrete struct {
	Tag      ast.Tag
	Name     string
	Params   []ConstrainedParam
	Body     *chunk.Chunk
	Slurpy   bool
	Arity    int
	General  bool
	Captured Scope // closure scope for nested `fun` defined inside a lambda/box
}

func (c *Concrete) Kind() Kind     { return KindConcrete }
func (c *Concrete) String() string { return fmt.Sprintf("<fun %s/%d>", c.Name, c.Arity) }
func (c *Concrete) Truthy() bool   { return true }
func (c *Concrete) Eqv(o Value) bool {
	oc, ok := o.(*Concrete)
	return ok && oc == c
}

// Matches reports whether args satisfies every ConstrainedParam in order
// (spec.md §4.6 step 3). Arity must already have been checked by the caller.
func (c *Concrete) Matches(args []Value) bool {
	for i, p := range c.Params {
		if i >= len(args) {
			return false
		}
		if !MatchConstraint(p.Constraint, args[i]) {
			return false
		}
	}
	return true
}

// Generic bundles same-named Concretes, dispatched by value+type constraints
// (spec.md §3.2/§4.6). Variants is kept sorted per spec.md §3.3: arity
// descending, strict-before-general within equal arity.
type Generic struct {
	Name     string
	Variants []*Concrete
}

func (g *Generic) Kind() Kind     { return KindGeneric }
func (g *Generic) String() string { return fmt.Sprintf("<generic %s/%d variants>", g.Name, len(g.Variants)) }
func (g *Generic) Truthy() bool   { return true }
func (g *Generic) Eqv(o Value) bool {
	og, ok := o.(*Generic)
	return ok && og == g
}

// AddVariant inserts v maintaining the spec.md §3.3 sort invariant. Later
// additions with identical constraints win ties (spec.md §8: "Dispatch
// stability: ... the later-added wins") — v is prepended, not appended,
// before the stable sort, so among variants of equal rank it sorts ahead
// of every variant already in the list and `selectVariant`'s first-match
// scan picks it.
func (g *Generic) AddVariant(v *Concrete) {
	g.Variants = append([]*Concrete{v}, g.Variants...)
	sort.SliceStable(g.Variants, func(i, j int) bool {
		a, b := g.Variants[i], g.Variants[j]
		if a.Arity != b.Arity {
			return a.Arity > b.Arity
		}
		if a.General != b.General {
			return !a.General // strict (General=false) before general
		}
		return false
	})
}

// Lambda is an anonymous function capturing its defining scope chain
// (spec.md §3.2). The Superlocal/Injection fields are not read by pkg/vm:
// `_`/`&_` during a lambda activation come from the Machine's own
// superlocal stack.
type Lambda struct {
	Scope      Scope
	Params     []ConstrainedParam
	Arity      int
	Slurpy     bool
	Body       *chunk.Chunk
	Superlocal *Value
	Injection  []Value
}

func (l *Lambda) Kind() Kind     { return KindLambda }
func (l *Lambda) String() string { return fmt.Sprintf("<lambda/%d>", l.Arity) }
func (l *Lambda) Truthy() bool   { return true }
func (l *Lambda) Eqv(o Value) bool {
	ol, ok := o.(*Lambda)
	return ok && ol == l
}

// MachineHandle is the minimal contract a VM must satisfy for a
// FrozenLambda to be spawned later. The concrete implementation lives in
// pkg/vm; declaring the interface here (not importing pkg/vm) avoids a
// cycle, since pkg/vm already imports pkg/value for the values it operates
// on.
type MachineHandle interface {
	SpawnFrozen(fn *FrozenLambda, args []Value) (Value, error)
}

// FrozenLambda pins a Lambda together with the VM it should run on when
// spawned (spec.md §3.2, §5).
type FrozenLambda struct {
	Lambda  *Lambda
	Machine MachineHandle
}

func (f *FrozenLambda) Kind() Kind     { return KindFrozenLambda }
func (f *FrozenLambda) String() string { return "<frozen-lambda>" }
func (f *FrozenLambda) Truthy() bool   { return true }
func (f *FrozenLambda) Eqv(o Value) bool {
	of, ok := o.(*FrozenLambda)
	return ok && of == f
}

// Context is what a Builtin's native implementation receives in lieu of a
// full VM reference, keeping pkg/value free of a pkg/vm import.
type Context interface {
	Superlocal() (Value, bool)
	PushSuperlocal(Value)
	Spawn(fn *FrozenLambda, args []Value) (Value, error)
	Die(message string) error
	Stdout() StdWriter
}

// StdWriter is the minimal io.Writer-shaped contract builtins need for
// `say`/`write`, declared locally to avoid importing `io` just for this.
type StdWriter interface {
	WriteString(s string) (int, error)
}

// Builtin is a native callable (spec.md §3.2).
type Builtin struct {
	Name  string
	Arity int
	Impl  func(ctx Context, args []Value) (Value, error)
}

func (b *Builtin) Kind() Kind     { return KindBuiltin }
func (b *Builtin) String() string { return fmt.Sprintf("<builtin %s/%d>", b.Name, b.Arity) }
func (b *Builtin) Truthy() bool   { return true }
func (b *Builtin) Eqv(o Value) bool {
	ob, ok := o.(*Builtin)
	return ok && ob == b
}

// Partial is a partially-applied call (spec.md §3.2): Callee with some
// leading Args already bound, awaiting the rest.
type Partial struct {
	Callee Value
	Args   []Value
}

func (p *Partial) Kind() Kind     { return KindPartial }
func (p *Partial) String() string { return fmt.Sprintf("<partial %s/%d>", p.Callee.String(), len(p.Args)) }
func (p *Partial) Truthy() bool   { return true }
func (p *Partial) Eqv(o Value) bool {
	op, ok := o.(*Partial)
	return ok && op == p
}
