package value

import (
	"fmt"

	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/chunk"
)

// Box is a declaration (spec.md §3.2/§3.4): a named, parameterized
// namespace of member definitions. Namespace is the scope active where
// the `box` declaration itself appears (the closure parent every
// instance's own scope chains from); Body is the compiled namespace
// block, re-run fresh against a new child scope on every instantiation
// so each BoxInstance gets member functions whose closures capture that
// instance's own locals rather than a shared template's (see DESIGN.md's
// box-instantiation entry for why this was chosen over Scope.Clone of a
// single pre-built template).
type Box struct {
	Decl      *ast.Box
	Params    []ConstrainedParam
	Namespace Scope
	Body      *chunk.Chunk
}

func (b *Box) Kind() Kind     { return KindBox }
func (b *Box) String() string { return fmt.Sprintf("<box %s>", b.Decl.Name) }
func (b *Box) Truthy() bool   { return true }
func (b *Box) Eqv(o Value) bool {
	ob, ok := o.(*Box)
	return ok && ob == b
}

// BoxInstance holds its own scope: a fresh child scope in which the box
// namespace body is run at instantiation (spec.md §3.4).
type BoxInstance struct {
	Parent *Box
	Scope  Scope
	ID     string // uuid, assigned at construction (pkg/vm)
}

func (b *BoxInstance) Kind() Kind     { return KindBoxInstance }
func (b *BoxInstance) String() string { return fmt.Sprintf("<%s instance>", b.Parent.Decl.Name) }
func (b *BoxInstance) Truthy() bool   { return true }
func (b *BoxInstance) Eqv(o Value) bool {
	ob, ok := o.(*BoxInstance)
	return ok && ob == b
}
