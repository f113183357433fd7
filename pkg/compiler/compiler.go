// Package compiler lowers reader/readtime output (ast.Quote trees) into
// pkg/chunk bytecode (spec.md §4.3). It keeps a Frame stack mirroring
// pkg/scope.Scope's bound/local split and emits jump-patch sequences for
// branches and loops, following the teacher's recursive, emit-then-patch
// style (pkg/lux/compiler.go) adapted from a flat byte stream to typed
// chunk.Instr triples.
package compiler

import (
	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/chunk"
	"github.com/rmay/venlang/pkg/value"
	"github.com/rmay/venlang/pkg/verrors"
	"github.com/rmay/venlang/internal/suggest"
)

// Compiler lowers one unit's quotes into a single top-level *chunk.Chunk,
// with nested Fun/Lambda/Box bodies compiled into chunk.Chunk.Functions.
type Compiler struct {
	chunk   *chunk.Chunk
	frame   *Frame
	globals map[string]bool
	loops   []loopFrame
	funName string // name of the fun/lambda currently compiling, for TAIL_CALL
	seen    map[string]bool // fun names already MAKE_CONCRETE'd in this unit
	trace   bool
}

type loopFrame struct {
	name       string
	continueIP int
}

// Compile compiles quotes into a named top-level chunk. globals lists
// names the compiler should treat as already resolvable — pkg/hub passes
// the basis builtins plus the top-level names of units exposed so far.
func Compile(name string, quotes []ast.Quote, globals []string, trace bool) (*chunk.Chunk, error) {
	c := &Compiler{
		chunk:   chunk.New(name),
		frame:   newFrame(nil),
		globals: make(map[string]bool, len(globals)),
		trace:   trace,
	}
	for _, g := range globals {
		c.globals[g] = true
	}
	if err := c.compileBody(quotes, false); err != nil {
		return nil, err
	}
	c.chunk.Emit(chunk.OpReturn, lastLine(quotes))
	return c.chunk, nil
}

func lastLine(quotes []ast.Quote) int {
	if len(quotes) == 0 {
		return 0
	}
	return quotes[len(quotes)-1].Tag().Line
}

func (c *Compiler) constStr(s string) int32 {
	return int32(c.chunk.AddConstant(value.Str(s)))
}

// compileBody hoists Fun/Box names first (so mutual recursion and
// forward references within the same block resolve), then compiles each
// statement in order, discarding every value but the last. isTail marks
// whether this whole statement list sits in its enclosing function's tail
// position; only its own last statement can inherit that, everything
// before it is definitely not a tail call.
func (c *Compiler) compileBody(quotes []ast.Quote, isTail bool) error {
	c.hoist(quotes)
	if len(quotes) == 0 {
		c.chunk.Emit(chunk.OpPushVoid, 0)
		return nil
	}
	for i, q := range quotes {
		last := i == len(quotes)-1
		if err := c.compileStatement(q, last && isTail); err != nil {
			return err
		}
		if !last {
			c.chunk.Emit(chunk.OpPop, q.Tag().Line)
		}
	}
	return nil
}

func (c *Compiler) hoist(quotes []ast.Quote) {
	for _, q := range quotes {
		switch n := q.(type) {
		case *ast.Fun:
			c.frame.declare(n.Name)
		case *ast.Box:
			c.frame.declare(n.Name)
		}
	}
}

// compileStatement compiles q for its value, honoring tail position for
// self-recursive TAIL_CALL and propagating it into If/Block so the common
// "if base-case return else recurse" shape tail-calls.
func (c *Compiler) compileStatement(q ast.Quote, tail bool) error {
	switch n := q.(type) {
	case *ast.If:
		return c.compileIf(n, tail)
	case *ast.Block:
		child := c.pushScope()
		defer c.popScope(child)
		c.chunk.Emit(chunk.OpScopeEnter, n.Tag().Line)
		if err := c.compileBody(n.Body, tail); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpScopeLeave, n.Tag().Line)
		return nil
	case *ast.Call:
		return c.compileCall(n, tail)
	default:
		return c.compileExpr(q)
	}
}

func (c *Compiler) pushScope() *Frame {
	child := newFrame(c.frame)
	c.frame = child
	return child
}

func (c *Compiler) popScope(_ *Frame) {
	c.frame = c.frame.parent
}

// resolveSymbol reports whether name is known to the compiler (a
// declared local/bound name, or a global). compileCall rejects a call
// whose callee symbol does not resolve with a CompileError (with a typo
// suggestion); a plain variable read is never blocked, since it may
// resolve at runtime via a box namespace.
func (c *Compiler) resolveSymbol(name string) bool {
	return c.frame.resolves(name) || c.globals[name]
}

func (c *Compiler) unresolvedCallError(tag ast.Tag, name string) error {
	candidates := append(append([]string{}, c.frame.known()...), globalsSlice(c.globals)...)
	return verrors.CompileError(tag.File, tag.Line, "unresolved call to %q%s", name, suggest.Message(name, candidates))
}

func globalsSlice(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
