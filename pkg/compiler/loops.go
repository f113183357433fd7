package compiler

import (
	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/chunk"
	"github.com/rmay/venlang/pkg/verrors"
)

// compileLoop lowers the four loop shapes (spec.md §4.9) to the literal
// translation spec.md §4.5 gives for the named/complex form, generalized
// to the other three: `SCOPE_ENTER; init; L0: cond; JUMP_IF_FALSE Lend;
// body; step; JUMP L0; Lend: SCOPE_LEAVE`. LOOP_ENTER/LOOP_ITER/LOOP_BREAK
// bracket the VM's own loop-state bookkeeping (spec.md §4.9's `{entering,
// iterating, breaking, next-ing}` state machine); the cond test itself
// still uses a plain JUMP_IF_FALSE/JUMP pair exactly as spec.md spells out.
func (c *Compiler) compileLoop(q ast.Quote) error {
	line := q.Tag().Line
	child := c.pushScope()
	defer c.popScope(child)
	c.chunk.Emit(chunk.OpScopeEnter, line)

	var (
		kind chunk.LoopKind
		name string
		init []ast.Quote
		cond ast.Quote
		step []ast.Quote
		body ast.Quote
	)
	switch n := q.(type) {
	case *ast.InfiniteLoop:
		kind, body = chunk.LoopInfinite, n.Body
	case *ast.BaseLoop:
		kind, cond, body = chunk.LoopBase, n.Cond, n.Body
	case *ast.StepLoop:
		kind, body = chunk.LoopStep, n.Body
		if n.Init != nil {
			init = []ast.Quote{n.Init}
		}
		cond = n.Cond
		if n.Step != nil {
			step = []ast.Quote{n.Step}
		}
	case *ast.ComplexLoop:
		kind, name, init, cond, step, body = chunk.LoopComplex, n.Name, n.Init, n.Cond, n.Step, n.Body
	}

	c.chunk.Emit(chunk.OpLoopEnter, line, int32(kind))
	for _, s := range init {
		if err := c.compileExpr(s); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpPop, line)
	}

	l0 := c.chunk.Here()
	c.loops = append(c.loops, loopFrame{name: name, continueIP: l0})
	defer func() { c.loops = c.loops[:len(c.loops)-1] }()

	var jf int
	hasCond := cond != nil
	if hasCond {
		if err := c.compileExpr(cond); err != nil {
			return err
		}
		jf = c.chunk.Emit(chunk.OpJumpIfFalse, line)
	}
	c.chunk.Emit(chunk.OpLoopIter, line)
	if err := c.compileStatement(body, false); err != nil {
		return err
	}
	c.chunk.Emit(chunk.OpPop, line)
	for _, s := range step {
		if err := c.compileExpr(s); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpPop, line)
	}
	c.chunk.Emit(chunk.OpJump, line, int32(l0))
	if hasCond {
		c.chunk.PatchA(jf, int32(c.chunk.Here()))
	}
	// LOOP_BREAK pushes the loop's own value: the vector of everything
	// `next` queued during this run (void if nothing was ever queued) —
	// the loop's queue is how a generator-style `while`/`for` hands its
	// accumulated results back to its caller.
	c.chunk.Emit(chunk.OpLoopBreak, line)
	c.chunk.Emit(chunk.OpScopeLeave, line)
	return nil
}

// compileNext lowers `next [target] args` (spec.md §4.5) to a non-local
// jump: each arg is queued in turn (so a loop's caller-visible result can
// accumulate across iterations, mirroring Queue's semantics), then
// LOOP_NEXT(levels) tells the VM how many loop-frames to pop before the
// compile-time-known backward jump to the target loop's test point.
func (c *Compiler) compileNext(n *ast.Next) error {
	tag := n.Tag()
	idx, lf, err := c.findLoop(tag, n.Target)
	if err != nil {
		return err
	}
	for _, a := range n.Args {
		if err := c.compileExpr(a); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpQueue, tag.Line)
	}
	levels := int32(len(c.loops) - 1 - idx)
	c.chunk.Emit(chunk.OpLoopNext, tag.Line, levels)
	c.chunk.Emit(chunk.OpJump, tag.Line, int32(lf.continueIP))
	c.chunk.Emit(chunk.OpPushVoid, tag.Line)
	return nil
}

func (c *Compiler) findLoop(tag ast.Tag, target string) (int, loopFrame, error) {
	if len(c.loops) == 0 {
		return 0, loopFrame{}, verrors.CompileError(tag.File, tag.Line, "next outside a loop")
	}
	if target == "" {
		return len(c.loops) - 1, c.loops[len(c.loops)-1], nil
	}
	for i := len(c.loops) - 1; i >= 0; i-- {
		if c.loops[i].name == target {
			return i, c.loops[i], nil
		}
	}
	return 0, loopFrame{}, verrors.CompileError(tag.File, tag.Line, "next targets unknown loop %q", target)
}

func (c *Compiler) compileReturn(n *ast.Return) error {
	line := n.Tag().Line
	if n.Value != nil {
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
	} else {
		c.chunk.Emit(chunk.OpPushVoid, line)
	}
	c.chunk.Emit(chunk.OpReturn, line)
	c.chunk.Emit(chunk.OpPushVoid, line)
	return nil
}
