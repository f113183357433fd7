package compiler

import (
	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/chunk"
	"github.com/rmay/venlang/pkg/value"
	"github.com/rmay/venlang/pkg/verrors"
)

// compileExpr compiles q so it leaves exactly one value on the stack.
func (c *Compiler) compileExpr(q ast.Quote) error {
	tag := q.Tag()
	line := tag.Line
	switch n := q.(type) {
	case *ast.Symbol:
		c.chunk.Emit(chunk.OpLoadLocal, line, c.constStr(n.Name))
		return nil

	case *ast.String:
		c.chunk.Emit(chunk.OpPushConst, line, int32(c.chunk.AddConstant(value.Str(n.Bytes))))
		return nil

	case *ast.Number:
		num, ok := value.NumFromString(n.Lexeme)
		if !ok {
			return verrors.CompileError(tag.File, tag.Line, "invalid number literal %q", n.Lexeme)
		}
		c.chunk.Emit(chunk.OpPushConst, line, int32(c.chunk.AddConstant(num)))
		return nil

	case *ast.Regex:
		re, err := value.CompileRegex(n.Source)
		if err != nil {
			return verrors.CompileError(tag.File, tag.Line, "invalid regex literal: %v", err)
		}
		c.chunk.Emit(chunk.OpPushConst, line, int32(c.chunk.AddConstant(re)))
		return nil

	case *ast.True:
		c.chunk.Emit(chunk.OpPushTrue, line)
		return nil
	case *ast.False:
		c.chunk.Emit(chunk.OpPushFalse, line)
		return nil
	case *ast.Void:
		c.chunk.Emit(chunk.OpPushVoid, line)
		return nil

	case *ast.UPop:
		c.chunk.Emit(chunk.OpSLPop, line)
		return nil
	case *ast.URef:
		c.chunk.Emit(chunk.OpSLPeek, line)
		return nil

	case *ast.Vector:
		for _, item := range n.Items {
			if err := c.compileExpr(item); err != nil {
				return err
			}
		}
		c.chunk.Emit(chunk.OpMakeVec, line, int32(len(n.Items)))
		if n.Filter != nil {
			return c.compileExpr(n.Filter)
		}
		return nil

	case *ast.Map:
		for _, pair := range n.Pairs {
			if err := c.compileExpr(pair.Key); err != nil {
				return err
			}
			if err := c.compileExpr(pair.Value); err != nil {
				return err
			}
		}
		c.chunk.Emit(chunk.OpMakeMap, line, int32(len(n.Pairs)))
		return nil

	case *ast.Range:
		flags := int32(0)
		if n.Lo != nil {
			if err := c.compileExpr(n.Lo); err != nil {
				return err
			}
			flags |= 1
		}
		if n.Hi != nil {
			if err := c.compileExpr(n.Hi); err != nil {
				return err
			}
			flags |= 2
		}
		c.chunk.Emit(chunk.OpMakeRange, line, flags)
		return nil

	case *ast.Unary:
		if err := c.compileExpr(n.Operand); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpUnOp, line, c.constStr(n.Op))
		return nil

	case *ast.Binary:
		return c.compileBinary(n)

	case *ast.IntoBool:
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpIntoBool, line)
		return nil

	case *ast.Assign:
		return c.compileAssign(n)

	case *ast.BinaryAssign:
		return c.compileBinaryAssign(n)

	case *ast.AccessField:
		if err := c.compileExpr(n.Head); err != nil {
			return err
		}
		for _, field := range n.Path {
			c.chunk.Emit(chunk.OpAccessField, line, c.constStr(field))
		}
		return nil

	case *ast.Access:
		if err := c.compileExpr(n.Head); err != nil {
			return err
		}
		for _, a := range n.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		c.chunk.Emit(chunk.OpAccess, line, int32(len(n.Args)))
		return nil

	case *ast.ReturnIncrement:
		return c.compileIncDec(n.Target, "+", tag)
	case *ast.ReturnDecrement:
		return c.compileIncDec(n.Target, "-", tag)

	case *ast.BinarySpread:
		// `|op| vec` folds op across vec's items left-to-right (spec.md §8
		// scenario 3: `(|+| [1,2,3,4]) is 10`) — a single BIN_OP would pop
		// only two stack values, not reduce the whole vec, so this emits
		// the dedicated REDUCE op instead, mirroring the readtime
		// evaluator's own accumulate-with-ops.Binary loop.
		if err := c.compileExpr(n.Body); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpToVec, line)
		c.chunk.Emit(chunk.OpReduce, line, c.constStr(n.Op))
		return nil

	case *ast.LambdaSpread:
		if err := c.compileExpr(n.Operand); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpToVec, line)
		// n.Lambda is the spread's raw body expression (e.g. `_ * 2`),
		// not an *ast.Lambda node — OpApply expects a callable on top
		// of the stack, so the body is wrapped as a zero-arity closure
		// the same way compileLambda wraps a `\->` body, letting APPLY
		// invoke it once per item via the superlocal stack.
		if err := c.compileImplicitLambda(n.Lambda); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpApply, line, boolOperand(n.Iterative))
		return nil

	case *ast.Block:
		return c.compileStatement(n, false)

	case *ast.If:
		return c.compileIf(n, false)

	case *ast.Ensure:
		if err := c.compileExpr(n.Expr); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpEnsure, line)
		return nil

	case *ast.Queue:
		if n.Value == nil {
			// Bare `queue`: peek the nearest enclosing queue frame as a
			// vector without draining it (operand 1 = read mode).
			c.chunk.Emit(chunk.OpQueue, line, 1)
			return nil
		}
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpQueue, line, 0)
		c.chunk.Emit(chunk.OpPushVoid, line)
		return nil

	case *ast.Dies:
		// ENSURE_SHOULD opens a catch region (operand: the resume IP just
		// past the matching DIE); a RuntimeError raised anywhere inside
		// unwinds the value stack back to this point and pushes `true`
		// instead of propagating. DIE closes the region: reached normally,
		// it discards the expr's value and pushes `false`.
		mark := c.chunk.Emit(chunk.OpEnsureShould, line, 0)
		if err := c.compileExpr(n.Expr); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpDie, line)
		c.chunk.PatchA(mark, int32(c.chunk.Here()))
		return nil

	case *ast.Next:
		return c.compileNext(n)

	case *ast.Return:
		return c.compileReturn(n)

	case *ast.Fun:
		return c.compileFun(n)

	case *ast.Lambda:
		return c.compileLambda(n)

	case *ast.Box:
		return c.compileBox(n)

	case *ast.InfiniteLoop, *ast.BaseLoop, *ast.StepLoop, *ast.ComplexLoop:
		return c.compileLoop(q)

	case *ast.Call:
		return c.compileCall(n, false)

	case *ast.Immediate:
		return c.compileExpr(n.Value)
	case *ast.PatternEnvelope:
		return c.compileExpr(n.Value)

	default:
		return verrors.CompileError(tag.File, tag.Line, "%T is not supported by the compiler", q)
	}
}

func boolOperand(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (c *Compiler) compileBinary(n *ast.Binary) error {
	line := n.Tag().Line
	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	switch n.Op {
	case "and":
		// JUMP_IF_FALSE/JUMP_IF_TRUE pop their operand (so `if`'s cond
		// doesn't linger under the branch's result), so the short-circuit
		// path dups left before testing it: one copy feeds the jump, the
		// other survives to be the and-expression's value when falsy.
		c.chunk.Emit(chunk.OpDup, line)
		jf := c.chunk.Emit(chunk.OpJumpIfFalse, line)
		c.chunk.Emit(chunk.OpPop, line)
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.chunk.PatchA(jf, int32(c.chunk.Here()))
		return nil
	case "or":
		c.chunk.Emit(chunk.OpDup, line)
		jt := c.chunk.Emit(chunk.OpJumpIfTrue, line)
		c.chunk.Emit(chunk.OpPop, line)
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.chunk.PatchA(jt, int32(c.chunk.Here()))
		return nil
	default:
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.chunk.Emit(chunk.OpBinOp, line, c.constStr(n.Op))
		return nil
	}
}

func (c *Compiler) compileAssign(n *ast.Assign) error {
	sym, ok := n.Target.(*ast.Symbol)
	if !ok {
		return verrors.CompileError(n.Tag().File, n.Tag().Line, "assignment target must be a symbol")
	}
	if err := c.compileExpr(n.Value); err != nil {
		return err
	}
	c.chunk.Emit(chunk.OpDup, n.Tag().Line)
	if n.Bind {
		c.frame.declare(sym.Name)
		c.chunk.Emit(chunk.OpStoreLocal, n.Tag().Line, c.constStr(sym.Name))
	} else {
		c.frame.declare(sym.Name)
		c.chunk.Emit(chunk.OpStoreBound, n.Tag().Line, c.constStr(sym.Name))
	}
	return nil
}

func (c *Compiler) compileBinaryAssign(n *ast.BinaryAssign) error {
	sym, ok := n.Target.(*ast.Symbol)
	if !ok {
		return verrors.CompileError(n.Tag().File, n.Tag().Line, "assignment target must be a symbol")
	}
	line := n.Tag().Line
	c.chunk.Emit(chunk.OpLoadLocal, line, c.constStr(sym.Name))
	if err := c.compileExpr(n.Value); err != nil {
		return err
	}
	c.chunk.Emit(chunk.OpBinOp, line, c.constStr(n.Op))
	c.chunk.Emit(chunk.OpDup, line)
	c.chunk.Emit(chunk.OpStoreBound, line, c.constStr(sym.Name))
	return nil
}

func (c *Compiler) compileIncDec(target ast.Quote, op string, tag ast.Tag) error {
	sym, ok := target.(*ast.Symbol)
	if !ok {
		return verrors.CompileError(tag.File, tag.Line, "++/-- target must be a symbol")
	}
	line := tag.Line
	c.chunk.Emit(chunk.OpLoadLocal, line, c.constStr(sym.Name))
	c.chunk.Emit(chunk.OpPushConst, line, int32(c.chunk.AddConstant(value.NumFromInt64(1))))
	c.chunk.Emit(chunk.OpBinOp, line, c.constStr(op))
	c.chunk.Emit(chunk.OpDup, line)
	c.chunk.Emit(chunk.OpStoreBound, line, c.constStr(sym.Name))
	return nil
}

func (c *Compiler) compileIf(n *ast.If, tail bool) error {
	line := n.Tag().Line
	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	jf := c.chunk.Emit(chunk.OpJumpIfFalse, line)
	if err := c.compileStatement(n.Succ, tail); err != nil {
		return err
	}
	jend := c.chunk.Emit(chunk.OpJump, line)
	c.chunk.PatchA(jf, int32(c.chunk.Here()))
	if n.Alt != nil {
		if err := c.compileStatement(n.Alt, tail); err != nil {
			return err
		}
	} else {
		c.chunk.Emit(chunk.OpPushVoid, line)
	}
	c.chunk.PatchA(jend, int32(c.chunk.Here()))
	return nil
}

func (c *Compiler) compileCall(n *ast.Call, tail bool) error {
	line := n.Tag().Line
	callee, ok := n.Callee.(*ast.Symbol)
	if ok && !c.resolveSymbol(callee.Name) {
		return c.unresolvedCallError(n.Tag(), callee.Name)
	}
	if err := c.compileExpr(n.Callee); err != nil {
		return err
	}
	for _, a := range n.Args {
		if err := c.compileExpr(a); err != nil {
			return err
		}
	}
	if tail && ok && callee.Name == c.funName && c.funName != "" {
		c.chunk.Emit(chunk.OpTailCall, line, int32(len(n.Args)))
		return nil
	}
	c.chunk.Emit(chunk.OpCall, line, int32(len(n.Args)))
	return nil
}
