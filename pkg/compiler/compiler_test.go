package compiler

import (
	"testing"

	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/chunk"
	"github.com/stretchr/testify/require"
)

func ctag() ast.Tag { return ast.Tag{File: "<test>", Line: 1} }

func cnum(n int64) ast.Quote {
	return &ast.Number{ast.New(ctag()), bigLexeme(n)}
}

func bigLexeme(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func findOp(c *chunk.Chunk, op chunk.Op) (chunk.Instr, bool) {
	for _, instr := range c.Instructions {
		if instr.Op == op {
			return instr, true
		}
	}
	return chunk.Instr{}, false
}

func countOp(c *chunk.Chunk, op chunk.Op) int {
	n := 0
	for _, instr := range c.Instructions {
		if instr.Op == op {
			n++
		}
	}
	return n
}

func TestCompileEmptyUnit(t *testing.T) {
	c, err := Compile("<test>", nil, nil, false)
	require.NoError(t, err)
	_, ok := findOp(c, chunk.OpPushVoid)
	require.True(t, ok)
	_, ok = findOp(c, chunk.OpReturn)
	require.True(t, ok)
}

func TestCompileBinaryArithmetic(t *testing.T) {
	q := &ast.Binary{ast.New(ctag()), "+", cnum(1), cnum(2)}
	c, err := Compile("<test>", []ast.Quote{q}, nil, false)
	require.NoError(t, err)
	require.Equal(t, 2, countOp(c, chunk.OpPushConst))
	_, ok := findOp(c, chunk.OpBinOp)
	require.True(t, ok)
}

func TestCompileIfElseHasBothBranches(t *testing.T) {
	ifq := &ast.If{ast.New(ctag()), &ast.True{ast.New(ctag())}, cnum(1), cnum(2)}
	c, err := Compile("<test>", []ast.Quote{ifq}, nil, false)
	require.NoError(t, err)
	require.Equal(t, 1, countOp(c, chunk.OpJumpIfFalse))
	require.Equal(t, 1, countOp(c, chunk.OpJump))
}

func TestCompileUnresolvedCallErrors(t *testing.T) {
	call := &ast.Call{ast.New(ctag()), &ast.Symbol{ast.New(ctag()), "sya"}, nil}
	_, err := Compile("<test>", []ast.Quote{call}, []string{"say"}, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sya")
}

func TestCompileResolvedCallEmitsCall(t *testing.T) {
	call := &ast.Call{ast.New(ctag()), &ast.Symbol{ast.New(ctag()), "say"}, []ast.Quote{cnum(1)}}
	c, err := Compile("<test>", []ast.Quote{call}, []string{"say"}, false)
	require.NoError(t, err)
	instr, ok := findOp(c, chunk.OpCall)
	require.True(t, ok)
	require.Equal(t, int32(1), instr.A)
}

func TestCompileFunDefinesAndSelfRecursesAsTailCall(t *testing.T) {
	body := &ast.Call{ast.New(ctag()), &ast.Symbol{ast.New(ctag()), "f"}, []ast.Quote{cnum(1)}}
	fn := &ast.Fun{ast.New(ctag()), "f", []ast.ConstrainedParam{{Name: "x"}}, body, nil, false}
	c, err := Compile("<test>", []ast.Quote{fn}, nil, false)
	require.NoError(t, err)
	require.Len(t, c.Functions, 1)
	_, ok := findOp(c.Functions[0], chunk.OpTailCall)
	require.True(t, ok)
}

func TestCompileSecondFunSameNameAddsVariant(t *testing.T) {
	body := cnum(1)
	fn1 := &ast.Fun{ast.New(ctag()), "f", []ast.ConstrainedParam{{Name: "x"}}, body, nil, false}
	fn2 := &ast.Fun{ast.New(ctag()), "f", nil, cnum(2), nil, false}
	c, err := Compile("<test>", []ast.Quote{fn1, fn2}, nil, false)
	require.NoError(t, err)
	require.Equal(t, 1, countOp(c, chunk.OpMakeConcrete))
	require.Equal(t, 1, countOp(c, chunk.OpAddVariant))
}

func TestCompileInfiniteLoopWithNext(t *testing.T) {
	next := &ast.Next{ast.New(ctag()), "", []ast.Quote{cnum(1)}}
	body := &ast.Block{ast.New(ctag()), []ast.Quote{next}}
	loop := &ast.InfiniteLoop{ast.New(ctag()), body}
	c, err := Compile("<test>", []ast.Quote{loop}, nil, false)
	require.NoError(t, err)
	_, ok := findOp(c, chunk.OpLoopEnter)
	require.True(t, ok)
	_, ok = findOp(c, chunk.OpLoopNext)
	require.True(t, ok)
}

func TestCompileNextOutsideLoopErrors(t *testing.T) {
	next := &ast.Next{ast.New(ctag()), "", nil}
	_, err := Compile("<test>", []ast.Quote{next}, nil, false)
	require.Error(t, err)
}

func TestCompileConstrainedParam(t *testing.T) {
	body := cnum(1)
	fn := &ast.Fun{ast.New(ctag()), "f", []ast.ConstrainedParam{{Name: "x", Constraint: &ast.Symbol{ast.New(ctag()), "num"}}}, body, nil, false}
	c, err := Compile("<test>", []ast.Quote{fn}, nil, false)
	require.NoError(t, err)
	param := c.Functions[0].Meta.Params[0]
	require.Equal(t, "x", param.Name)
	require.GreaterOrEqual(t, param.ConstraintConst, 0)
	require.False(t, c.Functions[0].Meta.General)
}

func TestCompileGivenClauseConstrainsSoleParam(t *testing.T) {
	body := cnum(1)
	fn := &ast.Fun{ast.New(ctag()), "f", []ast.ConstrainedParam{{Name: "x"}}, body, &ast.Symbol{ast.New(ctag()), "num"}, false}
	c, err := Compile("<test>", []ast.Quote{fn}, nil, false)
	require.NoError(t, err)
	param := c.Functions[0].Meta.Params[0]
	require.GreaterOrEqual(t, param.ConstraintConst, 0)
	require.False(t, c.Functions[0].Meta.General)
}
