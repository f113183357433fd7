package optimizer

import (
	"testing"

	"github.com/rmay/venlang/pkg/chunk"
	"github.com/rmay/venlang/pkg/value"
	"github.com/stretchr/testify/require"
)

func countOp(c *chunk.Chunk, op chunk.Op) int {
	n := 0
	for _, instr := range c.Instructions {
		if instr.Op == op {
			n++
		}
	}
	return n
}

func TestFoldConstantsCollapsesArithmetic(t *testing.T) {
	c := chunk.New("<test>")
	a := c.AddConstant(value.NumFromInt64(1))
	b := c.AddConstant(value.NumFromInt64(2))
	op := c.AddConstant(value.Str("+"))
	c.Emit(chunk.OpPushConst, 1, int32(a))
	c.Emit(chunk.OpPushConst, 1, int32(b))
	c.Emit(chunk.OpBinOp, 1, int32(op))
	c.Emit(chunk.OpReturn, 1)

	Optimize([]*chunk.Chunk{c}, DefaultPassBudget)
	require.Equal(t, 0, countOp(c, chunk.OpBinOp))
	require.Equal(t, 1, countOp(c, chunk.OpPushConst))
	folded, ok := c.Constants[c.Instructions[0].A].(value.Num)
	require.True(t, ok)
	require.Equal(t, "3", folded.String())
}

func TestFoldConstantsSkipsWhenJumpTargetsMiddle(t *testing.T) {
	c := chunk.New("<test>")
	a := c.AddConstant(value.NumFromInt64(1))
	b := c.AddConstant(value.NumFromInt64(2))
	op := c.AddConstant(value.Str("+"))
	c.Emit(chunk.OpPushConst, 1, int32(a))
	c.Emit(chunk.OpPushConst, 1, int32(b))
	c.Emit(chunk.OpBinOp, 1, int32(op))
	c.Emit(chunk.OpJump, 1, 1) // elsewhere jumps straight to the "b" operand
	c.Emit(chunk.OpReturn, 1)

	Optimize([]*chunk.Chunk{c}, DefaultPassBudget)
	require.Equal(t, 1, countOp(c, chunk.OpBinOp))
}

func TestDeadBranchTrueConditionDropsJump(t *testing.T) {
	c := chunk.New("<test>")
	c.Emit(chunk.OpPushTrue, 1)
	c.Emit(chunk.OpJumpIfFalse, 1, 3)
	c.Emit(chunk.OpPushConst, 1, int32(c.AddConstant(value.NumFromInt64(1))))
	c.Emit(chunk.OpReturn, 1)

	Optimize([]*chunk.Chunk{c}, DefaultPassBudget)
	require.Equal(t, 0, countOp(c, chunk.OpJumpIfFalse))
	require.Equal(t, 0, countOp(c, chunk.OpPushTrue))
}

func TestDeadBranchFalseConditionBecomesUnconditionalJump(t *testing.T) {
	c := chunk.New("<test>")
	c.Emit(chunk.OpPushFalse, 1)
	jf := c.Emit(chunk.OpJumpIfFalse, 1, 0)
	c.Emit(chunk.OpPushConst, 1, int32(c.AddConstant(value.NumFromInt64(1))))
	end := c.Emit(chunk.OpReturn, 1)
	c.PatchA(jf, int32(end))

	Optimize([]*chunk.Chunk{c}, DefaultPassBudget)
	require.Equal(t, 0, countOp(c, chunk.OpJumpIfFalse))
	require.Equal(t, 1, countOp(c, chunk.OpJump))
}

func TestThreadJumpsCollapsesChain(t *testing.T) {
	c := chunk.New("<test>")
	c.Emit(chunk.OpJump, 1, 1)
	c.Emit(chunk.OpJump, 1, 2)
	ret := c.Emit(chunk.OpReturn, 1)
	c.Instructions[1].A = int32(ret)

	changed := threadJumps(c)
	require.True(t, changed)
	require.Equal(t, int32(ret), c.Instructions[0].A)
}

func TestRemoveRedundantScopesDropsEmptyPair(t *testing.T) {
	c := chunk.New("<test>")
	c.Emit(chunk.OpScopeEnter, 1)
	c.Emit(chunk.OpPushConst, 1, int32(c.AddConstant(value.NumFromInt64(1))))
	c.Emit(chunk.OpScopeLeave, 1)
	c.Emit(chunk.OpReturn, 1)

	Optimize([]*chunk.Chunk{c}, DefaultPassBudget)
	require.Equal(t, 0, countOp(c, chunk.OpScopeEnter))
	require.Equal(t, 0, countOp(c, chunk.OpScopeLeave))
}

func TestRemoveRedundantScopesKeepsPairWithLocal(t *testing.T) {
	c := chunk.New("<test>")
	c.Emit(chunk.OpScopeEnter, 1)
	c.Emit(chunk.OpPushConst, 1, int32(c.AddConstant(value.NumFromInt64(1))))
	c.Emit(chunk.OpStoreLocal, 1, int32(c.AddConstant(value.Str("x"))))
	c.Emit(chunk.OpScopeLeave, 1)
	c.Emit(chunk.OpReturn, 1)

	Optimize([]*chunk.Chunk{c}, DefaultPassBudget)
	require.Equal(t, 1, countOp(c, chunk.OpScopeEnter))
	require.Equal(t, 1, countOp(c, chunk.OpScopeLeave))
}

func TestRemoveDeadLoadsDropsUnusedPush(t *testing.T) {
	c := chunk.New("<test>")
	c.Emit(chunk.OpPushConst, 1, int32(c.AddConstant(value.NumFromInt64(1))))
	c.Emit(chunk.OpPop, 1)
	c.Emit(chunk.OpReturn, 1)

	Optimize([]*chunk.Chunk{c}, DefaultPassBudget)
	require.Equal(t, 0, countOp(c, chunk.OpPop))
	require.Equal(t, 0, countOp(c, chunk.OpPushConst))
}

func TestRemoveVecAccessPairEliminatesNoOp(t *testing.T) {
	c := chunk.New("<test>")
	c.Emit(chunk.OpPushConst, 1, int32(c.AddConstant(value.NumFromInt64(1))))
	c.Emit(chunk.OpMakeVec, 1, 1)
	c.Emit(chunk.OpAccess, 1, 0)
	c.Emit(chunk.OpReturn, 1)

	Optimize([]*chunk.Chunk{c}, DefaultPassBudget)
	require.Equal(t, 0, countOp(c, chunk.OpMakeVec))
	require.Equal(t, 0, countOp(c, chunk.OpAccess))
	require.Equal(t, 1, countOp(c, chunk.OpPushConst))
}

func TestOptimizeRecursesIntoNestedFunctions(t *testing.T) {
	inner := chunk.New("f")
	inner.Emit(chunk.OpPushFalse, 1)
	jf := inner.Emit(chunk.OpJumpIfFalse, 1, 0)
	inner.Emit(chunk.OpPushConst, 1, int32(inner.AddConstant(value.NumFromInt64(1))))
	end := inner.Emit(chunk.OpReturn, 1)
	inner.PatchA(jf, int32(end))

	outer := chunk.New("<test>")
	outer.Functions = append(outer.Functions, inner)
	outer.Emit(chunk.OpMakeConcrete, 1, 0)
	outer.Emit(chunk.OpReturn, 1)

	Optimize([]*chunk.Chunk{outer}, DefaultPassBudget)
	require.Equal(t, 0, countOp(inner, chunk.OpJumpIfFalse))
}
