// Package optimizer implements spec.md §4.4's peephole passes over
// compiled chunks: constant folding, dead-branch elimination, jump
// threading, redundant scope-pair removal, dead-load elimination, and the
// MAKE_VEC(1)/ACCESS(0) no-op pair. Passes run to a fixed point or until
// passBudget is exhausted, never changing observable semantics (die
// sites included) — every removal and every jump rewrite first checks
// that nothing else in the chunk jumps into the instructions being
// touched.
package optimizer

import (
	"github.com/rmay/venlang/pkg/chunk"
	"github.com/rmay/venlang/pkg/ops"
	"github.com/rmay/venlang/pkg/value"
)

// DefaultPassBudget is spec.md §4.4's "N passes (default 8; doubled at
// -O)" default. Scaling by -O is cmd/ven's concern (it owns the -O flag
// and passes N*8); this package only runs however many passes it's given.
const DefaultPassBudget = 8

// Optimize runs every top-level chunk (and, recursively, each chunk's
// nested Functions) through the pass list to a fixed point.
func Optimize(chunks []*chunk.Chunk, passBudget int) {
	for _, c := range chunks {
		optimizeChunk(c, passBudget)
	}
}

var passes = []func(*chunk.Chunk) bool{
	foldConstants,
	deadBranch,
	threadJumps,
	removeRedundantScopes,
	removeDeadLoads,
	removeVecAccessPair,
}

func optimizeChunk(c *chunk.Chunk, passBudget int) {
	for _, fn := range c.Functions {
		optimizeChunk(fn, passBudget)
	}
	for i := 0; i < passBudget; i++ {
		changed := false
		for _, pass := range passes {
			if pass(c) {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

// literalAt reports the compile-time-known value an instruction pushes,
// if any.
func literalAt(c *chunk.Chunk, idx int) (value.Value, bool) {
	if idx < 0 || idx >= len(c.Instructions) {
		return nil, false
	}
	switch instr := c.Instructions[idx]; instr.Op {
	case chunk.OpPushConst:
		if int(instr.A) < 0 || int(instr.A) >= len(c.Constants) {
			return nil, false
		}
		v, ok := c.Constants[instr.A].(value.Value)
		return v, ok
	case chunk.OpPushTrue:
		return value.True, true
	case chunk.OpPushFalse:
		return value.False, true
	case chunk.OpPushVoid:
		return value.Unit, true
	default:
		return nil, false
	}
}

// isJumpTarget reports whether any JUMP/JUMP_IF_FALSE/JUMP_IF_TRUE in c
// targets idx, the safety check every pass makes before deleting or
// rewriting an instruction.
func isJumpTarget(c *chunk.Chunk, idx int) bool {
	for _, instr := range c.Instructions {
		switch instr.Op {
		case chunk.OpJump, chunk.OpJumpIfFalse, chunk.OpJumpIfTrue:
			if int(instr.A) == idx {
				return true
			}
		}
	}
	return false
}

// foldConstants implements pass 1: PUSH_CONST/TRUE/FALSE/VOID a; (same) b;
// BIN_OP op folds to a single PUSH_CONST when both operands are literal
// and the operator doesn't error (a folding failure, e.g. division by
// zero, is left for the VM to raise at runtime).
func foldConstants(c *chunk.Chunk) bool {
	type fold struct {
		at  int
		val value.Value
	}
	var folds []fold
	remove := map[int]bool{}
	for i := 0; i+2 < len(c.Instructions); i++ {
		opInstr := c.Instructions[i+2]
		if opInstr.Op != chunk.OpBinOp {
			continue
		}
		left, ok1 := literalAt(c, i)
		right, ok2 := literalAt(c, i+1)
		if !ok1 || !ok2 {
			continue
		}
		if isJumpTarget(c, i) || isJumpTarget(c, i+1) || isJumpTarget(c, i+2) {
			continue
		}
		opName, ok := c.Constants[opInstr.A].(value.Str)
		if !ok {
			continue
		}
		result, err := ops.Binary(string(opName), left, right)
		if err != nil {
			continue
		}
		folds = append(folds, fold{i, result})
		remove[i+1] = true
		remove[i+2] = true
		i += 2
	}
	if len(folds) == 0 {
		return false
	}
	for _, f := range folds {
		idx := c.AddConstant(f.val)
		old := c.Instructions[f.at]
		c.Instructions[f.at] = chunk.Instr{Op: chunk.OpPushConst, A: int32(idx), Line: old.Line}
	}
	removeIndices(c, remove)
	return true
}

// deadBranch implements pass 2: a literal condition immediately followed
// by JUMP_IF_FALSE/JUMP_IF_TRUE resolves at compile time, becoming either
// an unconditional JUMP (branch always taken) or nothing at all (branch
// never taken, fall through).
func deadBranch(c *chunk.Chunk) bool {
	remove := map[int]bool{}
	changed := false
	for i := 0; i+1 < len(c.Instructions); i++ {
		lit, ok := literalAt(c, i)
		if !ok {
			continue
		}
		next := c.Instructions[i+1]
		if next.Op != chunk.OpJumpIfFalse && next.Op != chunk.OpJumpIfTrue {
			continue
		}
		if isJumpTarget(c, i) || isJumpTarget(c, i+1) {
			continue
		}
		takeJump := (next.Op == chunk.OpJumpIfFalse && !lit.Truthy()) ||
			(next.Op == chunk.OpJumpIfTrue && lit.Truthy())
		if takeJump {
			c.Instructions[i+1] = chunk.Instr{Op: chunk.OpJump, A: next.A, Line: next.Line}
		} else {
			remove[i+1] = true
		}
		remove[i] = true
		changed = true
		i++
	}
	if changed {
		removeIndices(c, remove)
	}
	return changed
}

// threadJumps implements pass 3: a jump whose target is itself an
// unconditional JUMP is rewritten to jump straight to that jump's target.
// Chains longer than one hop resolve over successive fixed-point rounds.
func threadJumps(c *chunk.Chunk) bool {
	changed := false
	for i, instr := range c.Instructions {
		switch instr.Op {
		case chunk.OpJump, chunk.OpJumpIfFalse, chunk.OpJumpIfTrue:
		default:
			continue
		}
		target := int(instr.A)
		if target < 0 || target >= len(c.Instructions) {
			continue
		}
		if tgt := c.Instructions[target]; tgt.Op == chunk.OpJump && int(tgt.A) != target {
			c.Instructions[i].A = tgt.A
			changed = true
		}
	}
	return changed
}

// removeRedundantScopes implements pass 4: a SCOPE_ENTER/SCOPE_LEAVE pair
// with no STORE_LOCAL at its own nesting depth between them carries no
// observable effect and can be dropped.
func removeRedundantScopes(c *chunk.Chunk) bool {
	remove := map[int]bool{}
	n := len(c.Instructions)
	for i := 0; i < n; i++ {
		if c.Instructions[i].Op != chunk.OpScopeEnter || isJumpTarget(c, i) {
			continue
		}
		j, hasLocal, ok := matchScopeEnd(c, i)
		if ok && !hasLocal && !isJumpTarget(c, j) {
			remove[i] = true
			remove[j] = true
		}
	}
	if len(remove) == 0 {
		return false
	}
	removeIndices(c, remove)
	return true
}

func matchScopeEnd(c *chunk.Chunk, i int) (j int, hasLocal bool, ok bool) {
	depth := 1
	for j := i + 1; j < len(c.Instructions); j++ {
		switch c.Instructions[j].Op {
		case chunk.OpScopeEnter:
			depth++
		case chunk.OpScopeLeave:
			depth--
			if depth == 0 {
				return j, hasLocal, true
			}
		case chunk.OpStoreLocal:
			if depth == 1 {
				hasLocal = true
			}
		}
	}
	return 0, false, false
}

var deadLoadOps = map[chunk.Op]bool{
	chunk.OpLoadLocal:  true,
	chunk.OpLoadBound:  true,
	chunk.OpLoadGlobal: true,
	chunk.OpPushConst:  true,
	chunk.OpPushTrue:   true,
	chunk.OpPushFalse:  true,
	chunk.OpPushVoid:   true,
	chunk.OpSLPeek:     true,
	chunk.OpDup:        true,
}

// removeDeadLoads implements pass 5: a value pushed only to be immediately
// discarded is dropped along with its POP.
func removeDeadLoads(c *chunk.Chunk) bool {
	remove := map[int]bool{}
	for i := 0; i+1 < len(c.Instructions); i++ {
		if !deadLoadOps[c.Instructions[i].Op] {
			continue
		}
		if c.Instructions[i+1].Op != chunk.OpPop {
			continue
		}
		if isJumpTarget(c, i) || isJumpTarget(c, i+1) {
			continue
		}
		remove[i] = true
		remove[i+1] = true
	}
	if len(remove) == 0 {
		return false
	}
	removeIndices(c, remove)
	return true
}

// removeVecAccessPair implements pass 6: wrapping a value in a
// one-element vector only to immediately access index 0 is a no-op.
func removeVecAccessPair(c *chunk.Chunk) bool {
	remove := map[int]bool{}
	for i := 0; i+1 < len(c.Instructions); i++ {
		a, b := c.Instructions[i], c.Instructions[i+1]
		if a.Op != chunk.OpMakeVec || a.A != 1 || b.Op != chunk.OpAccess || b.A != 0 {
			continue
		}
		if isJumpTarget(c, i) || isJumpTarget(c, i+1) {
			continue
		}
		remove[i] = true
		remove[i+1] = true
	}
	if len(remove) == 0 {
		return false
	}
	removeIndices(c, remove)
	return true
}

// removeIndices deletes the instructions named in remove, rebuilds the
// source map, and rewrites every surviving jump's target to account for
// the shift — landing on the next surviving instruction if the original
// target itself was removed.
func removeIndices(c *chunk.Chunk, remove map[int]bool) {
	oldToNew := make([]int, len(c.Instructions)+1)
	newInstrs := make([]chunk.Instr, 0, len(c.Instructions))
	for i, instr := range c.Instructions {
		if remove[i] {
			oldToNew[i] = -1
			continue
		}
		oldToNew[i] = len(newInstrs)
		newInstrs = append(newInstrs, instr)
	}
	oldToNew[len(c.Instructions)] = len(newInstrs)

	resolve := func(target int) int32 {
		for target < len(oldToNew) && oldToNew[target] == -1 {
			target++
		}
		return int32(oldToNew[target])
	}
	for i := range newInstrs {
		switch newInstrs[i].Op {
		case chunk.OpJump, chunk.OpJumpIfFalse, chunk.OpJumpIfTrue:
			newInstrs[i].A = resolve(int(newInstrs[i].A))
		}
	}

	newSM := make([]chunk.SourceMapEntry, 0, len(c.SourceMap))
	for _, e := range c.SourceMap {
		if e.IP < 0 || e.IP >= len(remove)+len(newInstrs) || remove[e.IP] {
			continue
		}
		newSM = append(newSM, chunk.SourceMapEntry{IP: oldToNew[e.IP], Line: e.Line})
	}
	c.Instructions = newInstrs
	c.SourceMap = newSM
}
