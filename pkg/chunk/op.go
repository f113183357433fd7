// Package chunk defines Ven's compiled bytecode representation: Op, the
// instruction opcode enum, and Chunk, a compiled unit of code with its own
// constants table and source map (spec.md §4.3). The style — a named byte
// enum plus a String()/Name() lookup and small instruction-builder helpers
// — follows the teacher's pkg/vm/opcodes.go, adapted from a flat
// addressable-byte-memory model to a typed {Op, operands} instruction
// stream, because Ven's constants are boxed value.Value (closures, vectors,
// generics, ...), not raw 32-bit words.
package chunk

import "fmt"

// Op is a bytecode opcode (spec.md §4.3's table).
type Op uint8

const (
	// Literals
	OpPushConst Op = iota
	OpPushTrue
	OpPushFalse
	OpPushVoid
	OpPushQuote

	// Variables
	OpLoadLocal
	OpStoreLocal
	OpLoadBound
	OpStoreBound
	OpLoadGlobal

	// Containers
	OpMakeVec
	OpMakeMap
	OpMakeRange

	// Arithmetic / coercion
	OpUnOp
	OpBinOp
	OpReduce
	OpIntoBool
	OpToNum
	OpToStr
	OpToVec

	// Control
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpPop
	OpDup

	// Calls
	OpCall
	OpTailCall
	OpApply
	OpReturn

	// Functions
	OpMakeConcrete
	OpAddVariant
	OpMakeLambda
	OpFreeze

	// Superlocal
	OpSLPush
	OpSLPop
	OpSLPeek
	OpSLFrameEnter
	OpSLFrameLeave

	// Scope
	OpScopeEnter
	OpScopeLeave

	// Loops
	OpLoopEnter
	OpLoopIter
	OpLoopBreak
	OpLoopNext

	// Meta
	OpEnsure
	OpEnsureShould
	OpDie
	OpQueue
	OpAccessField
	OpAccess

	opCount
)

var opNames = [...]string{
	"PUSH_CONST", "PUSH_TRUE", "PUSH_FALSE", "PUSH_VOID", "PUSH_QUOTE",
	"LOAD_LOCAL", "STORE_LOCAL", "LOAD_BOUND", "STORE_BOUND", "LOAD_GLOBAL",
	"MAKE_VEC", "MAKE_MAP", "MAKE_RANGE",
	"UN_OP", "BIN_OP", "REDUCE", "INTO_BOOL", "TO_NUM", "TO_STR", "TO_VEC",
	"JUMP", "JUMP_IF_FALSE", "JUMP_IF_TRUE", "POP", "DUP",
	"CALL", "TAIL_CALL", "APPLY", "RETURN",
	"MAKE_CONCRETE", "ADD_VARIANT", "MAKE_LAMBDA", "FREEZE",
	"SL_PUSH", "SL_POP", "SL_PEEK", "SL_FRAME_ENTER", "SL_FRAME_LEAVE",
	"SCOPE_ENTER", "SCOPE_LEAVE",
	"LOOP_ENTER", "LOOP_ITER", "LOOP_BREAK", "LOOP_NEXT",
	"ENSURE", "ENSURE_SHOULD", "DIE", "QUEUE", "ACCESS_FIELD", "ACCESS",
}

// Name returns the human-readable mnemonic for op, mirroring the teacher's
// OpcodeName(byte).
func (op Op) Name() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(op))
}

func (op Op) String() string { return op.Name() }

// LoopKind distinguishes the four loop state-machine shapes (spec.md §4.9).
type LoopKind uint8

const (
	LoopInfinite LoopKind = iota
	LoopBase
	LoopStep
	LoopComplex
)

// UnaryOp/BinaryOp name the operator tables of spec.md §4.8. Stored as
// strings on the instruction rather than a further enum, since the table
// is small and the operator text (`+`, `not`, `x`, ...) is already the most
// useful debugging representation.
type UnaryOp = string
type BinaryOp = string
