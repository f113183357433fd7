package chunk

// Instr is one bytecode instruction. Operand meaning depends on Op:
//
//	PUSH_CONST A         push Constants[A]
//	LOAD_LOCAL/STORE_LOCAL/LOAD_BOUND/STORE_BOUND A   Constants[A] holds the (Str) variable name
//	LOAD_GLOBAL A        Constants[A] holds the (Str) global name
//	MAKE_VEC A           pop A items, push Vec
//	MAKE_MAP A           pop 2*A items (k,v interleaved), push MapVal
//	MAKE_RANGE A         A: bit0=has-lo, bit1=has-hi
//	UN_OP/BIN_OP A       Constants[A] holds the (Str) operator lexeme
//	JUMP/JUMP_IF_FALSE/JUMP_IF_TRUE A   absolute instruction index
//	CALL/TAIL_CALL A     A = argument count
//	MAKE_CONCRETE A      A = index into the enclosing Chunk.Functions
//	ADD_VARIANT A        A = index into Chunk.Functions; TOS is the Generic/Concrete to extend
//	MAKE_LAMBDA A B      A = index into Functions, B = number of captures
//	LOOP_ENTER A         A = LoopKind
//	ACCESS_FIELD A       Constants[A] holds the (Str) field name
//	ACCESS A             A = argument count
//	QUEUE A              A=0: pop TOS, append to the nearest queue frame;
//	                     A=1: push the nearest queue frame's contents as
//	                     a Vec without draining it (bare `queue` read)
type Instr struct {
	Op   Op
	A    int32
	B    int32
	Line int32
}

// SourceMapEntry maps an instruction index to a source line (spec.md §4.3).
type SourceMapEntry struct {
	IP   int
	Line int
}

// ParamSpec is a compiled formal parameter: a name plus an optional
// constraint, stored as an index into the chunk's constants table rather
// than a value.Value field directly, so this package need not import
// pkg/value (which itself imports pkg/chunk for Concrete/Lambda bodies —
// see pkg/value/function.go for the cycle this avoids).
type ParamSpec struct {
	Name            string
	ConstraintConst int // index into Constants, -1 if unconstrained (Any)
}

// FuncMeta describes a function/lambda chunk's signature (spec.md §3.2).
type FuncMeta struct {
	Name    string
	Params  []ParamSpec
	Slurpy  bool
	Arity   int
	General bool // true when every ParamSpec is unconstrained
}

// Chunk is a compiled block of bytecode with its own constants table and
// source map (spec.md §4.3). Constants holds boxed value.Value entries as
// `any` to avoid an import cycle between pkg/chunk and pkg/value.
type Chunk struct {
	Name         string
	Instructions []Instr
	Constants    []any
	SourceMap    []SourceMapEntry
	Functions    []*Chunk
	Meta         *FuncMeta
	NumLocals    int

	// Decl holds the originating *ast.Box for a chunk compiled from a `box`
	// declaration's namespace, nil otherwise. Stored as `any` for the same
	// reason Constants is — pkg/ast is a leaf package so this is a one-way
	// dependency, but keeping the field untyped here means pkg/chunk still
	// doesn't need to know what an ast.Box looks like, only the VM does.
	Decl any
}

func New(name string) *Chunk {
	return &Chunk{Name: name}
}

// Emit appends an instruction and returns its index, mirroring the
// teacher's emit-then-patch compiler style.
func (c *Chunk) Emit(op Op, line int, operands ...int32) int {
	instr := Instr{Op: op, Line: int32(line)}
	if len(operands) > 0 {
		instr.A = operands[0]
	}
	if len(operands) > 1 {
		instr.B = operands[1]
	}
	idx := len(c.Instructions)
	c.Instructions = append(c.Instructions, instr)
	c.SourceMap = append(c.SourceMap, SourceMapEntry{IP: idx, Line: line})
	return idx
}

// PatchA rewrites the A operand of the instruction at idx, used for
// back-patching forward jumps once their target address is known.
func (c *Chunk) PatchA(idx int, a int32) {
	c.Instructions[idx].A = a
}

func (c *Chunk) Here() int { return len(c.Instructions) }

// AddConstant appends v (a boxed value.Value) and returns its index,
// deduplicating nothing — constant folding/deduping is the optimizer's job.
func (c *Chunk) AddConstant(v any) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// AddFunction registers a nested function/lambda chunk and returns its index.
func (c *Chunk) AddFunction(fn *Chunk) int {
	c.Functions = append(c.Functions, fn)
	return len(c.Functions) - 1
}

// LineAt returns the source line recorded for instruction ip, or 0.
func (c *Chunk) LineAt(ip int) int {
	for _, e := range c.SourceMap {
		if e.IP == ip {
			return e.Line
		}
	}
	return 0
}
