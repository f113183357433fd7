// Package vm executes compiled chunk.Chunk bytecode (spec.md §4.5): a
// value-stack machine with an explicit call-frame stack (not Go-call
// recursion, so a dies catch region can unwind an arbitrary number of
// nested calls), a superlocal stack (`_`/`&_`), and a queue-frame stack
// (one per function/lambda/box activation) backing the `queue`
// accumulator. Op handlers lean on pkg/ops for every coercion/operator so
// the VM can never disagree with the optimizer's constant folding, which
// uses the same functions.
package vm

import (
	"github.com/sirupsen/logrus"

	"github.com/rmay/venlang/pkg/chunk"
	"github.com/rmay/venlang/pkg/ops"
	"github.com/rmay/venlang/pkg/scope"
	"github.com/rmay/venlang/pkg/value"
	"github.com/rmay/venlang/pkg/verrors"
)

// frame is one call activation: a chunk, its instruction pointer, and the
// scope it is executing against.
type frame struct {
	chunk *chunk.Chunk
	ip    int
	sc    *scope.Scope
}

func (f *frame) constv(i int32) value.Value {
	return f.chunk.Constants[i].(value.Value)
}

// catchPoint records a `dies` catch region opened by ENSURE_SHOULD, enough
// to unwind back to it from anywhere a RuntimeError can surface — possibly
// several call frames deeper.
type catchPoint struct {
	resumeIP    int
	frameDepth  int
	stackDepth  int
	slDepth     int
	queueDepth  int
	traceDepth  int
}

// Scheduler dispatches a frozen lambda to run concurrently (spec.md §5);
// pkg/scheduler implements this. A nil Scheduler makes `spawn` run its
// lambda inline, synchronously, on the calling Machine instead.
type Scheduler interface {
	Spawn(run func() (value.Value, error)) (value.Value, error)
}

// Machine is Ven's bytecode interpreter (spec.md §4.5). It implements
// value.Context (for Builtin.Impl) and value.MachineHandle (for
// FrozenLambda.Machine).
type Machine struct {
	stack      []value.Value
	frames     []*frame
	catches    []catchPoint
	queue      [][]value.Value
	loopMarks  []int
	superlocal *scope.Superlocal
	trace      *scope.Trace
	globals    *scope.Scope
	testMode   bool
	stdout     value.StdWriter
	scheduler  Scheduler
	log        *logrus.Entry
}

// New constructs a Machine whose globals are rooted at globalScope (the
// basis plus any exposed units already bound into it). testMode gates
// `ensure` (spec.md §7: a no-op unless `-t/--test` is active).
func New(globalScope *scope.Scope, testMode bool, stdout value.StdWriter, log *logrus.Entry) *Machine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Machine{
		superlocal: scope.NewSuperlocal(),
		trace:      scope.NewTrace(),
		globals:    globalScope,
		testMode:   testMode,
		stdout:     stdout,
		log:        log,
	}
}

// SetScheduler wires a cooperative scheduler for `spawn` (pkg/scheduler);
// until called, spawned lambdas just run inline.
func (m *Machine) SetScheduler(s Scheduler) { m.scheduler = s }

// Execute runs c to completion against the Machine's global scope and
// returns its resulting value (spec.md §4.5's top-level Evaluate stage).
func (m *Machine) Execute(c *chunk.Chunk) (value.Value, error) {
	base := len(m.frames)
	m.pushActivation(c, m.globals, false)
	return m.run(base)
}

func (m *Machine) push(v value.Value) { m.stack = append(m.stack, v) }

func (m *Machine) pop() value.Value {
	n := len(m.stack) - 1
	v := m.stack[n]
	m.stack = m.stack[:n]
	return v
}

func (m *Machine) peek() value.Value { return m.stack[len(m.stack)-1] }

// run drives the fetch/decode/dispatch loop until the frame stack returns
// to depth base, then pops and returns the single resulting value.
func (m *Machine) run(base int) (value.Value, error) {
	for len(m.frames) > base {
		if err := m.step(); err != nil {
			if m.unwind(err, base) {
				continue
			}
			return nil, err
		}
	}
	if len(m.stack) == 0 {
		return value.Unit, nil
	}
	return m.pop(), nil
}

// unwind tries to resolve err against the nearest open catch region at or
// above base. It refuses to unwind past base (a catch belonging to an
// ancestor activation the caller doesn't own) by requiring the catch's
// frameDepth to be >= base.
func (m *Machine) unwind(err error, base int) bool {
	if !verrors.IsRuntime(err) || len(m.catches) == 0 {
		return false
	}
	c := m.catches[len(m.catches)-1]
	if c.frameDepth < base {
		return false
	}
	m.catches = m.catches[:len(m.catches)-1]
	m.frames = m.frames[:c.frameDepth]
	if len(m.stack) > c.stackDepth {
		m.stack = m.stack[:c.stackDepth]
	}
	for m.superlocal.Depth() > c.slDepth {
		m.superlocal.LeaveFrame()
	}
	if len(m.queue) > c.queueDepth {
		m.queue = m.queue[:c.queueDepth]
	}
	for m.trace.Depth() > c.traceDepth {
		m.trace.Pop()
	}
	m.frames[len(m.frames)-1].ip = c.resumeIP
	m.push(value.True)
	return true
}

func wrapRuntime(err error) error {
	if err == nil {
		return nil
	}
	if ve, ok := err.(*verrors.VenError); ok {
		return ve
	}
	return verrors.RuntimeError("%v", err)
}

// step executes exactly one instruction of the current (topmost) frame.
func (m *Machine) step() error {
	f := m.frames[len(m.frames)-1]
	if f.ip >= len(f.chunk.Instructions) {
		return m.opReturn(f)
	}
	instr := f.chunk.Instructions[f.ip]
	f.ip++
	if m.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		m.log.WithField("chunk", f.chunk.Name).WithField("ip", f.ip-1).
			Tracef("%s a=%d b=%d", instr.Op, instr.A, instr.B)
	}

	switch instr.Op {
	case chunk.OpPushConst:
		m.push(f.constv(instr.A))
	case chunk.OpPushTrue:
		m.push(value.True)
	case chunk.OpPushFalse:
		m.push(value.False)
	case chunk.OpPushVoid:
		m.push(value.Unit)
	case chunk.OpPushQuote:
		m.push(f.constv(instr.A))

	case chunk.OpLoadLocal, chunk.OpLoadBound:
		name := string(f.constv(instr.A).(value.Str))
		v, ok := f.sc.Get(name)
		if !ok {
			return verrors.RuntimeError("unbound name %q", name)
		}
		m.push(v)
	case chunk.OpStoreLocal:
		name := string(f.constv(instr.A).(value.Str))
		f.sc.DefineLocal(name, m.pop())
	case chunk.OpStoreBound:
		name := string(f.constv(instr.A).(value.Str))
		f.sc.DefineBound(name, m.pop())
	case chunk.OpLoadGlobal:
		name := string(f.constv(instr.A).(value.Str))
		v, ok := m.globals.Get(name)
		if !ok {
			return verrors.RuntimeError("unbound global %q", name)
		}
		m.push(v)

	case chunk.OpMakeVec:
		n := int(instr.A)
		items := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			items[i] = m.pop()
		}
		m.push(value.NewVec(items...))
	case chunk.OpMakeMap:
		n := int(instr.A)
		mv := value.NewMap()
		pairs := make([][2]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			v := m.pop()
			k := m.pop()
			pairs[i] = [2]value.Value{k, v}
		}
		for _, p := range pairs {
			mv.Set(p[0], p[1])
		}
		m.push(mv)
	case chunk.OpMakeRange:
		var lo, hi *value.Num
		if instr.A&2 != 0 {
			n, err := ops.ToNum(m.pop())
			if err != nil {
				return wrapRuntime(err)
			}
			hi = &n
		}
		if instr.A&1 != 0 {
			n, err := ops.ToNum(m.pop())
			if err != nil {
				return wrapRuntime(err)
			}
			lo = &n
		}
		m.push(value.Range{Lo: lo, Hi: hi})

	case chunk.OpUnOp:
		operand := m.pop()
		op := string(f.constv(instr.A).(value.Str))
		v, err := ops.Unary(op, operand)
		if err != nil {
			return wrapRuntime(err)
		}
		m.push(v)
	case chunk.OpBinOp:
		right := m.pop()
		left := m.pop()
		op := string(f.constv(instr.A).(value.Str))
		v, err := ops.Binary(op, left, right)
		if err != nil {
			return wrapRuntime(err)
		}
		m.push(v)
	case chunk.OpReduce:
		vec, ok := m.pop().(value.Vec)
		if !ok {
			return verrors.InternalError("REDUCE operand is not a vec")
		}
		op := string(f.constv(instr.A).(value.Str))
		var acc value.Value
		for _, item := range vec.Items {
			if acc == nil {
				acc = item
				continue
			}
			v, err := ops.Binary(op, acc, item)
			if err != nil {
				return wrapRuntime(err)
			}
			acc = v
		}
		if acc == nil {
			acc = value.Unit
		}
		m.push(acc)
	case chunk.OpIntoBool:
		m.push(value.FromBool(m.pop().Truthy()))
	case chunk.OpToNum:
		n, err := ops.ToNum(m.pop())
		if err != nil {
			return wrapRuntime(err)
		}
		m.push(n)
	case chunk.OpToStr:
		m.push(ops.ToStr(m.pop()))
	case chunk.OpToVec:
		m.push(ops.ToVec(m.pop()))

	case chunk.OpJump:
		f.ip = int(instr.A)
	case chunk.OpJumpIfFalse:
		v := m.pop()
		if !v.Truthy() {
			f.ip = int(instr.A)
		}
	case chunk.OpJumpIfTrue:
		v := m.pop()
		if v.Truthy() {
			f.ip = int(instr.A)
		}
	case chunk.OpPop:
		m.pop()
	case chunk.OpDup:
		m.push(m.peek())

	case chunk.OpCall, chunk.OpTailCall:
		n := int(instr.A)
		args := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = m.pop()
		}
		callee := m.pop()
		return m.invoke(callee, args, instr.Op == chunk.OpTailCall)
	case chunk.OpApply:
		lam := m.pop()
		vec, ok := m.pop().(value.Vec)
		if !ok {
			return verrors.InternalError("APPLY operand is not a vec")
		}
		v, err := m.applySpread(lam, vec, instr.A != 0)
		if err != nil {
			return err
		}
		m.push(v)
	case chunk.OpReturn:
		return m.opReturn(f)

	case chunk.OpMakeConcrete:
		return m.opMakeConcrete(f, instr.A)
	case chunk.OpAddVariant:
		return m.opAddVariant(f, instr.A)
	case chunk.OpMakeLambda:
		fn := f.chunk.Functions[instr.A]
		m.push(&value.Lambda{
			Scope:  f.sc,
			Params: resolveParams(fn),
			Arity:  fn.Meta.Arity,
			Slurpy: fn.Meta.Slurpy,
			Body:   fn,
		})
	case chunk.OpFreeze:
		lam, ok := m.pop().(*value.Lambda)
		if !ok {
			return verrors.RuntimeError("freeze requires a lambda")
		}
		m.push(&value.FrozenLambda{Lambda: lam, Machine: m})

	case chunk.OpSLPush:
		m.superlocal.Push(m.pop())
	case chunk.OpSLPop:
		v, ok := m.superlocal.Pop()
		if !ok {
			return verrors.RuntimeError("no superlocal value available")
		}
		m.push(v)
	case chunk.OpSLPeek:
		v, ok := m.superlocal.Peek()
		if !ok {
			return verrors.RuntimeError("no superlocal value available")
		}
		m.push(v)
	case chunk.OpSLFrameEnter:
		m.superlocal.EnterFrame()
	case chunk.OpSLFrameLeave:
		m.superlocal.LeaveFrame()

	case chunk.OpScopeEnter:
		f.sc = f.sc.Child()
	case chunk.OpScopeLeave:
		f.sc = f.sc.ParentScope()

	case chunk.OpLoopEnter:
		m.loopMarks = append(m.loopMarks, len(m.curQueue()))
	case chunk.OpLoopIter:
		// marker only; nothing to do per-iteration at the VM level.
	case chunk.OpLoopBreak:
		n := len(m.loopMarks) - 1
		mark := m.loopMarks[n]
		m.loopMarks = m.loopMarks[:n]
		added := m.curQueue()[mark:]
		if len(added) == 0 {
			m.push(value.Unit)
		} else {
			m.push(value.NewVec(append([]value.Value{}, added...)...))
		}
	case chunk.OpLoopNext:
		for i := int32(0); i < instr.A; i++ {
			f.sc = f.sc.ParentScope()
			if len(m.loopMarks) > 0 {
				m.loopMarks = m.loopMarks[:len(m.loopMarks)-1]
			}
		}

	case chunk.OpEnsure:
		v := m.pop()
		if !m.testMode {
			m.push(value.Unit)
			return nil
		}
		if !v.Truthy() {
			return verrors.RuntimeError("ensure failed")
		}
		m.push(value.Unit)
	case chunk.OpEnsureShould:
		m.catches = append(m.catches, catchPoint{
			resumeIP:   int(instr.A),
			frameDepth: len(m.frames),
			stackDepth: len(m.stack),
			slDepth:    m.superlocal.Depth(),
			queueDepth: len(m.queue),
			traceDepth: m.trace.Depth(),
		})
	case chunk.OpDie:
		if len(m.catches) > 0 {
			m.catches = m.catches[:len(m.catches)-1]
		}
		m.pop()
		m.push(value.False)

	case chunk.OpQueue:
		if instr.A == 1 {
			cur := m.curQueue()
			m.push(value.NewVec(append([]value.Value{}, cur...)...))
			return nil
		}
		v := m.pop()
		top := len(m.queue) - 1
		m.queue[top] = append(m.queue[top], v)

	case chunk.OpAccessField:
		head := m.pop()
		name := string(f.constv(instr.A).(value.Str))
		v, err := m.accessField(head, name)
		if err != nil {
			return err
		}
		m.push(v)
	case chunk.OpAccess:
		n := int(instr.A)
		args := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = m.pop()
		}
		head := m.pop()
		v, err := m.accessIndex(head, args)
		if err != nil {
			return err
		}
		m.push(v)

	default:
		return verrors.InternalError("unimplemented opcode %s", instr.Op)
	}
	return nil
}

func (m *Machine) curQueue() []value.Value {
	return m.queue[len(m.queue)-1]
}

// opReturn implements RETURN: pop the expression value, tear down this
// activation's superlocal/queue frame, pop the call frame, and push the
// value back for the caller (or for run() to hand back to Go).
func (m *Machine) opReturn(f *frame) error {
	v := m.pop()
	m.superlocal.LeaveFrame()
	m.queue = m.queue[:len(m.queue)-1]
	m.frames = m.frames[:len(m.frames)-1]
	m.trace.Pop()
	m.push(v)
	return nil
}

// pushActivation starts a new call: tail reuses the current frame in
// place (true tail-call elimination — same superlocal/queue frame, since
// it's the same logical activation recursing), otherwise a fresh frame,
// superlocal frame, and queue frame are pushed.
func (m *Machine) pushActivation(body *chunk.Chunk, sc *scope.Scope, tail bool) {
	if tail && len(m.frames) > 0 {
		top := m.frames[len(m.frames)-1]
		top.chunk = body
		top.ip = 0
		top.sc = sc
		return
	}
	m.superlocal.EnterFrame()
	m.queue = append(m.queue, nil)
	m.frames = append(m.frames, &frame{chunk: body, ip: 0, sc: sc})
}

// callValue invokes fn synchronously and returns its single result,
// re-entering the dispatch loop if invoke pushed a bytecode frame
// (Concrete/Generic/Lambda, or a Partial over one) or using the value
// invoke already produced directly (Builtin/Box, or a Partial over one).
func (m *Machine) callValue(fn value.Value, args []value.Value) (value.Value, error) {
	base := len(m.frames)
	if err := m.invoke(fn, args, false); err != nil {
		return nil, err
	}
	if len(m.frames) == base {
		return m.pop(), nil
	}
	return m.run(base)
}

// value.Context implementation, used by Builtin.Impl.

func (m *Machine) Superlocal() (value.Value, bool) { return m.superlocal.Peek() }
func (m *Machine) PushSuperlocal(v value.Value)    { m.superlocal.Push(v) }
func (m *Machine) Die(message string) error        { return verrors.RuntimeError(message) }
func (m *Machine) Stdout() value.StdWriter         { return m.stdout }

func (m *Machine) Spawn(fn *value.FrozenLambda, args []value.Value) (value.Value, error) {
	return m.SpawnFrozen(fn, args)
}

// value.MachineHandle implementation, used by FrozenLambda.Machine.

func (m *Machine) SpawnFrozen(fn *value.FrozenLambda, args []value.Value) (value.Value, error) {
	run := func() (value.Value, error) { return m.callValue(fn.Lambda, args) }
	if m.scheduler == nil {
		return run()
	}
	return m.scheduler.Spawn(run)
}
