package hub

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/chunk"
	"github.com/rmay/venlang/pkg/compiler"
	"github.com/rmay/venlang/pkg/optimizer"
	"github.com/rmay/venlang/pkg/reader"
	"github.com/rmay/venlang/pkg/serialize"
	"github.com/rmay/venlang/pkg/value"
	"github.com/rmay/venlang/pkg/verrors"
	"github.com/rmay/venlang/pkg/vm"
)

// Stage names the pipeline checkpoint `-j/--just` halts at (spec.md §6).
type Stage string

const (
	StageRead      Stage = "read"
	StageTransform Stage = "transform"
	StageOptimize  Stage = "optimize"
	StageCompile   Stage = "compile"
	StageEvaluate  Stage = "evaluate"
)

// Options configures one Program run, mirroring spec.md §6's flag
// contract.
type Options struct {
	Just        Stage // halt after this stage; "" (StageEvaluate) runs to completion
	Serialize   bool  // -s/--serialize: JSON-encode the halted-at stage's product
	PassBudget  int   // optimizer passes; 0 means 8 (cmd/ven passes -O N as N*8)
	TestMode    bool  // -t/--test: activate `ensure`
	Trace       bool  // -i/--inspect-style verbose pipeline logging
	WithResult  bool  // -r/--result: caller wants the final value even without -s
}

// Result is what Program.Run hands back: whichever of these is non-nil
// corresponds to the stage Options.Just halted at.
type Result struct {
	Quotes   []ast.Quote // read/transform
	Chunk    *chunk.Chunk
	Value    value.Value // evaluate
	JSON     []byte      // set when Options.Serialize is true
}

// Program drives one Hub through Read → Compile → Optimize → Evaluate
// (spec.md §2.8) for a single top-level source unit, resolving any
// `expose` directives it names along the way.
type Program struct {
	Hub       *Hub
	Scheduler vm.Scheduler
	Log       *logrus.Entry
}

func NewProgram(h *Hub) *Program {
	log := h.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Program{Hub: h, Log: log}
}

// Run executes the full pipeline over src/file per opts.
func (p *Program) Run(src, file string, opts Options) (*Result, error) {
	if opts.PassBudget == 0 {
		opts.PassBudget = 8
	}
	quotes, distinct, exposes, err := reader.Read(src, file, opts.Trace)
	if err != nil {
		return nil, err
	}
	p.Log.WithField("file", file).WithField("distinct", distinct).Trace("read complete")

	if opts.Just == StageRead || opts.Just == StageTransform {
		return p.finish(&Result{Quotes: quotes}, nil, opts)
	}

	for _, name := range exposes {
		if _, err := p.Hub.resolveExpose(name, p); err != nil {
			return nil, err
		}
	}

	c, err := p.compileUnit(src, file, quotes)
	if err != nil {
		return nil, err
	}

	if opts.Just == StageCompile {
		return p.finish(&Result{Chunk: c}, nil, opts)
	}

	optimizer.Optimize([]*chunk.Chunk{c}, opts.PassBudget)

	if opts.Just == StageOptimize {
		return p.finish(&Result{Chunk: c}, nil, opts)
	}

	m := vm.New(p.Hub.Globals, opts.TestMode, stdoutWriter{}, p.Log)
	if p.Scheduler != nil {
		m.SetScheduler(p.Scheduler)
	}
	v, err := m.Execute(c)
	if err != nil {
		return nil, err
	}
	return p.finish(&Result{Value: v}, v, opts)
}

// loadUnit compiles+optimizes+runs one exposed unit's source against the
// shared Hub globals (so its top-level bindings land there for dependent
// units to see), returning the names the unit itself then exposes
// further up the chain — resolveExpose uses this for cycle detection and
// to accumulate Hub.GlobalNames.
func (p *Program) loadUnit(src, file string) ([]string, error) {
	quotes, _, exposes, err := reader.Read(src, file, false)
	if err != nil {
		return nil, err
	}
	for _, name := range exposes {
		if _, err := p.Hub.resolveExpose(name, p); err != nil {
			return nil, err
		}
	}
	c, err := p.compileUnit(src, file, quotes)
	if err != nil {
		return nil, err
	}
	optimizer.Optimize([]*chunk.Chunk{c}, 8)
	m := vm.New(p.Hub.Globals, false, stdoutWriter{}, p.Log)
	if _, err := m.Execute(c); err != nil {
		return nil, err
	}
	return topLevelNames(quotes), nil
}

// compileUnit compiles quotes, consulting Hub.Cache by a hash of src (not
// file — two units sharing identical text, e.g. the same library exposed
// under two names, share one cache entry).
func (p *Program) compileUnit(src, file string, quotes []ast.Quote) (*chunk.Chunk, error) {
	if cached, ok := p.Hub.Cache.Get(src); ok {
		return cached, nil
	}
	c, err := compiler.Compile(file, quotes, p.Hub.GlobalNames(), p.Log.Logger.IsLevelEnabled(logrus.TraceLevel))
	if err != nil {
		return nil, err
	}
	p.Hub.Cache.Put(src, c)
	return c, nil
}

// topLevelNames collects the names a unit's top-level `fun`/`box`
// declarations and `:=`/`=` assignments bind, mirroring
// pkg/compiler.Compiler.hoist's Fun/Box case one level up (module scope
// instead of a single compile-frame).
func topLevelNames(quotes []ast.Quote) []string {
	var names []string
	for _, q := range quotes {
		switch n := q.(type) {
		case *ast.Fun:
			names = append(names, n.Name)
		case *ast.Box:
			names = append(names, n.Name)
		case *ast.Assign:
			if sym, ok := n.Target.(*ast.Symbol); ok {
				names = append(names, sym.Name)
			}
		}
	}
	return names
}

func (p *Program) finish(r *Result, v value.Value, opts Options) (*Result, error) {
	if !opts.Serialize {
		return r, nil
	}
	var data []byte
	var err error
	switch {
	case r.Value != nil:
		data, err = serialize.ToJSON(r.Value)
	case r.Chunk != nil:
		data, err = serialize.ToJSON(value.NewQuote(chunkToQuoteStub(r.Chunk)))
	case len(r.Quotes) > 0:
		data, err = serializeQuotes(r.Quotes)
	default:
		data, err = serialize.ToJSON(value.Unit)
	}
	if err != nil {
		return nil, verrors.InternalError("serialize: %v", err)
	}
	r.JSON = data
	return r, nil
}

func serializeQuotes(quotes []ast.Quote) ([]byte, error) {
	items := make([]value.Value, len(quotes))
	for i, q := range quotes {
		items[i] = value.NewQuote(q)
	}
	return serialize.ToJSON(value.NewVec(items...))
}

// chunkToQuoteStub gives the "compile"/"optimize" halt points something
// serializable: a bytecode chunk isn't itself an ast.Quote, so it's
// rendered as a quoted description rather than reusing Quote's shape.
func chunkToQuoteStub(c *chunk.Chunk) ast.Quote {
	return &ast.String{Bytes: c.Name}
}

// stdoutWriter is the default value.StdWriter a Program hands its
// Machine; a CLI host wanting a different sink (a buffer for tests, a
// socket for the resolver daemon) constructs its own vm.Machine instead
// of going through Program.Run.
type stdoutWriter struct{}

func (stdoutWriter) WriteString(s string) (int, error) {
	return os.Stdout.WriteString(s)
}
