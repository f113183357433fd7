package compiler

import (
	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/chunk"
	"github.com/rmay/venlang/pkg/value"
	"github.com/rmay/venlang/pkg/verrors"
)

// compileParams resolves each formal's constraint quote to a constant
// slot and declares the parameter name in the callee's frame.
func (c *Compiler) compileParams(child *Compiler, params []ast.ConstrainedParam) ([]chunk.ParamSpec, error) {
	specs := make([]chunk.ParamSpec, len(params))
	for i, p := range params {
		child.frame.declare(p.Name)
		idx := -1
		if p.Constraint != nil {
			v, err := resolveConstraint(p.Constraint)
			if err != nil {
				return nil, err
			}
			idx = child.chunk.AddConstant(v)
		}
		specs[i] = chunk.ParamSpec{Name: p.Name, ConstraintConst: idx}
	}
	return specs, nil
}

// applyGiven folds a whole-signature `given TYPE` clause (spec.md §8
// scenario 2: `fun f(x) given num = ...`) into its sole parameter's
// constraint, leaving params with their own `x: TYPE` constraint (or a
// multi-param signature) untouched — `given` only disambiguates the
// single-argument case the grammar actually produces it for.
func applyGiven(params []ast.ConstrainedParam, given ast.Quote) []ast.ConstrainedParam {
	if given == nil || len(params) != 1 || params[0].Constraint != nil {
		return params
	}
	return []ast.ConstrainedParam{{Name: params[0].Name, Constraint: given}}
}

func newFuncMeta(name string, specs []chunk.ParamSpec, slurpy bool) *chunk.FuncMeta {
	general := true
	for _, s := range specs {
		if s.ConstraintConst >= 0 {
			general = false
			break
		}
	}
	return &chunk.FuncMeta{Name: name, Params: specs, Slurpy: slurpy, Arity: len(specs), General: general}
}

// compileFun lowers `fun NAME(params) given G = body` / `{ body }` into a
// nested chunk, then either MAKE_CONCRETE + STORE (first definition of
// NAME in this unit) or LOAD + ADD_VARIANT + STORE (a later `fun NAME`
// extending an already-declared Generic), per spec.md §4.6's variant
// ordering — both forms rely on the hoisting pass in compileBody having
// already declared every Fun/Box name in this frame.
func (c *Compiler) compileFun(n *ast.Fun) error {
	line := n.Tag().Line
	child := &Compiler{chunk: chunk.New(n.Name), frame: newFrame(c.frame), globals: c.globals, funName: n.Name, trace: c.trace}
	specs, err := c.compileParams(child, applyGiven(n.Params, n.Given))
	if err != nil {
		return err
	}
	child.chunk.Meta = newFuncMeta(n.Name, specs, n.Slurpy)
	if n.Slurpy {
		child.frame.declare("*")
	}
	if err := child.compileStatement(n.Body, true); err != nil {
		return err
	}
	child.chunk.Emit(chunk.OpReturn, line)
	idx := int32(c.chunk.AddFunction(child.chunk))

	first := !c.funcSeen(n.Name)
	if first {
		c.chunk.Emit(chunk.OpMakeConcrete, line, idx)
		c.markFuncSeen(n.Name)
	} else {
		c.chunk.Emit(chunk.OpLoadLocal, line, c.constStr(n.Name))
		c.chunk.Emit(chunk.OpAddVariant, line, idx)
	}
	c.chunk.Emit(chunk.OpDup, line)
	c.frame.declare(n.Name)
	c.chunk.Emit(chunk.OpStoreLocal, line, c.constStr(n.Name))
	return nil
}

// funcSeen and markFuncSeen track, per Compiler instance, which fun names have already
// emitted a MAKE_CONCRETE in this compile unit (so a repeated `fun NAME`
// becomes an ADD_VARIANT instead).
func (c *Compiler) funcSeen(name string) bool {
	if c.seen == nil {
		return false
	}
	return c.seen[name]
}

func (c *Compiler) markFuncSeen(name string) {
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	c.seen[name] = true
}

func (c *Compiler) compileLambda(n *ast.Lambda) error {
	line := n.Tag().Line
	child := &Compiler{chunk: chunk.New("<lambda>"), frame: newFrame(c.frame), globals: c.globals, trace: c.trace}
	specs, err := c.compileParams(child, n.Params)
	if err != nil {
		return err
	}
	child.chunk.Meta = newFuncMeta("<lambda>", specs, n.Slurpy)
	if n.Slurpy {
		child.frame.declare("*")
	}
	if err := child.compileStatement(n.Body, true); err != nil {
		return err
	}
	child.chunk.Emit(chunk.OpReturn, line)
	idx := int32(c.chunk.AddFunction(child.chunk))
	c.chunk.Emit(chunk.OpMakeLambda, line, idx, 0)
	return nil
}

// compileImplicitLambda wraps body as a zero-parameter closure over the
// current scope, exactly like compileLambda does for an explicit `\->`
// lambda — used for a spread's body expression, which the reader parses
// as a bare expr rather than an *ast.Lambda.
func (c *Compiler) compileImplicitLambda(body ast.Quote) error {
	line := body.Tag().Line
	child := &Compiler{chunk: chunk.New("<spread>"), frame: newFrame(c.frame), globals: c.globals, trace: c.trace}
	child.chunk.Meta = newFuncMeta("<spread>", nil, false)
	if err := child.compileStatement(body, true); err != nil {
		return err
	}
	child.chunk.Emit(chunk.OpReturn, line)
	idx := int32(c.chunk.AddFunction(child.chunk))
	c.chunk.Emit(chunk.OpMakeLambda, line, idx, 0)
	return nil
}

// compileBox lowers `box NAME(params) given G { namespace }` (spec.md
// §3.2/§3.4): a declaration whose namespace block compiles like a
// function body producing a Box's member scope, with its own
// MAKE_CONCRETE-style construction op reused for the namespace.
func (c *Compiler) compileBox(n *ast.Box) error {
	line := n.Tag().Line
	child := &Compiler{chunk: chunk.New(n.Name), frame: newFrame(c.frame), globals: c.globals, trace: c.trace}
	specs, err := c.compileParams(child, applyGiven(n.Params, n.Given))
	if err != nil {
		return err
	}
	child.chunk.Meta = newFuncMeta(n.Name, specs, false)
	child.chunk.Decl = n
	ns, ok := n.Namespace.(*ast.Block)
	if !ok {
		return verrors.CompileError(n.Tag().File, n.Tag().Line, "box namespace must be a block")
	}
	if err := child.compileBody(ns.Body, false); err != nil {
		return err
	}
	child.chunk.Emit(chunk.OpReturn, line)
	idx := int32(c.chunk.AddFunction(child.chunk))
	c.chunk.Emit(chunk.OpMakeConcrete, line, idx)
	c.chunk.Emit(chunk.OpDup, line)
	c.frame.declare(n.Name)
	c.chunk.Emit(chunk.OpStoreLocal, line, c.constStr(n.Name))
	return nil
}

// resolveConstraint evaluates a parameter constraint quote at compile
// time into a value.Value the VM can match against (spec.md §3.3): a bare
// type-name symbol, a literal, or a `lead(args...)` compound-type call.
func resolveConstraint(q ast.Quote) (value.Value, error) {
	tag := q.Tag()
	switch n := q.(type) {
	case *ast.Symbol:
		if n.Name == "any" {
			return value.AnyValue{}, nil
		}
		if t, ok := builtinTypes()[n.Name]; ok {
			return t, nil
		}
		return nil, verrors.CompileError(tag.File, tag.Line, "unknown type constraint %q", n.Name)
	case *ast.String:
		return value.Str(n.Bytes), nil
	case *ast.Number:
		num, ok := value.NumFromString(n.Lexeme)
		if !ok {
			return nil, verrors.CompileError(tag.File, tag.Line, "invalid number constraint %q", n.Lexeme)
		}
		return num, nil
	case *ast.True:
		return value.True, nil
	case *ast.False:
		return value.False, nil
	case *ast.Call:
		lead, ok := n.Callee.(*ast.Symbol)
		if !ok {
			return nil, verrors.CompileError(tag.File, tag.Line, "compound type constraint must lead with a type name")
		}
		leadType, ok := builtinTypes()[lead.Name]
		if !ok {
			return nil, verrors.CompileError(tag.File, tag.Line, "unknown compound type lead %q", lead.Name)
		}
		args := make([]value.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := resolveConstraint(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return value.CompoundType{Lead: leadType, Args: args}, nil
	default:
		return nil, verrors.CompileError(tag.File, tag.Line, "%T is not a valid type constraint", q)
	}
}

// builtinTypes is the compiler's base type registry for constraint
// resolution (spec.md §3.2's base types). It is the only source of type
// names for constraints, so a unit compiles in isolation.
func builtinTypes() map[string]value.Type {
	mk := func(name string, pred func(value.Value) bool) value.Type {
		return value.Type{Name: name, Predicate: pred}
	}
	return map[string]value.Type{
		"num":   mk("num", func(v value.Value) bool { _, ok := v.(value.Num); return ok }),
		"str":   mk("str", func(v value.Value) bool { _, ok := v.(value.Str); return ok }),
		"vec":   mk("vec", func(v value.Value) bool { _, ok := v.(value.Vec); return ok }),
		"map":   mk("map", func(v value.Value) bool { _, ok := v.(*value.MapVal); return ok }),
		"bool":  mk("bool", func(v value.Value) bool { _, ok := v.(value.Bool); return ok }),
		"regex": mk("regex", func(v value.Value) bool { _, ok := v.(value.Regex); return ok }),
		"range": mk("range", func(v value.Value) bool { _, ok := v.(value.Range); return ok }),
		"quote": mk("quote", func(v value.Value) bool { _, ok := v.(*value.QuoteVal); return ok }),
		"type": mk("type", func(v value.Value) bool {
			switch v.(type) {
			case value.Type, value.CompoundType, value.AnyValue:
				return true
			default:
				return false
			}
		}),
		"fun": mk("fun", func(v value.Value) bool {
			switch v.(type) {
			case *value.Concrete, *value.Generic, *value.Lambda, *value.FrozenLambda, *value.Builtin, *value.Partial:
				return true
			default:
				return false
			}
		}),
		"box": mk("box", func(v value.Value) bool {
			switch v.(type) {
			case *value.Box, *value.BoxInstance:
				return true
			default:
				return false
			}
		}),
	}
}
