package vm

import (
	"github.com/google/uuid"

	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/chunk"
	"github.com/rmay/venlang/pkg/scope"
	"github.com/rmay/venlang/pkg/value"
	"github.com/rmay/venlang/pkg/verrors"
)

// invoke dispatches a CALL/TAIL_CALL/APPLY/box-construction against
// callee, per spec.md §4.6's call-target kinds. Builtin/Box never push a
// bytecode frame — they resolve their value immediately — and a Partial
// pushes one only when its callee does, so callers must check whether invoke grew m.frames before deciding whether
// to keep running the dispatch loop or read the pushed result straight
// off the stack (see callValue).
func (m *Machine) invoke(callee value.Value, args []value.Value, tail bool) error {
	switch c := callee.(type) {
	case *value.Partial:
		merged := make([]value.Value, 0, len(c.Args)+len(args))
		merged = append(merged, c.Args...)
		merged = append(merged, args...)
		return m.invoke(c.Callee, merged, tail)

	case *value.Builtin:
		if len(args) != c.Arity {
			return verrors.RuntimeError("%s expects %d argument(s), got %d", c.Name, c.Arity, len(args))
		}
		v, err := c.Impl(m, args)
		if err != nil {
			return wrapRuntime(err)
		}
		m.push(v)
		return nil

	case *value.Concrete:
		return m.invokeConcrete(c, args, tail)

	case *value.Generic:
		variant, err := selectVariant(c, args)
		if err != nil {
			return err
		}
		return m.invokeConcrete(variant, args, tail)

	case *value.Lambda:
		return m.invokeLambda(c, args, tail)

	case *value.FrozenLambda:
		return m.invokeLambda(c.Lambda, args, tail)

	case *value.Box:
		v, err := m.instantiateBox(c, args)
		if err != nil {
			return err
		}
		m.push(v)
		return nil

	default:
		return verrors.RuntimeError("%s is not callable", callee.Kind())
	}
}

func checkArity(name string, arity int, slurpy bool, got int) error {
	if slurpy {
		if got < arity {
			return verrors.RuntimeError("%s expects at least %d argument(s), got %d", name, arity, got)
		}
		return nil
	}
	if got != arity {
		return verrors.RuntimeError("%s expects %d argument(s), got %d", name, arity, got)
	}
	return nil
}

func (m *Machine) invokeConcrete(c *value.Concrete, args []value.Value, tail bool) error {
	if err := checkArity(c.Name, c.Arity, c.Slurpy, len(args)); err != nil {
		return err
	}
	if !c.Matches(args[:c.Arity]) {
		return verrors.RuntimeError("no matching variant for %s", c.Name)
	}
	parent, _ := c.Captured.(*scope.Scope)
	sc := scope.New(parent)
	bindParams(sc, c.Params, c.Arity, c.Slurpy, args)
	reuse := tail && len(m.frames) > 0
	if !reuse {
		m.trace.Push(verrors.Frame{Name: c.Name, File: c.Body.Name, Line: c.Body.LineAt(0)})
	}
	m.pushActivation(c.Body, sc, reuse)
	return nil
}

func (m *Machine) invokeLambda(l *value.Lambda, args []value.Value, tail bool) error {
	if err := checkArity("<lambda>", l.Arity, l.Slurpy, len(args)); err != nil {
		return err
	}
	parent, _ := l.Scope.(*scope.Scope)
	sc := scope.New(parent)
	bindParams(sc, l.Params, l.Arity, l.Slurpy, args)
	m.trace.Push(verrors.Frame{Name: "<lambda>", File: l.Body.Name, Line: l.Body.LineAt(0)})
	m.pushActivation(l.Body, sc, false)
	return nil
}

func bindParams(sc *scope.Scope, params []value.ConstrainedParam, arity int, slurpy bool, args []value.Value) {
	for i := 0; i < arity; i++ {
		sc.DefineLocal(params[i].Name, args[i])
	}
	if slurpy {
		sc.DefineLocal("*", value.NewVec(args[arity:]...))
	}
}

// selectVariant implements spec.md §4.6's dispatch: the first variant
// (already arity-descending, strict-before-general) whose arity and
// constraints both match wins.
func selectVariant(g *value.Generic, args []value.Value) (*value.Concrete, error) {
	for _, v := range g.Variants {
		if v.Slurpy {
			if len(args) < v.Arity {
				continue
			}
		} else if len(args) != v.Arity {
			continue
		}
		if v.Matches(args[:v.Arity]) {
			return v, nil
		}
	}
	return nil, verrors.RuntimeError("no matching variant for %s/%d", g.Name, len(args))
}

// instantiateBox builds a fresh BoxInstance by re-running the box's
// namespace body against a brand-new child scope for every call (spec.md
// §3.4) — see DESIGN.md for why this, not Scope.Clone of a static
// template, is what gives each instance independently-closing member
// functions.
func (m *Machine) instantiateBox(box *value.Box, args []value.Value) (value.Value, error) {
	if err := checkArity(box.Decl.Name, len(box.Params), false, len(args)); err != nil {
		return nil, err
	}
	for i, p := range box.Params {
		if !value.MatchConstraint(p.Constraint, args[i]) {
			return nil, verrors.RuntimeError("no matching constructor for %s", box.Decl.Name)
		}
	}
	parent, _ := box.Namespace.(*scope.Scope)
	ns := scope.New(parent)
	for i, p := range box.Params {
		ns.DefineLocal(p.Name, args[i])
	}
	base := len(m.frames)
	m.pushActivation(box.Body, ns, false)
	if _, err := m.run(base); err != nil {
		return nil, err
	}
	return &value.BoxInstance{Parent: box, Scope: ns, ID: uuid.NewString()}, nil
}

// opMakeConcrete builds the value a `fun`/`box` declaration produces: a
// *value.Box when the nested chunk was compiled from a box namespace (fn.Decl
// set by compileBox), a *value.Concrete otherwise. Captured/Namespace is the
// scope active at the declaration site, giving the result its closure.
func (m *Machine) opMakeConcrete(f *frame, idx int32) error {
	fn := f.chunk.Functions[idx]
	if decl, ok := fn.Decl.(*ast.Box); ok {
		m.push(&value.Box{
			Decl:      decl,
			Params:    resolveParams(fn),
			Namespace: f.sc,
			Body:      fn,
		})
		return nil
	}
	m.push(&value.Concrete{
		Tag:      ast.Tag{File: fn.Name, Line: fn.LineAt(0)},
		Name:     fn.Meta.Name,
		Params:   resolveParams(fn),
		Body:     fn,
		Slurpy:   fn.Meta.Slurpy,
		Arity:    fn.Meta.Arity,
		General:  fn.Meta.General,
		Captured: f.sc,
	})
	return nil
}

// opAddVariant extends the Generic/Concrete sitting on top of the stack with
// one more arity/constraint variant (spec.md §3.3: later `fun` declarations
// with the same name accumulate into a Generic rather than shadowing).
func (m *Machine) opAddVariant(f *frame, idx int32) error {
	fn := f.chunk.Functions[idx]
	variant := &value.Concrete{
		Tag:      ast.Tag{File: fn.Name, Line: fn.LineAt(0)},
		Name:     fn.Meta.Name,
		Params:   resolveParams(fn),
		Body:     fn,
		Slurpy:   fn.Meta.Slurpy,
		Arity:    fn.Meta.Arity,
		General:  fn.Meta.General,
		Captured: f.sc,
	}
	existing := m.pop()
	switch e := existing.(type) {
	case *value.Generic:
		e.AddVariant(variant)
		m.push(e)
	case *value.Concrete:
		g := &value.Generic{Name: e.Name}
		g.AddVariant(e)
		g.AddVariant(variant)
		m.push(g)
	default:
		return verrors.InternalError("ADD_VARIANT target is not a function value")
	}
	return nil
}

// resolveParams turns a compiled chunk's FuncMeta (name + constant-table
// index per parameter) into runtime ConstrainedParams. The constraint
// constants always live in fn's own table: compileParams in
// pkg/compiler/funcs.go adds them to the nested chunk being built, not
// the enclosing one.
func resolveParams(fn *chunk.Chunk) []value.ConstrainedParam {
	specs := fn.Meta.Params
	out := make([]value.ConstrainedParam, len(specs))
	for i, p := range specs {
		var constraint value.Value
		if p.ConstraintConst >= 0 {
			constraint = fn.Constants[p.ConstraintConst].(value.Value)
		}
		out[i] = value.ConstrainedParam{Name: p.Name, Constraint: constraint}
	}
	return out
}
