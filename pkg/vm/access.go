package vm

import (
	"github.com/rmay/venlang/pkg/value"
	"github.com/rmay/venlang/pkg/verrors"
)

// accessField implements ACCESS_FIELD: `.name` member/static lookup on a
// BoxInstance or Box (spec.md §3.4), key lookup on a Map, and otherwise
// uniform function call syntax — a bare global function wrapped as a
// Partial with head already bound as its first argument, so `x.len()`
// reads exactly like `len(x)` (spec.md §4.7).
func (m *Machine) accessField(head value.Value, name string) (value.Value, error) {
	switch h := head.(type) {
	case *value.BoxInstance:
		if v, ok := h.Scope.Get(name); ok {
			return v, nil
		}
		return m.ufcs(head, name)
	case *value.Box:
		if v, ok := h.Namespace.Get(name); ok {
			return v, nil
		}
		return m.ufcs(head, name)
	case *value.MapVal:
		if v, ok := h.Get(value.Str(name)); ok {
			return v, nil
		}
		return m.ufcs(head, name)
	default:
		return m.ufcs(head, name)
	}
}

// ufcs resolves name as a global function and partially applies it to
// head, giving every value uniform-function-call-syntax field access
// (spec.md §4.7): `v.double()` is `double(v)`.
func (m *Machine) ufcs(head value.Value, name string) (value.Value, error) {
	fn, ok := m.globals.Get(name)
	if !ok {
		return nil, verrors.RuntimeError("no field or function named %q", name)
	}
	return &value.Partial{Callee: fn, Args: []value.Value{head}}, nil
}

// accessIndex implements ACCESS: `head[args...]` indexing syntax (spec.md
// §4.7) — a single Num indexes Vec/Str, a single Range slices them, and a
// single key of any kind looks up a Map entry.
func (m *Machine) accessIndex(head value.Value, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, verrors.RuntimeError("indexing expects exactly one argument, got %d", len(args))
	}
	switch h := head.(type) {
	case value.Vec:
		switch idx := args[0].(type) {
		case value.Num:
			i, ok := idx.Int32()
			if !ok {
				return nil, verrors.RuntimeError("vec index must be an integer")
			}
			n := int(i)
			if n < 0 {
				n += len(h.Items)
			}
			if n < 0 || n >= len(h.Items) {
				return nil, verrors.RuntimeError("vec index %d out of range", i)
			}
			return h.Items[n], nil
		case value.Range:
			lo, hi := rangeBounds(idx, len(h.Items))
			if lo > hi || lo < 0 || hi > len(h.Items) {
				return value.NewVec(), nil
			}
			return value.NewVec(append([]value.Value{}, h.Items[lo:hi]...)...), nil
		default:
			return nil, verrors.RuntimeError("cannot index a vec with %s", idx.Kind())
		}

	case value.Str:
		runes := []rune(string(h))
		switch idx := args[0].(type) {
		case value.Num:
			i, ok := idx.Int32()
			if !ok {
				return nil, verrors.RuntimeError("str index must be an integer")
			}
			n := int(i)
			if n < 0 {
				n += len(runes)
			}
			if n < 0 || n >= len(runes) {
				return nil, verrors.RuntimeError("str index %d out of range", i)
			}
			return value.Str(runes[n]), nil
		case value.Range:
			lo, hi := rangeBounds(idx, len(runes))
			if lo > hi || lo < 0 || hi > len(runes) {
				return value.Str(""), nil
			}
			return value.Str(string(runes[lo:hi])), nil
		default:
			return nil, verrors.RuntimeError("cannot index a str with %s", idx.Kind())
		}

	case *value.MapVal:
		v, ok := h.Get(args[0])
		if !ok {
			return nil, verrors.RuntimeError("no entry for key %s", args[0].String())
		}
		return v, nil

	default:
		return nil, verrors.RuntimeError("%s is not indexable", h.Kind())
	}
}

// rangeBounds resolves r's (possibly open) Lo/Hi bounds into a [lo, hi)
// slice window against a sequence of the given length, clamping an open
// bound to the sequence's edge.
func rangeBounds(r value.Range, length int) (int, int) {
	lo, hi := 0, length
	if r.Lo != nil {
		if i, ok := r.Lo.Int32(); ok {
			lo = int(i)
			if lo < 0 {
				lo += length
			}
		}
	}
	if r.Hi != nil {
		if i, ok := r.Hi.Int32(); ok {
			hi = int(i) + 1
			if hi < 0 {
				hi += length
			}
		}
	}
	return lo, hi
}

// lambdaArity reports how many positional arguments v expects to be
// called with, used by applySpread to decide whether each item is passed
// positionally or pushed onto the superlocal stack for an implicit-`_`
// lambda body (spec.md §2.3, §4.9).
func lambdaArity(v value.Value) int {
	switch l := v.(type) {
	case *value.Lambda:
		return l.Arity
	case *value.FrozenLambda:
		return l.Lambda.Arity
	case *value.Concrete:
		return l.Arity
	case *value.Generic:
		if len(l.Variants) == 0 {
			return 0
		}
		return l.Variants[0].Arity
	case *value.Partial:
		return lambdaArity(l.Callee) - len(l.Args)
	default:
		return 0
	}
}

// applySpread implements the lambda spreads `|body| vec` / `|body|: vec`
// (spec.md §4.9): lam runs once per item in vec. A zero-arity lambda (the
// compiled spread body) receives each item through the superlocal stack
// (`_`), so `|_ + 1| [1, 2, 3]` reads naturally. Non-iterative (`|body|`)
// collects every result into a Vec; iterative (`|body|:`) threads the previous result's value back in as `&_`
// and yields only the final one.
func (m *Machine) applySpread(lam value.Value, vec value.Vec, iterative bool) (value.Value, error) {
	arity := lambdaArity(lam)
	var last value.Value = value.Unit
	results := make([]value.Value, 0, len(vec.Items))
	for _, item := range vec.Items {
		var v value.Value
		var err error
		if arity == 0 {
			v, err = m.callViaSuperlocal(lam, item, last, iterative)
		} else if iterative {
			v, err = m.callValue(lam, []value.Value{item, last})
		} else {
			v, err = m.callValue(lam, []value.Value{item})
		}
		if err != nil {
			return nil, err
		}
		last = v
		results = append(results, v)
	}
	if iterative {
		return last, nil
	}
	return value.NewVec(results...), nil
}

// callViaSuperlocal invokes a zero-arity lambda with item made available
// as `_` (and, when iterative, the previous result as `&_`) inside the
// callee's own superlocal frame — values pushed before the call would land
// in the caller's frame instead, invisible to the callee (spec.md §3.3:
// every activation gets its own superlocal frame), so the push happens
// only after invoke has entered the new frame.
func (m *Machine) callViaSuperlocal(lam value.Value, item, last value.Value, iterative bool) (value.Value, error) {
	base := len(m.frames)
	if err := m.invoke(lam, nil, false); err != nil {
		return nil, err
	}
	if len(m.frames) == base {
		// Builtin/Box (or a Partial over one) resolved immediately with no
		// new frame to inject into; its result is already on the stack.
		return m.pop(), nil
	}
	m.superlocal.Push(item)
	if iterative {
		m.superlocal.Push(last)
	}
	return m.run(base)
}
