package readtime

import (
	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/ops"
	"github.com/rmay/venlang/pkg/value"
	"github.com/rmay/venlang/pkg/verrors"
)

// Eval evaluates quotes in left-to-right statement order inside st
// (spec.md §4.4): the envelope's result is the queue (wrapped as a
// vector) if non-empty, else the last non-void statement value, else
// QVoid. Callers splice the returned quote back into the parse stream.
func Eval(st *State, quotes []ast.Quote) (ast.Quote, error) {
	tag := ast.Tag{}
	if len(quotes) > 0 {
		tag = quotes[len(quotes)-1].Tag()
	}
	last, err := evalBody(st, quotes)
	if err != nil {
		return nil, err
	}
	if len(*st.queuePtr) > 0 {
		items := append([]value.Value(nil), (*st.queuePtr)...)
		*st.queuePtr = nil
		return valueToQuote(tag, value.NewVec(items...)), nil
	}
	return valueToQuote(tag, last), nil
}

// evalBody runs quotes in order inside st and returns the last non-void
// statement value (or QVoid), without the envelope-level queue wrapping
// Eval applies at the top.
func evalBody(st *State, quotes []ast.Quote) (value.Value, error) {
	var last value.Value = value.Void{}
	for _, q := range quotes {
		v, err := evalQuote(st, q)
		if err != nil {
			return nil, err
		}
		if _, isVoid := v.(value.Void); !isVoid {
			last = v
		}
	}
	return last, nil
}

func readErrAt(tag ast.Tag, format string, args ...any) error {
	return verrors.ReadError(tag.File, tag.Line, 0, "", format, args...)
}

// runtimeErrAt marks a failure as catchable by `dies` (spec.md §7): a
// coercion, division-by-zero, or assertion failure arising from
// evaluating otherwise well-formed readtime code, as opposed to a
// structural problem (unresolved symbol, bad call shape).
func runtimeErrAt(tag ast.Tag, format string, args ...any) error {
	e := verrors.RuntimeError(format, args...)
	e.File = tag.File
	e.Line = tag.Line
	return e
}

func evalQuote(st *State, q ast.Quote) (value.Value, error) {
	if v, ok := quoteToValue(q); ok {
		return v, nil
	}
	tag := q.Tag()
	switch n := q.(type) {
	case *ast.Symbol:
		v, ok := st.get(n.Name)
		if !ok {
			return nil, readErrAt(tag, "unresolved readtime symbol %q", n.Name)
		}
		return v, nil

	case *ast.UPop:
		v, ok := st.popSuperlocal()
		if !ok {
			return nil, readErrAt(tag, "superlocal stack empty")
		}
		return v, nil

	case *ast.URef:
		v, ok := st.peekSuperlocal()
		if !ok {
			return nil, readErrAt(tag, "superlocal stack empty")
		}
		return v, nil

	case *ast.Vector:
		items := make([]value.Value, len(n.Items))
		for i, it := range n.Items {
			v, err := evalQuote(st, it)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return value.NewVec(items...), nil

	case *ast.Map:
		m := value.NewMap()
		for _, pair := range n.Pairs {
			k, err := evalQuote(st, pair.Key)
			if err != nil {
				return nil, err
			}
			v, err := evalQuote(st, pair.Value)
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return m, nil

	case *ast.Range:
		var lo, hi *value.Num
		if n.Lo != nil {
			v, err := evalQuote(st, n.Lo)
			if err != nil {
				return nil, err
			}
			num, err := ops.ToNum(v)
			if err != nil {
				return nil, err
			}
			lo = &num
		}
		if n.Hi != nil {
			v, err := evalQuote(st, n.Hi)
			if err != nil {
				return nil, err
			}
			num, err := ops.ToNum(v)
			if err != nil {
				return nil, err
			}
			hi = &num
		}
		return value.Range{Lo: lo, Hi: hi}, nil

	case *ast.Unary:
		operand, err := evalQuote(st, n.Operand)
		if err != nil {
			return nil, err
		}
		v, err := ops.Unary(n.Op, operand)
		if err != nil {
			return nil, runtimeErrAt(tag, "%v", err)
		}
		return v, nil

	case *ast.Binary:
		left, err := evalQuote(st, n.Left)
		if err != nil {
			return nil, err
		}
		if n.Op == "and" && !left.Truthy() {
			return left, nil
		}
		if n.Op == "or" && left.Truthy() {
			return left, nil
		}
		right, err := evalQuote(st, n.Right)
		if err != nil {
			return nil, err
		}
		v, err := ops.Binary(n.Op, left, right)
		if err != nil {
			return nil, runtimeErrAt(tag, "%v", err)
		}
		return v, nil

	case *ast.IntoBool:
		v, err := evalQuote(st, n.Value)
		if err != nil {
			return nil, err
		}
		return value.FromBool(v.Truthy()), nil

	case *ast.If:
		cond, err := evalQuote(st, n.Cond)
		if err != nil {
			return nil, err
		}
		if cond.Truthy() {
			return evalQuote(st, n.Succ)
		}
		if n.Alt != nil {
			return evalQuote(st, n.Alt)
		}
		return value.Void{}, nil

	case *ast.Block:
		child := st.With(nil, true)
		return evalBody(child, n.Body)

	case *ast.Assign:
		sym, ok := n.Target.(*ast.Symbol)
		if !ok {
			return nil, readErrAt(tag, "readtime assignment target must be a symbol")
		}
		v, err := evalQuote(st, n.Value)
		if err != nil {
			return nil, err
		}
		if n.Bind {
			st.defineLocal(sym.Name, v)
		} else {
			st.defineBound(sym.Name, v)
		}
		return v, nil

	case *ast.Ensure:
		v, err := evalQuote(st, n.Expr)
		if err != nil {
			return nil, err
		}
		if !v.Truthy() {
			return nil, runtimeErrAt(tag, "ensure failed")
		}
		return value.Void{}, nil

	case *ast.Dies:
		_, err := evalQuote(st, n.Expr)
		if err != nil {
			if verrors.IsRuntime(err) {
				return value.True, nil
			}
			return nil, err
		}
		return value.False, nil

	case *ast.Queue:
		v, err := evalQuote(st, n.Value)
		if err != nil {
			return nil, err
		}
		st.queue(v)
		return value.Void{}, nil

	case *ast.Call:
		name, ok := n.Callee.(*ast.Symbol)
		if !ok {
			return nil, readErrAt(tag, "readtime calls must name a builtin")
		}
		args := make([]value.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := evalQuote(st, a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		fn, ok := builtins[name.Name]
		if !ok {
			return nil, readErrAt(tag, "unknown readtime builtin %q", name.Name)
		}
		v, err := fn(st, args)
		if err != nil {
			return nil, readErrAt(tag, "%v", err)
		}
		return v, nil

	case *ast.BinarySpread:
		operand, err := evalQuote(st, n.Body)
		if err != nil {
			return nil, err
		}
		vec, ok := operand.(value.Vec)
		if !ok {
			vec = ops.ToVec(operand)
		}
		var acc value.Value
		for _, item := range vec.Items {
			if acc == nil {
				acc = item
				continue
			}
			acc, err = ops.Binary(n.Op, acc, item)
			if err != nil {
				return nil, runtimeErrAt(tag, "%v", err)
			}
		}
		if acc == nil {
			return value.Void{}, nil
		}
		return acc, nil

	case *ast.LambdaSpread:
		operand, err := evalQuote(st, n.Operand)
		if err != nil {
			return nil, err
		}
		vec, ok := operand.(value.Vec)
		if !ok {
			vec = ops.ToVec(operand)
		}
		out := make([]value.Value, 0, len(vec.Items))
		for _, item := range vec.Items {
			st.pushSuperlocal(item)
			v, err := evalQuote(st, n.Lambda)
			st.popSuperlocal()
			if err != nil {
				return nil, err
			}
			if n.Iterative {
				continue
			}
			out = append(out, v)
		}
		return value.NewVec(out...), nil

	case *ast.PatternEnvelope:
		child := st.With(nil, true)
		return evalQuote(child, n.Value)

	case *ast.Immediate:
		return evalQuote(st, n.Value)
	}
	return nil, readErrAt(tag, "%T is not supported at readtime", q)
}
