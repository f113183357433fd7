package ops

import (
	"fmt"
	"math/big"

	"github.com/rmay/venlang/pkg/value"
)

// Binary applies spec.md §4.8's binary operator table. `and`/`or`/`is` do
// not evaluate their right-hand side coercively; the caller (VM or readtime
// evaluator) is expected to short-circuit `and`/`or` itself when possible —
// Binary still implements the non-short-circuiting fallback for BIN_OP.
func Binary(op string, left, right value.Value) (value.Value, error) {
	switch op {
	case "and":
		if !left.Truthy() {
			return left, nil
		}
		return right, nil
	case "or":
		if left.Truthy() {
			return left, nil
		}
		return right, nil
	case "is":
		if left.Eqv(right) {
			return left, nil
		}
		return value.False, nil
	case "in":
		return in(left, right), nil
	case "<", ">", "<=", ">=":
		return relate(op, left, right)
	case "+", "-", "*", "/":
		return arith(op, left, right)
	case "&":
		return ToVec(left).Concat(ToVec(right)), nil
	case "~":
		return ToStr(left) + ToStr(right), nil
	case "x":
		return repeat(left, right)
	case "%":
		return mapMerge(left, right)
	default:
		return nil, fmt.Errorf("unknown binary operator %q", op)
	}
}

func in(left, right value.Value) value.Value {
	switch r := right.(type) {
	case value.Str:
		if l, ok := left.(value.Str); ok {
			return value.FromBool(stringContains(string(r), string(l)))
		}
		return value.False
	case value.Vec:
		return value.FromBool(r.Contains(left))
	default:
		return value.False
	}
}

func stringContains(haystack, needle string) bool {
	return len(needle) == 0 || indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	n, m := len(haystack), len(needle)
	if m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if haystack[i:i+m] == needle {
			return i
		}
	}
	return -1
}

func relate(op string, left, right value.Value) (value.Value, error) {
	ls, lIsStr := left.(value.Str)
	rs, rIsStr := right.(value.Str)
	if lIsStr && rIsStr {
		return value.FromBool(compareInts(op, len(ls), len(rs))), nil
	}
	ln, err := ToNum(left)
	if err != nil {
		return nil, err
	}
	rn, err := ToNum(right)
	if err != nil {
		return nil, err
	}
	cmp := ln.Cmp(rn)
	switch op {
	case "<":
		return value.FromBool(cmp < 0), nil
	case ">":
		return value.FromBool(cmp > 0), nil
	case "<=":
		return value.FromBool(cmp <= 0), nil
	case ">=":
		return value.FromBool(cmp >= 0), nil
	}
	return nil, fmt.Errorf("unknown relational operator %q", op)
}

func compareInts(op string, a, b int) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func arith(op string, left, right value.Value) (value.Value, error) {
	ln, err := ToNum(left)
	if err != nil {
		return nil, err
	}
	rn, err := ToNum(right)
	if err != nil {
		return nil, err
	}
	switch op {
	case "+":
		return ln.Add(rn), nil
	case "-":
		return ln.Sub(rn), nil
	case "*":
		return ln.Mul(rn), nil
	case "/":
		return ln.Div(rn)
	}
	return nil, fmt.Errorf("unknown arithmetic operator %q", op)
}

// repeat implements `x`: str*num -> repeat, vec*num -> repeat, num*(str/vec)
// flips, capped at Int32::MAX (spec.md §4.8, §8 boundary case: `"a" x
// (INT32_MAX+1)` dies with overflow before allocation).
func repeat(left, right value.Value) (value.Value, error) {
	var container value.Value
	var count value.Value
	switch {
	case isContainer(left):
		container, count = left, right
	case isContainer(right):
		container, count = right, left
	default:
		return nil, fmt.Errorf("`x` requires a str/vec and a num operand")
	}
	n, err := ToNum(count)
	if err != nil {
		return nil, err
	}
	if n.R.Cmp(int32MaxRat) > 0 {
		return nil, fmt.Errorf("repeat count overflows int32")
	}
	i32, ok := n.Int32()
	if !ok {
		return nil, fmt.Errorf("repeat count must be an integer")
	}
	switch c := container.(type) {
	case value.Str:
		return c.Repeat(int(i32)), nil
	case value.Vec:
		return c.Repeat(int(i32)), nil
	default:
		return nil, fmt.Errorf("`x` requires a str/vec and a num operand")
	}
}

func isContainer(v value.Value) bool {
	switch v.(type) {
	case value.Str, value.Vec:
		return true
	default:
		return false
	}
}

var int32MaxRat = big.NewRat(1<<31-1, 1)

func mapMerge(left, right value.Value) (value.Value, error) {
	lm, ok := left.(*value.MapVal)
	if !ok {
		return nil, fmt.Errorf("`%%` requires map operands, got %s", left.Kind())
	}
	rm, ok := right.(*value.MapVal)
	if !ok {
		return nil, fmt.Errorf("`%%` requires map operands, got %s", right.Kind())
	}
	return lm.Merge(rm), nil
}
