package ops

import (
	"fmt"

	"github.com/rmay/venlang/pkg/value"
)

// Unary applies spec.md §4.8's unary operator table.
func Unary(op string, operand value.Value) (value.Value, error) {
	switch op {
	case "+":
		return ToNum(operand)
	case "-":
		n, err := ToNum(operand)
		if err != nil {
			return nil, err
		}
		return n.Neg(), nil
	case "~":
		return ToStr(operand), nil
	case "&":
		return ToVec(operand), nil
	case "#":
		return ToLen(operand), nil
	case "not":
		return value.FromBool(!operand.Truthy()), nil
	case "%":
		vec, ok := operand.(value.Vec)
		if !ok {
			vec = ToVec(operand)
		}
		return MapFromVector(vec)
	default:
		return nil, fmt.Errorf("unknown unary operator %q", op)
	}
}
