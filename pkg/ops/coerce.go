// Package ops implements the coercion and operator tables of spec.md §4.8,
// shared verbatim between the VM (pkg/vm) and the readtime evaluator
// (pkg/readtime), since spec.md describes the readtime evaluator as
// supporting "unary/binary coercions" drawn from the same tables the
// compiled VM executes.
package ops

import (
	"fmt"
	"strings"

	"github.com/rmay/venlang/pkg/value"
)

// ToNum implements unary `+` (spec.md §4.8): parse a string, vec -> length,
// bool -> 0/1, num -> itself.
func ToNum(v value.Value) (value.Num, error) {
	switch x := v.(type) {
	case value.Num:
		return x, nil
	case value.Str:
		n, ok := value.NumFromString(strings.TrimSpace(string(x)))
		if !ok {
			return value.Num{}, fmt.Errorf("cannot convert %q to num", string(x))
		}
		return n, nil
	case value.Vec:
		return value.NumFromInt64(int64(len(x.Items))), nil
	case value.Bool:
		if x {
			return value.NumFromInt64(1), nil
		}
		return value.NumFromInt64(0), nil
	default:
		return value.Num{}, fmt.Errorf("cannot convert %s to num", v.Kind())
	}
}

// ToStr implements unary `~` (spec.md §4.8): detree non-strings.
func ToStr(v value.Value) value.Str {
	if s, ok := v.(value.Str); ok {
		return s
	}
	return value.Str(v.String())
}

// ToVec implements unary `&` (spec.md §4.8): wrap non-vec in a 1-elt Vec.
func ToVec(v value.Value) value.Vec {
	if vec, ok := v.(value.Vec); ok {
		return vec
	}
	return value.NewVec(v)
}

// ToLen implements unary `#` (spec.md §4.8): string/vec length, else 1.
func ToLen(v value.Value) value.Num {
	switch x := v.(type) {
	case value.Str:
		return value.NumFromInt64(int64(x.Len()))
	case value.Vec:
		return value.NumFromInt64(int64(x.Len()))
	case *value.MapVal:
		return value.NumFromInt64(int64(x.Len()))
	default:
		return value.NumFromInt64(1)
	}
}

// MapFromVector implements unary `%` (spec.md §4.8): pairs up a vector into
// a map; an odd-length vec dies.
func MapFromVector(v value.Vec) (*value.MapVal, error) {
	if len(v.Items)%2 != 0 {
		return nil, fmt.Errorf("cannot build map from odd-length vector")
	}
	m := value.NewMap()
	for i := 0; i+1 < len(v.Items); i += 2 {
		m.Set(v.Items[i], v.Items[i+1])
	}
	return m, nil
}
