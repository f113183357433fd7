package readtime

import (
	"fmt"

	"github.com/rmay/venlang/pkg/ops"
	"github.com/rmay/venlang/pkg/value"
)

// builtinFunc is a readtime builtin: spec.md §4.4 lists `say`, `chars`,
// `reverse`, `block`, `curly-block`, `loose-block`, `tight-block`, plus
// `quote` (identity, used to produce a literal result from an otherwise
// side-effecting macro body — spec.md §8 scenario 5).
type builtinFunc func(st *State, args []value.Value) (value.Value, error)

var builtins = map[string]builtinFunc{
	"say":          biSay,
	"chars":        biChars,
	"reverse":      biReverse,
	"quote":        biQuote,
	"block":        biBlock,
	"curly-block":  biBlock,
	"loose-block":  biBlock,
	"tight-block":  biBlock,
}

func biSay(st *State, args []value.Value) (value.Value, error) {
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(st.out, " ")
		}
		fmt.Fprint(st.out, a.String())
	}
	fmt.Fprintln(st.out)
	return value.Void{}, nil
}

func biChars(st *State, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("chars expects 1 argument, got %d", len(args))
	}
	s, ok := args[0].(value.Str)
	if !ok {
		s = ops.ToStr(args[0])
	}
	runes := []rune(string(s))
	items := make([]value.Value, len(runes))
	for i, r := range runes {
		items[i] = value.Str(string(r))
	}
	return value.NewVec(items...), nil
}

func biReverse(st *State, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("reverse expects 1 argument, got %d", len(args))
	}
	switch x := args[0].(type) {
	case value.Vec:
		out := make([]value.Value, len(x.Items))
		for i, v := range x.Items {
			out[len(out)-1-i] = v
		}
		return value.NewVec(out...), nil
	case value.Str:
		runes := []rune(string(x))
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return value.Str(string(runes)), nil
	default:
		return nil, fmt.Errorf("reverse expects a str or vec, got %s", args[0].Kind())
	}
}

// biQuote is the identity builtin: its argument, already evaluated, is the
// literal the caller wants spliced back as the macro's result quote.
func biQuote(st *State, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("quote expects 1 argument, got %d", len(args))
	}
	return args[0], nil
}

// biBlock groups its evaluated arguments into a vector, standing in for
// the four block-reader forms (curly/loose/tight differ only in the
// reader's bracketing, not in readtime semantics).
func biBlock(st *State, args []value.Value) (value.Value, error) {
	return value.NewVec(args...), nil
}
