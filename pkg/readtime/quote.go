package readtime

import (
	"fmt"

	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/value"
)

// quoteToValue lifts a literal quote into the value it denotes, for the
// handful of node kinds that evaluate without any state (constants).
// Non-literal nodes fall through to eval.go's full evalQuote.
func quoteToValue(q ast.Quote) (value.Value, bool) {
	switch n := q.(type) {
	case *ast.String:
		return value.Str(n.Bytes), true
	case *ast.Number:
		num, ok := value.NumFromString(n.Lexeme)
		return num, ok
	case *ast.Regex:
		re, err := value.CompileRegex(n.Source)
		if err != nil {
			return nil, false
		}
		return re, true
	case *ast.True:
		return value.True, true
	case *ast.False:
		return value.False, true
	case *ast.Void:
		return value.Void{}, true
	}
	return nil, false
}

// valueToQuote is the inverse used to splice a readtime result back into
// the parse stream (spec.md §4.4: "the evaluator's resulting quote(s)").
func valueToQuote(tag ast.Tag, v value.Value) ast.Quote {
	switch x := v.(type) {
	case value.Str:
		return &ast.String{ast.New(tag), string(x)}
	case value.Num:
		return &ast.Number{ast.New(tag), x.String()}
	case value.Bool:
		if bool(x) {
			return &ast.True{ast.New(tag)}
		}
		return &ast.False{ast.New(tag)}
	case value.Void:
		return &ast.Void{ast.New(tag)}
	case value.Regex:
		return &ast.Regex{ast.New(tag), x.Source}
	case value.Vec:
		items := make([]ast.Quote, len(x.Items))
		for i, it := range x.Items {
			items[i] = valueToQuote(tag, it)
		}
		return &ast.Vector{ast.New(tag), items, nil}
	case *value.MapVal:
		pairs := make([]ast.MapPair, x.Len())
		for i, e := range x.Entries {
			pairs[i] = ast.MapPair{Key: valueToQuote(tag, e.Key), Value: valueToQuote(tag, e.Value)}
		}
		return &ast.Map{ast.New(tag), pairs}
	case *value.QuoteVal:
		return x.Q
	default:
		return &ast.String{ast.New(tag), fmt.Sprintf("%v", v)}
	}
}
