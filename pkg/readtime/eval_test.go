package readtime

import (
	"testing"

	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/value"
	"github.com/stretchr/testify/require"
)

func tag() ast.Tag { return ast.Tag{File: "<test>", Line: 1} }

func num(n int64) ast.Quote { return &ast.Number{ast.New(tag()), value.NumFromInt64(n).String()} }

func TestEvalBinaryArithmetic(t *testing.T) {
	st := NewState()
	q := &ast.Binary{ast.New(tag()), "+", num(1), num(2)}
	result, err := Eval(st, []ast.Quote{q})
	require.NoError(t, err)
	n, ok := result.(*ast.Number)
	require.True(t, ok)
	require.Equal(t, "3", n.Lexeme)
}

func TestEvalEnsurePasses(t *testing.T) {
	st := NewState()
	cond := &ast.Binary{ast.New(tag()), "is", &ast.Binary{ast.New(tag()), "+", num(1), num(1)}, num(2)}
	ensure := &ast.Ensure{ast.New(tag()), cond}
	result, err := Eval(st, []ast.Quote{ensure, num(42)})
	require.NoError(t, err)
	require.Equal(t, "42", result.(*ast.Number).Lexeme)
}

func TestEvalEnsureFails(t *testing.T) {
	st := NewState()
	ensure := &ast.Ensure{ast.New(tag()), &ast.False{ast.New(tag())}}
	_, err := Eval(st, []ast.Quote{ensure})
	require.Error(t, err)
}

func TestEvalQueueWrapsResult(t *testing.T) {
	st := NewState()
	q1 := &ast.Queue{ast.New(tag()), num(1)}
	q2 := &ast.Queue{ast.New(tag()), num(2)}
	result, err := Eval(st, []ast.Quote{q1, q2})
	require.NoError(t, err)
	vec, ok := result.(*ast.Vector)
	require.True(t, ok)
	require.Len(t, vec.Items, 2)
}

func TestEvalIf(t *testing.T) {
	st := NewState()
	ifq := &ast.If{ast.New(tag()), &ast.True{ast.New(tag())}, num(1), num(2)}
	result, err := Eval(st, []ast.Quote{ifq})
	require.NoError(t, err)
	require.Equal(t, "1", result.(*ast.Number).Lexeme)
}

func TestEvalAssignBoundVsLocal(t *testing.T) {
	st := NewState()
	assignLocal := &ast.Assign{ast.New(tag()), &ast.Symbol{ast.New(tag()), "x"}, num(1), true}
	_, err := evalQuote(st, assignLocal)
	require.NoError(t, err)
	v, ok := st.get("x")
	require.True(t, ok)
	require.Equal(t, "1", v.String())
}

func TestEvalCallBuiltinQuote(t *testing.T) {
	st := NewState()
	call := &ast.Call{ast.New(tag()), &ast.Symbol{ast.New(tag()), "quote"}, []ast.Quote{num(42)}}
	result, err := Eval(st, []ast.Quote{call})
	require.NoError(t, err)
	require.Equal(t, "42", result.(*ast.Number).Lexeme)
}

func TestEvalDiesCatchesRuntimeError(t *testing.T) {
	st := NewState()
	divByZero := &ast.Binary{ast.New(tag()), "/", num(1), num(0)}
	dies := &ast.Dies{ast.New(tag()), divByZero}
	result, err := Eval(st, []ast.Quote{dies})
	require.NoError(t, err)
	b, ok := result.(*ast.True)
	require.True(t, ok)
	_ = b
}

func TestEvalUnresolvedSymbolErrors(t *testing.T) {
	st := NewState()
	_, err := Eval(st, []ast.Quote{&ast.Symbol{ast.New(tag()), "nope"}})
	require.Error(t, err)
}
