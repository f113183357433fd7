package reader

import (
	"testing"

	"github.com/rmay/venlang/pkg/ast"
	"github.com/stretchr/testify/require"
)

func TestReadEmpty(t *testing.T) {
	quotes, distinct, exposes, err := Read("", "<test>", false)
	require.NoError(t, err)
	require.Empty(t, quotes)
	require.Empty(t, distinct)
	require.Empty(t, exposes)
}

func TestReadDistinctAndExpose(t *testing.T) {
	_, distinct, exposes, err := Read("distinct Foo; expose Bar; expose Baz;", "<test>", false)
	require.NoError(t, err)
	require.Equal(t, "Foo", distinct)
	require.Equal(t, []string{"Bar", "Baz"}, exposes)
}

func TestReadArithmeticPrecedence(t *testing.T) {
	quotes, _, _, err := Read("1 + 2 * 3;", "<test>", false)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	bin, ok := quotes[0].(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
	rhs, ok := bin.Right.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, "*", rhs.Op)
}

func TestReadAssignmentForms(t *testing.T) {
	quotes, _, _, err := Read("x := 1; x = 2; x += 3;", "<test>", false)
	require.NoError(t, err)
	require.Len(t, quotes, 3)
	a0 := quotes[0].(*ast.Assign)
	require.True(t, a0.Bind)
	a1 := quotes[1].(*ast.Assign)
	require.False(t, a1.Bind)
	a2 := quotes[2].(*ast.BinaryAssign)
	require.Equal(t, "+", a2.Op)
}

func TestReadFunAndCall(t *testing.T) {
	quotes, _, _, err := Read(`fun f(x) given num = x + 1; f(2)`, "<test>", false)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	fn := quotes[0].(*ast.Fun)
	require.Equal(t, "f", fn.Name)
	require.Len(t, fn.Params, 1)
	require.NotNil(t, fn.Given)
	call := quotes[1].(*ast.Call)
	require.Len(t, call.Args, 1)
}

func TestReadVectorAndAccess(t *testing.T) {
	quotes, _, _, err := Read(`[1, 2, 3][0]`, "<test>", false)
	require.NoError(t, err)
	access := quotes[0].(*ast.Access)
	vec := access.Head.(*ast.Vector)
	require.Len(t, vec.Items, 3)
}

func TestReadIfElse(t *testing.T) {
	quotes, _, _, err := Read(`if true { 1 } else { 2 }`, "<test>", false)
	require.NoError(t, err)
	ifq := quotes[0].(*ast.If)
	require.NotNil(t, ifq.Alt)
}

func TestReadComplexLoop(t *testing.T) {
	quotes, _, _, err := Read(`loop i = 0, i < 3, i++ { queue i }`, "<test>", false)
	require.NoError(t, err)
	loop := quotes[0].(*ast.ComplexLoop)
	require.Equal(t, "i", loop.Name)
}

func TestReadDotAccessAndIntoBool(t *testing.T) {
	quotes, _, _, err := Read(`a.b.c?`, "<test>", false)
	require.NoError(t, err)
	ib := quotes[0].(*ast.IntoBool)
	field := ib.Value.(*ast.AccessField)
	require.Equal(t, []string{"b", "c"}, field.Path)
}

func TestReadRangeLiteral(t *testing.T) {
	quotes, _, _, err := Read(`x[1:5]`, "<test>", false)
	require.NoError(t, err)
	access := quotes[0].(*ast.Access)
	rng := access.Args[0].(*ast.Range)
	require.NotNil(t, rng.Lo)
	require.NotNil(t, rng.Hi)
}

func TestReadMacroExpansion(t *testing.T) {
	quotes, _, _, err := Read(`nud T = <{ ensure 1+1 is 2; quote(42) }>; T()`, "<test>", false)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	num, ok := quotes[0].(*ast.Number)
	require.True(t, ok)
	require.Equal(t, "42", num.Lexeme)
}

func TestReadUPopAndURef(t *testing.T) {
	quotes, _, _, err := Read(`_ + &_`, "<test>", false)
	require.NoError(t, err)
	bin := quotes[0].(*ast.Binary)
	_, ok := bin.Left.(*ast.UPop)
	require.True(t, ok)
	_, ok = bin.Right.(*ast.URef)
	require.True(t, ok)
}
