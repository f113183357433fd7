package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rmay/venlang/pkg/basis"
	"github.com/rmay/venlang/pkg/chunk"
	"github.com/rmay/venlang/pkg/compiler"
	"github.com/rmay/venlang/pkg/optimizer"
	"github.com/rmay/venlang/pkg/reader"
	"github.com/rmay/venlang/pkg/scope"
	"github.com/rmay/venlang/pkg/value"
)

type discardWriter struct{ buf []string }

func (w *discardWriter) WriteString(s string) (int, error) {
	w.buf = append(w.buf, s)
	return len(s), nil
}

func run(t *testing.T, src string, testMode bool) (value.Value, *discardWriter) {
	t.Helper()
	globals := basis.Install(scope.New(nil))
	quotes, _, _, err := reader.Read(src, "<test>", false)
	require.NoError(t, err)
	c, err := compiler.Compile("<test>", quotes, basis.Names(), false)
	require.NoError(t, err)
	optimizer.Optimize([]*chunk.Chunk{c}, 8)
	out := &discardWriter{}
	m := New(globals, testMode, out, nil)
	v, err := m.Execute(c)
	require.NoError(t, err)
	return v, out
}

func TestArithmeticAndCoercion(t *testing.T) {
	v, _ := run(t, `1 + 2 * 3`, false)
	require.Equal(t, "7", v.String())
}

func TestFunDeclarationAndCall(t *testing.T) {
	v, _ := run(t, `fun square(x) = x * x; square(5)`, false)
	require.Equal(t, "25", v.String())
}

func TestClosureCapturesSharedMutation(t *testing.T) {
	v, _ := run(t, `
		y := 1;
		f := fun() = y;
		y &= 4;
		f()
	`, false)
	require.Equal(t, "4", v.String())
}

func TestGenericDispatchSelectsConstrainedVariant(t *testing.T) {
	v, _ := run(t, `
		fun greet(x: num) = "num";
		fun greet(x) = "other";
		greet(1) ~ greet("a")
	`, false)
	require.Equal(t, "numother", v.String())
}

func TestGenericDispatchLaterIdenticalConstraintWins(t *testing.T) {
	v, _ := run(t, `
		fun greet(x: num) = "first";
		fun greet(x: num) = "second";
		greet(1)
	`, false)
	require.Equal(t, "second", v.String())
}

func TestBoxInstancesHaveIndependentState(t *testing.T) {
	v, _ := run(t, `
		box Counter() {
			n := 0;
			fun bump() = n &= n + 1;
			fun get() = n;
		}
		a := Counter();
		b := Counter();
		a.bump();
		a.bump();
		b.bump();
		a.get() + b.get()
	`, false)
	require.Equal(t, "3", v.String())
}

func TestUFCSResolvesFieldAccessAsGlobalCall(t *testing.T) {
	v, _ := run(t, `
		fun double(x) = x + x;
		5.double()
	`, false)
	require.Equal(t, "10", v.String())
}

func TestEnsureNoopOutsideTestMode(t *testing.T) {
	v, _ := run(t, `ensure 1 is 2; 42`, false)
	require.Equal(t, "42", v.String())
}

func TestDiesCatchesFailedEnsureInTestMode(t *testing.T) {
	v, _ := run(t, `dies ensure 1 is 2`, true)
	require.Equal(t, "true", v.String())
}

func TestDiesYieldsFalseWhenEnsurePasses(t *testing.T) {
	v, _ := run(t, `dies ensure 1 is 1`, true)
	require.Equal(t, "false", v.String())
}

func TestSpreadOverVecWithSuperlocal(t *testing.T) {
	v, _ := run(t, `|_ * 2| [1, 2, 3]`, false)
	require.Equal(t, "[2, 4, 6]", v.String())
}

func TestBinarySpreadFoldsLeftToRight(t *testing.T) {
	v, _ := run(t, `|+| [1, 2, 3, 4]`, false)
	require.Equal(t, "10", v.String())
}

func TestBinarySpreadOverSingletonVecSkipsFold(t *testing.T) {
	v, _ := run(t, `|+| [5]`, false)
	require.Equal(t, "5", v.String())
}

func TestDieWithNoCatchPointPropagatesAsRuntimeError(t *testing.T) {
	globals := basis.Install(scope.New(nil))
	quotes, _, _, err := reader.Read(`1 / 0`, "<test>", false)
	require.NoError(t, err)
	c, err := compiler.Compile("<test>", quotes, basis.Names(), false)
	require.NoError(t, err)
	optimizer.Optimize([]*chunk.Chunk{c}, 8)
	m := New(globals, false, &discardWriter{}, nil)
	_, err = m.Execute(c)
	require.Error(t, err)
}

func TestDieReachedNormallyPopsExprAndPushesFalse(t *testing.T) {
	v, _ := run(t, `dies (1 + 1)`, true)
	require.Equal(t, "false", v.String())
}
