package hub

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestProgram() *Program {
	h := New(&fakeResolver{}, nil)
	return NewProgram(h)
}

func TestRunEvaluatesToFinalValue(t *testing.T) {
	prog := newTestProgram()
	res, err := prog.Run("1 + 2 * 3", "<test>", Options{})
	require.NoError(t, err)
	require.Equal(t, "7", res.Value.String())
}

func TestRunHaltsAtReadStage(t *testing.T) {
	prog := newTestProgram()
	res, err := prog.Run("1 + 2", "<test>", Options{Just: StageRead})
	require.NoError(t, err)
	require.Nil(t, res.Value)
	require.NotEmpty(t, res.Quotes)
}

func TestRunHaltsAtCompileStage(t *testing.T) {
	prog := newTestProgram()
	res, err := prog.Run("1 + 2", "<test>", Options{Just: StageCompile})
	require.NoError(t, err)
	require.NotNil(t, res.Chunk)
	require.Nil(t, res.Value)
}

func TestRunHaltsAtOptimizeStage(t *testing.T) {
	prog := newTestProgram()
	res, err := prog.Run("1 + 2", "<test>", Options{Just: StageOptimize})
	require.NoError(t, err)
	require.NotNil(t, res.Chunk)
	require.Nil(t, res.Value)
}

func TestRunSerializesFinalValue(t *testing.T) {
	prog := newTestProgram()
	res, err := prog.Run("41 + 1", "<test>", Options{Serialize: true})
	require.NoError(t, err)
	require.NotEmpty(t, res.JSON)
	require.Contains(t, string(res.JSON), `"num"`)
}

func TestRunResolvesExposedUnit(t *testing.T) {
	h := New(&fakeResolver{units: map[string]string{
		"math": "fun square(x) = x * x;",
	}}, nil)
	prog := NewProgram(h)
	res, err := prog.Run("expose math; square(6)", "<test>", Options{})
	require.NoError(t, err)
	require.Equal(t, "36", res.Value.String())
}

func TestRunBinarySpreadFoldsVec(t *testing.T) {
	prog := newTestProgram()
	res, err := prog.Run("(|+| [1, 2, 3, 4]) is 10", "<test>", Options{})
	require.NoError(t, err)
	require.Equal(t, "10", res.Value.String())
}

func TestRunGenericDispatchLaterVariantWins(t *testing.T) {
	prog := newTestProgram()
	res, err := prog.Run(`
		fun f(x) given num = x + 1;
		fun f(x) given num = x + 2;
		f(2)
	`, "<test>", Options{})
	require.NoError(t, err)
	require.Equal(t, "4", res.Value.String())
}
