package hub

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestFixtureCounterTracksIndependentBoxState(t *testing.T) {
	prog := newTestProgram()
	src := readFixture(t, "counter.ven")
	res, err := prog.Run(src, "counter.ven", Options{})
	require.NoError(t, err)
	require.Equal(t, "3", res.Value.String())
}

func TestFixtureDispatchSelectsConstraintByValue(t *testing.T) {
	prog := newTestProgram()
	src := readFixture(t, "dispatch.ven")
	res, err := prog.Run(src, "dispatch.ven", Options{})
	require.NoError(t, err)
	require.Equal(t, "num:1,str:a,other", res.Value.String())
}
