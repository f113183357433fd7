package hub

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	units map[string]string // name -> source
}

func (r *fakeResolver) Resolve(name string) (string, string, error) {
	src, ok := r.units[name]
	if !ok {
		return "", "", fmt.Errorf("no unit named %q", name)
	}
	return src, name + ".ven", nil
}

func TestInternReturnsSameStringAcrossCalls(t *testing.T) {
	h := New(&fakeResolver{}, nil)
	a := h.Intern("hello")
	b := h.Intern("hello")
	require.Equal(t, a, b)
}

func TestGlobalNamesSeededFromBasis(t *testing.T) {
	h := New(&fakeResolver{}, nil)
	names := h.GlobalNames()
	require.Contains(t, names, "say")
}

func TestResolveExposeMergesGlobalNames(t *testing.T) {
	h := New(&fakeResolver{units: map[string]string{
		"math": "PI := 3;",
	}}, nil)
	prog := NewProgram(h)
	names, err := h.resolveExpose("math", prog)
	require.NoError(t, err)
	require.Contains(t, names, "PI")
	require.Contains(t, h.GlobalNames(), "PI")
}

func TestResolveExposeIsMemoized(t *testing.T) {
	h := New(&fakeResolver{units: map[string]string{
		"math": "PI := 3;",
	}}, nil)
	prog := NewProgram(h)
	first, err := h.resolveExpose("math", prog)
	require.NoError(t, err)
	second, err := h.resolveExpose("math", prog)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestResolveExposeDetectsCycle(t *testing.T) {
	h := New(&fakeResolver{}, nil)
	h.units["a"] = &unitResult{compiling: true}
	prog := NewProgram(h)
	_, err := h.resolveExpose("a", prog)
	require.Error(t, err)
}

func TestResolveExposeMissingResolverErrors(t *testing.T) {
	h := New(nil, nil)
	h.Resolver = nil
	prog := NewProgram(h)
	_, err := h.resolveExpose("missing", prog)
	require.Error(t, err)
}
