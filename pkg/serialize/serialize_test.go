package serialize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rmay/venlang/pkg/value"
)

func decode(t *testing.T, data []byte) Node {
	t.Helper()
	var n Node
	require.NoError(t, json.Unmarshal(data, &n))
	return n
}

func TestToJSONScalarKinds(t *testing.T) {
	data, err := ToJSON(value.NumFromInt64(42))
	require.NoError(t, err)
	n := decode(t, data)
	require.Equal(t, "num", n.Kind)
	require.Equal(t, "42", n.Payload)

	data, err = ToJSON(value.Bool(true))
	require.NoError(t, err)
	n = decode(t, data)
	require.Equal(t, "bool", n.Kind)
	require.Equal(t, true, n.Payload)

	data, err = ToJSON(value.Unit)
	require.NoError(t, err)
	n = decode(t, data)
	require.Equal(t, "void", n.Kind)
}

func TestToJSONVecNestsPayload(t *testing.T) {
	vec := value.NewVec(value.NumFromInt64(1), value.Str("x"))
	data, err := ToJSON(vec)
	require.NoError(t, err)
	n := decode(t, data)
	require.Equal(t, "vec", n.Kind)
	items, ok := n.Payload.([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
}

func TestStableKeyMatchesForStructurallyEqualVecs(t *testing.T) {
	a := value.NewVec(value.NumFromInt64(1), value.NumFromInt64(2))
	b := value.NewVec(value.NumFromInt64(1), value.NumFromInt64(2))
	require.Equal(t, StableKey(a), StableKey(b))
}
