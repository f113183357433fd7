package basis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rmay/venlang/pkg/chunk"
	"github.com/rmay/venlang/pkg/value"
)

func scalarChunk() *chunk.Chunk {
	c := chunk.New("<test>")
	c.Constants = []any{value.NumFromInt64(1), value.Str("x")}
	return c
}

func TestCachePutGetRoundTrip(t *testing.T) {
	cache := NewCache()
	c := scalarChunk()
	cache.Put("source text", c)
	got, ok := cache.Get("source text")
	require.True(t, ok)
	require.Same(t, c, got)
}

func TestCacheMissForUnseenSource(t *testing.T) {
	cache := NewCache()
	_, ok := cache.Get("never stored")
	require.False(t, ok)
}

func TestCacheDeclinesNonScalarConstants(t *testing.T) {
	cache := NewCache()
	c := chunk.New("<test>")
	c.Constants = []any{&value.QuoteVal{}}
	cache.Put("quote source", c)
	_, ok := cache.Get("quote source")
	require.False(t, ok)
}

func TestMarshalProducesCBOR(t *testing.T) {
	data, err := Marshal(scalarChunk())
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestKeyIsDeterministic(t *testing.T) {
	require.Equal(t, Key("same"), Key("same"))
	require.NotEqual(t, Key("a"), Key("b"))
}
