package basis

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/rmay/venlang/pkg/chunk"
	"github.com/rmay/venlang/pkg/value"
)

// Cache memoizes compiled+optimized chunks by a content hash of their
// source text, so compiling the same unit text again (for instance a unit
// `expose`d more than once across a session) skips
// recompilation. Keyed in memory by blake2b(source); CBOR only encodes
// the scalar-constant subset that round-trips safely (see wireChunk) —
// a chunk whose constants table holds anything else (Quote, Regex,
// CompoundType, a closure) is simply never cached, and the caller
// recompiles it, which is always correct, just not free.
type Cache struct {
	mu      sync.Mutex
	entries map[[32]byte]*chunk.Chunk
}

func NewCache() *Cache {
	return &Cache{entries: make(map[[32]byte]*chunk.Chunk)}
}

// Key hashes source with blake2b-256 (spec.md §2's cache-key-hashing
// domain-stack entry).
func Key(source string) [32]byte {
	return blake2b.Sum256([]byte(source))
}

// Get returns the cached chunk for source's hash, if present.
func (c *Cache) Get(source string) (*chunk.Chunk, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.entries[Key(source)]
	return ch, ok
}

// Put stores compiled under source's hash. It first converts the chunk
// with toWire as a validity check (toWire returns an error for any chunk
// holding a non-scalar constant) — a failure here just means this chunk
// isn't cached, not that compilation failed.
func (c *Cache) Put(source string, compiled *chunk.Chunk) {
	if _, err := toWire(compiled); err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[Key(source)] = compiled
}

// wireChunk is the CBOR-safe mirror of chunk.Chunk: Functions are nested
// recursively, and Constants is a []wireConst discriminated union
// covering exactly the scalar kinds (num/str/bool/void) a unit's literal
// table can hold without reaching for an interface-typed field.
type wireChunk struct {
	Name         string
	Instructions []chunk.Instr
	Constants    []wireConst
	Functions    []*wireChunk
	Meta         *chunk.FuncMeta
	NumLocals    int
}

type wireConst struct {
	Tag string // "num" | "str" | "bool" | "void"
	Str string
	Num string // big.Rat string form
	Bin bool
}

func toWire(c *chunk.Chunk) (*wireChunk, error) {
	consts := make([]wireConst, len(c.Constants))
	for i, raw := range c.Constants {
		v, ok := raw.(value.Value)
		if !ok {
			return nil, fmt.Errorf("basis cache: constant %d is not a value.Value", i)
		}
		wc, err := toWireConst(v)
		if err != nil {
			return nil, err
		}
		consts[i] = wc
	}
	funcs := make([]*wireChunk, len(c.Functions))
	for i, fn := range c.Functions {
		wfn, err := toWire(fn)
		if err != nil {
			return nil, err
		}
		funcs[i] = wfn
	}
	return &wireChunk{
		Name:         c.Name,
		Instructions: c.Instructions,
		Constants:    consts,
		Functions:    funcs,
		Meta:         c.Meta,
		NumLocals:    c.NumLocals,
	}, nil
}

func toWireConst(v value.Value) (wireConst, error) {
	switch x := v.(type) {
	case value.Num:
		return wireConst{Tag: "num", Num: x.String()}, nil
	case value.Str:
		return wireConst{Tag: "str", Str: string(x)}, nil
	case value.Bool:
		return wireConst{Tag: "bool", Bin: bool(x)}, nil
	case value.Void:
		return wireConst{Tag: "void"}, nil
	default:
		return wireConst{}, fmt.Errorf("basis cache: %s constants are not cacheable", v.Kind())
	}
}

// Marshal CBOR-encodes c through its wireChunk mirror. There is no
// decoding counterpart, and nothing in the module persists the bytes.
func Marshal(c *chunk.Chunk) ([]byte, error) {
	w, err := toWire(c)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(w)
}
