// Package serialize implements the stable JSON encoding spec.md §6's
// `-s/--serialize` flag produces, plus a schema check on the result so a
// future change to the shape fails fast instead of shipping a silent
// regression.
package serialize

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/value"
)

//go:embed schema.json
var schemaSource []byte

var compiled *jsonschema.Schema

func init() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("ven-node.json", bytes.NewReader(schemaSource)); err != nil {
		panic(fmt.Sprintf("serialize: embedded schema invalid: %v", err))
	}
	s, err := c.Compile("ven-node.json")
	if err != nil {
		panic(fmt.Sprintf("serialize: embedded schema invalid: %v", err))
	}
	compiled = s
}

// Node is the stable JSON shape every encoded value/quote takes: a tag
// naming the variant, and a payload whose shape depends on it. This, not
// Go's default struct-tag marshaling, is what "stable" means here —
// renaming a Go field can never change the wire shape.
type Node struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload,omitempty"`
}

// ToJSON encodes v per spec.md §6 and validates the result against the
// embedded schema before returning it, so a shape regression is caught
// here rather than by whatever downstream tool consumes `-s/--serialize`
// output.
func ToJSON(v value.Value) ([]byte, error) {
	node := encodeValue(v)
	data, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return nil, fmt.Errorf("serialize: product failed schema validation: %w", err)
	}
	return data, nil
}

// ToJSONQuote encodes a reader/readtime-stage product (spec.md §6's
// `-j read|transform` halt points serialize a quote tree, not a value).
func ToJSONQuote(q ast.Quote) ([]byte, error) {
	return ToJSON(value.NewQuote(q))
}

func encodeValue(v value.Value) Node {
	switch x := v.(type) {
	case value.Num:
		return Node{Kind: "num", Payload: x.String()}
	case value.Str:
		return Node{Kind: "str", Payload: string(x)}
	case value.Bool:
		return Node{Kind: "bool", Payload: bool(x)}
	case value.Void:
		return Node{Kind: "void"}
	case value.Vec:
		items := make([]Node, len(x.Items))
		for i, it := range x.Items {
			items[i] = encodeValue(it)
		}
		return Node{Kind: "vec", Payload: items}
	case *value.MapVal:
		entries := make([]Node, 0, 2*len(x.Entries))
		for _, e := range x.Entries {
			entries = append(entries, encodeValue(e.Key), encodeValue(e.Value))
		}
		return Node{Kind: "map", Payload: entries}
	case value.Range:
		payload := map[string]any{}
		if x.Lo != nil {
			payload["lo"] = x.Lo.String()
		}
		if x.Hi != nil {
			payload["hi"] = x.Hi.String()
		}
		return Node{Kind: "range", Payload: payload}
	case *value.QuoteVal:
		return Node{Kind: "quote", Payload: ast.Detree(x.Q)}
	default:
		return Node{Kind: v.Kind().String(), Payload: v.String()}
	}
}

// StableKey re-exposes value.StableKey under this package since spec.md
// §6 frames both the serialization shape and the Map key hashing as the
// same "stable JSON-ish shape" decision (see DESIGN.md's Open Question
// resolution).
func StableKey(v value.Value) string { return value.StableKey(v) }
