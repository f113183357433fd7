package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StableKey produces a deterministic structural string for a Value, used
// both as Map's internal index key and (via pkg/serialize) as the stable
// JSON-ish shape spec.md §6 requires for serialization. Two values built
// differently but structurally equal (per Eqv) always produce the same
// StableKey, resolving spec.md §9's Open Question on Map key hashing in
// favor of structural hashing over identity/pointer hashing.
func StableKey(v Value) string {
	var b strings.Builder
	stableKey(&b, v)
	return b.String()
}

func stableKey(b *strings.Builder, v Value) {
	if v == nil {
		b.WriteString("void")
		return
	}
	switch x := v.(type) {
	case Num:
		b.WriteString("n:")
		b.WriteString(x.R.RatString())
	case Str:
		b.WriteString("s:")
		b.WriteString(strconv.Quote(string(x)))
	case Bool:
		b.WriteString("b:")
		b.WriteString(strconv.FormatBool(bool(x)))
	case Void:
		b.WriteString("void")
	case Vec:
		b.WriteString("v:[")
		for i, it := range x.Items {
			if i > 0 {
				b.WriteString(",")
			}
			stableKey(b, it)
		}
		b.WriteString("]")
	case *MapVal:
		keys := make([]string, 0, len(x.Entries))
		byKey := make(map[string]Value, len(x.Entries))
		for _, e := range x.Entries {
			k := stableKeyString(e.Key)
			keys = append(keys, k)
			byKey[k] = e.Value
		}
		sort.Strings(keys)
		b.WriteString("m:{")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(k)
			b.WriteString(":")
			stableKey(b, byKey[k])
		}
		b.WriteString("}")
	case Regex:
		b.WriteString("re:")
		b.WriteString(x.Source)
	default:
		fmt.Fprintf(b, "%s:%s", v.Kind(), v.String())
	}
}

func stableKeyString(v Value) string {
	var b strings.Builder
	stableKey(&b, v)
	return b.String()
}
