package value

import "strings"

// Vec is an ordered, homogeneous-or-not list of values (spec.md §3.2/§3.3).
type Vec struct {
	Items []Value
}

func NewVec(items ...Value) Vec { return Vec{Items: items} }

func (v Vec) Kind() Kind { return KindVec }

func (v Vec) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, it := range v.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(it.String())
	}
	b.WriteString("]")
	return b.String()
}

func (v Vec) Truthy() bool { return true }

func (v Vec) Eqv(o Value) bool {
	ov, ok := o.(Vec)
	if !ok || len(ov.Items) != len(v.Items) {
		return false
	}
	for i := range v.Items {
		if !v.Items[i].Eqv(ov.Items[i]) {
			return false
		}
	}
	return true
}

func (v Vec) Len() int { return len(v.Items) }

func (v Vec) Concat(o Vec) Vec {
	items := make([]Value, 0, len(v.Items)+len(o.Items))
	items = append(items, v.Items...)
	items = append(items, o.Items...)
	return Vec{Items: items}
}

func (v Vec) Repeat(n int) Vec {
	if n <= 0 {
		return Vec{}
	}
	items := make([]Value, 0, len(v.Items)*n)
	for i := 0; i < n; i++ {
		items = append(items, v.Items...)
	}
	return Vec{Items: items}
}

func (v Vec) Contains(item Value) bool {
	for _, it := range v.Items {
		if it.Eqv(item) {
			return true
		}
	}
	return false
}
