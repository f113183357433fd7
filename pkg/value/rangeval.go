package value

import "fmt"

// Range is a (possibly open-ended) range of Num bounds (spec.md §3.2).
// Lo/Hi are nil when the corresponding bound is absent (`..5`, `5..`).
type Range struct {
	Lo *Num
	Hi *Num
}

func (r Range) Kind() Kind { return KindRange }

func (r Range) String() string {
	lo, hi := "", ""
	if r.Lo != nil {
		lo = r.Lo.String()
	}
	if r.Hi != nil {
		hi = r.Hi.String()
	}
	return fmt.Sprintf("%s..%s", lo, hi)
}

func (r Range) Truthy() bool { return true }

func (r Range) Eqv(o Value) bool {
	or, ok := o.(Range)
	if !ok {
		return false
	}
	return numPtrEqv(r.Lo, or.Lo) && numPtrEqv(r.Hi, or.Hi)
}

func numPtrEqv(a, b *Num) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Eqv(*b)
}

// Contains reports whether n falls within the range (inclusive bounds,
// open on the absent side).
func (r Range) Contains(n Num) bool {
	if r.Lo != nil && n.Cmp(*r.Lo) < 0 {
		return false
	}
	if r.Hi != nil && n.Cmp(*r.Hi) > 0 {
		return false
	}
	return true
}
