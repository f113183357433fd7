package value

import "fmt"

// Internal is an opaque engine-owned object exposed to user code under a
// name (spec.md §3.2), e.g. iterator cursors used by the baked-in basis's
// `__iter`. Slots hold whatever state the owning builtin needs; equality is
// identity-based since these never need structural comparison.
type Internal struct {
	Name  string
	Slots map[string]Value
}

func NewInternal(name string) *Internal {
	return &Internal{Name: name, Slots: make(map[string]Value)}
}

func (i *Internal) Kind() Kind     { return KindInternal }
func (i *Internal) String() string { return fmt.Sprintf("<internal %s>", i.Name) }
func (i *Internal) Truthy() bool   { return true }

func (i *Internal) Eqv(o Value) bool {
	oi, ok := o.(*Internal)
	return ok && oi == i
}
