// Package scope implements Ven's Context/Scope model (spec.md §3.3, §2.2):
// a nested scope stack distinguishing bound from local variables. Scope
// implements value.Scope so Lambda/BoxInstance values can reference a
// scope chain without pkg/value importing this package (see
// pkg/value/value.go's Scope interface doc for why).
package scope

import "github.com/rmay/venlang/pkg/value"

type slot struct {
	val   value.Value
	local bool
}

// Scope is one lexical scope frame in a chain. The root scope (no parent)
// holds globals.
type Scope struct {
	parent *Scope
	vars   map[string]*slot
}

func New(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: make(map[string]*slot)}
}

func (s *Scope) Parent() value.Scope {
	if s.parent == nil {
		return nil
	}
	return s.parent
}

func (s *Scope) ParentScope() *Scope { return s.parent }

// Get looks up name through the scope chain (spec.md §3.3).
func (s *Scope) Get(name string) (value.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sl, ok := cur.vars[name]; ok {
			return sl.val, true
		}
	}
	return nil, false
}

// Define implements spec.md §3.3's bound/local invariant:
//
//   - local == true (`:=`): always creates/overwrites a slot in this scope,
//     shadowing any ancestor binding.
//   - local == false (`=`): walks the chain for an existing slot and
//     updates it in place (wherever it lives); if none exists, creates a
//     new *bound* slot in this scope.
func (s *Scope) Define(name string, v value.Value, local bool) {
	if local {
		s.vars[name] = &slot{val: v, local: true}
		return
	}
	for cur := s; cur != nil; cur = cur.parent {
		if sl, ok := cur.vars[name]; ok {
			sl.val = v
			return
		}
	}
	s.vars[name] = &slot{val: v, local: false}
}

// DefineLocal is shorthand for Define(name, v, true) (`:=`).
func (s *Scope) DefineLocal(name string, v value.Value) { s.Define(name, v, true) }

// DefineBound is shorthand for Define(name, v, false) (`=`).
func (s *Scope) DefineBound(name string, v value.Value) { s.Define(name, v, false) }

// Child creates a nested scope (SCOPE_ENTER).
func (s *Scope) Child() *Scope { return New(s) }

// Clone returns a scope with the same parent and independently-mutable
// copies of each slot. Box instantiation does not use it: pkg/vm gives each
// BoxInstance a fresh child scope and re-runs the namespace body in it.
func (s *Scope) Clone() *Scope {
	out := &Scope{parent: s.parent, vars: make(map[string]*slot, len(s.vars))}
	for k, v := range s.vars {
		cp := *v
		out.vars[k] = &cp
	}
	return out
}
