// Package hub implements the non-global context object spec.md threads
// through every pipeline stage (its Design Note on global state) and the
// Read → Compile → Optimize → Evaluate Program pipeline (spec.md §2.8,
// §6).
package hub

import (
	"github.com/sirupsen/logrus"

	"github.com/rmay/venlang/pkg/basis"
	"github.com/rmay/venlang/pkg/scope"
	"github.com/rmay/venlang/pkg/verrors"
)

// Resolver looks up an exposed unit's source text by name, leaving how
// units are found (filesystem, embedded, network) to the caller — spec.md
// scopes resolution policy to an external collaborator.
type Resolver interface {
	Resolve(name string) (source string, file string, err error)
}

// Hub is the explicit context shared by every stage of one engine run:
// interned symbols, the basis-seeded global scope, the expose resolver,
// and a cache of already-compiled units (by name) so a unit exposed from
// two different places is only read/compiled once.
type Hub struct {
	Globals  *scope.Scope
	Resolver Resolver
	Log      *logrus.Entry
	Cache    *basis.Cache

	symbols     map[string]string // interning table: text -> canonical string
	units       map[string]*unitResult
	globalNames []string // names known bound in h.Globals, for diagnostics only
}

type unitResult struct {
	globalNames []string // names this unit exposes to its dependents
	compiling   bool      // cycle sentinel for ExposeError
}

// New constructs a Hub with a fresh basis-seeded global scope.
func New(resolver Resolver, log *logrus.Entry) *Hub {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	globals := basis.Install(scope.New(nil))
	return &Hub{
		Globals:     globals,
		Resolver:    resolver,
		Log:         log,
		Cache:       basis.NewCache(),
		symbols:     make(map[string]string),
		units:       make(map[string]*unitResult),
		globalNames: append([]string{}, basis.Names()...),
	}
}

// GlobalNames returns every name currently known bound in h.Globals
// (basis builtins plus every unit exposed so far), used to seed
// pkg/compiler's unresolved-call diagnostics.
func (h *Hub) GlobalNames() []string {
	return append([]string{}, h.globalNames...)
}

func (h *Hub) addGlobalNames(names []string) {
	h.globalNames = append(h.globalNames, names...)
}

// Intern returns the canonical copy of s, so repeated symbol text across
// units shares one backing string (spec.md's global-state Design Note:
// interning is the one piece of cross-unit state that's safe to share,
// since it's pure memoization with no behavior attached).
func (h *Hub) Intern(s string) string {
	if canon, ok := h.symbols[s]; ok {
		return canon
	}
	h.symbols[s] = s
	return s
}

// resolveExpose loads, reads, and compiles name's unit (if not already
// known), merging its top-level bindings into h.Globals, then returns the
// names it exposed — topological, since resolving name may itself need
// to resolve name's own `expose` directives first. A unit mid-resolution
// when asked for again is an expose cycle.
func (h *Hub) resolveExpose(name string, prog *Program) ([]string, error) {
	if u, ok := h.units[name]; ok {
		if u.compiling {
			return nil, verrors.ExposeError("expose cycle detected at %q", name)
		}
		return u.globalNames, nil
	}
	if h.Resolver == nil {
		return nil, verrors.ExposeError("no resolver configured for expose %q", name)
	}
	source, file, err := h.Resolver.Resolve(name)
	if err != nil {
		return nil, verrors.ExposeError("resolving expose %q: %v", name, err)
	}
	h.units[name] = &unitResult{compiling: true}
	names, err := prog.loadUnit(source, file)
	if err != nil {
		delete(h.units, name)
		return nil, err
	}
	h.units[name] = &unitResult{globalNames: names}
	h.addGlobalNames(names)
	return names, nil
}
