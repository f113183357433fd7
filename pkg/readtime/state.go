// Package readtime implements the restricted tree-walking evaluator that
// runs during parsing (spec.md §4.4): unary/binary coercions, vectors and
// maps, `if`, spreads, `ensure`/`dies`, and a small builtin set. It never
// imports pkg/reader — the reader parses envelope bodies into quotes
// first and hands them here.
package readtime

import (
	"io"
	"os"

	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/value"
)

// State is one readtime evaluation context. Envelopes fork a child State
// via With; `borrow` shares the queue with the parent so writes inside a
// nested envelope are visible to the enclosing one (SPEC_FULL.md §6).
type State struct {
	parent     *State
	vars       map[string]value.Value
	queuePtr   *[]value.Value
	superlocal [][]value.Value
	out        io.Writer
}

// NewState creates a root readtime state with its own queue.
func NewState() *State {
	q := make([]value.Value, 0)
	return &State{vars: map[string]value.Value{}, queuePtr: &q, out: os.Stdout}
}

// With forks a child state. override seeds the child's own bindings
// (e.g. a user macro's bound arguments); borrow, when true, shares the
// parent's queue instead of giving the child a fresh one.
func (s *State) With(override map[string]value.Value, borrow bool) *State {
	child := &State{parent: s, vars: map[string]value.Value{}, out: s.out}
	for k, v := range override {
		child.vars[k] = v
	}
	if borrow {
		child.queuePtr = s.queuePtr
	} else {
		q := make([]value.Value, 0)
		child.queuePtr = &q
	}
	return child
}

// WithQuoteArgs forks a fresh (non-borrowing) child state with each
// argument quote lifted into a *value.QuoteVal binding — user macro
// parameters are bound unevaluated (spec.md §4.1's "argument quotes bound
// in a sub-State").
func (s *State) WithQuoteArgs(args map[string]ast.Quote) *State {
	override := make(map[string]value.Value, len(args))
	for name, q := range args {
		override[name] = value.NewQuote(q)
	}
	return s.With(override, false)
}

func (s *State) get(name string) (value.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// defineLocal always creates/overwrites in this state (`:=`).
func (s *State) defineLocal(name string, v value.Value) { s.vars[name] = v }

// defineBound walks the chain to update an existing binding, creating one
// here only if none exists (`=`), mirroring pkg/scope.Scope.Define.
func (s *State) defineBound(name string, v value.Value) {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return
		}
	}
	s.vars[name] = v
}

func (s *State) enterFrame() { s.superlocal = append(s.superlocal, nil) }

func (s *State) leaveFrame() {
	if len(s.superlocal) == 0 {
		return
	}
	s.superlocal = s.superlocal[:len(s.superlocal)-1]
}

func (s *State) pushSuperlocal(v value.Value) {
	if len(s.superlocal) == 0 {
		s.enterFrame()
	}
	top := len(s.superlocal) - 1
	s.superlocal[top] = append(s.superlocal[top], v)
}

func (s *State) popSuperlocal() (value.Value, bool) {
	if len(s.superlocal) == 0 {
		return nil, false
	}
	top := len(s.superlocal) - 1
	frame := s.superlocal[top]
	if len(frame) == 0 {
		return nil, false
	}
	v := frame[len(frame)-1]
	s.superlocal[top] = frame[:len(frame)-1]
	return v, true
}

func (s *State) peekSuperlocal() (value.Value, bool) {
	if len(s.superlocal) == 0 {
		return nil, false
	}
	frame := s.superlocal[len(s.superlocal)-1]
	if len(frame) == 0 {
		return nil, false
	}
	return frame[len(frame)-1], true
}

func (s *State) queue(v value.Value) { *s.queuePtr = append(*s.queuePtr, v) }
