// Package verrors implements spec.md §7's error kinds as one VenError type
// tagged by Kind (rather than bare fmt.Errorf, which is the teacher's style for VM
// failures) so the VM's trace stack (spec.md §4.5) can attach frames and
// pkg/hub can format the "[<kind>] <message>\n  at <name> (<file>:<line>)"
// user-visible shape uniformly across stages.
package verrors

import (
	"fmt"
	"strings"
)

// Frame is one entry of a propagating error's call/compile trace.
type Frame struct {
	Name string
	File string
	Line int
}

func (f Frame) String() string {
	return fmt.Sprintf("  at %s (%s:%d)", f.Name, f.File, f.Line)
}

// Kind names spec.md §7's five error kinds.
type Kind string

const (
	KindRead    Kind = "read"
	KindCompile Kind = "compile"
	KindRuntime Kind = "runtime"
	KindInternal Kind = "internal"
	KindExpose  Kind = "expose"
)

// VenError is the common shape every kind below implements.
type VenError struct {
	Kind    Kind
	Message string
	File    string
	Line    int
	Column  int // 0 if not applicable
	Lexeme  string
	Trace   []Frame
}

func (e *VenError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Message)
	for _, f := range e.Trace {
		b.WriteString("\n")
		b.WriteString(f.String())
	}
	return b.String()
}

func (e *VenError) WithFrame(f Frame) *VenError {
	e.Trace = append(e.Trace, f)
	return e
}

// ReadError is a lexical or parse failure (spec.md §4.1).
func ReadError(file string, line, column int, lexeme, msg string, args ...any) *VenError {
	return &VenError{
		Kind:    KindRead,
		Message: fmt.Sprintf(msg, args...),
		File:    file,
		Line:    line,
		Column:  column,
		Lexeme:  lexeme,
	}
}

// CompileError is an unresolved symbol, bad arity, or structural violation
// (spec.md §4.3, §7). It carries a compile trace.
func CompileError(file string, line int, msg string, args ...any) *VenError {
	return &VenError{
		Kind:    KindCompile,
		Message: fmt.Sprintf(msg, args...),
		File:    file,
		Line:    line,
	}
}

// RuntimeError is a coercion failure, no-variant dispatch, division by
// zero, or explicit `die` (spec.md §4.5, §7). It carries a call trace.
func RuntimeError(msg string, args ...any) *VenError {
	return &VenError{
		Kind:    KindRuntime,
		Message: fmt.Sprintf(msg, args...),
	}
}

// InternalError marks an invariant violation inside the engine (an
// "unreachable" state actually reached).
func InternalError(msg string, args ...any) *VenError {
	return &VenError{
		Kind:    KindInternal,
		Message: fmt.Sprintf(msg, args...),
	}
}

// ExposeError is an unresolved distinct, ambiguous distinct, or a cycle in
// the expose dependency graph (spec.md §4's expose protocol).
func ExposeError(msg string, args ...any) *VenError {
	return &VenError{
		Kind:    KindExpose,
		Message: fmt.Sprintf(msg, args...),
	}
}

// IsRuntime reports whether err is a RuntimeError, the only kind `dies`
// catches (spec.md §7: "dies ... catches any RuntimeError ... all other
// kinds propagate").
func IsRuntime(err error) bool {
	ve, ok := err.(*VenError)
	return ok && ve.Kind == KindRuntime
}
