// Package basis supplies Ven's baked-in global unit (spec.md §6): the
// small set of native builtins every program sees without an `expose`,
// plus the compiled-chunk cache pkg/hub consults before recompiling an
// exposed unit's source.
package basis

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rmay/venlang/pkg/ops"
	"github.com/rmay/venlang/pkg/scope"
	"github.com/rmay/venlang/pkg/value"
)

// Install binds every baked-in builtin into root (spec.md §6's basis
// unit), returning root for chaining. root is typically the empty global
// scope a Program constructs before running any user unit.
func Install(root *scope.Scope) *scope.Scope {
	for _, b := range builtins {
		root.DefineLocal(b.Name, b)
	}
	return root
}

// Names lists every baked-in builtin's name, seeding pkg/hub's known-
// globals set (used only for "unresolved call" diagnostics, not for
// binding enforcement — see pkg/compiler.Compiler.resolveSymbol).
func Names() []string {
	out := make([]string, len(builtins))
	for i, b := range builtins {
		out[i] = b.Name
	}
	return out
}

var stdin = bufio.NewReader(os.Stdin)

var builtins = []*value.Builtin{
	{Name: "say", Arity: 1, Impl: say},
	{Name: "write", Arity: 1, Impl: write},
	{Name: "ask", Arity: 0, Impl: ask},
	{Name: "slurp", Arity: 1, Impl: slurp},
	{Name: "burp", Arity: 2, Impl: burp},
	{Name: "chars", Arity: 1, Impl: chars},
	{Name: "reverse", Arity: 1, Impl: reverse},
	{Name: "freeze", Arity: 1, Impl: freeze},
	{Name: "spawn", Arity: 2, Impl: spawn},
	{Name: "sort", Arity: 1, Impl: sortVec},
	{Name: "keys", Arity: 1, Impl: keys},
	{Name: "values", Arity: 1, Impl: values},
}

// say writes v's display form followed by a newline (spec.md §6).
func say(ctx value.Context, args []value.Value) (value.Value, error) {
	_, err := ctx.Stdout().WriteString(args[0].String() + "\n")
	return value.Unit, err
}

// write is say without the trailing newline.
func write(ctx value.Context, args []value.Value) (value.Value, error) {
	_, err := ctx.Stdout().WriteString(args[0].String())
	return value.Unit, err
}

// ask blocks for one line of stdin input (spec.md §5's "blocking
// builtins" suspension point), trimming the trailing newline.
func ask(ctx value.Context, args []value.Value) (value.Value, error) {
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return value.Str(""), nil
	}
	return value.Str(strings.TrimRight(line, "\r\n")), nil
}

func slurp(ctx value.Context, args []value.Value) (value.Value, error) {
	path, ok := args[0].(value.Str)
	if !ok {
		return nil, fmt.Errorf("slurp expects a str path, got %s", args[0].Kind())
	}
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("slurp: %w", err)
	}
	return value.Str(data), nil
}

func burp(ctx value.Context, args []value.Value) (value.Value, error) {
	path, ok := args[0].(value.Str)
	if !ok {
		return nil, fmt.Errorf("burp expects a str path, got %s", args[0].Kind())
	}
	content := ops.ToStr(args[1])
	if err := os.WriteFile(string(path), []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("burp: %w", err)
	}
	return value.Unit, nil
}

func chars(ctx value.Context, args []value.Value) (value.Value, error) {
	s, ok := args[0].(value.Str)
	if !ok {
		return nil, fmt.Errorf("chars expects a str, got %s", args[0].Kind())
	}
	runes := []rune(string(s))
	items := make([]value.Value, len(runes))
	for i, r := range runes {
		items[i] = value.Str(r)
	}
	return value.NewVec(items...), nil
}

func reverse(ctx value.Context, args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Vec:
		out := make([]value.Value, len(v.Items))
		for i, it := range v.Items {
			out[len(v.Items)-1-i] = it
		}
		return value.NewVec(out...), nil
	case value.Str:
		runes := []rune(string(v))
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return value.Str(runes), nil
	default:
		return nil, fmt.Errorf("reverse expects a str or vec, got %s", v.Kind())
	}
}

// freeze pins a lambda to the calling machine so it can later be spawned
// (spec.md §3.2, §5). ctx is always a *vm.Machine at the call site, which
// implements value.MachineHandle too — asserting to it here avoids a
// pkg/value -> pkg/vm import cycle.
func freeze(ctx value.Context, args []value.Value) (value.Value, error) {
	lam, ok := args[0].(*value.Lambda)
	if !ok {
		return nil, fmt.Errorf("freeze expects a lambda, got %s", args[0].Kind())
	}
	mh, ok := ctx.(value.MachineHandle)
	if !ok {
		return nil, fmt.Errorf("freeze: no machine handle available")
	}
	return &value.FrozenLambda{Lambda: lam, Machine: mh}, nil
}

// spawn enqueues a frozen lambda as a cooperative task (spec.md §5);
// the arguments the task runs with are passed as a single vec so spawn
// itself stays fixed-arity like every other Builtin.
func spawn(ctx value.Context, args []value.Value) (value.Value, error) {
	frozen, ok := args[0].(*value.FrozenLambda)
	if !ok {
		return nil, fmt.Errorf("spawn expects a frozen lambda, got %s", args[0].Kind())
	}
	vec, ok := args[1].(value.Vec)
	if !ok {
		return nil, fmt.Errorf("spawn expects a vec of arguments, got %s", args[1].Kind())
	}
	return ctx.Spawn(frozen, vec.Items)
}

func sortVec(ctx value.Context, args []value.Value) (value.Value, error) {
	v, ok := args[0].(value.Vec)
	if !ok {
		return nil, fmt.Errorf("sort expects a vec, got %s", args[0].Kind())
	}
	out := append([]value.Value{}, v.Items...)
	sort.SliceStable(out, func(i, j int) bool {
		ni, erri := ops.ToNum(out[i])
		nj, errj := ops.ToNum(out[j])
		if erri == nil && errj == nil {
			return ni.Cmp(nj) < 0
		}
		return out[i].String() < out[j].String()
	})
	return value.NewVec(out...), nil
}

func keys(ctx value.Context, args []value.Value) (value.Value, error) {
	m, ok := args[0].(*value.MapVal)
	if !ok {
		return nil, fmt.Errorf("keys expects a map, got %s", args[0].Kind())
	}
	out := make([]value.Value, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Key
	}
	return value.NewVec(out...), nil
}

func values(ctx value.Context, args []value.Value) (value.Value, error) {
	m, ok := args[0].(*value.MapVal)
	if !ok {
		return nil, fmt.Errorf("values expects a map, got %s", args[0].Kind())
	}
	out := make([]value.Value, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Value
	}
	return value.NewVec(out...), nil
}
