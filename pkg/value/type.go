package value


// Type is a named predicate over values (spec.md §3.2). Built-in types
// (num, str, vec, map, bool, ...) are constructed by NewTypeRegistry here
// and by the compiler's own builtinTypes table.
type Type struct {
	Name      string
	Predicate func(Value) bool
}

func (t Type) Kind() Kind     { return KindType }
func (t Type) String() string { return t.Name }
func (t Type) Truthy() bool   { return true }

func (t Type) Eqv(o Value) bool {
	ot, ok := o.(Type)
	return ok && ot.Name == t.Name
}

func (t Type) Accepts(v Value) bool {
	if t.Predicate == nil {
		return false
	}
	return t.Predicate(v)
}

// AnyValue is the universal type/constraint: matches everything.
type AnyValue struct{}

func (AnyValue) Kind() Kind     { return KindAny }
func (AnyValue) String() string { return "any" }
func (AnyValue) Truthy() bool   { return true }
func (AnyValue) Eqv(o Value) bool {
	_, ok := o.(AnyValue)
	return ok
}

// CompoundType is `lead(args...)` (spec.md §3.2/§4.7).
type CompoundType struct {
	Lead Type
	Args []Value
}

func (c CompoundType) Kind() Kind { return KindCompoundType }

func (c CompoundType) String() string {
	s := c.Lead.Name + "("
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

func (c CompoundType) Truthy() bool { return true }

func (c CompoundType) Eqv(o Value) bool {
	oc, ok := o.(CompoundType)
	if !ok || !oc.Lead.Eqv(c.Lead) || len(oc.Args) != len(c.Args) {
		return false
	}
	for i := range c.Args {
		if !c.Args[i].Eqv(oc.Args[i]) {
			return false
		}
	}
	return true
}

// Match implements spec.md §4.7's compound-type matching:
//
//   - lead = any:  argument matches any of Args (OR).
//   - lead = vec:  argument is a Vec and every item matches at least one Arg.
//   - lead = map:  argument is a *MapVal; each key/value constraint pair in
//     Args must be matched by some entry of the argument; extra keys on the
//     argument are allowed (loose match).
//   - other Type leads: argument is of that type AND Eqv's one of Args.
func (c CompoundType) Match(arg Value) bool {
	switch c.Lead.Name {
	case "any":
		for _, a := range c.Args {
			if MatchConstraint(a, arg) {
				return true
			}
		}
		return false
	case "vec":
		v, ok := arg.(Vec)
		if !ok {
			return false
		}
		for _, item := range v.Items {
			matched := false
			for _, a := range c.Args {
				if MatchConstraint(a, item) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		return true
	case "map":
		m, ok := arg.(*MapVal)
		if !ok {
			return false
		}
		for i := 0; i+1 < len(c.Args); i += 2 {
			keyConstraint := c.Args[i]
			valConstraint := c.Args[i+1]
			found := false
			for _, e := range m.Entries {
				if MatchConstraint(keyConstraint, e.Key) && MatchConstraint(valConstraint, e.Value) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		if !c.Lead.Accepts(arg) {
			return false
		}
		for _, a := range c.Args {
			if arg.Eqv(a) {
				return true
			}
		}
		return false
	}
}

// MatchConstraint implements spec.md §3.3's ConstrainedParam matching rule:
// nil/AnyValue always matches; a Type constraint tests its predicate; a
// CompoundType recurses via Match; any other Value constraint is an `eqv?`
// comparison.
func MatchConstraint(constraint Value, arg Value) bool {
	if constraint == nil {
		return true
	}
	switch c := constraint.(type) {
	case AnyValue:
		return true
	case Type:
		return c.Accepts(arg)
	case CompoundType:
		return c.Match(arg)
	default:
		return constraint.Eqv(arg)
	}
}

// BuiltinTypeNames lists spec.md's base types for the `num`, `str`, `vec`,
// `map`, `bool`, `regex`, `range`, `fun`, `box`, `type` constraint keywords.
func BuiltinTypeNames() []string {
	return []string{"num", "str", "vec", "map", "bool", "regex", "range", "fun", "box", "type", "any", "quote"}
}
