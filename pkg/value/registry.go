package value

// TypeRegistry resolves the built-in type names spec.md's reader recognizes
// as type constraints (`given num`, `fun f(x: num)`). NewTypeRegistry builds
// it once and nothing mutates it afterwards; no package in this module
// constructs one (the compiler resolves constraints through its own
// builtinTypes table).
type TypeRegistry struct {
	byName map[string]Type
}

func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{byName: make(map[string]Type)}
	r.register("num", func(v Value) bool { _, ok := v.(Num); return ok })
	r.register("str", func(v Value) bool { _, ok := v.(Str); return ok })
	r.register("bool", func(v Value) bool { _, ok := v.(Bool); return ok })
	r.register("vec", func(v Value) bool { _, ok := v.(Vec); return ok })
	r.register("map", func(v Value) bool { _, ok := v.(*MapVal); return ok })
	r.register("regex", func(v Value) bool { _, ok := v.(Regex); return ok })
	r.register("range", func(v Value) bool { _, ok := v.(Range); return ok })
	r.register("type", func(v Value) bool {
		switch v.(type) {
		case Type, CompoundType, AnyValue:
			return true
		default:
			return false
		}
	})
	r.register("quote", func(v Value) bool { _, ok := v.(*QuoteVal); return ok })
	r.register("box", func(v Value) bool {
		switch v.(type) {
		case *Box, *BoxInstance:
			return true
		default:
			return false
		}
	})
	r.register("fun", func(v Value) bool {
		switch v.(type) {
		case *Concrete, *Generic, *Lambda, *FrozenLambda, *Builtin, *Partial:
			return true
		default:
			return false
		}
	})
	r.register("any", func(Value) bool { return true })
	return r
}

func (r *TypeRegistry) register(name string, pred func(Value) bool) {
	r.byName[name] = Type{Name: name, Predicate: pred}
}

func (r *TypeRegistry) Lookup(name string) (Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

func (r *TypeRegistry) MustLookup(name string) Type {
	t, ok := r.byName[name]
	if !ok {
		panic("value: unknown builtin type " + name)
	}
	return t
}
