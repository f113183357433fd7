package value

import "regexp"

// Regex wraps a compiled host regular expression (spec.md §3.2). Ven makes
// no promise of Unicode-correctness beyond what stdlib regexp offers
// (spec.md §1 Non-goals), so no third-party regex engine is wired here.
type Regex struct {
	Compiled *regexp.Regexp
	Source   string
}

func CompileRegex(src string) (Regex, error) {
	re, err := regexp.Compile(src)
	if err != nil {
		return Regex{}, err
	}
	return Regex{Compiled: re, Source: src}, nil
}

func (r Regex) Kind() Kind     { return KindRegex }
func (r Regex) String() string { return "`" + r.Source + "`" }
func (r Regex) Truthy() bool   { return true }

func (r Regex) Eqv(o Value) bool {
	or, ok := o.(Regex)
	return ok && or.Source == r.Source
}

func (r Regex) MatchString(s string) bool {
	return r.Compiled != nil && r.Compiled.MatchString(s)
}
