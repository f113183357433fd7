package value

import "strings"

// Str is a Ven string value; content is stored as Go string (UTF-8).
type Str string

func (s Str) Kind() Kind     { return KindStr }
func (s Str) String() string { return string(s) }
func (s Str) Truthy() bool   { return true }

func (s Str) Eqv(o Value) bool {
	os, ok := o.(Str)
	return ok && os == s
}

func (s Str) Len() int { return len([]rune(string(s))) }

func (s Str) Repeat(n int) Str {
	if n <= 0 {
		return ""
	}
	return Str(strings.Repeat(string(s), n))
}
