package reader

// Binding power table for the led (infix/postfix) parselets (spec.md
// §4.1's Pratt parser, separate nud/led tables keyed by lexeme).
type precedence int

const (
	precLowest precedence = iota
	precOr
	precAnd
	precRelational // is, in, ==, !=, <, >, <=, >=
	precAdditive   // +, -
	precMultiplicative
	precPostfix // ?, ++, --, ., [, (
)

var infixPrecedence = map[string]precedence{
	"or":  precOr,
	"and": precAnd,
	"is":  precRelational,
	"in":  precRelational,
	"==":  precRelational,
	"!=":  precRelational,
	"<":   precRelational,
	">":   precRelational,
	"<=":  precRelational,
	">=":  precRelational,
	"+":   precAdditive,
	"-":   precAdditive,
	"*":   precMultiplicative,
	"/":   precMultiplicative,
	"%":   precMultiplicative,
	"&":   precMultiplicative,
	"~":   precMultiplicative,
	"x":   precMultiplicative,
	"?":   precPostfix,
	"++":  precPostfix,
	"--":  precPostfix,
	".":   precPostfix,
	"[":   precPostfix,
	"(":   precPostfix,
}

var assignOps = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true,
	"&=": true, "~=": true, "%=": true,
}

var assignOpBase = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/",
	"&=": "&", "~=": "~", "%=": "%",
}
