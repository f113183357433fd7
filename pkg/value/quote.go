package value

import "github.com/rmay/venlang/pkg/ast"

// QuoteVal is an ast.Quote lifted into the value universe (spec.md §3.1:
// "Every quote is also a runtime value"). It is a pointer type so identity
// is stable across copies of Value (an interface holding *QuoteVal).
type QuoteVal struct {
	Q ast.Quote
}

func NewQuote(q ast.Quote) *QuoteVal { return &QuoteVal{Q: q} }

func (q *QuoteVal) Kind() Kind     { return KindQuote }
func (q *QuoteVal) String() string { return ast.Detree(q.Q) }
func (q *QuoteVal) Truthy() bool   { return true }

func (q *QuoteVal) Eqv(o Value) bool {
	oq, ok := o.(*QuoteVal)
	if !ok {
		return false
	}
	return ast.Detree(q.Q) == ast.Detree(oq.Q)
}
