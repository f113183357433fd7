package ast

import (
	"fmt"
	"strings"
)

// Detree renders a quote back to Ven source text. It is the inverse of
// parsing: parse(Detree(q)) == q for any fully hygienic q (spec.md §8).
func Detree(q Quote) string {
	var b strings.Builder
	detree(&b, q)
	return b.String()
}

func detreeList(b *strings.Builder, qs []Quote, sep string) {
	for i, q := range qs {
		if i > 0 {
			b.WriteString(sep)
		}
		detree(b, q)
	}
}

func detree(b *strings.Builder, q Quote) {
	if q == nil {
		return
	}
	switch n := q.(type) {
	case *Symbol:
		b.WriteString(n.Name)
	case *String:
		fmt.Fprintf(b, "%q", n.Bytes)
	case *Number:
		b.WriteString(n.Lexeme)
	case *Regex:
		b.WriteString("`")
		b.WriteString(n.Source)
		b.WriteString("`")
	case *True:
		b.WriteString("true")
	case *False:
		b.WriteString("false")
	case *Void:
		b.WriteString("void")
	case *UPop:
		b.WriteString("_")
	case *URef:
		b.WriteString("&_")
	case *Vector:
		b.WriteString("[")
		detreeList(b, n.Items, ", ")
		b.WriteString("]")
		if n.Filter != nil {
			b.WriteString(" |")
			detree(b, n.Filter)
			b.WriteString("|")
		}
	case *Unary:
		b.WriteString(n.Op)
		detree(b, n.Operand)
	case *Binary:
		detree(b, n.Left)
		b.WriteString(" ")
		b.WriteString(n.Op)
		b.WriteString(" ")
		detree(b, n.Right)
	case *Call:
		detree(b, n.Callee)
		b.WriteString("(")
		detreeList(b, n.Args, ", ")
		b.WriteString(")")
	case *Assign:
		detree(b, n.Target)
		if n.Bind {
			b.WriteString(" := ")
		} else {
			b.WriteString(" = ")
		}
		detree(b, n.Value)
	case *BinaryAssign:
		detree(b, n.Target)
		b.WriteString(" ")
		b.WriteString(n.Op)
		b.WriteString("= ")
		detree(b, n.Value)
	case *AccessField:
		detree(b, n.Head)
		for _, p := range n.Path {
			b.WriteString(".")
			b.WriteString(p)
		}
	case *Access:
		detree(b, n.Head)
		b.WriteString("[")
		detreeList(b, n.Args, ", ")
		b.WriteString("]")
	case *IntoBool:
		detree(b, n.Value)
		b.WriteString("?")
	case *ReturnIncrement:
		detree(b, n.Target)
		b.WriteString("++")
	case *ReturnDecrement:
		detree(b, n.Target)
		b.WriteString("--")
	case *BinarySpread:
		b.WriteString("|")
		b.WriteString(n.Op)
		b.WriteString("| ")
		detree(b, n.Body)
	case *LambdaSpread:
		b.WriteString("|")
		detree(b, n.Lambda)
		if n.Iterative {
			b.WriteString("|: ")
		} else {
			b.WriteString("| ")
		}
		detree(b, n.Operand)
	case *Block:
		b.WriteString("{ ")
		for _, s := range n.Body {
			detree(b, s)
			b.WriteString("; ")
		}
		b.WriteString("}")
	case *If:
		b.WriteString("if ")
		detree(b, n.Cond)
		b.WriteString(" ")
		detree(b, n.Succ)
		if n.Alt != nil {
			b.WriteString(" else ")
			detree(b, n.Alt)
		}
	case *Fun:
		b.WriteString("fun ")
		b.WriteString(n.Name)
		detreeParams(b, n.Params, n.Slurpy)
		if n.Given != nil {
			b.WriteString(" given ")
			detree(b, n.Given)
		}
		b.WriteString(" = ")
		detree(b, n.Body)
	case *Lambda:
		b.WriteString("(")
		detreeParams(b, n.Params, n.Slurpy)
		b.WriteString(") ")
		detree(b, n.Body)
	case *Ensure:
		b.WriteString("ensure ")
		detree(b, n.Expr)
	case *Queue:
		b.WriteString("queue ")
		detree(b, n.Value)
	case *Next:
		b.WriteString("next ")
		if n.Target != "" {
			b.WriteString(n.Target)
			b.WriteString(" ")
		}
		detreeList(b, n.Args, ", ")
	case *Return:
		b.WriteString("return ")
		detree(b, n.Value)
	case *InfiniteLoop:
		b.WriteString("loop ")
		detree(b, n.Body)
	case *BaseLoop:
		b.WriteString("loop ")
		detree(b, n.Cond)
		b.WriteString(" ")
		detree(b, n.Body)
	case *StepLoop:
		b.WriteString("loop ")
		detree(b, n.Init)
		b.WriteString(", ")
		detree(b, n.Cond)
		b.WriteString(", ")
		detree(b, n.Step)
		b.WriteString(" ")
		detree(b, n.Body)
	case *ComplexLoop:
		b.WriteString("loop ")
		b.WriteString(n.Name)
		b.WriteString(" = ")
		detreeList(b, n.Init, ", ")
		b.WriteString(", ")
		detree(b, n.Cond)
		b.WriteString(", ")
		detreeList(b, n.Step, ", ")
		b.WriteString(" ")
		detree(b, n.Body)
	case *Box:
		b.WriteString("box ")
		b.WriteString(n.Name)
		detreeParams(b, n.Params, false)
		if n.Given != nil {
			b.WriteString(" given ")
			detree(b, n.Given)
		}
		b.WriteString(" ")
		detree(b, n.Namespace)
	case *Immediate:
		b.WriteString("<")
		detree(b, n.Value)
		b.WriteString(">")
	case *PatternEnvelope:
		if n.Tight {
			b.WriteString("<[")
		} else {
			b.WriteString("<{")
		}
		detree(b, n.Value)
		if n.Tight {
			b.WriteString("]>")
		} else {
			b.WriteString("}>")
		}
	case *Map:
		b.WriteString("%[")
		for i, p := range n.Pairs {
			if i > 0 {
				b.WriteString(", ")
			}
			detree(b, p.Key)
			b.WriteString(": ")
			detree(b, p.Value)
		}
		b.WriteString("]")
	case *Range:
		if n.Lo != nil {
			detree(b, n.Lo)
		}
		b.WriteString("..")
		if n.Hi != nil {
			detree(b, n.Hi)
		}
	case *Dies:
		detree(b, n.Expr)
		b.WriteString(" dies")
	default:
		fmt.Fprintf(b, "<?%T?>", n)
	}
}

func detreeParams(b *strings.Builder, params []ConstrainedParam, slurpy bool) {
	b.WriteString("(")
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if p.Constraint != nil {
			b.WriteString(" ")
			detree(b, p.Constraint)
		}
	}
	if slurpy {
		if len(params) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("*")
	}
	b.WriteString(")")
}
