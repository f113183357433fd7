package reader

import (
	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/lexer"
)

// parseStatement dispatches on a leading keyword, falling back to
// assignment-or-expression (spec.md §3.1's statement-shaped quotes: Fun,
// Box, If, loops, Return, Next, Queue, Ensure).
func (r *Reader) parseStatement() (ast.Quote, error) {
	switch {
	case r.isWord("fun"):
		return r.parseFun()
	case r.isWord("box"):
		return r.parseBox()
	case r.isWord("if"):
		return r.parseIf()
	case r.isWord("loop"):
		return r.parseLoop()
	case r.isWord("return"):
		return r.parseReturn()
	case r.isWord("next"):
		return r.parseNext()
	case r.isWord("queue"):
		return r.parseQueue()
	case r.isWord("ensure"):
		return r.parseEnsure()
	default:
		return r.parseAssignment()
	}
}

func (r *Reader) parseParamList() ([]ast.ConstrainedParam, bool, error) {
	if _, err := r.expectSymbol("("); err != nil {
		return nil, false, err
	}
	var params []ast.ConstrainedParam
	slurpy := false
	for !r.isSymbol(")") {
		if r.isSymbol("*") {
			r.advance()
			slurpy = true
		} else {
			name, err := r.expectWord()
			if err != nil {
				return nil, false, err
			}
			var constraint ast.Quote
			if r.isSymbol(":") {
				r.advance()
				constraint, err = r.parseBinary(precAdditive)
				if err != nil {
					return nil, false, err
				}
			}
			params = append(params, ast.ConstrainedParam{Name: name.Value, Constraint: constraint})
		}
		if r.isSymbol(",") {
			r.advance()
			continue
		}
		break
	}
	if _, err := r.expectSymbol(")"); err != nil {
		return nil, false, err
	}
	return params, slurpy, nil
}

// parseFun handles `fun NAME(params) [given TYPE] = expr` and
// `fun NAME(params) [given TYPE] { body }` (spec.md §8 scenario 2).
func (r *Reader) parseFun() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // 'fun'
	name, err := r.expectWord()
	if err != nil {
		return nil, err
	}
	params, slurpy, err := r.parseParamList()
	if err != nil {
		return nil, err
	}
	var given ast.Quote
	if r.isWord("given") {
		r.advance()
		given, err = r.parseBinary(precAdditive)
		if err != nil {
			return nil, err
		}
	}
	body, err := r.parseFunBody()
	if err != nil {
		return nil, err
	}
	return &ast.Fun{ast.New(tag), name.Value, params, body, given, slurpy}, nil
}

func (r *Reader) parseFunBody() (ast.Quote, error) {
	if r.isSymbol("=") {
		r.advance()
		return r.parseAssignment()
	}
	return r.parseBlock()
}

func (r *Reader) parseBox() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // 'box'
	name, err := r.expectWord()
	if err != nil {
		return nil, err
	}
	params, _, err := r.parseParamList()
	if err != nil {
		return nil, err
	}
	var given ast.Quote
	if r.isWord("given") {
		r.advance()
		given, err = r.parseBinary(precAdditive)
		if err != nil {
			return nil, err
		}
	}
	ns, err := r.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Box{ast.New(tag), name.Value, params, given, ns}, nil
}

func (r *Reader) parseIf() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // 'if'
	cond, err := r.parseAssignment()
	if err != nil {
		return nil, err
	}
	succ, err := r.parseBlock()
	if err != nil {
		return nil, err
	}
	var alt ast.Quote
	if r.isWord("else") {
		r.advance()
		if r.isWord("if") {
			alt, err = r.parseIf()
		} else {
			alt, err = r.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{ast.New(tag), cond, succ, alt}, nil
}

// parseLoop handles the four loop shapes of spec.md §3.1/§8:
//
//	loop { body }                              InfiniteLoop
//	loop cond { body }                          BaseLoop
//	loop init, cond, step { body }              StepLoop
//	loop name = init, cond, step { body }       ComplexLoop
func (r *Reader) parseLoop() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // 'loop'
	if r.isSymbol("{") {
		body, err := r.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.InfiniteLoop{ast.New(tag), body}, nil
	}

	name := ""
	if r.cur().Type == lexer.TokenWord && r.peekN(1).Type == lexer.TokenSymbol && r.peekN(1).Value == "=" {
		name = r.advance().Value
		r.advance() // '='
	}

	first, err := r.parseAssignment()
	if err != nil {
		return nil, err
	}
	if r.isSymbol("{") {
		body, err := r.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.BaseLoop{ast.New(tag), first, body}, nil
	}
	if _, err := r.expectSymbol(","); err != nil {
		return nil, err
	}
	cond, err := r.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := r.expectSymbol(","); err != nil {
		return nil, err
	}
	step, err := r.parseAssignment()
	if err != nil {
		return nil, err
	}
	body, err := r.parseBlock()
	if err != nil {
		return nil, err
	}
	if name != "" {
		return &ast.ComplexLoop{ast.New(tag), name, []ast.Quote{first}, cond, []ast.Quote{step}, body}, nil
	}
	return &ast.StepLoop{ast.New(tag), first, cond, step, body}, nil
}

// parseReturn handles bare `return`, `return expr`, and the
// `return return ...` override noted as an Open Question in spec.md §9.
func (r *Reader) parseReturn() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // 'return'
	if r.atStatementEnd() {
		return &ast.Return{ast.New(tag), nil, ast.ReturnExplicit}, nil
	}
	val, err := r.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ast.Return{ast.New(tag), val, ast.ReturnExplicit}, nil
}

// parseNext handles `next`, `next args...`, and `next: target args...`
// (an explicit `:`-marked target disambiguates the loop/fun label from
// the first argument expression).
func (r *Reader) parseNext() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // 'next'
	target := ""
	if r.isSymbol(":") {
		r.advance()
		tok, err := r.expectWord()
		if err != nil {
			return nil, err
		}
		target = tok.Value
	}
	var args []ast.Quote
	for !r.atStatementEnd() {
		arg, err := r.parseAssignment()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if r.isSymbol(",") {
			r.advance()
			continue
		}
		break
	}
	return &ast.Next{ast.New(tag), target, args}, nil
}

// parseQueue handles `queue expr` (append expr to the nearest enclosing
// block/loop's queue) and bare `queue` (read the nearest enclosing
// queue's current contents as a vector, without draining it) — the
// latter is how `return queue` (spec.md §8 scenario 6) reads back what
// a preceding `loop { queue i }` accumulated.
func (r *Reader) parseQueue() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // 'queue'
	if r.atStatementEnd() {
		return &ast.Queue{ast.New(tag), nil}, nil
	}
	val, err := r.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ast.Queue{ast.New(tag), val}, nil
}

func (r *Reader) parseEnsure() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // 'ensure'
	expr, err := r.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ast.Ensure{ast.New(tag), expr}, nil
}

// atStatementEnd reports whether the cursor sits at a statement
// terminator: `;`, `}`, or EOF.
func (r *Reader) atStatementEnd() bool {
	return r.atEOF() || r.isSymbol(";") || r.isSymbol("}")
}

func (r *Reader) parseBlock() (ast.Quote, error) {
	tag := r.tag()
	if _, err := r.expectSymbol("{"); err != nil {
		return nil, err
	}
	var body []ast.Quote
	for !r.isSymbol("}") {
		if r.atEOF() {
			return nil, r.errorf(r.cur(), "unclosed block")
		}
		q, err := r.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, q)
		r.skipOptionalSemicolon()
	}
	r.advance() // '}'
	return &ast.Block{ast.New(tag), body}, nil
}
