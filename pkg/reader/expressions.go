package reader

import (
	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/lexer"
	"github.com/rmay/venlang/pkg/readtime"
)

// parseAssignment is the lowest-precedence level: `target = value`,
// `target := value`, and `target op= value` (spec.md §3.1's Assign and
// BinaryAssign). Anything else falls through to the binary/unary chain.
func (r *Reader) parseAssignment() (ast.Quote, error) {
	tag := r.tag()
	target, err := r.parseBinary(precLowest)
	if err != nil {
		return nil, err
	}
	if r.isSymbol(":") {
		rangeTag := r.tag()
		r.advance()
		var hi ast.Quote
		if !r.atRangeEnd() {
			hi, err = r.parseBinary(precAdditive)
			if err != nil {
				return nil, err
			}
		}
		target = &ast.Range{ast.New(rangeTag), target, hi}
	}
	switch {
	case r.isSymbol("="):
		r.advance()
		val, err := r.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{ast.New(tag), target, val, false}, nil
	case r.isSymbol(":="):
		r.advance()
		val, err := r.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{ast.New(tag), target, val, true}, nil
	case r.cur().Type == lexer.TokenSymbol && assignOps[r.cur().Value]:
		op := assignOpBase[r.advance().Value]
		val, err := r.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryAssign{ast.New(tag), op, target, val}, nil
	}
	return target, nil
}

// parseBinary implements precedence-climbing over the led table for
// genuinely binary (non-postfix) operators; postfix forms are consumed
// eagerly by parseUnary's trailing loop since they always bind tighter.
func (r *Reader) parseBinary(minPrec precedence) (ast.Quote, error) {
	left, err := r.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		opKey, ok := r.binaryOpHere()
		if !ok {
			return left, nil
		}
		prec := infixPrecedence[opKey]
		if prec < minPrec || prec == precPostfix {
			return left, nil
		}
		tag := r.tag()
		r.advance()
		right, err := r.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{ast.New(tag), opKey, left, right}
	}
}

func (r *Reader) binaryOpHere() (string, bool) {
	tok := r.cur()
	switch tok.Type {
	case lexer.TokenWord:
		if tok.Value == "or" || tok.Value == "and" || tok.Value == "is" || tok.Value == "in" || tok.Value == "x" {
			return tok.Value, true
		}
	case lexer.TokenSymbol:
		switch tok.Value {
		case "==", "!=", "<", ">", "<=", ">=", "+", "-", "*", "/", "%", "&", "~", "x":
			return tok.Value, true
		}
	}
	return "", false
}

var unaryOps = map[string]bool{"+": true, "-": true, "~": true, "&": true, "#": true, "%": true}

// parseUnary handles prefix operators (including `dies` and the `&_`
// special-case) and then eagerly applies any postfix operators to the
// resulting primary.
func (r *Reader) parseUnary() (ast.Quote, error) {
	tag := r.tag()
	if r.isSymbol("&") && r.peekN(1).Type == lexer.TokenWord && r.peekN(1).Value == "_" {
		r.advance()
		r.advance()
		return r.parsePostfix(&ast.URef{ast.New(tag)})
	}
	if r.isWord("dies") {
		r.advance()
		operand, err := r.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Dies{ast.New(tag), operand}, nil
	}
	if r.isWord("not") {
		r.advance()
		operand, err := r.parseUnary()
		if err != nil {
			return nil, err
		}
		return r.parsePostfix(&ast.Unary{ast.New(tag), "not", operand})
	}
	if r.cur().Type == lexer.TokenSymbol && unaryOps[r.cur().Value] {
		op := r.advance().Value
		operand, err := r.parseUnary()
		if err != nil {
			return nil, err
		}
		return r.parsePostfix(&ast.Unary{ast.New(tag), op, operand})
	}
	prim, err := r.parsePrimary()
	if err != nil {
		return nil, err
	}
	return r.parsePostfix(prim)
}

// parsePostfix applies `?`, `++`, `--`, `.field`, `[args]`, `(args)` in a
// loop, all of which bind tighter than any binary operator.
func (r *Reader) parsePostfix(prim ast.Quote) (ast.Quote, error) {
	for {
		tag := r.tag()
		switch {
		case r.isSymbol("?"):
			r.advance()
			prim = &ast.IntoBool{ast.New(tag), prim}
		case r.isSymbol("++"):
			r.advance()
			prim = &ast.ReturnIncrement{ast.New(tag), prim}
		case r.isSymbol("--"):
			r.advance()
			prim = &ast.ReturnDecrement{ast.New(tag), prim}
		case r.isSymbol("."):
			r.advance()
			var path []string
			for {
				name, err := r.expectWord()
				if err != nil {
					return nil, err
				}
				path = append(path, name.Value)
				if r.isSymbol(".") {
					r.advance()
					continue
				}
				break
			}
			prim = &ast.AccessField{ast.New(tag), prim, path}
		case r.isSymbol("["):
			r.advance()
			var args []ast.Quote
			for !r.isSymbol("]") {
				a, err := r.parseAssignment()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if r.isSymbol(",") {
					r.advance()
					continue
				}
				break
			}
			if _, err := r.expectSymbol("]"); err != nil {
				return nil, err
			}
			prim = &ast.Access{ast.New(tag), prim, args}
		case r.isSymbol("("):
			r.advance()
			var args []ast.Quote
			for !r.isSymbol(")") {
				a, err := r.parseAssignment()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if r.isSymbol(",") {
					r.advance()
					continue
				}
				break
			}
			if _, err := r.expectSymbol(")"); err != nil {
				return nil, err
			}
			prim = &ast.Call{ast.New(tag), prim, args}
		default:
			return prim, nil
		}
	}
}

// parsePrimary is the nud table: literals, grouping, vectors, maps,
// ranges, spreads, lambdas, and readtime envelopes.
func (r *Reader) parsePrimary() (ast.Quote, error) {
	tag := r.tag()
	tok := r.cur()
	switch tok.Type {
	case lexer.TokenNumber:
		r.advance()
		return &ast.Number{ast.New(tag), tok.Value}, nil
	case lexer.TokenString:
		r.advance()
		return &ast.String{ast.New(tag), tok.Value}, nil
	case lexer.TokenRegex:
		r.advance()
		return &ast.Regex{ast.New(tag), tok.Value}, nil
	case lexer.TokenWord:
		return r.parseWordPrimary()
	case lexer.TokenSymbol:
		return r.parseSymbolPrimary()
	}
	return nil, r.errorf(tok, "unexpected token %q", tok.Value)
}

func (r *Reader) parseWordPrimary() (ast.Quote, error) {
	tag := r.tag()
	tok := r.cur()
	switch tok.Value {
	case "true":
		r.advance()
		return &ast.True{ast.New(tag)}, nil
	case "false":
		r.advance()
		return &ast.False{ast.New(tag)}, nil
	case "void":
		r.advance()
		return &ast.Void{ast.New(tag)}, nil
	case "_":
		r.advance()
		return &ast.UPop{ast.New(tag)}, nil
	case "if":
		return r.parseIf()
	case "fun":
		return r.parseFun()
	case "box":
		return r.parseBox()
	case "loop":
		return r.parseLoop()
	case "dies":
		r.advance()
		operand, err := r.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Dies{ast.New(tag), operand}, nil
	case "ensure":
		return r.parseEnsure()
	case "queue":
		return r.parseQueue()
	case "return":
		return r.parseReturn()
	case "next":
		return r.parseNext()
	}
	if macro, ok := r.macros[tok.Value]; ok {
		return r.expandMacro(tok.Value, macro)
	}
	r.advance()
	return &ast.Symbol{ast.New(tag), tok.Value}, nil
}

func (r *Reader) parseSymbolPrimary() (ast.Quote, error) {
	tag := r.tag()
	switch r.cur().Value {
	case "(":
		r.advance()
		inner, err := r.parseAssignment()
		if err != nil {
			return nil, err
		}
		if _, err := r.expectSymbol(")"); err != nil {
			return nil, err
		}
		return inner, nil
	case "[":
		return r.parseVector()
	case "{":
		return r.parseMap()
	case "|":
		return r.parseSpread()
	case "\\":
		return r.parseLambda()
	case "<{":
		return r.parseEnvelope(false)
	case "<[":
		return r.parseEnvelope(true)
	case "<":
		return r.parseImmediate()
	case ":":
		return r.parseRange()
	}
	return nil, r.errorf(r.cur(), "unexpected token %q", r.cur().Value)
}

func (r *Reader) parseVector() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // '['
	var items []ast.Quote
	for !r.isSymbol("]") {
		item, err := r.parseAssignment()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if r.isSymbol(",") {
			r.advance()
			continue
		}
		break
	}
	if _, err := r.expectSymbol("]"); err != nil {
		return nil, err
	}
	return &ast.Vector{ast.New(tag), items, nil}, nil
}

// parseRange handles a leading bare `:hi` range (Lo omitted); the
// `lo:hi`/`lo:` forms are built in parseAssignment once lo is known.
func (r *Reader) parseRange() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // ':'
	var hi ast.Quote
	if !r.atRangeEnd() {
		var err error
		hi, err = r.parseBinary(precAdditive)
		if err != nil {
			return nil, err
		}
	}
	return &ast.Range{ast.New(tag), nil, hi}, nil
}

// atRangeEnd reports whether the cursor sits where a range's optional
// `hi` bound would be absent: a closing bracket/paren/brace, a
// separator, or a statement terminator.
func (r *Reader) atRangeEnd() bool {
	if r.atStatementEnd() || r.isSymbol(",") {
		return true
	}
	for _, sym := range []string{")", "]", "|", "|:"} {
		if r.isSymbol(sym) {
			return true
		}
	}
	return false
}

func (r *Reader) parseMap() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // '{'
	var pairs []ast.MapPair
	for !r.isSymbol("}") {
		// Map keys use parseBinary, not parseAssignment, so the `:` that
		// separates key from value is never mistaken for a range literal.
		key, err := r.parseBinary(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := r.expectSymbol(":"); err != nil {
			return nil, err
		}
		val, err := r.parseAssignment()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, ast.MapPair{Key: key, Value: val})
		if r.isSymbol(",") {
			r.advance()
			continue
		}
		break
	}
	if _, err := r.expectSymbol("}"); err != nil {
		return nil, err
	}
	return &ast.Map{ast.New(tag), pairs}, nil
}

// parseSpread handles the three spread forms of spec.md §4.2: `|op| vec`,
// `|expr| vec`, and `|expr|: vec` (iterative).
func (r *Reader) parseSpread() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // '|'

	if _, isBinOp := r.binaryOpHere(); isBinOp {
		next := r.peekN(1)
		if next.Type == lexer.TokenSymbol && (next.Value == "|" || next.Value == "|:") {
			op := r.advance().Value
			r.advance() // closing '|' or '|:'
			body, err := r.parseUnary()
			if err != nil {
				return nil, err
			}
			return &ast.BinarySpread{ast.New(tag), op, body}, nil
		}
	}

	lambdaBody, err := r.parseAssignment()
	if err != nil {
		return nil, err
	}
	if !r.isSymbol("|") && !r.isSymbol("|:") {
		return nil, r.errorf(r.cur(), "unclosed spread, expected '|' or '|:'")
	}
	iterative := r.advance().Value == "|:"
	operand, err := r.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.LambdaSpread{ast.New(tag), lambdaBody, operand, iterative}, nil
}

func (r *Reader) parseLambda() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // '\'
	params, slurpy, err := r.parseParamList()
	if err != nil {
		return nil, err
	}
	body, err := r.parseFunBody()
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{ast.New(tag), params, slurpy, body}, nil
}

// parseImmediate handles `<expr>`, the single-quote envelope form: the
// inner expression is parsed, then handed whole to the readtime evaluator
// as a one-statement body (spec.md §4.2).
func (r *Reader) parseImmediate() (ast.Quote, error) {
	tag := r.tag()
	r.advance() // '<'
	inner, err := r.parseAssignment()
	if err != nil {
		return nil, err
	}
	if _, err := r.expectSymbol(">"); err != nil {
		return nil, err
	}
	result, err := readtime.Eval(readtime.NewState(), []ast.Quote{inner})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// parseEnvelope handles `<{ body }>` (tight=false) and `<[ body ]>`
// (tight=true): the body is read as ordinary quotes, then evaluated by
// the readtime evaluator with a fresh State, and the result is spliced
// in as a single quote (spec.md §4.2).
func (r *Reader) parseEnvelope(tight bool) (ast.Quote, error) {
	tag := r.tag()
	r.advance() // '<{' or '<['
	closer := "}>"
	if tight {
		closer = "]>"
	}
	var body []ast.Quote
	for !r.isSymbol(closer) {
		if r.atEOF() {
			return nil, r.errorf(r.cur(), "unclosed envelope, expected %q", closer)
		}
		q, err := r.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, q)
		r.skipOptionalSemicolon()
	}
	r.advance() // closer
	result, err := readtime.Eval(readtime.NewState(), body)
	if err != nil {
		return nil, err
	}
	return &ast.PatternEnvelope{ast.New(tag), result, tight}, nil
}

// expandMacro invokes a user-registered nud parselet (spec.md §4.1): args
// (if the macro takes a parameter list) are parsed at the call site as
// quotes, bound unevaluated into a sub-State, and the macro body is run
// through the readtime evaluator.
func (r *Reader) expandMacro(name string, macro Macro) (ast.Quote, error) {
	r.advance() // the macro name token
	argBindings := map[string]ast.Quote{}
	if len(macro.Params) > 0 {
		if _, err := r.expectSymbol("("); err != nil {
			return nil, err
		}
		for i, p := range macro.Params {
			if i > 0 {
				if _, err := r.expectSymbol(","); err != nil {
					return nil, err
				}
			}
			arg, err := r.parseAssignment()
			if err != nil {
				return nil, err
			}
			argBindings[p] = arg
		}
		if _, err := r.expectSymbol(")"); err != nil {
			return nil, err
		}
	} else if r.isSymbol("(") {
		// Bodyless macros (`nud NAME = <{...}>`) may still be invoked
		// call-style with no arguments, e.g. `T()` (spec.md §8 scenario 5).
		r.advance()
		if _, err := r.expectSymbol(")"); err != nil {
			return nil, err
		}
	}
	sub := readtime.NewState().WithQuoteArgs(argBindings)
	return readtime.Eval(sub, []ast.Quote{macro.Body})
}
