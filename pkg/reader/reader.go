// Package reader implements Ven's Pratt parser (spec.md §4.1): a lexer
// token stream in, a slice of top-level quotes plus `distinct`/`expose`
// directives out. Follows the teacher's Compiler struct shape (pkg/lux's
// []Token + pos + trace) but produces an AST instead of emitting bytecode
// directly — Ven's pipeline separates Read from Compile.
package reader

import (
	"fmt"

	"github.com/rmay/venlang/pkg/ast"
	"github.com/rmay/venlang/pkg/lexer"
	"github.com/rmay/venlang/pkg/readtime"
	"github.com/rmay/venlang/pkg/verrors"
)

// Macro is a user-registered nud parselet (`nud NAME = <{...}>` or
// `nud NAME(args){...}`, spec.md §4.1). Params is empty for the bodyless
// `nud NAME = envelope` form.
type Macro struct {
	Params []string
	Body   ast.Quote
}

// Reader walks a token stream producing quotes. One Reader handles one
// source unit; nested envelopes reuse the same token stream but hand off
// to pkg/readtime for evaluation.
type Reader struct {
	file    string
	toks    []lexer.Token
	pos     int
	trace   bool
	macros  map[string]Macro
	distinct string
	exposes []string
}

// Read tokenizes and parses src, returning the unit's top-level quotes
// plus any `distinct`/`expose` directives (spec.md §4.1's
// `read(source, file) -> (quotes, distinct?, exposes[])`).
func Read(src, file string, trace bool) (quotes []ast.Quote, distinct string, exposes []string, err error) {
	toks, err := lexer.Tokenize(src, file, trace)
	if err != nil {
		return nil, "", nil, verrors.ReadError(file, 0, 0, "", "%v", err)
	}
	r := &Reader{file: file, toks: toks, trace: trace, macros: map[string]Macro{}}
	quotes, err = r.parseProgram()
	if err != nil {
		return nil, "", nil, err
	}
	return quotes, r.distinct, r.exposes, nil
}

func (r *Reader) errorf(tok lexer.Token, format string, args ...any) error {
	return verrors.ReadError(r.file, tok.Line, tok.Column, tok.Value, format, args...)
}

func (r *Reader) cur() lexer.Token {
	if r.pos >= len(r.toks) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return r.toks[r.pos]
}

func (r *Reader) peekN(n int) lexer.Token {
	if r.pos+n >= len(r.toks) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return r.toks[r.pos+n]
}

func (r *Reader) advance() lexer.Token {
	tok := r.cur()
	if r.pos < len(r.toks) {
		r.pos++
	}
	return tok
}

func (r *Reader) atEOF() bool { return r.cur().Type == lexer.TokenEOF }

func (r *Reader) isWord(name string) bool {
	return r.cur().Type == lexer.TokenWord && r.cur().Value == name
}

func (r *Reader) isSymbol(sym string) bool {
	return r.cur().Type == lexer.TokenSymbol && r.cur().Value == sym
}

func (r *Reader) expectSymbol(sym string) (lexer.Token, error) {
	if !r.isSymbol(sym) {
		return lexer.Token{}, r.errorf(r.cur(), "expected %q, got %q", sym, r.cur().Value)
	}
	return r.advance(), nil
}

func (r *Reader) expectWord() (lexer.Token, error) {
	if r.cur().Type != lexer.TokenWord {
		return lexer.Token{}, r.errorf(r.cur(), "expected identifier, got %q", r.cur().Value)
	}
	return r.advance(), nil
}

func (r *Reader) tag() ast.Tag {
	return ast.Tag{File: r.file, Line: r.cur().Line}
}

// parseProgram reads top-level statements until EOF, handling
// `distinct NAME;` and `expose NAME;` directives inline (spec.md §4.1).
func (r *Reader) parseProgram() ([]ast.Quote, error) {
	var quotes []ast.Quote
	for !r.atEOF() {
		if r.isWord("distinct") {
			r.advance()
			name, err := r.expectWord()
			if err != nil {
				return nil, err
			}
			r.distinct = name.Value
			r.skipOptionalSemicolon()
			continue
		}
		if r.isWord("expose") {
			r.advance()
			name, err := r.expectWord()
			if err != nil {
				return nil, err
			}
			r.exposes = append(r.exposes, name.Value)
			r.skipOptionalSemicolon()
			continue
		}
		if r.isWord("nud") {
			if err := r.parseMacroDefinition(); err != nil {
				return nil, err
			}
			continue
		}
		q, err := r.parseStatement()
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
		r.skipOptionalSemicolon()
	}
	return quotes, nil
}

func (r *Reader) skipOptionalSemicolon() {
	if r.isSymbol(";") {
		r.advance()
	}
}

// parseMacroDefinition handles `nud NAME = <envelope>` and
// `nud NAME(args){ body }` (spec.md §4.1).
func (r *Reader) parseMacroDefinition() error {
	r.advance() // 'nud'
	name, err := r.expectWord()
	if err != nil {
		return err
	}
	var params []string
	if r.isSymbol("(") {
		r.advance()
		for !r.isSymbol(")") {
			p, err := r.expectWord()
			if err != nil {
				return err
			}
			params = append(params, p.Value)
			if r.isSymbol(",") {
				r.advance()
			}
		}
		r.advance() // ')'
	}
	var body ast.Quote
	if r.isSymbol("=") {
		r.advance()
		body, err = r.parseStatement()
	} else {
		body, err = r.parseBlock()
	}
	if err != nil {
		return err
	}
	r.skipOptionalSemicolon()
	r.macros[name.Value] = Macro{Params: params, Body: body}
	return nil
}
