package parser

import (
	"io"
	"strings"

	"github.com/panyam/ecsl/decl"
)

// Parse reads a complete ECSL program.  The lexer is returned so callers can
// report positions of errors.
func Parse(r io.Reader) (*Lexer, *decl.FileDecl, error) {
	lexer := NewLexer(r)
	file := &decl.FileDecl{}
	if err := NewLLParser(lexer).Parse(file); err != nil {
		return lexer, nil, err
	}
	return lexer, file, nil
}

// ParseExpr parses a single expression.  Trailing input other than an
// optional semicolon is an error.
func ParseExpr(input string) (decl.Expr, error) {
	lexer := NewLexer(strings.NewReader(input))
	p := NewLLParser(lexer)
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if p.PeekToken() == SEMICOLON {
		p.Advance()
	}
	if _, err := p.Expect(eof); err != nil {
		return nil, err
	}
	return expr, nil
}
