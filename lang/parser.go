package lang

import (
	"fmt"

	"github.com/impql/impql/ast"
	"github.com/impql/impql/eav"
)

// parser consumes the token stream of one block and builds its ast.Block.
// Grammar (spec §6.1):
//
//	block      = statement (NEWLINE statement)*
//	statement  = "+" expr "=" expr        ; Assert — target expr must end in a Dot
//	           | expr "=" expr            ; Pattern
//	expr       = simpleExpr ("." symbol)* ("+" expr)?
//	simpleExpr = symbol "(" expr ("," expr)* ")"   ; function call
//	           | value
//	           | symbol                    ; variable
//	           | "(" expr ")"
//	value      = integer | "true" | "false" | string
type parser struct {
	toks []token
	pos  int
}

func newParser(toks []token) *parser {
	return &parser{toks: toks}
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.peek()
	if t.kind != kind {
		return token{}, fmt.Errorf("lang: expected %s at offset %d, found %q", what, t.pos, t.text)
	}
	return p.advance(), nil
}

func (p *parser) skipNewlines() {
	for p.peek().kind == tokNewline {
		p.advance()
	}
}

// parseBlock parses one whole block: statements separated by one or more
// newlines, with optional leading/trailing blank lines within the block.
func parseBlock(src string) (ast.Block, error) {
	lx := newLexer(src)
	toks, err := lx.tokens()
	if err != nil {
		return nil, err
	}
	p := newParser(toks)
	p.skipNewlines()

	var stmts ast.Block
	for p.peek().kind != tokEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)

		if p.peek().kind == tokEOF {
			break
		}
		if p.peek().kind != tokNewline {
			return nil, fmt.Errorf("lang: expected newline between statements at offset %d", p.peek().pos)
		}
		p.skipNewlines()
	}
	return stmts, nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	if p.peek().kind == tokPlus {
		p.advance()
		target, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		dot, ok := target.(ast.Dot)
		if !ok {
			return nil, fmt.Errorf("lang: assert target at offset %d must be an attribute access (a.b)", p.peek().pos)
		}
		if _, err := p.expect(tokEq, `"="`); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.Assert{Entity: dot.Lhs, Attribute: dot.Rhs, Value: value}, nil
	}

	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEq, `"="`); err != nil {
		return nil, err
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.Pattern{Lhs: lhs, Rhs: rhs}, nil
}

func (p *parser) parseExpr() (ast.Expr, error) {
	e, err := p.parseSimpleExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokDot {
		p.advance()
		sym, err := p.expect(tokIdent, "attribute name")
		if err != nil {
			return nil, err
		}
		e = ast.Dot{Lhs: e, Rhs: sym.text}
	}
	if p.peek().kind == tokPlus {
		p.advance()
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		e = ast.Function{Name: "+", Args: []ast.Expr{e, rhs}}
	}
	return e, nil
}

func (p *parser) parseSimpleExpr() (ast.Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokLParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return e, nil
	case tokInt:
		p.advance()
		var n int64
		for _, c := range t.text {
			n = n*10 + int64(c-'0')
		}
		return ast.Constant{Value: eav.Int(n)}, nil
	case tokString:
		p.advance()
		return ast.Constant{Value: eav.Str(t.text)}, nil
	case tokIdent:
		switch t.text {
		case "true":
			p.advance()
			return ast.Constant{Value: eav.Bool(true)}, nil
		case "false":
			p.advance()
			return ast.Constant{Value: eav.Bool(false)}, nil
		}
		p.advance()
		if p.peek().kind == tokLParen {
			p.advance()
			var args []ast.Expr
			if p.peek().kind != tokRParen {
				for {
					arg, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.peek().kind != tokComma {
						break
					}
					p.advance()
				}
			}
			if _, err := p.expect(tokRParen, `")"`); err != nil {
				return nil, err
			}
			return ast.Function{Name: t.text, Args: args}, nil
		}
		return ast.Variable{Name: t.text}, nil
	default:
		return nil, fmt.Errorf("lang: expected expression at offset %d, found %q", t.pos, t.text)
	}
}
