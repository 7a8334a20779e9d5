// Package lang implements the surface syntax: a lexer and recursive-descent
// parser that turn program text into the ast package's Block/Statement/Expr
// trees, per the grammar in spec §6.1.
package lang

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokIdent
	tokInt
	tokString
	tokPlus
	tokDot
	tokEq
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer scans one block's text into a token stream. Blocks are lexed
// independently (ParseProgram splits the program into blocks before any of
// this runs), so newlines inside a block are significant but the lexer
// never sees the blank-line block separator itself.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) tokens() ([]token, error) {
	var out []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.kind == tokEOF {
			return out, nil
		}
	}
}

func isSymbolStart(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isSymbolCont(b byte) bool {
	return isSymbolStart(b) || (b >= '0' && b <= '9') || b == '-'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
			continue
		case c == '\n':
			start := l.pos
			l.pos++
			return token{kind: tokNewline, pos: start}, nil
		case c == '+':
			start := l.pos
			l.pos++
			return token{kind: tokPlus, text: "+", pos: start}, nil
		case c == '.':
			start := l.pos
			l.pos++
			return token{kind: tokDot, text: ".", pos: start}, nil
		case c == '=':
			start := l.pos
			l.pos++
			return token{kind: tokEq, text: "=", pos: start}, nil
		case c == '(':
			start := l.pos
			l.pos++
			return token{kind: tokLParen, text: "(", pos: start}, nil
		case c == ')':
			start := l.pos
			l.pos++
			return token{kind: tokRParen, text: ")", pos: start}, nil
		case c == ',':
			start := l.pos
			l.pos++
			return token{kind: tokComma, text: ",", pos: start}, nil
		case c == '"':
			return l.lexString()
		case isDigit(c):
			return l.lexInt()
		case isSymbolStart(c):
			return l.lexSymbol()
		default:
			return token{}, fmt.Errorf("lang: unexpected character %q at offset %d", c, l.pos)
		}
	}
	return token{kind: tokEOF, pos: l.pos}, nil
}

func (l *lexer) lexString() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	begin := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '"' {
		if l.src[l.pos] == '\n' {
			return token{}, fmt.Errorf("lang: unterminated string starting at offset %d", start)
		}
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{}, fmt.Errorf("lang: unterminated string starting at offset %d", start)
	}
	text := l.src[begin:l.pos]
	l.pos++ // closing quote
	return token{kind: tokString, text: text, pos: start}, nil
}

func (l *lexer) lexInt() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	return token{kind: tokInt, text: l.src[start:l.pos], pos: start}, nil
}

func (l *lexer) lexSymbol() (token, error) {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) && isSymbolCont(l.src[l.pos]) {
		l.pos++
	}
	return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}, nil
}

// stripBlank reports whether a line is empty once trailing/leading
// horizontal whitespace is removed — used by the block splitter to find
// blank-line separators.
func stripBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
