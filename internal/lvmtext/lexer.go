// Package lvmtext tokenizes and parses LVM2's metadata text format: a
// hand-rolled config language of nested sections and scalar assignments,
// tolerant of "#" line comments, producing an untyped element tree that
// preserves source order.
package lvmtext

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokString
	tokEquals
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokComma
)

type token struct {
	kind  tokenKind
	text  string
	ival  int64
	start int
}

type lexer struct {
	src []byte
	pos int
}

func newLexer(src []byte) *lexer { return &lexer{src: src} }

func (l *lexer) peekByte() (byte, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// skipInsignificant consumes whitespace and "#" line comments, both of
// which are insignificant outside of string literals.
func (l *lexer) skipInsignificant() {
	for {
		b, ok := l.peekByte()
		if !ok {
			return
		}
		if isSpace(b) {
			l.pos++
			continue
		}
		if b == '#' {
			for {
				b, ok := l.peekByte()
				if !ok || b == '\n' {
					break
				}
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *lexer) next() (token, error) {
	l.skipInsignificant()
	start := l.pos
	b, ok := l.peekByte()
	if !ok {
		return token{kind: tokEOF, start: start}, nil
	}

	switch {
	case b == '=':
		l.pos++
		return token{kind: tokEquals, start: start}, nil
	case b == '{':
		l.pos++
		return token{kind: tokLBrace, start: start}, nil
	case b == '}':
		l.pos++
		return token{kind: tokRBrace, start: start}, nil
	case b == '[':
		l.pos++
		return token{kind: tokLBracket, start: start}, nil
	case b == ']':
		l.pos++
		return token{kind: tokRBracket, start: start}, nil
	case b == ',':
		l.pos++
		return token{kind: tokComma, start: start}, nil
	case b == '"':
		return l.lexString(start)
	case b == '-' || isDigit(b):
		return l.lexInt(start)
	case isIdentStart(b):
		return l.lexIdent(start)
	default:
		return token{}, fmt.Errorf("unexpected character %q at byte %d", b, start)
	}
}

func (l *lexer) lexIdent(start int) (token, error) {
	for {
		b, ok := l.peekByte()
		if !ok || !isIdentCont(b) {
			break
		}
		l.pos++
	}
	return token{kind: tokIdent, text: string(l.src[start:l.pos]), start: start}, nil
}

func (l *lexer) lexInt(start int) (token, error) {
	if b, ok := l.peekByte(); ok && b == '-' {
		l.pos++
	}
	digitsStart := l.pos
	for {
		b, ok := l.peekByte()
		if !ok || !isDigit(b) {
			break
		}
		l.pos++
	}
	if l.pos == digitsStart {
		return token{}, fmt.Errorf("malformed integer at byte %d", start)
	}
	text := string(l.src[start:l.pos])
	var v int64
	neg := text[0] == '-'
	digits := text
	if neg {
		digits = text[1:]
	}
	for _, c := range digits {
		v = v*10 + int64(c-'0')
	}
	if neg {
		v = -v
	}
	return token{kind: tokInt, text: text, ival: v, start: start}, nil
}

func (l *lexer) lexString(start int) (token, error) {
	l.pos++ // opening quote
	var sb strings.Builder
	for {
		b, ok := l.peekByte()
		if !ok {
			return token{}, fmt.Errorf("unterminated string starting at byte %d", start)
		}
		if b == '"' {
			l.pos++
			return token{kind: tokString, text: sb.String(), start: start}, nil
		}
		if b == '\\' {
			l.pos++
			esc, ok := l.peekByte()
			if !ok {
				return token{}, fmt.Errorf("unterminated escape in string starting at byte %d", start)
			}
			switch esc {
			case '"', '\\':
				sb.WriteByte(esc)
			default:
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}
			l.pos++
			continue
		}
		sb.WriteByte(b)
		l.pos++
	}
}
