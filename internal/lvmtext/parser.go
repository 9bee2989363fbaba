package lvmtext

import (
	"fmt"

	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
)

// ValueKind discriminates the three scalar/array shapes a Value can hold.
type ValueKind int

const (
	KindInt ValueKind = iota
	KindStr
	KindArray
)

// Value is one of Int(i64), Str(string), or Array([]Value).
type Value struct {
	Kind  ValueKind
	Int   int64
	Str   string
	Array []Value
}

// Element is a document node: either a named section with ordered children
// or a named scalar assignment. Exactly one of Children/Value is valid,
// discriminated by IsSection.
type Element struct {
	Name      string
	IsSection bool
	Children  []Element
	Value     Value
}

// Document is the result of parsing one metadata text buffer: the ordered
// top-level elements plus whatever bytes followed them that did not parse
// as another element (reserved tail space, not an error).
type Document struct {
	Elements []Element
	Trailing []byte
}

type parser struct {
	lex *lexer
	src []byte
}

// Parse tokenizes and parses src as a sequence of top-level elements,
// stopping at the first byte that cannot begin another element and
// returning everything from there on as Document.Trailing. It never panics
// or loops: any genuine grammar violation inside a started element is
// reported as a *lvmerr.ParseError carrying the offending byte offset.
func Parse(src []byte) (*Document, error) {
	p := &parser{lex: newLexer(src), src: src}

	var elements []Element
	for {
		p.lex.skipInsignificant()
		b, ok := p.lex.peekByte()
		if !ok || !isIdentStart(b) {
			break
		}
		el, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}

	return &Document{Elements: elements, Trailing: src[p.lex.pos:]}, nil
}

func (p *parser) fail(where string, start int, err error) error {
	return lvmerr.NewParseError(where, int64(start), err)
}

func (p *parser) parseElement() (Element, error) {
	nameTok, err := p.lex.next()
	if err != nil {
		return Element{}, p.fail("element name", p.lex.pos, err)
	}
	if nameTok.kind != tokIdent {
		return Element{}, p.fail("element name", nameTok.start, fmt.Errorf("expected identifier"))
	}

	next, err := p.lex.next()
	if err != nil {
		return Element{}, p.fail("element body", p.lex.pos, err)
	}

	switch next.kind {
	case tokEquals:
		val, err := p.parseValue()
		if err != nil {
			return Element{}, err
		}
		return Element{Name: nameTok.text, Value: val}, nil
	case tokLBrace:
		children, err := p.parseSectionBody()
		if err != nil {
			return Element{}, err
		}
		return Element{Name: nameTok.text, IsSection: true, Children: children}, nil
	default:
		return Element{}, p.fail("element body", next.start, fmt.Errorf("expected '=' or '{' after identifier %q", nameTok.text))
	}
}

func (p *parser) parseSectionBody() ([]Element, error) {
	var children []Element
	for {
		p.lex.skipInsignificant()
		b, ok := p.lex.peekByte()
		if !ok {
			return nil, p.fail("section body", p.lex.pos, fmt.Errorf("unterminated section, expected '}'"))
		}
		if b == '}' {
			p.lex.pos++
			return children, nil
		}
		child, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
}

func (p *parser) parseValue() (Value, error) {
	tok, err := p.lex.next()
	if err != nil {
		return Value{}, p.fail("value", p.lex.pos, err)
	}
	switch tok.kind {
	case tokInt:
		return Value{Kind: KindInt, Int: tok.ival}, nil
	case tokString:
		return Value{Kind: KindStr, Str: tok.text}, nil
	case tokLBracket:
		return p.parseArray()
	default:
		return Value{}, p.fail("value", tok.start, fmt.Errorf("expected int, string, or '['"))
	}
}

func (p *parser) parseArray() (Value, error) {
	var items []Value

	p.lex.skipInsignificant()
	if b, ok := p.lex.peekByte(); ok && b == ']' {
		p.lex.pos++
		return Value{Kind: KindArray, Array: items}, nil
	}

	for {
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)

		next, err := p.lex.next()
		if err != nil {
			return Value{}, p.fail("array", p.lex.pos, err)
		}
		switch next.kind {
		case tokComma:
			continue
		case tokRBracket:
			return Value{Kind: KindArray, Array: items}, nil
		default:
			return Value{}, p.fail("array", next.start, fmt.Errorf("expected ',' or ']'"))
		}
	}
}
