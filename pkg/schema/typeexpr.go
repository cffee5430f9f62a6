package schema

import (
	"strconv"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

// LookupFunc 用于解析类型表达式中引用的记录名。
type LookupFunc func(name string) (*Schema, error)

// ParseType 解析类型表达式，例如 "map<text,seq<int32>>"、"tuple<int32,Point>"。
// 非内置类型名通过 lookup 解析为记录；lookup 可以为 nil。
func ParseType(expr string, lookup LookupFunc) (*Descriptor, error) {
	p := &typeParser{expr: expr, lookup: lookup}
	d, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.expr) {
		return nil, p.fail("unexpected trailing input")
	}
	if err := d.Validate(expr); err != nil {
		return nil, err
	}
	return d, nil
}

type typeParser struct {
	expr   string
	pos    int
	lookup LookupFunc
}

func (p *typeParser) fail(msg string) error {
	return merr.WrapErrTypeExprMalformed(p.expr, p.pos, msg)
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.expr) {
		switch p.expr[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		return true
	case c >= '0' && c <= '9', c == '.':
		return !first
	}
	return false
}

func (p *typeParser) ident() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.expr) && isIdentByte(p.expr[p.pos], p.pos == start) {
		p.pos++
	}
	if p.pos == start {
		return "", p.fail("expected type name")
	}
	return p.expr[start:p.pos], nil
}

func (p *typeParser) peek(c byte) bool {
	p.skipSpace()
	return p.pos < len(p.expr) && p.expr[p.pos] == c
}

func (p *typeParser) expect(c byte) error {
	if !p.peek(c) {
		return p.fail("expected '" + string(c) + "'")
	}
	p.pos++
	return nil
}

// params 解析 "<T, ...>" 形式的类型参数。
func (p *typeParser) params() ([]*Descriptor, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	var out []*Descriptor
	if p.peek('>') {
		p.pos++
		return out, nil
	}
	for {
		d, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
		if p.peek(',') {
			p.pos++
			continue
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func (p *typeParser) parseType() (*Descriptor, error) {
	start := p.pos
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	switch name {
	case "int32", "int":
		return Int32(), nil
	case "float64", "float":
		return Float64(), nil
	case "bool":
		return Bool(), nil
	case "text", "string", "str":
		return Text(), nil
	case "seq", "list", "set", "map", "tuple":
		args, err := p.params()
		if err != nil {
			return nil, err
		}
		return p.composite(name, start, args)
	}
	if p.lookup == nil {
		return nil, merr.WrapErrUnsupportedType(p.expr, name)
	}
	s, err := p.lookup(name)
	if err != nil {
		return nil, err
	}
	return RecordOf(s), nil
}

func (p *typeParser) composite(name string, start int, args []*Descriptor) (*Descriptor, error) {
	arity := func(n int) error {
		if len(args) != n {
			p.pos = start
			return p.fail(name + " takes " + strconv.Itoa(n) + " type parameter(s)")
		}
		return nil
	}
	switch name {
	case "seq", "list":
		if err := arity(1); err != nil {
			return nil, err
		}
		return SequenceOf(args[0]), nil
	case "set":
		if err := arity(1); err != nil {
			return nil, err
		}
		return SetOf(args[0]), nil
	case "map":
		if err := arity(2); err != nil {
			return nil, err
		}
		return MapOf(args[0], args[1]), nil
	default:
		return TupleOf(args...), nil
	}
}
