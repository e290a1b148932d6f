package tag

import (
	"errors"
	"fmt"
	"strings"
)

// Common annotation prefixes.
const (
	PrefixRender   = "# "
	PrefixRenderNS = "#r "
	PrefixModel    = "## "
	PrefixMetadata = "#(malloy) "
)

// ParseError describes a malformed annotation line.
type ParseError struct {
	Line    int
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tag line %d, offset %d: %s", e.Line, e.Offset, e.Message)
}

// Parse parses annotation lines into a single tag, applying lines in order.
// Each line's prefix, up to the first space, is stripped. A malformed line
// keeps whatever was parsed before the error; all errors are joined.
func Parse(lines ...string) (*Tag, error) {
	t := New()
	var errs []error
	for i, line := range lines {
		if err := t.parseLine(stripPrefix(line), i); err != nil {
			errs = append(errs, err)
		}
	}
	return t, errors.Join(errs...)
}

// FromAnnotations parses the lines starting with any of the prefixes. Lines
// are grouped by prefix in the order the prefixes are given, so later
// prefixes override earlier ones.
func FromAnnotations(lines []string, prefixes ...string) (*Tag, error) {
	var selected []string
	for _, p := range prefixes {
		for _, l := range lines {
			if strings.HasPrefix(l, p) {
				selected = append(selected, l)
			}
		}
	}
	return Parse(selected...)
}

// Render parses the render tag: "# " lines followed by "#r " lines.
func Render(lines []string) (*Tag, error) {
	return FromAnnotations(lines, PrefixRender, PrefixRenderNS)
}

func stripPrefix(line string) string {
	if !strings.HasPrefix(line, "#") {
		return line
	}
	i := strings.IndexByte(line, ' ')
	if i < 0 {
		return ""
	}
	return line[i+1:]
}

type parser struct {
	l    *lexer
	cur  token
	peek token
	line int
}

func (t *Tag) parseLine(input string, line int) error {
	p := &parser{l: newLexer(input), line: line}
	p.advance()
	p.advance()
	for p.cur.typ != tokenEOF {
		if err := p.parseProperty(t); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) advance() {
	p.cur = p.peek
	p.peek = p.l.next()
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.line, Offset: p.cur.offset, Message: fmt.Sprintf(format, args...)}
}

// parsePath reads a dotted property path. Any segment may be a backtick
// identifier, so a path can span several adjacent tokens: a.`b c`.d lexes
// as the word "a.", the identifier "b c" and the word ".d".
func (p *parser) parsePath() ([]string, error) {
	if p.cur.typ != tokenWord && p.cur.typ != tokenQuotedIdent {
		return nil, p.errorf("expected property name, got %s", p.cur.typ)
	}
	var segs []string
	for {
		tok := p.cur
		if tok.typ == tokenQuotedIdent {
			segs = append(segs, tok.literal)
			p.advance()
			if p.cur.typ != tokenWord || p.cur.offset != tok.end {
				return segs, nil
			}
			if !strings.HasPrefix(p.cur.literal, ".") {
				return nil, p.errorf("expected '.' after %q", tok.literal)
			}
			continue
		}

		lit := tok.literal
		if len(segs) > 0 {
			lit = lit[1:]
		}
		parts := strings.Split(lit, ".")
		open := parts[len(parts)-1] == "" && p.peek.typ == tokenQuotedIdent && p.peek.offset == tok.end
		if open {
			parts = parts[:len(parts)-1]
		}
		for _, s := range parts {
			if s == "" {
				return nil, p.errorf("empty path segment in %q", tok.literal)
			}
		}
		segs = append(segs, parts...)
		p.advance()
		if !open {
			return segs, nil
		}
	}
}

// parseProperty parses one property statement into target.
func (p *parser) parseProperty(target *Tag) error {
	if p.cur.typ == tokenWord && strings.HasPrefix(p.cur.literal, "-") {
		p.cur.literal = p.cur.literal[1:]
		p.cur.offset++
		if p.cur.literal == "" {
			if p.peek.typ != tokenQuotedIdent || p.peek.offset != p.cur.end {
				return p.errorf("expected property name after '-'")
			}
			p.advance()
		}
		path, err := p.parsePath()
		if err != nil {
			return err
		}
		target.remove(path)
		return nil
	}

	path, err := p.parsePath()
	if err != nil {
		return err
	}

	switch p.cur.typ {
	case tokenEq:
		p.advance()
		if p.cur.typ == tokenLBrace {
			props := New()
			if err := p.parseBlock(props); err != nil {
				return err
			}
			node := target.ensure(path)
			node.keys = props.keys
			node.props = props.props
			return nil
		}
		val, err := p.parseValue()
		if err != nil {
			return err
		}
		node := target.ensure(path)
		node.assign(val)
		if p.cur.typ == tokenLBrace {
			return p.parseBlock(node)
		}
		return nil
	case tokenLBrace:
		return p.parseBlock(target.ensure(path))
	}
	target.ensure(path)
	return nil
}

// parseBlock parses "{ prop ... }" merging into target.
func (p *parser) parseBlock(target *Tag) error {
	p.advance() // {
	for p.cur.typ != tokenRBrace {
		if p.cur.typ == tokenEOF {
			return p.errorf("unterminated property block")
		}
		if err := p.parseProperty(target); err != nil {
			return err
		}
	}
	p.advance() // }
	return nil
}

func (p *parser) parseValue() (*Tag, error) {
	switch p.cur.typ {
	case tokenWord, tokenString:
		s := p.cur.literal
		p.advance()
		return &Tag{eq: &s}, nil
	case tokenLBracket:
		return p.parseArray()
	case tokenIllegal:
		return nil, p.errorf("%s", p.cur.literal)
	}
	return nil, p.errorf("expected value, got %s", p.cur.typ)
}

func (p *parser) parseArray() (*Tag, error) {
	arr := &Tag{isArray: true, array: []*Tag{}}
	p.advance() // [
	// elements are separated by exactly one comma; a trailing comma is allowed
	sep := true
	for p.cur.typ != tokenRBracket {
		switch p.cur.typ {
		case tokenEOF:
			return nil, p.errorf("unterminated array")
		case tokenComma:
			if sep {
				return nil, p.errorf("empty array element")
			}
			sep = true
			p.advance()
			continue
		}
		if !sep {
			return nil, p.errorf("expected ',' between array elements")
		}
		sep = false
		if p.cur.typ == tokenLBrace {
			elem := New()
			if err := p.parseBlock(elem); err != nil {
				return nil, err
			}
			arr.array = append(arr.array, elem)
			continue
		}
		elem, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if p.cur.typ == tokenLBrace {
			if err := p.parseBlock(elem); err != nil {
				return nil, err
			}
		}
		arr.array = append(arr.array, elem)
	}
	p.advance() // ]
	return arr, nil
}
