// Package tag implements the annotation tag language carried by result
// schemas.
//
// An annotation line such as
//
//	# bar_chart size=lg y=[total, "net sales"] axis { title=Revenue }
//
// parses into a tree of properties. Every node may carry a scalar value, an
// array value, and nested properties. Property order is preserved so callers
// can scan declarations in the order they were written.
package tag

import (
	"regexp"
	"strconv"
	"strings"
)

// Tag is one node of a parsed annotation tree. The zero value is an empty
// tag. All accessors are safe on a nil *Tag.
type Tag struct {
	eq      *string
	array   []*Tag
	isArray bool
	keys    []string
	props   map[string]*Tag
	deleted bool
}

// Property is a named child of a tag in declaration order.
type Property struct {
	Name    string
	Tag     *Tag
	Deleted bool
}

// New returns an empty tag.
func New() *Tag {
	return &Tag{}
}

func (t *Tag) find(path []string) *Tag {
	cur := t
	for _, seg := range path {
		if cur == nil || cur.props == nil {
			return nil
		}
		next, ok := cur.props[seg]
		if !ok || next.deleted {
			return nil
		}
		cur = next
	}
	return cur
}

// Tag returns the node at path, or nil.
func (t *Tag) Tag(path ...string) *Tag {
	return t.find(path)
}

// Has reports whether a non-deleted node exists at path.
func (t *Tag) Has(path ...string) bool {
	return t.find(path) != nil
}

// Text returns the scalar value at path.
func (t *Tag) Text(path ...string) (string, bool) {
	n := t.find(path)
	if n == nil || n.eq == nil || n.isArray {
		return "", false
	}
	return *n.eq, true
}

// Numeric returns the scalar value at path parsed as a float.
func (t *Tag) Numeric(path ...string) (float64, bool) {
	s, ok := t.Text(path...)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsTrue reports whether the value at path is the word true.
func (t *Tag) IsTrue(path ...string) bool {
	s, ok := t.Text(path...)
	return ok && s == "true"
}

// IsFalse reports whether the value at path is the word false.
func (t *Tag) IsFalse(path ...string) bool {
	s, ok := t.Text(path...)
	return ok && s == "false"
}

// Array returns the array elements at path.
func (t *Tag) Array(path ...string) ([]*Tag, bool) {
	n := t.find(path)
	if n == nil || !n.isArray {
		return nil, false
	}
	return n.array, true
}

// TextArray returns the scalar elements of the array at path.
// Elements without a scalar value are skipped.
func (t *Tag) TextArray(path ...string) ([]string, bool) {
	elems, ok := t.Array(path...)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if s, ok := e.Text(); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// Bare reports whether the node at path exists and has no live properties.
func (t *Tag) Bare(path ...string) bool {
	n := t.find(path)
	if n == nil {
		return false
	}
	for _, k := range n.keys {
		if !n.props[k].deleted {
			return false
		}
	}
	return true
}

// Deleted reports whether this node was removed by a "-name" statement.
func (t *Tag) Deleted() bool {
	return t != nil && t.deleted
}

// Properties returns the direct children in declaration order, including
// deleted ones.
func (t *Tag) Properties() []Property {
	if t == nil {
		return nil
	}
	out := make([]Property, 0, len(t.keys))
	for _, k := range t.keys {
		p := t.props[k]
		out = append(out, Property{Name: k, Tag: p, Deleted: p.deleted})
	}
	return out
}

// child returns the named child, creating it when missing. A deleted child is
// revived with its previous contents cleared.
func (t *Tag) child(name string) *Tag {
	if t.props == nil {
		t.props = make(map[string]*Tag)
	}
	c, ok := t.props[name]
	if !ok {
		c = &Tag{}
		t.props[name] = c
		t.keys = append(t.keys, name)
		return c
	}
	if c.deleted {
		*c = Tag{}
	}
	return c
}

func (t *Tag) ensure(path []string) *Tag {
	cur := t
	for _, seg := range path {
		cur = cur.child(seg)
	}
	return cur
}

func (t *Tag) remove(path []string) {
	if len(path) == 0 {
		return
	}
	parent := t.ensure(path[:len(path)-1])
	c := parent.child(path[len(path)-1])
	*c = Tag{deleted: true}
}

// assign replaces the value of t, dropping existing properties.
func (t *Tag) assign(v *Tag) {
	t.eq = v.eq
	t.array = v.array
	t.isArray = v.isArray
	t.keys = nil
	t.props = nil
}

var bareWord = regexp.MustCompile(`^[A-Za-z0-9_.\-+:@/]+$`)

// String renders the tag back into annotation syntax without a prefix.
func (t *Tag) String() string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	t.writeProps(&sb)
	return sb.String()
}

func (t *Tag) writeProps(sb *strings.Builder) {
	first := true
	for _, k := range t.keys {
		p := t.props[k]
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		if p.deleted {
			sb.WriteByte('-')
			sb.WriteString(quoteName(k))
			continue
		}
		sb.WriteString(quoteName(k))
		if p.eq != nil || p.isArray {
			sb.WriteByte('=')
			p.writeValue(sb)
		}
		if len(p.keys) > 0 {
			sb.WriteString(" { ")
			p.writeProps(sb)
			sb.WriteString(" }")
		}
	}
}

func (t *Tag) writeValue(sb *strings.Builder) {
	if t.isArray {
		sb.WriteByte('[')
		for i, e := range t.array {
			if i > 0 {
				sb.WriteString(", ")
			}
			switch {
			case e.eq != nil || e.isArray:
				e.writeValue(sb)
				if len(e.keys) > 0 {
					sb.WriteString(" { ")
					e.writeProps(sb)
					sb.WriteString(" }")
				}
			default:
				sb.WriteString("{ ")
				e.writeProps(sb)
				sb.WriteString(" }")
			}
		}
		sb.WriteByte(']')
		return
	}
	sb.WriteString(quoteValue(*t.eq))
}

func quoteName(s string) string {
	if bareWord.MatchString(s) && !strings.Contains(s, ".") {
		return s
	}
	return "`" + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), "`", "\\`") + "`"
}

func quoteValue(s string) string {
	if s != "" && bareWord.MatchString(s) && s[0] != '-' {
		return s
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s
	}
	return `"` + strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`) + `"`
}
