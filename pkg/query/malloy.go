package query

import "strings"

// LiteralToMalloy renders a literal in Malloy syntax.
func LiteralToMalloy(l Literal) string {
	switch l.Kind {
	case StringLiteral:
		return QuoteString(l.StringValue)
	case NumberLiteral:
		if l.NumberText != "" {
			return l.NumberText
		}
		return FormatNumber(l.NumberValue)
	case BooleanLiteral:
		if l.BooleanValue {
			return "true"
		}
		return "false"
	case DateLiteral:
		return "@" + timeLiteralText(l.TimeValue, true, l.Granularity)
	case TimestampLiteral:
		s := "@" + timeLiteralText(l.TimeValue, false, l.Granularity)
		if l.Timezone != "" {
			s += "[" + l.Timezone + "]"
		}
		return s
	case FilterExpressionLiteral:
		return quoteFilter(l.StringValue)
	}
	return "null"
}

func timeLiteralText(v string, isDate bool, granularity string) string {
	t, err := ParseTime(v)
	if err != nil {
		return v
	}
	return FormatTime(t, isDate, granularity)
}

// ReferenceToMalloy renders a dotted, quoted field reference.
func ReferenceToMalloy(r Reference) string {
	parts := make([]string, 0, len(r.Path)+1)
	for _, p := range r.Path {
		parts = append(parts, QuoteIdentifier(p))
	}
	parts = append(parts, QuoteIdentifier(r.Name))
	return strings.Join(parts, ".")
}

// ExpressionToMalloy renders a filter's left-hand side.
func ExpressionToMalloy(e Expression) string {
	ref := ReferenceToMalloy(e.Field)
	if e.Kind == TimeTruncation && e.Truncation != "" {
		return ref + "." + e.Truncation
	}
	return ref
}

// FilterToMalloy renders a drill filter.
func FilterToMalloy(f Filter) string {
	lhs := ExpressionToMalloy(f.Expression)
	if f.Kind == FilterString {
		return lhs + " ~ " + quoteFilter(f.Filter)
	}
	return lhs + " = " + LiteralToMalloy(f.Value)
}

// ToMalloy renders q as a run statement.
func ToMalloy(q Query, opts PrintOptions) string {
	p := newPrinter(opts)
	p.write("run: ")
	p.source(q.Definition.Source)
	p.write(" -> ")
	p.segment(q.Definition.View)
	return p.String()
}

func (p *printer) source(s SourceReference) {
	p.write(QuoteIdentifier(s.Name))
	if len(s.Parameters) == 0 {
		return
	}
	items := make([]string, len(s.Parameters))
	for i, param := range s.Parameters {
		items[i] = QuoteIdentifier(param.Name) + " is " + LiteralToMalloy(param.Value)
	}
	if len(items) == 1 {
		p.write("(" + items[0] + ")")
		return
	}
	p.write("(")
	p.writeln()
	p.indent()
	p.list(items)
	p.writeln()
	p.dedent()
	p.write(")")
}

func (p *printer) segment(s Segment) {
	var drills []string
	for _, op := range s.Operations {
		if op.Kind == Drill {
			drills = append(drills, FilterToMalloy(op.Filter))
		}
	}
	switch len(drills) {
	case 0:
		p.write("{ }")
	case 1:
		p.write("{ drill: " + drills[0] + " }")
	default:
		p.write("{")
		p.writeln()
		p.indent()
		p.write("drill:")
		p.writeln()
		p.indent()
		p.list(drills)
		p.writeln()
		p.dedent()
		p.dedent()
		p.write("}")
	}
}
