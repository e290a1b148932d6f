package datatree

import (
	"slices"

	"github.com/leapstack-labs/leapviz/pkg/query"
	"github.com/leapstack-labs/leapviz/pkg/tag"
)

// DefaultSourceName is used when the result does not name its source.
const DefaultSourceName = "__source__"

// drillInfo is the drill metadata read from "#(malloy) " annotations when the
// field is built.
type drillInfo struct {
	path []string

	expr   *query.Expression
	code   string
	hasTag bool

	filters []drillFilter
}

type drillFilter struct {
	code   string
	stable *query.Filter
}

func (d drillFilter) text() string {
	if d.stable != nil {
		return query.FilterToMalloy(*d.stable)
	}
	return d.code
}

func (f *fieldBase) loadDrillInfo() {
	d := &f.drill
	d.path = f.computeDrillPath()

	if et := f.metadata.Tag("drill_expression"); et != nil {
		d.hasTag = true
		if code, ok := et.Text("code"); ok {
			d.code = code
		} else if code, ok := et.Text(); ok {
			d.code = code
		}
		d.expr = expressionFromTag(et)
	} else {
		d.expr = &query.Expression{
			Kind:  query.FieldReference,
			Field: query.Reference{Name: f.name, Path: slices.Clone(d.path)},
		}
	}

	entries, _ := f.metadata.Array("drill_filters")
	for _, entry := range entries {
		if _, ok := entry.Text("drill_view"); ok {
			continue
		}
		code, _ := entry.Text("code")
		d.filters = append(d.filters, drillFilter{code: code, stable: filterFromTag(entry)})
	}
}

func (f *fieldBase) computeDrillPath() []string {
	if f.parent == nil {
		return nil
	}
	parentPath := f.parent.DrillPath()
	if view, ok := f.metadata.Text("drill_view"); ok {
		return append(slices.Clone(parentPath), view)
	}
	if ref, ok := f.metadata.TextArray("drill_path"); ok {
		return ref
	}
	return parentPath
}

// DrillPath is the view path under which this field is reachable from the
// source.
func (f *fieldBase) DrillPath() []string { return slices.Clone(f.drill.path) }

// DrillStableExpression returns the structured expression this column was
// computed from. A column described only by expression text has none.
func (f *fieldBase) DrillStableExpression() (query.Expression, bool) {
	if f.drill.expr == nil {
		return query.Expression{}, false
	}
	return *f.drill.expr, true
}

// DrillExpression returns expression text for the column: the recorded
// code, the rendered structured expression, or the quoted name.
func (f *fieldBase) DrillExpression() string {
	if f.drill.code != "" {
		return f.drill.code
	}
	if f.drill.expr != nil {
		return query.ExpressionToMalloy(*f.drill.expr)
	}
	return query.QuoteIdentifier(f.name)
}

// StableDrillFilters returns the structured filters recorded for this level.
// It reports false when any recorded filter lacks structure.
func (f *fieldBase) StableDrillFilters() ([]query.Filter, bool) {
	out := make([]query.Filter, 0, len(f.drill.filters))
	for _, df := range f.drill.filters {
		if df.stable == nil {
			return nil, false
		}
		out = append(out, *df.stable)
	}
	return out, true
}

// SourceName is the source the result was queried from.
func (f *RepeatedRecordField) SourceName() string {
	if name, ok := f.metadata.Text("source", "name"); ok {
		return name
	}
	return DefaultSourceName
}

// SourceParameters are the arguments the source was invoked with.
func (f *RepeatedRecordField) SourceParameters() []query.Parameter {
	args, ok := f.metadata.Array("source", "parameters")
	if !ok {
		return nil
	}
	var out []query.Parameter
	for _, a := range args {
		name, ok := a.Text("name")
		if !ok {
			continue
		}
		lit, ok := LiteralFromTag(a.Tag("value"))
		if !ok {
			continue
		}
		out = append(out, query.Parameter{Name: name, Value: lit})
	}
	return out
}

func expressionFromTag(t *tag.Tag) *query.Expression {
	ref, ok := t.TextArray("field_reference")
	if !ok || len(ref) == 0 {
		return nil
	}
	kind, _ := t.Text("kind")
	switch kind {
	case "field_reference":
		return &query.Expression{Kind: query.FieldReference, Field: query.ReferenceFromPath(ref)}
	case "time_truncation":
		trunc, ok := t.Text("truncation")
		if !ok || !query.IsTimestampUnit(trunc) {
			return nil
		}
		return &query.Expression{Kind: query.TimeTruncation, Field: query.ReferenceFromPath(ref), Truncation: trunc}
	}
	return nil
}

func filterFromTag(t *tag.Tag) *query.Filter {
	kind, ok := t.Text("kind")
	if !ok {
		return nil
	}
	ref, ok := t.TextArray("field_reference")
	if !ok || len(ref) == 0 {
		return nil
	}
	expr := query.Expression{Kind: query.FieldReference, Field: query.ReferenceFromPath(ref)}
	switch kind {
	case "filter_expression":
		text, ok := t.Text("filter_expression")
		if !ok {
			return nil
		}
		return &query.Filter{Kind: query.FilterString, Expression: expr, Filter: text}
	case "literal_equality":
		lit, ok := LiteralFromTag(t.Tag("value"))
		if !ok {
			return nil
		}
		return &query.Filter{Kind: query.LiteralEquality, Expression: expr, Value: lit}
	}
	return nil
}

// LiteralFromTag reads a literal written as tag properties, for example
// "{kind=string_literal string_value=AA}".
func LiteralFromTag(t *tag.Tag) (query.Literal, bool) {
	kindName, ok := t.Text("kind")
	if !ok {
		return query.Literal{}, false
	}
	kind, ok := query.ParseLiteralKind(kindName)
	if !ok {
		return query.Literal{}, false
	}
	switch kind {
	case query.StringLiteral:
		s, ok := t.Text("string_value")
		return query.String(s), ok
	case query.NumberLiteral:
		n, ok := t.Numeric("number_value")
		return query.Number(n), ok
	case query.BooleanLiteral:
		s, ok := t.Text("boolean_value")
		return query.Boolean(s == "true"), ok
	case query.DateLiteral:
		v, ok := t.Text("date_value")
		gran, _ := t.Text("granularity")
		tz, _ := t.Text("timezone")
		if !ok || (gran != "" && !query.IsDateUnit(gran)) {
			return query.Literal{}, false
		}
		lit := query.Date(v, gran)
		lit.Timezone = tz
		return lit, true
	case query.TimestampLiteral:
		v, ok := t.Text("timestamp_value")
		gran, _ := t.Text("granularity")
		tz, _ := t.Text("timezone")
		if !ok || (gran != "" && !query.IsTimestampUnit(gran)) {
			return query.Literal{}, false
		}
		return query.Timestamp(v, gran, tz), true
	case query.FilterExpressionLiteral:
		s, ok := t.Text("filter_expression_value")
		return query.FilterExpression(s), ok
	}
	return query.Null(), true
}
