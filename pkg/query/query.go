// Package query models the structured drill query handed back to the query
// system and prints it as Malloy source text.
package query

// LiteralKind discriminates Literal values.
type LiteralKind int

const (
	NullLiteral LiteralKind = iota
	StringLiteral
	NumberLiteral
	BooleanLiteral
	DateLiteral
	TimestampLiteral
	FilterExpressionLiteral
)

func (k LiteralKind) String() string {
	switch k {
	case NullLiteral:
		return "null_literal"
	case StringLiteral:
		return "string_literal"
	case NumberLiteral:
		return "number_literal"
	case BooleanLiteral:
		return "boolean_literal"
	case DateLiteral:
		return "date_literal"
	case TimestampLiteral:
		return "timestamp_literal"
	case FilterExpressionLiteral:
		return "filter_expression_literal"
	}
	return "unknown_literal"
}

// ParseLiteralKind maps a wire kind name to a LiteralKind.
func ParseLiteralKind(s string) (LiteralKind, bool) {
	for k := NullLiteral; k <= FilterExpressionLiteral; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Literal is a scalar value usable inside a filter.
type Literal struct {
	Kind LiteralKind

	// StringValue holds string and filter expression text.
	StringValue string

	NumberValue float64
	// NumberText is the exact decimal text of a number that does not fit a
	// float64 losslessly. Empty when NumberValue is exact.
	NumberText string

	BooleanValue bool

	// TimeValue holds the date or timestamp text as received.
	TimeValue   string
	Granularity string
	Timezone    string
}

func String(s string) Literal { return Literal{Kind: StringLiteral, StringValue: s} }

func Number(f float64) Literal { return Literal{Kind: NumberLiteral, NumberValue: f} }

func Boolean(b bool) Literal { return Literal{Kind: BooleanLiteral, BooleanValue: b} }

func Null() Literal { return Literal{Kind: NullLiteral} }

func Date(v, granularity string) Literal {
	return Literal{Kind: DateLiteral, TimeValue: v, Granularity: granularity}
}

func Timestamp(v, granularity, timezone string) Literal {
	return Literal{Kind: TimestampLiteral, TimeValue: v, Granularity: granularity, Timezone: timezone}
}

func FilterExpression(s string) Literal {
	return Literal{Kind: FilterExpressionLiteral, StringValue: s}
}

// Reference names a field, optionally through join or view path segments.
type Reference struct {
	Name string
	Path []string
}

// ReferenceFromPath splits a full path into a Reference. The last element
// becomes the name.
func ReferenceFromPath(path []string) Reference {
	if len(path) == 0 {
		return Reference{}
	}
	return Reference{
		Name: path[len(path)-1],
		Path: append([]string(nil), path[:len(path)-1]...),
	}
}

// ExpressionKind discriminates Expression values.
type ExpressionKind int

const (
	FieldReference ExpressionKind = iota
	TimeTruncation
)

// Expression is the left-hand side of a drill filter.
type Expression struct {
	Kind       ExpressionKind
	Field      Reference
	Truncation string
}

// FilterKind discriminates Filter values.
type FilterKind int

const (
	LiteralEquality FilterKind = iota
	FilterString
)

// Filter is a single drill predicate.
type Filter struct {
	Kind       FilterKind
	Expression Expression
	// Value applies to LiteralEquality.
	Value Literal
	// Filter is the filter expression text for FilterString.
	Filter string
}

// OperationKind discriminates view operations.
type OperationKind int

const (
	Drill OperationKind = iota
)

// Operation is one view operation of a segment.
type Operation struct {
	Kind   OperationKind
	Filter Filter
}

// Parameter is a named source argument.
type Parameter struct {
	Name  string
	Value Literal
}

// SourceReference names the source a query runs against.
type SourceReference struct {
	Name       string
	Parameters []Parameter
}

// Segment is an inline view made of operations.
type Segment struct {
	Operations []Operation
}

// Arrow applies a view to a source.
type Arrow struct {
	Source SourceReference
	View   Segment
}

// Query is a runnable query definition.
type Query struct {
	Definition Arrow
}
