package drill

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/datatree"
	"github.com/leapstack-labs/leapviz/pkg/query"
)

// invalidLiteral is emitted for cells that cannot appear in a filter.
const invalidLiteral = "invalid_drill_literal()"

// LiteralFormatter renders scalar values as literals of one filter grammar.
type LiteralFormatter interface {
	Null() string
	String(s string) string
	// Number receives the exact decimal text of the value.
	Number(text string) string
	Boolean(b bool) string
	Time(t time.Time, isDate bool, timeframe string) string
}

// MalloyLiterals formats literals in Malloy filter syntax.
type MalloyLiterals struct{}

func (MalloyLiterals) Null() string { return "null" }

func (MalloyLiterals) String(s string) string { return query.QuoteString(s) }

func (MalloyLiterals) Number(text string) string { return text }

func (MalloyLiterals) Boolean(b bool) string { return strconv.FormatBool(b) }

// Time prints "@" followed by the value truncated to its timeframe.
func (MalloyLiterals) Time(t time.Time, isDate bool, timeframe string) string {
	return "@" + query.FormatTime(t, isDate, timeframe)
}

// SQLLiterals formats literals as ANSI SQL.
type SQLLiterals struct{}

func (SQLLiterals) Null() string { return "NULL" }

func (SQLLiterals) String(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (SQLLiterals) Number(text string) string { return text }

func (SQLLiterals) Boolean(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// Time prints a DATE or TIMESTAMP literal. SQL has no truncated literal
// forms, so the full value is written.
func (SQLLiterals) Time(t time.Time, isDate bool, _ string) string {
	t = t.UTC()
	if isDate {
		return "DATE '" + t.Format("2006-01-02") + "'"
	}
	formatted := t.Format("2006-01-02 15:04:05")
	if ms := t.Nanosecond() / int(time.Millisecond); ms != 0 {
		formatted = fmt.Sprintf("%s.%03d", formatted, ms)
	}
	return "TIMESTAMP '" + formatted + "'"
}

// FormatCell renders c with f.
func FormatCell(f LiteralFormatter, c datatree.Cell) string {
	switch x := c.(type) {
	case *datatree.NullCell:
		return f.Null()
	case *datatree.StringCell:
		return f.String(x.String())
	case *datatree.NumberCell:
		return f.Number(datatree.Text(x))
	case *datatree.BooleanCell:
		return f.Boolean(x.Bool())
	case *datatree.DateCell:
		return f.Time(x.Time(), true, x.Timeframe())
	case *datatree.TimestampCell:
		return f.Time(x.Time(), false, x.Timeframe())
	}
	return invalidLiteral
}
