package datatree

import (
	"encoding/json"
	"math"
	"math/big"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/leapstack-labs/leapviz/pkg/query"
)

// NullCell is a null value of any field type.
type NullCell struct {
	cellBase
}

func (c *NullCell) Value() any { return nil }

func (c *NullCell) IsNull() bool { return true }

func (c *NullCell) LiteralValue() (query.Literal, bool) { return query.Null(), true }

// NumberCell holds a number. Values that do not fit a float64 carry their
// exact text.
type NumberCell struct {
	cellBase
	value   float64
	precise string
	subtype string
}

func (c *NumberCell) Value() any { return c.value }

func (c *NumberCell) Number() float64 { return c.value }

// StringValue returns the exact decimal text when the result carried one.
func (c *NumberCell) StringValue() (string, bool) { return c.precise, c.precise != "" }

func (c *NumberCell) Subtype() string { return c.subtype }

// NeedsStringPrecision reports whether the value should be handled as text to
// stay exact.
func (c *NumberCell) NeedsStringPrecision() bool { return c.subtype == "bigint" }

// BigInt returns the value as an integer, exact when text was carried. NaN
// and infinities have no integer form and yield zero.
func (c *NumberCell) BigInt() *big.Int {
	if c.precise != "" {
		if n, ok := new(big.Int).SetString(c.precise, 10); ok {
			return n
		}
		if r, ok := new(big.Rat).SetString(c.precise); ok {
			return new(big.Int).Quo(r.Num(), r.Denom())
		}
	}
	if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
		return new(big.Int)
	}
	n, _ := big.NewFloat(c.value).Int(nil)
	return n
}

// Compare orders numbers numerically, exactly when both sides carry text
// that parses as a decimal. NaN sorts before every other number.
func (c *NumberCell) Compare(other Cell) int {
	o, ok := other.(*NumberCell)
	if !ok {
		return 0
	}
	if a, b := c.rat(), o.rat(); a != nil && b != nil {
		return a.Cmp(b)
	}
	return compareFloat(c.value, o.value)
}

func (c *NumberCell) rat() *big.Rat {
	if c.precise == "" {
		return nil
	}
	r, ok := new(big.Rat).SetString(c.precise)
	if !ok {
		return nil
	}
	return r
}

func compareFloat(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

func (c *NumberCell) LiteralValue() (query.Literal, bool) {
	lit := query.Number(c.value)
	lit.NumberText = c.precise
	return lit, true
}

// timeCell holds what date and timestamp cells share.
type timeCell struct {
	cellBase
	value time.Time
	raw   string
}

func (c *timeCell) Value() any { return c.value }

func (c *timeCell) Time() time.Time { return c.value }

func (c *timeCell) Timeframe() string {
	switch f := c.field.(type) {
	case *DateField:
		return f.timeframe
	case *TimestampField:
		return f.timeframe
	}
	return ""
}

func (c *timeCell) Compare(other Cell) int {
	var t time.Time
	switch o := other.(type) {
	case *DateCell:
		t = o.value
	case *TimestampCell:
		t = o.value
	default:
		return 0
	}
	return c.value.Compare(t)
}

// DateCell holds a date.
type DateCell struct {
	timeCell
}

func (c *DateCell) LiteralValue() (query.Literal, bool) {
	return query.Date(c.raw, c.Timeframe()), true
}

// TimestampCell holds an instant.
type TimestampCell struct {
	timeCell
}

func (c *TimestampCell) LiteralValue() (query.Literal, bool) {
	return query.Timestamp(c.raw, c.Timeframe(), ""), true
}

// StringCell holds text.
type StringCell struct {
	cellBase
	value string
}

func (c *StringCell) Value() any { return c.value }

func (c *StringCell) String() string { return c.value }

// Compare orders strings case-insensitively.
func (c *StringCell) Compare(other Cell) int {
	o, ok := other.(*StringCell)
	if !ok {
		return 0
	}
	fold := cases.Fold()
	return strings.Compare(fold.String(c.value), fold.String(o.value))
}

func (c *StringCell) LiteralValue() (query.Literal, bool) { return query.String(c.value), true }

// BooleanCell holds a boolean.
type BooleanCell struct {
	cellBase
	value bool
}

func (c *BooleanCell) Value() any { return c.value }

func (c *BooleanCell) Bool() bool { return c.value }

// Compare orders false before true.
func (c *BooleanCell) Compare(other Cell) int {
	o, ok := other.(*BooleanCell)
	if !ok || c.value == o.value {
		return 0
	}
	if c.value {
		return 1
	}
	return -1
}

func (c *BooleanCell) LiteralValue() (query.Literal, bool) { return query.Boolean(c.value), true }

// JSONCell holds a JSON document.
type JSONCell struct {
	cellBase
	raw string
}

// Value returns the parsed document, or the raw text when it does not parse.
func (c *JSONCell) Value() any { return parseJSONOrRaw(c.raw) }

func (c *JSONCell) Raw() string { return c.raw }

func (c *JSONCell) Compare(other Cell) int {
	o, ok := other.(*JSONCell)
	if !ok {
		return 0
	}
	return strings.Compare(c.raw, o.raw)
}

// SQLNativeCell holds a value of a database specific type.
type SQLNativeCell struct {
	cellBase
	raw string
}

func (c *SQLNativeCell) Value() any { return parseJSONOrRaw(c.raw) }

func (c *SQLNativeCell) Raw() string { return c.raw }

func (c *SQLNativeCell) Compare(other Cell) int {
	o, ok := other.(*SQLNativeCell)
	if !ok {
		return 0
	}
	return strings.Compare(c.raw, o.raw)
}

func parseJSONOrRaw(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
