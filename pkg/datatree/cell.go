package datatree

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leapviz/pkg/query"
)

// NullSymbol is how a null value is displayed.
const NullSymbol = "∅"

// Cell is a node of the value tree, paired with exactly one Field. The set of
// implementations is closed: *NullCell, *NumberCell, *DateCell,
// *TimestampCell, *StringCell, *BooleanCell, *JSONCell, *SQLNativeCell,
// *ArrayCell, *RecordCell and *RepeatedRecordCell.
type Cell interface {
	Field() Field
	// Parent is the enclosing container, nil at the root.
	Parent() Cell
	Root() Cell

	Value() any
	// LiteralValue is the filter literal for scalar cells. Containers and
	// JSON-like cells have none.
	LiteralValue() (query.Literal, bool)
	// Compare orders cells of compatible types. Incomparable cells compare
	// equal.
	Compare(other Cell) int

	CellAtPath(path []string) (Cell, error)
	CellAt(key string) (Cell, error)
	ParentRecord(levelsUp int) (*RecordCell, error)
	RelativeCell(path string) (Cell, bool)

	IsNull() bool

	cell() *cellBase
}

// NestCell is a cell holding rows: *RecordCell or *RepeatedRecordCell.
type NestCell interface {
	Cell
	Rows() []*RecordCell
}

type cellBase struct {
	self   Cell
	field  Field
	parent Cell
}

func (c *cellBase) init(self Cell, f Field, parent Cell) {
	c.self, c.field, c.parent = self, f, parent
}

func (c *cellBase) cell() *cellBase { return c }

func (c *cellBase) Field() Field { return c.field }

func (c *cellBase) Parent() Cell { return c.parent }

func (c *cellBase) IsNull() bool { return false }

func (c *cellBase) Root() Cell {
	cur := c.self
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return cur
}

func (c *cellBase) LiteralValue() (query.Literal, bool) { return query.Literal{}, false }

func (c *cellBase) Compare(Cell) int { return 0 }

func (c *cellBase) CellAtPath(path []string) (Cell, error) {
	if len(path) == 0 {
		return c.self, nil
	}
	return nil, &PathError{Path: c.field.Path(), Segment: path[0], Reason: TypeOf(c.field).String() + " cell cannot contain columns"}
}

func (c *cellBase) CellAt(key string) (Cell, error) {
	path, err := PathFromKey(key)
	if err != nil {
		return nil, err
	}
	return c.self.CellAtPath(path)
}

// ParentRecord climbs levelsUp rows, skipping array levels.
func (c *cellBase) ParentRecord(levelsUp int) (*RecordCell, error) {
	cur := c.self
	for cur != nil && levelsUp > 0 {
		cur = cur.Parent()
		for isListCell(cur) {
			cur = cur.Parent()
		}
		levelsUp--
	}
	rec, ok := cur.(*RecordCell)
	if !ok {
		return nil, &PathError{Path: c.field.Path(), Reason: "enclosing cell is not a record"}
	}
	return rec, nil
}

// RelativeCell resolves a slash separated path against the enclosing row.
// Each ".." climbs one more row.
func (c *cellBase) RelativeCell(path string) (Cell, bool) {
	levelsUp, segments := parseRelativePath(path)
	rec, err := c.ParentRecord(levelsUp)
	if err != nil {
		return nil, false
	}
	found, err := rec.CellAtPath(segments)
	if err != nil {
		return nil, false
	}
	return found, true
}

func isListCell(c Cell) bool {
	switch c.(type) {
	case *ArrayCell, *RepeatedRecordCell:
		return true
	}
	return false
}

// Text renders a cell value for display.
func Text(c Cell) string {
	switch x := c.(type) {
	case *NullCell:
		return NullSymbol
	case *NumberCell:
		if x.precise != "" {
			return x.precise
		}
		return query.FormatNumber(x.value)
	case *DateCell:
		return query.FormatTime(x.value, true, x.Timeframe())
	case *TimestampCell:
		return query.FormatTime(x.value, false, x.Timeframe())
	case *StringCell:
		return x.value
	case *BooleanCell:
		return strconv.FormatBool(x.value)
	case *JSONCell:
		return x.raw
	case *SQLNativeCell:
		return x.raw
	case *ArrayCell:
		return fmt.Sprintf("[%d values]", len(x.values))
	case *RepeatedRecordCell:
		return fmt.Sprintf("[%d rows]", len(x.rows))
	case *RecordCell:
		return fmt.Sprintf("{%d columns}", len(x.order))
	}
	return ""
}

// distinctKey identifies a cell value for per-table distinct counts.
// Containers are only equal to themselves.
func distinctKey(c Cell) string {
	switch x := c.(type) {
	case *NullCell:
		return "null:"
	case *NumberCell:
		return "n:" + Text(x)
	case *DateCell:
		return "t:" + strconv.FormatInt(x.value.UnixMilli(), 10)
	case *TimestampCell:
		return "t:" + strconv.FormatInt(x.value.UnixMilli(), 10)
	case *StringCell:
		return "s:" + x.value
	case *BooleanCell:
		return "b:" + strconv.FormatBool(x.value)
	case *JSONCell:
		return "j:" + x.raw
	case *SQLNativeCell:
		return "q:" + x.raw
	}
	return fmt.Sprintf("p:%p", c)
}
