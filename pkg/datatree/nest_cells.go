package datatree

// ArrayCell holds the elements of an array value.
type ArrayCell struct {
	cellBase
	values []Cell
}

func (c *ArrayCell) Value() any { return c.values }

// Values returns the element cells in order.
func (c *ArrayCell) Values() []Cell { return c.values }

// RecordCell is one realized row. It holds exactly one cell per column of its
// field, in column order.
type RecordCell struct {
	cellBase
	cells map[string]Cell
	order []Cell
}

// Value returns the columns by name.
func (c *RecordCell) Value() any { return c.cells }

// RecordField returns the field describing this row.
func (c *RecordCell) RecordField() *RecordField { return c.field.(*RecordField) }

// Column returns the named column cell, or nil.
func (c *RecordCell) Column(name string) Cell { return c.cells[name] }

// Columns returns the column cells in column order.
func (c *RecordCell) Columns() []Cell { return c.order }

// Rows returns the record itself as the only row.
func (c *RecordCell) Rows() []*RecordCell { return []*RecordCell{c} }

// AllCellValues returns every column's plain value by name.
func (c *RecordCell) AllCellValues() map[string]any {
	out := make(map[string]any, len(c.cells))
	for name, cell := range c.cells {
		out[name] = cell.Value()
	}
	return out
}

// CellAtPath descends through named columns.
func (c *RecordCell) CellAtPath(path []string) (Cell, error) {
	if len(path) == 0 {
		return c, nil
	}
	child, ok := c.cells[path[0]]
	if !ok {
		return nil, &PathError{Path: c.field.Path(), Segment: path[0], Reason: "no such column"}
	}
	return child.CellAtPath(path[1:])
}

// RepeatedRecordCell is a nested table value.
type RepeatedRecordCell struct {
	ArrayCell
	rows []*RecordCell
}

func (c *RepeatedRecordCell) Value() any { return c.rows }

// RepeatedRecordField returns the field describing this table.
func (c *RepeatedRecordCell) RepeatedRecordField() *RepeatedRecordField {
	return c.field.(*RepeatedRecordField)
}

// Rows returns the rows in order.
func (c *RepeatedRecordCell) Rows() []*RecordCell { return c.rows }
