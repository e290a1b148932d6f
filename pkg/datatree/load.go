package datatree

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leapviz/pkg/query"
	"github.com/leapstack-labs/leapviz/pkg/wire"
)

// cellLoader turns a wire payload into cells, registering every value with
// its field on the way.
type cellLoader struct {
	count int
}

func (l *cellLoader) build(data wire.Cell, f Field, parent Cell) (Cell, error) {
	l.count++
	if data.Kind == wire.NullCell {
		c := &NullCell{}
		c.init(c, f, parent)
		f.RegisterNullValue()
		return c, nil
	}

	mismatch := func() error {
		return &TypeMismatchError{Path: f.Path(), FieldType: TypeOf(f), CellKind: data.Kind}
	}

	switch x := f.(type) {
	case *NumberField:
		if data.Kind != wire.NumberCell {
			return nil, mismatch()
		}
		c := &NumberCell{subtype: data.Subtype}
		if c.subtype == "" {
			c.subtype = x.Subtype
		}
		switch {
		case data.StringValue != nil:
			c.precise = *data.StringValue
			v, err := strconv.ParseFloat(c.precise, 64)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Key(), err)
			}
			c.value = v
		case data.NumberValue != nil:
			c.value = *data.NumberValue
		default:
			return nil, &MissingChildError{Path: f.Path(), Name: "number_value"}
		}
		c.init(c, f, parent)
		x.RegisterValue(c.value, c.precise)
		return c, nil

	case *DateField:
		if data.Kind != wire.DateCell || data.DateValue == nil {
			return nil, mismatch()
		}
		t, err := query.ParseTime(*data.DateValue)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key(), err)
		}
		c := &DateCell{timeCell{value: t, raw: *data.DateValue}}
		c.init(c, f, parent)
		x.RegisterValue(t)
		return c, nil

	case *TimestampField:
		if data.Kind != wire.TimestampCell || data.TimestampValue == nil {
			return nil, mismatch()
		}
		t, err := query.ParseTime(*data.TimestampValue)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key(), err)
		}
		c := &TimestampCell{timeCell{value: t, raw: *data.TimestampValue}}
		c.init(c, f, parent)
		x.RegisterValue(t)
		return c, nil

	case *StringField:
		if data.Kind != wire.StringCell || data.StringValue == nil {
			return nil, mismatch()
		}
		c := &StringCell{value: *data.StringValue}
		c.init(c, f, parent)
		x.RegisterValue(c.value)
		return c, nil

	case *BooleanField:
		if data.Kind != wire.BooleanCell || data.BooleanValue == nil {
			return nil, mismatch()
		}
		c := &BooleanCell{value: *data.BooleanValue}
		c.init(c, f, parent)
		x.RegisterValue(c.value)
		return c, nil

	case *JSONField:
		if data.Kind != wire.JSONCell || data.JSONValue == nil {
			return nil, mismatch()
		}
		c := &JSONCell{raw: *data.JSONValue}
		c.init(c, f, parent)
		x.RegisterValue(c.raw)
		return c, nil

	case *SQLNativeField:
		if data.Kind != wire.SQLNativeCell {
			return nil, mismatch()
		}
		c := &SQLNativeCell{}
		if data.SQLNativeValue != nil {
			c.raw = *data.SQLNativeValue
		}
		c.init(c, f, parent)
		x.RegisterValue(c.raw)
		return c, nil

	case *RepeatedRecordField:
		if data.Kind != wire.ArrayCell {
			return nil, mismatch()
		}
		return l.buildTable(data, x, parent)

	case *ArrayField:
		if data.Kind != wire.ArrayCell {
			return nil, mismatch()
		}
		c := &ArrayCell{values: make([]Cell, 0, len(data.ArrayValue))}
		c.init(c, f, parent)
		for _, elem := range data.ArrayValue {
			v, err := l.build(elem, x.each, c)
			if err != nil {
				return nil, err
			}
			c.values = append(c.values, v)
		}
		return c, nil

	case *RecordField:
		if data.Kind != wire.RecordCell {
			return nil, mismatch()
		}
		return l.buildRecord(data, x, parent)
	}
	return nil, &UnknownTypeError{Path: f.Path(), Kind: TypeOf(f).String()}
}

func (l *cellLoader) buildRecord(data wire.Cell, f *RecordField, parent Cell) (*RecordCell, error) {
	if len(data.RecordValue) < len(f.fields) {
		return nil, &MissingChildError{Path: f.Path(), Name: f.fields[len(data.RecordValue)].Name()}
	}
	c := &RecordCell{
		cells: make(map[string]Cell, len(f.fields)),
		order: make([]Cell, 0, len(f.fields)),
	}
	c.init(c, f, parent)
	for i, col := range f.fields {
		v, err := l.build(data.RecordValue[i], col, c)
		if err != nil {
			return nil, err
		}
		c.cells[col.Name()] = v
		c.order = append(c.order, v)
	}
	return c, nil
}

// buildTable builds the rows of a nested table, then records per-cell
// distinct counts and the row count before handing the finished cell to the
// field's data processors.
func (l *cellLoader) buildTable(data wire.Cell, f *RepeatedRecordField, parent Cell) (*RepeatedRecordCell, error) {
	c := &RepeatedRecordCell{}
	c.init(c, f, parent)
	c.rows = make([]*RecordCell, 0, len(data.ArrayValue))
	c.values = make([]Cell, 0, len(data.ArrayValue))
	rec := f.Record()
	for _, elem := range data.ArrayValue {
		if elem.Kind != wire.RecordCell {
			return nil, &TypeMismatchError{Path: rec.Path(), FieldType: FieldRecord, CellKind: elem.Kind}
		}
		l.count++
		row, err := l.buildRecord(elem, rec, c)
		if err != nil {
			return nil, err
		}
		c.rows = append(c.rows, row)
		c.values = append(c.values, row)
	}

	for _, col := range rec.fields {
		distinct := make(map[string]struct{}, len(c.rows))
		for _, row := range c.rows {
			distinct[distinctKey(row.cells[col.Name()])] = struct{}{}
		}
		f.registerValueSetSize(col.Name(), len(distinct))
	}
	f.registerRecordCount(len(c.rows))

	for _, inst := range f.plugins {
		if p, ok := inst.(DataProcessor); ok {
			p.ProcessData(f, c)
		}
	}
	return c, nil
}
