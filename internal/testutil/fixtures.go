package testutil

import "github.com/leapstack-labs/leapviz/pkg/wire"

// Annotations wraps raw annotation lines.
func Annotations(lines ...string) []wire.Annotation {
	out := make([]wire.Annotation, len(lines))
	for i, l := range lines {
		out[i] = wire.Annotation{Value: l}
	}
	return out
}

func scalar(name, kind string, annotations []string) wire.FieldInfo {
	return wire.FieldInfo{
		Kind:        wire.KindDimension,
		Name:        name,
		Type:        wire.Type{Kind: kind},
		Annotations: Annotations(annotations...),
	}
}

func StringCol(name string, annotations ...string) wire.FieldInfo {
	return scalar(name, wire.StringType, annotations)
}

func NumberCol(name string, annotations ...string) wire.FieldInfo {
	return scalar(name, wire.NumberType, annotations)
}

func BooleanCol(name string, annotations ...string) wire.FieldInfo {
	return scalar(name, wire.BooleanType, annotations)
}

func JSONCol(name string, annotations ...string) wire.FieldInfo {
	return scalar(name, wire.JSONType, annotations)
}

func DateCol(name, timeframe string, annotations ...string) wire.FieldInfo {
	f := scalar(name, wire.DateType, annotations)
	f.Type.Timeframe = timeframe
	return f
}

func TimestampCol(name, timeframe string, annotations ...string) wire.FieldInfo {
	f := scalar(name, wire.TimestampType, annotations)
	f.Type.Timeframe = timeframe
	return f
}

// NestCol is a nested table column: an array of records.
func NestCol(name string, fields []wire.FieldInfo, annotations ...string) wire.FieldInfo {
	f := scalar(name, wire.ArrayType, annotations)
	f.Type.ElementType = &wire.Type{Kind: wire.RecordType, Fields: fields}
	return f
}

// RecordCol is a single nested record column.
func RecordCol(name string, fields []wire.FieldInfo, annotations ...string) wire.FieldInfo {
	f := scalar(name, wire.RecordType, annotations)
	f.Type.Fields = fields
	return f
}

// ArrayCol is an array of scalars of elemKind.
func ArrayCol(name, elemKind string, annotations ...string) wire.FieldInfo {
	f := scalar(name, wire.ArrayType, annotations)
	f.Type.ElementType = &wire.Type{Kind: elemKind}
	return f
}

// Result builds a result whose root table has fields and rows.
func Result(fields []wire.FieldInfo, rows []wire.Cell, annotations ...string) *wire.Result {
	return &wire.Result{
		Schema:      wire.Schema{Fields: fields},
		Data:        Table(rows...),
		Annotations: Annotations(annotations...),
	}
}

func Str(s string) wire.Cell { return wire.Cell{Kind: wire.StringCell, StringValue: &s} }

func Num(n float64) wire.Cell { return wire.Cell{Kind: wire.NumberCell, NumberValue: &n} }

// BigNum is a bigint number cell carried as text.
func BigNum(s string) wire.Cell {
	return wire.Cell{Kind: wire.NumberCell, StringValue: &s, Subtype: "bigint"}
}

func Bool(b bool) wire.Cell { return wire.Cell{Kind: wire.BooleanCell, BooleanValue: &b} }

func Date(s string) wire.Cell { return wire.Cell{Kind: wire.DateCell, DateValue: &s} }

func Timestamp(s string) wire.Cell { return wire.Cell{Kind: wire.TimestampCell, TimestampValue: &s} }

func JSON(s string) wire.Cell { return wire.Cell{Kind: wire.JSONCell, JSONValue: &s} }

func Null() wire.Cell { return wire.Cell{Kind: wire.NullCell} }

// Row is a record cell with its column values in order.
func Row(values ...wire.Cell) wire.Cell {
	return wire.Cell{Kind: wire.RecordCell, RecordValue: values}
}

// Table is an array cell of rows.
func Table(rows ...wire.Cell) wire.Cell {
	if rows == nil {
		rows = []wire.Cell{}
	}
	return wire.Cell{Kind: wire.ArrayCell, ArrayValue: rows}
}

// Array is an array cell of scalar values.
func Array(values ...wire.Cell) wire.Cell { return Table(values...) }
