package datatree

import (
	"strconv"
	"time"

	"github.com/leapstack-labs/leapviz/pkg/query"
)

// NumberField is a numeric column.
type NumberField struct {
	fieldBase
	Subtype string
	extent  Extent[float64]
	widest  widest
}

func newNumberField(subtype string) *NumberField {
	return &NumberField{
		Subtype: subtype,
		extent:  NewExtent(func(a, b float64) bool { return a < b }),
	}
}

// RegisterValue records one number. precise is the exact decimal text when
// the value does not fit a float64, otherwise empty.
func (f *NumberField) RegisterValue(v float64, precise string) {
	s := precise
	if s == "" {
		s = query.FormatNumber(v)
	}
	f.values.Add(s)
	f.extent.Add(v)
	f.widest.add(s)
}

func (f *NumberField) Min() (float64, bool) { return f.extent.Min() }

func (f *NumberField) Max() (float64, bool) { return f.extent.Max() }

func (f *NumberField) MinNumber() (float64, bool) { return f.extent.Min() }

func (f *NumberField) MaxNumber() (float64, bool) { return f.extent.Max() }

func (f *NumberField) MaxString() string { return f.widest.s }

// timeField holds what dates and timestamps share.
type timeField struct {
	fieldBase
	timeframe string
	isDate    bool
	extent    Extent[time.Time]
	widest    widest
}

func newTimeField(timeframe string, isDate bool) timeField {
	return timeField{
		timeframe: timeframe,
		isDate:    isDate,
		extent:    NewExtent(func(a, b time.Time) bool { return a.Before(b) }),
	}
}

// Timeframe is the truncation granularity of the column, if any.
func (f *timeField) Timeframe() string { return f.timeframe }

// RegisterValue records one instant.
func (f *timeField) RegisterValue(v time.Time) {
	f.values.Add(strconv.FormatInt(v.UnixMilli(), 10))
	f.extent.Add(v)
	f.widest.add(query.FormatTime(v, f.isDate, f.timeframe))
}

func (f *timeField) Min() (time.Time, bool) { return f.extent.Min() }

func (f *timeField) Max() (time.Time, bool) { return f.extent.Max() }

// MinNumber returns the earliest instant in Unix milliseconds.
func (f *timeField) MinNumber() (float64, bool) {
	t, ok := f.extent.Min()
	return float64(t.UnixMilli()), ok
}

// MaxNumber returns the latest instant in Unix milliseconds.
func (f *timeField) MaxNumber() (float64, bool) {
	t, ok := f.extent.Max()
	return float64(t.UnixMilli()), ok
}

func (f *timeField) MaxString() string { return f.widest.s }

// DateField is a date column.
type DateField struct {
	timeField
}

// TimestampField is a timestamp column.
type TimestampField struct {
	timeField
}

// StringField is a text column.
type StringField struct {
	fieldBase
	extent Extent[string]
	widest widest
}

func newStringField() *StringField {
	return &StringField{extent: NewExtent(func(a, b string) bool { return a < b })}
}

func (f *StringField) RegisterValue(v string) {
	f.values.Add(v)
	f.extent.Add(v)
	f.widest.add(v)
}

func (f *StringField) Min() (string, bool) { return f.extent.Min() }

func (f *StringField) Max() (string, bool) { return f.extent.Max() }

func (f *StringField) MaxString() string { return f.widest.s }

// BooleanField is a boolean column.
type BooleanField struct {
	fieldBase
	widest widest
}

func (f *BooleanField) RegisterValue(v bool) {
	s := strconv.FormatBool(v)
	f.values.Add(s)
	f.widest.add(s)
}

func (f *BooleanField) MaxString() string { return f.widest.s }

// JSONField is a column of JSON documents.
type JSONField struct {
	fieldBase
	widest widest
}

// RegisterValue records the raw document text.
func (f *JSONField) RegisterValue(raw string) {
	f.values.Add(raw)
	f.widest.add(raw)
}

func (f *JSONField) MaxString() string { return f.widest.s }

// SQLNativeField is a column of a database type with no Malloy equivalent.
type SQLNativeField struct {
	fieldBase
	SQLType string
	widest  widest
}

// RegisterValue records the raw value text.
func (f *SQLNativeField) RegisterValue(raw string) {
	f.values.Add(raw)
	f.widest.add(raw)
}

func (f *SQLNativeField) MaxString() string { return f.widest.s }
