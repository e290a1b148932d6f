// Package wire defines the serialized form of a query result: the schema
// descriptor and the nested cell payload produced by the query system.
//
// Decoding only checks syntax. Kind discriminators are validated when the
// result is turned into a data tree.
package wire

// Type kinds.
const (
	StringType    = "string_type"
	NumberType    = "number_type"
	BooleanType   = "boolean_type"
	DateType      = "date_type"
	TimestampType = "timestamp_type"
	JSONType      = "json_type"
	SQLNativeType = "sql_native_type"
	ArrayType     = "array_type"
	RecordType    = "record_type"
)

// Cell kinds.
const (
	ArrayCell     = "array_cell"
	RecordCell    = "record_cell"
	NullCell      = "null_cell"
	NumberCell    = "number_cell"
	StringCell    = "string_cell"
	BooleanCell   = "boolean_cell"
	DateCell      = "date_cell"
	TimestampCell = "timestamp_cell"
	JSONCell      = "json_cell"
	SQLNativeCell = "sql_native_cell"
)

// Field kinds. Only dimensions become columns of the root record.
const (
	KindDimension = "dimension"
	KindMeasure   = "measure"
	KindView      = "view"
)

// Result is a complete query result.
type Result struct {
	Schema           Schema       `json:"schema" yaml:"schema"`
	Data             Cell         `json:"data" yaml:"data"`
	Annotations      []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	ModelAnnotations []Annotation `json:"model_annotations,omitempty" yaml:"model_annotations,omitempty"`
	QueryTimezone    string       `json:"query_timezone,omitempty" yaml:"query_timezone,omitempty"`
}

// Schema is the ordered list of top-level result fields.
type Schema struct {
	Fields []FieldInfo `json:"fields" yaml:"fields"`
}

// Annotation is one raw annotation line such as "# bar_chart".
type Annotation struct {
	Value string `json:"value" yaml:"value"`
}

// FieldInfo describes one schema position.
type FieldInfo struct {
	Kind        string       `json:"kind,omitempty" yaml:"kind,omitempty"`
	Name        string       `json:"name" yaml:"name"`
	Type        Type         `json:"type" yaml:"type"`
	Annotations []Annotation `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// IsDimension reports whether f contributes a root column.
func (f FieldInfo) IsDimension() bool {
	return f.Kind == "" || f.Kind == KindDimension
}

// AnnotationValues returns the raw annotation lines.
func (f FieldInfo) AnnotationValues() []string {
	return Values(f.Annotations)
}

// Type is a tagged union over the schema type kinds.
type Type struct {
	Kind        string      `json:"kind" yaml:"kind"`
	Subtype     string      `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	Timeframe   string      `json:"timeframe,omitempty" yaml:"timeframe,omitempty"`
	SQLType     string      `json:"sql_type,omitempty" yaml:"sql_type,omitempty"`
	ElementType *Type       `json:"element_type,omitempty" yaml:"element_type,omitempty"`
	Fields      []FieldInfo `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Cell is a tagged union over the cell kinds. Exactly the member matching
// Kind is meaningful.
type Cell struct {
	Kind           string   `json:"kind" yaml:"kind"`
	NumberValue    *float64 `json:"number_value,omitempty" yaml:"number_value,omitempty"`
	StringValue    *string  `json:"string_value,omitempty" yaml:"string_value,omitempty"`
	Subtype        string   `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	BooleanValue   *bool    `json:"boolean_value,omitempty" yaml:"boolean_value,omitempty"`
	DateValue      *string  `json:"date_value,omitempty" yaml:"date_value,omitempty"`
	TimestampValue *string  `json:"timestamp_value,omitempty" yaml:"timestamp_value,omitempty"`
	JSONValue      *string  `json:"json_value,omitempty" yaml:"json_value,omitempty"`
	SQLNativeValue *string  `json:"sql_native_value,omitempty" yaml:"sql_native_value,omitempty"`
	ArrayValue     []Cell   `json:"array_value,omitempty" yaml:"array_value,omitempty"`
	RecordValue    []Cell   `json:"record_value,omitempty" yaml:"record_value,omitempty"`
}

// Values flattens annotations to their raw lines.
func Values(annotations []Annotation) []string {
	out := make([]string, len(annotations))
	for i, a := range annotations {
		out[i] = a.Value
	}
	return out
}
