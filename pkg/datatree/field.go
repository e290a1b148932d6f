package datatree

import (
	"slices"

	"github.com/leapstack-labs/leapviz/pkg/query"
	"github.com/leapstack-labs/leapviz/pkg/tag"
)

// Field is a node of the schema tree. The set of implementations is closed:
// *NumberField, *DateField, *TimestampField, *StringField, *BooleanField,
// *JSONField, *SQLNativeField, *ArrayField, *RecordField and
// *RepeatedRecordField.
type Field interface {
	Name() string
	// Path is the list of names from the root. The root path is empty.
	Path() []string
	Key() string
	Parent() Field
	IsRoot() bool
	Root() *RepeatedRecordField

	// Tag is the render tag ("# " and "#r " annotations).
	Tag() *tag.Tag
	// MetadataTag holds "#(malloy) " annotations.
	MetadataTag() *tag.Tag

	RenderAs() string
	Plugins() []PluginInstance

	FieldAtPath(path []string) (Field, error)
	FieldAt(key string) (Field, error)
	PathTo(child Field) (string, error)
	ParentRecord(levelsUp int) (*RecordField, error)
	LocationInParent() int
	IsFirstChild() bool
	IsLastChild() bool

	IsHidden() bool
	WasDimension() bool
	WasCalculation() bool
	ReferenceID() (string, bool)

	DrillPath() []string
	DrillStableExpression() (query.Expression, bool)
	DrillExpression() string

	ValueSet() *ValueSet
	MaxString() string
	RegisterNullValue()

	base() *fieldBase
}

// NestField is a field with named columns: *RecordField or
// *RepeatedRecordField.
type NestField interface {
	Field
	Fields() []Field
	FieldByName(name string) (Field, bool)
}

// ListField is an array-shaped field: *ArrayField or *RepeatedRecordField.
type ListField interface {
	Field
	Each() Field
	IsDrillable() bool
	DrillFilters() []string
	StableDrillFilters() ([]query.Filter, bool)
}

type fieldBase struct {
	self     Field
	name     string
	path     []string
	parent   Field
	tag      *tag.Tag
	metadata *tag.Tag
	values   ValueSet
	plugins  []PluginInstance
	drill    drillInfo
}

func (f *fieldBase) base() *fieldBase { return f }

func (f *fieldBase) Name() string { return f.name }

func (f *fieldBase) Path() []string { return slices.Clone(f.path) }

func (f *fieldBase) Key() string { return PathToKey(f.path) }

func (f *fieldBase) Parent() Field { return f.parent }

func (f *fieldBase) IsRoot() bool { return f.parent == nil }

func (f *fieldBase) Tag() *tag.Tag { return f.tag }

func (f *fieldBase) MetadataTag() *tag.Tag { return f.metadata }

// Plugins returns the plugin instances matched to this field. The first one
// is the active renderer.
func (f *fieldBase) Plugins() []PluginInstance { return f.plugins }

func (f *fieldBase) ValueSet() *ValueSet { return &f.values }

func (f *fieldBase) MaxString() string { return "" }

// RegisterNullValue records a null cell built against this field.
func (f *fieldBase) RegisterNullValue() { f.values.AddNull() }

// Root returns the root field of the tree.
func (f *fieldBase) Root() *RepeatedRecordField {
	var cur Field = f.self
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	root, _ := cur.(*RepeatedRecordField)
	return root
}

// FieldAtPath resolves a path of column names below this field.
func (f *fieldBase) FieldAtPath(path []string) (Field, error) {
	if len(path) == 0 {
		return f.self, nil
	}
	return nil, &PathError{Path: f.path, Segment: path[0], Reason: TypeOf(f.self).String() + " field cannot contain fields"}
}

// FieldAt resolves a JSON encoded path key.
func (f *fieldBase) FieldAt(key string) (Field, error) {
	path, err := PathFromKey(key)
	if err != nil {
		return nil, err
	}
	return f.self.FieldAtPath(path)
}

// PathTo returns the key of child's path relative to this field.
func (f *fieldBase) PathTo(child Field) (string, error) {
	childPath := child.base().path
	if len(childPath) < len(f.path) || !slices.Equal(f.path, childPath[:len(f.path)]) {
		return "", &PathError{Path: childPath, Reason: "not a descendant of " + f.Key()}
	}
	return PathToKey(childPath[len(f.path):]), nil
}

// ParentRecord climbs levelsUp records, skipping array levels.
func (f *fieldBase) ParentRecord(levelsUp int) (*RecordField, error) {
	cur := f.self
	for cur != nil && levelsUp > 0 {
		cur = skipLists(cur.Parent())
		levelsUp--
	}
	rec, ok := cur.(*RecordField)
	if !ok {
		return nil, &PathError{Path: f.path, Reason: "enclosing field is not a record"}
	}
	return rec, nil
}

func skipLists(f Field) Field {
	for f != nil {
		if _, ok := f.(ListField); !ok {
			return f
		}
		f = f.Parent()
	}
	return nil
}

// LocationInParent returns the column index of this field in its parent, or
// -1 when the parent has no columns.
func (f *fieldBase) LocationInParent() int {
	nest, ok := f.parent.(NestField)
	if !ok {
		return -1
	}
	for i, c := range nest.Fields() {
		if c == f.self {
			return i
		}
	}
	return -1
}

func (f *fieldBase) IsFirstChild() bool {
	return f.LocationInParent() == 0
}

func (f *fieldBase) IsLastChild() bool {
	nest, ok := f.parent.(NestField)
	if !ok {
		return true
	}
	return f.LocationInParent() == len(nest.Fields())-1
}

func (f *fieldBase) IsHidden() bool { return f.tag.Has("hidden") }

func (f *fieldBase) WasCalculation() bool { return f.metadata.Has("calculation") }

func (f *fieldBase) WasDimension() bool { return !f.WasCalculation() }

func (f *fieldBase) ReferenceID() (string, bool) { return f.metadata.Text("reference_id") }

// TypeOf returns the computed type of f.
func TypeOf(f Field) FieldType {
	switch f.(type) {
	case *NumberField:
		return FieldNumber
	case *DateField:
		return FieldDate
	case *TimestampField:
		return FieldTimestamp
	case *StringField:
		return FieldString
	case *BooleanField:
		return FieldBoolean
	case *JSONField:
		return FieldJSON
	case *SQLNativeField:
		return FieldSQLNative
	case *ArrayField:
		return FieldArray
	case *RecordField:
		return FieldRecord
	case *RepeatedRecordField:
		return FieldRepeatedRecord
	}
	// Field is sealed by the unexported base method.
	panic("datatree: unknown field implementation")
}

// IsBasic reports whether f is a scalar or scalar array column.
func IsBasic(f Field) bool {
	_, nest := f.(NestField)
	return !nest
}

// Walk visits f and every field below it in pre-order, including array
// element fields.
func Walk(f Field, fn func(Field)) {
	fn(f)
	switch x := f.(type) {
	case *ArrayField:
		Walk(x.each, fn)
	case *RepeatedRecordField:
		Walk(x.each, fn)
	case *RecordField:
		for _, c := range x.fields {
			Walk(c, fn)
		}
	}
}
