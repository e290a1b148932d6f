package datatree

import "github.com/leapstack-labs/leapviz/pkg/tag"

// EachName is the name of an array's element field.
const EachName = "each"

// ArrayField is a list of scalar (or nested array) values.
type ArrayField struct {
	fieldBase
	each Field
}

// Each returns the element field.
func (f *ArrayField) Each() Field { return f.each }

// IsDrillable reports whether rows under this list keep enough provenance to
// be drilled into. A "drillable=false" flag is honored.
func (f *ArrayField) IsDrillable() bool {
	return f.metadata.Has("drillable") && !f.metadata.IsFalse("drillable")
}

// DrillFilters returns the filter text recorded for this level. Filters with
// neither structure nor code are left out.
func (f *ArrayField) DrillFilters() []string {
	out := make([]string, 0, len(f.drill.filters))
	for _, df := range f.drill.filters {
		if text := df.text(); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func (f *ArrayField) FieldAtPath(path []string) (Field, error) {
	if len(path) == 0 {
		return f.self, nil
	}
	if path[0] == EachName {
		return f.each.FieldAtPath(path[1:])
	}
	return nil, &PathError{Path: f.path, Segment: path[0], Reason: "arrays only contain " + EachName}
}

// RecordField is a nested row with named columns.
type RecordField struct {
	fieldBase
	fields []Field
	byName map[string]Field
}

func (f *RecordField) Fields() []Field { return f.fields }

func (f *RecordField) FieldByName(name string) (Field, bool) {
	c, ok := f.byName[name]
	return c, ok
}

func (f *RecordField) FieldAtPath(path []string) (Field, error) {
	if len(path) == 0 {
		return f.self, nil
	}
	c, ok := f.byName[path[0]]
	if !ok {
		return nil, &PathError{Path: f.path, Segment: path[0], Reason: "no such field"}
	}
	return c.FieldAtPath(path[1:])
}

// SortDirection is a column ordering direction.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SortableField pairs a column with its sort direction.
type SortableField struct {
	Field Field
	Dir   SortDirection
}

// FieldsWithOrder returns every column paired with ascending order.
func (f *RecordField) FieldsWithOrder() []SortableField {
	out := make([]SortableField, len(f.fields))
	for i, c := range f.fields {
		out[i] = SortableField{Field: c, Dir: Asc}
	}
	return out
}

// RepeatedRecordField is a nested table: an array of records.
type RepeatedRecordField struct {
	ArrayField

	maxRecordCount int
	maxUnique      map[string]int

	// set on the root only
	root *rootInfo
}

type rootInfo struct {
	modelTag      *tag.Tag
	queryTimezone string
}

// Record returns the element record field.
func (f *RepeatedRecordField) Record() *RecordField {
	return f.each.(*RecordField)
}

// Fields returns the columns of the element record.
func (f *RepeatedRecordField) Fields() []Field { return f.Record().fields }

func (f *RepeatedRecordField) FieldByName(name string) (Field, bool) {
	return f.Record().FieldByName(name)
}

// FieldAtPath resolves column names directly; a leading "each" is accepted.
func (f *RepeatedRecordField) FieldAtPath(path []string) (Field, error) {
	if len(path) == 0 {
		return f.self, nil
	}
	if path[0] == EachName {
		return f.each.FieldAtPath(path[1:])
	}
	return f.each.FieldAtPath(path)
}

// MaxRecordCount is the largest number of rows seen in any one cell of this
// field.
func (f *RepeatedRecordField) MaxRecordCount() int { return f.maxRecordCount }

// MaxUniqueFieldValueCount is the largest number of distinct values column
// name took within a single cell of this field.
func (f *RepeatedRecordField) MaxUniqueFieldValueCount(name string) int {
	return f.maxUnique[name]
}

func (f *RepeatedRecordField) registerRecordCount(n int) {
	f.maxRecordCount = max(f.maxRecordCount, n)
}

func (f *RepeatedRecordField) registerValueSetSize(name string, n int) {
	if f.maxUnique == nil {
		f.maxUnique = make(map[string]int)
	}
	f.maxUnique[name] = max(f.maxUnique[name], n)
}

// FieldsWithOrder returns the columns named by "ordered_by" metadata first,
// with their directions, followed by the remaining columns ascending.
func (f *RepeatedRecordField) FieldsWithOrder() []SortableField {
	var out []SortableField
	seen := make(map[string]bool)
	entries, _ := f.metadata.Array("ordered_by")
	for _, entry := range entries {
		props := entry.Properties()
		if len(props) == 0 {
			continue
		}
		name := props[0].Name
		c, ok := f.FieldByName(name)
		if !ok || seen[name] {
			continue
		}
		dir := Asc
		if d, _ := entry.Text(name); d == string(Desc) {
			dir = Desc
		}
		seen[name] = true
		out = append(out, SortableField{Field: c, Dir: dir})
	}
	for _, c := range f.Fields() {
		if !seen[c.Name()] {
			out = append(out, SortableField{Field: c, Dir: Asc})
		}
	}
	return out
}

// ModelTag is the "## " model annotation tag. Only set on the root.
func (f *RepeatedRecordField) ModelTag() *tag.Tag {
	if f.root == nil {
		return nil
	}
	return f.root.modelTag
}

// QueryTimezone is the result's query timezone. Only set on the root.
func (f *RepeatedRecordField) QueryTimezone() string {
	if f.root == nil {
		return ""
	}
	return f.root.queryTimezone
}
