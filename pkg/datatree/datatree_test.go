package datatree

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapviz/internal/testutil"
	"github.com/leapstack-labs/leapviz/pkg/tag"
	"github.com/leapstack-labs/leapviz/pkg/wire"
)

// flights is a two level result with a scalar array column.
func flights(annotations ...string) *wire.Result {
	fields := []wire.FieldInfo{
		testutil.StringCol("carrier"),
		testutil.NumberCol("flight_count"),
		testutil.NestCol("by_month", []wire.FieldInfo{
			testutil.NumberCol("dep_month"),
			testutil.NumberCol("total"),
		}, "# bar_chart"),
		testutil.ArrayCol("tags", wire.StringType),
	}
	rows := []wire.Cell{
		testutil.Row(
			testutil.Str("AA"), testutil.Num(10),
			testutil.Table(
				testutil.Row(testutil.Num(1), testutil.Num(4)),
				testutil.Row(testutil.Num(2), testutil.Num(6)),
			),
			testutil.Array(testutil.Str("x"), testutil.Str("y")),
		),
		testutil.Row(
			testutil.Str("UA"), testutil.Num(3),
			testutil.Table(testutil.Row(testutil.Num(1), testutil.Num(3))),
			testutil.Array(),
		),
		testutil.Row(
			testutil.Null(), testutil.Num(1),
			testutil.Table(),
			testutil.Array(testutil.Str("x")),
		),
	}
	return testutil.Result(fields, rows, annotations...)
}

func buildFlights(t *testing.T, annotations ...string) *Tree {
	t.Helper()
	tree, err := Build(flights(annotations...), nil, Options{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	return tree
}

func fieldAt(t *testing.T, f Field, path ...string) Field {
	t.Helper()
	got, err := f.FieldAtPath(path)
	require.NoError(t, err)
	return got
}

func TestBuild_PathInvariant(t *testing.T) {
	tree := buildFlights(t)
	root := tree.Schema.Root()

	var visited int
	Walk(root, func(f Field) {
		visited++
		if f.Parent() == nil {
			assert.Empty(t, f.Path())
			assert.True(t, f.IsRoot())
			return
		}
		want := append(f.Parent().Path(), f.Name())
		assert.Equal(t, want, f.Path(), "path of %s", f.Key())
		assert.Same(t, root, f.Root())

		got, err := root.FieldAtPath(f.Path())
		require.NoError(t, err)
		assert.Same(t, f, got, "lookup of %s", f.Key())

		byKey, err := root.FieldAt(f.Key())
		require.NoError(t, err)
		assert.Same(t, f, byKey)
	})
	// root, each, 4 columns, by_month each + 2 columns, tags each
	assert.Equal(t, 10, visited)
}

func TestBuild_CellsPairWithFields(t *testing.T) {
	tree := buildFlights(t)
	root := tree.Root
	require.Len(t, root.Rows(), 3)
	assert.Same(t, tree.Schema.Root(), root.Field())

	rec := tree.Schema.Root().Record()
	for _, row := range root.Rows() {
		assert.Same(t, rec, row.Field())
		assert.Same(t, root, row.Parent())
		require.Len(t, row.Columns(), len(rec.Fields()))
		for i, c := range row.Columns() {
			assert.Same(t, rec.Fields()[i], c.Field())
			assert.Same(t, row, c.Parent())
			assert.Same(t, root, c.Root())
			assert.Same(t, c, row.Column(rec.Fields()[i].Name()))
		}
	}

	byMonth := root.Rows()[0].Column("by_month").(*RepeatedRecordCell)
	require.Len(t, byMonth.Rows(), 2)
	assert.Same(t, tree.Schema.Root().Record().byName["by_month"], byMonth.Field())
	for _, row := range byMonth.Rows() {
		assert.Same(t, byMonth.RepeatedRecordField().Record(), row.RecordField())
	}

	tags := root.Rows()[0].Column("tags").(*ArrayCell)
	require.Len(t, tags.Values(), 2)
	assert.Equal(t, "y", tags.Values()[1].Value())
	assert.Same(t, tags, tags.Values()[1].Parent())
}

func TestBuild_Stats(t *testing.T) {
	tree := buildFlights(t)
	root := tree.Schema.Root()

	carrier := fieldAt(t, root, "carrier").(*StringField)
	assert.Equal(t, 3, carrier.ValueSet().Len())
	assert.True(t, carrier.ValueSet().HasNull())
	assert.True(t, carrier.ValueSet().Has("UA"))
	assert.Equal(t, "AA", carrier.MaxString())

	count := fieldAt(t, root, "flight_count").(*NumberField)
	lo, _ := count.Min()
	hi, _ := count.Max()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 10.0, hi)
	assert.Equal(t, "10", count.MaxString())

	byMonth := fieldAt(t, root, "by_month").(*RepeatedRecordField)
	assert.Equal(t, 2, byMonth.MaxRecordCount())
	assert.Equal(t, 2, byMonth.MaxUniqueFieldValueCount("dep_month"))
	assert.Equal(t, 2, fieldAt(t, byMonth, "dep_month").ValueSet().Len())

	assert.Equal(t, 3, root.MaxRecordCount())
	assert.Equal(t, 3, root.MaxUniqueFieldValueCount("carrier"))
	assert.Equal(t, 3, root.MaxUniqueFieldValueCount("flight_count"))
	assert.Zero(t, root.MaxUniqueFieldValueCount("missing"))
}

func TestNumberField_RegisterValue(t *testing.T) {
	f := newNumberField("")
	for _, v := range []float64{3, 1, 4, 1, 5} {
		f.RegisterValue(v, "")
	}
	lo, ok := f.Min()
	require.True(t, ok)
	hi, _ := f.Max()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 5.0, hi)
	assert.Equal(t, 4, f.ValueSet().Len())

	f.RegisterValue(12, "")
	assert.Equal(t, "12", f.MaxString())
	hi, _ = f.Max()
	assert.Equal(t, 12.0, hi)

	// extents never shrink
	f.RegisterValue(2, "")
	lo, _ = f.Min()
	hi, _ = f.Max()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 12.0, hi)
	assert.Equal(t, "12", f.MaxString())
}

func TestCell_Compare(t *testing.T) {
	res := testutil.Result(
		[]wire.FieldInfo{testutil.StringCol("name"), testutil.NumberCol("n")},
		[]wire.Cell{
			testutil.Row(testutil.Str("apple"), testutil.BigNum("9007199254740993")),
			testutil.Row(testutil.Str("Banana"), testutil.BigNum("9007199254740992")),
		},
	)
	tree, err := Build(res, nil, Options{})
	require.NoError(t, err)
	rows := tree.Root.Rows()
	apple, banana := rows[0].Column("name"), rows[1].Column("name")
	big1, big2 := rows[0].Column("n"), rows[1].Column("n")

	tests := []struct {
		name string
		a, b Cell
		want int
	}{
		{"case insensitive strings", apple, banana, -1},
		{"reversed", banana, apple, 1},
		{"equal", apple, apple, 0},
		{"string against number", apple, big1, 0},
		{"bigint precision", big1, big2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}

	n := big1.(*NumberCell)
	assert.True(t, n.NeedsStringPrecision())
	assert.Equal(t, "9007199254740993", n.BigInt().String())
	assert.Equal(t, "9007199254740993", Text(n))
}

func decimal(s string) wire.Cell {
	return wire.Cell{Kind: wire.NumberCell, StringValue: &s, Subtype: "bigdecimal"}
}

func TestNumberCell_CompareDecimalText(t *testing.T) {
	res := testutil.Result(
		[]wire.FieldInfo{testutil.NumberCol("n")},
		[]wire.Cell{
			testutil.Row(decimal("1.5")),
			testutil.Row(decimal("1.2")),
			testutil.Row(decimal("NaN")),
			testutil.Row(testutil.Num(1.3)),
			testutil.Row(decimal("123456789012345678901234567890.25")),
			testutil.Row(decimal("123456789012345678901234567890.5")),
		},
	)
	tree, err := Build(res, nil, Options{})
	require.NoError(t, err)
	rows := tree.Root.Rows()
	cell := func(i int) Cell { return rows[i].Column("n") }

	tests := []struct {
		name string
		a, b Cell
		want int
	}{
		{"decimal text greater", cell(0), cell(1), 1},
		{"decimal text less", cell(1), cell(0), -1},
		{"decimal text equal", cell(0), cell(0), 0},
		{"nan against decimal", cell(2), cell(0), -1},
		{"decimal against nan", cell(0), cell(2), 1},
		{"nan against nan", cell(2), cell(2), 0},
		{"text against plain number", cell(0), cell(3), 1},
		{"wide decimals", cell(5), cell(4), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, tt.a.Compare(tt.b))
			})
		})
	}

	assert.Equal(t, "1", cell(0).(*NumberCell).BigInt().String())
	assert.NotPanics(t, func() {
		assert.Equal(t, "0", cell(2).(*NumberCell).BigInt().String())
	})
}

func TestCell_Text(t *testing.T) {
	res := testutil.Result(
		[]wire.FieldInfo{
			testutil.DateCol("month", "month"),
			testutil.TimestampCol("at", ""),
			testutil.BooleanCol("ok"),
			testutil.JSONCol("doc"),
		},
		[]wire.Cell{
			testutil.Row(
				testutil.Date("2004-01-01"),
				testutil.Timestamp("2004-01-01T10:00:00Z"),
				testutil.Bool(true),
				testutil.JSON(`{"a":1}`),
			),
			testutil.Row(testutil.Null(), testutil.Null(), testutil.Null(), testutil.Null()),
		},
	)
	tree, err := Build(res, nil, Options{})
	require.NoError(t, err)
	row := tree.Root.Rows()[0]

	assert.Equal(t, "2004-01", Text(row.Column("month")))
	assert.Equal(t, "2004-01-01 10:00:00", Text(row.Column("at")))
	assert.Equal(t, "true", Text(row.Column("ok")))
	assert.Equal(t, map[string]any{"a": 1.0}, row.Column("doc").Value())
	assert.Equal(t, "[2 rows]", Text(tree.Root))

	null := tree.Root.Rows()[1].Column("month")
	assert.True(t, null.IsNull())
	assert.Equal(t, NullSymbol, Text(null))
	assert.True(t, null.Field().ValueSet().HasNull())

	lit, ok := row.Column("month").LiteralValue()
	require.True(t, ok)
	assert.Equal(t, "2004-01-01", lit.TimeValue)
	assert.Equal(t, "month", lit.Granularity)

	_, ok = tree.Root.LiteralValue()
	assert.False(t, ok)
}

func TestCell_ValueRoundTrip(t *testing.T) {
	res := testutil.Result(
		[]wire.FieldInfo{
			testutil.NumberCol("n"),
			testutil.StringCol("s"),
			testutil.BooleanCol("b"),
			testutil.DateCol("d", ""),
			testutil.JSONCol("j"),
			testutil.TimestampCol("ts", ""),
		},
		[]wire.Cell{
			testutil.Row(
				testutil.Num(2.5),
				testutil.Str("West"),
				testutil.Bool(false),
				testutil.Date("2004-01-15"),
				testutil.JSON(`{"a":[1,"x"],"b":null}`),
				testutil.Timestamp("2004-01-01T10:00:00.456+02:00"),
			),
		},
	)
	tree, err := Build(res, nil, Options{})
	require.NoError(t, err)
	row := tree.Root.Rows()[0]

	tests := []struct {
		column string
		want   any
	}{
		{"n", 2.5},
		{"s", "West"},
		{"b", false},
		{"j", map[string]any{"a": []any{1.0, "x"}, "b": nil}},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.want, row.Column(tt.column).Value())
		})
	}

	t.Run("date", func(t *testing.T) {
		got, ok := row.Column("d").Value().(time.Time)
		require.True(t, ok)
		assert.True(t, got.Equal(time.Date(2004, 1, 15, 0, 0, 0, 0, time.UTC)))
	})
	t.Run("timestamp keeps milliseconds", func(t *testing.T) {
		got, ok := row.Column("ts").Value().(time.Time)
		require.True(t, ok)
		assert.Equal(t, int64(1072944000456), got.UnixMilli())
	})
}

func TestCell_Navigation(t *testing.T) {
	tree := buildFlights(t)
	outer := tree.Root.Rows()[0]
	inner := outer.Column("by_month").(*RepeatedRecordCell).Rows()[1]
	depMonth := inner.Column("dep_month")

	rec, err := depMonth.ParentRecord(1)
	require.NoError(t, err)
	assert.Same(t, inner, rec)
	rec, err = depMonth.ParentRecord(2)
	require.NoError(t, err)
	assert.Same(t, outer, rec)
	_, err = depMonth.ParentRecord(3)
	assert.Error(t, err)

	tests := []struct {
		path string
		want Cell
		ok   bool
	}{
		{"total", inner.Column("total"), true},
		{"../carrier", outer.Column("carrier"), true},
		{"./total", inner.Column("total"), true},
		{"nope", nil, false},
		{"../../carrier", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := depMonth.RelativeCell(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Same(t, tt.want, got)
			}
		})
	}

	got, err := outer.CellAtPath([]string{"by_month"})
	require.NoError(t, err)
	assert.Same(t, outer.Column("by_month"), got)
	_, err = outer.CellAtPath([]string{"carrier", "x"})
	var pe *PathError
	assert.ErrorAs(t, err, &pe)
}

func TestField_Navigation(t *testing.T) {
	tree := buildFlights(t)
	root := tree.Schema.Root()
	byMonth := fieldAt(t, root, "by_month").(*RepeatedRecordField)
	depMonth := fieldAt(t, byMonth, "dep_month")

	rec, err := depMonth.ParentRecord(1)
	require.NoError(t, err)
	assert.Same(t, byMonth.Record(), rec)
	rec, err = depMonth.ParentRecord(2)
	require.NoError(t, err)
	assert.Same(t, root.Record(), rec)

	rel, err := byMonth.PathTo(depMonth)
	require.NoError(t, err)
	assert.Equal(t, `["each","dep_month"]`, rel)
	_, err = depMonth.PathTo(byMonth)
	assert.Error(t, err)

	carrier := fieldAt(t, root, "carrier")
	tags := fieldAt(t, root, "tags")
	assert.Equal(t, 0, carrier.LocationInParent())
	assert.True(t, carrier.IsFirstChild())
	assert.True(t, tags.IsLastChild())
	assert.False(t, carrier.IsLastChild())
	assert.Equal(t, -1, fieldAt(t, tags.(ListField), "each").LocationInParent())

	assert.True(t, IsBasic(carrier))
	assert.True(t, IsBasic(tags))
	assert.False(t, IsBasic(byMonth))
	assert.Equal(t, FieldArray, TypeOf(tags))
	assert.Equal(t, FieldRepeatedRecord, TypeOf(byMonth))

	_, err = tags.FieldAtPath([]string{"nope"})
	var pe *PathError
	assert.ErrorAs(t, err, &pe)
}

func TestField_FieldsWithOrder(t *testing.T) {
	tree := buildFlights(t, "#(malloy) ordered_by=[{flight_count=desc}, {carrier=asc}, {missing=desc}]")
	got := tree.Schema.Root().FieldsWithOrder()

	var names []string
	var dirs []SortDirection
	for _, sf := range got {
		names = append(names, sf.Field.Name())
		dirs = append(dirs, sf.Dir)
	}
	assert.Equal(t, []string{"flight_count", "carrier", "by_month", "tags"}, names)
	assert.Equal(t, []SortDirection{Desc, Asc, Asc, Asc}, dirs)
}

func TestField_RenderAs(t *testing.T) {
	tests := []struct {
		name        string
		annotations []string
		want        string
	}{
		{"default", nil, RenderCell},
		{"viz chart", []string{"# viz=line"}, RenderChart},
		{"viz table", []string{"# viz=table"}, RenderTable},
		{"viz unknown falls through", []string{"# viz=pie"}, RenderCell},
		{"legacy list", []string{"# list_detail"}, RenderList},
		{"last legacy tag wins", []string{"# link image"}, "image"},
		{"deleted legacy tag", []string{"# link", "# -link"}, RenderCell},
		{"render namespace", []string{"#r bar_chart"}, RenderChart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testutil.Result(
				[]wire.FieldInfo{testutil.StringCol("v", tt.annotations...)},
				[]wire.Cell{testutil.Row(testutil.Str("a"))},
			)
			s, err := NewSchema(res, nil, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, fieldAt(t, s.Root(), "v").RenderAs())
		})
	}

	tree := buildFlights(t)
	root := tree.Schema.Root()
	byMonth := fieldAt(t, root, "by_month").(*RepeatedRecordField)
	assert.Equal(t, RenderTable, root.RenderAs())
	assert.Equal(t, RenderTable, root.Record().RenderAs())
	assert.Equal(t, RenderChart, byMonth.RenderAs())
	assert.Equal(t, RenderNone, byMonth.Record().RenderAs())
	assert.Equal(t, RenderTable, fieldAt(t, root, "tags").RenderAs())
}

// barPlugin matches nested tables tagged bar_chart.
type barPlugin struct{}

func (barPlugin) Name() string { return "bar" }

func (barPlugin) Matches(t *tag.Tag, ft FieldType) bool {
	return ft == FieldRepeatedRecord && t.Has("bar_chart")
}

func (barPlugin) Instantiate(Field) PluginInstance { return &barInstance{} }

type barInstance struct {
	rows   []int
	layout Layout
	field  Field
}

func (*barInstance) Name() string { return "bar" }

func (b *barInstance) ProcessData(_ NestField, c NestCell) { b.rows = append(b.rows, len(c.Rows())) }

func (b *barInstance) BeforeRender(f Field, layout Layout) { b.field, b.layout = f, layout }

// anyPlugin matches every field.
type anyPlugin struct{}

func (anyPlugin) Name() string                   { return "any" }
func (anyPlugin) Matches(*tag.Tag, FieldType) bool { return true }
func (anyPlugin) Instantiate(Field) PluginInstance { return anyPlugin{} }

func TestRegistry(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	tree, err := Build(flights(), []Plugin{barPlugin{}, anyPlugin{}}, Options{Logger: logger})
	require.NoError(t, err)
	reg := tree.Schema.Registry()
	root := tree.Schema.Root()
	byMonth := fieldAt(t, root, "by_month")

	var walked []string
	Walk(root, func(f Field) { walked = append(walked, f.Key()) })
	assert.Equal(t, walked, reg.Keys())
	assert.Contains(t, reg.Keys(), `["each","tags","each"]`)

	plugins := reg.Plugins(byMonth.Key())
	require.Len(t, plugins, 2)
	assert.Equal(t, "bar", plugins[0].Name())
	assert.Equal(t, "any", plugins[1].Name())
	assert.Equal(t, "bar", byMonth.RenderAs())
	assert.Equal(t, plugins, byMonth.Plugins())
	assert.Equal(t, []Field{byMonth}, reg.Fields(byMonth.Key()))

	carrier := fieldAt(t, root, "carrier")
	require.Len(t, reg.Plugins(carrier.Key()), 1)
	assert.Equal(t, "any", carrier.RenderAs())

	bar := plugins[0].(*barInstance)
	assert.Equal(t, []int{2, 1, 0}, bar.rows)

	reg.BeforeRender(Layout{Width: 80, Height: 24})
	assert.Same(t, byMonth, bar.field)
	assert.Equal(t, Layout{Width: 80, Height: 24}, bar.layout)

	keys := reg.Keys()
	keys[0] = "mutated"
	assert.NotEqual(t, "mutated", reg.Keys()[0])

	assert.Contains(t, logs.String(), `"render_pass":"`+tree.Schema.RenderPass()+`"`)
	assert.Contains(t, logs.String(), "built schema")
	assert.Contains(t, logs.String(), "matched plugin")
}

func TestBuild_RebuildIsDeterministic(t *testing.T) {
	a, err := Build(flights(), []Plugin{barPlugin{}}, Options{})
	require.NoError(t, err)
	b, err := Build(flights(), []Plugin{barPlugin{}}, Options{})
	require.NoError(t, err)

	assert.Equal(t, a.Schema.Registry().Keys(), b.Schema.Registry().Keys())
	assert.NotEqual(t, a.Schema.RenderPass(), b.Schema.RenderPass())
	for _, key := range a.Schema.Registry().Keys() {
		fa, _ := a.Schema.Root().FieldAt(key)
		fb, _ := b.Schema.Root().FieldAt(key)
		assert.Equal(t, fa.ValueSet().Len(), fb.ValueSet().Len(), key)
		assert.Equal(t, fa.MaxString(), fb.MaxString(), key)
	}
}

func TestBuild_Root(t *testing.T) {
	t.Run("query name", func(t *testing.T) {
		tree := buildFlights(t, "#(malloy) query_name=by_carrier source { name=flights }")
		root := tree.Schema.Root()
		assert.Equal(t, "by_carrier", root.Name())
		assert.Equal(t, "flights", root.SourceName())
	})

	t.Run("defaults", func(t *testing.T) {
		root := buildFlights(t).Schema.Root()
		assert.Equal(t, DefaultRootName, root.Name())
		assert.Equal(t, DefaultSourceName, root.SourceName())
		assert.Empty(t, root.SourceParameters())
	})

	t.Run("dimensions only", func(t *testing.T) {
		res := flights()
		res.Schema.Fields = append(res.Schema.Fields, wire.FieldInfo{
			Kind: wire.KindView, Name: "v", Type: wire.Type{Kind: wire.StringType},
		})
		tree, err := Build(res, nil, Options{})
		require.NoError(t, err)
		_, ok := tree.Schema.Root().FieldByName("v")
		assert.False(t, ok)
		assert.Len(t, tree.Schema.Root().Fields(), 4)
	})

	t.Run("bare record", func(t *testing.T) {
		res := testutil.Result([]wire.FieldInfo{testutil.StringCol("a")}, nil)
		res.Data = testutil.Row(testutil.Str("only"))
		tree, err := Build(res, nil, Options{})
		require.NoError(t, err)
		require.Len(t, tree.Root.Rows(), 1)
		assert.Equal(t, "only", tree.Root.Rows()[0].Column("a").Value())
	})

	t.Run("model tag and timezone", func(t *testing.T) {
		res := flights()
		res.ModelAnnotations = testutil.Annotations("## theme=dark")
		res.QueryTimezone = "America/Los_Angeles"
		tree, err := Build(res, nil, Options{})
		require.NoError(t, err)
		theme, _ := tree.Schema.Root().ModelTag().Text("theme")
		assert.Equal(t, "dark", theme)
		assert.Equal(t, "America/Los_Angeles", tree.Schema.Root().QueryTimezone())
		assert.Nil(t, fieldAt(t, tree.Schema.Root(), "by_month").(*RepeatedRecordField).ModelTag())
	})

	t.Run("malformed annotation is logged", func(t *testing.T) {
		logger, logs := testutil.NewCaptureLogger()
		res := testutil.Result(
			[]wire.FieldInfo{testutil.StringCol("a", "# size=", "# hidden")},
			[]wire.Cell{testutil.Row(testutil.Str("x"))},
		)
		tree, err := Build(res, nil, Options{Logger: logger})
		require.NoError(t, err)
		assert.True(t, fieldAt(t, tree.Schema.Root(), "a").IsHidden())
		assert.Contains(t, logs.String(), "malformed annotation")
	})
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields []wire.FieldInfo
		data   wire.Cell
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unknown type",
			fields: []wire.FieldInfo{{Name: "x", Type: wire.Type{Kind: "geometry_type"}}},
			data:   testutil.Table(),
			check: func(t *testing.T, err error) {
				var e *UnknownTypeError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "geometry_type", e.Kind)
				assert.Equal(t, []string{"each", "x"}, e.Path)
			},
		},
		{
			name:   "array without element type",
			fields: []wire.FieldInfo{{Name: "x", Type: wire.Type{Kind: wire.ArrayType}}},
			data:   testutil.Table(),
			check: func(t *testing.T, err error) {
				var e *MissingChildError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "element_type", e.Name)
			},
		},
		{
			name:   "type mismatch",
			fields: []wire.FieldInfo{testutil.StringCol("s")},
			data:   testutil.Table(testutil.Row(testutil.Num(1))),
			check: func(t *testing.T, err error) {
				var e *TypeMismatchError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, FieldString, e.FieldType)
				assert.Equal(t, wire.NumberCell, e.CellKind)
			},
		},
		{
			name:   "short record",
			fields: []wire.FieldInfo{testutil.StringCol("a"), testutil.NumberCol("b")},
			data:   testutil.Table(testutil.Row(testutil.Str("x"))),
			check: func(t *testing.T, err error) {
				var e *MissingChildError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "b", e.Name)
			},
		},
		{
			name:   "unparseable date",
			fields: []wire.FieldInfo{testutil.DateCol("d", "")},
			data:   testutil.Table(testutil.Row(testutil.Date("yesterday"))),
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "yesterday")
			},
		},
		{
			name:   "null root",
			fields: []wire.FieldInfo{testutil.StringCol("a")},
			data:   testutil.Null(),
			check: func(t *testing.T, err error) {
				var e *TypeMismatchError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, FieldRepeatedRecord, e.FieldType)
			},
		},
		{
			name:   "table row is not a record",
			fields: []wire.FieldInfo{testutil.StringCol("a")},
			data:   testutil.Table(testutil.Str("x")),
			check: func(t *testing.T, err error) {
				var e *TypeMismatchError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, FieldRecord, e.FieldType)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testutil.Result(tt.fields, nil)
			res.Data = tt.data
			_, err := Build(res, nil, Options{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestPathKey(t *testing.T) {
	for _, path := range [][]string{nil, {"each"}, {"each", "a b", `q"uote`}} {
		key := PathToKey(path)
		got, err := PathFromKey(key)
		require.NoError(t, err)
		if path == nil {
			assert.Equal(t, "[]", key)
			assert.Empty(t, got)
			continue
		}
		assert.True(t, slices.Equal(path, got), key)
	}
	_, err := PathFromKey("not json")
	assert.Error(t, err)
}
