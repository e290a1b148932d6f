package drill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapviz/internal/testutil"
	"github.com/leapstack-labs/leapviz/pkg/datatree"
	"github.com/leapstack-labs/leapviz/pkg/query"
	"github.com/leapstack-labs/leapviz/pkg/wire"
)

const salesRoot = "#(malloy) drillable source { name=sales }"

// regions builds a region table with a nested by_state table. stateMeta is
// appended to the by_state annotations, regionMeta to the region column.
func regions(t *testing.T, rootMeta string, stateMeta []string, regionMeta ...string) *datatree.Tree {
	t.Helper()
	byState := append([]string{"#(malloy) drillable drill_view=by_state"}, stateMeta...)
	res := testutil.Result(
		[]wire.FieldInfo{
			testutil.StringCol("region", regionMeta...),
			testutil.NestCol("by_state", []wire.FieldInfo{
				testutil.StringCol("state"),
				testutil.NumberCol("sales", "#(malloy) calculation"),
			}, byState...),
		},
		[]wire.Cell{
			testutil.Row(testutil.Str("West"), testutil.Table(
				testutil.Row(testutil.Str("CA"), testutil.Num(10)),
				testutil.Row(testutil.Str("OR"), testutil.Num(4)),
			)),
			testutil.Row(testutil.Null(), testutil.Table(
				testutil.Row(testutil.Str("TX"), testutil.Num(7)),
			)),
		},
		rootMeta,
	)
	tree, err := datatree.Build(res, nil, datatree.Options{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	return tree
}

func stateCell(tree *datatree.Tree, region, state int) datatree.Cell {
	byState := tree.Root.Rows()[region].Column("by_state").(*datatree.RepeatedRecordCell)
	return byState.Rows()[state].Column("state")
}

func TestEngine_StableTier(t *testing.T) {
	tree := regions(t, salesRoot, nil)
	e := New(Options{})
	cell := stateCell(tree, 0, 0)

	ops, ok := e.StableClauses(cell)
	require.True(t, ok)
	require.Len(t, ops, 2)
	assert.Equal(t, query.Drill, ops[0].Kind)
	assert.Equal(t, query.Reference{Name: "region"}, ops[0].Filter.Expression.Field)
	assert.Equal(t, query.String("West"), ops[0].Filter.Value)
	assert.Equal(t, query.Reference{Name: "state", Path: []string{"by_state"}}, ops[1].Filter.Expression.Field)
	assert.Equal(t, query.String("CA"), ops[1].Filter.Value)

	q, ok := e.StableQuery(cell)
	require.True(t, ok)
	assert.Equal(t, "sales", q.Definition.Source.Name)

	want := "run: sales -> {\n" +
		"  drill:\n" +
		"    region = \"West\",\n" +
		"    by_state.state = \"CA\"\n" +
		"} + { select: * }"
	text, ok := e.StableQueryText(cell)
	require.True(t, ok)
	assert.Equal(t, want, text)
	assert.Equal(t, want, e.QueryText(cell))

	res, err := e.Drill(cell)
	require.NoError(t, err)
	assert.Equal(t, Stable, res.Tier)
	assert.Equal(t, want, res.Text)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, `region = "West"`, res.Entries[0].Where)
	assert.Equal(t, "West", res.Entries[0].Value)
	assert.Equal(t, "region", res.Entries[0].Field.Name())
	assert.Equal(t, `by_state.state = "CA"`, res.Entries[1].Where)
}

func TestEngine_StableTierVariants(t *testing.T) {
	tests := []struct {
		name     string
		rootMeta string
		cell     func(tree *datatree.Tree) datatree.Cell
		want     string
	}{
		{
			name:     "root has no clauses",
			rootMeta: salesRoot,
			cell:     func(tree *datatree.Tree) datatree.Cell { return tree.Root },
			want:     "run: sales -> { select: * }",
		},
		{
			name:     "single clause prints inline",
			rootMeta: salesRoot,
			cell:     func(tree *datatree.Tree) datatree.Cell { return tree.Root.Rows()[0].Column("region") },
			want:     `run: sales -> { drill: region = "West" } + { select: * }`,
		},
		{
			name:     "null dimension",
			rootMeta: salesRoot,
			cell:     func(tree *datatree.Tree) datatree.Cell { return tree.Root.Rows()[1] },
			want:     "run: sales -> { drill: region = null } + { select: * }",
		},
		{
			name:     "source parameter",
			rootMeta: "#(malloy) drillable source { name=sales parameters=[{name=year value={kind=number_literal number_value=2004}}] }",
			cell:     func(tree *datatree.Tree) datatree.Cell { return tree.Root.Rows()[0].Column("region") },
			want:     `run: sales(year is 2004) -> { drill: region = "West" } + { select: * }`,
		},
		{
			name:     "default source",
			rootMeta: "#(malloy) drillable",
			cell:     func(tree *datatree.Tree) datatree.Cell { return tree.Root },
			want:     "run: __source__ -> { select: * }",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := regions(t, tt.rootMeta, nil)
			text, ok := New(Options{}).StableQueryText(tt.cell(tree))
			require.True(t, ok)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestEngine_RecordedFilters(t *testing.T) {
	structured := `#(malloy) drill_filters=[{code="state = 'CA'" kind=literal_equality field_reference=[state] value={kind=string_literal string_value=CA}}]`
	tree := regions(t, salesRoot, []string{structured})
	e := New(Options{})
	cell := stateCell(tree, 0, 1)

	ops, ok := e.StableClauses(cell)
	require.True(t, ok)
	assert.Len(t, ops, 3)

	assert.Equal(t, []string{
		`region = "West"`,
		`state = "CA"`,
		`by_state.state = "OR"`,
	}, e.Expressions(cell))

	filterExpr := `#(malloy) drill_filters=[{code="state ~ 'C%'" kind=filter_expression field_reference=[state] filter_expression="C%"}]`
	tree = regions(t, salesRoot, []string{filterExpr})
	ops, ok = e.StableClauses(stateCell(tree, 0, 0))
	require.True(t, ok)
	assert.Equal(t, query.FilterString, ops[1].Filter.Kind)
	assert.Equal(t, "state ~ f`C%`", e.Expressions(stateCell(tree, 0, 0))[1])
}

func TestEngine_FallbackTier(t *testing.T) {
	t.Run("unstructured list filter", func(t *testing.T) {
		tree := regions(t, salesRoot, []string{`#(malloy) drill_filters=[{code="state != 'XX'"}]`})
		e := New(Options{})
		cell := stateCell(tree, 0, 0)

		_, ok := e.StableClauses(cell)
		assert.False(t, ok)
		_, ok = e.StableQuery(cell)
		assert.False(t, ok)

		assert.Equal(t, []string{
			`region = "West"`,
			"state != 'XX'",
			`by_state.state = "CA"`,
		}, e.Expressions(cell))

		want := "run: sales -> {\n" +
			"  drill:\n" +
			"    region = \"West\",\n" +
			"    state != 'XX',\n" +
			"    by_state.state = \"CA\"\n" +
			"} + { select: * }"
		res, err := e.Drill(cell)
		require.NoError(t, err)
		assert.Equal(t, Fallback, res.Tier)
		assert.Nil(t, res.Query)
		assert.Equal(t, want, res.Text)
		assert.Equal(t, want, e.QueryText(cell))

		entries := e.Entries(cell)
		require.Len(t, entries, 3)
		assert.Nil(t, entries[1].Field)
		assert.Nil(t, entries[1].Value)
		assert.Equal(t, "CA", entries[2].Value)
	})

	t.Run("textual dimension expression", func(t *testing.T) {
		tree := regions(t, salesRoot, nil, `#(malloy) drill_expression { code="upper(region)" }`)
		cell := stateCell(tree, 0, 0)

		malloy := New(Options{})
		_, ok := malloy.StableClauses(cell)
		assert.False(t, ok)
		assert.Equal(t, []string{`upper(region) = "West"`, `by_state.state = "CA"`}, malloy.Expressions(cell))

		sql := New(Options{Formatter: SQLLiterals{}})
		assert.Equal(t, "upper(region) = 'West'", sql.Expressions(cell)[0])
	})

	t.Run("filter without code", func(t *testing.T) {
		tree := regions(t, salesRoot, []string{`#(malloy) drill_filters=[{kind=literal_equality}]`})
		e := New(Options{})
		cell := stateCell(tree, 0, 0)

		byState := tree.Root.Rows()[0].Column("by_state").Field().(datatree.ListField)
		assert.Empty(t, byState.DrillFilters())
		_, ok := byState.StableDrillFilters()
		assert.False(t, ok)

		assert.Equal(t, []string{
			`region = "West"`,
			`by_state.state = "CA"`,
		}, e.Expressions(cell))

		res, err := e.Drill(cell)
		require.NoError(t, err)
		assert.Equal(t, Fallback, res.Tier)
		assert.Equal(t, "run: sales -> {\n"+
			"  drill:\n"+
			"    region = \"West\",\n"+
			"    by_state.state = \"CA\"\n"+
			"} + { select: * }", res.Text)
	})

	t.Run("tab width", func(t *testing.T) {
		tree := regions(t, salesRoot, []string{`#(malloy) drill_filters=[{code="x"}]`})
		text := New(Options{TabWidth: 4}).QueryText(tree.Root.Rows()[0].Column("by_state"))
		assert.Equal(t, "run: sales -> {\n    drill:\n        region = \"West\",\n        x\n} + { select: * }", text)
	})
}

func TestEngine_LevelsWithoutMetadata(t *testing.T) {
	// by_state records no filters: it adds nothing at its level while the
	// row levels above and below still contribute.
	tree := regions(t, salesRoot, nil)
	e := New(Options{})
	cell := stateCell(tree, 0, 0)
	byState := tree.Root.Rows()[0].Column("by_state").Field().(datatree.ListField)
	assert.Empty(t, byState.DrillFilters())

	values := e.Values(cell)
	require.Len(t, values, 2)
	assert.Equal(t, "region", values[0].Field.Name())
	assert.Equal(t, "state", values[1].Field.Name())
}

func TestEngine_TimeTruncation(t *testing.T) {
	res := testutil.Result(
		[]wire.FieldInfo{
			testutil.DateCol("dep_month", "month",
				"#(malloy) drill_expression { kind=time_truncation field_reference=[dep_time] truncation=month }"),
		},
		[]wire.Cell{testutil.Row(testutil.Date("2004-01-01"))},
		salesRoot,
	)
	tree, err := datatree.Build(res, nil, datatree.Options{})
	require.NoError(t, err)

	text := New(Options{}).QueryText(tree.Root.Rows()[0].Column("dep_month"))
	assert.Equal(t, "run: sales -> { drill: dep_time.month = @2004-01 } + { select: * }", text)
}

func TestEngine_Gate(t *testing.T) {
	tests := []struct {
		name      string
		rootMeta  string
		stateMeta []string
		want      bool
	}{
		{"all drillable", salesRoot, nil, true},
		{"nested drillable=false", salesRoot, []string{"#(malloy) drillable=false"}, false},
		{"root not drillable", "#(malloy) source { name=sales }", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := regions(t, tt.rootMeta, tt.stateMeta)
			e := New(Options{})
			cell := stateCell(tree, 0, 0)
			assert.Equal(t, tt.want, e.CanDrill(cell))

			res, err := e.Drill(cell)
			if tt.want {
				require.NoError(t, err)
				assert.NotNil(t, res)
				return
			}
			assert.ErrorIs(t, err, ErrNotDrillable)
			assert.Nil(t, res)
		})
	}

	// the gate only looks at lists enclosing the cell
	tree := regions(t, salesRoot, []string{"#(malloy) drillable=false"})
	assert.True(t, New(Options{}).CanDrill(tree.Root.Rows()[0].Column("region")))
}

func TestEngine_Deterministic(t *testing.T) {
	for _, meta := range [][]string{nil, {`#(malloy) drill_filters=[{code="x"}]`}} {
		tree := regions(t, salesRoot, meta)
		var e Engine
		cell := stateCell(tree, 0, 1)
		first, err := e.Drill(cell)
		require.NoError(t, err)
		second, err := e.Drill(cell)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, e.Expressions(cell), e.Expressions(cell))
	}
}
