package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapviz/internal/config"
	"github.com/leapstack-labs/leapviz/internal/testutil"
	"github.com/leapstack-labs/leapviz/pkg/datatree"
	"github.com/leapstack-labs/leapviz/pkg/wire"
)

func testdata(name string) string {
	return filepath.Join("testdata", name)
}

func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{}, args...))
	ctx := config.WithConfig(context.Background(), cfg)
	ctx = config.WithLogger(ctx, testutil.NewTestLogger(t))
	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

func withOutput(mode string) *config.Config {
	cfg := config.Default()
	cfg.Output = mode
	return cfg
}

func TestNewInspectCommand(t *testing.T) {
	cmd := NewInspectCommand()
	assert.Equal(t, "inspect <result-file>...", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	_, err := execute(t, NewInspectCommand(), config.Default())
	require.Error(t, err)
}

func TestNewDrillCommand(t *testing.T) {
	cmd := NewDrillCommand()
	assert.Equal(t, "drill <result-file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("cell"), "flag %q should exist", "cell")
}

func TestInspect_JSON(t *testing.T) {
	out, err := execute(t, NewInspectCommand(), withOutput(config.OutputJSON),
		testdata("sales.json"), testdata("flights.yaml"))
	require.NoError(t, err)

	var reports []FileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)

	sales := reports[0]
	assert.Equal(t, testdata("sales.json"), sales.File)
	assert.Equal(t, "sales_by_region", sales.Root)
	assert.Equal(t, 2, sales.Rows)
	assert.NotEmpty(t, sales.RenderPass)
	require.Len(t, sales.Fields, 7)

	byPath := make(map[string]FieldReport, len(sales.Fields))
	for _, f := range sales.Fields {
		byPath[f.Path] = f
	}
	region := byPath["each.region"]
	assert.Equal(t, "string", region.Type)
	assert.Equal(t, 2, region.Distinct)
	assert.True(t, region.HasNull)

	byState := byPath["each.by_state"]
	assert.Equal(t, "repeated_record", byState.Type)
	assert.Equal(t, []string{"color_scale"}, byState.Plugins)
	assert.Equal(t, "color_scale", byState.RenderAs)

	salesCol := byPath["each.by_state.each.sales"]
	assert.Equal(t, "4", salesCol.Min)
	assert.Equal(t, "10", salesCol.Max)

	flights := reports[1]
	assert.Equal(t, "flights", flights.Root)
	assert.NotEqual(t, sales.RenderPass, flights.RenderPass)
	months := map[string]FieldReport{}
	for _, f := range flights.Fields {
		months[f.Path] = f
	}
	assert.Equal(t, "2004-01", months["each.dep_month"].Min)
	assert.Equal(t, "2004-03", months["each.dep_month"].Max)
}

func TestInspect_Markdown(t *testing.T) {
	out, err := execute(t, NewInspectCommand(), withOutput(config.OutputMarkdown), testdata("flights.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "# "+testdata("flights.yaml"))
	assert.Contains(t, out, "- **Root**: flights")
	assert.Contains(t, out, "| Path | Type | Render As |")
	assert.Contains(t, out, "| each.carrier | string | cell |")
}

func TestInspect_Errors(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		files     []string
		errSubstr string
	}{
		{"missing file", config.Default(), []string{testdata("missing.json")}, "missing.json"},
		{"malformed file", config.Default(), []string{testdata("sales.json"), testdata("broken.json")}, "broken.json"},
		{"unknown plugin", func() *config.Config {
			cfg := config.Default()
			cfg.Plugins.Enabled = []string{"sparkline"}
			return cfg
		}(), []string{testdata("sales.json")}, "unknown plugin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, NewInspectCommand(), tt.cfg, tt.files...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestDrill_JSON(t *testing.T) {
	out, err := execute(t, NewDrillCommand(), withOutput(config.OutputJSON),
		testdata("sales.json"), "--cell", "0/by_state/1/state")
	require.NoError(t, err)

	var report DrillReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Drillable)
	assert.Equal(t, "stable", report.Tier)
	require.Len(t, report.Entries, 2)
	assert.Equal(t, `region = "West"`, report.Entries[0].Where)
	assert.Equal(t, "each.region", report.Entries[0].Field)
	assert.Equal(t, "West", report.Entries[0].Value)
	assert.Equal(t, `by_state.state = "OR"`, report.Entries[1].Where)
	assert.Equal(t, "run: sales -> {\n"+
		"  drill:\n"+
		"    region = \"West\",\n"+
		"    by_state.state = \"OR\"\n"+
		"} + { select: * }", report.Query)
}

func TestDrill_Text(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		cell    string
		wantOut []string
	}{
		{
			name:    "root",
			cfg:     withOutput(config.OutputText),
			cell:    "",
			wantOut: []string{"Cell: (root)", "Tier: stable", "run: sales -> { select: * }"},
		},
		{
			name:    "null region",
			cfg:     withOutput(config.OutputText),
			cell:    "1/region",
			wantOut: []string{"Drillable: true", "run: sales -> { drill: region = null } + { select: * }"},
		},
		{
			name:    "markdown",
			cfg:     withOutput(config.OutputMarkdown),
			cell:    "0/region",
			wantOut: []string{"- **Tier**: stable", "## Query", "```malloy", `run: sales -> { drill: region = "West" } + { select: * }`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewDrillCommand(), tt.cfg, testdata("sales.json"), "--cell", tt.cell)
			require.NoError(t, err)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestDrill_NotDrillable(t *testing.T) {
	out, err := execute(t, NewDrillCommand(), withOutput(config.OutputJSON), testdata("flights.yaml"), "--cell", "0/carrier")
	require.NoError(t, err)

	var report DrillReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Drillable)
	assert.Empty(t, report.Query)
}

func TestResolveCell(t *testing.T) {
	tree, err := datatree.Build(testutil.Result(
		[]wire.FieldInfo{
			testutil.StringCol("region"),
			testutil.ArrayCol("tags", wire.StringType),
			testutil.NestCol("by_state", []wire.FieldInfo{testutil.StringCol("state")}),
		},
		[]wire.Cell{
			testutil.Row(
				testutil.Str("West"),
				testutil.Array(testutil.Str("a"), testutil.Str("b")),
				testutil.Table(testutil.Row(testutil.Str("CA")), testutil.Row(testutil.Str("OR"))),
			),
		},
	), nil, datatree.Options{})
	require.NoError(t, err)

	tests := []struct {
		addr      string
		want      string
		errSubstr string
	}{
		{addr: "", want: "[]"},
		{addr: "/0/", want: "[]"},
		{addr: "0/region", want: "West"},
		{addr: "0/tags/1", want: "b"},
		{addr: "0/by_state/1/state", want: "OR"},
		{addr: "1", errSubstr: "out of range"},
		{addr: "region", errSubstr: "has no columns"},
		{addr: "0/nope", errSubstr: `no column "nope"`},
		{addr: "0/region/0", errSubstr: "is not a list"},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			c, err := ResolveCell(tree.Root, tt.addr)
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			if tt.want == "[]" {
				assert.NotNil(t, c)
				return
			}
			assert.Equal(t, tt.want, datatree.Text(c))
		})
	}
}
