package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapviz/internal/cli/output"
	"github.com/leapstack-labs/leapviz/pkg/datatree"
	"github.com/leapstack-labs/leapviz/pkg/query"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <result-file>...",
		Short: "Show the field tree and statistics of query results",
		Long: `Build the field and cell trees of one or more result files and print
per-field statistics, render strategies and matched plugins.

Result files are JSON or YAML (.json, .yaml, .yml).

Output adapts to environment:
  - Terminal: Styled tables
  - Piped/Scripted: Markdown tables

Use --output to override: auto, text, markdown, json`,
		Example: `  # Inspect a result
  leapviz inspect flights.json

  # Inspect several results as JSON
  leapviz inspect flights.json sales.yaml -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args)
		},
	}
	return cmd
}

// FileReport describes one result file.
type FileReport struct {
	File       string        `json:"file"`
	Root       string        `json:"root"`
	RenderPass string        `json:"render_pass"`
	Rows       int           `json:"rows"`
	Fields     []FieldReport `json:"fields"`
}

// FieldReport describes one field of the schema tree.
type FieldReport struct {
	Path      string   `json:"path"`
	Type      string   `json:"type"`
	RenderAs  string   `json:"render_as"`
	Plugins   []string `json:"plugins,omitempty"`
	Distinct  int      `json:"distinct"`
	HasNull   bool     `json:"has_null"`
	Min       string   `json:"min,omitempty"`
	Max       string   `json:"max,omitempty"`
	MaxString string   `json:"max_string,omitempty"`
}

func runInspect(cmd *cobra.Command, files []string) error {
	cmdCtx := NewCommandContext(cmd)

	reports, err := inspectFiles(cmd.Context(), cmdCtx, files)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(reports)
	default:
		inspectTables(r, reports)
		return nil
	}
}

// inspectFiles builds every file concurrently. Each file gets its own
// trees; reports keep the argument order.
func inspectFiles(ctx context.Context, cmdCtx *CommandContext, files []string) ([]FileReport, error) {
	reports := make([]FileReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tree, err := cmdCtx.LoadTree(path)
			if err != nil {
				return err
			}
			reports[i] = newFileReport(path, tree)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	cmdCtx.Logger.Debug("inspected results", "files", len(files))
	return reports, nil
}

func newFileReport(path string, tree *datatree.Tree) FileReport {
	root := tree.Schema.Root()
	report := FileReport{
		File:       path,
		Root:       root.Name(),
		RenderPass: tree.Schema.RenderPass(),
		Rows:       len(tree.Root.Rows()),
	}
	datatree.Walk(root, func(f datatree.Field) {
		report.Fields = append(report.Fields, newFieldReport(f))
	})
	return report
}

func newFieldReport(f datatree.Field) FieldReport {
	fr := FieldReport{
		Path:      displayPath(f),
		Type:      datatree.TypeOf(f).String(),
		RenderAs:  f.RenderAs(),
		Distinct:  f.ValueSet().Len(),
		HasNull:   f.ValueSet().HasNull(),
		MaxString: f.MaxString(),
	}
	for _, p := range f.Plugins() {
		fr.Plugins = append(fr.Plugins, p.Name())
	}
	fr.Min, fr.Max = extent(f)
	return fr
}

func displayPath(f datatree.Field) string {
	if f.IsRoot() {
		return f.Name()
	}
	return strings.Join(f.Path(), ".")
}

func extent(f datatree.Field) (lo, hi string) {
	switch f := f.(type) {
	case *datatree.NumberField:
		minV, ok := f.Min()
		if !ok {
			return "", ""
		}
		maxV, _ := f.Max()
		return formatNumber(minV), formatNumber(maxV)
	case *datatree.DateField:
		minV, ok := f.Min()
		if !ok {
			return "", ""
		}
		maxV, _ := f.Max()
		return query.FormatTime(minV, true, f.Timeframe()), query.FormatTime(maxV, true, f.Timeframe())
	case *datatree.TimestampField:
		minV, ok := f.Min()
		if !ok {
			return "", ""
		}
		maxV, _ := f.Max()
		return query.FormatTime(minV, false, f.Timeframe()), query.FormatTime(maxV, false, f.Timeframe())
	case *datatree.StringField:
		minV, ok := f.Min()
		if !ok {
			return "", ""
		}
		maxV, _ := f.Max()
		return minV, maxV
	}
	return "", ""
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var inspectColumns = []string{"path", "type", "render_as", "plugins", "distinct", "nulls", "min", "max"}

func inspectTables(r *output.Renderer, reports []FileReport) {
	for _, rep := range reports {
		r.Header(1, rep.File)
		r.KeyValue("Root", rep.Root)
		r.KeyValue("Rows", strconv.Itoa(rep.Rows))
		r.KeyValue("Render pass", rep.RenderPass)
		r.Println()

		rows := make([][]string, 0, len(rep.Fields))
		for _, f := range rep.Fields {
			rows = append(rows, []string{
				f.Path,
				f.Type,
				f.RenderAs,
				strings.Join(f.Plugins, ", "),
				strconv.Itoa(f.Distinct),
				fmt.Sprint(f.HasNull),
				f.Min,
				f.Max,
			})
		}
		r.Table(inspectColumns, rows)
	}
}
