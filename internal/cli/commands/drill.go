package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapviz/internal/cli/output"
	"github.com/leapstack-labs/leapviz/pkg/datatree"
	"github.com/leapstack-labs/leapviz/pkg/drill"
)

// NewDrillCommand creates the drill command.
func NewDrillCommand() *cobra.Command {
	var cellAddr string

	cmd := &cobra.Command{
		Use:   "drill <result-file>",
		Short: "Reconstruct the drill query for a result cell",
		Long: `Address a cell of a result by row indexes and column names and print
the query that selects the rows behind it.

The address is a slash separated list: numbers index rows of a table (or
elements of an array), names select columns of a row. An empty address is
the whole result.`,
		Example: `  # Drill into the state of the second row nested in the first region
  leapviz drill sales.json --cell 0/by_state/1/state

  # Print fallback literals in SQL grammar
  leapviz drill sales.json --cell 0/region --grammar sql`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrill(cmd, args[0], cellAddr)
		},
	}

	cmd.Flags().StringVar(&cellAddr, "cell", "", "Cell address, e.g. 0/by_state/1/state")
	return cmd
}

// DrillReport is the outcome of drilling one cell.
type DrillReport struct {
	File      string       `json:"file"`
	Cell      string       `json:"cell"`
	Drillable bool         `json:"drillable"`
	Tier      string       `json:"tier,omitempty"`
	Entries   []DrillEntry `json:"entries,omitempty"`
	Query     string       `json:"query,omitempty"`
}

// DrillEntry is one where clause of a drill.
type DrillEntry struct {
	Where string `json:"where"`
	Field string `json:"field,omitempty"`
	Value any    `json:"value,omitempty"`
}

func runDrill(cmd *cobra.Command, path, addr string) error {
	cmdCtx := NewCommandContext(cmd)

	tree, err := cmdCtx.LoadTree(path)
	if err != nil {
		return err
	}
	cell, err := ResolveCell(tree.Root, addr)
	if err != nil {
		return err
	}

	report := DrillReport{File: path, Cell: addr}
	res, err := cmdCtx.DrillEngine().Drill(cell)
	switch {
	case errors.Is(err, drill.ErrNotDrillable):
		cmdCtx.Logger.Debug("cell not drillable", "cell", addr)
	case err != nil:
		return err
	default:
		report.Drillable = true
		report.Tier = string(res.Tier)
		report.Query = res.Text
		for _, e := range res.Entries {
			de := DrillEntry{Where: e.Where, Value: e.Value}
			if e.Field != nil {
				de.Field = strings.Join(e.Field.Path(), ".")
			}
			report.Entries = append(report.Entries, de)
		}
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(report)
	}
	drillText(r, report)
	return nil
}

func drillText(r *output.Renderer, report DrillReport) {
	cell := report.Cell
	if cell == "" {
		cell = "(root)"
	}
	r.Header(1, "Drill "+report.File)
	r.KeyValue("Cell", cell)
	r.KeyValue("Drillable", strconv.FormatBool(report.Drillable))
	if !report.Drillable {
		return
	}
	r.KeyValue("Tier", report.Tier)
	r.Println()

	if len(report.Entries) > 0 {
		rows := make([][]string, 0, len(report.Entries))
		for _, e := range report.Entries {
			value := ""
			if e.Value != nil {
				value = fmt.Sprint(e.Value)
			}
			rows = append(rows, []string{e.Where, e.Field, value})
		}
		r.Table([]string{"where", "field", "value"}, rows)
	}

	r.Header(2, "Query")
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Printf("```malloy\n%s\n```\n", report.Query)
		return
	}
	r.Println(report.Query)
}

// ResolveCell walks addr from root. Numeric segments index rows or array
// elements; other segments name columns of a row.
func ResolveCell(root *datatree.RepeatedRecordCell, addr string) (datatree.Cell, error) {
	var cur datatree.Cell = root
	addr = strings.Trim(addr, "/")
	if addr == "" {
		return cur, nil
	}
	for _, seg := range strings.Split(addr, "/") {
		next, err := step(cur, seg)
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", addr, err)
		}
		cur = next
	}
	return cur, nil
}

func step(cur datatree.Cell, seg string) (datatree.Cell, error) {
	if idx, err := strconv.Atoi(seg); err == nil {
		var items []datatree.Cell
		switch c := cur.(type) {
		case *datatree.RepeatedRecordCell:
			for _, row := range c.Rows() {
				items = append(items, row)
			}
		case *datatree.ArrayCell:
			items = c.Values()
		default:
			return nil, fmt.Errorf("%s is not a list", describe(cur))
		}
		if idx < 0 || idx >= len(items) {
			return nil, fmt.Errorf("index %d out of range for %s (%d items)", idx, describe(cur), len(items))
		}
		return items[idx], nil
	}

	row, ok := cur.(*datatree.RecordCell)
	if !ok {
		return nil, fmt.Errorf("%s has no columns, index it first", describe(cur))
	}
	c := row.Column(seg)
	if c == nil {
		return nil, fmt.Errorf("no column %q in %s", seg, describe(cur))
	}
	return c, nil
}

func describe(c datatree.Cell) string {
	f := c.Field()
	return fmt.Sprintf("%s %s", datatree.TypeOf(f), displayPath(f))
}
