// Package drill reconstructs, for a selected cell, the query that selects
// the rows reachable from it.
//
// Reconstruction walks the cell's ancestors. Every list level contributes the
// drill filters recorded for its view and every row contributes one equality
// per dimension column. The stable tier builds a structured query and is used
// only when every level carries structured drill metadata; otherwise the
// fallback tier emits filter text. Both are pure functions of the ancestor
// chain.
package drill

import (
	"errors"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapviz/pkg/datatree"
	"github.com/leapstack-labs/leapviz/pkg/query"
)

// ErrNotDrillable is returned by Drill when some enclosing list has lost
// per-row provenance.
var ErrNotDrillable = errors.New("cell is not drillable")

// Tier names the reconstruction used for a result.
type Tier string

const (
	Stable   Tier = "stable"
	Fallback Tier = "fallback"
)

// Options configures an Engine.
type Options struct {
	// Formatter renders fallback literals (optional, Malloy syntax if nil)
	Formatter LiteralFormatter
	// TabWidth is the indent of printed queries (optional, 2 if zero)
	TabWidth int
}

// Engine performs drill reconstruction. The zero value is ready to use.
type Engine struct {
	opts Options
}

// New creates an engine.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

func (e *Engine) formatter() LiteralFormatter {
	if e.opts.Formatter == nil {
		return MalloyLiterals{}
	}
	return e.opts.Formatter
}

func (e *Engine) printOptions() query.PrintOptions {
	return query.PrintOptions{TabWidth: e.opts.TabWidth}
}

func (e *Engine) indent(levels int) string {
	tw := e.opts.TabWidth
	if tw <= 0 {
		tw = 2
	}
	return strings.Repeat(" ", tw*levels)
}

// Value is one fallback filter step. Field and Cell are set when the step
// was synthesized from a row's dimension column.
type Value struct {
	Where string
	Field datatree.Field
	Cell  datatree.Cell
}

// Entry is a display form of a drill step.
type Entry struct {
	Where string
	Field datatree.Field
	// Value is the plain value of the dimension cell, if any.
	Value any
}

// Result is a complete drill reconstruction.
type Result struct {
	Tier    Tier
	Query   *query.Query
	Text    string
	Entries []Entry
}

// ancestors returns c followed by its enclosing cells up to the root.
func ancestors(c datatree.Cell) []datatree.Cell {
	var out []datatree.Cell
	for cur := c; cur != nil; cur = cur.Parent() {
		out = append(out, cur)
	}
	return out
}

// dimensions returns the scalar dimension columns of a row.
func dimensions(rec *datatree.RecordField) []datatree.Field {
	var out []datatree.Field
	for _, f := range rec.Fields() {
		if datatree.IsBasic(f) && f.WasDimension() {
			out = append(out, f)
		}
	}
	return out
}

// CanDrill reports whether every enclosing list of c is drillable.
func (e *Engine) CanDrill(c datatree.Cell) bool {
	for _, cur := range ancestors(c) {
		if list, ok := cur.Field().(datatree.ListField); ok && !list.IsDrillable() {
			return false
		}
	}
	return true
}

// StableClauses returns the structured drill operations for c, ordered from
// the root. It reports false when some level lacks structured metadata.
func (e *Engine) StableClauses(c datatree.Cell) ([]query.Operation, bool) {
	var levels [][]query.Operation
	for _, cur := range ancestors(c) {
		var level []query.Operation
		switch f := cur.Field().(type) {
		case datatree.ListField:
			filters, ok := f.StableDrillFilters()
			if !ok {
				return nil, false
			}
			for _, flt := range filters {
				level = append(level, query.Operation{Kind: query.Drill, Filter: flt})
			}
		case *datatree.RecordField:
			row, isRow := cur.(*datatree.RecordCell)
			if !isRow {
				break
			}
			for _, dim := range dimensions(f) {
				lit, ok := row.Column(dim.Name()).LiteralValue()
				if !ok {
					continue
				}
				expr, ok := dim.DrillStableExpression()
				if !ok {
					return nil, false
				}
				level = append(level, query.Operation{
					Kind:   query.Drill,
					Filter: query.Filter{Kind: query.LiteralEquality, Expression: expr, Value: lit},
				})
			}
		}
		levels = append(levels, level)
	}
	slices.Reverse(levels)
	out := []query.Operation{}
	for _, level := range levels {
		out = append(out, level...)
	}
	return out, true
}

// StableQuery returns the structured query for c.
func (e *Engine) StableQuery(c datatree.Cell) (*query.Query, bool) {
	ops, ok := e.StableClauses(c)
	if !ok {
		return nil, false
	}
	root := c.Field().Root()
	return &query.Query{
		Definition: query.Arrow{
			Source: query.SourceReference{
				Name:       root.SourceName(),
				Parameters: root.SourceParameters(),
			},
			View: query.Segment{Operations: ops},
		},
	}, true
}

// StableQueryText renders the stable query followed by a select of every
// column.
func (e *Engine) StableQueryText(c datatree.Cell) (string, bool) {
	q, ok := e.StableQuery(c)
	if !ok {
		return "", false
	}
	if len(q.Definition.View.Operations) == 0 {
		return e.selectAll(c), true
	}
	return query.ToMalloy(*q, e.printOptions()) + " + { select: * }", true
}

func (e *Engine) selectAll(c datatree.Cell) string {
	return "run: " + query.QuoteIdentifier(c.Field().Root().SourceName()) + " -> { select: * }"
}

// Values returns the fallback filter steps for c, ordered from the root.
func (e *Engine) Values(c datatree.Cell) []Value {
	var levels [][]Value
	for _, cur := range ancestors(c) {
		var level []Value
		switch f := cur.Field().(type) {
		case datatree.ListField:
			for _, where := range f.DrillFilters() {
				level = append(level, Value{Where: where})
			}
		case *datatree.RecordField:
			row, isRow := cur.(*datatree.RecordCell)
			if !isRow {
				break
			}
			for _, dim := range dimensions(f) {
				cell := row.Column(dim.Name())
				lit, ok := cell.LiteralValue()
				if !ok {
					continue
				}
				var where string
				if expr, ok := dim.DrillStableExpression(); ok {
					where = query.FilterToMalloy(query.Filter{Kind: query.LiteralEquality, Expression: expr, Value: lit})
				} else {
					where = dim.DrillExpression() + " = " + FormatCell(e.formatter(), cell)
				}
				level = append(level, Value{Where: where, Field: dim, Cell: cell})
			}
		}
		levels = append(levels, level)
	}
	slices.Reverse(levels)
	var out []Value
	for _, level := range levels {
		out = append(out, level...)
	}
	return out
}

// Expressions returns the fallback filter text for c.
func (e *Engine) Expressions(c datatree.Cell) []string {
	values := e.Values(c)
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.Where
	}
	return out
}

// Entries returns the drill steps for display.
func (e *Engine) Entries(c datatree.Cell) []Entry {
	values := e.Values(c)
	out := make([]Entry, len(values))
	for i, v := range values {
		out[i] = Entry{Where: v.Where, Field: v.Field}
		if v.Cell != nil {
			out[i].Value = v.Cell.Value()
		}
	}
	return out
}

// QueryText returns the stable query text when available and the fallback
// text otherwise.
func (e *Engine) QueryText(c datatree.Cell) string {
	if text, ok := e.StableQueryText(c); ok {
		return text
	}
	return e.fallbackText(c)
}

func (e *Engine) fallbackText(c datatree.Cell) string {
	expressions := e.Expressions(c)
	if len(expressions) == 0 {
		return e.selectAll(c)
	}
	var sb strings.Builder
	sb.WriteString("run: ")
	sb.WriteString(query.QuoteIdentifier(c.Field().Root().SourceName()))
	sb.WriteString(" -> {\n")
	sb.WriteString(e.indent(1))
	sb.WriteString("drill:\n")
	for i, expr := range expressions {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteString(e.indent(2))
		sb.WriteString(expr)
	}
	sb.WriteString("\n} + { select: * }")
	return sb.String()
}

// Drill runs the full reconstruction for c.
func (e *Engine) Drill(c datatree.Cell) (*Result, error) {
	if !e.CanDrill(c) {
		return nil, ErrNotDrillable
	}
	res := &Result{Entries: e.Entries(c)}
	if q, ok := e.StableQuery(c); ok {
		res.Tier = Stable
		res.Query = q
		res.Text, _ = e.StableQueryText(c)
		return res, nil
	}
	res.Tier = Fallback
	res.Text = e.fallbackText(c)
	return res, nil
}
