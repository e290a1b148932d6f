// Package plugins holds the built-in render plugins.
package plugins

import (
	"math"

	"github.com/leapstack-labs/leapviz/pkg/datatree"
	"github.com/leapstack-labs/leapviz/pkg/tag"
)

// ColorScaleName is the render tag that enables the color scale, e.g.
// "# color_scale=sales" on a nested table.
const ColorScaleName = "color_scale"

// Bucket bounds for a color scale.
const (
	MinBuckets = 2
	MaxBuckets = 9
	// columns of layout width per bucket
	bucketWidth = 10
)

// ColorScale shades a numeric column of a nested table by where each value
// falls in the column's domain.
type ColorScale struct{}

func (ColorScale) Name() string { return ColorScaleName }

// Matches tables whose render tag names a column, "# color_scale=col".
func (ColorScale) Matches(t *tag.Tag, ft datatree.FieldType) bool {
	if ft != datatree.FieldRepeatedRecord {
		return false
	}
	col, ok := t.Text(ColorScaleName)
	return ok && col != ""
}

func (ColorScale) Instantiate(f datatree.Field) datatree.PluginInstance {
	col, _ := f.Tag().Text(ColorScaleName)
	return &ColorScaleInstance{
		column:  col,
		min:     math.Inf(1),
		max:     math.Inf(-1),
		buckets: MinBuckets,
	}
}

// ColorScaleInstance accumulates the domain of one column over every table
// cell of its field.
type ColorScaleInstance struct {
	column   string
	min, max float64
	seen     int
	buckets  int
}

func (s *ColorScaleInstance) Name() string { return ColorScaleName }

// Column returns the shaded column name.
func (s *ColorScaleInstance) Column() string { return s.column }

// ProcessData widens the domain with the column's non-null numbers.
func (s *ColorScaleInstance) ProcessData(_ datatree.NestField, c datatree.NestCell) {
	for _, row := range c.Rows() {
		n, ok := row.Column(s.column).(*datatree.NumberCell)
		if !ok {
			continue
		}
		v := n.Number()
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
		s.seen++
	}
}

// BeforeRender sizes the palette to the available width.
func (s *ColorScaleInstance) BeforeRender(_ datatree.Field, layout datatree.Layout) {
	s.buckets = min(max(layout.Width/bucketWidth, MinBuckets), MaxBuckets)
}

// Domain returns the scanned min and max. ok is false before any number has
// been seen.
func (s *ColorScaleInstance) Domain() (lo, hi float64, ok bool) {
	if s.seen == 0 {
		return 0, 0, false
	}
	return s.min, s.max, true
}

// Buckets returns the palette size.
func (s *ColorScaleInstance) Buckets() int { return s.buckets }

// Bucket returns the palette index for c, or -1 when c is not a number.
func (s *ColorScaleInstance) Bucket(c datatree.Cell) int {
	n, ok := c.(*datatree.NumberCell)
	if !ok || s.seen == 0 {
		return -1
	}
	if s.max == s.min {
		return 0
	}
	pos := (n.Number() - s.min) / (s.max - s.min)
	return min(max(int(pos*float64(s.buckets)), 0), s.buckets-1)
}
