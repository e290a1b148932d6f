package datatree

import "slices"

// Render strategies.
const (
	RenderCell      = "cell"
	RenderTable     = "table"
	RenderChart     = "chart"
	RenderList      = "list"
	RenderDashboard = "dashboard"
	RenderNone      = "none"
)

var legacyRenderTags = []string{
	"link",
	"image",
	"cell",
	"list",
	"list_detail",
	"bar_chart",
	"line_chart",
	"dashboard",
	"scatter_chart",
	"shape_map",
	"segment_map",
}

var vizChartTypes = []string{"bar", "line", "area", "scatter"}

// RenderAs resolves how the field should be drawn: the active plugin, then
// the viz tag, then the last legacy render tag, then a type default.
func (f *fieldBase) RenderAs() string {
	if len(f.plugins) > 0 {
		return f.plugins[0].Name()
	}

	if viz, ok := f.tag.Text("viz"); ok {
		switch {
		case viz == RenderTable:
			return RenderTable
		case viz == RenderDashboard:
			return RenderDashboard
		case slices.Contains(vizChartTypes, viz):
			return RenderChart
		}
	}

	props := f.tag.Properties()
	for i := len(props) - 1; i >= 0; i-- {
		p := props[i]
		if p.Deleted || !slices.Contains(legacyRenderTags, p.Name) {
			continue
		}
		switch p.Name {
		case "list", "list_detail":
			return RenderList
		case "bar_chart", "line_chart":
			return RenderChart
		}
		return p.Name
	}

	switch f.self.(type) {
	case *RecordField:
		if f.parent != nil && f.parent.RenderAs() == RenderChart {
			return RenderNone
		}
		return RenderTable
	case *ArrayField, *RepeatedRecordField:
		return RenderTable
	}
	return RenderCell
}
