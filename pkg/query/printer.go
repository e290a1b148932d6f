package query

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

const defaultTabWidth = 2

// PrintOptions controls Malloy text output.
type PrintOptions struct {
	// TabWidth is the number of spaces per indent level. Zero means 2.
	TabWidth int
}

// printer accumulates Malloy text with indentation.
type printer struct {
	output      *bytes.Buffer
	depth       int
	tabWidth    int
	atLineStart bool
}

func newPrinter(opts PrintOptions) *printer {
	tw := opts.TabWidth
	if tw <= 0 {
		tw = defaultTabWidth
	}
	return &printer{
		output:      &bytes.Buffer{},
		tabWidth:    tw,
		atLineStart: true,
	}
}

func (p *printer) String() string {
	return p.output.String()
}

func (p *printer) write(s string) {
	if p.atLineStart && len(s) > 0 {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *printer) writeIndent() {
	p.output.WriteString(strings.Repeat(" ", p.depth*p.tabWidth))
	p.atLineStart = false
}

func (p *printer) indent() {
	p.depth++
}

func (p *printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

// list writes items separated by commas, one per line.
func (p *printer) list(items []string) {
	for i, item := range items {
		p.write(item)
		if i < len(items)-1 {
			p.write(",")
			p.writeln()
		}
	}
}

var plainIdentifier = regexp.MustCompile(`^[A-Za-z_][0-9A-Za-z_]*$`)

// QuoteIdentifier returns name bare when it is a plain identifier and in
// backticks otherwise.
func QuoteIdentifier(name string) string {
	if plainIdentifier.MatchString(name) {
		return name
	}
	escaped := strings.ReplaceAll(name, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "`", "\\`")
	return "`" + escaped + "`"
}

// QuoteString returns s as a double quoted Malloy string.
func QuoteString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

func quoteFilter(s string) string {
	return "f`" + strings.ReplaceAll(s, "`", "\\`") + "`"
}

// FormatNumber renders a float the way a JavaScript number prints.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
