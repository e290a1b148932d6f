// Package output renders command results as styled text, markdown or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mode selects the output format.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeJSON     Mode = "json"
	ModeMarkdown Mode = "markdown"
)

type fdProvider interface {
	Fd() uintptr
}

// Renderer writes command output in one mode.
type Renderer struct {
	w     io.Writer
	errW  io.Writer
	mode  Mode
	isTTY bool
	title cases.Caser
}

// NewRenderer creates a renderer. Auto mode resolves to text when w is a
// terminal and markdown otherwise.
func NewRenderer(w, errW io.Writer, mode Mode) *Renderer {
	return &Renderer{
		w:     w,
		errW:  errW,
		mode:  mode,
		isTTY: isTerminal(w),
		title: cases.Title(language.English),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(fdProvider)
	return ok && term.IsTerminal(int(f.Fd()))
}

// EffectiveMode returns the resolved mode.
func (r *Renderer) EffectiveMode() Mode {
	switch r.mode {
	case ModeText, ModeJSON, ModeMarkdown:
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Width returns the terminal width, or fallback when output is not a
// terminal.
func (r *Renderer) Width(fallback int) int {
	if f, ok := r.w.(fdProvider); ok && r.isTTY {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

// Writer returns the output writer.
func (r *Renderer) Writer() io.Writer { return r.w }

func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.w, a...)
}

func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.w, format, a...)
}

// Warnf writes to the error stream.
func (r *Renderer) Warnf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.errW, format, a...)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Header writes a section header.
func (r *Renderer) Header(level int, title string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(level, title))
		r.Println()
		return
	}
	if level <= 1 {
		r.Println(text.Bold.Sprint(title))
		return
	}
	r.Println(title)
}

// KeyValue writes a labelled value.
func (r *Renderer) KeyValue(key, value string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatKeyValue(key, value))
		return
	}
	r.Printf("%s: %s\n", key, value)
}

// Table writes rows under title-cased column headers. Markdown mode emits a
// pipe table; text mode uses box drawing, colored on a terminal.
func (r *Renderer) Table(columns []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	if r.isTTY {
		t.SetStyle(table.StyleColoredDark)
	}

	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = r.title.String(strings.ReplaceAll(col, "_", " "))
	}
	t.AppendHeader(header)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = v
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		r.Println()
		return
	}
	t.Render()
}

// FormatHeader formats a markdown header.
func FormatHeader(level int, title string) string {
	return strings.Repeat("#", max(level, 1)) + " " + title
}

// FormatKeyValue formats a markdown list item.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}
