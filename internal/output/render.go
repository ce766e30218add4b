package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/observability"
	"github.com/plannerhq/planner/internal/tui"
)

// maxCellWidth caps a single table cell before truncation.
const maxCellWidth = 40

// Renderer handles styled terminal output.
type Renderer struct {
	width  int
	styled bool

	Summary   lipgloss.Style
	Muted     lipgloss.Style
	Data      lipgloss.Style
	Error     lipgloss.Style
	Hint      lipgloss.Style
	Header    lipgloss.Style
	Cell      lipgloss.Style
	CellMuted lipgloss.Style
}

// NewRenderer creates a renderer with styles from the resolved theme.
// Styling is enabled when writing to a TTY, or when forceStyled is true.
func NewRenderer(w io.Writer, forceStyled bool) *Renderer {
	return NewRendererWithTheme(w, forceStyled, tui.ResolveTheme())
}

// NewRendererWithTheme creates a renderer with a specific theme.
func NewRendererWithTheme(w io.Writer, forceStyled bool, theme tui.Theme) *Renderer {
	width, isTTY := terminalInfo(w)
	r := &Renderer{width: width, styled: isTTY || forceStyled}

	plain := lipgloss.NewStyle()
	r.Summary, r.Muted, r.Data, r.Error = plain, plain, plain, plain
	r.Hint, r.Header, r.Cell, r.CellMuted = plain, plain, plain, plain
	if !r.styled {
		lipgloss.SetColorProfile(0) // Ascii
		return r
	}
	lipgloss.SetColorProfile(2) // TrueColor

	// Output may be piped under --styled, so the background cannot be
	// detected. Dark variants are used throughout.
	color := func(c lipgloss.AdaptiveColor) lipgloss.Color { return lipgloss.Color(c.Dark) }
	r.Summary = plain.Foreground(color(theme.Primary)).Bold(true)
	r.Muted = plain.Foreground(color(theme.Muted))
	r.Data = plain.Foreground(color(theme.Foreground))
	r.Error = plain.Foreground(color(theme.Error)).Bold(true)
	r.Hint = plain.Foreground(color(theme.Muted)).Italic(true)
	r.Header = plain.Foreground(color(theme.Foreground)).Bold(true)
	r.Cell = plain.Foreground(color(theme.Foreground))
	r.CellMuted = plain.Foreground(color(theme.Muted))
	return r
}

// terminalInfo returns the terminal width and whether the writer is a TTY.
func terminalInfo(w io.Writer) (width int, isTTY bool) {
	width = 80
	f, ok := w.(*os.File)
	if !ok {
		return width, false
	}
	if cols, _, err := term.GetSize(f.Fd()); err == nil && cols >= 40 {
		width = cols
	}
	return width, term.IsTerminal(f.Fd())
}

// RenderResponse renders a success response to the writer.
func (r *Renderer) RenderResponse(w io.Writer, resp *Response) error {
	var b strings.Builder

	if resp.Summary != "" {
		b.WriteString(r.Summary.Render(resp.Summary))
		b.WriteString("\n\n")
	}

	r.renderData(&b, NormalizeData(resp.Data))

	if len(resp.Breadcrumbs) > 0 {
		b.WriteString("\n")
		b.WriteString(r.Muted.Render("Next:"))
		b.WriteString("\n")
		for _, bc := range resp.Breadcrumbs {
			line := "  " + bc.Cmd
			if bc.Description != "" {
				line += "  # " + bc.Description
			}
			b.WriteString(r.Muted.Render(line) + "\n")
		}
	}

	if parts := statsParts(resp.Meta); len(parts) > 0 {
		b.WriteString("\n")
		b.WriteString(r.Muted.Render("Stats: "+strings.Join(parts, " | ")) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderError renders an error response to the writer.
func (r *Renderer) RenderError(w io.Writer, resp *ErrorResponse) error {
	var b strings.Builder
	b.WriteString(r.Error.Render("Error: " + resp.Error))
	b.WriteString("\n")
	if resp.Hint != "" {
		b.WriteString(r.Hint.Render("Hint: " + resp.Hint))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) renderData(b *strings.Builder, data any) {
	switch d := data.(type) {
	case []map[string]any:
		if len(d) == 0 {
			b.WriteString(r.Muted.Render("(no results)") + "\n")
			return
		}
		r.renderTable(b, d)
	case map[string]any:
		r.renderObject(b, d)
	case []any:
		if len(d) == 0 {
			b.WriteString(r.Muted.Render("(no results)") + "\n")
			return
		}
		for _, item := range d {
			b.WriteString(r.Data.Render("• "+formatCell("", item)) + "\n")
		}
	case string:
		b.WriteString(r.Data.Render(d) + "\n")
	case nil:
		b.WriteString(r.Muted.Render("(no data)") + "\n")
	default:
		b.WriteString(r.Data.Render(fmt.Sprintf("%v", data)) + "\n")
	}
}

// columnPriority orders planner fields; lower comes first.
var columnPriority = map[string]int{
	"id":               1,
	"date":             2,
	"name":             2,
	"surname":          3,
	"employeeId":       3,
	"projectId":        4,
	"email":            4,
	"color":            5,
	"worksRemotely":    6,
	"mustBeOnPremises": 6,
	"language":         7,
	"sender":           2,
	"message":          3,
	"timestamp":        8,
}

var mutedColumns = map[string]bool{
	"id":        true,
	"timestamp": true,
}

type column struct {
	key      string
	header   string
	priority int
	width    int
}

func (r *Renderer) renderTable(b *strings.Builder, data []map[string]any) {
	columns := fitColumns(detectColumns(data), data, r.width)
	if len(columns) == 0 {
		return
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.Header
			}
			if col < len(columns) && mutedColumns[columns[col].key] {
				return r.CellMuted
			}
			return r.Cell
		})

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.header
	}
	t.Headers(headers...)

	for _, item := range data {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = r.cell(col.key, item[col.key])
		}
		t.Row(row...)
	}

	b.WriteString(t.String())
	b.WriteString("\n")
}

// cell formats a value and paints project colors with their own swatch.
func (r *Renderer) cell(key string, val any) string {
	text := formatCell(key, val)
	if key == "color" && r.styled && text != "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(text)).Render("■") + " " + text
	}
	return text
}

func (r *Renderer) renderObject(b *strings.Builder, data map[string]any) {
	keys := objectKeys(data)
	if len(keys) == 0 {
		b.WriteString(r.Muted.Render("(no data)") + "\n")
		return
	}

	maxLen := 0
	for _, k := range keys {
		maxLen = max(maxLen, len(formatHeader(k)))
	}
	for _, k := range keys {
		label := r.Muted.Render(fmt.Sprintf("%-*s: ", maxLen, formatHeader(k)))
		style := r.Data
		if mutedColumns[k] {
			style = r.CellMuted
		}
		b.WriteString(label + style.Render(r.cell(k, data[k])) + "\n")
	}
}

func detectColumns(data []map[string]any) []column {
	if len(data) == 0 {
		return nil
	}
	var cols []column
	for key, val := range data[0] {
		switch val.(type) {
		case map[string]any, []any, []map[string]any:
			continue
		}
		cols = append(cols, column{key: key, header: formatHeader(key), priority: priorityOf(key)})
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i].priority != cols[j].priority {
			return cols[i].priority < cols[j].priority
		}
		return cols[i].key < cols[j].key
	})
	return cols
}

// fitColumns drops the lowest-priority columns until the table fits width.
func fitColumns(cols []column, data []map[string]any, width int) []column {
	for i := range cols {
		cols[i].width = lipgloss.Width(cols[i].header)
		for _, row := range data {
			cols[i].width = max(cols[i].width, lipgloss.Width(formatCell(cols[i].key, row[cols[i].key])))
		}
	}

	const padding = 2
	for len(cols) > 1 {
		total := 0
		for _, col := range cols {
			total += col.width + padding
		}
		if total <= width {
			break
		}
		cols = cols[:len(cols)-1]
	}
	return cols
}

func objectKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k, v := range data {
		switch v.(type) {
		case map[string]any, []map[string]any:
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := priorityOf(keys[i]), priorityOf(keys[j])
		if pi != pj {
			return pi < pj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func priorityOf(key string) int {
	if p, ok := columnPriority[key]; ok {
		return p
	}
	return 50
}

// formatHeader turns camelCase JSON keys into "Works Remotely".
func formatHeader(key string) string {
	var words []string
	start := 0
	for i := 1; i < len(key); i++ {
		if key[i] >= 'A' && key[i] <= 'Z' {
			words = append(words, key[start:i])
			start = i
		}
	}
	words = append(words, key[start:])
	for i, w := range words {
		switch strings.ToLower(w) {
		case "id":
			words[i] = "ID"
		default:
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func formatCell(key string, val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		if key == "date" {
			if d, err := models.ParseDate(v); err == nil {
				return d.Format("Mon 2006-01-02")
			}
		}
		return ansi.Truncate(v, maxCellWidth, "…")
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, formatCell("", item))
		}
		return strings.Join(items, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func statsParts(meta map[string]any) []string {
	stats, _ := meta["stats"].(map[string]any)
	if stats == nil {
		return nil
	}
	return observability.SessionMetricsFromMap(stats).FormatParts()
}

// MarkdownRenderer outputs literal Markdown syntax (portable, pipeable).
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a renderer for literal Markdown output.
func NewMarkdownRenderer(io.Writer) *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// RenderResponse renders a success response as literal Markdown.
func (r *MarkdownRenderer) RenderResponse(w io.Writer, resp *Response) error {
	var b strings.Builder

	if resp.Summary != "" {
		b.WriteString("## " + resp.Summary + "\n\n")
	}

	switch d := NormalizeData(resp.Data).(type) {
	case []map[string]any:
		if len(d) == 0 {
			b.WriteString("*No results*\n")
		} else {
			r.renderTable(&b, d)
		}
	case map[string]any:
		for _, k := range objectKeys(d) {
			b.WriteString("- **" + formatHeader(k) + ":** " + formatCell(k, d[k]) + "\n")
		}
	case []any:
		for _, item := range d {
			b.WriteString("- " + formatCell("", item) + "\n")
		}
	case string:
		b.WriteString(d + "\n")
	case nil:
		b.WriteString("*No data*\n")
	default:
		fmt.Fprintf(&b, "%v\n", d)
	}

	if len(resp.Breadcrumbs) > 0 {
		b.WriteString("\n### Next\n\n")
		for _, bc := range resp.Breadcrumbs {
			line := "- `" + bc.Cmd + "`"
			if bc.Description != "" {
				line += ": " + bc.Description
			}
			b.WriteString(line + "\n")
		}
	}

	if parts := statsParts(resp.Meta); len(parts) > 0 {
		b.WriteString("\n*Stats: " + strings.Join(parts, " | ") + "*\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderError renders an error response as literal Markdown.
func (r *MarkdownRenderer) RenderError(w io.Writer, resp *ErrorResponse) error {
	var b strings.Builder
	b.WriteString("**Error:** " + resp.Error + "\n")
	if resp.Hint != "" {
		b.WriteString("\n*Hint: " + resp.Hint + "*\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *MarkdownRenderer) renderTable(b *strings.Builder, data []map[string]any) {
	cols := detectColumns(data)
	if len(cols) == 0 {
		return
	}

	headers := make([]string, len(cols))
	seps := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = col.header
		seps[i] = "---"
	}
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")

	for _, item := range data {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = strings.ReplaceAll(formatCell(col.key, item[col.key]), "|", "\\|")
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}
