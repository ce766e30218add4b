package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/plannerhq/planner/internal/observability"
)

// Response is the success envelope for JSON output.
type Response struct {
	OK          bool           `json:"ok"`
	Data        any            `json:"data,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	Breadcrumbs []Breadcrumb   `json:"breadcrumbs,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// Breadcrumb is a suggested follow-up command.
type Breadcrumb struct {
	Action      string `json:"action"`
	Cmd         string `json:"cmd"`
	Description string `json:"description"`
}

// ErrorResponse is the error envelope for JSON output.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint,omitempty"`
}

// Format selects how results are written.
type Format int

const (
	FormatAuto     Format = iota // styled on a TTY, JSON otherwise
	FormatJSON                   // full envelope
	FormatMarkdown               // literal Markdown, pipeable
	FormatStyled                 // ANSI tables even when piped
	FormatQuiet                  // data only, no envelope
	FormatIDs                    // one id per line
	FormatCount                  // number of records
)

// ParseFormat maps a config or flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "styled":
		return FormatStyled, nil
	case "quiet":
		return FormatQuiet, nil
	case "ids":
		return FormatIDs, nil
	case "count":
		return FormatCount, nil
	}
	return FormatAuto, ErrUsageHint(fmt.Sprintf("unknown format %q", s), "Use auto, json, markdown, styled, quiet, ids or count")
}

// Options controls output behavior.
type Options struct {
	Format Format
	Writer io.Writer
	// JQ, when set, filters the JSON envelope and prints each result.
	JQ string
}

// Writer handles all output formatting.
type Writer struct {
	opts Options
}

// New creates a writer; a nil Writer option means stdout.
func New(opts Options) *Writer {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return &Writer{opts: opts}
}

// Format returns the format the writer resolves to for its destination.
func (w *Writer) Format() Format {
	if w.opts.Format == FormatAuto {
		if isTTY(w.opts.Writer) {
			return FormatStyled
		}
		return FormatJSON
	}
	return w.opts.Format
}

// Writer returns the destination.
func (w *Writer) Writer() io.Writer { return w.opts.Writer }

// OK writes a success response.
func (w *Writer) OK(data any, opts ...ResponseOption) error {
	resp := &Response{OK: true, Data: data}
	for _, opt := range opts {
		opt(resp)
	}
	return w.write(resp)
}

// Err writes an error response.
func (w *Writer) Err(err error) error {
	e := AsError(err)
	return w.write(&ErrorResponse{
		OK:    false,
		Error: e.Message,
		Code:  e.Code,
		Hint:  e.Hint,
	})
}

func (w *Writer) write(v any) error {
	if w.opts.JQ != "" {
		return runJQ(w.opts.Writer, w.opts.JQ, v)
	}

	switch w.Format() {
	case FormatQuiet:
		if resp, ok := v.(*Response); ok {
			return w.writeJSON(resp.Data)
		}
		return w.writeJSON(v)
	case FormatIDs:
		return w.writeIDs(v)
	case FormatCount:
		return w.writeCount(v)
	case FormatMarkdown:
		return w.writeMarkdown(v)
	case FormatStyled:
		return w.writeStyled(v)
	default:
		return w.writeJSON(v)
	}
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func (w *Writer) writeJSON(v any) error {
	enc := json.NewEncoder(w.opts.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (w *Writer) writeIDs(v any) error {
	resp, ok := v.(*Response)
	if !ok {
		return w.writeJSON(v)
	}
	switch d := NormalizeData(resp.Data).(type) {
	case []map[string]any:
		for _, item := range d {
			if id, ok := item["id"]; ok {
				fmt.Fprintln(w.opts.Writer, id)
			}
		}
	case map[string]any:
		if id, ok := d["id"]; ok {
			fmt.Fprintln(w.opts.Writer, id)
		}
	}
	return nil
}

func (w *Writer) writeCount(v any) error {
	resp, ok := v.(*Response)
	if !ok {
		return w.writeJSON(v)
	}
	switch d := NormalizeData(resp.Data).(type) {
	case []any:
		fmt.Fprintln(w.opts.Writer, len(d))
	case []map[string]any:
		fmt.Fprintln(w.opts.Writer, len(d))
	case nil:
		fmt.Fprintln(w.opts.Writer, 0)
	default:
		fmt.Fprintln(w.opts.Writer, 1)
	}
	return nil
}

func (w *Writer) writeStyled(v any) error {
	r := NewRenderer(w.opts.Writer, true)
	switch resp := v.(type) {
	case *Response:
		return r.RenderResponse(w.opts.Writer, resp)
	case *ErrorResponse:
		return r.RenderError(w.opts.Writer, resp)
	default:
		return w.writeJSON(v)
	}
}

func (w *Writer) writeMarkdown(v any) error {
	r := NewMarkdownRenderer(w.opts.Writer)
	switch resp := v.(type) {
	case *Response:
		return r.RenderResponse(w.opts.Writer, resp)
	case *ErrorResponse:
		return r.RenderError(w.opts.Writer, resp)
	default:
		return w.writeJSON(v)
	}
}

// NormalizeData converts typed values into maps and slices of maps via a
// JSON round trip so renderers can treat every payload alike.
func NormalizeData(data any) any {
	switch data.(type) {
	case nil, []map[string]any, map[string]any, string:
		return data
	}

	var raw []byte
	if rm, ok := data.(json.RawMessage); ok {
		raw = rm
	} else {
		b, err := json.Marshal(data)
		if err != nil {
			return data
		}
		raw = b
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return data
	}
	if list, ok := decoded.([]any); ok {
		if maps := toMapSlice(list); maps != nil || len(list) == 0 {
			if maps == nil {
				return []map[string]any{}
			}
			return maps
		}
	}
	return decoded
}

func toMapSlice(list []any) []map[string]any {
	if len(list) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil
		}
		out = append(out, m)
	}
	return out
}

// ResponseOption modifies a Response.
type ResponseOption func(*Response)

func WithSummary(s string) ResponseOption {
	return func(r *Response) { r.Summary = s }
}

func WithBreadcrumbs(b ...Breadcrumb) ResponseOption {
	return func(r *Response) { r.Breadcrumbs = append(r.Breadcrumbs, b...) }
}

func WithMeta(key string, value any) ResponseOption {
	return func(r *Response) {
		if r.Meta == nil {
			r.Meta = make(map[string]any)
		}
		r.Meta[key] = value
	}
}

// WithStats attaches session metrics under meta.stats.
func WithStats(m *observability.SessionMetrics) ResponseOption {
	if m == nil {
		return func(*Response) {}
	}
	return WithMeta("stats", m.ToMap())
}
