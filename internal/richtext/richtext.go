// Package richtext renders the assistant's Markdown replies, either for the
// terminal through glamour or as HTML for export.
package richtext

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the wrap width used when the caller does not know one.
const DefaultWidth = 80

// Render renders Markdown for terminal display, wrapped at width.
func Render(md string, width int) (string, error) {
	if strings.TrimSpace(md) == "" {
		return "", nil
	}
	if width <= 0 {
		width = DefaultWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// RenderOrPlain renders md and falls back to the raw text when rendering
// fails, so a reply is never lost.
func RenderOrPlain(md string, width int) string {
	out, err := Render(md, width)
	if err != nil {
		return md
	}
	return out
}

var (
	headingPattern   = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletPattern    = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	numberedPattern  = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
	codePattern      = regexp.MustCompile("`([^`]+)`")
	boldPattern      = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	italicPattern    = regexp.MustCompile(`\*([^*]+)\*`)
	linkPattern      = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	strikePattern    = regexp.MustCompile(`~~([^~]+)~~`)
	markdownPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^#{1,6}\s`),
		regexp.MustCompile(`\*\*[^*]+\*\*`),
		regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`),
		regexp.MustCompile("```"),
		regexp.MustCompile(`(?m)^\s*[-*+]\s`),
		regexp.MustCompile(`(?m)^\d+\.\s`),
		regexp.MustCompile(`(?m)^>\s`),
		regexp.MustCompile("`[^`]+`"),
	}
)

// IsMarkdown reports whether s uses any Markdown syntax. Plain sentences
// are printed as-is.
func IsMarkdown(s string) bool {
	for _, p := range markdownPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// ToHTML converts the Markdown subset the assistant produces: headings,
// paragraphs, bullet and numbered lists, block quotes, fenced code and the
// inline forms bold, italic, code, links and strikethrough.
func ToHTML(md string) string {
	if md == "" {
		return ""
	}
	md = strings.ReplaceAll(md, "\r\n", "\n")

	var (
		b        strings.Builder
		listTag  string
		inCode   bool
		codeLang string
		code     []string
	)
	closeList := func() {
		if listTag != "" {
			b.WriteString("</" + listTag + ">\n")
			listTag = ""
		}
	}
	openList := func(tag string) {
		if listTag != tag {
			closeList()
			b.WriteString("<" + tag + ">\n")
			listTag = tag
		}
	}
	flushCode := func() {
		class := ""
		if codeLang != "" {
			class = ` class="language-` + escapeHTML(codeLang) + `"`
		}
		b.WriteString("<pre><code" + class + ">" + escapeHTML(strings.Join(code, "\n")) + "</code></pre>\n")
		code, codeLang = nil, ""
	}

	for _, line := range strings.Split(md, "\n") {
		if fence, ok := strings.CutPrefix(line, "```"); ok {
			if inCode {
				flushCode()
			} else {
				closeList()
				codeLang = strings.TrimSpace(fence)
			}
			inCode = !inCode
			continue
		}
		if inCode {
			code = append(code, line)
			continue
		}

		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			openList("ul")
			b.WriteString("<li>" + inline(m[1]) + "</li>\n")
			continue
		}
		if m := numberedPattern.FindStringSubmatch(line); m != nil {
			openList("ol")
			b.WriteString("<li>" + inline(m[1]) + "</li>\n")
			continue
		}
		closeList()

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case headingPattern.MatchString(trimmed):
			m := headingPattern.FindStringSubmatch(trimmed)
			tag := fmt.Sprintf("h%d", len(m[1]))
			b.WriteString("<" + tag + ">" + inline(strings.TrimSpace(m[2])) + "</" + tag + ">\n")
		case strings.HasPrefix(trimmed, ">"):
			b.WriteString("<blockquote>" + inline(strings.TrimSpace(trimmed[1:])) + "</blockquote>\n")
		case isRule(trimmed):
			b.WriteString("<hr>\n")
		default:
			b.WriteString("<p>" + inline(trimmed) + "</p>\n")
		}
	}
	closeList()
	if inCode {
		flushCode()
	}

	return strings.TrimSpace(b.String())
}

func inline(text string) string {
	text = escapeHTML(text)
	text = codePattern.ReplaceAllString(text, "<code>$1</code>")
	text = boldPattern.ReplaceAllString(text, "<strong>$1$2</strong>")
	text = italicPattern.ReplaceAllString(text, "<em>$1</em>")
	text = linkPattern.ReplaceAllStringFunc(text, link)
	text = strikePattern.ReplaceAllString(text, "<del>$1</del>")
	return text
}

// linkSchemes are the only targets rendered as anchors. Other links keep
// their label as plain text.
var linkSchemes = map[string]bool{"http": true, "https": true, "mailto": true}

func link(match string) string {
	m := linkPattern.FindStringSubmatch(match)
	label, href := m[1], m[2]
	u, err := url.Parse(html.UnescapeString(href))
	if err != nil || !linkSchemes[u.Scheme] {
		return label
	}
	return `<a href="` + href + `">` + label + `</a>`
}

func isRule(s string) bool {
	if len(s) < 3 {
		return false
	}
	for _, c := range []string{"-", "*", "_"} {
		if strings.Trim(strings.ReplaceAll(s, " ", ""), c) == "" {
			return true
		}
	}
	return false
}

func escapeHTML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}
