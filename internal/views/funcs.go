// ABOUTME: Template helper functions for the console views
// ABOUTME: Date and money formatting plus goldmark markdown rendering of record bodies

package views

import (
	"bytes"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"
)

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"fmtDate":  formatDate,
		"money":    formatMoney,
		"markdown": r.renderMarkdown,
		"coalesce": firstNonEmpty,
		"navItems": func() []NavEntry { return Navigation },
	}
}

// dateLayouts are the timestamp shapes the API is known to emit.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// formatDate renders an API timestamp for display, falling back to the raw value.
func formatDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			return t.Format("2006/1/2")
		}
		return t.Format("2006/1/2 15:04:05")
	}
	return s
}

// formatMoney groups thousands and keeps at most three decimals. A value that
// rounds to zero has no sign.
func formatMoney(v float64) string {
	neg := v < 0
	v = math.Round(math.Abs(v)*1000) / 1000
	if v == 0 {
		neg = false
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// renderMarkdown converts a record body to HTML. goldmark's default renderer
// drops raw HTML and dangerous link targets, so the output is safe to inline.
func (r *Renderer) renderMarkdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(s), &buf); err != nil {
		r.logger.Debug("markdown conversion failed", "error", err)
		return template.HTML("<p>" + template.HTMLEscapeString(s) + "</p>")
	}
	return template.HTML(buf.String())
}
