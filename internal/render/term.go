// Package render draws assembled panel content as a block of styled text
// for a terminal host.
package render

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/starford/dagaz/internal/panel"
)

// SizeHint is the minimum block size of a rendered frame, in cells. Hosts
// use it to clamp how small the panel may be resized.
type SizeHint struct {
	Width  int
	Height int
}

// Styles bundles the looks of one renderer.
type Styles struct {
	Header lipgloss.Style
	Label  lipgloss.Style
	Date   lipgloss.Style
	Frame  lipgloss.Style
}

// DefaultStyles returns the standard panel look: underlined headers, faint
// labels and a rounded border.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Underline(true),
		Label:  lipgloss.NewStyle().Faint(true),
		Date:   lipgloss.NewStyle().Faint(true),
		Frame:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

var (
	boldItalicMarkRe = regexp.MustCompile(`<b><i>(.*?)</i></b>`)
	boldMarkRe       = regexp.MustCompile(`<b>(.*?)</b>`)
	italicMarkRe     = regexp.MustCompile(`<i>(.*?)</i>`)

	boldItalicPrinter = color.New(color.Bold, color.Italic)
	boldPrinter       = color.New(color.Bold)
	italicPrinter     = color.New(color.Italic)
)

// renderMarkup converts extractor emphasis markers into ANSI sequences.
// color.NoColor strips them instead, so piped output stays plain.
func renderMarkup(s string) string {
	s = replaceMarks(s, boldItalicMarkRe, boldItalicPrinter)
	s = replaceMarks(s, boldMarkRe, boldPrinter)
	s = replaceMarks(s, italicMarkRe, italicPrinter)
	return s
}

func replaceMarks(s string, re *regexp.Regexp, p *color.Color) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		return p.Sprint(re.FindStringSubmatch(m)[1])
	})
}

// Renderer lays out panel content as columns inside a border.
type Renderer struct {
	styles Styles
}

// New creates a Renderer with the given styles.
func New(styles Styles) *Renderer {
	return &Renderer{styles: styles}
}

// Frame renders one content snapshot and reports its minimum size.
func (r *Renderer) Frame(c panel.Content) (string, SizeHint) {
	blocks := make([]string, 0, 2*len(c.Columns))
	for i, col := range c.Columns {
		if i > 0 {
			blocks = append(blocks, "  ")
		}
		blocks = append(blocks, r.column(col))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
	out := r.styles.Frame.Render(body)
	return out, SizeHint{Width: lipgloss.Width(out), Height: lipgloss.Height(out)}
}

func (r *Renderer) column(col panel.Column) string {
	lines := make([]string, 0, len(col.Rows)+1)
	if col.Header != "" {
		lines = append(lines, r.styles.Header.Render(col.Header))
	}

	labelWidth := 0
	for _, row := range col.Rows {
		if w := lipgloss.Width(row.Label); w > labelWidth {
			labelWidth = w
		}
	}

	for _, row := range col.Rows {
		lines = append(lines, r.row(row, labelWidth))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) row(row panel.Row, labelWidth int) string {
	if row.Spacer {
		return ""
	}

	var b strings.Builder
	if labelWidth > 0 {
		pad := labelWidth - lipgloss.Width(row.Label) + 1
		b.WriteString(r.styles.Label.Render(row.Label))
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(renderMarkup(row.Value))
	if row.DateText != "" {
		b.WriteString(" ")
		b.WriteString(r.styles.Date.Render("(" + row.DateText + ")"))
	}
	return b.String()
}
