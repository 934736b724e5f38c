package ui

import (
	"strings"

	"github.com/agadir/agadir/internal/catalog"
	"github.com/agadir/agadir/internal/format/table"
	"github.com/agadir/agadir/internal/theme"
	"github.com/agadir/agadir/internal/ui/state"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

const (
	tocTitle        = "Posts"
	tocDateLayout   = "January 02 2006"
	tocDateWidth    = 20
	tocPaddingTop   = 2
	marginPercent   = 20
	highlightSymbol = ">>  "
	rowIndent       = "    "
)

// Kind identifies the screen a View describes.
type Kind int

const (
	ViewEmpty Kind = iota
	ViewToc
	ViewPost
)

// Row is one table of contents line.
type Row struct {
	Date  string
	Title string
}

// View is a declarative description of one frame.
type View struct {
	Kind   Kind
	Width  int
	Height int

	// Toc
	Rows      []Row
	Highlight int

	// Post
	Body   string
	Offset int
}

// Compose describes what session s should see on a width x height screen.
func Compose(s state.Session, cat *catalog.Catalog, width, height int) View {
	v := View{Kind: ViewEmpty, Width: width, Height: height, Highlight: -1}
	toc := cat.Toc()
	switch s.Focus {
	case state.FocusToc:
		v.Kind = ViewToc
		v.Rows = make([]Row, len(toc))
		for i, e := range toc {
			v.Rows[i] = Row{Date: e.Date.Format(tocDateLayout), Title: e.Title}
		}
		if i, ok := s.SelectionIn(len(toc)); ok {
			v.Highlight = i
		}
	case state.FocusPost:
		i, ok := s.SelectionIn(len(toc))
		if !ok {
			return v
		}
		doc, found := cat.ByTitle(toc[i].Title)
		if !found {
			return v
		}
		v.Kind = ViewPost
		v.Body = doc.Body
		v.Offset = s.Scroll
	}
	return v
}

// Draw materialises v as exactly v.Height lines, none wider than v.Width cells.
func Draw(v View, styles *theme.Styles) string {
	if v.Width <= 0 || v.Height <= 0 {
		return ""
	}
	var lines []string
	switch v.Kind {
	case ViewToc:
		lines = drawToc(v, styles)
	case ViewPost:
		lines = drawPost(v)
	}
	return clip(lines, v.Width, v.Height)
}

func drawToc(v View, styles *theme.Styles) []string {
	top := v.Height * marginPercent / 100
	left := v.Width * marginPercent / 100
	inner := v.Width - 2*left
	if inner < 1 {
		left, inner = 0, v.Width
	}

	cells := make([][]string, len(v.Rows))
	for i, r := range v.Rows {
		cells[i] = []string{r.Date, r.Title}
	}
	formatted := table.Format(cells, []table.Column{{MinWidth: tocDateWidth}, {}})

	lines := make([]styledLine, 0, top+1+tocPaddingTop+len(formatted))
	for i := 0; i < top; i++ {
		lines = append(lines, styledLine{})
	}
	title := styles.Renderer.PlaceHorizontal(inner, lipgloss.Center, styles.Title.Render(tocTitle))
	lines = append(lines, styledLine{text: title, raw: true})
	for i := 0; i < tocPaddingTop; i++ {
		lines = append(lines, styledLine{})
	}
	width := inner - len(rowIndent)
	for i, text := range formatted {
		if width > 0 {
			text = truncate.String(text, uint(width))
		} else {
			text = ""
		}
		line := styledLine{text: rowIndent + text, style: styles.Row, highlightFrom: len(rowIndent)}
		if i == v.Highlight {
			line.text = highlightSymbol + text
			line.prefixStyle = styles.Highlight
		}
		lines = append(lines, line)
	}

	out := renderLines(lines)
	pad := strings.Repeat(" ", left)
	for i := top; i < len(out); i++ {
		out[i] = pad + out[i]
	}
	return out
}

func drawPost(v View) []string {
	vp := viewport.New(v.Width, v.Height)
	vp.SetContent(strings.Join(wrapBody(v.Body, v.Width), "\n"))
	// The offset is clamped to the last page so the final line stays on
	// screen after a jump to the bottom.
	vp.SetYOffset(v.Offset)
	return strings.Split(vp.View(), "\n")
}

// BodyHeight is the number of screen lines body takes once wrapped to width.
func BodyHeight(body string, width int) int {
	if body == "" {
		return 0
	}
	return len(wrapBody(body, width))
}

// wrapBody soft wraps body to width cells, breaking on spaces and hard
// breaking words longer than a line. A line whose visible text already fits
// only loses the trailing padding past width.
func wrapBody(body string, width int) []string {
	lines := strings.Split(body, "\n")
	if width <= 0 {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if ansi.StringWidth(strings.TrimRight(ansi.Strip(line), " ")) <= width {
			out = append(out, ansi.Truncate(line, width, ""))
			continue
		}
		parts := strings.Split(wrap.String(wordwrap.String(line, width), width), "\n")
		for len(parts) > 1 && strings.TrimSpace(ansi.Strip(parts[len(parts)-1])) == "" {
			parts = parts[:len(parts)-1]
		}
		out = append(out, parts...)
	}
	return out
}

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text already carries escapes
}

func renderLines(lines []styledLine) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw || text == "" {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom <= len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil && tail != "" {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return out
}

// clip pads or cuts lines to height and truncates each to width cells.
func clip(lines []string, width, height int) string {
	out := make([]string, height)
	for i := 0; i < height && i < len(lines); i++ {
		out[i] = ansi.Truncate(lines[i], width, "")
	}
	return strings.Join(out, "\n")
}
