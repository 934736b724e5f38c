package catalog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Formatter turns a document body into the text shown on screen.
type Formatter interface {
	Format(src string) (string, error)
}

// MarkdownFormatter renders markdown to ANSI styled text with glamour.
type MarkdownFormatter struct {
	renderer *glamour.TermRenderer
}

// NewMarkdownFormatter wraps bodies at wrap columns using the dark standard
// style. Output is pinned to the 256 color profile since the server's own
// stdout says nothing about the remote terminal.
func NewMarkdownFormatter(wrap int) (*MarkdownFormatter, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
		glamour.WithColorProfile(termenv.ANSI256),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &MarkdownFormatter{renderer: r}, nil
}

func (f *MarkdownFormatter) Format(src string) (string, error) {
	out, err := f.renderer.Render(src)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// PlainFormatter leaves bodies untouched apart from line ending normalisation.
type PlainFormatter struct{}

func (PlainFormatter) Format(src string) (string, error) {
	return strings.ReplaceAll(src, "\r\n", "\n"), nil
}
