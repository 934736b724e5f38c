package theme

import (
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Renderer  *lipgloss.Renderer
	Title     *lipgloss.Style
	Row       *lipgloss.Style
	Highlight *lipgloss.Style
}

var (
	defaultOnce   sync.Once
	defaultStyles *Styles
)

// NewRenderer returns a renderer that always emits 256 colour sequences on a
// dark background. Sessions are remote terminals, so nothing is detected
// from the local process.
func NewRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI256))
	r.SetColorProfile(termenv.ANSI256)
	r.SetHasDarkBackground(true)
	return r
}

// New builds the style set on r.
func New(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Renderer: r,
		Title: ptr(
			r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		),
		Row: ptr(
			r.NewStyle().Foreground(lipgloss.Color("15")),
		),
		Highlight: ptr(
			r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		),
	}
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	defaultOnce.Do(func() {
		defaultStyles = New(NewRenderer())
	})
	return defaultStyles
}

// Plain returns styles that emit no escape sequences. Tests use it to compare
// frames as text.
func Plain() *Styles {
	r := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.Ascii))
	r.SetColorProfile(termenv.Ascii)
	return New(r)
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
