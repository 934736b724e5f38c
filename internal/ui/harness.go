package ui

import (
	"github.com/agadir/agadir/internal/catalog"
	"github.com/agadir/agadir/internal/theme"
	"github.com/agadir/agadir/internal/ui/state"
)

// Harness drives one session's state programmatically for integration tests.
type Harness struct {
	state  state.Session
	cat    *catalog.Catalog
	styles *theme.Styles
	width  int
	height int
	done   bool
}

// NewHarness creates a harness over cat with a width x height screen.
func NewHarness(cat *catalog.Catalog, styles *theme.Styles, width, height int) *Harness {
	return &Harness{
		state:  state.New(len(cat.Toc())),
		cat:    cat,
		styles: styles,
		width:  width,
		height: height,
	}
}

// Send decodes raw and applies each key until one terminates the session.
func (h *Harness) Send(raw []byte) Effect {
	if h.done {
		return EffectTerminate
	}
	var effect Effect
	h.state, effect = Apply(h.state, raw, h.cat, h.width, nil)
	h.done = effect == EffectTerminate
	return effect
}

// Resize changes the screen size used by View.
func (h *Harness) Resize(width, height int) {
	h.width, h.height = width, height
}

// View returns the current frame.
func (h *Harness) View() string {
	return Draw(Compose(h.state, h.cat, h.width, h.height), h.styles)
}

// State exposes the underlying session state.
func (h *Harness) State() state.Session {
	return h.state
}

// Done reports whether a quit key has been seen.
func (h *Harness) Done() bool {
	return h.done
}
