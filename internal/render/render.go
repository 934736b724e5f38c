// Package render writes frames to a terminal, repainting only the rows that
// changed since the previous frame.
package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Renderer tracks what the remote screen currently shows.
type Renderer struct {
	width  int
	height int
	prev   []string
	valid  bool
	buf    strings.Builder
}

// New returns a renderer for a width x height screen. The first Render is
// always a full repaint.
func New(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

// Size reports the current screen size.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Resize records a new screen size. A change forces a full repaint.
func (r *Renderer) Resize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.valid = false
}

// Invalidate forgets the remote screen contents.
func (r *Renderer) Invalidate() {
	r.valid = false
	r.prev = nil
}

// Render writes the escape sequences that turn the previous frame into frame.
// It writes nothing when frame matches what is already on screen.
func (r *Renderer) Render(w io.Writer, frame string) (int, error) {
	lines := strings.Split(frame, "\n")
	r.buf.Reset()
	if !r.valid {
		r.buf.WriteString(ansi.HideCursor)
		r.buf.WriteString(ansi.EraseEntireScreen)
		for i, line := range lines {
			r.drawRow(i, line)
		}
	} else {
		rows := max(len(lines), len(r.prev))
		for i := 0; i < rows; i++ {
			var cur string
			if i < len(lines) {
				cur = lines[i]
			}
			if i < len(r.prev) && r.prev[i] == cur {
				continue
			}
			r.drawRow(i, cur)
		}
	}
	r.prev = lines
	r.valid = true
	if r.buf.Len() == 0 {
		return 0, nil
	}
	n, err := io.WriteString(w, r.buf.String())
	if err != nil {
		r.Invalidate()
	}
	return n, err
}

// drawRow positions the cursor at column 1 of row i (0 based) and writes line.
// Rows are only erased first when the screen was not just cleared.
func (r *Renderer) drawRow(i int, line string) {
	r.buf.WriteString(ansi.CursorPosition(1, i+1))
	if r.valid {
		r.buf.WriteString(ansi.EraseEntireLine)
	}
	r.buf.WriteString(line)
	r.buf.WriteString(ansi.ResetStyle)
}

// Reset clears the screen, homes the cursor and shows it again. The next
// Render repaints everything.
func (r *Renderer) Reset(w io.Writer) (int, error) {
	r.Invalidate()
	return io.WriteString(w, ansi.ResetStyle+ansi.EraseEntireScreen+ansi.CursorHomePosition+ansi.ShowCursor)
}

// Clear prepares a fresh screen: cursor hidden and everything erased.
func Clear(w io.Writer) (int, error) {
	return io.WriteString(w, ansi.HideCursor+ansi.EraseEntireScreen+ansi.CursorHomePosition)
}
