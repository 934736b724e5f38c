package session

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/agadir/agadir/internal/catalog"
	"github.com/agadir/agadir/internal/logging"
	"github.com/agadir/agadir/internal/logging/events"
	"github.com/agadir/agadir/internal/metrics"
	"github.com/agadir/agadir/internal/render"
	"github.com/agadir/agadir/internal/theme"
	"github.com/agadir/agadir/internal/ui"
	"github.com/agadir/agadir/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

// ID identifies a registered session. IDs are never reused.
type ID uint64

const (
	FallbackWidth  = 80
	FallbackHeight = 24
	MaxDimension   = 500
)

// Info is a point in time summary of one session.
type Info struct {
	ID           ID        `json:"id"`
	Conn         string    `json:"conn"`
	Opened       time.Time `json:"opened"`
	Focus        string    `json:"focus"`
	Selection    int       `json:"selection"`
	HasSelection bool      `json:"has_selection"`
	Scroll       int       `json:"scroll"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
}

type entry struct {
	id     ID
	conn   string
	opened time.Time
	sink   *Sink

	// mu guards everything below. It is held for one dispatch or one
	// compose and diff, never across a transport write.
	mu       sync.Mutex
	state    state.Session
	renderer *render.Renderer
	closed   bool
}

// Options configures a Registry. Zero values pick defaults.
type Options struct {
	Styles       *theme.Styles
	Metrics      *metrics.Metrics
	PendingLimit int
}

// Registry owns every live session.
type Registry struct {
	cat     *catalog.Catalog
	styles  *theme.Styles
	metrics *metrics.Metrics
	limit   int

	mu      sync.Mutex
	next    ID
	entries map[ID]*entry
}

func NewRegistry(cat *catalog.Catalog, opts Options) *Registry {
	if opts.Styles == nil {
		opts.Styles = theme.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	return &Registry{
		cat:     cat,
		styles:  opts.Styles,
		metrics: opts.Metrics,
		limit:   opts.PendingLimit,
		entries: make(map[ID]*entry),
	}
}

// Open registers a session writing to out and clears the remote screen.
func (r *Registry) Open(connID string, out io.WriteCloser) ID {
	r.mu.Lock()
	r.next++
	id := r.next
	r.mu.Unlock()

	e := &entry{
		id:       id,
		conn:     connID,
		opened:   time.Now(),
		state:    state.New(len(r.cat.Toc())),
		renderer: render.New(FallbackWidth, FallbackHeight),
	}
	e.sink = NewSink(out, SinkOptions{
		Limit: r.limit,
		OnError: func(err error) {
			logging.Logger().Warn().Err(err).Uint64("session", uint64(id)).Msg("session write failed")
			r.close(id, events.CloseReasonTransport)
		},
		OnWrite: func(n int) {
			r.metrics.BytesWritten.Add(float64(n))
		},
	})

	// Registered before the first write so a failing transport can find it.
	// e.mu is held until the clear is staged, so a redraw pass that picks
	// the entry up meanwhile paints after the clear rather than before it.
	e.mu.Lock()
	r.mu.Lock()
	r.entries[id] = e
	r.mu.Unlock()
	r.metrics.SessionsOpened.Inc()
	r.metrics.SessionsActive.Inc()
	events.Session.Open(uint64(id), connID)

	_, _ = render.Clear(e.sink)
	e.sink.Flush()
	e.mu.Unlock()
	return id
}

// Close removes the session, restores the remote terminal and closes the
// channel once queued output is written. Unknown ids are ignored.
func (r *Registry) Close(id ID) {
	r.close(id, events.CloseReasonEOF)
}

func (r *Registry) close(id ID, reason events.CloseReason) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	e.closed = true
	_, _ = e.renderer.Reset(e.sink)
	e.sink.Flush()
	e.mu.Unlock()
	e.sink.Close()

	r.metrics.SessionsActive.Dec()
	events.Session.Close(uint64(id), reason)
}

// CloseAll closes every session.
func (r *Registry) CloseAll() {
	for _, e := range r.snapshot() {
		r.close(e.id, events.CloseReasonShutdown)
	}
}

// Dispatch applies raw input to the session in arrival order. A quit key
// closes the session before Dispatch returns.
func (r *Registry) Dispatch(id ID, raw []byte) ui.Effect {
	e := r.lookup(id)
	if e == nil {
		events.Session.Missing("dispatch", uint64(id))
		return ui.EffectNone
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ui.EffectNone
	}
	width, _ := e.renderer.Size()
	var effect ui.Effect
	e.state, effect = ui.Apply(e.state, raw, r.cat, width, func(k tea.KeyMsg, prev, next state.Session) {
		events.UI.Key(uint64(id), k.String(), prev.Focus.String())
		r.metrics.Keys.Inc()
		traceChanges(uint64(id), prev, next)
	})
	e.mu.Unlock()

	if effect == ui.EffectTerminate {
		r.close(id, events.CloseReasonQuit)
	}
	return effect
}

func traceChanges(id uint64, prev, next state.Session) {
	if prev.Focus != next.Focus {
		events.UI.Focus(id, prev.Focus.String(), next.Focus.String())
	}
	if prev.Selection != next.Selection || prev.HasSelection != next.HasSelection {
		events.UI.Selection(id, next.Selection)
	}
	if prev.Scroll != next.Scroll {
		events.UI.Scroll(id, next.Scroll)
	}
}

// Resize sets the viewport of one session and forces a full repaint on the
// next pass. Zero or negative dimensions keep the current value; the rest are
// clamped to 1..MaxDimension.
func (r *Registry) Resize(id ID, width, height int) {
	e := r.lookup(id)
	if e == nil {
		events.Session.Missing("resize", uint64(id))
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	w, h := e.renderer.Size()
	if width > 0 {
		w = min(width, MaxDimension)
	}
	if height > 0 {
		h = min(height, MaxDimension)
	}
	e.renderer.Resize(w, h)
	e.renderer.Invalidate()
	events.Session.Resize(uint64(id), w, h)
}

// RedrawAll composes, diffs and queues output for every session. Sessions
// are visited from a snapshot, so Open and Close never wait on a pass.
func (r *Registry) RedrawAll() {
	start := time.Now()
	for _, e := range r.snapshot() {
		r.redraw(e)
	}
	r.metrics.RedrawDuration.Observe(time.Since(start).Seconds())
}

func (r *Registry) redraw(e *entry) {
	defer func() {
		if p := recover(); p != nil {
			r.metrics.RenderErrors.Inc()
			logging.Logger().Error().Uint64("session", uint64(e.id)).Str("panic", fmt.Sprint(p)).Msg("redraw panicked")
		}
	}()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	w, h := e.renderer.Size()
	frame := ui.Draw(ui.Compose(e.state, r.cat, w, h), r.styles)
	if _, err := e.renderer.Render(e.sink, frame); err != nil {
		r.metrics.RenderErrors.Inc()
		events.Session.RenderError(uint64(e.id), err)
		return
	}
	if e.sink.Flush() {
		e.renderer.Invalidate()
		r.metrics.Overflows.Inc()
		events.Session.Overflow(uint64(e.id), r.limitOrDefault())
	}
}

func (r *Registry) limitOrDefault() int {
	if r.limit > 0 {
		return r.limit
	}
	return DefaultPendingLimit
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// State returns a copy of the session's navigation state.
func (r *Registry) State(id ID) (state.Session, bool) {
	e := r.lookup(id)
	if e == nil {
		return state.Session{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, !e.closed
}

// Sessions summarises every registered session, ordered by id.
func (r *Registry) Sessions() []Info {
	entries := r.snapshot()
	out := make([]Info, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		w, h := e.renderer.Size()
		out = append(out, Info{
			ID:           e.id,
			Conn:         e.conn,
			Opened:       e.opened,
			Focus:        e.state.Focus.String(),
			Selection:    e.state.Selection,
			HasSelection: e.state.HasSelection,
			Scroll:       e.state.Scroll,
			Width:        w,
			Height:       h,
		})
		e.mu.Unlock()
	}
	return out
}

func (r *Registry) lookup(id ID) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id]
}

func (r *Registry) snapshot() []*entry {
	r.mu.Lock()
	out := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
