package state

// Focus selects which screen a session shows.
type Focus int

const (
	FocusToc Focus = iota
	FocusPost
)

func (f Focus) String() string {
	switch f {
	case FocusToc:
		return "toc"
	case FocusPost:
		return "post"
	default:
		return "unknown"
	}
}

// NoKey is the initial LastKey. No decoded key produces an empty string.
const NoKey = ""

// Session is the navigation state of one connection.
type Session struct {
	Focus Focus
	// Selection indexes the table of contents. It is meaningful only when
	// HasSelection is set, and may equal the TOC length after a jump to end.
	Selection    int
	HasSelection bool
	Scroll       int
	LastKey      string
}

// New returns the initial state for a table of contents with tocLen rows.
func New(tocLen int) Session {
	return Session{
		Focus:        FocusToc,
		HasSelection: tocLen > 0,
		LastKey:      NoKey,
	}
}

// SelectionIn reports the selected index when it addresses one of n rows.
func (s Session) SelectionIn(n int) (int, bool) {
	if !s.HasSelection || s.Selection < 0 || s.Selection >= n {
		return 0, false
	}
	return s.Selection, true
}
