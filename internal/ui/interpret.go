package ui

import (
	"github.com/agadir/agadir/internal/catalog"
	"github.com/agadir/agadir/internal/ui/state"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Effect is what the caller must do after a key has been applied.
type Effect int

const (
	EffectNone Effect = iota
	EffectTerminate
)

func (e Effect) String() string {
	if e == EffectTerminate {
		return "terminate"
	}
	return "none"
}

type action int

const (
	actionNone action = iota
	actionQuit
	actionDown
	actionUp
	actionOpen
	actionBack
	actionEnd
	actionTop
)

// screen is what a transition may consult besides the session itself.
type screen struct {
	cat   *catalog.Catalog
	width int
}

type transition func(s *state.Session, sc screen) Effect

var transitions = map[state.Focus]map[action]transition{
	state.FocusToc: {
		actionQuit: quit,
		actionDown: func(s *state.Session, sc screen) Effect {
			s.SelectNext(len(sc.cat.Toc()))
			return EffectNone
		},
		actionUp: func(s *state.Session, sc screen) Effect {
			s.SelectPrev(len(sc.cat.Toc()))
			return EffectNone
		},
		actionOpen: func(s *state.Session, _ screen) Effect {
			s.Focus = state.FocusPost
			return EffectNone
		},
		actionEnd: func(s *state.Session, sc screen) Effect {
			s.SelectEnd(len(sc.cat.Toc()))
			return EffectNone
		},
		actionTop: func(s *state.Session, sc screen) Effect {
			s.SelectHome(len(sc.cat.Toc()))
			return EffectNone
		},
	},
	state.FocusPost: {
		actionQuit: quit,
		actionDown: func(s *state.Session, _ screen) Effect {
			s.ScrollBy(1)
			return EffectNone
		},
		actionUp: func(s *state.Session, _ screen) Effect {
			s.ScrollBy(-1)
			return EffectNone
		},
		actionBack: func(s *state.Session, _ screen) Effect {
			s.Focus = state.FocusToc
			return EffectNone
		},
		actionEnd: func(s *state.Session, sc screen) Effect {
			if !s.HasSelection {
				return EffectNone
			}
			if doc, ok := sc.cat.Selected(s.Selection); ok {
				s.ScrollTo(BodyHeight(doc.Body, sc.width))
			}
			return EffectNone
		},
		actionTop: func(s *state.Session, _ screen) Effect {
			s.ScrollTo(0)
			return EffectNone
		},
	},
}

func quit(*state.Session, screen) Effect {
	return EffectTerminate
}

func resolve(msg tea.KeyMsg, last string) action {
	switch {
	case key.Matches(msg, keys.Quit):
		return actionQuit
	case key.Matches(msg, keys.Down):
		return actionDown
	case key.Matches(msg, keys.Up):
		return actionUp
	case key.Matches(msg, keys.Open):
		return actionOpen
	case key.Matches(msg, keys.Back):
		return actionBack
	case key.Matches(msg, keys.End):
		return actionEnd
	case key.Matches(msg, keys.Top):
		// Only the second key of a pair jumps.
		if key.Matches(keyName(last), keys.Top) {
			return actionTop
		}
	}
	return actionNone
}

// Interpret applies one key to s on a screen width cells wide and returns
// the new state. It has no side effects. LastKey always records msg, so
// "g g g" jumps on every adjacent pair.
func Interpret(s state.Session, msg tea.KeyMsg, cat *catalog.Catalog, width int) (state.Session, Effect) {
	next := s
	effect := EffectNone
	if t, ok := transitions[s.Focus][resolve(msg, s.LastKey)]; ok {
		effect = t(&next, screen{cat: cat, width: width})
	}
	next.LastKey = msg.String()
	return next, effect
}

// Apply decodes raw and interprets every key in order, stopping after the
// first one that terminates the session. observe, when set, sees each applied
// key with the state before and after it.
func Apply(s state.Session, raw []byte, cat *catalog.Catalog, width int, observe func(k tea.KeyMsg, prev, next state.Session)) (state.Session, Effect) {
	effect := EffectNone
	for _, k := range DecodeKeys(raw) {
		prev := s
		s, effect = Interpret(prev, k, cat, width)
		if observe != nil {
			observe(k, prev, s)
		}
		if effect == EffectTerminate {
			break
		}
	}
	return s, effect
}
