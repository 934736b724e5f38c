package state

import "testing"

func TestNewSession(t *testing.T) {
	s := New(3)
	if s.Focus != FocusToc || !s.HasSelection || s.Selection != 0 || s.Scroll != 0 || s.LastKey != NoKey {
		t.Fatalf("unexpected initial state %#v", s)
	}
	empty := New(0)
	if empty.HasSelection {
		t.Fatalf("expected no selection for an empty table of contents")
	}
}

func TestSelectNextSaturates(t *testing.T) {
	s := New(3)
	for i := 0; i < 10; i++ {
		s.SelectNext(3)
		if s.Selection > 2 {
			t.Fatalf("selection exceeded last index: %d", s.Selection)
		}
	}
	if s.Selection != 2 {
		t.Fatalf("expected selection 2, got %d", s.Selection)
	}
	if s.SelectNext(3) {
		t.Fatalf("expected no movement at the last row")
	}
}

func TestSelectNextAfterEndStays(t *testing.T) {
	s := New(3)
	s.SelectEnd(3)
	if s.Selection != 3 {
		t.Fatalf("expected selection 3, got %d", s.Selection)
	}
	s.SelectNext(3)
	if s.Selection != 3 {
		t.Fatalf("expected selection to stay at 3, got %d", s.Selection)
	}
}

func TestSelectPrevTransitions(t *testing.T) {
	cases := []struct {
		from int
		want int
	}{
		{from: 3, want: 2},
		{from: 2, want: 1},
		{from: 1, want: 0},
		{from: 0, want: 0},
	}
	for _, tc := range cases {
		s := New(5)
		s.Selection = tc.from
		s.SelectPrev(5)
		if s.Selection != tc.want {
			t.Fatalf("from %d: expected %d, got %d", tc.from, tc.want, s.Selection)
		}
	}
}

func TestSelectPrevFromEnd(t *testing.T) {
	s := New(2)
	s.SelectEnd(2)
	s.SelectPrev(2)
	if s.Selection != 1 {
		t.Fatalf("expected 1 after k from end, got %d", s.Selection)
	}
}

func TestEmptyTocKeepsSelectionAbsent(t *testing.T) {
	s := New(0)
	if s.SelectNext(0) || s.SelectPrev(0) || s.SelectHome(0) {
		t.Fatalf("expected no movement on an empty table of contents")
	}
	if s.HasSelection {
		t.Fatalf("expected selection to remain absent")
	}
	s.SelectEnd(0)
	if !s.HasSelection || s.Selection != 0 {
		t.Fatalf("expected end marker at 0, got %#v", s)
	}
	if _, ok := s.SelectionIn(0); ok {
		t.Fatalf("end marker must not address a row")
	}
}

func TestSelectHome(t *testing.T) {
	s := New(4)
	s.Selection = 3
	if !s.SelectHome(4) {
		t.Fatalf("expected movement")
	}
	if s.Selection != 0 {
		t.Fatalf("expected 0, got %d", s.Selection)
	}
}

func TestScrollBy(t *testing.T) {
	s := New(1)
	if s.ScrollBy(-1) {
		t.Fatalf("expected no movement below zero")
	}
	s.ScrollBy(5)
	s.ScrollBy(-2)
	if s.Scroll != 3 {
		t.Fatalf("expected 3, got %d", s.Scroll)
	}
	s.Scroll = int(^uint(0) >> 1)
	s.ScrollBy(1)
	if s.Scroll != int(^uint(0)>>1) {
		t.Fatalf("expected saturation at max int")
	}
}

func TestScrollTo(t *testing.T) {
	s := New(1)
	s.ScrollTo(9)
	if s.Scroll != 9 {
		t.Fatalf("expected 9, got %d", s.Scroll)
	}
	s.ScrollTo(-4)
	if s.Scroll != 0 {
		t.Fatalf("expected clamp to 0, got %d", s.Scroll)
	}
}

func TestSelectionIn(t *testing.T) {
	s := New(2)
	if i, ok := s.SelectionIn(2); !ok || i != 0 {
		t.Fatalf("expected 0, got %d %v", i, ok)
	}
	s.Selection = 2
	if _, ok := s.SelectionIn(2); ok {
		t.Fatalf("expected out of range")
	}
}

func TestFocusString(t *testing.T) {
	if FocusToc.String() != "toc" || FocusPost.String() != "post" || Focus(9).String() != "unknown" {
		t.Fatalf("unexpected focus names")
	}
}
