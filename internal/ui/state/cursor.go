package state

// SelectNext moves the selection down one row unless it already sits on or
// past the last of n rows. An absent selection becomes 0 when n > 0.
func (s *Session) SelectNext(n int) bool {
	if n == 0 {
		return false
	}
	old, had := s.Selection, s.HasSelection
	if !s.HasSelection {
		s.Selection, s.HasSelection = 0, true
	} else if s.Selection < n-1 {
		s.Selection++
	}
	return s.Selection != old || s.HasSelection != had
}

// SelectPrev moves the selection up. Anything at or below 1 lands on 0.
func (s *Session) SelectPrev(n int) bool {
	if n == 0 {
		return false
	}
	old, had := s.Selection, s.HasSelection
	if s.HasSelection && s.Selection > 1 {
		s.Selection--
	} else {
		s.Selection = 0
	}
	s.HasSelection = true
	return s.Selection != old || s.HasSelection != had
}

// SelectHome selects the first row.
func (s *Session) SelectHome(n int) bool {
	if n == 0 {
		return false
	}
	old, had := s.Selection, s.HasSelection
	s.Selection, s.HasSelection = 0, true
	return s.Selection != old || s.HasSelection != had
}

// SelectEnd parks the selection one past the last row. Views treat that
// index as having nothing highlighted.
func (s *Session) SelectEnd(n int) bool {
	old, had := s.Selection, s.HasSelection
	s.Selection, s.HasSelection = n, true
	return s.Selection != old || s.HasSelection != had
}

// ScrollBy moves the scroll offset by delta, never below 0.
func (s *Session) ScrollBy(delta int) bool {
	old := s.Scroll
	next := s.Scroll + delta
	if delta > 0 && next < s.Scroll {
		next = s.Scroll
	}
	if next < 0 {
		next = 0
	}
	s.Scroll = next
	return s.Scroll != old
}

// ScrollTo sets the scroll offset, clamping negatives to 0.
func (s *Session) ScrollTo(offset int) bool {
	old := s.Scroll
	if offset < 0 {
		offset = 0
	}
	s.Scroll = offset
	return s.Scroll != old
}
