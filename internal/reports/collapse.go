package reports

// CollapseState is the set of collapsed account IDs. A collapsed parent row
// shows its rolled-up figure and hides its children; toggling never changes
// underlying totals, only which figure is surfaced and which rows render.
// It is an explicit parameter, never ambient state, so one engine can serve
// several report views at once without cross-talk.
type CollapseState map[int]struct{}

// NewCollapseState builds a state with the given accounts collapsed.
func NewCollapseState(ids ...int) CollapseState {
	s := make(CollapseState, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Collapsed reports whether the account is collapsed.
func (s CollapseState) Collapsed(id int) bool {
	_, ok := s[id]
	return ok
}

// Toggle flips an account between collapsed and expanded.
func (s CollapseState) Toggle(id int) {
	if s.Collapsed(id) {
		delete(s, id)
	} else {
		s[id] = struct{}{}
	}
}
