package procview

import (
	"sort"

	"github.com/rileyhilliard/pstop/internal/process"
)

// DefaultVisibleRows is used until the dashboard reports its height.
const DefaultVisibleRows = 20

// State is the process view: every toggle, the selection, and the rows
// derived from the latest snapshot. It is not safe for concurrent use.
type State struct {
	SortField SortField
	Ascending bool

	Filter         string
	Search         string
	SearchNotFound bool
	User           string

	Tree        bool
	ShowThreads bool
	HideKernel  bool

	KernelMarkers []string

	tagged    map[int32]struct{}
	collapsed map[int32]struct{}
	followPID int32
	following bool

	selected    int
	offset      int
	visibleRows int

	source []process.Record
	rows   []process.Record
	users  []string
}

// NewState returns a view sorted by CPU, highest first.
func NewState() *State {
	return &State{
		SortField:     FieldCPU,
		KernelMarkers: append([]string(nil), DefaultKernelMarkers...),
		tagged:        make(map[int32]struct{}),
		collapsed:     make(map[int32]struct{}),
		visibleRows:   DefaultVisibleRows,
	}
}

// Update replaces the underlying snapshot and re-derives.
func (s *State) Update(records []process.Record) {
	s.source = records
	s.users = Users(records)
	s.Derive()
}

// Derive rebuilds the rows from the current snapshot:
// filter, sort, tree, follow, clamp.
func (s *State) Derive() {
	rows := Filter(s.source, Criteria{
		Query:         s.Filter,
		User:          s.User,
		HideKernel:    s.HideKernel,
		KernelMarkers: s.KernelMarkers,
	})
	rows = Sort(rows, s.SortField, s.Ascending)
	if s.Tree {
		rows = BuildTree(rows, s.collapsed)
	}
	s.rows = rows

	if s.following {
		for i, r := range s.rows {
			if r.PID == s.followPID {
				s.selected = i
				break
			}
		}
	}
	s.clamp()
}

// Rows returns the derived rows.
func (s *State) Rows() []process.Record {
	return s.rows
}

// Users returns the distinct owners in the current snapshot.
func (s *State) Users() []string {
	return s.users
}

// Selected returns the selected row.
func (s *State) Selected() (process.Record, bool) {
	if s.selected < 0 || s.selected >= len(s.rows) {
		return process.Record{}, false
	}
	return s.rows[s.selected], true
}

// Cursor returns the selection index and scroll offset.
func (s *State) Cursor() (selected, offset int) {
	return s.selected, s.offset
}

// SetSortField sorts by f. Choosing the active field again flips direction;
// a new field starts descending.
func (s *State) SetSortField(f SortField) {
	if !f.Valid() {
		return
	}
	if s.SortField == f {
		s.Ascending = !s.Ascending
	} else {
		s.SortField = f
		s.Ascending = false
	}
	s.Derive()
}

// InvertSort flips the sort direction.
func (s *State) InvertSort() {
	s.Ascending = !s.Ascending
	s.Derive()
}

// SetFilter sets the `|` separated filter query.
func (s *State) SetFilter(q string) {
	s.Filter = q
	s.Derive()
}

// SetUser restricts rows to one owner. Empty clears the restriction.
func (s *State) SetUser(user string) {
	s.User = user
	s.Derive()
}

// SetSearch updates the search query and jumps to the first match.
func (s *State) SetSearch(q string) {
	s.Search = q
	if q == "" {
		s.SearchNotFound = false
		return
	}
	i, ok := SearchFirst(s.rows, q)
	s.SearchNotFound = !ok
	if ok {
		s.selectIndex(i)
	}
}

// SearchNext moves to the next match after the selection.
func (s *State) SearchNext() {
	s.searchStep(SearchNext)
}

// SearchPrev moves to the previous match before the selection.
func (s *State) SearchPrev() {
	s.searchStep(SearchPrev)
}

func (s *State) searchStep(step func([]process.Record, int, string) (int, bool)) {
	if s.Search == "" || len(s.rows) == 0 {
		return
	}
	i, ok := step(s.rows, s.selected, s.Search)
	s.SearchNotFound = !ok
	if ok {
		s.selectIndex(i)
	}
}

// SelectPID moves the selection to pid if it is visible.
func (s *State) SelectPID(pid int32) bool {
	for i, r := range s.rows {
		if r.PID == pid {
			s.selectIndex(i)
			return true
		}
	}
	return false
}

// ToggleTag tags or untags the selected row.
func (s *State) ToggleTag() {
	r, ok := s.Selected()
	if !ok {
		return
	}
	if _, tagged := s.tagged[r.PID]; tagged {
		delete(s.tagged, r.PID)
	} else {
		s.tagged[r.PID] = struct{}{}
	}
}

// TagWithChildren tags the selected row and all of its visible descendants.
func (s *State) TagWithChildren() {
	r, ok := s.Selected()
	if !ok {
		return
	}
	for _, pid := range Subtree(s.rows, r.PID) {
		s.tagged[pid] = struct{}{}
	}
}

// UntagAll clears every tag.
func (s *State) UntagAll() {
	clear(s.tagged)
}

// IsTagged reports whether pid is tagged.
func (s *State) IsTagged(pid int32) bool {
	_, ok := s.tagged[pid]
	return ok
}

// Tagged returns the tagged pids in ascending order.
func (s *State) Tagged() []int32 {
	out := make([]int32, 0, len(s.tagged))
	for pid := range s.tagged {
		out = append(out, pid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Targets returns the pids an action applies to: the tagged set, or the
// selected row when nothing is tagged.
func (s *State) Targets() []int32 {
	if len(s.tagged) > 0 {
		return s.Tagged()
	}
	if r, ok := s.Selected(); ok {
		return []int32{r.PID}
	}
	return nil
}

// ToggleFollow follows the selected pid, or stops following it.
func (s *State) ToggleFollow() {
	r, ok := s.Selected()
	if !ok {
		return
	}
	if s.following && s.followPID == r.PID {
		s.following = false
		return
	}
	s.following = true
	s.followPID = r.PID
}

// Following returns the followed pid.
func (s *State) Following() (int32, bool) {
	return s.followPID, s.following
}

// ToggleTree switches between list and tree view.
func (s *State) ToggleTree() {
	s.Tree = !s.Tree
	s.Derive()
}

// Collapse hides the selected row's descendants in tree view.
func (s *State) Collapse() {
	if r, ok := s.Selected(); ok && s.Tree {
		s.collapsed[r.PID] = struct{}{}
		s.Derive()
	}
}

// Expand shows the selected row's descendants again.
func (s *State) Expand() {
	if r, ok := s.Selected(); ok && s.Tree {
		delete(s.collapsed, r.PID)
		s.Derive()
	}
}

// ExpandAll clears every collapsed subtree.
func (s *State) ExpandAll() {
	clear(s.collapsed)
	s.Derive()
}

// IsCollapsed reports whether pid's subtree is collapsed.
func (s *State) IsCollapsed(pid int32) bool {
	_, ok := s.collapsed[pid]
	return ok
}

// ToggleThreads flips whether thread rows are sampled. The rows change on
// the next Update.
func (s *State) ToggleThreads() {
	s.ShowThreads = !s.ShowThreads
}

// ToggleHideKernel flips hiding of system-account processes.
func (s *State) ToggleHideKernel() {
	s.HideKernel = !s.HideKernel
	s.Derive()
}

// SetVisibleRows sets the viewport height used for paging and scrolling.
func (s *State) SetVisibleRows(n int) {
	if n < 1 {
		n = 1
	}
	s.visibleRows = n
	s.clamp()
}

// MoveUp moves the selection up one row.
func (s *State) MoveUp() { s.selectIndex(s.selected - 1) }

// MoveDown moves the selection down one row.
func (s *State) MoveDown() { s.selectIndex(s.selected + 1) }

// PageUp moves the selection up one page.
func (s *State) PageUp() { s.selectIndex(s.selected - s.visibleRows) }

// PageDown moves the selection down one page.
func (s *State) PageDown() { s.selectIndex(s.selected + s.visibleRows) }

// Home selects the first row.
func (s *State) Home() { s.selectIndex(0) }

// End selects the last row.
func (s *State) End() { s.selectIndex(len(s.rows) - 1) }

func (s *State) selectIndex(i int) {
	s.selected = i
	s.clamp()
}

// clamp keeps the selection inside the rows and the selection inside the
// viewport.
func (s *State) clamp() {
	n := len(s.rows)
	if n == 0 {
		s.selected, s.offset = 0, 0
		return
	}
	if s.selected >= n {
		s.selected = n - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+s.visibleRows {
		s.offset = s.selected - s.visibleRows + 1
	}
	if maxOffset := max(0, n-s.visibleRows); s.offset > maxOffset {
		s.offset = maxOffset
	}
}
