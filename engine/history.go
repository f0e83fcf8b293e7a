package engine

// History is the undo/redo state machine. Entries are Snapshot values, so no
// later change to the live GameState can reach a stored entry.
//
// Every accepted mutation records the pre-mutation snapshot and discards the
// redo stack. Undo and Redo swap the live state with the top of the
// respective stack.
type History struct {
	undo  []Snapshot
	redo  []Snapshot
	limit int // maximum undo depth, 0 = unlimited
}

// NewHistory returns an empty history keeping at most limit undo entries.
func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit}
}

// Record pushes the state as it was before an accepted mutation. Any redo
// entries are dropped: a new move forks the timeline.
func (h *History) Record(pre Snapshot) {
	h.undo = append(h.undo, pre)
	if h.limit > 0 && len(h.undo) > h.limit {
		drop := len(h.undo) - h.limit
		copy(h.undo, h.undo[drop:])
		h.undo = h.undo[:h.limit]
	}
	h.redo = h.redo[:0]
}

// Undo moves cur one step back. It returns false, leaving cur untouched, when
// there is nothing to undo.
func (h *History) Undo(cur *GameState) bool {
	n := len(h.undo)
	if n == 0 {
		return false
	}
	h.redo = append(h.redo, cur.Save())
	cur.Restore(h.undo[n-1])
	h.undo = h.undo[:n-1]
	return true
}

// Redo re-applies the most recently undone step to cur. It returns false,
// leaving cur untouched, when there is nothing to redo.
func (h *History) Redo(cur *GameState) bool {
	n := len(h.redo)
	if n == 0 {
		return false
	}
	h.undo = append(h.undo, cur.Save())
	cur.Restore(h.redo[n-1])
	h.redo = h.redo[:n-1]
	return true
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the sizes of the undo and redo stacks.
func (h *History) Depth() (undo, redo int) { return len(h.undo), len(h.redo) }

// Reset empties both stacks and releases their storage.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}
