package engine

// Snapshot is an isolated copy of a GameState. Nothing outside the history
// manager can reach its piles, so it cannot change after it is taken.
type Snapshot struct {
	state *GameState
}

// TakeSnapshot deep-copies gs
func TakeSnapshot(gs *GameState) Snapshot {
	return Snapshot{state: gs.Clone()}
}

// State returns a fresh copy of the recorded state
func (s Snapshot) State() *GameState {
	return s.state.Clone()
}

// History keeps the undo and redo stacks
type History struct {
	undo []Snapshot
	redo []Snapshot
}

// Record pushes the pre-operation snapshot and drops any redo branch
func (h *History) Record(before Snapshot) {
	h.undo = append(h.undo, before)
	h.redo = nil
}

// Undo swaps current for the most recent undo snapshot. It returns the restored
// state, or false when there is nothing to undo.
func (h *History) Undo(current *GameState) (*GameState, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, TakeSnapshot(current))
	return last.State(), true
}

// Redo swaps current for the most recent redo snapshot
func (h *History) Redo(current *GameState) (*GameState, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	last := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, TakeSnapshot(current))
	return last.State(), true
}

// CanUndo reports whether an undo snapshot is available
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether a redo snapshot is available
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Depth returns the sizes of the undo and redo stacks
func (h *History) Depth() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

// Clear drops both stacks
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// export copies the stacks as plain states, oldest first
func (h *History) export() (undo, redo []GameState) {
	for _, s := range h.undo {
		undo = append(undo, *s.State())
	}
	for _, s := range h.redo {
		redo = append(redo, *s.State())
	}
	return undo, redo
}

// restore replaces the stacks with copies of the given states
func (h *History) restore(undo, redo []GameState) {
	h.Clear()
	for i := range undo {
		h.undo = append(h.undo, TakeSnapshot(&undo[i]))
	}
	for i := range redo {
		h.redo = append(h.redo, TakeSnapshot(&redo[i]))
	}
}
