package engine

// canAutocomplete reports whether the waste is empty and every tableau card is face-up
func (gs *GameState) canAutocomplete() bool {
	if !gs.Waste.IsEmpty() {
		return false
	}
	for i := range gs.Tableau {
		if !gs.Tableau[i].AllFaceUp() {
			return false
		}
	}
	return true
}

// autocomplete drains cards into the foundations, one pass at a time, until a pass
// moves nothing. Each pass checks the waste top and then every column top against
// the foundations in suit order. It returns the number of cards moved.
func (gs *GameState) autocomplete() int {
	moved := 0
	for {
		passMoves := 0

		if gs.autoMoveToFoundation(Waste()) {
			passMoves++
		}
		for col := 1; col <= NumTableau; col++ {
			if gs.autoMoveToFoundation(Tableau(col)) {
				passMoves++
			}
		}

		if passMoves == 0 {
			return moved
		}
		moved += passMoves
	}
}

// autoMoveToFoundation moves the top card of src to the first foundation that takes it
func (gs *GameState) autoMoveToFoundation(src Location) bool {
	for _, suit := range Suits {
		if gs.moveToFoundation(src, suit, 1).Applied {
			return true
		}
	}
	return false
}
