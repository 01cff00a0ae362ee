package engine

// ColumnView describes a tableau column without revealing face-down cards
type ColumnView struct {
	FaceDown int    `json:"face_down"`
	Cards    []Card `json:"cards"`
}

// FoundationView is the visible top of a foundation and its size
type FoundationView struct {
	Top   *Card `json:"top,omitempty"`
	Count int   `json:"count"`
}

// View is a read-only projection of the game for rendering and transport.
// It shares no storage with the live state.
type View struct {
	Tableau         []ColumnView            `json:"tableau"`
	Foundations     map[Suit]FoundationView `json:"foundations"`
	WasteTop        *Card                   `json:"waste_top,omitempty"`
	StockCount      int                     `json:"stock_count"`
	WasteCount      int                     `json:"waste_count"`
	Score           int                     `json:"score"`
	ElapsedSeconds  int                     `json:"elapsed_seconds"`
	Moves           int                     `json:"moves"`
	Won             bool                    `json:"won"`
	CanUndo         bool                    `json:"can_undo"`
	CanRedo         bool                    `json:"can_redo"`
	CanAutocomplete bool                    `json:"can_autocomplete"`
}

// buildView projects gs. History flags are filled in by the engine.
func buildView(gs *GameState, elapsedSeconds int) View {
	v := View{
		Tableau:        make([]ColumnView, NumTableau),
		Foundations:    make(map[Suit]FoundationView, NumSuits),
		StockCount:     gs.Stock.Len(),
		WasteCount:     gs.Waste.Len(),
		Score:          gs.Score,
		ElapsedSeconds: elapsedSeconds,
		Moves:          gs.Moves,
		Won:            gs.HasWon(),
	}

	for i := range gs.Tableau {
		col := &gs.Tableau[i]
		up := col.FaceUpCount()
		v.Tableau[i] = ColumnView{
			FaceDown: col.Len() - up,
			Cards:    col.topRun(up),
		}
	}

	for _, suit := range Suits {
		f := gs.Foundation(suit)
		fv := FoundationView{Count: f.Len()}
		if top, ok := f.Top(); ok {
			fv.Top = &top
		}
		v.Foundations[suit] = fv
	}

	if top, ok := gs.Waste.Top(); ok {
		v.WasteTop = &top
	}
	return v
}
