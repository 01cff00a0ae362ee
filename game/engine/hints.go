package engine

import "sort"

// Hint is a legal move together with what it would do to the position
type Hint struct {
	Move
	ScoreDelta int `json:"score_delta"`

	// Reveals is set when the move turns a face-down card face-up or empties a column
	Reveals bool `json:"reveals"`
}

// hint categories, lower sorts first
const (
	hintToFoundation = iota
	hintRevealing
	hintWasteToTableau
	hintTableau
	hintFromFoundation
)

// hints lists every legal move that changes the position meaningfully. Moving a
// whole column that starts with a King onto another empty column is left out.
func (gs *GameState) hints() []Hint {
	type ranked struct {
		Hint
		category int
	}
	var out []ranked

	try := func(m Move, category int) bool {
		trial := gs.Clone()
		if !trial.executeMove(m.From, m.To, m.Count).Applied {
			return false
		}
		h := Hint{Move: m, ScoreDelta: trial.Score - gs.Score}
		if m.From.IsTableau() {
			before := gs.Column(m.From.Column())
			after := trial.Column(m.From.Column())
			wholeColumn := before.FaceDownCount() == 0 && m.Count == before.Len()
			if wholeColumn && m.To.IsTableau() && trial.Column(m.To.Column()).Len() == m.Count {
				return false
			}
			h.Reveals = after.FaceDownCount() < before.FaceDownCount() || (after.IsEmpty() && !before.IsEmpty())
		}
		if h.Reveals && category > hintRevealing {
			category = hintRevealing
		}
		out = append(out, ranked{Hint: h, category: category})
		return true
	}

	sources := []Location{Waste()}
	for col := 1; col <= NumTableau; col++ {
		sources = append(sources, Tableau(col))
	}

	// a card goes to one foundation only; an Ace prefers the slot named after its suit
	for _, src := range sources {
		for _, suit := range gs.foundationOrder(src) {
			if try(Move{From: src, To: Foundation(suit), Count: 1}, hintToFoundation) {
				break
			}
		}
	}

	for to := 1; to <= NumTableau; to++ {
		try(Move{From: Waste(), To: Tableau(to), Count: 1}, hintWasteToTableau)
	}

	for from := 1; from <= NumTableau; from++ {
		up := gs.Column(from).FaceUpCount()
		for to := 1; to <= NumTableau; to++ {
			if from == to {
				continue
			}
			for n := up; n >= 1; n-- {
				try(Move{From: Tableau(from), To: Tableau(to), Count: n}, hintTableau)
			}
		}
	}

	for _, suit := range Suits {
		for to := 1; to <= NumTableau; to++ {
			try(Move{From: Foundation(suit), To: Tableau(to), Count: 1}, hintFromFoundation)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].category < out[j].category
	})

	hints := make([]Hint, len(out))
	for i, r := range out {
		hints[i] = r.Hint
	}
	return hints
}

// foundationOrder lists the foundation slots with the suit of src's top card first
func (gs *GameState) foundationOrder(src Location) []Suit {
	var top Card
	var ok bool
	switch {
	case src.IsWaste():
		top, ok = gs.Waste.Top()
	case src.IsTableau():
		top, ok = gs.Column(src.Column()).Top()
	}
	if !ok {
		return Suits[:]
	}
	order := []Suit{top.Suit}
	for _, suit := range Suits {
		if suit != top.Suit {
			order = append(order, suit)
		}
	}
	return order
}
