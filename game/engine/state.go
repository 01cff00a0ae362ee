package engine

import (
	"fmt"
	"time"
)

// DealGameState shuffles a fresh deck and deals it: column i gets i cards with only
// the last one face-up, the remaining 24 cards become the face-down stock.
func DealGameState(shuffler Shuffler, seed uint64, startedAt time.Time) *GameState {
	deck := NewDeck()
	deck.Shuffle(shuffler)

	state := &GameState{
		StartedAt: startedAt,
		Seed:      seed,
	}
	for i, suit := range Suits {
		state.Foundations[i].Suit = suit
	}

	for col := 0; col < NumTableau; col++ {
		for j := 0; j <= col; j++ {
			card := deck.Draw()
			card.FaceUp = j == col
			state.Tableau[col].Push(card)
		}
	}

	for deck.Len() > 0 {
		state.Stock.Push(deck.Draw())
	}

	state.MustCheckInvariant()
	return state
}

// Column returns tableau column n (1-based)
func (gs *GameState) Column(n int) *TableauPile {
	return &gs.Tableau[n-1]
}

// Foundation returns the foundation pile for suit s
func (gs *GameState) Foundation(s Suit) *FoundationPile {
	return &gs.Foundations[s]
}

// HasWon reports whether every foundation holds thirteen cards
func (gs *GameState) HasWon() bool {
	for i := range gs.Foundations {
		if !gs.Foundations[i].IsComplete() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy sharing no storage with gs
func (gs *GameState) Clone() *GameState {
	out := *gs
	for i := range gs.Tableau {
		out.Tableau[i] = TableauPile{Pile: gs.Tableau[i].clone()}
	}
	for i := range gs.Foundations {
		out.Foundations[i] = FoundationPile{Pile: gs.Foundations[i].clone(), Suit: gs.Foundations[i].Suit}
	}
	out.Stock = gs.Stock.clone()
	out.Waste = gs.Waste.clone()
	return &out
}

// CardCount returns the number of cards across all piles
func (gs *GameState) CardCount() int {
	n := gs.Stock.Len() + gs.Waste.Len()
	for i := range gs.Tableau {
		n += gs.Tableau[i].Len()
	}
	for i := range gs.Foundations {
		n += gs.Foundations[i].Len()
	}
	return n
}

// CheckInvariant verifies that the piles partition exactly one 52-card deck and
// that every foundation is a same-suit sequence starting at Ace.
func (gs *GameState) CheckInvariant() error {
	var seen [DeckSize]bool
	count := 0

	mark := func(where string, cards []Card) error {
		for _, c := range cards {
			if !c.Suit.Valid() || !c.Rank.Valid() {
				return fmt.Errorf("%s: invalid card %d/%d", where, c.Suit, c.Rank)
			}
			if seen[c.index()] {
				return fmt.Errorf("%s: duplicate card %s", where, c)
			}
			seen[c.index()] = true
			count++
		}
		return nil
	}

	for i := range gs.Tableau {
		if err := mark(fmt.Sprintf("tableau %d", i+1), gs.Tableau[i].cards); err != nil {
			return err
		}
	}
	for i := range gs.Foundations {
		f := &gs.Foundations[i]
		if f.Suit != Suit(i) {
			return fmt.Errorf("foundation %d holds suit %s", i, f.Suit)
		}
		for rank, c := range f.cards {
			if c.Suit != f.cards[0].Suit || c.Rank != Rank(rank) {
				return fmt.Errorf("foundation %s out of sequence at %s", f.Suit, c)
			}
		}
		if err := mark("foundation "+f.Suit.String(), f.cards); err != nil {
			return err
		}
	}
	if err := mark("stock", gs.Stock.cards); err != nil {
		return err
	}
	if err := mark("waste", gs.Waste.cards); err != nil {
		return err
	}

	if count != DeckSize {
		return fmt.Errorf("expected %d cards, found %d", DeckSize, count)
	}
	return nil
}

// MustCheckInvariant panics if the card invariant is broken. A broken invariant is
// an engine defect, never a reportable rejection.
func (gs *GameState) MustCheckInvariant() {
	if err := gs.CheckInvariant(); err != nil {
		panic("engine: card invariant violated: " + err.Error())
	}
}

// addScore applies delta and floors the score at zero
func (gs *GameState) addScore(delta int) {
	gs.Score += delta
	if gs.Score < 0 {
		gs.Score = 0
	}
}

// tableauIndex returns the zero-based index for a valid tableau location
func tableauIndex(l Location) int {
	return l.Column() - 1
}
