package engine

import (
	"testing"
	"time"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func up(s Suit, r Rank) Card   { return Card{Suit: s, Rank: r, FaceUp: true} }
func down(s Suit, r Rank) Card { return Card{Suit: s, Rank: r} }

// layout describes a hand-built position. Cards not mentioned anywhere end up
// face-down in the stock, or at the bottom of column restTo when it is set.
type layout struct {
	tableau     [NumTableau][]Card
	waste       []Card
	foundations map[Suit]int
	restTo      int
	score       int
}

func buildState(t *testing.T, l layout) *GameState {
	t.Helper()

	gs := &GameState{StartedAt: testEpoch, Score: l.score, Seed: 1}
	var used [DeckSize]bool

	claim := func(c Card) {
		if used[c.index()] {
			t.Fatalf("layout uses %s twice", c)
		}
		used[c.index()] = true
	}

	for i, suit := range Suits {
		gs.Foundations[i].Suit = suit
		for r := 0; r < l.foundations[suit]; r++ {
			c := up(suit, Rank(r))
			claim(c)
			gs.Foundations[i].Push(c)
		}
	}
	for _, c := range l.waste {
		claim(c)
	}
	for _, col := range l.tableau {
		for _, c := range col {
			claim(c)
		}
	}

	var rest []Card
	for _, suit := range Suits {
		for r := Ace; r <= King; r++ {
			c := down(suit, r)
			if !used[c.index()] {
				rest = append(rest, c)
			}
		}
	}

	for i, col := range l.tableau {
		if l.restTo == i+1 {
			for _, c := range rest {
				gs.Tableau[i].Push(c)
			}
			rest = nil
		}
		for _, c := range col {
			gs.Tableau[i].Push(c)
		}
	}
	for _, c := range rest {
		gs.Stock.Push(c)
	}
	for _, c := range l.waste {
		gs.Waste.Push(c)
	}

	if err := gs.CheckInvariant(); err != nil {
		t.Fatalf("layout breaks invariant: %v", err)
	}
	return gs
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// engineFrom wraps a hand-built state in an engine with a frozen clock
func engineFrom(t *testing.T, gs *GameState) *GameEngine {
	t.Helper()
	e, err := LoadGame(SavedGame{State: *gs}, WithClock(fixedClock(testEpoch.Add(time.Minute))))
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	return e
}

// solvedColumns returns four fully revealed King-to-Ace runs holding the whole deck
func solvedColumns() [NumTableau][]Card {
	pairs := [][2]Suit{{Spades, Hearts}, {Hearts, Spades}, {Clubs, Diamonds}, {Diamonds, Clubs}}
	var cols [NumTableau][]Card
	for i, p := range pairs {
		for r := King; ; r-- {
			suit := p[0]
			if (King-r)%2 == 1 {
				suit = p[1]
			}
			cols[i] = append(cols[i], up(suit, r))
			if r == Ace {
				break
			}
		}
	}
	return cols
}
