package engine

import (
	"encoding/json"
	"errors"
)

// ErrEmptyPile is returned when popping from an empty pile
var ErrEmptyPile = errors.New("pile is empty")

// Pile is an ordered stack of cards; the top is the last element.
// It is a passive container: callers validate legality before Push.
type Pile struct {
	cards []Card
}

// Top returns the top card without removing it
func (p *Pile) Top() (Card, bool) {
	if len(p.cards) == 0 {
		return Card{}, false
	}
	return p.cards[len(p.cards)-1], true
}

// Push appends a card
func (p *Pile) Push(c Card) {
	p.cards = append(p.cards, c)
}

// Pop removes and returns the top card
func (p *Pile) Pop() (Card, error) {
	if len(p.cards) == 0 {
		return Card{}, ErrEmptyPile
	}
	c := p.cards[len(p.cards)-1]
	p.cards = p.cards[:len(p.cards)-1]
	return c, nil
}

// Len returns the number of cards
func (p *Pile) Len() int {
	return len(p.cards)
}

// IsEmpty reports whether the pile holds no cards
func (p *Pile) IsEmpty() bool {
	return len(p.cards) == 0
}

// Cards returns a copy of the pile contents, bottom first
func (p *Pile) Cards() []Card {
	out := make([]Card, len(p.cards))
	copy(out, p.cards)
	return out
}

// take removes the top n cards and returns them bottom first
func (p *Pile) take(n int) []Card {
	start := len(p.cards) - n
	run := make([]Card, n)
	copy(run, p.cards[start:])
	p.cards = p.cards[:start]
	return run
}

// flipTop turns the top card face-up and reports whether it was face-down
func (p *Pile) flipTop() bool {
	if len(p.cards) == 0 || p.cards[len(p.cards)-1].FaceUp {
		return false
	}
	p.cards[len(p.cards)-1].FaceUp = true
	return true
}

// clone copies the pile; empty piles always clone to a nil slice
func (p *Pile) clone() Pile {
	if len(p.cards) == 0 {
		return Pile{}
	}
	return Pile{cards: p.Cards()}
}

// MarshalJSON encodes the pile as an array of cards
func (p Pile) MarshalJSON() ([]byte, error) {
	if p.cards == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.cards)
}

// UnmarshalJSON decodes an array of cards
func (p *Pile) UnmarshalJSON(data []byte) error {
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return err
	}
	p.cards = cards
	return nil
}

// TableauPile is one of the seven playing columns
type TableauPile struct {
	Pile
}

// CanAccept reports whether c may be placed on this column: a King on an empty
// column, or opposite color and one rank lower than a face-up top card.
func (t *TableauPile) CanAccept(c Card) bool {
	top, ok := t.Top()
	if !ok {
		return c.Rank == King
	}
	return top.FaceUp && top.Color() != c.Color() && c.Rank.Ordinal() == top.Rank.Ordinal()-1
}

// CanAcceptRun reports whether run (bottom card first) is a valid run whose first
// card this column accepts
func (t *TableauPile) CanAcceptRun(run []Card) bool {
	return len(run) > 0 && IsValidRun(run) && t.CanAccept(run[0])
}

// FaceUpCount returns the length of the face-up run at the top of the column
func (t *TableauPile) FaceUpCount() int {
	n := 0
	for i := len(t.cards) - 1; i >= 0 && t.cards[i].FaceUp; i-- {
		n++
	}
	return n
}

// FaceDownCount returns the number of cards still hidden in the column
func (t *TableauPile) FaceDownCount() int {
	return len(t.cards) - t.FaceUpCount()
}

// AllFaceUp reports whether every card in the column is face-up
func (t *TableauPile) AllFaceUp() bool {
	return t.FaceUpCount() == len(t.cards)
}

// topRun returns a copy of the top n cards, bottom first
func (t *TableauPile) topRun(n int) []Card {
	out := make([]Card, n)
	copy(out, t.cards[len(t.cards)-n:])
	return out
}

// FoundationPile builds a single suit from Ace to King
type FoundationPile struct {
	Pile
	Suit Suit `json:"suit"`
}

// CanAccept reports whether c continues this foundation: any Ace on an empty pile,
// or the same suit one rank higher than the top. Suit names the slot, not its cards.
func (f *FoundationPile) CanAccept(c Card) bool {
	top, ok := f.Top()
	if !ok {
		return c.Rank == Ace
	}
	return c.Suit == top.Suit && c.Rank.Ordinal() == top.Rank.Ordinal()+1
}

// CanAcceptRun accepts only single cards; foundations are built one card at a time
func (f *FoundationPile) CanAcceptRun(run []Card) bool {
	return len(run) == 1 && f.CanAccept(run[0])
}

// IsComplete reports whether the foundation holds all thirteen ranks
func (f *FoundationPile) IsComplete() bool {
	return f.Len() == NumRanks
}

type foundationJSON struct {
	Suit  Suit   `json:"suit"`
	Cards []Card `json:"cards"`
}

// MarshalJSON encodes the suit with its cards
func (f FoundationPile) MarshalJSON() ([]byte, error) {
	cards := f.cards
	if cards == nil {
		cards = []Card{}
	}
	return json.Marshal(foundationJSON{Suit: f.Suit, Cards: cards})
}

// UnmarshalJSON decodes the suit with its cards
func (f *FoundationPile) UnmarshalJSON(data []byte) error {
	var raw foundationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Suit = raw.Suit
	f.cards = raw.Cards
	return nil
}

// IsValidRun reports whether cards (bottom first) are all face-up, alternate in
// color and descend by exactly one rank
func IsValidRun(cards []Card) bool {
	for i, c := range cards {
		if !c.FaceUp {
			return false
		}
		if i == 0 {
			continue
		}
		prev := cards[i-1]
		if prev.Color() == c.Color() || c.Rank.Ordinal() != prev.Rank.Ordinal()-1 {
			return false
		}
	}
	return true
}
