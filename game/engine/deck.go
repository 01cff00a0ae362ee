package engine

import "math/rand/v2"

// Shuffler permutes n elements in place by calling swap.
// *rand.Rand from math/rand/v2 satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// NewSeededShuffler returns a deterministic shuffler. stream selects an independent
// sequence for the same seed, so a restored game can continue shuffling reproducibly.
func NewSeededShuffler(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// Deck is the 52-card source consumed by the deal
type Deck struct {
	cards []Card
}

// NewDeck builds the 52 cards face-down, suit by suit, Ace to King
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for rank := Ace; rank <= King; rank++ {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return &Deck{cards: cards}
}

// Shuffle applies a uniform random permutation
func (d *Deck) Shuffle(s Shuffler) {
	shuffleCards(d.cards, s)
}

// Draw removes and returns the last card. The deal always consumes exactly 52
// cards, so drawing from an empty deck is a programming error.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		panic("engine: draw from exhausted deck")
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c
}

// Len returns the number of cards left
func (d *Deck) Len() int {
	return len(d.cards)
}

func shuffleCards(cards []Card, s Shuffler) {
	s.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
