package engine

import (
	"fmt"
	"strings"
	"time"
)

// Suit identifies one of the four French suits
type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Color of a suit
type Color uint8

const (
	Red Color = iota
	Black
)

// Rank is the card value, Ace lowest. The numeric value is the ordinal (Ace = 0, King = 12).
type Rank uint8

const (
	Ace Rank = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

const (
	NumSuits     = 4
	NumRanks     = 13
	DeckSize     = NumSuits * NumRanks
	NumTableau   = 7
	InitialStock = DeckSize - (NumTableau*(NumTableau+1))/2
)

// Suits lists every suit in foundation order
var Suits = [NumSuits]Suit{Hearts, Diamonds, Clubs, Spades}

var suitNames = [NumSuits]string{"hearts", "diamonds", "clubs", "spades"}
var suitSymbols = [NumSuits]string{"♥", "♦", "♣", "♠"}
var rankLabels = [NumRanks]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Color returns red for hearts and diamonds, black otherwise
func (s Suit) Color() Color {
	if s == Hearts || s == Diamonds {
		return Red
	}
	return Black
}

// Valid reports whether s is one of the four suits
func (s Suit) Valid() bool {
	return s < NumSuits
}

func (s Suit) String() string {
	if !s.Valid() {
		return fmt.Sprintf("suit(%d)", uint8(s))
	}
	return suitNames[s]
}

// Symbol returns the unicode glyph for the suit
func (s Suit) Symbol() string {
	if !s.Valid() {
		return "?"
	}
	return suitSymbols[s]
}

// MarshalText encodes the suit by name so it can be used as a JSON value or map key
func (s Suit) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid suit %d", uint8(s))
	}
	return []byte(suitNames[s]), nil
}

// UnmarshalText decodes a suit name
func (s *Suit) UnmarshalText(text []byte) error {
	parsed, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSuit converts a canonical suit name ("hearts", "spades", ...) to a Suit
func ParseSuit(name string) (Suit, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range suitNames {
		if n == name {
			return Suit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown suit %q", name)
}

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// Ordinal returns the zero-based position of the rank (Ace = 0, King = 12)
func (r Rank) Ordinal() int {
	return int(r)
}

// Valid reports whether r is between Ace and King
func (r Rank) Valid() bool {
	return r < NumRanks
}

func (r Rank) String() string {
	if !r.Valid() {
		return "?"
	}
	return rankLabels[r]
}

// Card is a playing card. Suit and Rank form its identity; FaceUp is the only mutable part.
type Card struct {
	Suit   Suit `json:"suit"`
	Rank   Rank `json:"rank"`
	FaceUp bool `json:"face_up"`
}

// NewCard returns a face-down card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// Color returns the color of the card's suit
func (c Card) Color() Color {
	return c.Suit.Color()
}

// SameIdentity reports whether both cards have the same suit and rank
func (c Card) SameIdentity(other Card) bool {
	return c.Suit == other.Suit && c.Rank == other.Rank
}

// index maps the card identity to 0..51
func (c Card) index() int {
	return int(c.Suit)*NumRanks + int(c.Rank)
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// GameConfig describes a deal preset. It never changes the rules; a preset only
// pins the shuffle seed so a deal can be replayed.
type GameConfig struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Seed        *uint64 `json:"seed,omitempty"`
}

// GameState is the complete, serializable position of a game
type GameState struct {
	Tableau     [NumTableau]TableauPile  `json:"tableau"`
	Foundations [NumSuits]FoundationPile `json:"foundations"`
	Stock       Pile                     `json:"stock"`
	Waste       Pile                     `json:"waste"`

	// StockCursor counts the cards drawn since the last recycle
	StockCursor int `json:"stock_cursor"`

	Score     int       `json:"score"`
	StartedAt time.Time `json:"started_at"`
	Seed      uint64    `json:"seed"`
	Recycles  int       `json:"recycles"`
	Moves     int       `json:"moves"`

	// CompletedAt is set by the move that completes the last foundation
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Move is a (source, destination, count) triple
type Move struct {
	From  Location `json:"from"`
	To    Location `json:"to"`
	Count int      `json:"count"`
}

func (m Move) String() string {
	if m.Count > 1 {
		return fmt.Sprintf("%s -> %s (%d cards)", m.From, m.To, m.Count)
	}
	return fmt.Sprintf("%s -> %s", m.From, m.To)
}
