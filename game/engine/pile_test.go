package engine

import (
	"errors"
	"testing"
)

func TestPile(t *testing.T) {
	var p Pile

	if _, ok := p.Top(); ok {
		t.Error("Empty pile should have no top")
	}
	if _, err := p.Pop(); !errors.Is(err, ErrEmptyPile) {
		t.Errorf("Expected ErrEmptyPile, got %v", err)
	}

	p.Push(up(Hearts, Two))
	p.Push(up(Clubs, Nine))

	top, ok := p.Top()
	if !ok || !top.SameIdentity(up(Clubs, Nine)) {
		t.Errorf("Expected 9♣ on top, got %s", top)
	}

	cards := p.Cards()
	cards[0] = up(Spades, King)
	if first := p.Cards()[0]; !first.SameIdentity(up(Hearts, Two)) {
		t.Error("Cards() should return a copy")
	}

	c, err := p.Pop()
	if err != nil || !c.SameIdentity(up(Clubs, Nine)) {
		t.Errorf("Expected to pop 9♣, got %s (%v)", c, err)
	}
	if p.Len() != 1 {
		t.Errorf("Expected 1 card left, got %d", p.Len())
	}
}

func TestTableauCanAccept(t *testing.T) {
	tests := []struct {
		name     string
		column   []Card
		card     Card
		expected bool
	}{
		{"KingOnEmpty", nil, up(Spades, King), true},
		{"QueenOnEmpty", nil, up(Hearts, Queen), false},
		{"RedOnBlack", []Card{up(Spades, Nine)}, up(Hearts, Eight), true},
		{"BlackOnBlack", []Card{up(Spades, Nine)}, up(Clubs, Eight), false},
		{"WrongRank", []Card{up(Spades, Nine)}, up(Hearts, Seven), false},
		{"HigherRank", []Card{up(Spades, Nine)}, up(Hearts, Ten), false},
		{"FaceDownTop", []Card{down(Spades, Nine)}, up(Hearts, Eight), false},
		{"AceOnTwo", []Card{up(Diamonds, Two)}, up(Clubs, Ace), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var col TableauPile
			for _, c := range tt.column {
				col.Push(c)
			}
			if got := col.CanAccept(tt.card); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTableauFaceUpCount(t *testing.T) {
	var col TableauPile
	col.Push(down(Clubs, Four))
	col.Push(down(Hearts, Jack))
	col.Push(up(Spades, Ten))
	col.Push(up(Hearts, Nine))

	if col.FaceUpCount() != 2 {
		t.Errorf("Expected 2 face-up cards, got %d", col.FaceUpCount())
	}
	if col.FaceDownCount() != 2 {
		t.Errorf("Expected 2 face-down cards, got %d", col.FaceDownCount())
	}
	if col.AllFaceUp() {
		t.Error("Column with hidden cards should not be all face-up")
	}

	var empty TableauPile
	if !empty.AllFaceUp() {
		t.Error("Empty column should count as all face-up")
	}
}

func TestFoundationCanAccept(t *testing.T) {
	f := FoundationPile{Suit: Hearts}

	if !f.CanAccept(up(Spades, Ace)) {
		t.Error("Empty foundation should accept any Ace")
	}
	if f.CanAccept(up(Hearts, Two)) {
		t.Error("Empty foundation should reject a Two")
	}
	if !f.CanAccept(up(Hearts, Ace)) {
		t.Fatal("Hearts foundation should accept the Ace of Hearts")
	}

	f.Push(up(Hearts, Ace))
	if !f.CanAccept(up(Hearts, Two)) {
		t.Error("Expected Two of Hearts to follow the Ace")
	}
	if f.CanAccept(up(Diamonds, Two)) {
		t.Error("Foundation should reject a different suit")
	}
	if f.CanAccept(up(Hearts, Three)) {
		t.Error("Foundation should reject a skipped rank")
	}
	if f.CanAcceptRun([]Card{up(Hearts, Two), up(Hearts, Three)}) {
		t.Error("Foundation should reject multi-card runs")
	}

	spades := FoundationPile{Suit: Hearts}
	spades.Push(up(Spades, Ace))
	if !spades.CanAccept(up(Spades, Two)) {
		t.Error("Expected Two of Spades to follow the Ace of Spades on the hearts slot")
	}
	if spades.CanAccept(up(Hearts, Two)) {
		t.Error("Foundation started with spades should reject hearts")
	}
}

func TestIsValidRun(t *testing.T) {
	tests := []struct {
		name     string
		run      []Card
		expected bool
	}{
		{"Single", []Card{up(Hearts, Five)}, true},
		{"Alternating", []Card{up(Spades, Nine), up(Hearts, Eight), up(Clubs, Seven)}, true},
		{"SameColor", []Card{up(Spades, Nine), up(Clubs, Eight)}, false},
		{"Gap", []Card{up(Spades, Nine), up(Hearts, Seven)}, false},
		{"FaceDown", []Card{up(Spades, Nine), down(Hearts, Eight)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidRun(tt.run); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
