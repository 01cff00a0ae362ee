package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// LocationKind tags the variant held by a Location
type LocationKind uint8

const (
	LocationInvalid LocationKind = iota
	LocationWaste
	LocationTableau
	LocationFoundation
)

// Location addresses a pile a card can be moved from or to.
// Build one with Waste, Tableau or Foundation.
type Location struct {
	kind  LocationKind
	index int
	suit  Suit
}

// Waste addresses the waste pile
func Waste() Location {
	return Location{kind: LocationWaste}
}

// Tableau addresses tableau column n, numbered 1 through 7
func Tableau(n int) Location {
	return Location{kind: LocationTableau, index: n}
}

// Foundation addresses the foundation of the given suit
func Foundation(s Suit) Location {
	return Location{kind: LocationFoundation, suit: s}
}

// Kind returns the variant tag
func (l Location) Kind() LocationKind {
	return l.kind
}

// Column returns the 1-based tableau column, or 0 when l is not a tableau location
func (l Location) Column() int {
	if l.kind != LocationTableau {
		return 0
	}
	return l.index
}

// Suit returns the foundation suit; only meaningful for foundation locations
func (l Location) Suit() Suit {
	return l.suit
}

// Valid reports whether the location addresses an existing pile
func (l Location) Valid() bool {
	switch l.kind {
	case LocationWaste:
		return true
	case LocationTableau:
		return l.index >= 1 && l.index <= NumTableau
	case LocationFoundation:
		return l.suit.Valid()
	}
	return false
}

// IsWaste, IsTableau and IsFoundation test the variant tag
func (l Location) IsWaste() bool      { return l.kind == LocationWaste }
func (l Location) IsTableau() bool    { return l.kind == LocationTableau }
func (l Location) IsFoundation() bool { return l.kind == LocationFoundation }

// String returns the canonical token: "waste", "tableau:3" or "foundation:hearts"
func (l Location) String() string {
	switch l.kind {
	case LocationWaste:
		return "waste"
	case LocationTableau:
		return "tableau:" + strconv.Itoa(l.index)
	case LocationFoundation:
		return "foundation:" + l.suit.String()
	}
	return "invalid"
}

// MarshalText encodes the canonical token
func (l Location) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid location %s", l)
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a canonical token. Human shorthand is handled by the notation package.
func (l *Location) UnmarshalText(text []byte) error {
	parsed, err := ParseLocation(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLocation parses the canonical form produced by Location.String
func ParseLocation(token string) (Location, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "waste" {
		return Waste(), nil
	}

	kind, arg, ok := strings.Cut(token, ":")
	if !ok {
		return Location{}, fmt.Errorf("invalid location %q", token)
	}

	switch kind {
	case "tableau":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return Location{}, fmt.Errorf("invalid tableau column %q", arg)
		}
		loc := Tableau(n)
		if !loc.Valid() {
			return Location{}, fmt.Errorf("tableau column must be 1-%d, got %d", NumTableau, n)
		}
		return loc, nil
	case "foundation":
		s, err := ParseSuit(arg)
		if err != nil {
			return Location{}, err
		}
		return Foundation(s), nil
	}
	return Location{}, fmt.Errorf("invalid location %q", token)
}
