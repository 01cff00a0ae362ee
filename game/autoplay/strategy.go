// Package autoplay plays Klondike deals by following engine hints. The deal
// analyzer runs it in-process and the bot drives it over the REST API.
package autoplay

import (
	"github.com/wricardo/solitaire/game/engine"
)

// Action is what the strategy wants to do next
type Action int

const (
	ActionStop Action = iota
	ActionDraw
	ActionMove
	ActionAutocomplete
)

func (a Action) String() string {
	switch a {
	case ActionDraw:
		return "draw"
	case ActionMove:
		return "move"
	case ActionAutocomplete:
		return "autocomplete"
	}
	return "stop"
}

// Decision is one step chosen by the strategy. Move is set for ActionMove.
type Decision struct {
	Action Action
	Move   engine.Move
}

// idleCycles is how many full passes through the stock are allowed without progress
const idleCycles = 3

// progress only ever grows while the strategy plays, so a game always ends
type progress struct {
	foundation int
	faceDown   int
	pileCards  int // stock + waste
}

func progressOf(v engine.View) progress {
	p := progress{pileCards: v.StockCount + v.WasteCount}
	for _, f := range v.Foundations {
		p.foundation += f.Count
	}
	for _, col := range v.Tableau {
		p.faceDown += col.FaceDown
	}
	return p
}

func (p progress) beats(q progress) bool {
	return p.foundation > q.foundation || p.faceDown < q.faceDown || p.pileCards < q.pileCards
}

// Strategy picks moves from hints in priority order. Tableau moves are made at
// most once until the position improves, and it stops after a few passes through
// the stock change nothing.
type Strategy struct {
	last      progress
	started   bool
	shuffles  map[engine.Move]bool
	idleDraws int
	autoTried bool
}

// NewStrategy creates a strategy for a fresh game
func NewStrategy() *Strategy {
	return &Strategy{shuffles: make(map[engine.Move]bool)}
}

// Reset forgets everything learned about the current game
func (s *Strategy) Reset() {
	*s = Strategy{shuffles: make(map[engine.Move]bool)}
}

// Next chooses the next step for the position v with its legal hints
func (s *Strategy) Next(v engine.View, hints []engine.Hint) Decision {
	if v.Won {
		return Decision{Action: ActionStop}
	}

	p := progressOf(v)
	if !s.started || p.beats(s.last) {
		s.started = true
		s.last = p
		s.idleDraws = 0
		s.autoTried = false
		clear(s.shuffles)
	}

	if v.CanAutocomplete && !s.autoTried {
		s.autoTried = true
		return Decision{Action: ActionAutocomplete}
	}

	for _, h := range hints {
		m := h.Move
		switch {
		case m.From.IsFoundation():
			// costs points and never helps this strategy
			continue
		case m.To.IsFoundation(), m.From.IsWaste():
			return Decision{Action: ActionMove, Move: m}
		case !s.shuffles[m]:
			// a reveal clears this set again through progress
			s.shuffles[m] = true
			return Decision{Action: ActionMove, Move: m}
		}
	}

	if p.pileCards == 0 {
		return Decision{Action: ActionStop}
	}
	s.idleDraws++
	if s.idleDraws > idleCycles*(p.pileCards+1) {
		return Decision{Action: ActionStop}
	}
	return Decision{Action: ActionDraw}
}
