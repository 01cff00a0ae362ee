package autoplay

import (
	"github.com/wricardo/solitaire/game/engine"
)

// Result of an automatic game
type Result struct {
	Won             bool `json:"won"`
	Score           int  `json:"score"`
	Moves           int  `json:"moves"`
	Steps           int  `json:"steps"`
	FoundationCards int  `json:"foundation_cards"`
}

// Play runs the strategy on e until it stops, the game is won or maxSteps
// decisions were taken. A maxSteps of zero means no limit.
func Play(e *engine.GameEngine, maxSteps int) Result {
	s := NewStrategy()
	steps := 0

loop:
	for maxSteps <= 0 || steps < maxSteps {
		d := s.Next(e.View(), e.Hints())
		switch d.Action {
		case ActionStop:
			break loop
		case ActionDraw:
			e.Draw()
		case ActionMove:
			e.ExecuteMove(d.Move.From, d.Move.To, d.Move.Count)
		case ActionAutocomplete:
			e.Autocomplete()
		}
		steps++
	}

	v := e.View()
	r := Result{
		Won:             v.Won,
		Score:           v.Score,
		Moves:           v.Moves,
		Steps:           steps,
		FoundationCards: progressOf(v).foundation,
	}
	if r.Won {
		r.Score = e.FinalScore()
	}
	return r
}
