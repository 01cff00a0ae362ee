package service

import (
	"fmt"
	"time"

	"github.com/wricardo/solitaire/game/engine"
)

// describeChange lists the events of an applied operation, the primary one first
func describeChange(op string, before, after *engine.GameState, at time.Time) []GameEvent {
	event := func(typ, format string, args ...any) GameEvent {
		return GameEvent{Type: typ, Message: fmt.Sprintf(format, args...), Timestamp: at}
	}

	var events []GameEvent
	switch op {
	case "draw":
		if after.Recycles > before.Recycles {
			events = append(events, event(EventRecycle, "Waste recycled into the stock (%d cards)", after.Stock.Len()))
		} else if top, ok := after.Waste.Top(); ok {
			events = append(events, event(EventDraw, "Drew %s", top))
		}
	case "undo":
		events = append(events, event(EventUndo, "Undid last move (%+d)", after.Score-before.Score))
	case "redo":
		events = append(events, event(EventRedo, "Redid move"))
	case "autocomplete":
		moved := foundationCards(after) - foundationCards(before)
		events = append(events, event(EventAutocomplete, "Moved %d cards to the foundations", moved))
	default:
		if d := foundationCards(after) - foundationCards(before); d > 0 {
			events = append(events, event(EventFoundation, "Card moved to the foundation"))
		} else {
			events = append(events, event(EventMove, "Cards moved"))
		}
	}
	if len(events) == 0 {
		events = append(events, event(op, "%s applied", op))
	}

	if op != "undo" && op != "redo" && faceDownCards(after) < faceDownCards(before) {
		events = append(events, event(EventReveal, "A face-down card was turned over"))
	}
	if after.HasWon() && !before.HasWon() {
		events = append(events, event(EventVictory, "All foundations complete, game won with %d points", after.Score))
	}
	return events
}

func foundationCards(gs *engine.GameState) int {
	n := 0
	for i := range gs.Foundations {
		n += gs.Foundations[i].Len()
	}
	return n
}

func faceDownCards(gs *engine.GameState) int {
	n := 0
	for i := range gs.Tableau {
		n += gs.Tableau[i].FaceDownCount()
	}
	return n
}
