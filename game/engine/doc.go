// Package engine provides the rules of Klondike solitaire.
//
// The engine package implements:
//   - The 52-card deck, dealing and seeded shuffling
//   - Tableau, foundation, stock and waste piles with their placement rules
//   - Move validation, execution and scoring
//   - Whole-state snapshots for undo and redo
//   - Autocomplete once every card is revealed
//   - Final score with completion and time bonuses
//
// Core Types:
//
// The Engine interface defines the contract for game operations, implemented by
// GameEngine. GameState is the complete serializable position; View is the
// read-only projection handed to renderers and transports. Moves are addressed
// with Location values built by Waste, Tableau and Foundation, never by strings.
//
// Usage:
//
//	game := engine.NewGame(engine.WithSeed(42))
//
//	game.Draw()
//	outcome := game.ExecuteMove(engine.Waste(), engine.Tableau(3), 1)
//	if !outcome.Applied {
//		fmt.Println("rejected:", outcome.Reason)
//	}
//
//	if game.HasWon() {
//		fmt.Println("final score:", game.FinalScore())
//	}
//
// Rules:
//
// Drawing scores +2; recycling the waste back into the stock costs 20. Waste to
// foundation scores +15, tableau to foundation +5, waste to tableau +10 and
// foundation back to tableau costs 5. Undo costs 15. Scores never drop below zero.
// A rejected operation leaves the game untouched.
//
// The engine performs no I/O and is not safe for concurrent use.
package engine
