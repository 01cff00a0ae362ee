package engine

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	View() View
	HasWon() bool
	GetScore() int
	FinalScore() int
	Elapsed() time.Duration

	// Moves
	Draw() MoveOutcome
	ExecuteMove(src, dst Location, count int) MoveOutcome
	Hints() []Hint

	// History
	Undo() bool
	Redo() bool
	CanUndo() bool
	CanRedo() bool

	// End game
	Autocomplete() bool
	CanAutocomplete() bool

	// Persistence
	Save() SavedGame
}

// SavedGame is the serializable form of an engine: the live state and both
// history stacks, oldest snapshot first
type SavedGame struct {
	State GameState   `json:"state"`
	Undo  []GameState `json:"undo,omitempty"`
	Redo  []GameState `json:"redo,omitempty"`
}

// GameEngine implements the Engine interface. It is not safe for concurrent use;
// callers serialize access.
type GameEngine struct {
	state    *GameState
	history  History
	shuffler Shuffler
	now      func() time.Time
}

type options struct {
	seed     *uint64
	shuffler Shuffler
	now      func() time.Time
}

// Option customizes a new engine
type Option func(*options)

// WithSeed fixes the deal and every later recycle shuffle
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = &seed }
}

// WithShuffler replaces the seeded shuffler for the deal and for recycles
func WithShuffler(s Shuffler) Option {
	return func(o *options) { o.shuffler = s }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewGame deals a new game
func NewGame(opts ...Option) *GameEngine {
	o := buildOptions(opts)

	seed := rand.Uint64()
	if o.seed != nil {
		seed = *o.seed
	}

	e := &GameEngine{
		shuffler: o.shuffler,
		now:      o.now,
	}
	e.state = DealGameState(e.shufflerFor(seed, 0), seed, o.now())
	return e
}

// NewEngine deals a game for a preset. A preset seed takes precedence over WithSeed.
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if config.Seed != nil {
		opts = append(opts, WithSeed(*config.Seed))
	}
	return NewGame(opts...), nil
}

// LoadGame rebuilds an engine from a saved game
func LoadGame(saved SavedGame, opts ...Option) (*GameEngine, error) {
	o := buildOptions(opts)
	e := &GameEngine{
		shuffler: o.shuffler,
		now:      o.now,
	}
	if err := e.SetState(&saved.State); err != nil {
		return nil, err
	}
	for i := range saved.Undo {
		if err := saved.Undo[i].CheckInvariant(); err != nil {
			return nil, fmt.Errorf("undo snapshot %d: %w", i, err)
		}
	}
	for i := range saved.Redo {
		if err := saved.Redo[i].CheckInvariant(); err != nil {
			return nil, fmt.Errorf("redo snapshot %d: %w", i, err)
		}
	}
	e.history.restore(saved.Undo, saved.Redo)
	return e, nil
}

// shufflerFor returns the injected shuffler, or a seeded one for the given stream.
// Stream 0 deals; recycle k uses stream k, so replays and restored games reshuffle identically.
func (e *GameEngine) shufflerFor(seed, stream uint64) Shuffler {
	if e.shuffler != nil {
		return e.shuffler
	}
	return NewSeededShuffler(seed, stream)
}

// GetState returns a copy of the current state
func (e *GameEngine) GetState() *GameState {
	return e.state.Clone()
}

// SetState replaces the current state and clears history (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if err := state.CheckInvariant(); err != nil {
		return fmt.Errorf("invalid state: %w", err)
	}
	e.state = state.Clone()
	e.history.Clear()
	return nil
}

// Save exports the state and history
func (e *GameEngine) Save() SavedGame {
	undo, redo := e.history.export()
	return SavedGame{
		State: *e.state.Clone(),
		Undo:  undo,
		Redo:  redo,
	}
}

// commit runs op against the live state. When op applies, the pre-operation
// snapshot is recorded and the redo branch dropped; otherwise nothing changes.
func (e *GameEngine) commit(op func(gs *GameState) MoveOutcome) MoveOutcome {
	before := TakeSnapshot(e.state)
	outcome := op(e.state)
	if !outcome.Applied {
		return outcome
	}
	e.state.MustCheckInvariant()
	e.markCompletion()
	e.history.Record(before)
	return outcome
}

// markCompletion stamps the finish time the first time the game is won
func (e *GameEngine) markCompletion() {
	if e.state.CompletedAt == nil && e.state.HasWon() {
		at := e.now()
		e.state.CompletedAt = &at
	}
}

// Draw turns over the next stock card, or recycles the waste when the stock is empty
func (e *GameEngine) Draw() MoveOutcome {
	return e.commit(func(gs *GameState) MoveOutcome {
		return gs.drawFromStock(e.shufflerFor(gs.Seed, uint64(gs.Recycles)+1))
	})
}

// ExecuteMove moves count cards from src to dst
func (e *GameEngine) ExecuteMove(src, dst Location, count int) MoveOutcome {
	return e.commit(func(gs *GameState) MoveOutcome {
		return gs.executeMove(src, dst, count)
	})
}

// Undo restores the previous position at a 15 point penalty
func (e *GameEngine) Undo() bool {
	restored, ok := e.history.Undo(e.state)
	if !ok {
		return false
	}
	e.state = restored
	e.state.addScore(ScoreUndo)
	return true
}

// Redo reapplies the most recently undone position
func (e *GameEngine) Redo() bool {
	restored, ok := e.history.Redo(e.state)
	if !ok {
		return false
	}
	e.state = restored
	return true
}

// CanUndo reports whether Undo would succeed
func (e *GameEngine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo reports whether Redo would succeed
func (e *GameEngine) CanRedo() bool {
	return e.history.CanRedo()
}

// CanAutocomplete reports whether the autocomplete precondition holds
func (e *GameEngine) CanAutocomplete() bool {
	return e.state.canAutocomplete()
}

// Autocomplete moves every reachable card to the foundations as a single undoable
// step. It reports whether at least one card moved.
func (e *GameEngine) Autocomplete() bool {
	if !e.state.canAutocomplete() {
		return false
	}
	outcome := e.commit(func(gs *GameState) MoveOutcome {
		if gs.autocomplete() == 0 {
			return MoveOutcome{}
		}
		return applied()
	})
	return outcome.Applied
}

// AutocompleteOutcome is Autocomplete with the rejection reason spelled out
func (e *GameEngine) AutocompleteOutcome() MoveOutcome {
	if !e.state.canAutocomplete() {
		return rejected(AutocompletePreconditionFailed)
	}
	if !e.Autocomplete() {
		return MoveOutcome{}
	}
	return applied()
}

// Hints lists the legal moves, most useful first
func (e *GameEngine) Hints() []Hint {
	return e.state.hints()
}

// HasWon reports whether all foundations are complete
func (e *GameEngine) HasWon() bool {
	return e.state.HasWon()
}

// GetScore returns the running score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// Elapsed returns the time since the deal, frozen once the game is won
func (e *GameEngine) Elapsed() time.Duration {
	end := e.now()
	if e.state.CompletedAt != nil {
		end = *e.state.CompletedAt
	}
	d := end.Sub(e.state.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// FinalScore returns the score with completion and time adjustments applied
func (e *GameEngine) FinalScore() int {
	return FinalScore(e.state.Score, e.Elapsed())
}

// View returns a read-only projection of the current position
func (e *GameEngine) View() View {
	v := buildView(e.state, int(e.Elapsed().Seconds()))
	v.CanUndo = e.history.CanUndo()
	v.CanRedo = e.history.CanRedo()
	v.CanAutocomplete = e.state.canAutocomplete() && !v.Won
	return v
}

var _ Engine = (*GameEngine)(nil)
