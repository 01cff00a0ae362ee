package service

import (
	"time"

	"github.com/wricardo/solitaire/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	PlayerID       string             `json:"player_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	State          engine.View        `json:"state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a game operation. A rule rejection is not an
// error: Success is false and Reason names the rule.
type MoveResult struct {
	Success    bool             `json:"success"`
	Reason     engine.ErrorKind `json:"reason,omitempty"`
	Message    string           `json:"message"`
	Score      int              `json:"score"`
	ScoreDelta int              `json:"score_delta"`
	Won        bool             `json:"won"`
	State      engine.View      `json:"state"`
	Events     []GameEvent      `json:"events,omitempty"`
}

// Event types
const (
	EventDraw         = "draw"
	EventRecycle      = "recycle"
	EventMove         = "move"
	EventFoundation   = "foundation"
	EventReveal       = "reveal"
	EventUndo         = "undo"
	EventRedo         = "redo"
	EventAutocomplete = "autocomplete"
	EventVictory      = "victory"
)

// GameEvent represents something that happened during an operation
type GameEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// GameResult is what the recorder stores for a finished game
type GameResult struct {
	SessionID string
	PlayerID  string
	ConfigID  string
	StartedAt time.Time
	EndedAt   time.Time
	Score     int
	Duration  time.Duration
	Won       bool
}

// GameSummary is returned when a player finishes a game
type GameSummary struct {
	SessionID      string `json:"session_id"`
	Score          int    `json:"score"`
	FinalScore     int    `json:"final_score"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Won            bool   `json:"won"`
	Recorded       bool   `json:"recorded"`
}

// ConfigInfo provides information about a deal preset
type ConfigInfo struct {
	Filename    string  `json:"filename"`
	ConfigID    string  `json:"config_id"` // The identifier to use for session creation
	Name        string  `json:"name"`      // Display name
	Description string  `json:"description"`
	Seed        *uint64 `json:"seed,omitempty"`
}
