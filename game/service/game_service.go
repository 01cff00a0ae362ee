package service

import (
	"context"
	"time"

	"github.com/wricardo/solitaire/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName, playerID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Draw(ctx context.Context, sessionID string) (*MoveResult, error)
	Move(ctx context.Context, sessionID string, move engine.Move) (*MoveResult, error)
	Undo(ctx context.Context, sessionID string) (*MoveResult, error)
	Redo(ctx context.Context, sessionID string) (*MoveResult, error)
	Autocomplete(ctx context.Context, sessionID string) (*MoveResult, error)
	FinishGame(ctx context.Context, sessionID string) (*GameSummary, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.View, error)
	Hints(ctx context.Context, sessionID string) ([]engine.Hint, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles deal preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// ResultRecorder stores the outcome of a finished game
type ResultRecorder interface {
	RecordGame(ctx context.Context, result GameResult) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	PlayerID       string
	CreatedAt      time.Time
	LastAccessedAt time.Time

	// Recorded is set once the result has been handed to the recorder
	Recorded bool
}
