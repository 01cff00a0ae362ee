package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wricardo/solitaire/game/engine"
	"github.com/wricardo/solitaire/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions
type PersistedSessionData struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Config         *engine.GameConfig `json:"config"`
	PlayerID       string             `json:"player_id,omitempty"`
	Recorded       bool               `json:"recorded,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Game           engine.SavedGame   `json:"game"`
}

// engineOptionSetter is implemented by stores that restore games with the engine
// options of the manager using them
type engineOptionSetter interface {
	SetEngineOptions(opts ...engine.Option)
}

// codec converts sessions to and from PersistedSessionData. Presets are stored by
// identifier and reloaded on decode; the embedded copy is used when the preset no
// longer exists.
type codec struct {
	configs    service.ConfigManager
	engineOpts []engine.Option
}

func (c codec) encode(sess *service.Session) ([]byte, error) {
	if sess == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	data := PersistedSessionData{
		ID:             sess.ID,
		ConfigName:     c.configID(sess.Config.Name),
		Config:         sess.Config,
		PlayerID:       sess.PlayerID,
		Recorded:       sess.Recorded,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Game:           sess.Engine.Save(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session data: %w", err)
	}
	return jsonData, nil
}

func (c codec) decode(jsonData []byte) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	gameConfig := data.Config
	if c.configs != nil && data.ConfigName != "" {
		if preset, err := c.configs.LoadConfig(data.ConfigName); err == nil {
			gameConfig = preset
		}
	}
	if gameConfig == nil {
		return nil, fmt.Errorf("session %s has no deal preset", data.ID)
	}

	gameEngine, err := engine.LoadGame(data.Game, c.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         gameEngine,
		Config:         gameConfig,
		PlayerID:       data.PlayerID,
		Recorded:       data.Recorded,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// configID returns the preset identifier for a display name, or the name itself
func (c codec) configID(displayName string) string {
	if c.configs == nil {
		return displayName
	}
	configs, err := c.configs.ListConfigs()
	if err != nil {
		return displayName
	}
	for _, config := range configs {
		if config.Name == displayName {
			return config.ConfigID
		}
	}
	return displayName
}
