package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	MaxConfigNameLength        = 64
	MaxConfigDescriptionLength = 512
)

// DefaultConfig is used when no preset directory or default preset is available
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "Classic Klondike",
		Description: "Draw one card at a time from a freshly shuffled deck",
	}
}

// ValidateGameConfig validates a deal preset
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	name := strings.TrimSpace(config.Name)
	if name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if len(name) > MaxConfigNameLength {
		return fmt.Errorf("config validation: name must be at most %d characters, got %d", MaxConfigNameLength, len(name))
	}

	if strings.TrimSpace(config.Description) == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if len(config.Description) > MaxConfigDescriptionLength {
		return fmt.Errorf("config validation: description must be at most %d characters, got %d",
			MaxConfigDescriptionLength, len(config.Description))
	}

	return nil
}

// LoadGameConfig loads a deal preset from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseGameConfig(data)
}

// ParseGameConfig decodes and validates a preset, rejecting unknown fields
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadConfigByName loads a deal preset by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join("configs", configName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	config, err := LoadGameConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}
