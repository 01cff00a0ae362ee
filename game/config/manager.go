package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/solitaire/game/engine"
	"github.com/wricardo/solitaire/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultPreset is the preset used when a session is created without one
const DefaultPreset = "classic"

// Manager loads and caches deal presets from a directory of JSON files
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}
	m.defaultConfig = m.resolveDefault()
	return m, nil
}

func presetID(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".json")
}

// LoadConfig loads a preset by identifier ("classic" or "classic.json")
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id := presetID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs describes every valid preset in the directory, sorted by identifier.
// Invalid files are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := presetID(entry.Name())
		config, err := m.LoadConfig(id)
		if err != nil {
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Seed:        config.Seed,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// ConfigID returns the identifier of the cached preset with the given display name
func (m *Manager) ConfigID(displayName string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, config := range m.configs {
		if config.Name == displayName {
			return id, true
		}
	}
	return "", false
}

// GetDefault returns the default preset
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default preset by identifier
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached preset and resolves the default again
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	def := m.resolveDefault()

	m.mu.Lock()
	m.defaultConfig = def
	m.mu.Unlock()
}

// resolveDefault picks classic.json, then the first valid preset, then the built-in
// default. It must be called without holding the lock.
func (m *Manager) resolveDefault() *engine.GameConfig {
	if config, err := m.LoadConfig(DefaultPreset); err == nil {
		return config
	}
	if configs, err := m.ListConfigs(); err == nil && len(configs) > 0 {
		if config, err := m.LoadConfig(configs[0].ConfigID); err == nil {
			return config
		}
	}
	return engine.DefaultConfig()
}

// SaveConfig validates and writes a preset to disk
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	id := presetID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: invalid preset identifier %q", ErrInvalidConfig, name)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, id+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}
