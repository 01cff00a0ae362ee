package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/solitaire/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	return dir
}

func createValidConfig() *engine.GameConfig {
	seed := uint64(42)
	return &engine.GameConfig{
		Name:        "Test Deal",
		Description: "Test preset",
		Seed:        &seed,
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("classic becomes default", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic", classic)
		writeConfigFile(t, dir, "another", createValidConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic" {
			t.Errorf("Expected default 'Classic', got %q", manager.GetDefault().Name)
		}
	})

	t.Run("first preset without classic", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		writeConfigFile(t, dir, "zeta", &engine.GameConfig{Name: "Zeta", Description: "z"})
		writeConfigFile(t, dir, "alpha", &engine.GameConfig{Name: "Alpha", Description: "a"})

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Alpha" {
			t.Errorf("Expected default 'Alpha', got %q", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager should succeed without presets, got error: %v", err)
		}
		if manager.GetDefault().Name != engine.DefaultConfig().Name {
			t.Errorf("Expected built-in default, got %q", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	writeConfigFile(t, dir, "practice", createValidConfig())
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name": "x", "grid": 1}`), 0644); err != nil {
		t.Fatalf("Failed to write broken config: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("by identifier", func(t *testing.T) {
		config, err := manager.LoadConfig("practice")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Seed == nil || *config.Seed != 42 {
			t.Errorf("Expected seed 42, got %v", config.Seed)
		}
	})

	t.Run("with extension and case", func(t *testing.T) {
		if _, err := manager.LoadConfig("Practice.json"); err != nil {
			t.Errorf("Expected extension and case to be ignored, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := manager.LoadConfig("missing"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		if _, err := manager.LoadConfig("../practice"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := manager.LoadConfig("broken"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	writeConfigFile(t, dir, "practice", createValidConfig())
	writeConfigFile(t, dir, "classic", &engine.GameConfig{Name: "Classic", Description: "Random deal"})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{`), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("Expected 2 configs, got %d", len(configs))
	}
	if configs[0].ConfigID != "classic" || configs[1].ConfigID != "practice" {
		t.Errorf("Expected sorted identifiers, got %s, %s", configs[0].ConfigID, configs[1].ConfigID)
	}
	if configs[0].Seed != nil {
		t.Error("Classic should have no seed")
	}
	if configs[1].Seed == nil || *configs[1].Seed != 42 {
		t.Error("Practice should report its seed")
	}

	if id, ok := manager.ConfigID("Classic"); !ok || id != "classic" {
		t.Errorf("Expected identifier 'classic', got %q", id)
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SaveConfig("weekly", createValidConfig()); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "weekly.json")); err != nil {
		t.Errorf("Expected preset file on disk: %v", err)
	}

	manager.RefreshCache()
	if _, err := manager.LoadConfig("weekly"); err != nil {
		t.Errorf("Expected saved preset to load from disk, got %v", err)
	}

	if err := manager.SaveConfig("bad", &engine.GameConfig{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := manager.SaveConfig("../escape", createValidConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for a path, got %v", err)
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	writeConfigFile(t, dir, "practice", createValidConfig())
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("practice"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if manager.GetDefault().Name != "Test Deal" {
		t.Errorf("Expected 'Test Deal', got %q", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("missing"); err == nil {
		t.Error("Expected error setting a missing default")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	writeConfigFile(t, dir, "practice", createValidConfig())
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%10 == 0 {
				manager.RefreshCache()
				return
			}
			if _, err := manager.LoadConfig("practice"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent load failed: %v", err)
	}
}

func TestShippedPresets(t *testing.T) {
	manager, err := NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configs) < 3 {
		t.Errorf("Expected at least 3 shipped presets, got %d", len(configs))
	}
	if manager.GetDefault().Name != "Classic Klondike" {
		t.Errorf("Expected classic as default, got %q", manager.GetDefault().Name)
	}
}
