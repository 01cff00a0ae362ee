package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidConfig() *GameConfig {
	seed := uint64(42)
	return &GameConfig{
		Name:        "Test Deal",
		Description: "A valid test preset",
		Seed:        &seed,
	}
}

func TestValidateGameConfig_ValidConfig(t *testing.T) {
	if err := ValidateGameConfig(createValidConfig()); err != nil {
		t.Errorf("Expected valid config to pass validation, got: %v", err)
	}
	if err := ValidateGameConfig(DefaultConfig()); err != nil {
		t.Errorf("Expected default config to pass validation, got: %v", err)
	}
}

func TestValidateGameConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*GameConfig)
		want   string
	}{
		{"MissingName", func(c *GameConfig) { c.Name = "  " }, "name is required"},
		{"LongName", func(c *GameConfig) { c.Name = strings.Repeat("x", MaxConfigNameLength+1) }, "name must be at most"},
		{"MissingDescription", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"LongDescription", func(c *GameConfig) { c.Description = strings.Repeat("d", MaxConfigDescriptionLength+1) }, "description must be at most"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.modify(config)
			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got: %v", tt.want, err)
			}
		})
	}

	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestParseGameConfig(t *testing.T) {
	config, err := ParseGameConfig([]byte(`{"name":"Seeded","description":"Replayable","seed":7}`))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if config.Seed == nil || *config.Seed != 7 {
		t.Errorf("Expected seed 7, got %v", config.Seed)
	}

	if _, err := ParseGameConfig([]byte(`{"name":"x","description":"y","draw_count":3}`)); err == nil {
		t.Error("Expected unknown fields to be rejected")
	}
	if _, err := ParseGameConfig([]byte(`{"name":`)); err == nil {
		t.Error("Expected malformed JSON to be rejected")
	}
}

func TestLoadGameConfig_ConfigDir(t *testing.T) {
	dir, err := os.MkdirTemp("", "deal_presets_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	data := []byte(`{"name":"From Dir","description":"Loaded through CONFIG_DIR"}`)
	if err := os.WriteFile(filepath.Join(dir, "custom.json"), data, 0644); err != nil {
		t.Fatalf("Failed to write preset: %v", err)
	}

	t.Setenv("CONFIG_DIR", dir)
	config, err := LoadGameConfig("configs/custom.json")
	if err != nil {
		t.Fatalf("Failed to load preset: %v", err)
	}
	if config.Name != "From Dir" {
		t.Errorf("Expected name 'From Dir', got %q", config.Name)
	}
	if config.Seed != nil {
		t.Error("Preset without a seed should leave Seed nil")
	}
}

func TestLoadConfigByName_NotFound(t *testing.T) {
	if _, err := LoadConfigByName("definitely_missing_preset"); err == nil {
		t.Error("Expected error for missing preset")
	}
}
