package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePreset(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write preset: %v", err)
	}
	return path
}

func TestValidateConfig_RandomDeal(t *testing.T) {
	path := writePreset(t, t.TempDir(), "classic.json", `{"name": "Classic Klondike", "description": "A fresh shuffle"}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Errorf("Expected valid preset, but got errors: %v", result.Errors)
	}
	if result.File != "classic.json" {
		t.Errorf("Expected file name classic.json, got %s", result.File)
	}
	if !containsLine(result.Errors, "Random deal") {
		t.Errorf("Expected random deal info, got %v", result.Errors)
	}
}

func TestValidateConfig_FixedSeed(t *testing.T) {
	path := writePreset(t, t.TempDir(), "practice.json", `{"name": "Practice", "description": "Same deal", "seed": 42}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid preset, but got errors: %v", result.Errors)
	}
	if !containsLine(result.Errors, "Fixed deal, seed 42") {
		t.Errorf("Expected seed info, got %v", result.Errors)
	}
	if !containsLine(result.Errors, "Auto-play") {
		t.Errorf("Expected auto-play info, got %v", result.Errors)
	}
}

func TestValidateConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		file string
		body string
		want string
	}{
		{"invalid json", "broken.json", `{"name": "test", invalid json}`, "Invalid preset"},
		{"missing name", "noname.json", `{"description": "no name"}`, "name is required"},
		{"missing description", "nodesc.json", `{"name": "No description"}`, "description is required"},
		{"unknown field", "drawthree.json", `{"name": "Draw three", "description": "x", "draw_count": 3}`, "unknown field"},
		{"negative seed", "neg.json", `{"name": "Neg", "description": "x", "seed": -1}`, "Invalid preset"},
		{"uppercase file", "Daily.json", `{"name": "Daily", "description": "x"}`, "lowercase identifier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateConfig(writePreset(t, dir, tt.file, tt.body))
			if result.Valid {
				t.Fatal("Expected invalid preset")
			}
			if !containsLine(result.Errors, tt.want) {
				t.Errorf("Expected an error containing %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "missing.json"))
	if result.Valid {
		t.Error("Expected invalid result for a missing file")
	}
	if !containsLine(result.Errors, "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "classic.json", `{"name": "Classic Klondike", "description": "A fresh shuffle"}`)
	writePreset(t, dir, "daily.json", `{"name": "Daily", "description": "Today's deal", "seed": 7}`)
	writePreset(t, dir, "daily2.json", `{"name": "daily", "description": "Same name", "seed": 8}`)

	results, err := validateDirectory(dir)
	if err != nil {
		t.Fatalf("validateDirectory failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	byFile := map[string]ValidationResult{}
	for _, r := range results {
		byFile[r.File] = r
	}
	if !byFile["classic.json"].Valid || !byFile["daily.json"].Valid {
		t.Error("Expected classic and daily to be valid")
	}
	if byFile["daily2.json"].Valid {
		t.Error("Expected the duplicate name to be rejected")
	}
	if !containsLine(byFile["daily2.json"].Errors, "already used by daily.json") {
		t.Errorf("Expected duplicate name error, got %v", byFile["daily2.json"].Errors)
	}
}

func TestValidateDirectory_MissingDefault(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "daily.json", `{"name": "Daily", "description": "Today's deal"}`)

	results, err := validateDirectory(dir)
	if err != nil {
		t.Fatalf("validateDirectory failed: %v", err)
	}
	last := results[len(results)-1]
	if last.File != "classic.json" || last.Valid {
		t.Errorf("Expected a failing entry for the missing default preset, got %+v", last)
	}
}

func TestValidateDirectory_Empty(t *testing.T) {
	if _, err := validateDirectory(t.TempDir()); err == nil {
		t.Error("Expected an error for a directory without presets")
	}
}

func TestShippedPresets(t *testing.T) {
	if _, err := os.Stat("../configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	results, err := validateDirectory("../configs")
	if err != nil {
		t.Fatalf("validateDirectory failed: %v", err)
	}
	for _, r := range results {
		if !r.Valid {
			t.Errorf("%s is invalid: %v", r.File, r.Errors)
		}
	}
}

func containsLine(lines []string, substr string) bool {
	for _, line := range lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
