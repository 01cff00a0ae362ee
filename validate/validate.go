// Command validate checks the deal preset JSON files in a configs directory.
// It checks:
//   - JSON structure, unknown fields and required fields
//   - File names are lowercase preset identifiers
//   - Display names are unique across presets
//   - A fixed seed deals a consistent 52-card layout, and how auto-play fares on it
//   - The default preset (classic.json) is present
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/solitaire/game/autoplay"
	"github.com/wricardo/solitaire/game/config"
	"github.com/wricardo/solitaire/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string

	config *engine.GameConfig
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	cfg, err := engine.ParseGameConfig(data)
	if err != nil {
		result.fail("Invalid preset: %v", err)
		return result
	}
	result.config = cfg

	stem := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	if stem != strings.ToLower(stem) || strings.ContainsAny(stem, " \t") {
		result.fail("File name %q must be a lowercase identifier without spaces", result.File)
	}

	if cfg.Seed == nil {
		result.info("Random deal")
		return result
	}

	e := engine.NewGame(engine.WithSeed(*cfg.Seed))
	if err := e.GetState().CheckInvariant(); err != nil {
		result.fail("Seed %d deals an inconsistent layout: %v", *cfg.Seed, err)
		return result
	}
	result.info("Fixed deal, seed %d", *cfg.Seed)

	r := autoplay.Play(e, 0)
	if r.Won {
		result.info("Auto-play wins this deal with score %d", r.Score)
	} else {
		result.info("Auto-play stalls with %d cards on the foundations", r.FoundationCards)
	}
	return result
}

// validateDirectory validates every preset and the rules that span files
func validateDirectory(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no presets found in %s", dir)
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	names := make(map[string]string)
	hasDefault := false
	for _, file := range files {
		result := validateConfig(file)
		if result.File == config.DefaultPreset+".json" {
			hasDefault = true
		}
		if result.config != nil {
			name := strings.ToLower(strings.TrimSpace(result.config.Name))
			if other, dup := names[name]; dup {
				result.fail("Name %q is already used by %s", result.config.Name, other)
			} else {
				names[name] = result.File
			}
		}
		results = append(results, result)
	}

	if !hasDefault {
		missing := ValidationResult{File: config.DefaultPreset + ".json", Valid: true}
		missing.fail("Default preset is missing; sessions without a preset fall back to the built-in deal")
		results = append(results, missing)
	}
	return results, nil
}

func report(results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
			continue
		}

		fmt.Println("❌ INVALID")
		allValid = false
		for _, err := range result.Errors {
			if !strings.HasPrefix(err, "✓") {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
	}
	return allValid
}

// main validates the directory given as the first argument (default ../configs)
// and exits with non-zero status if any preset is invalid.
func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "validate deal preset files",
		ArgsUsage: "[configs dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "../configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			results, err := validateDirectory(dir)
			if err != nil {
				return err
			}
			if !report(results) {
				return errors.New("some presets have errors")
			}
			return nil
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("validation failed")
	}
}
