// Package config manages the deal presets offered when a game is created.
//
// The config package handles:
//   - Loading presets from JSON files in the configs directory
//   - Strict decoding and validation through the engine
//   - Default preset resolution
//   - Preset discovery and listing
//
// Preset Format:
//
// A preset names a deal and may pin its shuffle seed. It never changes the rules.
//
//	{
//	  "name": "Practice Deal",
//	  "description": "The same deal every time",
//	  "seed": 42
//	}
//
// Without a seed every game created from the preset gets a fresh shuffle.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal().Err(err).Msg("config")
//	}
//
//	preset, err := manager.LoadConfig("practice")
//	presets, err := manager.ListConfigs()
//	fallback := manager.GetDefault()
package config
