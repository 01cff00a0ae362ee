// Package service provides the business logic layer for the solitaire server.
//
// The service package implements:
//   - Multi-session game management
//   - Deal preset loading and listing
//   - Draw, move, undo, redo and autocomplete processing
//   - Recording finished games for registered players
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages deal presets.
// ResultRecorder stores the outcome of finished games.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP, terminal)
// and the game engine. Each session owns its own engine; the service serializes
// access to them and saves a session after every operation that changed it.
// Rule rejections are reported in MoveResult, never as Go errors.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithResultRecorder(scoreStore))
//
//	info, err := gameService.CreateSession(ctx, "classic", playerID)
//	if err != nil {
//		return err
//	}
//
//	result, err := gameService.Draw(ctx, info.ID)
package service
