// Package mcp exposes the solitaire REST API as Model Context Protocol tools
// so AI agents can play.
//
// The Client holds no game state. Every tool call becomes one REST request and
// the JSON answer is turned into text an agent can read: boards are drawn with
// the render package, rejected moves show their reason code, and game_state
// appends the raw JSON view.
//
// Tools:
//   - create_session, list_sessions
//   - game_state, draw, move, play, undo, redo, autocomplete, hint
//   - finish_game, best_scores
//   - list_configs, game_instructions
//
// Usage over stdio:
//
//	client := mcp.NewClient("http://localhost:8080", mcp.WithToken(token))
//	server.ServeStdio(client.GetMCPServer())
//
// The serve command also mounts the same tools at /mcp over HTTP.
package mcp
