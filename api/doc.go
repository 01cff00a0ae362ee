// Package api exposes the solitaire game service over HTTP.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions              create a session ({"config_id": "practice"})
//   - GET    /api/sessions              list sessions (sort=created|accessed, order, limit, mine)
//   - GET    /api/sessions/{id}         session metadata and board
//   - DELETE /api/sessions/{id}         delete a session
//
// Play:
//   - GET  /api/sessions/{id}/state         current board
//   - POST /api/sessions/{id}/draw          turn a stock card or recycle the waste
//   - POST /api/sessions/{id}/move          {"from": "w", "to": "3", "count": 1}
//   - POST /api/sessions/{id}/undo
//   - POST /api/sessions/{id}/redo
//   - POST /api/sessions/{id}/autocomplete
//   - POST /api/sessions/{id}/commands      {"commands": ["p", "m w 3"]}
//   - GET  /api/sessions/{id}/hints
//   - POST /api/sessions/{id}/finish        end the game and record the result
//
// Deal presets:
//   - GET  /api/configs
//   - GET  /api/configs/{name}
//   - POST /api/configs
//
// Players and scores (enabled with WithScores and WithAuthenticator):
//   - POST /api/auth/register, POST /api/auth/login
//   - GET  /api/auth/me
//   - GET  /api/scores/best, GET /api/scores/games
//
// A rejected move answers 200 with "success": false and a reason code; only
// unknown sessions, bad input and server faults are HTTP errors. Errors are
// {"error": "..."}.
//
// Tokens are HS256 JWTs sent as "Authorization: Bearer <token>" or in the
// "token" cookie. A session created with a token belongs to that player, and
// its result is recorded when the game is won or finished.
//
// Every accepted action is pushed to websocket watchers of the session
// (GET /ws?session={id}).
package api
