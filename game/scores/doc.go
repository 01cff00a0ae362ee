// Package scores stores registered players, their finished games and their best
// winning score in SQLite.
//
// Passwords are hashed with bcrypt. Each player keeps a single best score, replaced
// only by a higher score or an equal score reached faster. Store implements
// service.ResultRecorder so the game service can hand it finished games directly.
package scores
