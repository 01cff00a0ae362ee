// Package session keeps the live solitaire games and their storage.
//
// Core Types:
//
// Manager holds sessions in memory, keyed by a case-insensitive ID, and falls
// back to a SessionPersistence when a session is not loaded. Generated IDs are
// four hex characters from crypto/rand, retried until unused.
//
// SessionPersistence has two implementations that store the same JSON document
// (the engine's SavedGame plus session metadata):
//   - FilePersistence writes one file per session under a directory
//   - RedisPersistence stores solitaire:session:<id> keys with a TTL
//
// Usage:
//
//	store, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		return err
//	}
//	manager := session.NewManagerWithPersistence(store)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Warn().Err(err).Msg("restore sessions")
//	}
//
//	sess, err := manager.Create("", preset)
//
// Cleanup:
//
// CleanupExpiredSessions evicts idle sessions from memory after saving them, so
// a later Get reloads them from storage. Delete removes both copies.
package session
