// Package session provides in-memory session management for the alchemy game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session manager that handles all session operations.
// Each session owns a game engine built from its recipe book, and with it a
// private element catalog: discoveries never leak between sessions.
//
// Session Identifiers:
//
// Generated IDs are 4 lowercase hex characters from crypto/rand. Callers may
// also choose their own IDs. Lookups ignore case.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", book)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//
//	// Drop sessions idle for more than a day
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
//
// Sessions live only as long as the process; unlock progress is not persisted.
package session
