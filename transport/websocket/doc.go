// Package websocket provides WebSocket transport for the alchemy game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State broadcasting after every board or catalog change
//   - Discovery and completion event push
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection gets a read goroutine and a
// write goroutine; Run serialises registration.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "discovery", "data": {"type": "discovery", "element": "Steam", ...}}
//
// Messages queued while a write is in flight are sent in the same frame,
// separated by newlines. Incoming messages are ignored.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	hub.BroadcastToSession(sessionID, state)
package websocket
