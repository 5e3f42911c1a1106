// Package api provides HTTP REST API handlers for the alchemy game.
//
// The api package implements:
//   - Session management endpoints
//   - Catalog endpoints (base and unlocked elements, direct combination)
//   - Board endpoints (spawn, add, move, copy, remove, align, clear)
//   - Recipe book listing, retrieval and upload
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=accessed|created|discovered&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Multi-session view (?configName= or ?sessionIds=a,b)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Catalog:
//   - GET /api/sessions/{id}/state - Current game state
//   - GET /api/sessions/{id}/elements/base - The four base elements
//   - GET /api/sessions/{id}/elements/unlocked - Unlocked elements in catalog order
//   - POST /api/sessions/{id}/combine - {"first": "Water", "second": "Fire"}
//   - POST /api/sessions/{id}/reset - Relock everything and clear the board
//   - GET /api/sessions/{id}/history - Combination history (?page=&limit=&order=)
//
// Board:
//   - POST /api/sessions/{id}/board/spawn - {"x": 200, "y": 300}
//   - POST /api/sessions/{id}/board/tokens - {"elements": ["Water", "Steam"]}
//   - POST /api/sessions/{id}/board/tokens/{token}/move - {"x": 235, "y": 255}
//   - POST /api/sessions/{id}/board/tokens/{token}/copy
//   - DELETE /api/sessions/{id}/board/tokens/{token}
//   - POST /api/sessions/{id}/board/align
//   - DELETE /api/sessions/{id}/board
//
// Configuration:
//   - GET /api/configs - List recipe books
//   - GET /api/configs/{name} - Get a recipe book
//   - POST /api/configs - Save a recipe book (?id= overrides the derived ID)
//
// WebSocket:
//   - GET /ws?session={id} - Push state_update, discovery and complete events
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with a status derived from the error kind:
//
//	{"error": "session not found: ab12"}
//
// Missing sessions, recipe books and tokens are 404. Unknown or locked
// elements and invalid recipe books are 400. A full board is 409.
package api
