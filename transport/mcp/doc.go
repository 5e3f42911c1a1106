// Package mcp provides a Model Context Protocol server for the alchemy game.
//
// The server is a thin client: every tool call is proxied to the REST API,
// so MCP agents and browser players share the same sessions and WebSocket
// clients see the result of agent moves.
//
// MCP Tools:
//   - create_session, get_session, list_sessions, list_configs
//   - game_state: Progress, unlocked elements and every board token
//   - base_elements, unlocked_elements
//   - combine: Combine two unlocked elements by name
//   - spawn_base, add_elements, move_token, copy_token, remove_token
//   - clear_board, align_board, reset_game
//   - combination_history: Paginated combination attempts
//   - game_instructions: Rules and strategy
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: server.NewStreamableHTTPServer(client.GetMCPServer()) mounted on /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
