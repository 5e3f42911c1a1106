// Package service provides the business logic layer for the alchemy game.
//
// The service package implements:
//   - Multi-session game management
//   - Recipe book loading through a ConfigManager
//   - Combination and board operations with event reporting
//   - Paginated combination history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages recipe book loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine and therefore its own
// catalog, so unlocking an element in one session never affects another.
// All engine access goes through the service mutex.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("recipes")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Combine(ctx, info.ID, "Water", "Fire")
//	// result.Result.Name == "Alcohol", result.Events[0].Type == "discovery"
package service
