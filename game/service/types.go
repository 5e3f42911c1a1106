package service

import (
	"time"

	"github.com/wricardo/alchemy-game/game/engine"
)

// Event types carried in GameEvent.Type
const (
	EventSpawn      = "spawn"
	EventAdd        = "add"
	EventReaction   = "reaction"
	EventDiscovery  = "discovery"
	EventNoReaction = "no_reaction"
	EventCopy       = "copy"
	EventRemove     = "remove"
	EventClear      = "clear"
	EventAlign      = "align"
	EventReset      = "reset"
	EventComplete   = "complete"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.RecipeBook `json:"game_config"`
}

// ElementInfo is the wire view of one catalog element
type ElementInfo struct {
	Name     string `json:"name"`
	Image    string `json:"image"`
	Base     bool   `json:"base"`
	Unlocked bool   `json:"unlocked"`
}

// CombineResult contains the result of combining two elements by name
type CombineResult struct {
	Success   bool                    `json:"success"`
	Result    *ElementInfo            `json:"result,omitempty"`
	Entry     engine.CombinationEntry `json:"entry"`
	GameState *engine.GameState       `json:"game_state"`
	Message   string                  `json:"message"`
	Events    []GameEvent             `json:"events,omitempty"`
}

// BoardResult contains the result of a board operation that adds or removes tokens
type BoardResult struct {
	Tokens    []engine.Token    `json:"tokens,omitempty"`
	Removed   int               `json:"removed,omitempty"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// MoveResult contains the result of dropping a token
type MoveResult struct {
	Success   bool                `json:"success"`
	Outcome   *engine.MoveOutcome `json:"outcome"`
	GameState *engine.GameState   `json:"game_state"`
	Message   string              `json:"message"`
	Events    []GameEvent         `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Element   string    `json:"element,omitempty"`
	TokenID   string    `json:"token_id,omitempty"`
}

// HistoryOptions configures combination history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated combination history
type HistoryResponse struct {
	Combinations      []engine.CombinationEntry `json:"combinations"`
	TotalCombinations int                       `json:"total_combinations"`
	Page              int                       `json:"page"`
	PageSize          int                       `json:"page_size"`
	TotalPages        int                       `json:"total_pages"`
	HasNext           bool                      `json:"has_next"`
	HasPrevious       bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a recipe book
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	ElementCount int    `json:"element_count"`
	BaseCount    int    `json:"base_count"`
	RecipeCount  int    `json:"recipe_count"`
}

// NewConfigInfo summarises a recipe book
func NewConfigInfo(filename, id string, book *engine.RecipeBook) *ConfigInfo {
	return &ConfigInfo{
		Filename:     filename,
		ConfigID:     id,
		Name:         book.Name,
		Description:  book.Description,
		ElementCount: len(book.Elements),
		BaseCount:    len(book.BaseNames()),
		RecipeCount:  len(book.Recipes),
	}
}

// NewElementInfo converts a catalog element to its wire view
func NewElementInfo(el *engine.Element) ElementInfo {
	return ElementInfo{
		Name:     el.Name(),
		Image:    el.ImageKey(),
		Base:     el.IsBase(),
		Unlocked: el.IsUnlocked(),
	}
}
