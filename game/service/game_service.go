package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/alchemy-game/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Catalog Operations
	BaseElements(ctx context.Context, sessionID string) ([]ElementInfo, error)
	UnlockedElements(ctx context.Context, sessionID string) ([]ElementInfo, error)
	Combine(ctx context.Context, sessionID, first, second string) (*CombineResult, error)

	// Board Operations
	SpawnBase(ctx context.Context, sessionID string, at engine.Point) (*BoardResult, error)
	AddElements(ctx context.Context, sessionID string, names []string) (*BoardResult, error)
	MoveToken(ctx context.Context, sessionID, tokenID string, to engine.Point) (*MoveResult, error)
	CopyToken(ctx context.Context, sessionID, tokenID string) (*BoardResult, error)
	RemoveToken(ctx context.Context, sessionID, tokenID string) (*BoardResult, error)
	ClearBoard(ctx context.Context, sessionID string) (*BoardResult, error)
	AlignBoard(ctx context.Context, sessionID string) (*BoardResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.RecipeBook, error)
	SaveConfig(ctx context.Context, configName string, book *engine.RecipeBook) error
}

// SessionManager defines session storage operations.
// Returned sessions are snapshots; only the manager writes LastAccessedAt.
type SessionManager interface {
	Create(id string, book *engine.RecipeBook) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, book *engine.RecipeBook) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles recipe book loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.RecipeBook, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.RecipeBook
	SaveConfig(name string, book *engine.RecipeBook) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.RecipeBook
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
