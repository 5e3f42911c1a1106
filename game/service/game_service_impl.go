package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wricardo/alchemy-game/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *log.Logger
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given book name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(bookName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == bookName {
				return cfg.ConfigID
			}
		}
	}
	if bookName == "" {
		return "default"
	}
	return bookName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   log.WithPrefix("service"),
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var book *engine.RecipeBook
	var err error
	if configName != "" {
		book, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available recipe books", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		book = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", book)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(book.Name)
	}
	s.logger.Debug("session created", "session", session.ID, "config", configID)

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      sess.Engine.GetState(),
			GameConfig:     sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// BaseElements returns water, earth, air and fire for a session
func (s *gameServiceImpl) BaseElements(ctx context.Context, sessionID string) ([]ElementInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	water, earth, air, fire := sess.Engine.BaseElements()
	return []ElementInfo{
		NewElementInfo(water),
		NewElementInfo(earth),
		NewElementInfo(air),
		NewElementInfo(fire),
	}, nil
}

// UnlockedElements returns every unlocked element of a session in catalog order
func (s *gameServiceImpl) UnlockedElements(ctx context.Context, sessionID string) ([]ElementInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	unlocked := sess.Engine.UnlockedElements()
	result := make([]ElementInfo, 0, len(unlocked))
	for _, el := range unlocked {
		result = append(result, NewElementInfo(el))
	}
	return result, nil
}

// Combine resolves two elements by name
func (s *gameServiceImpl) Combine(ctx context.Context, sessionID, first, second string) (*CombineResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	wasComplete := sess.Engine.IsComplete()
	el, entry, err := sess.Engine.Combine(first, second)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	result := &CombineResult{
		Success:   el != nil,
		Entry:     entry,
		GameState: state,
		Message:   state.Message,
		Events:    s.reactionEvents(sessionID, entry, state.Message),
	}
	if el != nil {
		info := NewElementInfo(el)
		result.Result = &info
	}
	result.Events = append(result.Events, completionEvents(wasComplete, state)...)
	return result, nil
}

// SpawnBase places the four base elements around a point
func (s *gameServiceImpl) SpawnBase(ctx context.Context, sessionID string, at engine.Point) (*BoardResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	tokens, err := sess.Engine.SpawnBase(at)
	if err != nil {
		return nil, err
	}

	return newBoardResult(sess, tokens, GameEvent{
		Type:      EventSpawn,
		Message:   fmt.Sprintf("Summoned base elements around (%.0f,%.0f)", at.X, at.Y),
		Timestamp: time.Now(),
	}), nil
}

// AddElements places unlocked elements picked by name
func (s *gameServiceImpl) AddElements(ctx context.Context, sessionID string, names []string) (*BoardResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	tokens, err := sess.Engine.AddElements(names)
	if err != nil {
		return nil, err
	}

	events := make([]GameEvent, 0, len(tokens))
	for _, tok := range tokens {
		events = append(events, GameEvent{
			Type:      EventAdd,
			Message:   fmt.Sprintf("Added %s", tok.Element.Name),
			Timestamp: time.Now(),
			Element:   tok.Element.Name,
			TokenID:   tok.ID,
		})
	}
	return newBoardResult(sess, tokens, events...), nil
}

// MoveToken drops a token and lets it react with what it lands on
func (s *gameServiceImpl) MoveToken(ctx context.Context, sessionID, tokenID string, to engine.Point) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	wasComplete := sess.Engine.IsComplete()
	outcome, err := sess.Engine.MoveToken(tokenID, to)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	result := &MoveResult{
		Success:   outcome.Result != nil,
		Outcome:   outcome,
		GameState: state,
		Message:   state.Message,
		Events:    []GameEvent{},
	}
	if outcome.Reaction != nil {
		result.Events = append(result.Events, s.reactionEvents(sessionID, *outcome.Reaction, state.Message)...)
		if outcome.Result != nil {
			result.Events[len(result.Events)-1].TokenID = outcome.Result.ID
		}
	}
	result.Events = append(result.Events, completionEvents(wasComplete, state)...)
	return result, nil
}

// CopyToken splits a token into two copies
func (s *gameServiceImpl) CopyToken(ctx context.Context, sessionID, tokenID string) (*BoardResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	tokens, err := sess.Engine.CopyToken(tokenID)
	if err != nil {
		return nil, err
	}

	return newBoardResult(sess, tokens, GameEvent{
		Type:      EventCopy,
		Message:   fmt.Sprintf("Copied %s", tokens[0].Element.Name),
		Timestamp: time.Now(),
		Element:   tokens[0].Element.Name,
		TokenID:   tokenID,
	}), nil
}

// RemoveToken deletes one token
func (s *gameServiceImpl) RemoveToken(ctx context.Context, sessionID, tokenID string) (*BoardResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.RemoveToken(tokenID); err != nil {
		return nil, err
	}

	result := newBoardResult(sess, nil, GameEvent{
		Type:      EventRemove,
		Message:   "Token removed",
		Timestamp: time.Now(),
		TokenID:   tokenID,
	})
	result.Removed = 1
	return result, nil
}

// ClearBoard removes all tokens
func (s *gameServiceImpl) ClearBoard(ctx context.Context, sessionID string) (*BoardResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	removed := sess.Engine.Clear()
	result := newBoardResult(sess, nil, GameEvent{
		Type:      EventClear,
		Message:   fmt.Sprintf("Cleared %d tokens", removed),
		Timestamp: time.Now(),
	})
	result.Removed = removed
	return result, nil
}

// AlignBoard arranges all tokens on a grid
func (s *gameServiceImpl) AlignBoard(ctx context.Context, sessionID string) (*BoardResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.Align()
	return newBoardResult(sess, sess.Engine.Tokens(), GameEvent{
		Type:      EventAlign,
		Message:   "Board aligned",
		Timestamp: time.Now(),
	}), nil
}

// Reset locks everything but the base elements and clears the board
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("session reset", "session", sessionID)
	return sess.Engine.Reset(), nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState(), nil
}

// GetHistory returns paginated combination history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	combinations := []engine.CombinationEntry{}
	if start < total {
		if opts.Order == "desc" {
			for i := total - 1 - start; i >= total-end; i-- {
				combinations = append(combinations, history[i])
			}
		} else {
			combinations = append(combinations, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Combinations:      combinations,
		TotalCombinations: total,
		Page:              opts.Page,
		PageSize:          opts.Limit,
		TotalPages:        totalPages,
		HasNext:           opts.Page < totalPages,
		HasPrevious:       opts.Page > 1,
	}, nil
}

// ListConfigs returns available recipe books
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific recipe book
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.RecipeBook, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a recipe book to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, book *engine.RecipeBook) error {
	return s.configs.SaveConfig(configName, book)
}

// getSession looks a session up and marks it as accessed
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// reactionEvents describes one combination attempt
func (s *gameServiceImpl) reactionEvents(sessionID string, entry engine.CombinationEntry, message string) []GameEvent {
	now := time.Now()
	switch {
	case !entry.Matched():
		return []GameEvent{{
			Type:      EventNoReaction,
			Message:   message,
			Timestamp: now,
		}}
	case entry.Discovery:
		s.logger.Info("element discovered", "session", sessionID, "element", entry.Result,
			"first", entry.First, "second", entry.Second)
		return []GameEvent{{
			Type:      EventDiscovery,
			Message:   message,
			Timestamp: now,
			Element:   entry.Result,
		}}
	default:
		return []GameEvent{{
			Type:      EventReaction,
			Message:   message,
			Timestamp: now,
			Element:   entry.Result,
		}}
	}
}

// completionEvents reports the transition into a completed catalog
func completionEvents(wasComplete bool, state *engine.GameState) []GameEvent {
	if wasComplete || !state.Complete {
		return nil
	}
	return []GameEvent{{
		Type:      EventComplete,
		Message:   fmt.Sprintf("All %d elements discovered!", state.DiscoveredCount),
		Timestamp: time.Now(),
	}}
}

func newBoardResult(sess *Session, tokens []engine.Token, events ...GameEvent) *BoardResult {
	state := sess.Engine.GetState()
	return &BoardResult{
		Tokens:    tokens,
		GameState: state,
		Message:   state.Message,
		Events:    events,
	}
}
