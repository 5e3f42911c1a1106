package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/alchemy-game/game/config"
	"github.com/wricardo/alchemy-game/game/engine"
	"github.com/wricardo/alchemy-game/game/service"
	"github.com/wricardo/alchemy-game/game/session"
	"github.com/wricardo/alchemy-game/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Catalog Operations
	CombineFunc func(ctx context.Context, sessionID, first, second string) (*service.CombineResult, error)

	// Board Operations
	SpawnBaseFunc   func(ctx context.Context, sessionID string, at engine.Point) (*service.BoardResult, error)
	AddElementsFunc func(ctx context.Context, sessionID string, names []string) (*service.BoardResult, error)
	MoveTokenFunc   func(ctx context.Context, sessionID, tokenID string, to engine.Point) (*service.MoveResult, error)

	// Game State
	GetHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Configuration
	LoadConfigFunc func(ctx context.Context, configName string) (*engine.RecipeBook, error)
	SaveConfigFunc func(ctx context.Context, configName string, book *engine.RecipeBook) error
}

// Session Management
func (m *MockGameService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		ConfigName: configName,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "test-config",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Catalog Operations
func (m *MockGameService) BaseElements(ctx context.Context, sessionID string) ([]service.ElementInfo, error) {
	return []service.ElementInfo{{Name: "Water", Image: "water", Base: true, Unlocked: true}}, nil
}

func (m *MockGameService) UnlockedElements(ctx context.Context, sessionID string) ([]service.ElementInfo, error) {
	return []service.ElementInfo{{Name: "Water", Image: "water", Base: true, Unlocked: true}}, nil
}

func (m *MockGameService) Combine(ctx context.Context, sessionID, first, second string) (*service.CombineResult, error) {
	if m.CombineFunc != nil {
		return m.CombineFunc(ctx, sessionID, first, second)
	}
	return &service.CombineResult{GameState: &engine.GameState{}}, nil
}

// Board Operations
func (m *MockGameService) SpawnBase(ctx context.Context, sessionID string, at engine.Point) (*service.BoardResult, error) {
	if m.SpawnBaseFunc != nil {
		return m.SpawnBaseFunc(ctx, sessionID, at)
	}
	return &service.BoardResult{GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) AddElements(ctx context.Context, sessionID string, names []string) (*service.BoardResult, error) {
	if m.AddElementsFunc != nil {
		return m.AddElementsFunc(ctx, sessionID, names)
	}
	return &service.BoardResult{GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) MoveToken(ctx context.Context, sessionID, tokenID string, to engine.Point) (*service.MoveResult, error) {
	if m.MoveTokenFunc != nil {
		return m.MoveTokenFunc(ctx, sessionID, tokenID, to)
	}
	return &service.MoveResult{GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) CopyToken(ctx context.Context, sessionID, tokenID string) (*service.BoardResult, error) {
	return &service.BoardResult{GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) RemoveToken(ctx context.Context, sessionID, tokenID string) (*service.BoardResult, error) {
	return &service.BoardResult{GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) ClearBoard(ctx context.Context, sessionID string) (*service.BoardResult, error) {
	return &service.BoardResult{GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) AlignBoard(ctx context.Context, sessionID string) (*service.BoardResult, error) {
	return &service.BoardResult{GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	return &engine.GameState{}, nil
}

// Game State
func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	return &engine.GameState{ConfigName: "test-config"}, nil
}

func (m *MockGameService) GetHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Combinations: []engine.CombinationEntry{},
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   1,
	}, nil
}

// Configuration
func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.RecipeBook, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.RecipeBook{
		Name:        configName,
		Description: "Test config",
	}, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, book *engine.RecipeBook) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, book)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService service.GameService) *Server {
	hub := websocket.NewHub()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func doRequest(server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest(method, path, body))
	return w
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != "" {
						t.Errorf("Expected empty config name, got %s", configName)
					}
					return &service.SessionInfo{
						ID:             "ab12",
						ConfigName:     "classic",
						CreatedAt:      time.Now(),
						LastAccessedAt: time.Now(),
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with config_id",
			requestBody: map[string]string{"config_id": "metals"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: "cd34", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ConfigName != "metals" {
					t.Errorf("Expected config metals, got %s", resp.ConfigName)
				}
			},
		},
		{
			name:        "Deprecated config_name still accepted",
			requestBody: map[string]string{"config_name": "metals"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: "ef56", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ConfigName != "metals" {
					t.Errorf("Expected config metals, got %s", resp.ConfigName)
				}
			},
		},
		{
			name:        "Unknown config maps to 404",
			requestBody: map[string]string{"config_id": "missing"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: '%s'", service.ErrConfigNotFound, configName)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := doRequest(server, "POST", "/api/sessions", tt.requestBody)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour), GameState: &engine.GameState{DiscoveredCount: 7}},
				{ID: "new", CreatedAt: now, LastAccessedAt: now, GameState: &engine.GameState{DiscoveredCount: 4}},
				{ID: "mid", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-30 * time.Minute), GameState: &engine.GameState{DiscoveredCount: 5}},
			}, nil
		},
	}

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"Default sorts by last access desc", "", []string{"new", "mid", "old"}},
		{"Created ascending", "?sort=created&order=asc", []string{"old", "mid", "new"}},
		{"Discovered descending", "?sort=discovered", []string{"old", "mid", "new"}},
		{"Limit", "?limit=1", []string{"new"}},
		{"Invalid limit ignored", "?limit=abc", []string{"new", "mid", "old"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(mockService)
			w := doRequest(server, "GET", "/api/sessions"+tt.query, nil)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != 3 {
				t.Errorf("Expected total 3, got %d", resp.Total)
			}
			if resp.Count != len(tt.expected) {
				t.Fatalf("Expected %d sessions, got %d", len(tt.expected), resp.Count)
			}
			for i, id := range tt.expected {
				if resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "missing" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "missing" {
				return fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return nil
		},
	}
	server := setupTestServer(mockService)

	if w := doRequest(server, "GET", "/api/sessions/ab12", nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w := doRequest(server, "GET", "/api/sessions/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if w := doRequest(server, "DELETE", "/api/sessions/ab12", nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w := doRequest(server, "DELETE", "/api/sessions/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// Catalog Tests

func TestCombine(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		err            error
		expectedStatus int
	}{
		{"Valid pair", map[string]string{"first": "Water", "second": "Fire"}, nil, http.StatusOK},
		{"Missing second", map[string]string{"first": "Water"}, nil, http.StatusBadRequest},
		{"Unknown element", map[string]string{"first": "Water", "second": "Plasma"}, engine.ErrUnknownElement, http.StatusBadRequest},
		{"Locked element", map[string]string{"first": "Water", "second": "Steam"}, engine.ErrElementLocked, http.StatusBadRequest},
		{"Unknown session", map[string]string{"first": "Water", "second": "Fire"}, service.ErrSessionNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mockService := &MockGameService{
				CombineFunc: func(ctx context.Context, sessionID, first, second string) (*service.CombineResult, error) {
					called = true
					if sessionID != "ab12" {
						t.Errorf("Expected session ab12, got %s", sessionID)
					}
					if tt.err != nil {
						return nil, fmt.Errorf("%w: %s", tt.err, second)
					}
					return &service.CombineResult{
						Success:   true,
						Result:    &service.ElementInfo{Name: "Alcohol", Image: "alcohol", Unlocked: true},
						GameState: &engine.GameState{DiscoveredCount: 5},
					}, nil
				},
			}
			server := setupTestServer(mockService)

			w := doRequest(server, "POST", "/api/sessions/ab12/combine", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusOK {
				var resp service.CombineResult
				parseResponse(t, w, &resp)
				if resp.Result == nil || resp.Result.Name != "Alcohol" {
					t.Errorf("Expected Alcohol, got %+v", resp.Result)
				}
			}
			if tt.expectedStatus == http.StatusBadRequest && tt.err == nil && called {
				t.Error("Service should not be called for an incomplete request")
			}
		})
	}
}

func TestElementsEndpoints(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	for _, path := range []string{"/api/sessions/ab12/elements/base", "/api/sessions/ab12/elements/unlocked"} {
		w := doRequest(server, "GET", path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, w.Code)
			continue
		}
		var resp struct {
			Count    int                   `json:"count"`
			Elements []service.ElementInfo `json:"elements"`
		}
		parseResponse(t, w, &resp)
		if resp.Count != 1 || resp.Elements[0].Name != "Water" {
			t.Errorf("%s: unexpected elements %+v", path, resp.Elements)
		}
	}
}

// Board Tests

func TestSpawnBase(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		err            error
		expectedStatus int
	}{
		{"Valid point", map[string]float64{"x": 200, "y": 300}, nil, http.StatusOK},
		{"Origin is a valid point", map[string]float64{"x": 0, "y": 0}, nil, http.StatusOK},
		{"Missing y", map[string]float64{"x": 200}, nil, http.StatusBadRequest},
		{"Board full", map[string]float64{"x": 200, "y": 300}, engine.ErrBoardFull, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				SpawnBaseFunc: func(ctx context.Context, sessionID string, at engine.Point) (*service.BoardResult, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &service.BoardResult{
						Tokens:    make([]engine.Token, 4),
						GameState: &engine.GameState{},
					}, nil
				},
			}
			server := setupTestServer(mockService)

			w := doRequest(server, "POST", "/api/sessions/ab12/board/spawn", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestAddElements(t *testing.T) {
	var received []string
	mockService := &MockGameService{
		AddElementsFunc: func(ctx context.Context, sessionID string, names []string) (*service.BoardResult, error) {
			received = names
			return &service.BoardResult{GameState: &engine.GameState{}}, nil
		},
	}
	server := setupTestServer(mockService)

	w := doRequest(server, "POST", "/api/sessions/ab12/board/tokens", map[string][]string{"elements": {"Water", "Fire"}})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if len(received) != 2 || received[1] != "Fire" {
		t.Errorf("Expected [Water Fire], got %v", received)
	}

	w = doRequest(server, "POST", "/api/sessions/ab12/board/tokens", map[string][]string{"elements": {}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty list, got %d", w.Code)
	}
}

func TestMoveToken(t *testing.T) {
	mockService := &MockGameService{
		MoveTokenFunc: func(ctx context.Context, sessionID, tokenID string, to engine.Point) (*service.MoveResult, error) {
			if tokenID == "gone" {
				return nil, fmt.Errorf("%w: %s", engine.ErrTokenNotFound, tokenID)
			}
			if to.X != 235 || to.Y != 255 {
				t.Errorf("Expected (235,255), got (%v,%v)", to.X, to.Y)
			}
			return &service.MoveResult{
				Success: true,
				Outcome: &engine.MoveOutcome{
					Contact:  true,
					Reaction: &engine.CombinationEntry{First: "Water", Second: "Earth", Result: "Swamp", Discovery: true},
					Result:   &engine.Token{ID: "t9"},
				},
				GameState: &engine.GameState{},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	w := doRequest(server, "POST", "/api/sessions/ab12/board/tokens/t1/move", map[string]float64{"x": 235, "y": 255})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.MoveResult
	parseResponse(t, w, &resp)
	if resp.Outcome == nil || resp.Outcome.Result == nil || resp.Outcome.Result.ID != "t9" {
		t.Errorf("Expected result token t9, got %+v", resp.Outcome)
	}

	w = doRequest(server, "POST", "/api/sessions/ab12/board/tokens/gone/move", map[string]float64{"x": 1, "y": 1})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestBoardRoutes(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/api/sessions/ab12/board/tokens/t1/copy"},
		{"DELETE", "/api/sessions/ab12/board/tokens/t1"},
		{"POST", "/api/sessions/ab12/board/align"},
		{"DELETE", "/api/sessions/ab12/board"},
		{"POST", "/api/sessions/ab12/reset"},
		{"GET", "/api/sessions/ab12/state"},
		{"GET", "/api/health"},
	}

	for _, rt := range routes {
		w := doRequest(server, rt.method, rt.path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s %s: expected status 200, got %d", rt.method, rt.path, w.Code)
		}
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		expectedPage  int
		expectedLimit int
		expectedOrder string
	}{
		{"Defaults", "", 1, 20, "desc"},
		{"Explicit values", "?page=3&limit=5&order=asc", 3, 5, "asc"},
		{"Invalid values fall back", "?page=-1&limit=abc&order=sideways", 1, 20, "desc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mockService := &MockGameService{
				GetHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
				},
			}
			server := setupTestServer(mockService)

			w := doRequest(server, "GET", "/api/sessions/ab12/history"+tt.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got.Page != tt.expectedPage || got.Limit != tt.expectedLimit || got.Order != tt.expectedOrder {
				t.Errorf("Expected page=%d limit=%d order=%s, got %+v",
					tt.expectedPage, tt.expectedLimit, tt.expectedOrder, got)
			}
		})
	}
}

// Configuration Tests

func TestGetConfig(t *testing.T) {
	mockService := &MockGameService{
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.RecipeBook, error) {
			if configName == "classic" {
				return engine.DefaultRecipeBook(), nil
			}
			return nil, service.ErrConfigNotFound
		},
	}
	server := setupTestServer(mockService)

	w := doRequest(server, "GET", "/api/configs/classic", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var book engine.RecipeBook
	parseResponse(t, w, &book)
	if book.Name != "Classic" || len(book.Recipes) != 6 {
		t.Errorf("Unexpected book %s with %d recipes", book.Name, len(book.Recipes))
	}

	if w := doRequest(server, "GET", "/api/configs/nope", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCreateConfig(t *testing.T) {
	var savedID string
	mockService := &MockGameService{
		SaveConfigFunc: func(ctx context.Context, configName string, book *engine.RecipeBook) error {
			if len(book.Elements) == 0 {
				return fmt.Errorf("%w: no elements", service.ErrInvalidConfig)
			}
			savedID = configName
			return nil
		},
	}
	server := setupTestServer(mockService)

	w := doRequest(server, "POST", "/api/configs", engine.RecipeBook{Name: "My Metals!", Elements: engine.DefaultRecipeBook().Elements})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if savedID != "my_metals" {
		t.Errorf("Expected config ID my_metals, got %s", savedID)
	}

	if w := doRequest(server, "POST", "/api/configs", engine.RecipeBook{Name: "Empty"}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for invalid book, got %d", w.Code)
	}
	if w := doRequest(server, "POST", "/api/configs", engine.RecipeBook{}); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing name, got %d", w.Code)
	}
}

func TestUnifiedSessions(t *testing.T) {
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", ConfigName: "classic", GameState: &engine.GameState{DiscoveredCount: 6, TotalElements: 10}},
				{ID: "b", ConfigName: "metals", GameState: &engine.GameState{DiscoveredCount: 4, TotalElements: 20}},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	w := doRequest(server, "GET", "/api/sessions/unified?configName=classic", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		ConfigName    string                   `json:"config_name"`
		TotalElements int                      `json:"total_elements"`
		Sessions      []map[string]interface{} `json:"sessions"`
	}
	parseResponse(t, w, &resp)

	if resp.ConfigName != "classic" || resp.TotalElements != 10 {
		t.Errorf("Unexpected header %s/%d", resp.ConfigName, resp.TotalElements)
	}
	if len(resp.Sessions) != 1 || resp.Sessions[0]["session_id"] != "a" {
		t.Errorf("Expected only session a, got %v", resp.Sessions)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{fmt.Errorf("%w: x", service.ErrSessionNotFound), http.StatusNotFound},
		{service.ErrConfigNotFound, http.StatusNotFound},
		{engine.ErrTokenNotFound, http.StatusNotFound},
		{engine.ErrUnknownElement, http.StatusBadRequest},
		{engine.ErrElementLocked, http.StatusBadRequest},
		{service.ErrInvalidConfig, http.StatusBadRequest},
		{engine.ErrBoardFull, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.expected {
			t.Errorf("statusFor(%v) = %d, expected %d", tt.err, got, tt.expected)
		}
	}
}

func TestConfigIDFromName(t *testing.T) {
	tests := map[string]string{
		"Classic":         "classic",
		"  Deep Sea  ":    "deep_sea",
		"Metals & Alloys": "metals__alloys",
		"v2-extended":     "v2-extended",
	}
	for name, expected := range tests {
		if got := configIDFromName(name); got != expected {
			t.Errorf("configIDFromName(%q) = %q, expected %q", name, got, expected)
		}
	}
}

// WebSocket Tests

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, service.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest("GET", "/ws"+tt.queryParams, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestWebSocketWithoutHub(t *testing.T) {
	server := NewServer(&MockGameService{}, nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/ws?session=ab12", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

// End-to-end tests against the real service stack

func newIntegrationServer(t *testing.T) (*Server, *websocket.Hub) {
	t.Helper()
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return NewServer(service.NewGameService(session.NewManager(), configs), hub), hub
}

func tokenByName(t *testing.T, tokens []engine.Token, name string) engine.Token {
	t.Helper()
	for _, tok := range tokens {
		if tok.Element.Name == name {
			return tok
		}
	}
	t.Fatalf("No %s token in %v", name, tokens)
	return engine.Token{}
}

func TestBoardFlowEndToEnd(t *testing.T) {
	server, _ := newIntegrationServer(t)

	w := doRequest(server, "POST", "/api/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var sess service.SessionInfo
	parseResponse(t, w, &sess)
	base := "/api/sessions/" + sess.ID

	w = doRequest(server, "POST", base+"/board/spawn", map[string]float64{"x": 200, "y": 300})
	if w.Code != http.StatusOK {
		t.Fatalf("Spawn failed: %d %s", w.Code, w.Body.String())
	}
	var spawned service.BoardResult
	parseResponse(t, w, &spawned)
	if len(spawned.Tokens) != 4 {
		t.Fatalf("Expected 4 tokens, got %d", len(spawned.Tokens))
	}

	water := tokenByName(t, spawned.Tokens, "Water")
	earth := tokenByName(t, spawned.Tokens, "Earth")

	w = doRequest(server, "POST", base+"/board/tokens/"+water.ID+"/move",
		map[string]float64{"x": earth.Center.X, "y": earth.Center.Y})
	if w.Code != http.StatusOK {
		t.Fatalf("Move failed: %d %s", w.Code, w.Body.String())
	}
	var moved service.MoveResult
	parseResponse(t, w, &moved)
	if !moved.Success || moved.Outcome.Result == nil || moved.Outcome.Result.Element.Name != "Swamp" {
		t.Fatalf("Expected Swamp reaction, got %+v", moved.Outcome)
	}
	if moved.GameState.DiscoveredCount != 5 {
		t.Errorf("Expected 5 discovered, got %d", moved.GameState.DiscoveredCount)
	}
	if len(moved.GameState.Tokens) != 3 {
		t.Errorf("Expected 3 tokens after reaction, got %d", len(moved.GameState.Tokens))
	}

	w = doRequest(server, "POST", base+"/board/tokens", map[string][]string{"elements": {"Steam"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected locked element to be rejected with 400, got %d", w.Code)
	}

	w = doRequest(server, "GET", base+"/history", nil)
	var history service.HistoryResponse
	parseResponse(t, w, &history)
	if history.TotalCombinations != 1 || history.Combinations[0].Result != "Swamp" {
		t.Errorf("Unexpected history %+v", history)
	}

	w = doRequest(server, "DELETE", base+"/board", nil)
	var cleared service.BoardResult
	parseResponse(t, w, &cleared)
	if cleared.Removed != 3 || len(cleared.GameState.Tokens) != 0 {
		t.Errorf("Expected 3 removed and empty board, got %d and %d", cleared.Removed, len(cleared.GameState.Tokens))
	}

	if w := doRequest(server, "DELETE", base+"/board/tokens/"+water.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for removed token, got %d", w.Code)
	}
}

func TestWebSocketReceivesDiscovery(t *testing.T) {
	server, hub := newIntegrationServer(t)
	httpServer := httptest.NewServer(server)
	defer httpServer.Close()

	w := doRequest(server, "POST", "/api/sessions", nil)
	var sess service.SessionInfo
	parseResponse(t, w, &sess)

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws?session=" + sess.ID
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(sess.ID) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	w = doRequest(server, "POST", "/api/sessions/"+sess.ID+"/combine", map[string]string{"first": "Air", "second": "Fire"})
	if w.Code != http.StatusOK {
		t.Fatalf("Combine failed: %d %s", w.Code, w.Body.String())
	}

	var events []string
	conn.SetReadDeadline(time.Now().Add(time.Second))
	for len(events) < 2 {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read WebSocket message: %v", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			var msg websocket.Message
			if err := json.Unmarshal([]byte(line), &msg); err != nil {
				t.Fatalf("Failed to unmarshal message: %v", err)
			}
			events = append(events, msg.Event)
		}
	}

	if events[0] != websocket.EventStateUpdate || events[1] != websocket.EventDiscovery {
		t.Errorf("Expected state_update then discovery, got %v", events)
	}
}
