package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/alchemy-game/game/engine"
	"github.com/wricardo/alchemy-game/game/service"
)

const (
	serverName    = "Alchemy Game"
	serverVersion = "1.0.0"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// Tool arguments
type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type createSessionArgs struct {
	ConfigID string `json:"config_id"`
}

type combineArgs struct {
	SessionID string `json:"session_id"`
	First     string `json:"first"`
	Second    string `json:"second"`
	Intent    string `json:"intent"`
}

type pointArgs struct {
	SessionID string   `json:"session_id"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
}

type addElementsArgs struct {
	SessionID string   `json:"session_id"`
	Elements  []string `json:"elements"`
}

type tokenArgs struct {
	SessionID string   `json:"session_id"`
	TokenID   string   `json:"token_id"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Intent    string   `json:"intent"`
}

type historyArgs struct {
	SessionID string `json:"session_id"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	Order     string `json:"order"`
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Alchemy Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Start with Water, Earth, Air and Fire. Combine pairs of unlocked elements to discover
new ones until every element in the recipe book is unlocked.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: Manage game sessions
- game_state: Board tokens, discovered count and last combination
- base_elements / unlocked_elements: What you can work with
- combine: Combine two unlocked elements by name - requires intent explanation
- spawn_base: Put the four base elements on the board around a point
- add_elements: Put unlocked elements on the board
- move_token: Drag a token onto another to make them react
- copy_token / remove_token / clear_board / align_board: Board housekeeping
- reset_game: Relock everything except the base elements
- combination_history: View past combination attempts
- list_configs: List available recipe books
- game_instructions: Get comprehensive game instructions and rules

NOTE: The 'intent' parameter on combine/move_token serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDParam() mcp.ToolOption {
	return mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session ID"),
	)
}

func tokenIDParam() mcp.ToolOption {
	return mcp.WithString("token_id",
		mcp.Required(),
		mcp.Description("Token ID as shown by game_state"),
	)
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new game session with optional recipe book selection"),
		mcp.WithString("config_id",
			mcp.Description("ID of the recipe book to use (optional, see list_configs)"),
		),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active game sessions"),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get details of a specific session"),
		sessionIDParam(),
	), c.handleGetSession)

	// Catalog
	c.mcpServer.AddTool(mcp.NewTool("game_state",
		mcp.WithDescription("Get the current game state: board tokens, progress and last combination"),
		sessionIDParam(),
	), c.handleGameState)

	c.mcpServer.AddTool(mcp.NewTool("base_elements",
		mcp.WithDescription("List the four base elements"),
		sessionIDParam(),
	), c.handleBaseElements)

	c.mcpServer.AddTool(mcp.NewTool("unlocked_elements",
		mcp.WithDescription("List every element unlocked so far"),
		sessionIDParam(),
	), c.handleUnlockedElements)

	c.mcpServer.AddTool(mcp.NewTool("combine",
		mcp.WithDescription("Combine two unlocked elements by name. Order does not matter."),
		sessionIDParam(),
		mcp.WithString("first", mcp.Required(), mcp.Description("First element name")),
		mcp.WithString("second", mcp.Required(), mcp.Description("Second element name")),
		mcp.WithString("intent",
			mcp.Description("Brief explanation of why you expect this pair to react (serves as a rubber duck to help explain your reasoning)"),
		),
	), c.handleCombine)

	// Board
	c.mcpServer.AddTool(mcp.NewTool("spawn_base",
		mcp.WithDescription("Place Water, Earth, Air and Fire in a square around a point"),
		sessionIDParam(),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Center X in board units")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Center Y in board units")),
	), c.handleSpawnBase)

	c.mcpServer.AddTool(mcp.NewTool("add_elements",
		mcp.WithDescription("Place unlocked elements on the board at random positions"),
		sessionIDParam(),
		mcp.WithArray("elements",
			mcp.Required(),
			mcp.Description("Element names to add"),
			mcp.Items(map[string]interface{}{"type": "string"}),
		),
	), c.handleAddElements)

	c.mcpServer.AddTool(mcp.NewTool("move_token",
		mcp.WithDescription("Move a token. Dropping it over at least half of another token makes them react."),
		sessionIDParam(),
		tokenIDParam(),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Target center X")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Target center Y")),
		mcp.WithString("intent",
			mcp.Description("Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)"),
		),
	), c.handleMoveToken)

	c.mcpServer.AddTool(mcp.NewTool("copy_token",
		mcp.WithDescription("Split a token into two tokens of the same element"),
		sessionIDParam(),
		tokenIDParam(),
	), c.handleCopyToken)

	c.mcpServer.AddTool(mcp.NewTool("remove_token",
		mcp.WithDescription("Remove a token from the board"),
		sessionIDParam(),
		tokenIDParam(),
	), c.handleRemoveToken)

	c.mcpServer.AddTool(mcp.NewTool("clear_board",
		mcp.WithDescription("Remove every token from the board"),
		sessionIDParam(),
	), c.handleClearBoard)

	c.mcpServer.AddTool(mcp.NewTool("align_board",
		mcp.WithDescription("Arrange all tokens on a grid"),
		sessionIDParam(),
	), c.handleAlignBoard)

	c.mcpServer.AddTool(mcp.NewTool("reset_game",
		mcp.WithDescription("Relock every non-base element and clear the board"),
		sessionIDParam(),
	), c.handleReset)

	c.mcpServer.AddTool(mcp.NewTool("combination_history",
		mcp.WithDescription("Get combination history with pagination"),
		sessionIDParam(),
		mcp.WithNumber("page", mcp.Description("Page number (default 1)")),
		mcp.WithNumber("limit", mcp.Description("Entries per page (default 20, max 100)")),
		mcp.WithString("order",
			mcp.Description("Sort order (default desc)"),
			mcp.Enum("asc", "desc"),
		),
	), c.handleHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.NewTool("list_configs",
		mcp.WithDescription("List available recipe books"),
	), c.handleListConfigs)

	c.mcpServer.AddTool(mcp.NewTool("game_instructions",
		mcp.WithDescription("Get comprehensive game instructions and rules"),
	), c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID string, parts ...string) string {
	p := "/api/sessions/" + url.PathEscape(sessionID)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// bindSession decodes arguments and checks the session ID is present
func bindSession(request mcp.CallToolRequest, args interface{}, sessionID func() string) *mcp.CallToolResult {
	if err := request.BindArguments(args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err)
	}
	if sessionID() == "" {
		return mcp.NewToolResultError("session_id is required")
	}
	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args createSessionArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}

	body := map[string]string{}
	if args.ConfigID != "" {
		body["config_id"] = args.ConfigID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		progress := ""
		if s.GameState != nil {
			progress = fmt.Sprintf(", Discovered: %d/%d", s.GameState.DiscoveredCount, s.GameState.TotalElements)
		}
		fmt.Fprintf(&b, "- %s (Config: %s%s, Created: %s)\n",
			s.ID, s.ConfigName, progress, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if res := bindSession(request, &args, func() string { return args.SessionID }); res != nil {
		return res, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(args.SessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if res := bindSession(request, &args, func() string { return args.SessionID }); res != nil {
		return res, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(args.SessionID, "state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleBaseElements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.listElements(ctx, request, "base", "Base Elements")
}

func (c *Client) handleUnlockedElements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.listElements(ctx, request, "unlocked", "Unlocked Elements")
}

func (c *Client) listElements(ctx context.Context, request mcp.CallToolRequest, kind, title string) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if res := bindSession(request, &args, func() string { return args.SessionID }); res != nil {
		return res, nil
	}

	var response struct {
		Count    int                   `json:"count"`
		Elements []service.ElementInfo `json:"elements"`
	}
	if err := c.apiCall(ctx, "GET", sessionPath(args.SessionID, "elements", kind), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatElements(title, response.Elements)), nil
}

func (c *Client) handleCombine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args combineArgs
	if res := bindSession(request, &args, func() string { return args.SessionID }); res != nil {
		return res, nil
	}
	if args.First == "" || args.Second == "" {
		return mcp.NewToolResultError("both first and second are required"), nil
	}

	body := map[string]string{
		"first":  args.First,
		"second": args.Second,
	}

	var result service.CombineResult
	if err := c.apiCall(ctx, "POST", sessionPath(args.SessionID, "combine"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCombineResult(&result)), nil
}

func (c *Client) handleSpawnBase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args pointArgs
	if res := bindSession(request, &args, func() string { return args.SessionID }); res != nil {
		return res, nil
	}
	if args.X == nil || args.Y == nil {
		return mcp.NewToolResultError("both x and y are required"), nil
	}

	body := map[string]float64{"x": *args.X, "y": *args.Y}

	var result service.BoardResult
	if err := c.apiCall(ctx, "POST", sessionPath(args.SessionID, "board", "spawn"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardResult(&result)), nil
}

func (c *Client) handleAddElements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args addElementsArgs
	if res := bindSession(request, &args, func() string { return args.SessionID }); res != nil {
		return res, nil
	}
	if len(args.Elements) == 0 {
		return mcp.NewToolResultError("at least one element is required"), nil
	}

	body := map[string][]string{"elements": args.Elements}

	var result service.BoardResult
	if err := c.apiCall(ctx, "POST", sessionPath(args.SessionID, "board", "tokens"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardResult(&result)), nil
}

func (c *Client) handleMoveToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args tokenArgs
	if res := bindSession(request, &args, func() string { return args.SessionID }); res != nil {
		return res, nil
	}
	if args.TokenID == "" || args.X == nil || args.Y == nil {
		return mcp.NewToolResultError("token_id, x and y are required"), nil
	}

	body := map[string]float64{"x": *args.X, "y": *args.Y}

	var result service.MoveResult
	path := sessionPath(args.SessionID, "board", "tokens", url.PathEscape(args.TokenID), "move")
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleCopyToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args tokenArgs
	if res := bindSession(request, &args, func() string { return args.SessionID }); res != nil {
		return res, nil
	}
	if args.TokenID == "" {
		return mcp.NewToolResultError("token_id is required"), nil
	}

	var result service.BoardResult
	path := sessionPath(args.SessionID, "board", "tokens", url.PathEscape(args.TokenID), "copy")
	if err := c.apiCall(ctx, "POST", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardResult(&result)), nil
}

func (c *Client) handleRemoveToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args tokenArgs
	if res := bindSession(request, &args, func() string { return args.SessionID }); res != nil {
		return res, nil
	}
	if args.TokenID == "" {
		return mcp.NewToolResultError("token_id is required"), nil
	}

	var result service.BoardResult
	path := sessionPath(args.SessionID, "board", "tokens", url.PathEscape(args.TokenID))
	if err := c.apiCall(ctx, "DELETE", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardResult(&result)), nil
}

func (c *Client) handleClearBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.boardAction(ctx, request, "DELETE", "board")
}

func (c *Client) handleAlignBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.boardAction(ctx, request, "POST", "board", "align")
}

func (c *Client) boardAction(ctx context.Context, request mcp.CallToolRequest, method string, parts ...string) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if res := bindSession(request, &args, func() string { return args.SessionID }); res != nil {
		return res, nil
	}

	var result service.BoardResult
	if err := c.apiCall(ctx, method, sessionPath(args.SessionID, parts...), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sessionArgs
	if res := bindSession(request, &args, func() string { return args.SessionID }); res != nil {
		return res, nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(args.SessionID, "reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args historyArgs
	if res := bindSession(request, &args, func() string { return args.SessionID }); res != nil {
		return res, nil
	}

	params := url.Values{}
	if args.Page > 0 {
		params.Set("page", fmt.Sprint(args.Page))
	}
	if args.Limit > 0 {
		params.Set("limit", fmt.Sprint(args.Limit))
	}
	if args.Order != "" {
		params.Set("order", args.Order)
	}

	path := sessionPath(args.SessionID, "history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Recipe Books:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Elements: %d, Recipes: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.ElementCount, config.RecipeCount)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Alchemy Game - Complete Instructions

GAME OBJECTIVE:
Discover every element in the recipe book by combining elements you already have.

GAME MECHANICS:
• Base elements: Water, Earth, Air and Fire are unlocked from the start and can never be relocked
• Recipes: Each recipe turns an unordered pair of elements into a result ("Water + Fire" equals "Fire + Water")
• Discovery: The first time a recipe fires its result is unlocked for good
• Repeats: Combining a pair whose result is already unlocked still works, it just discovers nothing
• No reaction: A pair without a recipe does nothing
• Victory: The game is complete when every element is unlocked

TWO WAYS TO PLAY:
1. Direct: call combine with two unlocked element names
2. Board: place tokens and drag one onto another
   • spawn_base puts the four base elements in a square around (x, y)
   • add_elements places unlocked elements at random positions
   • move_token drops a token at (x, y); if it covers at least half of another token
     with a matching recipe, both are consumed and the result appears where you dropped it
   • copy_token splits a token into two, so you can combine an element with itself
   • The board holds a limited number of tokens; use clear_board or remove_token when full

BOARD GEOMETRY:
• Coordinates are token centers in board units, origin at the top-left
• game_state lists every token with its ID and position
• align_board arranges all tokens on a grid if they pile up

STRATEGY TIPS:
• Check unlocked_elements before combining; locked elements are rejected
• New elements open new recipes, so try each new element with everything you have
• combination_history shows what you already tried, including pairs that did nothing
• reset_game relocks everything except the base elements; history is kept

AVAILABLE TOOLS:
• create_session, get_session, list_sessions, list_configs
• game_state, base_elements, unlocked_elements
• combine, spawn_base, add_elements, move_token, copy_token, remove_token
• clear_board, align_board, reset_game, combination_history`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "Game state unavailable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recipe book: %s\n", state.ConfigName)
	fmt.Fprintf(&b, "Discovered: %d/%d", state.DiscoveredCount, state.TotalElements)
	if state.Complete {
		b.WriteString(" - COMPLETE!")
	}
	b.WriteString("\n")

	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}
	if state.LastCombination != nil {
		fmt.Fprintf(&b, "Last combination: %s\n", formatEntry(*state.LastCombination))
	}

	names := make([]string, 0, len(state.Unlocked))
	for _, id := range state.Unlocked {
		names = append(names, id.Name)
	}
	fmt.Fprintf(&b, "Unlocked: %s\n", strings.Join(names, ", "))

	fmt.Fprintf(&b, "\nBoard %.0fx%.0f, tokens %d/%d:\n", state.Board.Width, state.Board.Height, len(state.Tokens), state.Capacity)
	if len(state.Tokens) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, tok := range state.Tokens {
		fmt.Fprintf(&b, "- %s %s at (%.0f,%.0f)\n", tok.ID, tok.Element.Name, tok.Center.X, tok.Center.Y)
	}

	return b.String()
}

func formatElements(title string, elements []service.ElementInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):\n", title, len(elements))
	for _, el := range elements {
		marker := ""
		if el.Base {
			marker = " [base]"
		}
		fmt.Fprintf(&b, "- %s%s\n", el.Name, marker)
	}
	return b.String()
}

func formatEntry(entry engine.CombinationEntry) string {
	switch {
	case !entry.Matched():
		return fmt.Sprintf("%s + %s = nothing", entry.First, entry.Second)
	case entry.Discovery:
		return fmt.Sprintf("%s + %s = %s (NEW!)", entry.First, entry.Second, entry.Result)
	default:
		return fmt.Sprintf("%s + %s = %s", entry.First, entry.Second, entry.Result)
	}
}

func formatEvents(b *strings.Builder, events []service.GameEvent) {
	for _, ev := range events {
		switch ev.Type {
		case service.EventDiscovery:
			fmt.Fprintf(b, "🎉 Discovered %s!\n", ev.Element)
		case service.EventComplete:
			fmt.Fprintf(b, "🏆 %s\n", ev.Message)
		}
	}
}

func formatCombineResult(result *service.CombineResult) string {
	var b strings.Builder
	b.WriteString(formatEntry(result.Entry))
	b.WriteString("\n")
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	formatEvents(&b, result.Events)
	if result.GameState != nil {
		fmt.Fprintf(&b, "Discovered: %d/%d\n", result.GameState.DiscoveredCount, result.GameState.TotalElements)
	}
	return b.String()
}

func formatBoardResult(result *service.BoardResult) string {
	var b strings.Builder
	if len(result.Tokens) > 0 {
		b.WriteString("New tokens:\n")
		for _, tok := range result.Tokens {
			fmt.Fprintf(&b, "- %s %s at (%.0f,%.0f)\n", tok.ID, tok.Element.Name, tok.Center.X, tok.Center.Y)
		}
	}
	if result.Removed > 0 {
		fmt.Fprintf(&b, "Removed %d token(s)\n", result.Removed)
	}
	for _, ev := range result.Events {
		if len(result.Tokens) == 0 && result.Removed == 0 && ev.Message != "" {
			fmt.Fprintf(&b, "%s\n", ev.Message)
		}
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if out := result.Outcome; out != nil {
		fmt.Fprintf(&b, "Moved %s to (%.0f,%.0f)\n", out.Token.Element.Name, out.Token.Center.X, out.Token.Center.Y)
		switch {
		case out.Result != nil:
			fmt.Fprintf(&b, "Reaction: %s -> token %s\n", formatEntry(*out.Reaction), out.Result.ID)
		case out.Contact:
			b.WriteString("Touched another token but nothing happened\n")
		}
	}
	formatEvents(&b, result.Events)
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Combination History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalCombinations)

	if len(history.Combinations) == 0 {
		b.WriteString("(no combinations yet)\n")
	}
	for _, entry := range history.Combinations {
		fmt.Fprintf(&b, "%d. %s\n", entry.Number, formatEntry(entry))
	}

	return b.String()
}
