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

	"github.com/wricardo/solitaire/game/engine"
	"github.com/wricardo/solitaire/game/render"
	"github.com/wricardo/solitaire/game/scores"
	"github.com/wricardo/solitaire/game/service"
)

// Version is reported to MCP clients
const Version = "1.0.0"

// Client is a thin MCP server that proxies every tool to the REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithToken sends a player token with every request so new sessions belong to
// that player
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Klondike Solitaire",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Klondike Solitaire - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GOAL:
Move all 52 cards to the four foundations, Ace to King by suit.

AVAILABLE TOOLS:
- create_session: Start a new game (optionally from a deal preset)
- list_sessions: List active games
- game_state: Show the board
- draw: Turn the next stock card, or recycle the waste when the stock is empty
- move: Move cards between waste, tableau columns and foundations - requires intent
- play: Run several commands at once ("p", "m w 3", "u") - requires intent
- undo / redo: Step through history
- autocomplete: Finish the game once every card is face-up
- hint: Suggested moves, best first
- finish_game: End the game and record the score
- list_configs: Available deal presets
- best_scores: Leaderboard
- game_instructions: Full rules and notation

NOTE: The 'intent' parameter on move and play serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

var sessionIDProp = stringProp("Session ID")

// sessionTool declares a tool whose only required argument is session_id
func sessionTool(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProp},
			Required:   []string{"session_id"},
		},
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session, optionally from a deal preset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": stringProp("Deal preset to use, see list_configs (optional)"),
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	// Game operations
	c.mcpServer.AddTool(sessionTool("game_state", "Show the current board as text followed by its JSON view"), c.handleGameState)
	c.mcpServer.AddTool(sessionTool("draw", "Turn the next stock card onto the waste, or recycle the waste when the stock is empty"), c.handleDraw)
	c.mcpServer.AddTool(sessionTool("undo", "Undo the last action (costs 15 points)"), c.handleUndo)
	c.mcpServer.AddTool(sessionTool("redo", "Redo the last undone action"), c.handleRedo)
	c.mcpServer.AddTool(sessionTool("autocomplete", "Move every remaining card to the foundations. Needs an empty waste and no face-down cards"), c.handleAutocomplete)
	c.mcpServer.AddTool(sessionTool("hint", "List legal moves, best first"), c.handleHint)
	c.mcpServer.AddTool(sessionTool("finish_game", "End the game and record the result for the session's player"), c.handleFinishGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move cards. Locations: w (waste), 1-7 (tableau columns), h/d/c/s (foundations by suit)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"from":       stringProp("Source pile: w, 1-7, h, d, c or s"),
				"to":         stringProp("Destination pile: 1-7, h, d, c or s"),
				"count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of face-up cards to move between tableau columns (default 1)",
				},
				"intent": stringProp("Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)"),
			},
			Required: []string{"session_id", "from", "to"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play",
		Description: "Run several commands in order, stopping at the first rejected one. Commands: p (draw), m <from> <to> [n], u (undo), r (redo), a (autocomplete)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProp,
				"commands": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Commands such as [\"p\", \"m w 3\", \"m 7 h\"]",
				},
				"intent": stringProp("Brief explanation of the intent behind this sequence (serves as a rubber duck to help explain your reasoning)"),
			},
			Required: []string{"session_id", "commands"},
		},
	}, c.handlePlay)

	// Configuration and scores
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available deal presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "best_scores",
		Description: "Show the leaderboard of best winning scores",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{"type": "integer", "description": "Number of entries (default 15)"},
			},
		},
	}, c.handleBestScores)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules, scoring and command notation",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall sends a JSON request and decodes the JSON answer into result
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
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

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(id) + suffix, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]string{}
	if id, _ := args["config_id"].(string); id != "" {
		body["config_id"] = id
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", info.ID, info.ConfigName, render.String(info.State))
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
		status := "in progress"
		if s.State.Won {
			status = "won"
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Score: %d, %s, Last played: %s)\n",
			s.ID, s.ConfigName, s.State.Score, status, s.LastAccessedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var view engine.View
	if err := c.apiCall(ctx, "GET", path, nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&view)), nil
}

func (c *Client) action(ctx context.Context, request mcp.CallToolRequest, suffix string, body interface{}) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), suffix)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleDraw(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.action(ctx, request, "/draw", nil)
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.action(ctx, request, "/undo", nil)
}

func (c *Client) handleRedo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.action(ctx, request, "/redo", nil)
}

func (c *Client) handleAutocomplete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.action(ctx, request, "/autocomplete", nil)
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	from, _ := args["from"].(string)
	to, _ := args["to"].(string)
	if from == "" || to == "" {
		return mcp.NewToolResultError("from and to are required"), nil
	}

	// intent is not forwarded

	body := map[string]interface{}{"from": from, "to": to}
	if count, ok := args["count"].(float64); ok && count > 0 {
		body["count"] = int(count)
	}
	return c.action(ctx, request, "/move", body)
}

func (c *Client) handlePlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/commands")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	raw, _ := args["commands"].([]interface{})
	commands := make([]string, 0, len(raw))
	for _, r := range raw {
		if cmd, ok := r.(string); ok {
			commands = append(commands, cmd)
		}
	}

	var result playResult
	if err := c.apiCall(ctx, "POST", path, map[string]interface{}{"commands": commands}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPlayResult(commands, &result)), nil
}

type hintView struct {
	engine.Hint
	Command string `json:"command"`
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/hints")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Count int        `json:"count"`
		Hints []hintView `json:"hints"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(response.Hints) == 0 {
		return mcp.NewToolResultText("No moves available. Draw from the stock, or finish the game if the stock and waste are exhausted."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Suggested moves (%d):\n", response.Count)
	for i, h := range response.Hints {
		fmt.Fprintf(&b, "%d. %s", i+1, h.Command)
		if h.ScoreDelta != 0 {
			fmt.Fprintf(&b, "  (%+d)", h.ScoreDelta)
		}
		if h.Reveals {
			b.WriteString("  reveals a card")
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleFinishGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/finish")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var summary service.GameSummary
	if err := c.apiCall(ctx, "POST", path, nil, &summary); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	if summary.Won {
		fmt.Fprintf(&b, "🎉 Game won in %s\n", render.Clock(summary.ElapsedSeconds))
		fmt.Fprintf(&b, "Score: %d, final score with time bonus: %d\n", summary.Score, summary.FinalScore)
	} else {
		fmt.Fprintf(&b, "Game over after %s\nScore: %d\n", render.Clock(summary.ElapsedSeconds), summary.Score)
	}
	if summary.Recorded {
		b.WriteString("Result recorded.\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available deal presets:\n\n")
	for _, cfg := range configs {
		deal := "random deal"
		if cfg.Seed != nil {
			deal = fmt.Sprintf("fixed deal, seed %d", *cfg.Seed)
		}
		fmt.Fprintf(&b, "• %s (config_id: %s, %s)\n  %s\n\n", cfg.Name, cfg.ConfigID, deal, cfg.Description)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleBestScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/scores/best"
	if limit, ok := arguments(request)["limit"].(float64); ok && limit > 0 {
		path += fmt.Sprintf("?limit=%d", int(limit))
	}

	var best []scores.BestScore
	if err := c.apiCall(ctx, "GET", path, nil, &best); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(best) == 0 {
		return mcp.NewToolResultText("No winning games recorded yet."), nil
	}

	rows := make([][]string, len(best))
	for i, s := range best {
		rows[i] = []string{fmt.Sprint(i + 1), s.Username, fmt.Sprint(s.Score), render.Clock(s.DurationSeconds)}
	}
	var b strings.Builder
	render.Table(&b, []string{"#", "Player", "Score", "Time"}, rows)
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `🃏 Klondike Solitaire - Complete Instructions

GOAL:
Build the four foundations up by suit from Ace to King. The game is won when
all 52 cards are on the foundations.

LAYOUT:
• Tableau: 7 columns. Column n starts with n cards, only the last one face-up.
• Stock: the 24 undealt cards, face-down.
• Waste: cards turned from the stock, one at a time. Only the top card plays.
• Foundations: four slots (h, d, c, s). Any Ace starts an empty slot.

RULES:
• Tableau columns build down in alternating colours (red 7 on black 8).
• Only a King may go into an empty column.
• Any face-up run can move between columns if its top card fits.
• A foundation takes the next rank of the suit it was started with, one card at a time.
• A face-down card is turned over when it becomes the last card of its column.
• When the stock is empty, drawing turns the waste back into the stock.

SCORING:
• Draw: +2            • Recycle the waste: -20
• Waste → tableau: +10  • Waste → foundation: +15
• Tableau → foundation: +5  • Foundation → tableau: -5
• Undo: -15
• A win adds a completion bonus of 100 and a time bonus that shrinks the
  longer the game takes.

NOTATION (move tool and play tool):
• w = waste, 1-7 = tableau columns, h d c s = foundations
• play commands: p (draw), m <from> <to> [n], u (undo), r (redo), a (autocomplete)
  e.g. ["p", "m w 3", "m 6 2 3", "m 1 h"]

STRATEGY TIPS:
1. Ask for a hint when unsure. Moves that reveal face-down cards come first.
2. Empty a column only when a King is ready to fill it.
3. Undo is expensive. Think before playing a card from the foundation.
4. Once every card is face-up and the waste is empty, call autocomplete.`

// Formatting helpers

func formatGameState(view *engine.View) string {
	var b strings.Builder
	b.WriteString(render.String(*view))

	var status []string
	if view.Won {
		status = append(status, "🎉 VICTORY! All cards are on the foundations.")
	} else if view.CanAutocomplete {
		status = append(status, "Every card is face-up: autocomplete can finish the game.")
	}
	if view.CanUndo {
		status = append(status, "undo available")
	}
	if view.CanRedo {
		status = append(status, "redo available")
	}
	if len(status) > 0 {
		b.WriteString("\n" + strings.Join(status, "; ") + "\n")
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err == nil {
		b.WriteString("\nJSON:\n")
		b.Write(data)
		b.WriteString("\n")
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder

	if result.Success {
		fmt.Fprintf(&b, "✅ %s\n", result.Message)
	} else {
		fmt.Fprintf(&b, "❌ Rejected: %s", result.Message)
		if result.Reason != engine.ReasonNone {
			fmt.Fprintf(&b, " (%s)", result.Reason)
		}
		b.WriteString("\n")
	}

	for _, ev := range result.Events {
		if ev.Message != result.Message {
			fmt.Fprintf(&b, "  • %s\n", ev.Message)
		}
	}

	fmt.Fprintf(&b, "Score: %d", result.Score)
	if result.ScoreDelta != 0 {
		fmt.Fprintf(&b, " (%+d)", result.ScoreDelta)
	}
	b.WriteString("\n")

	if result.Won {
		b.WriteString("🎉 VICTORY! Call finish_game to record the result.\n")
	}

	if result.Success {
		b.WriteString("\n")
		b.WriteString(render.String(result.State))
	}
	return b.String()
}

type playResult struct {
	Executed      int                   `json:"executed"`
	Requested     int                   `json:"requested"`
	StoppedReason string                `json:"stopped_reason,omitempty"`
	Results       []*service.MoveResult `json:"results"`
	State         *engine.View          `json:"state,omitempty"`
}

func formatPlayResult(commands []string, result *playResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Executed %d/%d commands\n", result.Executed, result.Requested)

	for i, r := range result.Results {
		cmd := ""
		if i < len(commands) {
			cmd = commands[i]
		}
		mark := "✅"
		if !r.Success {
			mark = "❌"
		}
		fmt.Fprintf(&b, "%2d. %-10s %s %s (score %d)\n", i+1, cmd, mark, r.Message, r.Score)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}

	if result.State != nil {
		b.WriteString("\n")
		b.WriteString(render.String(*result.State))
		if result.State.Won {
			b.WriteString("\n🎉 VICTORY! Call finish_game to record the result.\n")
		}
	}
	return b.String()
}
