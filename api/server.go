package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/solitaire/game/config"
	"github.com/wricardo/solitaire/game/engine"
	"github.com/wricardo/solitaire/game/notation"
	"github.com/wricardo/solitaire/game/scores"
	"github.com/wricardo/solitaire/game/service"
	"github.com/wricardo/solitaire/game/session"
	"github.com/wricardo/solitaire/transport/websocket"
)

// ScoreStore is the part of the score database the API serves
type ScoreStore interface {
	Register(ctx context.Context, username, password string) (*scores.Player, error)
	Authenticate(ctx context.Context, username, password string) (*scores.Player, error)
	PlayerByID(ctx context.Context, id string) (*scores.Player, error)
	BestScores(ctx context.Context, limit int) ([]scores.BestScore, error)
	GameSessions(ctx context.Context, playerID string, limit int) ([]scores.GameRecord, error)
}

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	scores  ScoreStore
	auth    *Authenticator
	router  *mux.Router
}

// Option configures optional server features
type Option func(*Server)

// WithScores enables the player and leaderboard endpoints
func WithScores(store ScoreStore) Option {
	return func(s *Server) { s.scores = store }
}

// WithAuthenticator enables player tokens
func WithAuthenticator(a *Authenticator) Option {
	return func(s *Server) { s.auth = a }
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	if s.auth != nil {
		api.Use(s.auth.identify)
	}

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/draw", s.action(s.service.Draw)).Methods("POST")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/undo", s.action(s.service.Undo)).Methods("POST")
	api.HandleFunc("/sessions/{id}/redo", s.action(s.service.Redo)).Methods("POST")
	api.HandleFunc("/sessions/{id}/autocomplete", s.action(s.service.Autocomplete)).Methods("POST")
	api.HandleFunc("/sessions/{id}/commands", s.handleCommands).Methods("POST")
	api.HandleFunc("/sessions/{id}/hints", s.handleHints).Methods("GET")
	api.HandleFunc("/sessions/{id}/finish", s.handleFinish).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// Players and scores
	api.HandleFunc("/auth/register", s.handleRegister).Methods("POST")
	api.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	api.HandleFunc("/auth/me", requirePlayer(s.handleMe)).Methods("GET")
	api.HandleFunc("/scores/best", s.handleBestScores).Methods("GET")
	api.HandleFunc("/scores/games", s.handleGameSessions).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr picks the status code from the error chain
func respondErr(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, config.ErrConfigNotFound),
		errors.Is(err, scores.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConfigNotFound),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, session.ErrInvalidSessionID),
		errors.Is(err, scores.ErrInvalidUsername),
		errors.Is(err, scores.ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionAlreadyExists),
		errors.Is(err, scores.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, scores.ErrInvalidCredentials),
		errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id,omitempty"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	info, err := s.service.CreateSession(r.Context(), req.ConfigID, playerID(r.Context()))
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if query.Get("mine") == "true" {
		me := playerID(r.Context())
		mine := sessions[:0]
		for _, info := range sessions {
			if me != "" && info.PlayerID == me {
				mine = append(mine, info)
			}
		}
		sessions = mine
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetGameState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// action adapts a no-argument game operation to a handler
func (s *Server) action(op func(ctx context.Context, sessionID string) (*service.MoveResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]
		result, err := op(r.Context(), sessionID)
		if err != nil {
			respondErr(w, err)
			return
		}
		s.publish(sessionID, result)
		respondJSON(w, http.StatusOK, result)
	}
}

// MoveRequest is the body of a move. Locations accept the same tokens as the
// terminal game: "w", "3", "t3", "h", "foundation:spades".
type MoveRequest struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count,omitempty"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	from, err := notation.ParseLocation(req.From)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("from: %v", err))
		return
	}
	to, err := notation.ParseLocation(req.To)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("to: %v", err))
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	result, err := s.service.Move(r.Context(), sessionID, engine.Move{From: from, To: to, Count: req.Count})
	if err != nil {
		respondErr(w, err)
		return
	}

	s.publish(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

// CommandsResult reports a batch of terminal commands
type CommandsResult struct {
	Executed      int                   `json:"executed"`
	Requested     int                   `json:"requested"`
	StoppedReason string                `json:"stopped_reason,omitempty"`
	Results       []*service.MoveResult `json:"results"`
	State         *engine.View          `json:"state,omitempty"`
}

// handleCommands runs terminal commands ("p", "m 1 h", "u") in order and
// stops at the first rejection or a win
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Commands []string `json:"commands"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Commands) == 0 {
		respondError(w, http.StatusBadRequest, "commands are required")
		return
	}

	cmds := make([]notation.Command, len(req.Commands))
	for i, line := range req.Commands {
		cmd, err := notation.ParseCommand(line)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("command %d: %v", i+1, err))
			return
		}
		if !isAction(cmd.Kind) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("command %d: %s is not a game action", i+1, cmd.Kind))
			return
		}
		cmds[i] = cmd
	}

	out := CommandsResult{Requested: len(cmds), Results: make([]*service.MoveResult, 0, len(cmds))}
	for i, cmd := range cmds {
		result, err := s.runCommand(r.Context(), sessionID, cmd)
		if err != nil {
			if i == 0 {
				respondErr(w, err)
				return
			}
			out.StoppedReason = err.Error()
			break
		}
		out.Results = append(out.Results, result)
		out.State = &result.State
		if !result.Success {
			out.StoppedReason = fmt.Sprintf("command %d rejected: %s", i+1, result.Message)
			break
		}
		out.Executed++
		if result.Won {
			if i < len(cmds)-1 {
				out.StoppedReason = "game won"
			}
			break
		}
	}

	if len(out.Results) > 0 {
		s.publish(sessionID, out.Results[len(out.Results)-1])
	}
	log.Info().Str("session", sessionID).Int("executed", out.Executed).Int("requested", out.Requested).
		Str("stopped", out.StoppedReason).Msg("commands")

	respondJSON(w, http.StatusOK, out)
}

func isAction(kind notation.CommandKind) bool {
	switch kind {
	case notation.CmdDraw, notation.CmdMove, notation.CmdUndo, notation.CmdRedo, notation.CmdAutocomplete:
		return true
	}
	return false
}

func (s *Server) runCommand(ctx context.Context, sessionID string, cmd notation.Command) (*service.MoveResult, error) {
	switch cmd.Kind {
	case notation.CmdDraw:
		return s.service.Draw(ctx, sessionID)
	case notation.CmdMove:
		return s.service.Move(ctx, sessionID, cmd.Move)
	case notation.CmdUndo:
		return s.service.Undo(ctx, sessionID)
	case notation.CmdRedo:
		return s.service.Redo(ctx, sessionID)
	case notation.CmdAutocomplete:
		return s.service.Autocomplete(ctx, sessionID)
	}
	return nil, fmt.Errorf("%s is not a game action", cmd.Kind)
}

// HintView is a suggested move with the command that plays it
type HintView struct {
	engine.Hint
	Command string `json:"command"`
}

func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	hints, err := s.service.Hints(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondErr(w, err)
		return
	}

	out := make([]HintView, len(hints))
	for i, h := range hints {
		out[i] = HintView{Hint: h, Command: notation.FormatMove(h.Move)}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(out),
		"hints": out,
	})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.FinishGame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// publish pushes the new board to websocket watchers after an accepted action
func (s *Server) publish(sessionID string, result *service.MoveResult) {
	if s.hub == nil || !result.Success {
		return
	}
	state := result.State
	s.hub.BroadcastToSession(sessionID, &state)
	for _, ev := range result.Events {
		if ev.Type == service.EventVictory {
			s.hub.BroadcastEvent(sessionID, service.EventVictory, map[string]int{"score": result.Score})
		}
	}
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	cfg, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id,omitempty"`
		engine.GameConfig
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	id := req.ID
	if id == "" {
		id = strings.ReplaceAll(strings.TrimSpace(req.Name), " ", "_")
	}
	id = strings.ToLower(id)

	cfg := req.GameConfig
	if err := s.service.SaveConfig(r.Context(), id, &cfg); err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": id,
	})
}

// Player Handlers

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Player    *scores.Player `json:"player"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
}

func (s *Server) playersEnabled(w http.ResponseWriter) bool {
	if s.scores == nil || s.auth == nil {
		respondError(w, http.StatusServiceUnavailable, "player accounts are not enabled")
		return false
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.playersEnabled(w) {
		return
	}
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	player, err := s.scores.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	log.Info().Str("player", player.ID).Str("username", player.Username).Msg("player registered")
	s.respondToken(w, http.StatusCreated, player)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.playersEnabled(w) {
		return
	}
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	player, err := s.scores.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	s.respondToken(w, http.StatusOK, player)
}

func (s *Server) respondToken(w http.ResponseWriter, status int, player *scores.Player) {
	token, exp, err := s.auth.Issue(player.ID, player.Username)
	if err != nil {
		respondErr(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, status, AuthResponse{Player: player, Token: token, ExpiresAt: exp})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if !s.playersEnabled(w) {
		return
	}
	player, err := s.scores.PlayerByID(r.Context(), playerID(r.Context()))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, player)
}

func (s *Server) handleBestScores(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		respondError(w, http.StatusServiceUnavailable, "scores are not enabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	best, err := s.scores.BestScores(r.Context(), limit)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, best)
}

// handleGameSessions lists recent games; mine=true restricts them to the caller
func (s *Server) handleGameSessions(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		respondError(w, http.StatusServiceUnavailable, "scores are not enabled")
		return
	}
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))

	var player string
	if query.Get("mine") == "true" {
		player = playerID(r.Context())
		if player == "" {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
	}

	games, err := s.scores.GameSessions(r.Context(), player, limit)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, games)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
