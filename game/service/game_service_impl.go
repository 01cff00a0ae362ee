package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/solitaire/game/engine"
)

var (
	// ErrConfigNotFound is returned when a session is created from an unknown preset
	ErrConfigNotFound = errors.New("config not found")
	// ErrSessionNotFound is returned for operations on an unknown session
	ErrSessionNotFound = errors.New("session not found")
)

// Option customizes the game service
type Option func(*gameServiceImpl)

// WithResultRecorder stores finished games of registered players
func WithResultRecorder(r ResultRecorder) Option {
	return func(s *gameServiceImpl) { s.recorder = r }
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	recorder ResultRecorder
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a preset display name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		PlayerID:       sess.PlayerID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Engine.View(),
		GameConfig:     sess.Config,
	}
}

// CreateSession deals a new game from a preset, or from the default preset when
// configName is empty
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName, playerID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				configIDs := make([]string, 0, len(availableConfigs))
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("%w: %q (available: %v): %v", ErrConfigNotFound, configName, configIDs, err)
			}
			return nil, fmt.Errorf("%w: %q: %v", ErrConfigNotFound, configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if playerID != "" {
		sess.PlayerID = playerID
		s.persist(sess.ID, "create")
	}

	log.Info().Str("session", sess.ID).Str("config", config.Name).Str("player", playerID).Msg("session created")

	info := s.sessionInfo(sess)
	if configName != "" {
		info.ConfigName = configName
	}
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, notFound(sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Draw turns over the next stock card or recycles the waste
func (s *gameServiceImpl) Draw(ctx context.Context, sessionID string) (*MoveResult, error) {
	return s.apply(ctx, sessionID, "draw", func(e *engine.GameEngine) engine.MoveOutcome {
		return e.Draw()
	})
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, move engine.Move) (*MoveResult, error) {
	return s.apply(ctx, sessionID, "move", func(e *engine.GameEngine) engine.MoveOutcome {
		return e.ExecuteMove(move.From, move.To, move.Count)
	})
}

// Undo restores the previous position
func (s *gameServiceImpl) Undo(ctx context.Context, sessionID string) (*MoveResult, error) {
	return s.apply(ctx, sessionID, "undo", func(e *engine.GameEngine) engine.MoveOutcome {
		if !e.Undo() {
			return engine.MoveOutcome{Reason: engine.NothingToUndo}
		}
		return engine.MoveOutcome{Applied: true}
	})
}

// Redo reapplies the last undone position
func (s *gameServiceImpl) Redo(ctx context.Context, sessionID string) (*MoveResult, error) {
	return s.apply(ctx, sessionID, "redo", func(e *engine.GameEngine) engine.MoveOutcome {
		if !e.Redo() {
			return engine.MoveOutcome{Reason: engine.NothingToRedo}
		}
		return engine.MoveOutcome{Applied: true}
	})
}

// Autocomplete plays every remaining card to the foundations
func (s *gameServiceImpl) Autocomplete(ctx context.Context, sessionID string) (*MoveResult, error) {
	return s.apply(ctx, sessionID, "autocomplete", func(e *engine.GameEngine) engine.MoveOutcome {
		return e.AutocompleteOutcome()
	})
}

// apply runs op against the session engine and describes what changed
func (s *gameServiceImpl) apply(ctx context.Context, sessionID, op string, fn func(*engine.GameEngine) engine.MoveOutcome) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, notFound(sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	before := sess.Engine.GetState()
	outcome := fn(sess.Engine)
	after := sess.Engine.GetState()

	result := &MoveResult{
		Success:    outcome.Applied,
		Reason:     outcome.Reason,
		Score:      after.Score,
		ScoreDelta: after.Score - before.Score,
		Won:        sess.Engine.HasWon(),
		State:      sess.Engine.View(),
	}

	if !outcome.Applied {
		if err := outcome.Err(); err != nil {
			result.Message = err.Error()
		} else {
			result.Message = "nothing to do"
		}
		return result, nil
	}

	result.Events = describeChange(op, before, after, time.Now())
	result.Message = result.Events[0].Message

	if result.Won && !before.HasWon() {
		s.record(ctx, sess)
	}

	s.persist(sessionID, op)
	return result, nil
}

// FinishGame ends the game for scoring. A win is recorded as soon as it happens, so
// finishing a won game only reports the summary.
func (s *gameServiceImpl) FinishGame(ctx context.Context, sessionID string) (*GameSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, notFound(sessionID, err)
	}

	if !sess.Recorded {
		s.record(ctx, sess)
		s.persist(sessionID, "finish")
	}

	return &GameSummary{
		SessionID:      sess.ID,
		Score:          sess.Engine.GetScore(),
		FinalScore:     finalScore(sess.Engine),
		ElapsedSeconds: int(sess.Engine.Elapsed().Seconds()),
		Won:            sess.Engine.HasWon(),
		Recorded:       sess.Recorded,
	}, nil
}

// record hands the result of a player's game to the recorder once
func (s *gameServiceImpl) record(ctx context.Context, sess *Session) {
	if s.recorder == nil || sess.PlayerID == "" || sess.Recorded {
		return
	}

	state := sess.Engine.GetState()
	elapsed := sess.Engine.Elapsed()
	result := GameResult{
		SessionID: sess.ID,
		PlayerID:  sess.PlayerID,
		ConfigID:  s.getConfigID(sess.Config.Name),
		StartedAt: state.StartedAt,
		EndedAt:   state.StartedAt.Add(elapsed),
		Score:     finalScore(sess.Engine),
		Duration:  elapsed,
		Won:       sess.Engine.HasWon(),
	}

	if err := s.recorder.RecordGame(ctx, result); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("failed to record game result")
		return
	}
	sess.Recorded = true
	log.Info().Str("session", sess.ID).Str("player", sess.PlayerID).Int("score", result.Score).Bool("won", result.Won).Msg("game recorded")
}

// finalScore applies the completion bonus only to won games
func finalScore(e *engine.GameEngine) int {
	if e.HasWon() {
		return e.FinalScore()
	}
	return e.GetScore()
}

// persist saves the session, logging instead of failing the operation
func (s *gameServiceImpl) persist(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Str("op", op).Msg("failed to persist session")
	}
}

// GetGameState returns the visible position of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, notFound(sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	v := sess.Engine.View()
	return &v, nil
}

// Hints lists the legal moves for a session, most useful first
func (s *gameServiceImpl) Hints(ctx context.Context, sessionID string) ([]engine.Hint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, notFound(sessionID, err)
	}
	return sess.Engine.Hints(), nil
}

// ListConfigs returns all available presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a preset
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func notFound(sessionID string, err error) error {
	if errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("session %q: %w", sessionID, err)
	}
	return fmt.Errorf("session %q: %w: %v", sessionID, ErrSessionNotFound, err)
}
