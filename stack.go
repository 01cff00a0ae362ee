package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/solitaire/api"
	"github.com/wricardo/solitaire/game/config"
	"github.com/wricardo/solitaire/game/scores"
	"github.com/wricardo/solitaire/game/service"
	"github.com/wricardo/solitaire/game/session"
)

const (
	sessionMaxAge       = 24 * time.Hour
	sessionCleanupEvery = time.Hour
	storeSyncEvery      = 5 * time.Second
)

// settings shared by every command that builds the game stack
type settings struct {
	configDir    string
	sessionStore string
	sessionsDir  string
	redisAddr    string
	dbPath       string
	jwtSecret    string
	jwtTTL       time.Duration
}

func settingsFrom(cmd *cli.Command) (settings, error) {
	s := settings{
		configDir:    cmd.String("config-dir"),
		sessionStore: strings.ToLower(strings.TrimSpace(cmd.String("session-store"))),
		sessionsDir:  cmd.String("sessions-dir"),
		redisAddr:    cmd.String("redis-addr"),
		dbPath:       strings.TrimSpace(cmd.String("db-path")),
		jwtSecret:    cmd.String("jwt-secret"),
	}
	if raw := strings.TrimSpace(cmd.String("jwt-expires-hours")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return s, fmt.Errorf("invalid jwt-expires-hours %q", raw)
		}
		s.jwtTTL = time.Duration(hours) * time.Hour
	}
	return s, nil
}

// stack is the wired game: presets, sessions, optional score store and the service
type stack struct {
	configs     *config.Manager
	sessions    *session.Manager
	persistence session.SessionPersistence
	scores      *scores.Store
	service     service.GameService
	closers     []io.Closer
}

// buildStack wires config manager, session persistence and the game service.
func buildStack(ctx context.Context, s settings) (*stack, error) {
	configs, err := config.NewManager(s.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	st := &stack{configs: configs}

	switch s.sessionStore {
	case "", "file":
		fp, err := session.NewFilePersistence(s.sessionsDir, configs)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		st.persistence = fp
	case "redis":
		rp, err := session.NewRedisPersistence(ctx, s.redisAddr, 0, configs)
		if err != nil {
			return nil, err
		}
		st.persistence = rp
		st.closers = append(st.closers, rp)
	case "memory":
	default:
		return nil, fmt.Errorf("unknown session store %q (want file, redis or memory)", s.sessionStore)
	}

	if st.persistence != nil {
		st.sessions = session.NewManagerWithPersistence(st.persistence)
		if err := st.sessions.LoadPersistedSessions(); err != nil {
			log.Warn().Err(err).Msg("failed to load persisted sessions")
		}
	} else {
		st.sessions = session.NewManager()
	}

	var opts []service.Option
	if s.dbPath != "" {
		store, err := scores.Open(s.dbPath)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to open score database: %w", err)
		}
		st.scores = store
		st.closers = append(st.closers, store)
		opts = append(opts, service.WithResultRecorder(store))
	}

	st.service = service.NewGameService(st.sessions, configs, opts...)
	log.Debug().
		Str("session_store", s.sessionStore).
		Int("sessions", st.sessions.Count()).
		Bool("scores", st.scores != nil).
		Msg("game stack ready")
	return st, nil
}

// apiOptions enables the player and score endpoints when a score store is open.
// Without JWT_SECRET a random secret is used, so tokens do not survive a restart.
func (st *stack) apiOptions(s settings) ([]api.Option, error) {
	if st.scores == nil {
		return nil, nil
	}
	secret := s.jwtSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		secret = hex.EncodeToString(buf)
		log.Warn().Msg("JWT_SECRET not set, using a random secret for this run")
	}
	auth, err := api.NewAuthenticator(secret, s.jwtTTL)
	if err != nil {
		return nil, err
	}
	return []api.Option{api.WithScores(st.scores), api.WithAuthenticator(auth)}, nil
}

// startMaintenance runs the background session routines until ctx is done
func (st *stack) startMaintenance(ctx context.Context) {
	go sessionCleanupRoutine(ctx, st.sessions)
	if st.persistence != nil {
		go storeSyncRoutine(ctx, st.sessions, st.persistence)
	}
}

// Close releases the store connections
func (st *stack) Close() {
	for i := len(st.closers) - 1; i >= 0; i-- {
		if err := st.closers[i].Close(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
	st.closers = nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(sessionCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// storeSyncRoutine drops sessions from memory once they vanish from the store,
// e.g. a session file deleted by hand or a redis key that expired.
func storeSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(storeSyncEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned := pruneOrphans(manager, persistence)
			if pruned > 0 {
				log.Info().Int("pruned", pruned).Msg("store sync: pruned orphaned sessions from memory")
			}
		}
	}
}

func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.Debug().Str("session", sess.ID).Msg("pruned session from memory")
		}
	}
	return pruned
}
