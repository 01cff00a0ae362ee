package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Player is a registered player
type Player struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func validateRegistration(username, password string) error {
	if len(username) < 3 || len(username) > 24 {
		return ErrInvalidUsername
	}
	for _, r := range username {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ErrInvalidUsername
		}
	}
	if len(password) < 8 || len(password) > 100 {
		return ErrInvalidPassword
	}
	return nil
}

// Register creates a player. Usernames are unique regardless of case.
func (s *Store) Register(ctx context.Context, username, password string) (*Player, error) {
	username = strings.TrimSpace(username)
	if err := validateRegistration(username, password); err != nil {
		return nil, err
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM players WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &Player{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: s.now().Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO players (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		p.ID, p.Username, string(hash), formatTime(p.CreatedAt))
	if err != nil {
		// the unique index catches a concurrent registration
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return p, nil
}

// Authenticate returns the player when the password matches
func (s *Store) Authenticate(ctx context.Context, username, password string) (*Player, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, created_at, password_hash FROM players WHERE lower(username)=lower(?)`,
		strings.TrimSpace(username))

	var p Player
	var created, hash string
	if err := row.Scan(&p.ID, &p.Username, &created, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	p.CreatedAt = parseTime(created)
	return &p, nil
}

// PlayerByID looks a player up by ID
func (s *Store) PlayerByID(ctx context.Context, id string) (*Player, error) {
	return s.scanPlayer(s.db.QueryRowContext(ctx, `SELECT id, username, created_at FROM players WHERE id=?`, id))
}

// PlayerByUsername looks a player up by name, ignoring case
func (s *Store) PlayerByUsername(ctx context.Context, username string) (*Player, error) {
	return s.scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM players WHERE lower(username)=lower(?)`,
		strings.TrimSpace(username)))
}

func (s *Store) scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	var created string
	if err := row.Scan(&p.ID, &p.Username, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	p.CreatedAt = parseTime(created)
	return &p, nil
}
