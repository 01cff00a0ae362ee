package scores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wricardo/solitaire/game/service"
)

// GameRecord is one finished game
type GameRecord struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	SessionID       string    `json:"session_id"`
	ConfigID        string    `json:"config_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Score           int       `json:"score"`
	DurationSeconds int       `json:"duration_seconds"`
	Won             bool      `json:"won"`
}

// BestScore is a player's best winning score
type BestScore struct {
	Username        string    `json:"username"`
	Score           int       `json:"score"`
	DurationSeconds int       `json:"duration_seconds"`
	AchievedAt      time.Time `json:"achieved_at"`
}

var _ service.ResultRecorder = (*Store)(nil)

// RecordGame stores a finished game. A win also replaces the player's best score
// when it is higher, or equal and faster.
func (s *Store) RecordGame(ctx context.Context, result service.GameResult) error {
	if _, err := s.PlayerByID(ctx, result.PlayerID); err != nil {
		return err
	}

	duration := int(result.Duration.Seconds())
	end := result.EndedAt
	if end.IsZero() {
		end = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO game_sessions
            (player_id, session_id, config_id, start_time, end_time, score, duration, won)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.PlayerID, result.SessionID, result.ConfigID,
		formatTime(result.StartedAt), formatTime(end), result.Score, duration, result.Won,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	if result.Won {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO best_scores (player_id, score, duration, achieved_at)
            VALUES (?, ?, ?, ?)
            ON CONFLICT (player_id) DO UPDATE SET
                score = excluded.score,
                duration = excluded.duration,
                achieved_at = excluded.achieved_at
            WHERE excluded.score > best_scores.score
               OR (excluded.score = best_scores.score AND excluded.duration < best_scores.duration)`,
			result.PlayerID, result.Score, duration, formatTime(end),
		)
		if err != nil {
			return fmt.Errorf("update best score: %w", err)
		}
	}

	return tx.Commit()
}

// BestScores lists the best score of each player, highest first and faster first
// on ties
func (s *Store) BestScores(ctx context.Context, limit int) ([]BestScore, error) {
	if limit <= 0 {
		limit = DefaultBestScoresLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT p.username, b.score, b.duration, b.achieved_at
        FROM best_scores b
        JOIN players p ON p.id = b.player_id
        ORDER BY b.score DESC, b.duration ASC, b.achieved_at ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BestScore, 0, limit)
	for rows.Next() {
		var b BestScore
		var achieved string
		if err := rows.Scan(&b.Username, &b.Score, &b.DurationSeconds, &achieved); err != nil {
			return nil, err
		}
		b.AchievedAt = parseTime(achieved)
		out = append(out, b)
	}
	return out, rows.Err()
}

// GameSessions lists finished games, newest first. An empty playerID lists every
// player's games.
func (s *Store) GameSessions(ctx context.Context, playerID string, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = DefaultGameSessionsLimit
	}

	query := `
        SELECT g.id, p.username, g.session_id, g.config_id, g.start_time, g.end_time,
               g.score, g.duration, g.won
        FROM game_sessions g
        JOIN players p ON p.id = g.player_id`
	args := []any{}
	if playerID != "" {
		query += ` WHERE g.player_id = ?`
		args = append(args, playerID)
	}
	query += ` ORDER BY g.start_time DESC, g.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]GameRecord, 0, limit)
	for rows.Next() {
		var g GameRecord
		var start string
		var end sql.NullString
		if err := rows.Scan(&g.ID, &g.Username, &g.SessionID, &g.ConfigID, &start, &end,
			&g.Score, &g.DurationSeconds, &g.Won); err != nil {
			return nil, err
		}
		g.StartTime = parseTime(start)
		if end.Valid {
			g.EndTime = parseTime(end.String)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
