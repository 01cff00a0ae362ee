package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/solitaire/game/engine"
	"github.com/wricardo/solitaire/game/notation"
	"github.com/wricardo/solitaire/game/service"
)

const maxAttempts = 4

// Client plays one session through the REST API
type Client struct {
	baseURL   string
	token     string
	sessionID string
	client    *http.Client
	retry     backoff.Backoff
}

// NewClient creates a client for the API at baseURL. A non-empty token makes the
// session belong to that player.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: backoff.Backoff{Min: 100 * time.Millisecond, Max: 2 * time.Second, Factor: 2, Jitter: true},
	}
}

// apiError is an answer the server gave on purpose; it is never retried
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s (%d)", e.message, e.status)
}

// do sends a JSON request and decodes the answer into out. Connection failures
// and 5xx answers are retried with exponential backoff.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	c.retry.Reset()
	for attempt := 1; ; attempt++ {
		err := c.once(ctx, method, path, payload, out)
		var apiErr *apiError
		if err == nil || (errors.As(err, &apiErr) && apiErr.status < 500) || attempt == maxAttempts {
			return err
		}
		wait := c.retry.Duration()
		log.Warn().Err(err).Str("path", path).Dur("retry_in", wait).Msg("request failed")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &apiError{status: resp.StatusCode, message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

// CreateSession deals a new game and makes it the client's session
func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", map[string]string{"config_id": configID}, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

// UseSession resumes an existing session
func (c *Client) UseSession(id string) {
	c.sessionID = id
}

// State fetches the board
func (c *Client) State(ctx context.Context) (*engine.View, error) {
	var v engine.View
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &v); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &v, nil
}

// Hints fetches the legal moves in priority order
func (c *Client) Hints(ctx context.Context) ([]engine.Hint, error) {
	var resp struct {
		Hints []engine.Hint `json:"hints"`
	}
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/hints"), nil, &resp); err != nil {
		return nil, fmt.Errorf("get hints: %w", err)
	}
	return resp.Hints, nil
}

func (c *Client) action(ctx context.Context, name string, body any) (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/"+name), body, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &result, nil
}

// Draw turns a stock card or recycles the waste
func (c *Client) Draw(ctx context.Context) (*service.MoveResult, error) {
	return c.action(ctx, "draw", nil)
}

// Move sends m in the short notation the API accepts
func (c *Client) Move(ctx context.Context, m engine.Move) (*service.MoveResult, error) {
	return c.action(ctx, "move", map[string]any{
		"from":  notation.FormatLocation(m.From),
		"to":    notation.FormatLocation(m.To),
		"count": m.Count,
	})
}

// Autocomplete plays every remaining card to the foundations when possible
func (c *Client) Autocomplete(ctx context.Context) (*service.MoveResult, error) {
	return c.action(ctx, "autocomplete", nil)
}

// Finish ends the game and records the result for the token's player
func (c *Client) Finish(ctx context.Context) (*service.GameSummary, error) {
	var summary service.GameSummary
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/finish"), nil, &summary); err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}
	return &summary, nil
}
