package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/solitaire/api"
	"github.com/wricardo/solitaire/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %s", Version)
	}
	if AppName != "Klondike Solitaire" {
		t.Errorf("Expected app name Klondike Solitaire, got %s", AppName)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf

	if err := app.Run(context.Background(), []string{"solitaire", "version"}); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "Klondike Solitaire v1.0.0") {
		t.Errorf("Expected version line, got %q", got)
	}
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		level string
		debug bool
		want  zerolog.Level
	}{
		{"warn", false, zerolog.WarnLevel},
		{"ERROR", false, zerolog.ErrorLevel},
		{"", false, zerolog.InfoLevel},
		{"nonsense", false, zerolog.InfoLevel},
		{"error", true, zerolog.DebugLevel},
	}
	for _, tt := range tests {
		setupLogging(tt.level, tt.debug)
		if got := zerolog.GlobalLevel(); got != tt.want {
			t.Errorf("setupLogging(%q, %v): expected %s, got %s", tt.level, tt.debug, tt.want, got)
		}
	}
}

func parseSettings(t *testing.T, args ...string) (settings, error) {
	t.Helper()
	var got settings
	var parseErr error
	cmd := &cli.Command{
		Name:  "test",
		Flags: globalFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			got, parseErr = settingsFrom(cmd)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		t.Fatalf("run: %v", err)
	}
	return got, parseErr
}

func TestSettingsFrom(t *testing.T) {
	s, err := parseSettings(t, "--session-store", "Redis", "--jwt-expires-hours", "5", "--db-path", "")
	if err != nil {
		t.Fatalf("settingsFrom failed: %v", err)
	}
	if s.sessionStore != "redis" {
		t.Errorf("Expected session store redis, got %q", s.sessionStore)
	}
	if s.jwtTTL != 5*time.Hour {
		t.Errorf("Expected ttl 5h, got %v", s.jwtTTL)
	}
	if s.dbPath != "" {
		t.Errorf("Expected empty db path, got %q", s.dbPath)
	}

	if _, err := parseSettings(t, "--jwt-expires-hours", "soon"); err == nil {
		t.Error("Expected error for invalid jwt-expires-hours")
	}
}

func TestListenAddr(t *testing.T) {
	tests := []struct {
		addr, host, port string
		want             string
		wantErr          bool
	}{
		{"", "localhost", "8080", "localhost:8080", false},
		{"", "0.0.0.0", "9090", "0.0.0.0:9090", false},
		{":7000", "localhost", "8080", ":7000", false},
		{"", "localhost", "http", "", true},
		{"", "localhost", "70000", "", true},
		{"nocolon", "localhost", "8080", "", true},
	}
	for _, tt := range tests {
		got, err := listenAddr(tt.addr, tt.host, tt.port)
		if (err != nil) != tt.wantErr {
			t.Errorf("listenAddr(%q, %q, %q): unexpected error %v", tt.addr, tt.host, tt.port, err)
			continue
		}
		if got != tt.want {
			t.Errorf("listenAddr(%q, %q, %q): expected %q, got %q", tt.addr, tt.host, tt.port, tt.want, got)
		}
	}
}

func memoryStack(t *testing.T, dbPath string) *stack {
	t.Helper()
	st, err := buildStack(context.Background(), settings{
		configDir:    "configs",
		sessionStore: "memory",
		dbPath:       dbPath,
	})
	if err != nil {
		t.Fatalf("buildStack failed: %v", err)
	}
	t.Cleanup(st.Close)
	return st
}

func TestBuildStack(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	t.Run("memory", func(t *testing.T) {
		st := memoryStack(t, "")
		if st.persistence != nil {
			t.Error("Expected no persistence for the memory store")
		}
		if st.scores != nil {
			t.Error("Expected no score store without a db path")
		}
		opts, err := st.apiOptions(settings{})
		if err != nil || opts != nil {
			t.Errorf("Expected no api options without scores, got %v, %v", opts, err)
		}
	})

	t.Run("file and scores", func(t *testing.T) {
		dir := t.TempDir()
		st, err := buildStack(context.Background(), settings{
			configDir:    "configs",
			sessionStore: "file",
			sessionsDir:  filepath.Join(dir, "sessions"),
			dbPath:       filepath.Join(dir, "data", "scores.db"),
		})
		if err != nil {
			t.Fatalf("buildStack failed: %v", err)
		}
		defer st.Close()

		if st.persistence == nil || st.scores == nil {
			t.Fatal("Expected file persistence and a score store")
		}
		opts, err := st.apiOptions(settings{jwtTTL: time.Hour})
		if err != nil {
			t.Fatalf("apiOptions failed: %v", err)
		}
		if len(opts) != 2 {
			t.Errorf("Expected scores and auth options, got %d", len(opts))
		}
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := buildStack(context.Background(), settings{configDir: "configs", sessionStore: "etcd"})
		if err == nil {
			t.Error("Expected error for an unknown session store")
		}
	})

	t.Run("missing config dir", func(t *testing.T) {
		_, err := buildStack(context.Background(), settings{configDir: "/non/existent/path", sessionStore: "memory"})
		if err == nil {
			t.Error("Expected error for non-existent config directory")
		}
	})
}

func TestPruneOrphans(t *testing.T) {
	dir := t.TempDir()
	st, err := buildStack(context.Background(), settings{
		configDir:    "configs",
		sessionStore: "file",
		sessionsDir:  dir,
	})
	if err != nil {
		t.Fatalf("buildStack failed: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	kept, err := st.service.CreateSession(ctx, "practice", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	gone, err := st.service.CreateSession(ctx, "practice", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if n := pruneOrphans(st.sessions, st.persistence); n != 0 {
		t.Errorf("Expected nothing pruned, got %d", n)
	}

	if err := st.persistence.Delete(gone.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n := pruneOrphans(st.sessions, st.persistence); n != 1 {
		t.Errorf("Expected 1 pruned session, got %d", n)
	}
	if st.sessions.Count() != 1 {
		t.Errorf("Expected 1 session left, got %d", st.sessions.Count())
	}
	if _, err := st.service.GetSession(ctx, kept.ID); err != nil {
		t.Errorf("Expected kept session to remain: %v", err)
	}
}

func TestTerminalGame(t *testing.T) {
	ctx := context.Background()
	st := memoryStack(t, "")
	info, err := st.service.CreateSession(ctx, "practice", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	var out bytes.Buffer
	game := &terminalGame{svc: st.service, sessionID: info.ID, out: &out}

	input := strings.Join([]string{"?", "h", "p", "m 1 1", "bogus", "u", "q"}, "\n") + "\n"
	summary, err := game.run(ctx, strings.NewReader(input))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary == nil {
		t.Fatal("Expected a summary after q")
	}
	if summary.Won {
		t.Error("Expected an unfinished deal to be a loss")
	}

	text := out.String()
	for _, want := range []string{"Commands:", "Rejected:", "invalid_destination", "(? for help)", "(+2)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestTerminalGameEndOfInput(t *testing.T) {
	ctx := context.Background()
	st := memoryStack(t, "")
	info, err := st.service.CreateSession(ctx, "classic", "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	var out bytes.Buffer
	game := &terminalGame{svc: st.service, sessionID: info.ID, out: &out}
	summary, err := game.run(ctx, strings.NewReader("p\n"))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary != nil {
		t.Error("Expected no summary when input ends")
	}

	view, err := st.service.GetGameState(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetGameState failed: %v", err)
	}
	if view.Moves != 1 {
		t.Errorf("Expected the draw to be kept, got %d moves", view.Moves)
	}
}

func TestTerminalGameRecordsResult(t *testing.T) {
	ctx := context.Background()
	st := memoryStack(t, filepath.Join(t.TempDir(), "scores.db"))

	player, err := st.scores.Register(ctx, "ada", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	info, err := st.service.CreateSession(ctx, "practice", player.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	var out bytes.Buffer
	game := &terminalGame{svc: st.service, sessionID: info.ID, out: &out, player: "ada"}
	summary, err := game.run(ctx, strings.NewReader("p\nq\n"))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary == nil || !summary.Recorded {
		t.Fatalf("Expected a recorded summary, got %+v", summary)
	}

	var report bytes.Buffer
	if err := printGames(ctx, &report, st.scores, "ada", 0); err != nil {
		t.Fatalf("printGames failed: %v", err)
	}
	if !strings.Contains(report.String(), "practice") || !strings.Contains(report.String(), "lost") {
		t.Errorf("Expected the game in the report, got %q", report.String())
	}

	report.Reset()
	if err := printBest(ctx, &report, st.scores, 0); err != nil {
		t.Fatalf("printBest failed: %v", err)
	}
	if !strings.Contains(report.String(), "No wins recorded yet.") {
		t.Errorf("Expected no best scores for a loss, got %q", report.String())
	}
}

func TestMCPHandler(t *testing.T) {
	st := memoryStack(t, "")
	handler := newHandler(api.NewServer(st.service, nil), mcp.NewClient("http://127.0.0.1:1"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /mcp, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for ping, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"jsonrpc":"2.0"`) {
		t.Errorf("Expected a JSON-RPC response, got %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected the API at the root, got %d", w.Code)
	}
}
