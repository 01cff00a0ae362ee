// Command solitaire runs the Klondike solitaire server and its companions.
//
// Commands:
//  1. "serve" – HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "mcp" – MCP stdio server; spins up an internal HTTP API if none is reachable
//  3. "play" – play a game in the terminal
//  4. "scores", "register" – leaderboard and player accounts
//
// Settings come from flags, environment variables and an optional .env file.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Klondike Solitaire"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("solitaire failed")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "solitaire",
		Usage:   "Klondike solitaire server, terminal game and MCP tools",
		Version: Version,
		Flags:   globalFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.String("log-level"), cmd.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			playCommand(),
			scoresCommand(),
			registerCommand(),
			versionCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "debug", Usage: "enable debug logging", Sources: cli.EnvVars("DEBUG")},
		&cli.StringFlag{Name: "log-level", Value: "info", Usage: "trace, debug, info, warn or error", Sources: cli.EnvVars("LOG_LEVEL")},
		&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory of deal presets", Sources: cli.EnvVars("CONFIG_DIR")},
		&cli.StringFlag{Name: "session-store", Value: "file", Usage: "where sessions are kept: file, redis or memory", Sources: cli.EnvVars("SESSION_STORE")},
		&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "directory for the file session store", Sources: cli.EnvVars("SESSIONS_DIR")},
		&cli.StringFlag{Name: "redis-addr", Value: "localhost:6379", Usage: "address for the redis session store", Sources: cli.EnvVars("REDIS_ADDR")},
		&cli.StringFlag{Name: "db-path", Value: "data/solitaire.db", Usage: "sqlite database for players and scores (empty disables)", Sources: cli.EnvVars("DB_PATH")},
		&cli.StringFlag{Name: "jwt-secret", Usage: "secret for player tokens", Sources: cli.EnvVars("JWT_SECRET")},
		&cli.StringFlag{Name: "jwt-expires-hours", Value: "72", Usage: "player token lifetime in hours", Sources: cli.EnvVars("JWT_EXPIRES_HOURS")},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print the version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
			return nil
		},
	}
}

// setupLogging writes human-readable logs to a terminal and JSON otherwise.
// Logs always go to stderr so stdout stays free for the MCP stdio protocol.
func setupLogging(level string, debug bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        colorable.NewColorableStderr(),
			TimeFormat: time.TimeOnly,
		}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
