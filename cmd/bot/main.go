// Command bot plays solitaire sessions through the REST API by following the
// server's hints, retrying requests while the server restarts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/solitaire/game/autoplay"
	"github.com/wricardo/solitaire/game/service"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:  "bot",
		Usage: "play a session through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL", Sources: cli.EnvVars("SOLITAIRE_API_URL")},
			&cli.StringFlag{Name: "config", Value: "classic", Usage: "deal preset for a new session"},
			&cli.StringFlag{Name: "continue", Usage: "resume playing an existing session by ID"},
			&cli.StringFlag{Name: "token", Usage: "player token, records the result", Sources: cli.EnvVars("SOLITAIRE_TOKEN")},
			&cli.StringFlag{Name: "games", Value: "1", Usage: "number of new sessions to play"},
			&cli.StringFlag{Name: "max-moves", Value: "3000", Usage: "decision limit per game"},
			&cli.StringFlag{Name: "delay", Value: "0", Usage: "delay between moves in milliseconds"},
			&cli.BoolFlag{Name: "v", Usage: "log every move"},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("bot failed")
	}
}

func intArg(cmd *cli.Command, name string, min int) (int, error) {
	raw := strings.TrimSpace(cmd.String(name))
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid --%s %q", name, raw)
	}
	return n, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	games, err := intArg(cmd, "games", 1)
	if err != nil {
		return err
	}
	maxMoves, err := intArg(cmd, "max-moves", 0)
	if err != nil {
		return err
	}
	delayMs, err := intArg(cmd, "delay", 0)
	if err != nil {
		return err
	}
	if cmd.Bool("v") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	client := NewClient(cmd.String("url"), cmd.String("token"))
	opts := playOptions{maxMoves: maxMoves, delay: time.Duration(delayMs) * time.Millisecond}
	log.Info().Str("url", cmd.String("url")).Msg("connecting to game server")

	if id := cmd.String("continue"); id != "" {
		client.UseSession(id)
		log.Info().Str("session", id).Msg("resuming session")
		summary, err := play(ctx, client, opts)
		if err != nil {
			return err
		}
		report(summary)
		return nil
	}

	wins := 0
	for i := 1; i <= games; i++ {
		info, err := client.CreateSession(ctx, cmd.String("config"))
		if err != nil {
			return err
		}
		log.Info().Str("session", info.ID).Str("config", info.ConfigName).Int("game", i).Msg("session created")

		summary, err := play(ctx, client, opts)
		if err != nil {
			return err
		}
		report(summary)
		if summary.Won {
			wins++
		}
	}
	if games > 1 {
		log.Info().Int("games", games).Int("wins", wins).Msg("done")
	}
	return nil
}

type playOptions struct {
	maxMoves int
	delay    time.Duration
}

// play follows the strategy until it gives up or the game is won, then
// finishes the session
func play(ctx context.Context, c *Client, opts playOptions) (*service.GameSummary, error) {
	view, err := c.State(ctx)
	if err != nil {
		return nil, err
	}

	strategy := autoplay.NewStrategy()
	for steps := 0; opts.maxMoves <= 0 || steps < opts.maxMoves; steps++ {
		hints, err := c.Hints(ctx)
		if err != nil {
			return nil, err
		}

		d := strategy.Next(*view, hints)
		if d.Action == autoplay.ActionStop {
			log.Debug().Int("steps", steps).Msg("no useful moves left")
			break
		}

		result, err := apply(ctx, c, d)
		if err != nil {
			return nil, err
		}
		if !result.Success && d.Action == autoplay.ActionAutocomplete {
			// the strategy does not ask twice without progress
			log.Debug().Str("reason", result.Reason.String()).Msg("autocomplete moved nothing")
			continue
		}
		if !result.Success {
			return nil, fmt.Errorf("server rejected %s: %s (%s)", d.Action, result.Message, result.Reason)
		}
		log.Debug().Str("action", d.Action.String()).Str("move", moveText(d)).Int("score", result.Score).Msg(result.Message)

		view = &result.State
		if result.Won {
			break
		}

		if opts.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(opts.delay):
			}
		}
	}

	return c.Finish(ctx)
}

func apply(ctx context.Context, c *Client, d autoplay.Decision) (*service.MoveResult, error) {
	switch d.Action {
	case autoplay.ActionDraw:
		return c.Draw(ctx)
	case autoplay.ActionMove:
		return c.Move(ctx, d.Move)
	case autoplay.ActionAutocomplete:
		return c.Autocomplete(ctx)
	}
	return nil, errors.New("nothing to apply for " + d.Action.String())
}

func moveText(d autoplay.Decision) string {
	if d.Action != autoplay.ActionMove {
		return ""
	}
	return d.Move.String()
}

func report(s *service.GameSummary) {
	event := log.Info().Str("session", s.SessionID).Int("score", s.FinalScore).Int("seconds", s.ElapsedSeconds).Bool("recorded", s.Recorded)
	if s.Won {
		event.Msg("🎉 game won")
		return
	}
	event.Msg("game over")
}
