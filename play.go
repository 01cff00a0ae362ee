package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/wricardo/solitaire/game/engine"
	"github.com/wricardo/solitaire/game/notation"
	"github.com/wricardo/solitaire/game/render"
	"github.com/wricardo/solitaire/game/scores"
	"github.com/wricardo/solitaire/game/service"
)

const terminalHelp = `Commands:
  p                 draw from the stock (recycles the waste when empty)
  m <from> <to> [n] move n cards (default 1), e.g. "m w 3", "m 2 fh", "m 6 1 3"
  u / r             undo / redo
  a                 autocomplete to the foundations
  h                 list legal moves
  q                 finish the game and record the result
  ?                 this help

Piles: w = waste, 1-7 = tableau, fh fd fc fs = foundations (or h d c sp).
Press Ctrl-D to leave without finishing; the session is kept for --session.
`

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play a game in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "classic", Usage: "deal preset", Sources: cli.EnvVars("SOLITAIRE_CONFIG")},
			&cli.StringFlag{Name: "session", Aliases: []string{"s"}, Usage: "resume an existing session"},
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "player to record the result for", Sources: cli.EnvVars("SOLITAIRE_USER")},
			&cli.StringFlag{Name: "password", Usage: "player password (prompted when omitted)", Sources: cli.EnvVars("SOLITAIRE_PASSWORD")},
		},
		Action: runPlay,
	}
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	// keep info logs off the board unless asked for
	if !cmd.IsSet("log-level") && !cmd.Bool("debug") {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	s, err := settingsFrom(cmd)
	if err != nil {
		return err
	}
	st, err := buildStack(ctx, s)
	if err != nil {
		return err
	}
	defer st.Close()

	out, color := render.NewTerminal(os.Stdout)

	var player *scores.Player
	if username := cmd.String("user"); username != "" {
		if st.scores == nil {
			return errors.New("--user needs a score database (set --db-path)")
		}
		password, err := passwordFor(cmd, out, username)
		if err != nil {
			return err
		}
		player, err = st.scores.Authenticate(ctx, username, password)
		if err != nil {
			return err
		}
	}

	sessionID := cmd.String("session")
	if sessionID == "" {
		playerID := ""
		if player != nil {
			playerID = player.ID
		}
		info, err := st.service.CreateSession(ctx, cmd.String("config"), playerID)
		if err != nil {
			return err
		}
		sessionID = info.ID
	} else if _, err := st.service.GetSession(ctx, sessionID); err != nil {
		return err
	}

	t := &terminalGame{svc: st.service, sessionID: sessionID, out: out, color: color}
	if player != nil {
		t.player = player.Username
	}

	summary, err := t.run(ctx, os.Stdin)
	if err != nil {
		return err
	}
	if summary == nil {
		fmt.Fprintf(out, "\nSession %s kept. Resume with: solitaire play --session %s\n", sessionID, sessionID)
		return nil
	}
	printSummary(out, summary)
	return nil
}

func passwordFor(cmd *cli.Command, out io.Writer, username string) (string, error) {
	if pw := cmd.String("password"); pw != "" {
		return pw, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password required (use --password or SOLITAIRE_PASSWORD)")
	}
	fmt.Fprintf(out, "Password for %s: ", username)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// terminalGame drives one session from line-based input
type terminalGame struct {
	svc       service.GameService
	sessionID string
	out       io.Writer
	color     bool
	player    string
}

// run reads commands until the game is won, the player quits or input ends.
// It returns the summary of a finished game, or nil when input ended first.
func (t *terminalGame) run(ctx context.Context, in io.Reader) (*service.GameSummary, error) {
	view, err := t.svc.GetGameState(ctx, t.sessionID)
	if err != nil {
		return nil, err
	}
	if err := t.board(*view); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(t.out, "> ")
		if !scanner.Scan() {
			return nil, scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, err := notation.ParseCommand(line)
		if err != nil {
			fmt.Fprintf(t.out, "%v (? for help)\n", err)
			continue
		}

		switch cmd.Kind {
		case notation.CmdQuit:
			return t.svc.FinishGame(ctx, t.sessionID)
		case notation.CmdHelp:
			io.WriteString(t.out, terminalHelp)
			continue
		case notation.CmdHint:
			hints, err := t.svc.Hints(ctx, t.sessionID)
			if err != nil {
				return nil, err
			}
			if err := render.Hints(t.out, hints, notation.FormatMove); err != nil {
				return nil, err
			}
			continue
		}

		result, err := t.execute(ctx, cmd)
		if err != nil {
			return nil, err
		}
		if err := t.report(result); err != nil {
			return nil, err
		}
		if result.Won {
			return t.svc.FinishGame(ctx, t.sessionID)
		}
	}
}

func (t *terminalGame) execute(ctx context.Context, cmd notation.Command) (*service.MoveResult, error) {
	switch cmd.Kind {
	case notation.CmdDraw:
		return t.svc.Draw(ctx, t.sessionID)
	case notation.CmdMove:
		return t.svc.Move(ctx, t.sessionID, cmd.Move)
	case notation.CmdUndo:
		return t.svc.Undo(ctx, t.sessionID)
	case notation.CmdRedo:
		return t.svc.Redo(ctx, t.sessionID)
	case notation.CmdAutocomplete:
		return t.svc.Autocomplete(ctx, t.sessionID)
	}
	return nil, fmt.Errorf("unsupported command %s", cmd.Kind)
}

func (t *terminalGame) report(result *service.MoveResult) error {
	if !result.Success {
		_, err := fmt.Fprintf(t.out, "Rejected: %s (%s)\n", result.Message, result.Reason)
		return err
	}
	if err := t.board(result.State); err != nil {
		return err
	}
	if result.ScoreDelta != 0 {
		fmt.Fprintf(t.out, "%s (%+d)\n", result.Message, result.ScoreDelta)
	} else {
		fmt.Fprintln(t.out, result.Message)
	}
	return nil
}

func (t *terminalGame) board(v engine.View) error {
	return render.Board(t.out, v, render.Options{Color: t.color, Player: t.player})
}

func printSummary(w io.Writer, s *service.GameSummary) {
	if s.Won {
		fmt.Fprintf(w, "\nYou won! Final score %d in %s.\n", s.FinalScore, render.Clock(s.ElapsedSeconds))
	} else {
		fmt.Fprintf(w, "\nGame over. Score %d after %s.\n", s.FinalScore, render.Clock(s.ElapsedSeconds))
	}
	if s.Recorded {
		fmt.Fprintln(w, "Result recorded.")
	}
}
