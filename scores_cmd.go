package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/solitaire/game/render"
	"github.com/wricardo/solitaire/game/scores"
)

func scoresCommand() *cli.Command {
	return &cli.Command{
		Name:  "scores",
		Usage: "show best scores, or recent games with --games",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "limit", Aliases: []string{"n"}, Usage: "rows to show (defaults: 15 best, 20 games)"},
			&cli.BoolFlag{Name: "games", Usage: "list recent games instead of best scores"},
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "only games of this player", Sources: cli.EnvVars("SOLITAIRE_USER")},
		},
		Action: runScores,
	}
}

func runScores(ctx context.Context, cmd *cli.Command) error {
	store, err := openScores(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit := 0
	if raw := strings.TrimSpace(cmd.String("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return fmt.Errorf("invalid limit %q", raw)
		}
	}

	out, _ := render.NewTerminal(os.Stdout)
	if cmd.Bool("games") {
		return printGames(ctx, out, store, cmd.String("user"), limit)
	}
	return printBest(ctx, out, store, limit)
}

func openScores(cmd *cli.Command) (*scores.Store, error) {
	path := strings.TrimSpace(cmd.String("db-path"))
	if path == "" {
		return nil, errors.New("no score database configured (set --db-path or DB_PATH)")
	}
	return scores.Open(path)
}

func printBest(ctx context.Context, w io.Writer, store *scores.Store, limit int) error {
	best, err := store.BestScores(ctx, limit)
	if err != nil {
		return err
	}
	if len(best) == 0 {
		_, err := fmt.Fprintln(w, "No wins recorded yet.")
		return err
	}
	rows := make([][]string, 0, len(best))
	for i, b := range best {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			b.Username,
			strconv.Itoa(b.Score),
			render.Clock(b.DurationSeconds),
			b.AchievedAt.Local().Format("2006-01-02"),
		})
	}
	return render.Table(w, []string{"#", "PLAYER", "SCORE", "TIME", "DATE"}, rows)
}

func printGames(ctx context.Context, w io.Writer, store *scores.Store, username string, limit int) error {
	playerID := ""
	if username != "" {
		player, err := store.PlayerByUsername(ctx, username)
		if err != nil {
			return err
		}
		playerID = player.ID
	}

	games, err := store.GameSessions(ctx, playerID, limit)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		_, err := fmt.Fprintln(w, "No games recorded yet.")
		return err
	}
	rows := make([][]string, 0, len(games))
	for _, g := range games {
		result := "lost"
		if g.Won {
			result = "won"
		}
		rows = append(rows, []string{
			g.EndTime.Local().Format("2006-01-02 15:04"),
			g.Username,
			g.ConfigID,
			result,
			strconv.Itoa(g.Score),
			render.Clock(g.DurationSeconds),
		})
	}
	return render.Table(w, []string{"ENDED", "PLAYER", "DEAL", "RESULT", "SCORE", "TIME"}, rows)
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "create a player account",
		ArgsUsage: "<username>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "password", Usage: "password (prompted when omitted)", Sources: cli.EnvVars("SOLITAIRE_PASSWORD")},
		},
		Action: runRegister,
	}
}

func runRegister(ctx context.Context, cmd *cli.Command) error {
	username := strings.TrimSpace(cmd.Args().First())
	if username == "" {
		return errors.New("usage: solitaire register <username>")
	}
	store, err := openScores(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.Root().Writer
	password, err := passwordFor(cmd, out, username)
	if err != nil {
		return err
	}
	player, err := store.Register(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Registered %s (%s)\n", player.Username, player.ID)
	return nil
}
