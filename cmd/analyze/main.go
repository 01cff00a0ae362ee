// Command analyze deals a range of seeds, auto-plays each one by following
// hints and prints the win rate and score statistics. It answers "how winnable
// are these deals for a simple player" before a seed is published as a preset.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/solitaire/game/autoplay"
	"github.com/wricardo/solitaire/game/config"
	"github.com/wricardo/solitaire/game/engine"
	"github.com/wricardo/solitaire/game/render"
)

// DealResult is the outcome of one auto-played seed
type DealResult struct {
	Seed uint64
	Name string
	autoplay.Result
}

// Summary aggregates a batch of deals
type Summary struct {
	Deals          int
	Wins           int
	MeanScore      float64
	BestScore      int
	BestSeed       uint64
	MeanFoundation float64
	MeanMoves      float64
}

// WinRate is the share of won deals in percent
func (s Summary) WinRate() float64 {
	if s.Deals == 0 {
		return 0
	}
	return 100 * float64(s.Wins) / float64(s.Deals)
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()

	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "auto-play deals and report how many are won",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Value: "1", Usage: "first seed"},
			&cli.StringFlag{Name: "n", Value: "100", Usage: "number of seeds"},
			&cli.StringFlag{Name: "workers", Usage: "parallel games (default: number of CPUs)"},
			&cli.StringFlag{Name: "max-steps", Value: "5000", Usage: "decision limit per game"},
			&cli.StringFlag{Name: "config-dir", Usage: "analyze the fixed-seed presets in this directory instead", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.BoolFlag{Name: "v", Usage: "list every deal"},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("analyze failed")
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
	workers := runtime.NumCPU()
	if cmd.String("workers") != "" {
		var err error
		if workers, err = intArg(cmd, "workers", 1); err != nil {
			return err
		}
	}
	maxSteps, err := intArg(cmd, "max-steps", 0)
	if err != nil {
		return err
	}

	var deals []DealResult
	if dir := cmd.String("config-dir"); dir != "" {
		deals, err = presetDeals(dir)
	} else {
		deals, err = seedDeals(cmd)
	}
	if err != nil {
		return err
	}

	started := time.Now()
	if err := analyze(ctx, deals, workers, maxSteps); err != nil {
		return err
	}
	log.Info().Int("deals", len(deals)).Dur("took", time.Since(started)).Msg("analysis finished")

	out := cmd.Root().Writer
	if cmd.Bool("v") {
		if err := printDeals(out, deals); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return printSummary(out, summarize(deals))
}

func seedDeals(cmd *cli.Command) ([]DealResult, error) {
	raw := strings.TrimSpace(cmd.String("start"))
	start, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid --start %q", raw)
	}
	n, err := intArg(cmd, "n", 1)
	if err != nil {
		return nil, err
	}
	deals := make([]DealResult, n)
	for i := range deals {
		deals[i].Seed = start + uint64(i)
	}
	return deals, nil
}

// presetDeals lists the presets that pin a seed; random presets cannot be analyzed
func presetDeals(dir string) ([]DealResult, error) {
	m, err := config.NewManager(dir)
	if err != nil {
		return nil, err
	}
	infos, err := m.ListConfigs()
	if err != nil {
		return nil, err
	}
	var deals []DealResult
	for _, info := range infos {
		if info.Seed == nil {
			log.Debug().Str("preset", info.ConfigID).Msg("skipping random deal")
			continue
		}
		deals = append(deals, DealResult{Seed: *info.Seed, Name: info.ConfigID})
	}
	if len(deals) == 0 {
		return nil, errors.New("no preset with a fixed seed in " + dir)
	}
	return deals, nil
}

// analyze plays every deal in place, at most workers at a time
func analyze(ctx context.Context, deals []DealResult, workers, maxSteps int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	clock := func() time.Time { return time.Time{} }
	for i := range deals {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e := engine.NewGame(engine.WithSeed(deals[i].Seed), engine.WithClock(clock))
			deals[i].Result = autoplay.Play(e, maxSteps)
			log.Debug().Uint64("seed", deals[i].Seed).Bool("won", deals[i].Won).Int("score", deals[i].Score).Msg("deal played")
			return nil
		})
	}
	return g.Wait()
}

func summarize(deals []DealResult) Summary {
	s := Summary{Deals: len(deals)}
	if len(deals) == 0 {
		return s
	}
	var score, foundation, moves int
	for i, d := range deals {
		if d.Won {
			s.Wins++
		}
		score += d.Score
		foundation += d.FoundationCards
		moves += d.Moves
		if i == 0 || d.Score > s.BestScore {
			s.BestScore = d.Score
			s.BestSeed = d.Seed
		}
	}
	n := float64(len(deals))
	s.MeanScore = float64(score) / n
	s.MeanFoundation = float64(foundation) / n
	s.MeanMoves = float64(moves) / n
	return s
}

func printDeals(w io.Writer, deals []DealResult) error {
	sorted := append([]DealResult(nil), deals...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	rows := make([][]string, 0, len(sorted))
	for _, d := range sorted {
		result := "-"
		if d.Won {
			result = "won"
		}
		rows = append(rows, []string{
			strconv.FormatUint(d.Seed, 10),
			d.Name,
			result,
			strconv.Itoa(d.Score),
			strconv.Itoa(d.FoundationCards),
			strconv.Itoa(d.Moves),
		})
	}
	return render.Table(w, []string{"SEED", "PRESET", "RESULT", "SCORE", "FOUNDATION", "MOVES"}, rows)
}

func printSummary(w io.Writer, s Summary) error {
	rows := [][]string{
		{"deals", strconv.Itoa(s.Deals)},
		{"won", fmt.Sprintf("%d (%.1f%%)", s.Wins, s.WinRate())},
		{"mean score", fmt.Sprintf("%.1f", s.MeanScore)},
		{"best score", fmt.Sprintf("%d (seed %d)", s.BestScore, s.BestSeed)},
		{"mean foundation cards", fmt.Sprintf("%.1f", s.MeanFoundation)},
		{"mean moves", fmt.Sprintf("%.1f", s.MeanMoves)},
	}
	return render.Table(w, []string{"STAT", "VALUE"}, rows)
}
