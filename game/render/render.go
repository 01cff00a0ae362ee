package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/wricardo/solitaire/game/engine"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiCyan   = "\x1b[36m"
	ansiYellow = "\x1b[33m"
	ansiGreen  = "\x1b[32m"

	emptySlot = "[  ]"
	hidden    = "##"
)

// Options controls how a board is drawn
type Options struct {
	Color  bool
	Player string
}

// NewTerminal wraps f for ANSI output and reports whether colour should be used.
// Colour is off when f is not a terminal or NO_COLOR is set.
func NewTerminal(f *os.File) (io.Writer, bool) {
	fd := f.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	color := tty && os.Getenv("NO_COLOR") == ""
	if f == os.Stdout {
		return colorable.NewColorableStdout(), color
	}
	return colorable.NewColorable(f), color
}

type painter bool

func (p painter) paint(code, s string) string {
	if !p {
		return s
	}
	return code + s + ansiReset
}

func (p painter) card(c engine.Card) string {
	if !c.FaceUp {
		return hidden
	}
	if c.Color() == engine.Red {
		return p.paint(ansiRed, c.String())
	}
	return c.String()
}

func (p painter) cardPtr(c *engine.Card) string {
	if c == nil {
		return emptySlot
	}
	return p.card(*c)
}

// Card returns the label for a card, "##" when face-down
func Card(c engine.Card, color bool) string {
	return painter(color).card(c)
}

// Clock formats elapsed seconds as M:SS, or H:MM:SS past the hour
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Board writes the full table: header, foundations, stock and waste, then the
// seven columns with hidden cards shown as ##
func Board(w io.Writer, v engine.View, opts Options) error {
	p := painter(opts.Color)
	var b strings.Builder

	header := fmt.Sprintf("Score: %-5d Time: %-8s Moves: %d", v.Score, Clock(v.ElapsedSeconds), v.Moves)
	if opts.Player != "" {
		header = "Player: " + opts.Player + "  " + header
	}
	b.WriteString(p.paint(ansiYellow, header))
	b.WriteString("\n\n")

	b.WriteString(p.paint(ansiCyan, "Foundations:"))
	for _, suit := range engine.Suits {
		f := v.Foundations[suit]
		fmt.Fprintf(&b, "  %s %-4s (%2d/13)", suit.Symbol(), p.cardPtr(f.Top), f.Count)
	}
	b.WriteString("\n")

	b.WriteString(p.paint(ansiCyan, "Stock:"))
	fmt.Fprintf(&b, " (%02d)   ", v.StockCount)
	b.WriteString(p.paint(ansiCyan, "Waste:"))
	fmt.Fprintf(&b, " %s (%02d)\n\n", p.cardPtr(v.WasteTop), v.WasteCount)

	for i, col := range v.Tableau {
		fmt.Fprintf(&b, "%d:", i+1)
		for n := 0; n < col.FaceDown; n++ {
			b.WriteString(" " + hidden)
		}
		for _, c := range col.Cards {
			b.WriteString(" " + p.card(c))
		}
		b.WriteString("\n")
	}

	switch {
	case v.Won:
		b.WriteString("\n" + p.paint(ansiGreen, "All foundations complete!") + "\n")
	case v.CanAutocomplete:
		b.WriteString("\n" + p.paint(ansiGreen, "Every card is revealed: type 'a' to autocomplete.") + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// String renders a board without colour
func String(v engine.View) string {
	var b strings.Builder
	_ = Board(&b, v, Options{})
	return b.String()
}

// Hints writes numbered hints using the labels produced by label
func Hints(w io.Writer, hints []engine.Hint, label func(engine.Move) string) error {
	if len(hints) == 0 {
		_, err := io.WriteString(w, "No moves available. Try drawing from the stock.\n")
		return err
	}
	for i, h := range hints {
		line := fmt.Sprintf("%2d. %s", i+1, label(h.Move))
		if h.ScoreDelta != 0 {
			line += fmt.Sprintf(" (%+d)", h.ScoreDelta)
		}
		if h.Reveals {
			line += " reveals a card"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Table writes aligned columns
func Table(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
